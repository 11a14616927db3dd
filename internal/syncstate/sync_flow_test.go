package syncstate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/minimem/minimem/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Two machines mapping the same central path: A pushes a file, B sees it as
// new-remote before its first sync and unchanged right after pulling it.
func TestTwoDirectoriesThroughSharedCentralPath(t *testing.T) {
	ctx := context.Background()
	centralRepo := t.TempDir()
	remoteDir := filepath.Join(centralRepo, "proj")

	dirA, dirB := t.TempDir(), t.TempDir()

	// A writes v1 and syncs it up.
	require.NoError(t, os.WriteFile(filepath.Join(dirA, "notes.md"), []byte("v1"), 0o644))

	stateA := Load(dirA, "proj")
	stateA, changesA, err := Build(ctx, buildOpts(dirA, remoteDir, stateA))
	require.NoError(t, err)
	require.Len(t, changesA, 1)
	require.Equal(t, StatusNewLocal, changesA[0].Status)

	require.NoError(t, utils.CopyFile(filepath.Join(dirA, "notes.md"), filepath.Join(remoteDir, "notes.md")))
	MarkSynced(stateA, "notes.md", changesA[0].LocalHash)
	require.NoError(t, Save(dirA, stateA))

	loadedA := Load(dirA, "proj")
	assert.Equal(t, changesA[0].LocalHash, loadedA.Files["notes.md"].LastSyncedHash)

	// B has never synced: the file shows up as new-remote.
	stateB := Load(dirB, "proj")
	stateB, changesB, err := Build(ctx, buildOpts(dirB, remoteDir, stateB))
	require.NoError(t, err)
	require.Len(t, changesB, 1)
	assert.Equal(t, StatusNewRemote, changesB[0].Status)

	// B pulls it.
	require.NoError(t, utils.CopyFile(filepath.Join(remoteDir, "notes.md"), filepath.Join(dirB, "notes.md")))
	MarkSynced(stateB, "notes.md", changesB[0].RemoteHash)
	require.NoError(t, Save(dirB, stateB))

	// Immediately after the pull, everything is unchanged.
	stateB = Load(dirB, "proj")
	_, changesB, err = Build(ctx, buildOpts(dirB, remoteDir, stateB))
	require.NoError(t, err)
	assert.Empty(t, changesB)

	// A concurrent divergence now surfaces as a conflict on both ends.
	require.NoError(t, os.WriteFile(filepath.Join(dirA, "notes.md"), []byte("v2-from-a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(remoteDir, "notes.md"), []byte("v2-from-b"), 0o644))

	stateA = Load(dirA, "proj")
	_, changesA, err = Build(ctx, buildOpts(dirA, remoteDir, stateA))
	require.NoError(t, err)
	require.Len(t, changesA, 1)
	assert.Equal(t, StatusConflict, changesA[0].Status)
}
