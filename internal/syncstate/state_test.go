package syncstate

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/minimem/minimem/internal/memdir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingAndCorrupt(t *testing.T) {
	state := Load(t.TempDir(), "proj")
	assert.Equal(t, SchemaVersion, state.Version)
	assert.Equal(t, "proj", state.CentralPath)
	assert.Empty(t, state.Files)
	assert.Nil(t, state.LastSync)

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, memdir.PrivateDirName), 0o755))
	require.NoError(t, os.WriteFile(statePath(dir), []byte("{broken"), 0o644))
	state = Load(dir, "proj")
	assert.Empty(t, state.Files)
	assert.Equal(t, "proj", state.CentralPath)
}

func TestSaveLoad_Roundtrip(t *testing.T) {
	dir := t.TempDir()
	now := time.Now().UTC().Truncate(time.Second)

	state := New("proj/notes")
	state.LastSync = &now
	state.Files["notes/today.md"] = &FileHashInfo{
		LocalHash:      hashA,
		RemoteHash:     hashB,
		LastSyncedHash: hashC,
		LastModified:   now,
	}
	require.NoError(t, Save(dir, state))

	loaded := Load(dir, "")
	assert.Equal(t, SchemaVersion, loaded.Version)
	assert.Equal(t, "proj/notes", loaded.CentralPath)
	require.NotNil(t, loaded.LastSync)
	assert.True(t, now.Equal(*loaded.LastSync))

	info, ok := loaded.Files["notes/today.md"]
	require.True(t, ok)
	assert.Equal(t, hashA, info.LocalHash)
	assert.Equal(t, hashB, info.RemoteHash)
	assert.Equal(t, hashC, info.LastSyncedHash)
	assert.True(t, now.Equal(info.LastModified))
}

func TestLoad_MigratesV1(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, memdir.PrivateDirName), 0o755))

	// A v1 document carries a modTimes map that the current schema dropped.
	v1 := `{
  "version": 1,
  "lastSync": null,
  "centralPath": "proj",
  "files": {
    "a.md": {"localHash": "` + hashA + `", "remoteHash": "` + hashA + `", "lastModified": "2024-01-01T00:00:00Z"}
  },
  "modTimes": {"a.md": 1704067200}
}`
	require.NoError(t, os.WriteFile(statePath(dir), []byte(v1), 0o644))

	state := Load(dir, "")
	assert.Equal(t, SchemaVersion, state.Version)
	require.Contains(t, state.Files, "a.md")
	assert.Equal(t, hashA, state.Files["a.md"].LocalHash)
	assert.Empty(t, state.Files["a.md"].LastSyncedHash)

	// Saving persists the migrated layout without the legacy field.
	require.NoError(t, Save(dir, state))
	data, err := os.ReadFile(statePath(dir))
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.NotContains(t, doc, "modTimes")
}

func TestSave_AtomicReplacesPriorState(t *testing.T) {
	dir := t.TempDir()

	first := New("proj")
	first.Files["a.md"] = &FileHashInfo{LocalHash: hashA}
	require.NoError(t, Save(dir, first))

	second := New("proj")
	second.Files["b.md"] = &FileHashInfo{LocalHash: hashB}
	require.NoError(t, Save(dir, second))

	loaded := Load(dir, "")
	assert.NotContains(t, loaded.Files, "a.md")
	assert.Contains(t, loaded.Files, "b.md")

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Join(dir, memdir.PrivateDirName))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, StateFileName, entries[0].Name())
}

func TestMarkSynced(t *testing.T) {
	state := New("proj")
	state.Files["a.md"] = &FileHashInfo{
		LocalHash:      hashB,
		RemoteHash:     hashA,
		LastSyncedHash: hashA,
	}

	MarkSynced(state, "a.md", hashB)

	info := state.Files["a.md"]
	assert.Equal(t, hashB, info.LocalHash)
	assert.Equal(t, hashB, info.RemoteHash)
	assert.Equal(t, hashB, info.LastSyncedHash)
	require.NotNil(t, state.LastSync)

	// Marking an untracked path creates its record.
	MarkSynced(state, "new.md", hashC)
	assert.Equal(t, hashC, state.Files["new.md"].LastSyncedHash)
}

func TestRemoveFile(t *testing.T) {
	state := New("proj")
	state.Files["a.md"] = &FileHashInfo{LocalHash: hashA}
	RemoveFile(state, "a.md")
	assert.NotContains(t, state.Files, "a.md")
}
