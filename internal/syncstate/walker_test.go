package syncstate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/minimem/minimem/internal/memdir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(dir, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("content of "+p), 0o644))
	}
}

func TestListSyncableFiles_MissingDir(t *testing.T) {
	files, err := ListSyncableFiles(filepath.Join(t.TempDir(), "nope"), []string{"**/*.md"}, nil)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestListSyncableFiles_IncludeExclude(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"notes/x.md",
		"drafts/x.md",
		"drafts/deep/y.md",
		"top.md",
		"image.png",
		memdir.PrivateDirName+"/sync-state.json",
		memdir.PrivateDirName+"/config.json",
	)

	files, err := ListSyncableFiles(dir, []string{"**/*.md"}, []string{"drafts/**"})
	require.NoError(t, err)
	assert.Equal(t, []string{"notes/x.md", "top.md"}, files)
}

func TestListSyncableFiles_SkipsPrivateAndGit(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"a.md",
		memdir.PrivateDirName+"/state.md",
		".git/objects/thing.md",
	)

	files, err := ListSyncableFiles(dir, []string{"**/*"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md"}, files)
}

func TestListSyncableFiles_MultipleIncludes(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.md", "b.txt", "c.log")

	files, err := ListSyncableFiles(dir, []string{"**/*.md", "**/*.txt"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md", "b.txt"}, files)
}

func TestListSyncableFiles_Sorted(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "z.md", "a.md", "m/n.md")

	files, err := ListSyncableFiles(dir, []string{"**/*.md"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md", "m/n.md", "z.md"}, files)
}
