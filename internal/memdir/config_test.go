package memdir

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingAndInvalid(t *testing.T) {
	cfg := LoadConfig(t.TempDir())
	assert.Nil(t, cfg.Sync)
	assert.Equal(t, DefaultInclude, cfg.Include())
	assert.Equal(t, DefaultExclude, cfg.Exclude())

	dir := t.TempDir()
	writeConfig(t, dir, "garbage")
	cfg = LoadConfig(dir)
	assert.Nil(t, cfg.Sync)
}

func TestConfigSave_PreservesForeignFields(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{"embedding": {"model": "small"}, "sync": {"enabled": false}}`)

	cfg := LoadConfig(dir)
	require.NotNil(t, cfg.Sync)
	cfg.Sync.Enabled = true
	cfg.Sync.Path = "/tmp/central"
	require.NoError(t, cfg.Save(dir))

	data, err := os.ReadFile(ConfigPath(dir))
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, doc, "embedding")
	assert.Contains(t, doc, "sync")

	reloaded := LoadConfig(dir)
	require.NotNil(t, reloaded.Sync)
	assert.True(t, reloaded.Sync.Enabled)
	assert.Equal(t, "/tmp/central", reloaded.Sync.Path)
}

func TestDirInit_CreatesPrivateDirAndConfig(t *testing.T) {
	root := t.TempDir()
	d, err := Open(root)
	require.NoError(t, err)

	assert.False(t, d.Initialized())
	require.NoError(t, d.Init())
	assert.True(t, d.Initialized())
	assert.FileExists(t, ConfigPath(d.Root))

	cfg := d.Config()
	require.NotNil(t, cfg.Sync)
	assert.False(t, cfg.SyncEnabled())
}

func TestDirLock_SingleProcess(t *testing.T) {
	root := t.TempDir()
	d1, err := Open(root)
	require.NoError(t, err)
	d2, err := Open(root)
	require.NoError(t, err)

	require.NoError(t, d1.Lock())
	assert.ErrorIs(t, d2.Lock(), ErrDirLocked)

	require.NoError(t, d1.Unlock())
	require.NoError(t, d2.Lock())
	t.Cleanup(func() { _ = d2.Unlock() })
}
