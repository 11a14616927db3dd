package central

import (
	"os"
	"path/filepath"
	"testing"

	git "github.com/go-git/go-git/v5"
	"github.com/minimem/minimem/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_CreatesRepository(t *testing.T) {
	path := filepath.Join(t.TempDir(), "central")

	result := Init(path)
	require.True(t, result.Success, result.Message)
	assert.True(t, result.Created)

	_, err := git.PlainOpen(path)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(path, ".gitignore"))
	assert.FileExists(t, filepath.Join(path, "README.md"))
	assert.FileExists(t, registry.Path(path))

	reg := registry.Read(path)
	assert.Empty(t, reg.Mappings)
}

func TestInit_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "central")

	first := Init(path)
	require.True(t, first.Success)
	require.True(t, first.Created)

	gitignore1, err := os.ReadFile(filepath.Join(path, ".gitignore"))
	require.NoError(t, err)
	readme1, err := os.ReadFile(filepath.Join(path, "README.md"))
	require.NoError(t, err)
	reg1, err := os.ReadFile(registry.Path(path))
	require.NoError(t, err)

	second := Init(path)
	require.True(t, second.Success)
	assert.False(t, second.Created)

	gitignore2, _ := os.ReadFile(filepath.Join(path, ".gitignore"))
	readme2, _ := os.ReadFile(filepath.Join(path, "README.md"))
	reg2, _ := os.ReadFile(registry.Path(path))
	assert.Equal(t, gitignore1, gitignore2)
	assert.Equal(t, readme1, readme2)
	assert.Equal(t, reg1, reg2)
}

func TestInit_NeverOverwritesUserContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "central")
	require.NoError(t, os.MkdirAll(path, 0o755))

	custom := []byte("my own notes\n")
	require.NoError(t, os.WriteFile(filepath.Join(path, "README.md"), custom, 0o644))

	result := Init(path)
	require.True(t, result.Success)

	data, err := os.ReadFile(filepath.Join(path, "README.md"))
	require.NoError(t, err)
	assert.Equal(t, custom, data)
}

func TestValidate_MissingPath(t *testing.T) {
	result := Validate(filepath.Join(t.TempDir(), "nope"))
	assert.False(t, result.Valid)
	require.NotEmpty(t, result.Errors)
}

func TestValidate_BareDirectoryWarns(t *testing.T) {
	path := t.TempDir()

	result := Validate(path)
	assert.True(t, result.Valid)
	assert.Contains(t, result.Warnings, "path is not under version control")
	assert.Contains(t, result.Warnings, "missing .gitignore")
	assert.Contains(t, result.Warnings, "registry not found (will be created on first sync init)")
}

func TestValidate_HealthyRepository(t *testing.T) {
	path := filepath.Join(t.TempDir(), "central")
	require.True(t, Init(path).Success)

	result := Validate(path)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Warnings)
	assert.Empty(t, result.Errors)
}
