// Package memdir models a local memory directory: its private metadata
// subdirectory, its sync configuration and its classification relative to any
// enclosing git working tree.
package memdir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/minimem/minimem/internal/utils"
)

const lockFileName = "minimem.lock"

var (
	ErrNotInitialized = errors.New("directory is not initialized, run 'minimem init' first")
	ErrDirLocked      = errors.New("directory is locked by another minimem process")
)

// Dir is a handle to a local memory directory.
type Dir struct {
	Root       string
	PrivateDir string

	flock *flock.Flock
}

// Open resolves a memory directory handle. The directory itself need not be
// initialized yet; use Initialized to check.
func Open(root string) (*Dir, error) {
	resolved, err := utils.ResolvePath(root)
	if err != nil {
		return nil, fmt.Errorf("resolve path %s: %w", root, err)
	}

	privateDir := filepath.Join(resolved, PrivateDirName)
	return &Dir{
		Root:       resolved,
		PrivateDir: privateDir,
		flock:      flock.New(filepath.Join(privateDir, lockFileName)),
	}, nil
}

// Init creates the private subdirectory and a default config if absent.
func (d *Dir) Init() error {
	if err := utils.EnsureDir(d.PrivateDir); err != nil {
		return fmt.Errorf("create private dir %s: %w", d.PrivateDir, err)
	}

	if !utils.FileExists(ConfigPath(d.Root)) {
		cfg := &Config{Sync: &SyncConfig{
			Enabled: false,
			Include: DefaultInclude,
		}}
		if err := cfg.Save(d.Root); err != nil {
			return fmt.Errorf("write default config: %w", err)
		}
	}

	return nil
}

// Initialized reports whether the private subdirectory exists.
func (d *Dir) Initialized() bool {
	return utils.DirExists(d.PrivateDir)
}

// Config loads the directory config.
func (d *Dir) Config() *Config {
	return LoadConfig(d.Root)
}

// Lock takes an exclusive lock so two minimem processes cannot sync the same
// directory at once.
func (d *Dir) Lock() error {
	if err := utils.EnsureDir(d.PrivateDir); err != nil {
		return fmt.Errorf("create private dir: %w", err)
	}

	locked, err := d.flock.TryLock()
	if err != nil {
		return fmt.Errorf("lock directory: %w", err)
	}
	if !locked {
		return ErrDirLocked
	}
	return nil
}

// Unlock releases the lock taken by Lock. Safe to call when not held.
func (d *Dir) Unlock() error {
	if !d.flock.Locked() {
		return nil
	}
	if err := d.flock.Unlock(); err != nil {
		return fmt.Errorf("unlock directory: %w", err)
	}
	return os.Remove(d.flock.Path())
}
