package memdir

import (
	"os"
	"path/filepath"
)

type DirType string

const (
	// ProjectBound directories live inside a git working tree and are synced
	// by that project's own git, not by this subsystem.
	ProjectBound DirType = "project-bound"

	// Standalone directories are synced through the central repository.
	Standalone DirType = "standalone"
)

// DirectoryInfo describes how a memory directory participates in sync.
// It is derived on demand and never persisted.
type DirectoryInfo struct {
	Type          DirType
	GitRoot       string
	HasSyncConfig bool
}

// hasGitMarker reports whether dir directly contains a .git entry. The marker
// may be a directory (ordinary repository) or a file (worktree pointer).
func hasGitMarker(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// GitRoot returns the nearest ancestor of dir (including dir itself) that
// contains a .git marker.
func GitRoot(dir string) (string, bool) {
	current := dir
	for {
		if hasGitMarker(current) {
			return current, true
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", false
		}
		current = parent
	}
}

// IsInsideGitRepo reports whether dir or any ancestor is a git working tree.
func IsInsideGitRepo(dir string) bool {
	_, ok := GitRoot(dir)
	return ok
}

// HasSyncConfig reports whether sync is explicitly configured for dir.
// Missing or unreadable config yields false.
func HasSyncConfig(dir string) bool {
	return LoadConfig(dir).SyncEnabled()
}

// DetectType classifies a directory. An explicit sync config always wins;
// otherwise git presence decides, defaulting to standalone.
func DetectType(dir string) DirType {
	if HasSyncConfig(dir) {
		return Standalone
	}
	if IsInsideGitRepo(dir) {
		return ProjectBound
	}
	return Standalone
}

// Info composes the classification into one descriptor, doing the git-root
// and config lookups at most once each.
func Info(dir string) DirectoryInfo {
	gitRoot, inGit := GitRoot(dir)
	hasSync := HasSyncConfig(dir)

	info := DirectoryInfo{
		GitRoot:       gitRoot,
		HasSyncConfig: hasSync,
	}

	switch {
	case hasSync:
		info.Type = Standalone
	case inGit:
		info.Type = ProjectBound
	default:
		info.Type = Standalone
	}

	return info
}
