// Package central bootstraps and validates the shared central repository: a
// git working tree holding the sync registry and one subdirectory per mapped
// memory directory.
package central

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
	"github.com/minimem/minimem/internal/registry"
	"github.com/minimem/minimem/internal/utils"
)

const gitignoreContent = `# minimem generated artifacts
*.db
index/
staging/
conflicts/

# OS junk
.DS_Store
Thumbs.db
`

const readmeContent = `# minimem central repository

This repository is the shared store for memory directories synced with
minimem. Each mapped directory lives in its own subdirectory; the file
` + "`" + registry.FileName + "`" + ` records which machine syncs which path.

Do not edit synced files here directly while a machine is mid-sync. Commit
and push/pull this repository with git as usual to move content between
machines.
`

// InitResult reports the outcome of a bootstrap attempt.
type InitResult struct {
	Success bool
	Created bool
	Message string
}

// ValidationResult reports repository health. Only a missing path is a hard
// error; everything else is a warning so first-time use stays smooth.
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// Init idempotently bootstraps a central repository at path. Existing
// .gitignore, registry and README files are never overwritten. Created is
// true only when a brand-new git repository was made.
func Init(path string) InitResult {
	resolved, err := utils.ResolvePath(path)
	if err != nil {
		return InitResult{Message: fmt.Sprintf("invalid path %q: %v", path, err)}
	}

	if err := utils.EnsureDir(resolved); err != nil {
		return InitResult{Message: fmt.Sprintf("cannot create %s: %v", resolved, err)}
	}

	created := false
	if _, err := git.PlainOpen(resolved); err != nil {
		if !errors.Is(err, git.ErrRepositoryNotExists) {
			return InitResult{Message: fmt.Sprintf("cannot open repository at %s: %v", resolved, err)}
		}
		if _, err := git.PlainInit(resolved, false); err != nil {
			return InitResult{Message: fmt.Sprintf("git init failed at %s: %v", resolved, err)}
		}
		created = true
		slog.Info("central repository created", "path", resolved)
	}

	gitignorePath := filepath.Join(resolved, ".gitignore")
	if !utils.FileExists(gitignorePath) {
		if err := os.WriteFile(gitignorePath, []byte(gitignoreContent), 0o644); err != nil {
			return InitResult{Created: created, Message: fmt.Sprintf("write .gitignore: %v", err)}
		}
	}

	if !utils.FileExists(registry.Path(resolved)) {
		if err := registry.Write(resolved, registry.New()); err != nil {
			return InitResult{Created: created, Message: fmt.Sprintf("write registry: %v", err)}
		}
	}

	readmePath := filepath.Join(resolved, "README.md")
	if !utils.FileExists(readmePath) {
		if err := os.WriteFile(readmePath, []byte(readmeContent), 0o644); err != nil {
			return InitResult{Created: created, Message: fmt.Sprintf("write README: %v", err)}
		}
	}

	msg := "central repository ready"
	if created {
		msg = "central repository initialized"
	}
	return InitResult{Success: true, Created: created, Message: msg}
}

// Validate checks a central repository. A missing path is the only hard
// error; a missing registry is a soft warning to tolerate first-time use.
func Validate(path string) ValidationResult {
	resolved, err := utils.ResolvePath(path)
	if err != nil {
		return ValidationResult{Errors: []string{fmt.Sprintf("invalid path %q: %v", path, err)}}
	}

	if !utils.DirExists(resolved) {
		return ValidationResult{Errors: []string{fmt.Sprintf("central repository %s does not exist", resolved)}}
	}

	result := ValidationResult{Valid: true}

	if _, err := git.PlainOpen(resolved); err != nil {
		result.Warnings = append(result.Warnings, "path is not under version control")
	}

	if !utils.FileExists(filepath.Join(resolved, ".gitignore")) {
		result.Warnings = append(result.Warnings, "missing .gitignore")
	}

	regData, err := os.ReadFile(registry.Path(resolved))
	if err != nil {
		result.Warnings = append(result.Warnings, "registry not found (will be created on first sync init)")
	} else if len(regData) == 0 {
		result.Warnings = append(result.Warnings, "registry is empty")
	}

	return result
}
