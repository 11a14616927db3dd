package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/minimem/minimem/internal/central"
	"github.com/minimem/minimem/internal/memdir"
	"github.com/minimem/minimem/internal/syncstate"
	"github.com/spf13/viper"
)

// remoteDirFor maps a slash-separated central path to its directory inside
// the central repository working tree.
func remoteDirFor(centralRepo, centralPath string) string {
	return filepath.Join(centralRepo, filepath.FromSlash(centralPath))
}

func fail(format string, args ...any) {
	fmt.Printf("%s: %s\n", red("ERROR"), fmt.Sprintf(format, args...))
	os.Exit(1)
}

func openDir() *memdir.Dir {
	dir, err := memdir.Open(viper.GetString("dir"))
	if err != nil {
		fail("%v", err)
	}
	return dir
}

// syncSetup is everything a sync operation needs, resolved from the
// directory config and validated up front.
type syncSetup struct {
	dir         *memdir.Dir
	cfg         *memdir.Config
	centralRepo string
	centralPath string
	remoteDir   string
	policy      syncstate.Policy
}

func requireSyncSetup() *syncSetup {
	dir := openDir()
	if !dir.Initialized() {
		fail("%v", memdir.ErrNotInitialized)
	}

	cfg := dir.Config()
	if !cfg.SyncEnabled() {
		fail("sync is not configured for %s, run 'minimem sync init' first", dir.Root)
	}

	centralRepo := cfg.Sync.Path
	if centralRepo == "" {
		fail("no central repository configured, run 'minimem sync init' first")
	}

	validation := central.Validate(centralRepo)
	if !validation.Valid {
		for _, e := range validation.Errors {
			fmt.Printf("%s: %s\n", red("ERROR"), e)
		}
		fail("central repository %s is not usable, check that it is cloned and reachable", centralRepo)
	}

	state := syncstate.Load(dir.Root, "")
	if state.CentralPath == "" {
		fail("no central path recorded for %s, run 'minimem sync init' first", dir.Root)
	}

	policyName := ""
	if cfg.Sync != nil {
		policyName = cfg.Sync.Policy
	}

	return &syncSetup{
		dir:         dir,
		cfg:         cfg,
		centralRepo: centralRepo,
		centralPath: state.CentralPath,
		remoteDir:   remoteDirFor(centralRepo, state.CentralPath),
		policy:      syncstate.PolicyByName(policyName),
	}
}
