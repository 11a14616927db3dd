package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/minimem/minimem/internal/central"
	"github.com/minimem/minimem/internal/memdir"
	"github.com/minimem/minimem/internal/registry"
	"github.com/minimem/minimem/internal/syncstate"
	"github.com/minimem/minimem/internal/utils"
	"github.com/spf13/cobra"
)

func init() {
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Synchronize a memory directory with the central repository",
	}
	syncCmd.AddCommand(newSyncInitCmd())
	syncCmd.AddCommand(newSyncStatusCmd())
	syncCmd.AddCommand(newSyncPushCmd())
	syncCmd.AddCommand(newSyncPullCmd())
	syncCmd.AddCommand(newSyncRemoveCmd())
	rootCmd.AddCommand(syncCmd)
}

func newSyncInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [CENTRAL-REPO] [CENTRAL-PATH]",
		Short: "Map this directory to a path in the central repository",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			centralRepo, centralPath := args[0], args[1]

			dir := openDir()
			if !dir.Initialized() {
				fail("%v", memdir.ErrNotInitialized)
			}

			info := memdir.Info(dir.Root)
			if info.Type == memdir.ProjectBound {
				fail("%s is inside the git repository at %s and is synced by it; sync init does not apply", dir.Root, info.GitRoot)
			}

			result := central.Init(centralRepo)
			if !result.Success {
				fail("%s", result.Message)
			}

			resolvedRepo, err := utils.ResolvePath(centralRepo)
			if err != nil {
				fail("%v", err)
			}

			machineID, err := registry.MachineID(dir.PrivateDir)
			if err != nil {
				fail("resolve machine id: %v", err)
			}

			reg := registry.Read(resolvedRepo)
			col := registry.CheckCollision(reg, centralPath, dir.Root, machineID)
			if col.Collision {
				fail("central path %q is already mapped by machine %s (local path %s); remove that mapping first", centralPath, col.MachineID, col.LocalPath)
			}

			reg = registry.Add(reg, registry.Mapping{
				Path:      centralPath,
				LocalPath: dir.Root,
				MachineID: machineID,
				LastSync:  time.Now().UTC(),
			})
			if err := registry.Write(resolvedRepo, reg); err != nil {
				fail("write registry: %v", err)
			}

			if err := utils.EnsureDir(remoteDirFor(resolvedRepo, centralPath)); err != nil {
				fail("create central subdirectory: %v", err)
			}

			state := syncstate.Load(dir.Root, centralPath)
			state.CentralPath = centralPath
			if err := syncstate.Save(dir.Root, state); err != nil {
				fail("write sync state: %v", err)
			}

			cfg := dir.Config()
			if cfg.Sync == nil {
				cfg.Sync = &memdir.SyncConfig{Include: memdir.DefaultInclude}
			}
			cfg.Sync.Enabled = true
			cfg.Sync.Path = resolvedRepo
			if err := cfg.Save(dir.Root); err != nil {
				fail("write config: %v", err)
			}

			fmt.Printf("Mapped %s to %s in %s\n", cyan(dir.Root), cyan(centralPath), resolvedRepo)
		},
	}
}

func newSyncStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show per-file sync status against the central repository",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			s := requireSyncSetup()

			state := syncstate.Load(s.dir.Root, s.centralPath)
			_, changes, err := syncstate.Build(cmd.Context(), syncstate.BuildOptions{
				LocalDir:    s.dir.Root,
				RemoteDir:   s.remoteDir,
				CentralPath: s.centralPath,
				Include:     s.cfg.Include(),
				Exclude:     s.cfg.Exclude(),
				Prev:        state,
				Policy:      s.policy,
			})
			if err != nil {
				fail("%v", err)
			}

			if len(changes) == 0 {
				fmt.Printf("%s everything in sync\n", green("OK"))
				return
			}

			for _, c := range changes {
				fmt.Printf("%s  %s\n", renderStatus(c.Status), c.Path)
			}
		},
	}
}

func renderStatus(status syncstate.FileStatus) string {
	switch status {
	case syncstate.StatusConflict:
		return red(string(status))
	case syncstate.StatusNewLocal, syncstate.StatusNewRemote:
		return green(string(status))
	case syncstate.StatusDeletedLocal, syncstate.StatusDeletedRemote:
		return yellow(string(status))
	default:
		return cyan(string(status))
	}
}

func newSyncPushCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Propagate local changes to the central repository",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			runSync(cmd, pushDirection, force)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Resolve conflicts by overwriting the central copy")
	return cmd
}

func newSyncPullCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Apply central repository changes locally",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			runSync(cmd, pullDirection, force)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Resolve conflicts by overwriting the local copy")
	return cmd
}

func newSyncRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove",
		Short: "Remove this directory's mapping from the central registry",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			s := requireSyncSetup()

			machineID, err := registry.MachineID(s.dir.PrivateDir)
			if err != nil {
				fail("resolve machine id: %v", err)
			}

			reg := registry.Read(s.centralRepo)
			if _, ok := registry.Find(reg, s.centralPath, machineID); !ok {
				fail("no mapping for %s held by this machine", s.centralPath)
			}
			reg = registry.Remove(reg, s.centralPath, machineID)
			if err := registry.Write(s.centralRepo, reg); err != nil {
				fail("write registry: %v", err)
			}

			s.cfg.Sync.Enabled = false
			s.cfg.Sync.Path = ""
			if err := s.cfg.Save(s.dir.Root); err != nil {
				fail("write config: %v", err)
			}

			// The local sync-state file stays behind as a harmless orphan.
			fmt.Printf("Removed mapping %s for %s\n", cyan(s.centralPath), s.dir.Root)
		},
	}
}

type syncDirection int

const (
	pushDirection syncDirection = iota
	pullDirection
)

func runSync(cmd *cobra.Command, direction syncDirection, force bool) {
	s := requireSyncSetup()

	if err := s.dir.Lock(); err != nil {
		fail("%v", err)
	}
	defer s.dir.Unlock()

	prev := syncstate.Load(s.dir.Root, s.centralPath)
	state, changes, err := syncstate.Build(cmd.Context(), syncstate.BuildOptions{
		LocalDir:    s.dir.Root,
		RemoteDir:   s.remoteDir,
		CentralPath: s.centralPath,
		Include:     s.cfg.Include(),
		Exclude:     s.cfg.Exclude(),
		Prev:        prev,
		Policy:      s.policy,
	})
	if err != nil {
		fail("%v", err)
	}

	copied, deleted, skipped, conflicts := 0, 0, 0, 0

	for _, c := range changes {
		localFile := filepath.Join(s.dir.Root, filepath.FromSlash(c.Path))
		remoteFile := filepath.Join(s.remoteDir, filepath.FromSlash(c.Path))

		switch {
		case direction == pushDirection && (c.Status == syncstate.StatusNewLocal || c.Status == syncstate.StatusLocalOnly):
			if err := utils.CopyFile(localFile, remoteFile); err != nil {
				fail("copy %s: %v", c.Path, err)
			}
			syncstate.MarkSynced(state, c.Path, c.LocalHash)
			copied++

		case direction == pushDirection && c.Status == syncstate.StatusDeletedLocal:
			if err := os.Remove(remoteFile); err != nil && !os.IsNotExist(err) {
				fail("delete %s: %v", c.Path, err)
			}
			syncstate.RemoveFile(state, c.Path)
			deleted++

		case direction == pullDirection && (c.Status == syncstate.StatusNewRemote || c.Status == syncstate.StatusRemoteOnly):
			if err := utils.CopyFile(remoteFile, localFile); err != nil {
				fail("copy %s: %v", c.Path, err)
			}
			syncstate.MarkSynced(state, c.Path, c.RemoteHash)
			copied++

		case direction == pullDirection && c.Status == syncstate.StatusDeletedRemote:
			if err := os.Remove(localFile); err != nil && !os.IsNotExist(err) {
				fail("delete %s: %v", c.Path, err)
			}
			syncstate.RemoveFile(state, c.Path)
			deleted++

		case c.Status == syncstate.StatusConflict:
			if !force {
				fmt.Printf("%s  %s (use --force to overwrite)\n", red("conflict"), c.Path)
				conflicts++
				continue
			}
			if direction == pushDirection {
				if err := utils.CopyFile(localFile, remoteFile); err != nil {
					fail("copy %s: %v", c.Path, err)
				}
				syncstate.MarkSynced(state, c.Path, c.LocalHash)
			} else {
				if err := utils.CopyFile(remoteFile, localFile); err != nil {
					fail("copy %s: %v", c.Path, err)
				}
				syncstate.MarkSynced(state, c.Path, c.RemoteHash)
			}
			copied++

		default:
			// Change belongs to the other direction.
			skipped++
		}
	}

	// Acknowledge records whose file is gone on both sides.
	for path, info := range state.Files {
		if info.LocalHash == "" && info.RemoteHash == "" {
			syncstate.RemoveFile(state, path)
		}
	}

	if err := syncstate.Save(s.dir.Root, state); err != nil {
		fail("write sync state: %v", err)
	}

	touchRegistryLastSync(s)

	fmt.Printf("Synced %s: %d copied, %d deleted, %d skipped\n", cyan(s.centralPath), copied, deleted, skipped)
	if conflicts > 0 {
		fmt.Printf("%s: %d conflicting file(s) left untouched\n", red("CONFLICTS"), conflicts)
		os.Exit(1)
	}
}

// touchRegistryLastSync refreshes this machine's mapping timestamp in the
// central registry. Best effort; a failure never undoes a completed sync.
func touchRegistryLastSync(s *syncSetup) {
	machineID, err := registry.MachineID(s.dir.PrivateDir)
	if err != nil {
		return
	}
	reg := registry.Read(s.centralRepo)
	mapping, ok := registry.Find(reg, s.centralPath, machineID)
	if !ok {
		mapping = registry.Mapping{
			Path:      s.centralPath,
			LocalPath: s.dir.Root,
			MachineID: machineID,
		}
	}
	mapping.LastSync = time.Now().UTC()
	reg = registry.Add(reg, mapping)
	if err := registry.Write(s.centralRepo, reg); err != nil {
		fmt.Printf("%s: could not update registry timestamp: %v\n", yellow("WARN"), err)
	}
}
