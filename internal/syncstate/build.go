package syncstate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/minimem/minimem/internal/hashutil"
	"golang.org/x/sync/errgroup"
)

// Change is one non-unchanged path reported by a build pass.
type Change struct {
	Path       string
	Status     FileStatus
	LocalHash  string
	RemoteHash string
}

// BuildOptions configures one diff pass between a local directory and its
// central copy.
type BuildOptions struct {
	LocalDir    string
	RemoteDir   string
	CentralPath string
	Include     []string
	Exclude     []string
	Prev        *SyncState
	Policy      Policy
}

// Build lists syncable files on both sides, hashes every path on both sides
// concurrently, classifies each against the persisted last-synced base and
// returns the updated state plus the list of changes. LastSyncedHash values
// are preserved untouched; only MarkSynced moves them.
func Build(ctx context.Context, opts BuildOptions) (*SyncState, []Change, error) {
	if opts.Policy == nil {
		opts.Policy = ThreeWay{}
	}

	var localFiles, remoteFiles []string
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		if err := egCtx.Err(); err != nil {
			return err
		}
		var err error
		localFiles, err = ListSyncableFiles(opts.LocalDir, opts.Include, opts.Exclude)
		if err != nil {
			return fmt.Errorf("list local files: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		if err := egCtx.Err(); err != nil {
			return err
		}
		var err error
		remoteFiles, err = ListSyncableFiles(opts.RemoteDir, opts.Include, opts.Exclude)
		if err != nil {
			return fmt.Errorf("list remote files: %w", err)
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}

	pathSet := make(map[string]struct{}, len(localFiles)+len(remoteFiles))
	for _, p := range localFiles {
		pathSet[p] = struct{}{}
	}
	for _, p := range remoteFiles {
		pathSet[p] = struct{}{}
	}
	if opts.Prev != nil {
		// Tracked paths now absent on both sides still need a pass so
		// deletions get acknowledged.
		for p := range opts.Prev.Files {
			pathSet[p] = struct{}{}
		}
	}

	paths := make([]string, 0, len(pathSet))
	for p := range pathSet {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	localHashes := make([]string, len(paths))
	remoteHashes := make([]string, len(paths))

	// The local and remote read of a given path are independent, so each gets
	// its own goroutine. Cross-path ordering does not affect the result.
	heg, hegCtx := errgroup.WithContext(ctx)
	for i, p := range paths {
		i, p := i, p
		heg.Go(func() error {
			if err := hegCtx.Err(); err != nil {
				return err
			}
			h, err := hashIfExists(filepath.Join(opts.LocalDir, filepath.FromSlash(p)))
			if err != nil {
				return fmt.Errorf("hash local %s: %w", p, err)
			}
			localHashes[i] = h
			return nil
		})
		heg.Go(func() error {
			if err := hegCtx.Err(); err != nil {
				return err
			}
			h, err := hashIfExists(filepath.Join(opts.RemoteDir, filepath.FromSlash(p)))
			if err != nil {
				return fmt.Errorf("hash remote %s: %w", p, err)
			}
			remoteHashes[i] = h
			return nil
		})
	}
	if err := heg.Wait(); err != nil {
		return nil, nil, err
	}

	state := New(opts.CentralPath)
	if opts.Prev != nil && opts.Prev.LastSync != nil {
		state.LastSync = opts.Prev.LastSync
	}

	now := time.Now().UTC()
	var changes []Change

	for i, p := range paths {
		localHash, remoteHash := localHashes[i], remoteHashes[i]

		var base string
		if opts.Prev != nil {
			if prev, ok := opts.Prev.Files[p]; ok {
				base = prev.LastSyncedHash
			}
		}

		state.Files[p] = &FileHashInfo{
			LocalHash:      localHash,
			RemoteHash:     remoteHash,
			LastSyncedHash: base,
			LastModified:   now,
		}

		status := opts.Policy.Classify(localHash, remoteHash, base)
		if status != StatusUnchanged {
			changes = append(changes, Change{
				Path:       p,
				Status:     status,
				LocalHash:  localHash,
				RemoteHash: remoteHash,
			})
		}
	}

	slog.Debug("state diff", "central", opts.CentralPath, "tracked", len(paths), "changes", len(changes))

	return state, changes, nil
}

// hashIfExists digests a file, treating absence as an empty hash. I/O errors
// other than "not found" propagate.
func hashIfExists(path string) (string, error) {
	hash, err := hashutil.HashFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return hash, nil
}
