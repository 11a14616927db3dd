// Package syncstate tracks, per memory directory, the durable per-file hash
// history used to classify changes between a local directory and its central
// copy. The state document is always reloaded from disk at the start of an
// operation and rewritten atomically at the end.
package syncstate

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/minimem/minimem/internal/memdir"
	"github.com/minimem/minimem/internal/utils"
)

const (
	// StateFileName is the state document, under the private subdirectory.
	StateFileName = "sync-state.json"

	// SchemaVersion is the current state layout. Version 1 documents carried
	// a per-file modTimes map and no lastSyncedHash; loading one drops the
	// legacy field and bumps the version. Migration never downgrades.
	SchemaVersion = 2
)

// FileHashInfo is the per-file hash record. LastSyncedHash is the three-way
// merge base: the digest both sides held at the end of the last completed
// sync of this file. Once set, it only changes through MarkSynced.
type FileHashInfo struct {
	LocalHash      string    `json:"localHash,omitempty"`
	RemoteHash     string    `json:"remoteHash,omitempty"`
	LastSyncedHash string    `json:"lastSyncedHash,omitempty"`
	LastModified   time.Time `json:"lastModified"`
}

// SyncState is the per-directory durable sync record.
type SyncState struct {
	Version     int                      `json:"version"`
	LastSync    *time.Time               `json:"lastSync"`
	CentralPath string                   `json:"centralPath"`
	Files       map[string]*FileHashInfo `json:"files"`
}

// New returns a fresh empty state pointed at centralPath.
func New(centralPath string) *SyncState {
	return &SyncState{
		Version:     SchemaVersion,
		CentralPath: centralPath,
		Files:       make(map[string]*FileHashInfo),
	}
}

func statePath(dir string) string {
	return filepath.Join(dir, memdir.PrivateDirName, StateFileName)
}

// Load reads the persisted state for dir. Missing or malformed documents
// yield a fresh empty state; older layouts are migrated forward.
func Load(dir, centralPath string) *SyncState {
	data, err := os.ReadFile(statePath(dir))
	if err != nil {
		return New(centralPath)
	}

	var state SyncState
	if err := json.Unmarshal(data, &state); err != nil {
		return New(centralPath)
	}

	if state.Files == nil {
		state.Files = make(map[string]*FileHashInfo)
	}
	if state.CentralPath == "" {
		state.CentralPath = centralPath
	}
	if state.Version < SchemaVersion {
		// The v1 modTimes field is dropped simply by not carrying it in the
		// current schema; the next save persists the migrated layout.
		state.Version = SchemaVersion
	}

	return &state
}

// Save persists the state atomically: the document is written to a temporary
// file next to the target and renamed into place.
func Save(dir string, state *SyncState) error {
	state.Version = SchemaVersion
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return utils.WriteFileAtomic(statePath(dir), data, 0o644)
}

// MarkSynced records that filePath's content has been propagated and both
// sides now hold hash. This is the only place a LastSyncedHash moves.
func MarkSynced(state *SyncState, filePath, hash string) {
	now := time.Now().UTC()
	info, ok := state.Files[filePath]
	if !ok {
		info = &FileHashInfo{}
		state.Files[filePath] = info
	}
	info.LocalHash = hash
	info.RemoteHash = hash
	info.LastSyncedHash = hash
	info.LastModified = now
	state.LastSync = &now
}

// RemoveFile drops a path's record entirely, once a both-sided deletion has
// been acknowledged.
func RemoveFile(state *SyncState, filePath string) {
	delete(state.Files, filePath)
}
