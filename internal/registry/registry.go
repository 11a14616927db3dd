// Package registry manages the central repository's mapping document: which
// machine syncs which local directory against which central path.
package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/minimem/minimem/internal/utils"
)

// FileName is the registry document, stored at the central repository root.
const FileName = ".minimem-registry.json"

const currentVersion = 1

// Mapping associates one central path with the local directory and machine
// that syncs it.
type Mapping struct {
	Path      string    `json:"path"`
	LocalPath string    `json:"localPath"`
	MachineID string    `json:"machineId"`
	LastSync  time.Time `json:"lastSync"`
}

// Registry is the central store's full mapping document. It is read fully and
// rewritten fully on each mutation.
type Registry struct {
	Version  int       `json:"version"`
	Mappings []Mapping `json:"mappings"`
}

func New() *Registry {
	return &Registry{
		Version:  currentVersion,
		Mappings: []Mapping{},
	}
}

func Path(centralRoot string) string {
	return filepath.Join(centralRoot, FileName)
}

// Read loads the registry from the central repository. A missing or corrupt
// document yields an empty registry; the registry is always reconstructable.
func Read(centralRoot string) *Registry {
	data, err := os.ReadFile(Path(centralRoot))
	if err != nil {
		return New()
	}

	var reg Registry
	if err := json.Unmarshal(data, &reg); err != nil {
		return New()
	}
	if reg.Version == 0 {
		reg.Version = currentVersion
	}
	if reg.Mappings == nil {
		reg.Mappings = []Mapping{}
	}
	return &reg
}

// Write persists the full registry document, replacing the prior one.
func Write(centralRoot string, reg *Registry) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return err
	}
	return utils.WriteFileAtomic(Path(centralRoot), data, 0o644)
}

// normalizePath treats "proj" and "proj/" as the same logical central path.
func normalizePath(p string) string {
	return strings.TrimSuffix(strings.TrimSpace(p), "/")
}

// CollisionResult reports the outcome of a collision check. When a collision
// is found, the conflicting machine and its local path are surfaced so the
// user can resolve it manually.
type CollisionResult struct {
	Collision bool
	MachineID string
	LocalPath string
}

// CheckCollision looks for an existing mapping of centralPath held by a
// different machine. Same machine re-registering its own path is fine.
func CheckCollision(reg *Registry, centralPath, localPath, machineID string) CollisionResult {
	want := normalizePath(centralPath)
	for _, m := range reg.Mappings {
		if normalizePath(m.Path) == want && m.MachineID != machineID {
			return CollisionResult{
				Collision: true,
				MachineID: m.MachineID,
				LocalPath: m.LocalPath,
			}
		}
	}
	return CollisionResult{}
}

// Add returns a registry with the mapping inserted, replacing any prior
// mapping for the same (path, machine) pair.
func Add(reg *Registry, mapping Mapping) *Registry {
	out := &Registry{Version: reg.Version, Mappings: make([]Mapping, 0, len(reg.Mappings)+1)}
	want := normalizePath(mapping.Path)
	for _, m := range reg.Mappings {
		if normalizePath(m.Path) == want && m.MachineID == mapping.MachineID {
			continue
		}
		out.Mappings = append(out.Mappings, m)
	}
	out.Mappings = append(out.Mappings, mapping)
	return out
}

// Find returns the mapping for centralPath held by machineID, if any.
func Find(reg *Registry, centralPath, machineID string) (Mapping, bool) {
	want := normalizePath(centralPath)
	for _, m := range reg.Mappings {
		if normalizePath(m.Path) == want && m.MachineID == machineID {
			return m, true
		}
	}
	return Mapping{}, false
}

// Remove drops the mapping for centralPath held by machineID.
func Remove(reg *Registry, centralPath, machineID string) *Registry {
	out := &Registry{Version: reg.Version, Mappings: make([]Mapping, 0, len(reg.Mappings))}
	want := normalizePath(centralPath)
	for _, m := range reg.Mappings {
		if normalizePath(m.Path) == want && m.MachineID == machineID {
			continue
		}
		out.Mappings = append(out.Mappings, m)
	}
	return out
}
