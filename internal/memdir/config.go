package memdir

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/minimem/minimem/internal/utils"
)

const (
	// PrivateDirName is the per-directory metadata directory. Everything the
	// subsystem persists for a memory directory lives under it.
	PrivateDirName = ".minimem"

	configFileName = "config.json"
)

var (
	DefaultInclude = []string{"**/*.md", "**/*.txt"}
	DefaultExclude = []string{}
)

// SyncConfig is the sync section of a memory directory's config. The rest of
// the config document belongs to other components and is never touched here.
type SyncConfig struct {
	Enabled bool     `json:"enabled"`
	Path    string   `json:"path,omitempty"`
	Include []string `json:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
	Policy  string   `json:"policy,omitempty"`
}

type Config struct {
	Sync *SyncConfig `json:"sync,omitempty"`

	// extra preserves fields owned by other components across a save.
	extra map[string]json.RawMessage
}

func ConfigPath(dir string) string {
	return filepath.Join(dir, PrivateDirName, configFileName)
}

// LoadConfig reads the directory config. A missing or unparsable file yields
// an empty config, never an error.
func LoadConfig(dir string) *Config {
	cfg := &Config{}

	data, err := os.ReadFile(ConfigPath(dir))
	if err != nil {
		return cfg
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return cfg
	}

	if syncRaw, ok := raw["sync"]; ok {
		var sc SyncConfig
		if err := json.Unmarshal(syncRaw, &sc); err == nil {
			cfg.Sync = &sc
		}
		delete(raw, "sync")
	}
	cfg.extra = raw

	return cfg
}

// Save writes the config back, keeping any fields owned by other components.
func (c *Config) Save(dir string) error {
	doc := make(map[string]json.RawMessage, len(c.extra)+1)
	for k, v := range c.extra {
		doc[k] = v
	}
	if c.Sync != nil {
		syncRaw, err := json.Marshal(c.Sync)
		if err != nil {
			return err
		}
		doc["sync"] = syncRaw
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	return utils.WriteFileAtomic(ConfigPath(dir), data, 0o644)
}

// Include returns the configured include globs, or the defaults.
func (c *Config) Include() []string {
	if c.Sync != nil && len(c.Sync.Include) > 0 {
		return c.Sync.Include
	}
	return DefaultInclude
}

// Exclude returns the configured exclude globs, or the defaults.
func (c *Config) Exclude() []string {
	if c.Sync != nil && len(c.Sync.Exclude) > 0 {
		return c.Sync.Exclude
	}
	return DefaultExclude
}

// SyncEnabled reports whether the config carries an explicit, usable sync
// section. A disabled or path-less section does not count.
func (c *Config) SyncEnabled() bool {
	if c.Sync == nil {
		return false
	}
	return c.Sync.Enabled || c.Sync.Path != ""
}
