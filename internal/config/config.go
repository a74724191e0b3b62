/*
Package config handles loading, saving, and validating delta-ego configuration.

Configuration is stored in ~/.delta-ego.json by default. Paths ending in
.yaml or .yml are read and written as YAML with the same keys.

Schema:
  {
    "catalogue": "/path/to/vad.csv",
    "search": {"k": 5, "radius": 1.0, "sigma": 0.5, "mode": "knn~l2 -S"},
    "ego": {
      "baseline": {"valence": 0, "arousal": 0, "dominance": 0},
      "stabilityRadius": 0.3
    },
    "weights": {"weightV_stress": 0.3, "weight_k": 0.5},
    "variables": {"theta_0": 0, "dampening_factor": 0.08, "lability_window": 8},
    "session": {"actor": "default", "historyLimit": 10000, "analysisLimit": 1000},
    "storage": {"enabled": true, "path": "~/.delta-ego/history.db", "retentionDays": 30}
  }
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/khanglvm/delta-ego/internal/ego"
)

// Environment variables consulted by Load.
const (
	EnvConfigPath = "DELTA_EGO_CONFIG"
	EnvCatalogue  = "DELTA_EGO_CATALOGUE"
)

// Defaults applied by NewConfig and to omitted fields on load.
const (
	DefaultK             = 5
	DefaultRadius        = 1.0
	DefaultSigma         = 0.5
	DefaultMode          = "knn~l2 -S"
	DefaultActor         = "default"
	DefaultHistoryLimit  = 10000
	DefaultAnalysisLimit = 1000
	DefaultRetentionDays = 30
)

// Config represents the root configuration structure.
type Config struct {
	// Catalogue is the path of the VAD lexicon file.
	Catalogue string `json:"catalogue" yaml:"catalogue"`

	Search    *SearchSettings  `json:"search,omitempty" yaml:"search,omitempty"`
	EGO       *ego.Axis        `json:"ego,omitempty" yaml:"ego,omitempty"`
	Weights   *ego.Weights     `json:"weights,omitempty" yaml:"weights,omitempty"`
	Variables *ego.Variables   `json:"variables,omitempty" yaml:"variables,omitempty"`
	Session   *SessionSettings `json:"session,omitempty" yaml:"session,omitempty"`
	Storage   *StorageSettings `json:"storage,omitempty" yaml:"storage,omitempty"`
}

// SearchSettings are the query defaults used when a caller omits them.
type SearchSettings struct {
	K      int     `json:"k,omitempty" yaml:"k,omitempty"`
	Radius float64 `json:"radius,omitempty" yaml:"radius,omitempty"`
	Sigma  float64 `json:"sigma,omitempty" yaml:"sigma,omitempty"`
	Mode   string  `json:"mode,omitempty" yaml:"mode,omitempty"`
}

// SessionSettings configure the per-actor session.
type SessionSettings struct {
	Actor string `json:"actor,omitempty" yaml:"actor,omitempty"`

	// HistoryLimit caps the retained trajectory; 0 keeps everything.
	HistoryLimit int `json:"historyLimit" yaml:"historyLimit"`

	// AnalysisLimit caps the retained analyses; 0 keeps everything.
	AnalysisLimit int `json:"analysisLimit" yaml:"analysisLimit"`

	AutoAnalyze bool `json:"autoAnalyze,omitempty" yaml:"autoAnalyze,omitempty"`
}

// StorageSettings configure the search history database.
type StorageSettings struct {
	// Enabled defaults to true when omitted.
	Enabled *bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`

	// Path defaults to ~/.delta-ego/history.db when empty.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	RetentionDays int `json:"retentionDays,omitempty" yaml:"retentionDays,omitempty"`
}

// NewConfig creates a configuration with every default filled in.
func NewConfig() *Config {
	axis := ego.DefaultAxis()
	enabled := true
	return &Config{
		Search: &SearchSettings{
			K:      DefaultK,
			Radius: DefaultRadius,
			Sigma:  DefaultSigma,
			Mode:   DefaultMode,
		},
		EGO: &axis,
		Session: &SessionSettings{
			Actor:         DefaultActor,
			HistoryLimit:  DefaultHistoryLimit,
			AnalysisLimit: DefaultAnalysisLimit,
		},
		Storage: &StorageSettings{
			Enabled:       &enabled,
			RetentionDays: DefaultRetentionDays,
		},
	}
}

// applyDefaults fills sections and zero fields a loaded file left out.
func (c *Config) applyDefaults() {
	def := NewConfig()
	if c.Search == nil {
		c.Search = def.Search
	}
	if c.Search.K == 0 {
		c.Search.K = DefaultK
	}
	if c.Search.Radius == 0 {
		c.Search.Radius = DefaultRadius
	}
	if c.Search.Sigma == 0 {
		c.Search.Sigma = DefaultSigma
	}
	if c.Search.Mode == "" {
		c.Search.Mode = DefaultMode
	}
	c.EGO = def.EGO.Merge(c.EGO)
	if c.Session == nil {
		c.Session = def.Session
	}
	if c.Session.Actor == "" {
		c.Session.Actor = DefaultActor
	}
	if c.Storage == nil {
		c.Storage = def.Storage
	}
	if c.Storage.Enabled == nil {
		c.Storage.Enabled = def.Storage.Enabled
	}
	if c.Storage.RetentionDays == 0 {
		c.Storage.RetentionDays = DefaultRetentionDays
	}
}

// applyEnv lets the environment override file values.
func (c *Config) applyEnv() {
	if p := os.Getenv(EnvCatalogue); p != "" {
		c.Catalogue = p
	}
}

// StorageEnabled reports whether search history should be persisted.
func (c *Config) StorageEnabled() bool {
	return c.Storage == nil || c.Storage.Enabled == nil || *c.Storage.Enabled
}

// Params resolves the engine parameters the configuration describes.
func (c *Config) Params() (ego.Params, error) {
	return ego.Resolve(c.Weights, c.Variables, c.EGO)
}

// GetDefaultConfigPath returns $DELTA_EGO_CONFIG or ~/.delta-ego.json.
func GetDefaultConfigPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".delta-ego.json"), nil
}

// Load reads the configuration from the default path.
func Load() (*Config, error) {
	configPath, err := GetDefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadOrDefault reads the configuration at path, falling back to the
// defaults (with environment overrides) when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := LoadFrom(path)
	if err == nil {
		return cfg, nil
	}
	if _, ok := err.(*ConfigNotFoundError); !ok {
		return nil, err
	}
	cfg = NewConfig()
	cfg.applyEnv()
	return cfg, nil
}

// LoadOrCreate reads the configuration at path, writing and returning the
// defaults when the file does not exist yet.
func LoadOrCreate(path string) (*Config, error) {
	cfg, err := LoadFrom(path)
	if err == nil {
		return cfg, nil
	}
	if _, ok := err.(*ConfigNotFoundError); !ok {
		return nil, err
	}

	cfg = NewConfig()
	if err := Save(cfg, path); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}
