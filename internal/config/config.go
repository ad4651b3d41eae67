// Package config provides configuration loading and structs for the asistan server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	LLM       LLMConfig       `yaml:"llm"`
	Redis     RedisConfig     `yaml:"redis"`
	Resolver  ResolverConfig  `yaml:"resolver"`
	Assistant AssistantConfig `yaml:"assistant"`
	Regions   RegionsConfig   `yaml:"regions"`
	Watch     WatchConfig     `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the conversation database and the snapshot file.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
	// SnapshotPath is a JSON or YAML snapshot file. When empty the snapshot
	// is read from the snapshot_records table of the database.
	SnapshotPath string `yaml:"snapshot_path"`
}

// LLMConfig holds generative backend settings.
type LLMConfig struct {
	Provider     string        `yaml:"provider"` // genai, ollama, or mock
	Model        string        `yaml:"model"`
	APIKey       string        `yaml:"api_key"`
	BaseURL      string        `yaml:"base_url"`
	Timeout      time.Duration `yaml:"timeout"`
	HistoryTurns int           `yaml:"history_turns"`
}

// RedisConfig holds the optional conversation state cache. Empty Address disables it.
type RedisConfig struct {
	Address  string        `yaml:"address"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	StateTTL time.Duration `yaml:"state_ttl"`
}

// Enabled reports whether a Redis address is configured.
func (r *RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.Address) != ""
}

// ResolverConfig holds the resolver cascade limits and switches.
type ResolverConfig struct {
	DetailCap                int    `yaml:"detail_cap"`
	ClinicListCap            int    `yaml:"clinic_list_cap"`
	ListCap                  int    `yaml:"list_cap"`
	DefaultWindowDays        int    `yaml:"default_window_days"`
	IncludeStockInUserDetail bool   `yaml:"include_stock_in_user_detail"`
	FuzzyNames               *bool  `yaml:"fuzzy_names"`
	Timezone                 string `yaml:"timezone"`
}

// FuzzyNamesOrDefault returns whether clinic names match with typos; defaults to true when unset.
func (r *ResolverConfig) FuzzyNamesOrDefault() bool {
	if r.FuzzyNames != nil {
		return *r.FuzzyNames
	}
	return true
}

// Location returns the configured time zone, falling back to time.Local.
func (r *ResolverConfig) Location() *time.Location {
	if r.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// AssistantConfig holds persona settings used in prompts.
type AssistantConfig struct {
	Name        string `yaml:"name"`
	CompanyName string `yaml:"company_name"`
}

// RegionsConfig holds the province → region lookup.
type RegionsConfig struct {
	// Macro maps a province name to a region name.
	Macro map[string]string `yaml:"macro"`
	// MacroFile is a YAML file mapping a region name to its provinces.
	MacroFile string `yaml:"macro_file"`
}

// WatchConfig holds file watch settings for the snapshot and region files.
type WatchConfig struct {
	Enabled *bool `yaml:"enabled"`
}

// EnabledOrDefault returns whether to watch files; defaults to true when unset.
func (w *WatchConfig) EnabledOrDefault() bool {
	if w.Enabled != nil {
		return *w.Enabled
	}
	return true
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	if cfg.Storage.SnapshotPath != "" {
		cfg.Storage.SnapshotPath = expandPath(cfg.Storage.SnapshotPath, configDir)
	}
	if cfg.Regions.MacroFile != "" {
		cfg.Regions.MacroFile = expandPath(cfg.Regions.MacroFile, configDir)
	}

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Provinces returns the merged province → region table. Entries from Macro
// override entries from MacroFile. A nil map means "use the built-in table".
func (r *RegionsConfig) Provinces() (map[string]string, error) {
	if len(r.Macro) == 0 && r.MacroFile == "" {
		return nil, nil
	}
	out := make(map[string]string)
	if r.MacroFile != "" {
		fromFile, err := LoadRegionFile(r.MacroFile)
		if err != nil {
			return nil, err
		}
		for p, region := range fromFile {
			out[p] = region
		}
	}
	for p, region := range r.Macro {
		out[p] = region
	}
	return out, nil
}

// LoadRegionFile reads a YAML file of the form
//
//	Ege Bölgesi: [izmir, manisa, aydın]
//
// and returns it inverted as province → region.
func LoadRegionFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read region file: %w", err)
	}
	var byRegion map[string][]string
	if err := yaml.Unmarshal(data, &byRegion); err != nil {
		return nil, fmt.Errorf("failed to parse region file: %w", err)
	}
	out := make(map[string]string)
	for region, provinces := range byRegion {
		for _, p := range provinces {
			out[p] = region
		}
	}
	return out, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
