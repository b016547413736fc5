/*
Package config manages TOML config for DonorServe services.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/avoss/donorserve/internal/utils"
	"github.com/charmbracelet/log"
)

// Config holds the entire config structure
type Config struct {
	Search  SearchConfig  `toml:"search"`
	Session SessionConfig `toml:"session"`
	Server  ServerConfig  `toml:"server"`
	Catalog CatalogConfig `toml:"catalog"`
}

// SearchConfig holds matcher and suggestion tuning.
type SearchConfig struct {
	// FuzzyThreshold is the minimum acceptable similarity for fuzzy
	// matches. 0.35 is the documented default; the boundary is covered
	// by tests either side.
	FuzzyThreshold  float64 `toml:"fuzzy_threshold"`
	CorrectionFloor float64 `toml:"correction_floor"`
	SuggestionLimit int     `toml:"suggestion_limit"`
	HighlightMarker string  `toml:"highlight_marker"`
}

// SessionConfig holds interactive session options.
type SessionConfig struct {
	DebounceMs int `toml:"debounce_ms"`
}

// ServerConfig has IPC server related options.
type ServerConfig struct {
	MaxQuery     int `toml:"max_query"`
	DefaultLimit int `toml:"default_limit"`
	MaxLimit     int `toml:"max_limit"`
}

// CatalogConfig points at the catalog and type-table files.
type CatalogConfig struct {
	Path      string `toml:"path"`
	TypesPath string `toml:"types_path"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			FuzzyThreshold:  0.35,
			CorrectionFloor: 0.55,
			SuggestionLimit: 5,
			HighlightMarker: "**",
		},
		Session: SessionConfig{
			DebounceMs: 300,
		},
		Server: ServerConfig{
			MaxQuery:     120,
			DefaultLimit: 50,
			MaxLimit:     500,
		},
		Catalog: CatalogConfig{
			Path: "catalog.csv",
		},
	}
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/donorserve
// 2. Current executable dir
// 3. builtin defaults (caller handles the error)
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err == nil {
		primaryPath := filepath.Join(homeDir, ".config", "donorserve")
		if utils.EnsureDir(primaryPath) == nil {
			return primaryPath, nil
		}
	}
	execPath, err := os.Executable()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return filepath.Dir(execPath), nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: ~/.config/donorserve/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse salvages valid sections from a malformed TOML file
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	parsed, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(parsed, "search"); ok {
		extractSearchConfig(section, &config.Search)
	}
	if section, ok := utils.ExtractSection(parsed, "session"); ok {
		extractSessionConfig(section, &config.Session)
	}
	if section, ok := utils.ExtractSection(parsed, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(parsed, "catalog"); ok {
		extractCatalogConfig(section, &config.Catalog)
	}
	return config, nil
}

func extractSearchConfig(data map[string]any, search *SearchConfig) {
	if val, ok := utils.ExtractFloat64(data, "fuzzy_threshold"); ok {
		search.FuzzyThreshold = val
	}
	if val, ok := utils.ExtractFloat64(data, "correction_floor"); ok {
		search.CorrectionFloor = val
	}
	if val, ok := utils.ExtractInt64(data, "suggestion_limit"); ok {
		search.SuggestionLimit = val
	}
	if val, ok := utils.ExtractString(data, "highlight_marker"); ok {
		search.HighlightMarker = val
	}
}

func extractSessionConfig(data map[string]any, session *SessionConfig) {
	if val, ok := utils.ExtractInt64(data, "debounce_ms"); ok {
		session.DebounceMs = val
	}
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_query"); ok {
		server.MaxQuery = val
	}
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		server.DefaultLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "max_limit"); ok {
		server.MaxLimit = val
	}
}

func extractCatalogConfig(data map[string]any, catalog *CatalogConfig) {
	if val, ok := utils.ExtractString(data, "path"); ok {
		catalog.Path = val
	}
	if val, ok := utils.ExtractString(data, "types_path"); ok {
		catalog.TypesPath = val
	}
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// Update changes config values and saves to file. Nil fields are left
// untouched.
func (c *Config) Update(configPath string, debounceMs, suggestionLimit *int, fuzzyThreshold *float64) error {
	if debounceMs != nil {
		c.Session.DebounceMs = *debounceMs
	}
	if suggestionLimit != nil {
		c.Search.SuggestionLimit = *suggestionLimit
	}
	if fuzzyThreshold != nil {
		c.Search.FuzzyThreshold = *fuzzyThreshold
	}
	return SaveConfig(c, configPath)
}
