/*
Package config manages TOML config for ScriptServe.
*/
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/bastiangx/scriptserve/internal/utils"
	"github.com/charmbracelet/log"
)

const appName = "scriptserve"

// Config holds the entire config structure
type Config struct {
	Completion CompletionConfig `toml:"completion"`
	Catalog    CatalogConfig    `toml:"catalog"`
	Symbols    SymbolsConfig    `toml:"symbols"`
	Server     ServerConfig     `toml:"server"`
}

// CompletionConfig has the feature flags and timing of the engine.
type CompletionConfig struct {
	Enabled    bool `toml:"completion_enabled"`
	Popup      bool `toml:"popup_enabled"`
	Fuzzy      bool `toml:"fuzzy_enabled"`
	Catalog    bool `toml:"constructible_catalog_enabled"`
	DebounceMs int  `toml:"debounce_ms"`
	MaxRecent  int  `toml:"max_recent"`
}

// CatalogConfig locates the entity catalog cache and plugin dirs.
type CatalogConfig struct {
	CachePath  string   `toml:"cache_path"`
	PluginDirs []string `toml:"plugin_dirs"`
}

// SymbolsConfig points at the static symbol table.
type SymbolsConfig struct {
	TablePath string `toml:"table_path"`
}

// ServerConfig has IPC options.
type ServerConfig struct {
	MaxItems int `toml:"max_items"`
}

// Flags are the switches read at the start of every computation.
type Flags struct {
	Completion bool
	Popup      bool
	Fuzzy      bool
	Catalog    bool
}

// Flags returns the feature flags of c.
func (c *Config) Flags() Flags {
	return Flags{
		Completion: c.Completion.Enabled,
		Popup:      c.Completion.Popup,
		Fuzzy:      c.Completion.Fuzzy,
		Catalog:    c.Completion.Catalog,
	}
}

// Debounce is the configured quiet period.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Completion.DebounceMs) * time.Millisecond
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/
// 2. ~/Library/Application Support/ (macOS)
// 3. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	primaryPath := filepath.Join(homeDir, ".config", appName)
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", appName)
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
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
// 2. Default path: [UserConfigDir]/scriptserve/config.toml
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

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Completion: CompletionConfig{
			Enabled:    true,
			Popup:      true,
			Fuzzy:      true,
			Catalog:    true,
			DebounceMs: 60,
			MaxRecent:  20,
		},
		Catalog: CatalogConfig{
			CachePath:  "",
			PluginDirs: []string{},
		},
		Symbols: SymbolsConfig{
			TablePath: "",
		},
		Server: ServerConfig{
			MaxItems: 64,
		},
	}
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

// tryPartialParse keeps every section that still parses as plain TOML
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "completion"); ok {
		extractCompletionConfig(section, &config.Completion)
	}
	if section, ok := utils.ExtractSection(tempConfig, "catalog"); ok {
		extractCatalogConfig(section, &config.Catalog)
	}
	if section, ok := utils.ExtractSection(tempConfig, "symbols"); ok {
		if val, ok := utils.ExtractString(section, "table_path"); ok {
			config.Symbols.TablePath = val
		}
	}
	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		if val, ok := utils.ExtractInt64(section, "max_items"); ok {
			config.Server.MaxItems = val
		}
	}
	return config, nil
}

func extractCompletionConfig(data map[string]any, c *CompletionConfig) {
	if val, ok := utils.ExtractBool(data, "completion_enabled"); ok {
		c.Enabled = val
	}
	if val, ok := utils.ExtractBool(data, "popup_enabled"); ok {
		c.Popup = val
	}
	if val, ok := utils.ExtractBool(data, "fuzzy_enabled"); ok {
		c.Fuzzy = val
	}
	if val, ok := utils.ExtractBool(data, "constructible_catalog_enabled"); ok {
		c.Catalog = val
	}
	if val, ok := utils.ExtractInt64(data, "debounce_ms"); ok {
		c.DebounceMs = val
	}
	if val, ok := utils.ExtractInt64(data, "max_recent"); ok {
		c.MaxRecent = val
	}
}

func extractCatalogConfig(data map[string]any, c *CatalogConfig) {
	if val, ok := utils.ExtractString(data, "cache_path"); ok {
		c.CachePath = val
	}
	if val, ok := utils.ExtractStringSlice(data, "plugin_dirs"); ok {
		c.PluginDirs = val
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

// Update changes flag values and saves to file. Nil pointers keep the
// current value.
func (c *Config) Update(configPath string, completion, popup, fuzzy, catalog *bool, debounceMs *int) error {
	cc := &c.Completion
	if completion != nil {
		cc.Enabled = *completion
	}
	if popup != nil {
		cc.Popup = *popup
	}
	if fuzzy != nil {
		cc.Fuzzy = *fuzzy
	}
	if catalog != nil {
		cc.Catalog = *catalog
	}
	if debounceMs != nil {
		cc.DebounceMs = *debounceMs
	}
	if configPath == "" {
		return nil
	}
	return SaveConfig(c, configPath)
}
