/*
Package config manages the TOML config for the revindex server and CLI.
*/
package config

import (
	"path/filepath"

	"github.com/bastiangx/revindex/internal/utils"
	"github.com/charmbracelet/log"
)

// FileName is the config file looked up in the config directory.
const FileName = "revindex.toml"

// Config holds the entire config structure
type Config struct {
	Server ServerConfig `toml:"server"`
	Index  IndexConfig  `toml:"index"`
	CLI    CliConfig    `toml:"cli"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	MaxLimit     int `toml:"max_limit"`
	MaxPrefix    int `toml:"max_prefix"`
	MaxQuery     int `toml:"max_query"`
	MaxContext   int `toml:"max_context"`
	CacheSize    int `toml:"cache_size"`
	DefaultLimit int `toml:"default_limit"`
}

// IndexConfig holds the index inputs and rebuild policy.
type IndexConfig struct {
	WordsPath string `toml:"words_path"`
	DocsPath  string `toml:"docs_path"`
	// ReindexAfter triggers a merge-dedup-reindex once that many items
	// were appended since the last rebuild; 0 leaves it to the client.
	ReindexAfter int `toml:"reindex_after"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultLimit    int  `toml:"default_limit"`
	DefaultMinLen   int  `toml:"default_min_len"`
	DefaultMaxLen   int  `toml:"default_max_len"`
	DefaultNoFilter bool `toml:"default_no_filter"`
	DefaultContext  int  `toml:"default_context"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			MaxLimit:     64,
			MaxPrefix:    60,
			MaxQuery:     256,
			MaxContext:   5,
			CacheSize:    1024,
			DefaultLimit: 10,
		},
		Index: IndexConfig{
			WordsPath:    "words.txt",
			DocsPath:     "docs.txt",
			ReindexAfter: 0,
		},
		CLI: CliConfig{
			DefaultLimit:    10,
			DefaultMinLen:   1,
			DefaultMaxLen:   24,
			DefaultNoFilter: false,
			DefaultContext:  1,
		},
	}
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [configDir]/revindex.toml, created when missing
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath, configDir string) (*Config, string) {
	if customConfigPath != "" {
		if utils.FileExists(customConfigPath) {
			config, err := LoadConfig(customConfigPath)
			if err == nil {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath
			}
			log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
		} else {
			log.Warnf("Custom config file not found at %s. Trying default path...", customConfigPath)
		}
	}
	if configDir == "" {
		log.Warn("No config directory available. Using built-in defaults...")
		return DefaultConfig(), ""
	}
	defaultPath := filepath.Join(configDir, FileName)
	config := InitConfig(defaultPath)
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath
}

// InitConfig loads config from file or creates default if missing.
// Any failure falls back to the built-in defaults.
func InitConfig(configPath string) *Config {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig()
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig()
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig()
	}
	return config
}

// LoadConfig loads from a TOML file. A file that does not parse as a
// whole is salvaged section by section; a file that cannot be read at
// all is an error.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	config.normalize()
	return config, nil
}

// tryPartialParse keeps the well-typed keys of a broken file.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		if !utils.FileExists(configPath) {
			return nil, err
		}
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tempConfig, "index"); ok {
		extractIndexConfig(section, &config.Index)
	}
	if section, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(section, &config.CLI)
	}
	config.normalize()
	return config, nil
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_limit"); ok {
		server.MaxLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "max_prefix"); ok {
		server.MaxPrefix = val
	}
	if val, ok := utils.ExtractInt64(data, "max_query"); ok {
		server.MaxQuery = val
	}
	if val, ok := utils.ExtractInt64(data, "max_context"); ok {
		server.MaxContext = val
	}
	if val, ok := utils.ExtractInt64(data, "cache_size"); ok {
		server.CacheSize = val
	}
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		server.DefaultLimit = val
	}
}

func extractIndexConfig(data map[string]any, index *IndexConfig) {
	if val, ok := utils.ExtractString(data, "words_path"); ok {
		index.WordsPath = val
	}
	if val, ok := utils.ExtractString(data, "docs_path"); ok {
		index.DocsPath = val
	}
	if val, ok := utils.ExtractInt64(data, "reindex_after"); ok {
		index.ReindexAfter = val
	}
}

func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		cli.DefaultLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "default_min_len"); ok {
		cli.DefaultMinLen = val
	}
	if val, ok := utils.ExtractInt64(data, "default_max_len"); ok {
		cli.DefaultMaxLen = val
	}
	if val, ok := utils.ExtractBool(data, "default_no_filter"); ok {
		cli.DefaultNoFilter = val
	}
	if val, ok := utils.ExtractInt64(data, "default_context"); ok {
		cli.DefaultContext = val
	}
}

// normalize replaces nonsensical values with their defaults.
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.Server.MaxLimit < 1 {
		c.Server.MaxLimit = def.Server.MaxLimit
	}
	if c.Server.DefaultLimit < 1 || c.Server.DefaultLimit > c.Server.MaxLimit {
		c.Server.DefaultLimit = min(def.Server.DefaultLimit, c.Server.MaxLimit)
	}
	if c.Server.MaxPrefix < 1 {
		c.Server.MaxPrefix = def.Server.MaxPrefix
	}
	if c.Server.MaxQuery < 1 {
		c.Server.MaxQuery = def.Server.MaxQuery
	}
	if c.Server.MaxContext < 0 {
		c.Server.MaxContext = 0
	}
	if c.Server.CacheSize < 0 {
		c.Server.CacheSize = 0
	}
	if c.Index.ReindexAfter < 0 {
		c.Index.ReindexAfter = 0
	}
	if c.CLI.DefaultMinLen < 1 {
		c.CLI.DefaultMinLen = def.CLI.DefaultMinLen
	}
	if c.CLI.DefaultMaxLen < c.CLI.DefaultMinLen {
		c.CLI.DefaultMaxLen = max(def.CLI.DefaultMaxLen, c.CLI.DefaultMinLen)
	}
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// Update changes the server values and saves to file
func (c *Config) Update(configPath string, maxLimit, maxContext, reindexAfter *int) error {
	if maxLimit != nil {
		c.Server.MaxLimit = *maxLimit
	}
	if maxContext != nil {
		c.Server.MaxContext = *maxContext
	}
	if reindexAfter != nil {
		c.Index.ReindexAfter = *reindexAfter
	}
	c.normalize()
	return SaveConfig(c, configPath)
}
