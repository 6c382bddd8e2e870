package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the seek configuration.
type Config struct {
	Search  SearchConfig  `yaml:"search"`
	History HistoryConfig `yaml:"history"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// SearchConfig holds search provider settings.
type SearchConfig struct {
	APIKey       string `yaml:"api_key"`       // Brave subscription token (BRAVE_API_KEY overrides)
	Endpoint     string `yaml:"endpoint"`      // Provider URL (empty = Brave default)
	Count        int    `yaml:"count"`         // Results per page, clamped to [1, 20]
	Country      string `yaml:"country"`       // Two-letter country code
	SearchLang   string `yaml:"search_lang"`   // Result language
	SafeSearch   string `yaml:"safesearch"`    // off, moderate, or strict
	Freshness    string `yaml:"freshness"`     // pd, pw, pm, py, or a date range (empty = any time)
	ResultFilter string `yaml:"result_filter"` // Comma-separated result types (empty = provider default)
	UserAgent    string `yaml:"user_agent"`    // User-Agent header sent to the provider
}

// HistoryConfig holds search history settings.
type HistoryConfig struct {
	Enabled     bool `yaml:"enabled"`      // Record searches to the local database
	RecallLimit int  `yaml:"recall_limit"` // Recent queries offered in an empty input box
}

// StorageConfig holds file location overrides. Empty values fall back to
// the XDG data directory.
type StorageConfig struct {
	ClickStorePath string `yaml:"click_store_path"` // Click history JSON file
	AuditLogPath   string `yaml:"audit_log_path"`   // CSV click log
	DatabasePath   string `yaml:"database_path"`    // Search history database
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // Log file path (overrides default)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			APIKey:       "",
			Endpoint:     "", // Brave default
			Count:        20,
			Country:      "US",
			SearchLang:   "en",
			SafeSearch:   "moderate",
			Freshness:    "",
			ResultFilter: "",
			UserAgent:    "Mozilla/5.0 seek/1.1",
		},
		History: HistoryConfig{
			Enabled:     true,
			RecallLimit: 25,
		},
		Storage: StorageConfig{},
		Log: LogConfig{
			Level: "info",
			File:  "",
		},
	}
}

// Load loads configuration from the default path.
func Load() (*Config, error) {
	paths := DefaultPaths()
	return LoadFromFile(paths.ConfigFile())
}

// LoadFromFile loads configuration from the specified file.
// If the file doesn't exist, returns default configuration.
// Environment variable overrides are applied after file loading.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyEnvOverrides()
			return cfg, nil // Return defaults if file doesn't exist
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Save saves the configuration to the default path.
func (c *Config) Save() error {
	paths := DefaultPaths()
	return c.SaveToFile(paths.ConfigFile())
}

// SaveToFile saves the configuration to the specified file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnvOverrides applies environment variable overrides to the config.
// Environment variables win over config file values.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("BRAVE_API_KEY"); v != "" {
		c.Search.APIKey = v
	}
	if v := os.Getenv("SEEK_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil && b {
			c.Log.Level = "debug"
		}
	}
	if v := os.Getenv("SEEK_LOG_LEVEL"); v != "" {
		if isValidLogLevel(v) {
			c.Log.Level = v
		}
	}
}

// Validate validates the configuration. Out-of-range numeric values are
// clamped with warnings rather than rejected; invalid enum values are
// errors.
func (c *Config) Validate() error {
	if !isValidSafeSearch(c.Search.SafeSearch) {
		return fmt.Errorf("search.safesearch must be off, moderate, or strict (got: %s)", c.Search.SafeSearch)
	}

	if !isValidLogLevel(c.Log.Level) {
		return fmt.Errorf("log.level must be debug, info, warn, or error (got: %s)", c.Log.Level)
	}

	c.ValidateAndFix()

	return nil
}

// ValidationWarning represents a config validation warning.
type ValidationWarning struct {
	Field   string
	Message string
}

// ValidateAndFix clamps out-of-range numeric values to their bounds.
// Returns a list of warnings for diagnostics; it never prevents startup.
func (c *Config) ValidateAndFix() []ValidationWarning {
	var warnings []ValidationWarning

	warn := func(field, msg string) {
		warnings = append(warnings, ValidationWarning{Field: field, Message: msg})
	}

	// Provider accepts at most 20 results per page.
	if c.Search.Count < 1 {
		warn("search.count", fmt.Sprintf("must be >= 1, got %d; clamping to 1", c.Search.Count))
		c.Search.Count = 1
	}
	if c.Search.Count > 20 {
		warn("search.count", fmt.Sprintf("must be <= 20, got %d; clamping to 20", c.Search.Count))
		c.Search.Count = 20
	}

	if c.History.RecallLimit < 1 {
		warn("history.recall_limit", fmt.Sprintf("must be >= 1, got %d; clamping to 1", c.History.RecallLimit))
		c.History.RecallLimit = 1
	}
	if c.History.RecallLimit > 200 {
		warn("history.recall_limit", fmt.Sprintf("must be <= 200, got %d; clamping to 200", c.History.RecallLimit))
		c.History.RecallLimit = 200
	}

	return warnings
}

// ClickStorePath resolves the click store location against the defaults.
func (c *Config) ClickStorePath(p *Paths) string {
	if c.Storage.ClickStorePath != "" {
		return c.Storage.ClickStorePath
	}
	return p.ClickStoreFile()
}

// AuditLogPath resolves the CSV click log location against the defaults.
func (c *Config) AuditLogPath(p *Paths) string {
	if c.Storage.AuditLogPath != "" {
		return c.Storage.AuditLogPath
	}
	return p.AuditLogFile()
}

// DatabasePath resolves the history database location against the defaults.
func (c *Config) DatabasePath(p *Paths) string {
	if c.Storage.DatabasePath != "" {
		return c.Storage.DatabasePath
	}
	return p.DatabaseFile()
}

// LogFilePath resolves the log file location against the defaults.
func (c *Config) LogFilePath(p *Paths) string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return p.LogFile()
}

// Get retrieves a configuration value by dot-separated key.
// For example: "search.count" or "history.enabled"
func (c *Config) Get(key string) (string, error) {
	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return "", errors.New("key must be in format 'section.key'")
	}

	section, field := parts[0], parts[1]

	switch section {
	case "search":
		return c.getSearchField(field)
	case "history":
		return c.getHistoryField(field)
	case "storage":
		return c.getStorageField(field)
	case "log":
		return c.getLogField(field)
	default:
		return "", fmt.Errorf("unknown section: %s", section)
	}
}

// Set sets a configuration value by dot-separated key.
func (c *Config) Set(key, value string) error {
	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return errors.New("key must be in format 'section.key'")
	}

	section, field := parts[0], parts[1]

	switch section {
	case "search":
		return c.setSearchField(field, value)
	case "history":
		return c.setHistoryField(field, value)
	case "storage":
		return c.setStorageField(field, value)
	case "log":
		return c.setLogField(field, value)
	default:
		return fmt.Errorf("unknown section: %s", section)
	}
}

func (c *Config) getSearchField(field string) (string, error) {
	switch field {
	case "api_key":
		return c.Search.APIKey, nil
	case "endpoint":
		return c.Search.Endpoint, nil
	case "count":
		return strconv.Itoa(c.Search.Count), nil
	case "country":
		return c.Search.Country, nil
	case "search_lang":
		return c.Search.SearchLang, nil
	case "safesearch":
		return c.Search.SafeSearch, nil
	case "freshness":
		return c.Search.Freshness, nil
	case "result_filter":
		return c.Search.ResultFilter, nil
	case "user_agent":
		return c.Search.UserAgent, nil
	default:
		return "", fmt.Errorf("unknown field: search.%s", field)
	}
}

func (c *Config) setSearchField(field, value string) error {
	switch field {
	case "api_key":
		c.Search.APIKey = value
	case "endpoint":
		c.Search.Endpoint = value
	case "count":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for count: %w", err)
		}
		if v < 1 || v > 20 {
			return fmt.Errorf("invalid count: must be between 1 and 20")
		}
		c.Search.Count = v
	case "country":
		c.Search.Country = value
	case "search_lang":
		c.Search.SearchLang = value
	case "safesearch":
		if !isValidSafeSearch(value) {
			return fmt.Errorf("invalid safesearch: %s (must be off, moderate, or strict)", value)
		}
		c.Search.SafeSearch = value
	case "freshness":
		c.Search.Freshness = value
	case "result_filter":
		c.Search.ResultFilter = value
	case "user_agent":
		c.Search.UserAgent = value
	default:
		return fmt.Errorf("unknown field: search.%s", field)
	}
	return nil
}

func (c *Config) getHistoryField(field string) (string, error) {
	switch field {
	case "enabled":
		return strconv.FormatBool(c.History.Enabled), nil
	case "recall_limit":
		return strconv.Itoa(c.History.RecallLimit), nil
	default:
		return "", fmt.Errorf("unknown field: history.%s", field)
	}
}

func (c *Config) setHistoryField(field, value string) error {
	switch field {
	case "enabled":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for enabled: %w", err)
		}
		c.History.Enabled = v
	case "recall_limit":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for recall_limit: %w", err)
		}
		if v < 1 {
			return fmt.Errorf("invalid recall_limit: must be >= 1")
		}
		c.History.RecallLimit = v
	default:
		return fmt.Errorf("unknown field: history.%s", field)
	}
	return nil
}

func (c *Config) getStorageField(field string) (string, error) {
	switch field {
	case "click_store_path":
		return c.Storage.ClickStorePath, nil
	case "audit_log_path":
		return c.Storage.AuditLogPath, nil
	case "database_path":
		return c.Storage.DatabasePath, nil
	default:
		return "", fmt.Errorf("unknown field: storage.%s", field)
	}
}

func (c *Config) setStorageField(field, value string) error {
	switch field {
	case "click_store_path":
		c.Storage.ClickStorePath = value
	case "audit_log_path":
		c.Storage.AuditLogPath = value
	case "database_path":
		c.Storage.DatabasePath = value
	default:
		return fmt.Errorf("unknown field: storage.%s", field)
	}
	return nil
}

func (c *Config) getLogField(field string) (string, error) {
	switch field {
	case "level":
		return c.Log.Level, nil
	case "file":
		return c.Log.File, nil
	default:
		return "", fmt.Errorf("unknown field: log.%s", field)
	}
}

func (c *Config) setLogField(field, value string) error {
	switch field {
	case "level":
		if !isValidLogLevel(value) {
			return fmt.Errorf("invalid level: %s (must be debug, info, warn, or error)", value)
		}
		c.Log.Level = value
	case "file":
		c.Log.File = value
	default:
		return fmt.Errorf("unknown field: log.%s", field)
	}
	return nil
}

// ListKeys returns user-facing configuration keys.
func ListKeys() []string {
	return []string{
		"search.api_key",
		"search.endpoint",
		"search.count",
		"search.country",
		"search.search_lang",
		"search.safesearch",
		"search.freshness",
		"search.result_filter",
		"search.user_agent",
		"history.enabled",
		"history.recall_limit",
		"storage.click_store_path",
		"storage.audit_log_path",
		"storage.database_path",
		"log.level",
		"log.file",
	}
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func isValidSafeSearch(mode string) bool {
	switch mode {
	case "off", "moderate", "strict":
		return true
	default:
		return false
	}
}
