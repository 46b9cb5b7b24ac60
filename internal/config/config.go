package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config is the root configuration structure for omnibar.
type Config struct {
	// SearchURL is the template used to turn a free-text query into a
	// search navigation. It must contain a single %s placeholder.
	SearchURL string `mapstructure:"search_url" yaml:"search_url"`

	Suggest SuggestConfig `mapstructure:"suggest" yaml:"suggest"`
	History HistoryConfig `mapstructure:"history" yaml:"history"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// SuggestConfig holds remote autocomplete preferences.
type SuggestConfig struct {
	// Enabled gates remote suggestion fetching entirely.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Engine selects a single suggestion engine by name. The empty string
	// or "default" races all built-in engines and keeps the first
	// non-empty response.
	Engine string `mapstructure:"engine" yaml:"engine"`
	// Limit caps the number of rows the aggregator returns.
	Limit int `mapstructure:"limit" yaml:"limit"`
}

// HistoryConfig holds history store preferences.
type HistoryConfig struct {
	// Path overrides the XDG data-dir snapshot location when non-empty.
	Path       string `mapstructure:"path" yaml:"path"`
	MaxEntries int    `mapstructure:"max_entries" yaml:"max_entries"`
	// SaveDebounceMs is the delay between an in-memory mutation and the
	// snapshot write that persists it.
	SaveDebounceMs int `mapstructure:"save_debounce_ms" yaml:"save_debounce_ms"`
}

// LoggingConfig holds logging output preferences.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // "console" or "json"

	// File output configuration
	Filename      string `mapstructure:"filename" yaml:"filename"`
	MaxSize       int    `mapstructure:"max_size" yaml:"max_size"` // MB
	MaxBackups    int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge        int    `mapstructure:"max_age" yaml:"max_age"` // days
	Compress      bool   `mapstructure:"compress" yaml:"compress"`
	EnableFileLog bool   `mapstructure:"enable_file_log" yaml:"enable_file_log"`
}

// Manager handles configuration loading, watching, and reloading.
type Manager struct {
	config    *Config
	viper     *viper.Viper
	mu        sync.RWMutex
	callbacks []func(*Config)
	watching  bool
}

// NewManager creates a new configuration manager.
func NewManager() (*Manager, error) {
	v := viper.New()

	// Viper resolves config.yaml, config.json, config.toml, etc.
	v.SetConfigName("config")

	configDir, err := GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	v.AddConfigPath(configDir)
	v.AddConfigPath(".") // Current directory for development

	v.SetEnvPrefix("OMNIBAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindings := map[string]string{
		"search_url":               "SEARCH_URL",
		"suggest.enabled":          "SUGGEST_ENABLED",
		"suggest.engine":           "SUGGEST_ENGINE",
		"suggest.limit":            "SUGGEST_LIMIT",
		"history.path":             "HISTORY_PATH",
		"history.max_entries":      "HISTORY_MAX_ENTRIES",
		"history.save_debounce_ms": "HISTORY_SAVE_DEBOUNCE_MS",
		"logging.level":            "LOGGING_LEVEL",
		"logging.format":           "LOGGING_FORMAT",
		"logging.filename":         "LOGGING_FILENAME",
		"logging.max_size":         "LOGGING_MAX_SIZE",
		"logging.max_backups":      "LOGGING_MAX_BACKUPS",
		"logging.max_age":          "LOGGING_MAX_AGE",
		"logging.compress":         "LOGGING_COMPRESS",
		"logging.enable_file_log":  "LOGGING_ENABLE_FILE_LOG",
	}

	for key, env := range bindings {
		if err := v.BindEnv(key, "OMNIBAR_"+env); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable %s: %w", env, err)
		}
	}

	return &Manager{
		viper:     v,
		callbacks: make([]func(*Config), 0),
	}, nil
}

// Load loads the configuration from file and environment variables.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to ensure directories: %w", err)
	}

	m.setDefaults()

	if err := m.viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			if err := m.createDefaultConfig(); err != nil {
				return fmt.Errorf("failed to create default config: %w", err)
			}
		} else {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config, err := m.unmarshal()
	if err != nil {
		return err
	}

	m.config = config
	return nil
}

// Get returns the current configuration (thread-safe).
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Return a copy to prevent external modification
	configCopy := *m.config
	return &configCopy
}

// Watch starts watching the config file for changes and reloads automatically.
func (m *Manager) Watch() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.watching {
		return nil
	}

	m.viper.WatchConfig()
	m.viper.OnConfigChange(func(_ fsnotify.Event) {
		if err := m.reload(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to reload config: %v\n", err)
			return
		}

		m.mu.RLock()
		config := m.config
		callbacks := make([]func(*Config), len(m.callbacks))
		copy(callbacks, m.callbacks)
		m.mu.RUnlock()

		for _, callback := range callbacks {
			callback(config)
		}
	})

	m.watching = true
	return nil
}

// OnConfigChange registers a callback function to be called when config changes.
func (m *Manager) OnConfigChange(callback func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callbacks = append(m.callbacks, callback)
}

func (m *Manager) reload() error {
	if err := m.viper.ReadInConfig(); err != nil {
		return err
	}

	config, err := m.unmarshal()
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.config = config
	m.mu.Unlock()
	return nil
}

func (m *Manager) unmarshal() (*Config, error) {
	config := &Config{}
	if err := m.viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.History.Path == "" {
		path, err := GetHistoryFile()
		if err != nil {
			return nil, fmt.Errorf("failed to get history path: %w", err)
		}
		config.History.Path = path
	}

	if !strings.Contains(config.SearchURL, "%s") {
		config.SearchURL = DefaultConfig().SearchURL
	}

	return config, nil
}

func (m *Manager) setDefaults() {
	defaults := DefaultConfig()

	m.viper.SetDefault("search_url", defaults.SearchURL)

	m.viper.SetDefault("suggest.enabled", defaults.Suggest.Enabled)
	m.viper.SetDefault("suggest.engine", defaults.Suggest.Engine)
	m.viper.SetDefault("suggest.limit", defaults.Suggest.Limit)

	m.viper.SetDefault("history.max_entries", defaults.History.MaxEntries)
	m.viper.SetDefault("history.save_debounce_ms", defaults.History.SaveDebounceMs)

	m.viper.SetDefault("logging.level", defaults.Logging.Level)
	m.viper.SetDefault("logging.format", defaults.Logging.Format)
	m.viper.SetDefault("logging.filename", defaults.Logging.Filename)
	m.viper.SetDefault("logging.max_size", defaults.Logging.MaxSize)
	m.viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	m.viper.SetDefault("logging.max_age", defaults.Logging.MaxAge)
	m.viper.SetDefault("logging.compress", defaults.Logging.Compress)
	m.viper.SetDefault("logging.enable_file_log", defaults.Logging.EnableFileLog)
}

func (m *Manager) createDefaultConfig() error {
	configFile, err := GetConfigFile()
	if err != nil {
		return err
	}
	if err := m.viper.SafeWriteConfigAs(configFile); err != nil {
		var alreadyExists viper.ConfigFileAlreadyExistsError
		if errors.As(err, &alreadyExists) {
			return nil
		}
		return err
	}
	return nil
}
