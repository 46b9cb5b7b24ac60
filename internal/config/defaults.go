package config

// Default configuration constants
const (
	defaultMaxHistoryEntries = 5000
	defaultSaveDebounceMs    = 120

	defaultSuggestLimit = 8

	defaultMaxLogSizeMB  = 50
	defaultMaxBackups    = 3
	defaultMaxLogAgeDays = 7
)

// DefaultConfig returns the default configuration values for omnibar.
func DefaultConfig() *Config {
	return &Config{
		SearchURL: "https://duckduckgo.com/?q=%s",
		Suggest: SuggestConfig{
			Enabled: true,
			Engine:  "default",
			Limit:   defaultSuggestLimit,
		},
		History: HistoryConfig{
			MaxEntries:     defaultMaxHistoryEntries,
			SaveDebounceMs: defaultSaveDebounceMs,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			Filename:   "omnibar.log",
			MaxSize:    defaultMaxLogSizeMB,
			MaxBackups: defaultMaxBackups,
			MaxAge:     defaultMaxLogAgeDays,
			Compress:   true,
		},
	}
}
