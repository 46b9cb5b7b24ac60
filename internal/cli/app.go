// Package cli provides the shared application context for omnibar's
// Cobra commands and the Bubble Tea TUI.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/muxpanel/omnibar/internal/config"
	"github.com/muxpanel/omnibar/internal/domain/build"
	"github.com/muxpanel/omnibar/internal/history"
	"github.com/muxpanel/omnibar/internal/logging"
	"github.com/muxpanel/omnibar/internal/omnibar"
	"github.com/muxpanel/omnibar/internal/remote"
)

// App holds CLI dependencies. The config pointer is swapped by the
// file watcher on reload; read it through Config().
type App struct {
	Manager   *config.Manager
	Store     *history.Store
	Fetcher   *remote.Fetcher
	BuildInfo build.Info

	mu  sync.RWMutex
	cfg *config.Config

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates the CLI application with all dependencies.
func NewApp() (*App, error) {
	// Bootstrap logger for failures before the config is readable.
	bootstrapLog := logging.NewFromEnv()

	mgr, err := config.NewManager()
	if err != nil {
		bootstrapLog.Error().Err(err).Msg("config manager init failed")
		return nil, fmt.Errorf("create config manager: %w", err)
	}
	if err := mgr.Load(); err != nil {
		bootstrapLog.Error().Err(err).Msg("config load failed")
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg := mgr.Get()

	logger := newLogger(cfg)
	ctx := logging.WithContext(context.Background(), logger)
	ctx = logging.WithComponent(ctx, "cli")
	ctx, cancel := context.WithCancel(ctx)

	legacyPath, _ := config.GetLegacyHistoryFile()
	store := history.NewStore(ctx, history.Options{
		Path:       cfg.History.Path,
		LegacyPath: legacyPath,
		MaxEntries: cfg.History.MaxEntries,
		Debounce:   time.Duration(cfg.History.SaveDebounceMs) * time.Millisecond,
	})

	logger.Debug().
		Str("history_path", cfg.History.Path).
		Str("engine", cfg.Suggest.Engine).
		Msg("app initialized")

	a := &App{
		Manager: mgr,
		Store:   store,
		Fetcher: remote.NewFetcher(),
		cfg:     cfg,
		ctx:     ctx,
		cancel:  cancel,
	}

	mgr.OnConfigChange(a.applyConfig)
	if err := mgr.Watch(); err != nil {
		logger.Warn().Err(err).Msg("config watch unavailable")
	}

	return a, nil
}

// applyConfig swaps in a reloaded configuration. Suggest engine/limit
// take effect on the next refresh; the log level takes effect
// immediately through the global filter.
func (a *App) applyConfig(cfg *config.Config) {
	zerolog.SetGlobalLevel(logging.ParseLevel(levelFromEnv(cfg.Logging.Level)))

	a.mu.Lock()
	a.cfg = cfg
	a.mu.Unlock()

	logging.FromContext(a.ctx).Info().
		Str("engine", cfg.Suggest.Engine).
		Int("limit", cfg.Suggest.Limit).
		Str("level", cfg.Logging.Level).
		Msg("config reloaded")
}

// Config returns the current configuration.
func (a *App) Config() *config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

// Close flushes pending history writes and releases all resources.
func (a *App) Close() error {
	if a.Store != nil {
		a.Store.Close(a.ctx)
	}
	if a.cancel != nil {
		a.cancel()
	}
	return nil
}

// Ctx returns the application context with logger.
func (a *App) Ctx() context.Context {
	return a.ctx
}

// Controller builds an omnibar controller wired to the app's store,
// fetcher, and current configuration.
func (a *App) Controller(tabs omnibar.TabSnapshotProvider) *omnibar.Controller {
	cfg := a.Config()
	fetcher := a.Fetcher
	if !cfg.Suggest.Enabled {
		fetcher = nil
	}
	return omnibar.NewController(a.Store, fetcher, omnibar.ControllerOptions{
		Engine:             cfg.Suggest.Engine,
		SuggestionsEnabled: cfg.Suggest.Enabled,
		Limit:              cfg.Suggest.Limit,
		Tabs:               tabs,
	})
}

func newLogger(cfg *config.Config) zerolog.Logger {
	zerolog.SetGlobalLevel(logging.ParseLevel(levelFromEnv(cfg.Logging.Level)))

	// The global filter owns the threshold so config reloads can move it
	// in either direction.
	logCfg := logging.Config{
		Level:      zerolog.TraceLevel,
		Format:     cfg.Logging.Format,
		TimeFormat: "15:04:05",
	}
	if cfg.Logging.EnableFileLog {
		if logDir, err := config.GetLogDir(); err == nil {
			logCfg.Filename = filepath.Join(logDir, cfg.Logging.Filename)
			logCfg.MaxSizeMB = cfg.Logging.MaxSize
			logCfg.MaxBackups = cfg.Logging.MaxBackups
			logCfg.MaxAgeDays = cfg.Logging.MaxAge
			logCfg.Compress = cfg.Logging.Compress
		}
	}
	return logging.New(logCfg)
}

func levelFromEnv(configured string) string {
	if env := os.Getenv("OMNIBAR_LOG_LEVEL"); env != "" {
		return env
	}
	return configured
}
