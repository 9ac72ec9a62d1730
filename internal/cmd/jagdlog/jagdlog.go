// Package jagdlog parses engine command flags and starts the coordination
// runtime.
package jagdlog

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/samber/do/v2"

	"github.com/wieslogic/jagdlog/internal/hunt/service"
	"github.com/wieslogic/jagdlog/internal/notify"
	"github.com/wieslogic/jagdlog/internal/platform/config"
	"github.com/wieslogic/jagdlog/internal/platform/otel"
	"github.com/wieslogic/jagdlog/internal/storage/sqlite"
)

const serviceName = "jagdlog"

const otelShutdownTimeout = 5 * time.Second

// Config holds engine command configuration.
type Config struct {
	DBPath   string `env:"JAGDLOG_DB_PATH" envDefault:"jagdlog.db"`
	LogLevel string `env:"JAGDLOG_LOG_LEVEL" envDefault:"info"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the SQLite database file")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	if args == nil {
		args = []string{}
	}
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the coordination engine runtime and blocks until ctx is
// cancelled.
func Run(ctx context.Context, cfg Config) error {
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	otelShutdown, err := otel.Setup(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), otelShutdownTimeout)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			logger.Warn("otel shutdown", "error", err)
		}
	}()

	injector := newInjector(cfg)
	defer func() {
		if report := injector.Shutdown(); report != nil && !report.Succeed {
			logger.Warn("dependency shutdown", "error", report.Error())
		}
	}()

	if _, err := do.Invoke[*service.HuntService](injector); err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	store := do.MustInvoke[*sqlite.Store](injector)
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("close store", "error", err)
		}
	}()

	logger.Info("engine ready", "db_path", cfg.DBPath)
	<-ctx.Done()
	logger.Info("engine stopping")
	return nil
}

// newInjector builds the dependency graph: store, hub, notifier, engine.
func newInjector(cfg Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)

	do.Provide(injector, func(i do.Injector) (*sqlite.Store, error) {
		cfg := do.MustInvoke[Config](i)
		return sqlite.Open(cfg.DBPath)
	})

	do.Provide(injector, func(i do.Injector) (*notify.Hub, error) {
		return notify.NewHub(), nil
	})

	do.Provide(injector, func(i do.Injector) (notify.Notifier, error) {
		hub := do.MustInvoke[*notify.Hub](i)
		return notify.Multi(hub, notify.NewLogNotifier(slog.Default())), nil
	})

	do.Provide(injector, func(i do.Injector) (*service.HuntService, error) {
		store := do.MustInvoke[*sqlite.Store](i)
		notifier := do.MustInvoke[notify.Notifier](i)
		return service.New(service.Stores{
			Sessions:     store,
			Participants: store,
			Stands:       store,
			Assignments:  store,
			Drives:       store,
			Events:       store,
			Harvests:     store,
		}, service.WithNotifier(notifier)), nil
	})

	return injector
}

func newLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}
