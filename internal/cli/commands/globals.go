package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ccollicutt/wareader/pkg/config"
	"github.com/ccollicutt/wareader/pkg/store"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// GlobalOptions holds the flags shared by every command.
type GlobalOptions struct {
	ConfigPath string
	DBPath     string
	LogLevel   string
	LogFormat  string
}

// AddFlags registers the global flags. --config defaults to $WAREADER_CONFIG.
func (g *GlobalOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&g.ConfigPath, "config", "c", os.Getenv(config.EnvConfig), "Configuration file (optional)")
	fs.StringVar(&g.DBPath, "db", "", "Transcript database path (overrides store.path)")
	fs.StringVar(&g.LogLevel, "log-level", "warn", "Log level (debug|info|warn|error)")
	fs.StringVar(&g.LogFormat, "log-format", "text", "Log format (text|json)")
}

// LoadConfig loads the configuration file, or the defaults when none was
// given, and applies the --db override.
func (g *GlobalOptions) LoadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(ctx, g.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if g.DBPath != "" {
		cfg.Store.Path = g.DBPath
	}
	return cfg, nil
}

// OpenStore opens the transcript database named by cfg.
func (g *GlobalOptions) OpenStore(cfg *config.Config) (*store.SQLite, error) {
	st, err := store.Open(cfg.Store.Path, slog.Default())
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", cfg.Store.Path, err)
	}
	return st, nil
}

// SetupLogging installs the default slog logger writing to w.
func SetupLogging(w io.Writer, level, format string) error {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn", "":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q (use debug, info, warn, or error)", level)
	}

	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "text", "":
		handler = slog.NewTextHandler(w, opts)
	default:
		return fmt.Errorf("invalid log format %q (use text or json)", format)
	}

	slog.SetDefault(slog.New(handler))
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
