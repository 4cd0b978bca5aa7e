package commands

import (
	"log/slog"
	"os"

	"git.home.luguber.info/inful/docserve/internal/config"
	"git.home.luguber.info/inful/docserve/internal/foundation/errors"
	"git.home.luguber.info/inful/docserve/internal/manifest"
	"git.home.luguber.info/inful/docserve/internal/services"
	"git.home.luguber.info/inful/docserve/internal/source"
)

// Global carries shared state bound into command Run methods.
type Global struct {
	Logger *slog.Logger
}

// CLI is the root command grammar and global flags.
type CLI struct {
	Config    string `short:"c" help:"Configuration file path" default:"docserve.yaml"`
	Verbose   bool   `short:"v" help:"Enable verbose logging"`
	LogFormat string `name:"log-format" help:"Log output format (text or json); serve defaults to the configured format"`

	Serve   ServeCmd   `cmd:"" help:"Run the manual serving daemon"`
	Check   CheckCmd   `cmd:"" help:"Load and validate the configuration"`
	Pages   PagesCmd   `cmd:"" help:"Print the flattened page list for a version"`
	Render  RenderCmd  `cmd:"" help:"Render one manual page to stdout"`
	Init    InitCmd    `cmd:"" help:"Write an example configuration file"`
	Version VersionCmd `cmd:"" help:"Show build information"`
}

// AfterApply runs after flag parsing; set up logging once before any
// command body executes.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	applyLogging(level, config.NormalizeLogFormat(c.LogFormat))
	return nil
}

// applyLogging installs the process-wide logger.
func applyLogging(level slog.Level, format config.LogFormat) {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// serveLogging rebuilds the logger from the loaded configuration. Explicit
// CLI flags keep precedence over configured values.
func serveLogging(root *CLI, cfg *config.Config) {
	if cfg.Monitoring == nil {
		return
	}
	level := levelFor(cfg.Monitoring.Logging.Level)
	if root.Verbose {
		level = slog.LevelDebug
	}
	format := cfg.Monitoring.Logging.Format
	if root.LogFormat != "" {
		format = config.NormalizeLogFormat(root.LogFormat)
	}
	applyLogging(level, format)
}

func levelFor(l config.LogLevel) slog.Level {
	switch l {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelWarn:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loadConfig loads and validates the configuration, classifying failures so
// the exit code reflects a configuration problem.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "loading configuration").
			WithContext("path", path).
			Build()
	}
	return cfg, nil
}

// newPageService builds the page pipeline for one-shot commands. The
// cross-request cache stays out of it: a CLI invocation fetches fresh
// content and leaves the daemon's cache alone.
func newPageService(cfg *config.Config) (*services.PageService, error) {
	set, err := manifest.New(cfg.Versions)
	if err != nil {
		return nil, err
	}
	origin, err := source.New(cfg.Source)
	if err != nil {
		return nil, err
	}
	return services.NewPageService(origin, manifest.NewManager(set), cfg.Server, cfg.Source.TocPath, nil), nil
}
