package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/benchsync/internal/config"
)

// Global carries the process streams into commands.
type Global struct {
	Stdout io.Writer
	Stderr io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (optional)" default:"benchsync.yaml"`
	Root    string           `help:"Repository root; defaults to BENCHSYNC_ROOT or the enclosing git worktree"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Sync   SyncCmd   `cmd:"" default:"withargs" help:"Copy the benchmark report into the docs tree and fix index links (default)"`
	Verify VerifyCmd `cmd:"" help:"Audit relative links of the synced index page"`
	Watch  WatchCmd  `cmd:"" help:"Re-sync whenever the benchmark output changes"`
	Init   InitCmd   `cmd:"" help:"Write an example configuration file"`
}

// AfterApply runs after flag parsing; installs a logger before any config is read.
func (c *CLI) AfterApply(g *Global) error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	setupLogging(g.Stderr, level, config.LogFormatText)
	return nil
}

// Load reads the configuration, applies per-command overrides, resolves the
// repository root and validates the result.
func (c *CLI) Load(g *Global, override func(*config.Config)) (*config.Config, string, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, "", err
	}
	if override != nil {
		override(cfg)
	}

	level := cfg.Logging.Level.SlogLevel()
	if c.Verbose {
		level = slog.LevelDebug
	}
	setupLogging(g.Stderr, level, cfg.Logging.Format)

	wd, err := os.Getwd()
	if err != nil {
		return nil, "", err
	}
	root, err := config.ResolveRoot(c.Root, wd)
	if err != nil {
		return nil, "", err
	}
	if err := cfg.Validate(root); err != nil {
		return nil, "", err
	}
	slog.Debug("Configuration loaded",
		slog.String("config", c.Config),
		slog.String("root", root),
		slog.String("source", cfg.Source),
		slog.String("destination", cfg.Destination))
	return cfg, root, nil
}

func setupLogging(w io.Writer, level slog.Level, format config.LogFormat) {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewTextHandler(w, opts)
	if format == config.LogFormatJSON {
		h = slog.NewJSONHandler(w, opts)
	}
	slog.SetDefault(slog.New(h))
}
