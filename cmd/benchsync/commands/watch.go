package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/benchsync/internal/config"
	"git.home.luguber.info/inful/benchsync/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	SyncCmd  `embed:""`
	Debounce time.Duration `help:"Quiet period before a change triggers a sync (default from config, 500ms)"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, rootDir, err := root.Load(g, func(cfg *config.Config) {
		w.apply(cfg)
		if w.Debounce > 0 {
			cfg.Watch.Debounce = w.Debounce
		}
	})
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return RunWatch(ctx, cfg, rootDir, g)
}

// RunWatch syncs once, then again after every settled change to the source,
// until ctx is done.
func RunWatch(ctx context.Context, cfg *config.Config, rootDir string, g *Global) error {
	runner := NewRunner(cfg, rootDir, g.Stdout)
	slog.Info("Starting watch mode",
		slog.String("source", runner.Syncer().Source()),
		slog.Duration("debounce", cfg.Watch.Debounce))

	w := watch.New(runner.Syncer().Source(), cfg.Watch.Debounce, func(ctx context.Context) error {
		_, err := runner.Run(ctx)
		return err
	})
	return w.Run(ctx)
}
