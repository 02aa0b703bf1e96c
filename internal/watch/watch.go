// Package watch re-runs a sync whenever the benchmark output tree changes.
package watch

import (
	"context"
	stderrors "errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/benchsync/internal/foundation/errors"
	"git.home.luguber.info/inful/benchsync/internal/logfields"
)

// RunFunc performs one sync. Errors are logged; the watcher keeps running.
type RunFunc func(ctx context.Context) error

// Watcher watches a directory tree and invokes a RunFunc after changes settle.
type Watcher struct {
	root     string
	debounce time.Duration
	run      RunFunc
	logger   *slog.Logger
	ready    chan struct{}
}

// New creates a watcher for root. If root does not exist yet its parent is
// watched until it appears.
func New(root string, debounce time.Duration, run RunFunc) *Watcher {
	return &Watcher{
		root:     filepath.Clean(root),
		debounce: debounce,
		run:      run,
		logger:   slog.Default(),
		ready:    make(chan struct{}),
	}
}

// WithLogger sets the structured logger.
func (w *Watcher) WithLogger(l *slog.Logger) *Watcher {
	if l != nil {
		w.logger = l
	}
	return w
}

// Ready is closed once the initial run finished and watches are in place.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run performs an initial sync, then syncs again after every settled burst of
// changes until ctx is cancelled. Runs never overlap; a change observed while
// a run is in progress queues exactly one follow-up run.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.RuntimeError("failed to create file watcher").WithCause(err).Build()
	}
	defer func() {
		_ = fw.Close()
	}()

	if err := w.addWatches(fw); err != nil {
		return err
	}

	w.runOnce(ctx)

	requests := make(chan struct{}, 1)
	deb := newDebouncer(w.debounce, func() {
		select {
		case requests <- struct{}{}:
		default:
		}
	})
	defer deb.stop()

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-requests:
				w.runOnce(ctx)
			}
		}
	}()

	w.logger.Info("Watching for benchmark output changes", logfields.Source(w.root))
	close(w.ready)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Stopping watcher")
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.handleEvent(fw, ev) {
				deb.trigger()
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := w.run(ctx); err != nil && !stderrors.Is(err, context.Canceled) {
		w.logger.Error("Sync failed; waiting for next change", logfields.Error(err))
	}
}

// addWatches registers root recursively, or its parent when root is missing.
func (w *Watcher) addWatches(fw *fsnotify.Watcher) error {
	if _, err := os.Stat(w.root); err == nil {
		return addDirsRecursive(fw, w.root)
	}
	parent := filepath.Dir(w.root)
	if err := fw.Add(parent); err != nil {
		return errors.RuntimeError("failed to watch source parent").
			WithCause(err).
			WithContext("path", parent).
			Build()
	}
	w.logger.Warn("Source does not exist yet; watching parent", logfields.Path(parent))
	return nil
}

// handleEvent reports whether ev concerns the watched tree.
func (w *Watcher) handleEvent(fw *fsnotify.Watcher, ev fsnotify.Event) bool {
	if !w.inTree(ev.Name) || shouldIgnoreEvent(ev.Name) {
		return false
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = addDirsRecursive(fw, ev.Name)
		}
	}
	w.logger.Debug("Change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	return true
}

func (w *Watcher) inTree(p string) bool {
	if p == w.root {
		return true
	}
	return strings.HasPrefix(p, w.root+string(filepath.Separator))
}

func addDirsRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := fw.Add(path); err != nil {
				slog.Warn("watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}

// shouldIgnoreEvent returns true for files that never belong to a report.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasPrefix(base, "."):
		return true
	case strings.HasSuffix(base, "~"), strings.HasSuffix(base, ".swp"), strings.HasSuffix(base, ".swx"):
		return true
	case strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	case base == "Thumbs.db":
		return true
	}
	return false
}
