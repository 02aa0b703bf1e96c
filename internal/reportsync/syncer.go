package reportsync

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/benchsync/internal/config"
	"git.home.luguber.info/inful/benchsync/internal/foundation/errors"
	"git.home.luguber.info/inful/benchsync/internal/logfields"
	"git.home.luguber.info/inful/benchsync/internal/metrics"
)

const (
	// ReportDir is the subdirectory criterion writes its summary page into.
	ReportDir = "report"
	// IndexFile is the report entry page promoted to the destination root.
	IndexFile = "index.html"
)

// Options locates the trees a Syncer works on. Relative Source and
// Destination paths are joined onto Root.
type Options struct {
	Root        string
	Source      string
	Destination string
}

// Result describes one sync run.
type Result struct {
	RunID          string
	Source         string
	Destination    string
	Skipped        bool // source missing, nothing touched
	FilesCopied    int
	IndexCreated   bool
	LinksRewritten int
	Duration       time.Duration
}

// Syncer replaces a destination tree with a link-patched copy of a report tree.
type Syncer struct {
	root     string
	src      string
	dst      string
	out      io.Writer
	logger   *slog.Logger
	recorder metrics.Recorder
}

// New creates a Syncer writing progress lines to stdout.
func New(opts Options) *Syncer {
	return &Syncer{
		root:     opts.Root,
		src:      config.Resolve(opts.Root, opts.Source),
		dst:      config.Resolve(opts.Root, opts.Destination),
		out:      os.Stdout,
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
	}
}

// WithOutput sets the writer that receives human-readable progress lines.
func (s *Syncer) WithOutput(w io.Writer) *Syncer {
	if w != nil {
		s.out = w
	}
	return s
}

// WithLogger sets the structured logger.
func (s *Syncer) WithLogger(l *slog.Logger) *Syncer {
	if l != nil {
		s.logger = l
	}
	return s
}

// WithRecorder injects a metrics recorder.
func (s *Syncer) WithRecorder(r metrics.Recorder) *Syncer {
	if r != nil {
		s.recorder = r
	}
	return s
}

// Source returns the absolute source root.
func (s *Syncer) Source() string { return s.src }

// Destination returns the absolute destination root.
func (s *Syncer) Destination() string { return s.dst }

// Sync performs one full rebuild of the destination. A missing source is
// reported on the progress writer and returns a skipped Result with a nil
// error; filesystem failures abort the run and leave whatever was written.
func (s *Syncer) Sync(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := &Result{
		RunID:       uuid.NewString(),
		Source:      s.src,
		Destination: s.dst,
	}
	log := s.logger.With(logfields.RunID(res.RunID))

	err := s.run(ctx, log, res)
	res.Duration = time.Since(start)
	s.recorder.ObserveSyncDuration(res.Duration)

	switch {
	case err != nil:
		s.recorder.IncSyncOutcome(metrics.OutcomeFailed)
		log.Error("Sync failed", logfields.Error(err), logfields.Elapsed(res.Duration))
		return res, err
	case res.Skipped:
		s.recorder.IncSyncOutcome(metrics.OutcomeSourceMissing)
		return res, nil
	}

	s.recorder.IncSyncOutcome(metrics.OutcomeSuccess)
	s.recorder.SetFilesCopied(res.FilesCopied)
	log.Info("Sync completed",
		logfields.Files(res.FilesCopied),
		logfields.Links(res.LinksRewritten),
		slog.Bool("index_created", res.IndexCreated),
		logfields.Elapsed(res.Duration))
	s.printf("done.\n")
	return res, nil
}

func (s *Syncer) run(ctx context.Context, log *slog.Logger, res *Result) error {
	info, err := os.Stat(s.src)
	if os.IsNotExist(err) {
		s.printf("error: %s does not exist. Run benchmarks first.\n", s.src)
		log.Warn("Source directory missing; destination left untouched", logfields.Source(s.src))
		res.Skipped = true
		return nil
	}
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to stat source").
			WithContext("path", s.src).
			Build()
	}
	if !info.IsDir() {
		return errors.FileSystemError("source is not a directory").
			WithContext("path", s.src).
			Build()
	}

	if err := s.stage(metrics.StageReset, func() error { return s.reset(log) }); err != nil {
		return err
	}

	if err := s.stage(metrics.StageCopy, func() error {
		n, err := copyTree(ctx, s.src, s.dst)
		res.FilesCopied = n
		return err
	}); err != nil {
		return err
	}
	s.printf("copied: %s -> %s\n", s.display(s.src), s.display(s.dst))
	log.Info("Copied report tree",
		logfields.Source(s.src),
		logfields.Destination(s.dst),
		logfields.Files(res.FilesCopied))

	return s.stage(metrics.StageRelocate, func() error {
		created, links, err := s.relocateIndex(log)
		res.IndexCreated = created
		res.LinksRewritten = links
		return err
	})
}

// reset removes the destination tree if present.
func (s *Syncer) reset(log *slog.Logger) error {
	if _, err := os.Lstat(s.dst); os.IsNotExist(err) {
		return nil
	}
	if err := os.RemoveAll(s.dst); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to remove destination").
			WithContext("path", s.dst).
			Build()
	}
	log.Debug("Removed previous destination", logfields.Path(s.dst))
	return nil
}

// relocateIndex promotes report/index.html to the destination root with its
// parent-relative links rewritten, then drops the report directory.
func (s *Syncer) relocateIndex(log *slog.Logger) (bool, int, error) {
	reportDir := filepath.Join(s.dst, ReportDir)
	reportIndex := filepath.Join(reportDir, IndexFile)
	rootIndex := filepath.Join(s.dst, IndexFile)

	data, err := os.ReadFile(reportIndex)
	if os.IsNotExist(err) {
		log.Debug("No report index to relocate", logfields.Path(reportIndex))
		return false, 0, nil
	}
	if err != nil {
		return false, 0, errors.WrapError(err, errors.CategoryFileSystem, "failed to read report index").
			WithContext("path", reportIndex).
			Build()
	}

	fixed, links := RewriteLinks(string(data))
	if err := os.WriteFile(rootIndex, []byte(fixed), 0o644); err != nil {
		return false, 0, errors.WrapError(err, errors.CategoryFileSystem, "failed to write root index").
			WithContext("path", rootIndex).
			Build()
	}
	s.printf("  created: %s\n", s.display(rootIndex))
	log.Info("Created root index", logfields.Path(rootIndex), logfields.Links(links))

	if err := os.RemoveAll(reportDir); err != nil {
		return true, links, errors.WrapError(err, errors.CategoryFileSystem, "failed to remove report directory").
			WithContext("path", reportDir).
			Build()
	}
	return true, links, nil
}

func (s *Syncer) stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	s.recorder.ObserveStageDuration(name, time.Since(start))
	if err != nil {
		s.recorder.IncStageResult(name, metrics.ResultFailed)
		return err
	}
	s.recorder.IncStageResult(name, metrics.ResultSuccess)
	return nil
}

// display shows p relative to the root when it lives below it.
func (s *Syncer) display(p string) string {
	if s.root == "" {
		return p
	}
	rel, err := filepath.Rel(s.root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return p
	}
	return rel
}

func (s *Syncer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}
