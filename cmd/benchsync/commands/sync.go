package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/benchsync/internal/config"
	"git.home.luguber.info/inful/benchsync/internal/foundation/errors"
	"git.home.luguber.info/inful/benchsync/internal/linkcheck"
	"git.home.luguber.info/inful/benchsync/internal/logfields"
	"git.home.luguber.info/inful/benchsync/internal/metrics"
	"git.home.luguber.info/inful/benchsync/internal/reportsync"
)

// SyncCmd implements the default 'sync' command.
type SyncCmd struct {
	Source      string `help:"Benchmark output directory (relative to the root unless absolute)" placeholder:"DIR"`
	Destination string `help:"Documentation directory replaced on every run" placeholder:"DIR"`
	Verify      bool   `help:"Audit links in the relocated index after syncing"`
	Strict      bool   `help:"Fail when the link audit finds broken links (implies --verify)"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus textfile metrics to this path"`
}

func (s *SyncCmd) Run(g *Global, root *CLI) error {
	cfg, rootDir, err := root.Load(g, s.apply)
	if err != nil {
		return err
	}
	_, err = NewRunner(cfg, rootDir, g.Stdout).Run(context.Background())
	return err
}

func (s *SyncCmd) apply(cfg *config.Config) {
	if s.Source != "" {
		cfg.Source = s.Source
	}
	if s.Destination != "" {
		cfg.Destination = s.Destination
	}
	if s.Verify || s.Strict {
		cfg.Verify = true
	}
	if s.Strict {
		cfg.Strict = true
	}
	if s.MetricsFile != "" {
		cfg.MetricsFile = s.MetricsFile
	}
}

// Runner performs sync runs for one configuration, optionally followed by a
// link audit, and exports metrics after each run.
type Runner struct {
	cfg      *config.Config
	root     string
	out      io.Writer
	syncer   *reportsync.Syncer
	recorder metrics.Recorder
	registry *prom.Registry
}

// NewRunner wires a Syncer for cfg. A Prometheus recorder is attached only
// when a metrics file is configured.
func NewRunner(cfg *config.Config, root string, out io.Writer) *Runner {
	r := &Runner{
		cfg:      cfg,
		root:     root,
		out:      out,
		recorder: metrics.NoopRecorder{},
	}
	if cfg.MetricsFile != "" {
		r.registry = prom.NewRegistry()
		r.recorder = metrics.NewPrometheusRecorder(r.registry)
	}
	r.syncer = reportsync.New(reportsync.Options{
		Root:        root,
		Source:      cfg.Source,
		Destination: cfg.Destination,
	}).WithOutput(out).WithRecorder(r.recorder)
	return r
}

// Syncer exposes the configured syncer (watch mode needs its source path).
func (r *Runner) Syncer() *reportsync.Syncer { return r.syncer }

// Run performs one sync.
func (r *Runner) Run(ctx context.Context) (*reportsync.Result, error) {
	res, err := r.syncer.Sync(ctx)
	if err == nil && !res.Skipped && r.cfg.Verify {
		err = r.verify()
	}
	r.exportMetrics()
	return res, err
}

func (r *Runner) verify() error {
	start := time.Now()
	err := VerifyIndex(r.out, r.syncer.Destination(), r.cfg.Strict)
	r.recorder.ObserveStageDuration(metrics.StageVerify, time.Since(start))
	switch {
	case errors.HasCategory(err, errors.CategoryNotFound):
		// nothing was relocated; the audit has nothing to look at
		r.recorder.IncStageResult(metrics.StageVerify, metrics.ResultSkipped)
		return nil
	case err != nil:
		r.recorder.IncStageResult(metrics.StageVerify, metrics.ResultFailed)
		return err
	}
	r.recorder.IncStageResult(metrics.StageVerify, metrics.ResultSuccess)
	return nil
}

func (r *Runner) exportMetrics() {
	if r.registry == nil {
		return
	}
	path := config.Resolve(r.root, r.cfg.MetricsFile)
	if err := metrics.WriteTextfile(path, r.registry); err != nil {
		slog.Warn("Failed to write metrics file", logfields.Path(path), logfields.Error(err))
		return
	}
	slog.Debug("Metrics written", logfields.Path(path))
}

// VerifyIndex audits <dst>/index.html and prints a summary to out. Broken
// links are warnings unless strict is set.
func VerifyIndex(out io.Writer, dst string, strict bool) error {
	rep, err := linkcheck.Audit(dst)
	if err != nil {
		return err
	}
	bad := len(rep.Broken) + len(rep.Escaping)
	_, _ = fmt.Fprintf(out, "verified: %d links checked, %d broken\n", rep.Checked, bad)
	for _, l := range rep.Broken {
		_, _ = fmt.Fprintf(out, "  broken: %s\n", l.URL)
	}
	for _, l := range rep.Escaping {
		_, _ = fmt.Fprintf(out, "  outside: %s\n", l.URL)
	}
	if bad > 0 && strict {
		return errors.ReportError("report index contains broken links").
			WithContext("broken", bad).
			WithContext("path", rep.Index).
			Build()
	}
	return nil
}
