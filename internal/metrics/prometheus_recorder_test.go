package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

var _ Recorder = (*PrometheusRecorder)(nil)
var _ Recorder = NoopRecorder{}

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration(StageCopy, 150*time.Millisecond)
	pr.IncStageResult(StageCopy, ResultSuccess)
	pr.ObserveSyncDuration(500 * time.Millisecond)
	pr.IncSyncOutcome(OutcomeSuccess)
	pr.SetFilesCopied(12)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	for _, want := range []string{
		"benchsync_stage_duration_seconds",
		"benchsync_stage_results_total",
		"benchsync_sync_duration_seconds",
		"benchsync_sync_outcomes_total",
		"benchsync_files_copied",
		"benchsync_last_run_timestamp_seconds",
	} {
		require.True(t, names[want], "missing metric %s", want)
	}
}

func TestPrometheusRecorderNilSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.ObserveStageDuration(StageReset, time.Second)
	pr.IncStageResult(StageReset, ResultFailed)
	pr.ObserveSyncDuration(time.Second)
	pr.IncSyncOutcome(OutcomeFailed)
	pr.SetFilesCopied(1)
}

func TestWriteTextfile(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.SetFilesCopied(3)
	pr.IncSyncOutcome(OutcomeSourceMissing)

	path := filepath.Join(t.TempDir(), "nested", "benchsync.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	require.True(t, strings.Contains(text, "benchsync_files_copied 3"), text)
	require.True(t, strings.Contains(text, `benchsync_sync_outcomes_total{outcome="source_missing"} 1`), text)
}
