package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultSkipped ResultLabel = "skipped"
	ResultWarning ResultLabel = "warning"
	ResultFailed  ResultLabel = "failed"
)

// SyncOutcome is the final status of one sync run.
type SyncOutcome string

const (
	OutcomeSuccess       SyncOutcome = "success"
	OutcomeSourceMissing SyncOutcome = "source_missing"
	OutcomeFailed        SyncOutcome = "failed"
)

// Stage names used as metric labels.
const (
	StageReset    = "reset"
	StageCopy     = "copy"
	StageRelocate = "relocate"
	StageVerify   = "verify"
)

// Recorder defines observability hooks for sync runs.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	ObserveSyncDuration(d time.Duration)
	IncSyncOutcome(outcome SyncOutcome)
	SetFilesCopied(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) ObserveSyncDuration(time.Duration)          {}
func (NoopRecorder) IncSyncOutcome(SyncOutcome)                 {}
func (NoopRecorder) SetFilesCopied(int)                         {}
