package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID       = "run_id"
	KeyStage       = "stage"
	KeyDurationMS  = "duration_ms"
	KeySource      = "source"
	KeyDestination = "destination"
	KeyPath        = "path"
	KeyFiles       = "files"
	KeyLinks       = "links"
	KeyURL         = "url"
	KeyError       = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr        { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Source(p string) slog.Attr        { return slog.String(KeySource, p) }
func Destination(p string) slog.Attr   { return slog.String(KeyDestination, p) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Files(n int) slog.Attr            { return slog.Int(KeyFiles, n) }
func Links(n int) slog.Attr            { return slog.Int(KeyLinks, n) }
func URL(u string) slog.Attr           { return slog.String(KeyURL, u) }
func Elapsed(d time.Duration) slog.Attr { return DurationMS(float64(d.Microseconds()) / 1000) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
