// Package metrics records sync stage timings and outcomes.
//
// Components receive a Recorder; NoopRecorder is the default so callers never
// nil-check. When a metrics file is configured the CLI injects a
// PrometheusRecorder and writes its registry in the node-exporter textfile
// format after the run:
//
//	reg := prom.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	syncer := reportsync.New(opts).WithRecorder(rec)
//	...
//	_ = metrics.WriteTextfile(path, reg)
package metrics
