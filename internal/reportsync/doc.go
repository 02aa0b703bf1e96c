// Package reportsync mirrors a benchmark report tree into a documentation tree.
//
// A sync run replaces the destination with a fresh copy of the source,
// promotes report/index.html to the destination root and strips one leading
// "../" from every href in it, then removes the report/ directory.
//
// A missing source is reported and leaves the destination untouched. Any
// filesystem failure aborts the run without rollback; re-run after fixing
// the cause.
package reportsync
