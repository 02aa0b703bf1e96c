package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"BENCHSYNC_ROOT", "BENCHSYNC_SOURCE", "BENCHSYNC_DESTINATION",
		"BENCHSYNC_VERIFY", "BENCHSYNC_METRICS_FILE",
		"BENCHSYNC_LOG_LEVEL", "BENCHSYNC_LOG_FORMAT",
	} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// newRepo returns a root with a criterion tree whose report index links to
// one existing and, optionally, one missing page.
func newRepo(t *testing.T, brokenLink bool) string {
	t.Helper()
	clearEnv(t)
	root := t.TempDir()
	src := filepath.Join(root, "target", "criterion")
	index := `<a href="../parse/report/index.html">parse</a>`
	if brokenLink {
		index += `<a href="../gone/report/index.html">gone</a>`
	}
	writeFile(t, filepath.Join(src, "report", "index.html"), index)
	writeFile(t, filepath.Join(src, "parse", "report", "index.html"), "<p>parse</p>")
	return root
}

func invoke(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunWithoutCommandSyncs(t *testing.T) {
	root := newRepo(t, false)

	code, out, _ := invoke(t, "--root", root, "--config", filepath.Join(root, "absent.yaml"))
	require.Equal(t, 0, code)
	require.Equal(t,
		"copied: target/criterion -> docs/benches/eazy\n"+
			"  created: docs/benches/eazy/index.html\n"+
			"done.\n", out)

	got, err := os.ReadFile(filepath.Join(root, "docs", "benches", "eazy", "index.html"))
	require.NoError(t, err)
	require.Equal(t, `<a href="parse/report/index.html">parse</a>`, string(got))
	require.NoDirExists(t, filepath.Join(root, "docs", "benches", "eazy", "report"))
}

func TestRunMissingSourceExitsZero(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()

	code, out, _ := invoke(t, "sync", "--root", root, "--config", filepath.Join(root, "absent.yaml"))
	require.Equal(t, 0, code)
	require.Equal(t, "error: "+filepath.Join(root, "target", "criterion")+" does not exist. Run benchmarks first.\n", out)
	require.NoDirExists(t, filepath.Join(root, "docs"))
}

func TestRunSourceOverride(t *testing.T) {
	root := newRepo(t, false)
	require.NoError(t, os.Rename(filepath.Join(root, "target", "criterion"), filepath.Join(root, "bench-out")))

	code, out, _ := invoke(t, "sync", "--root", root, "--config", filepath.Join(root, "absent.yaml"),
		"--source", "bench-out", "--destination", "site/bench")
	require.Equal(t, 0, code)
	require.Contains(t, out, "copied: bench-out -> site/bench\n")
	require.FileExists(t, filepath.Join(root, "site", "bench", "index.html"))
}

func TestRunVerifyReportsBrokenLinks(t *testing.T) {
	root := newRepo(t, true)
	cfgPath := filepath.Join(root, "absent.yaml")

	code, out, _ := invoke(t, "sync", "--root", root, "--config", cfgPath, "--verify")
	require.Equal(t, 0, code)
	require.Contains(t, out, "1 broken")
	require.Contains(t, out, "  broken: gone/report/index.html\n")

	code, _, errOut := invoke(t, "sync", "--root", root, "--config", cfgPath, "--strict")
	require.Equal(t, 11, code)
	require.Contains(t, errOut, "report index contains broken links")
}

func TestRunVerifyCommandWithoutIndex(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()

	code, _, _ := invoke(t, "verify", "--root", root, "--config", filepath.Join(root, "absent.yaml"))
	require.Equal(t, 4, code)
}

func TestRunRejectsOverlappingPaths(t *testing.T) {
	root := newRepo(t, false)
	cfgPath := filepath.Join(root, "benchsync.yaml")
	writeFile(t, cfgPath, "source: target/criterion\ndestination: target\n")

	code, _, _ := invoke(t, "--root", root, "--config", cfgPath)
	require.Equal(t, 2, code)
	require.FileExists(t, filepath.Join(root, "target", "criterion", "report", "index.html"))
}

func TestRunInvalidConfigFile(t *testing.T) {
	root := newRepo(t, false)
	cfgPath := filepath.Join(root, "benchsync.yaml")
	writeFile(t, cfgPath, "source: [unterminated\n")

	code, _, _ := invoke(t, "--root", root, "--config", cfgPath)
	require.Equal(t, 7, code)
}

func TestRunInit(t *testing.T) {
	clearEnv(t)
	cfgPath := filepath.Join(t.TempDir(), "benchsync.yaml")

	code, out, _ := invoke(t, "init", "--config", cfgPath)
	require.Equal(t, 0, code)
	require.Contains(t, out, "initialized successfully")
	require.FileExists(t, cfgPath)

	code, _, _ = invoke(t, "init", "--config", cfgPath)
	require.Equal(t, 7, code)

	code, _, _ = invoke(t, "init", "--config", cfgPath, "--force")
	require.Equal(t, 0, code)
}

func TestRunMetricsFile(t *testing.T) {
	root := newRepo(t, false)

	code, _, _ := invoke(t, "--root", root, "--config", filepath.Join(root, "absent.yaml"),
		"--metrics-file", "metrics/benchsync.prom")
	require.Equal(t, 0, code)

	data, err := os.ReadFile(filepath.Join(root, "metrics", "benchsync.prom"))
	require.NoError(t, err)
	require.Contains(t, string(data), `benchsync_sync_outcomes_total{outcome="success"} 1`)
}

func TestRunUnknownFlag(t *testing.T) {
	clearEnv(t)
	code, _, _ := invoke(t, "--no-such-flag")
	require.Equal(t, 2, code)
}
