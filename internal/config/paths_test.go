package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/benchsync/internal/foundation/errors"
)

func evalPath(t *testing.T, p string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(p)
	require.NoError(t, err)
	return resolved
}

func TestResolveRoot(t *testing.T) {
	t.Run("explicit wins", func(t *testing.T) {
		t.Setenv(EnvRoot, "/from/env")
		root, err := ResolveRoot("/explicit", t.TempDir())
		require.NoError(t, err)
		require.Equal(t, "/explicit", root)
	})

	t.Run("env over discovery", func(t *testing.T) {
		t.Setenv(EnvRoot, "/from/env")
		root, err := ResolveRoot("", t.TempDir())
		require.NoError(t, err)
		require.Equal(t, "/from/env", root)
	})

	t.Run("enclosing git worktree", func(t *testing.T) {
		t.Setenv(EnvRoot, "")
		repoDir := t.TempDir()
		_, err := git.PlainInit(repoDir, false)
		require.NoError(t, err)
		nested := filepath.Join(repoDir, "tasks", "eazy")
		require.NoError(t, os.MkdirAll(nested, 0o750))

		root, err := ResolveRoot("", nested)
		require.NoError(t, err)
		require.Equal(t, evalPath(t, repoDir), evalPath(t, root))
	})

	t.Run("falls back to dir", func(t *testing.T) {
		t.Setenv(EnvRoot, "")
		dir := t.TempDir()
		root, err := ResolveRoot("", dir)
		require.NoError(t, err)
		require.Equal(t, dir, root)
	})
}

func TestValidate(t *testing.T) {
	root := "/repo"

	tests := []struct {
		name    string
		src     string
		dst     string
		wantErr bool
	}{
		{"defaults", DefaultSource, DefaultDestination, false},
		{"absolute paths", "/tmp/criterion", "/srv/docs/benches", false},
		{"same path", "target/criterion", "target/criterion", true},
		{"destination inside source", "target", "target/criterion/docs", true},
		{"source inside destination", "target/criterion", "target", true},
		{"destination is root", "target/criterion", ".", true},
		{"destination above root", "target/criterion", "..", true},
		{"sibling prefix is fine", "target/crit", "target/criterion", false},
		{"empty source", "", DefaultDestination, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Source: tt.src, Destination: tt.dst}
			err := cfg.Validate(root)
			if tt.wantErr {
				require.Error(t, err)
				require.True(t, errors.HasCategory(err, errors.CategoryValidation))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestResolve(t *testing.T) {
	require.Equal(t, "/repo/target/criterion", Resolve("/repo", "target/criterion"))
	require.Equal(t, "/abs/x", Resolve("/repo", "/abs/x/"))
}
