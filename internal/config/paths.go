package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"

	"git.home.luguber.info/inful/benchsync/internal/foundation/errors"
)

// ResolveRoot returns the repository root that relative source and destination
// paths are joined onto. Precedence: explicit value, BENCHSYNC_ROOT, the git
// worktree enclosing dir, dir itself.
func ResolveRoot(explicit, dir string) (string, error) {
	if explicit == "" {
		explicit = strings.TrimSpace(os.Getenv(EnvRoot))
	}
	if explicit != "" {
		return filepath.Abs(explicit)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if stderrors.Is(err, git.ErrRepositoryNotExists) {
			return abs, nil
		}
		return "", errors.WrapError(err, errors.CategoryConfig, "failed to open enclosing git repository").
			Fatal().
			WithContext("path", abs).
			Build()
	}
	wt, err := repo.Worktree()
	if err != nil {
		// bare repository: no worktree to anchor on
		return abs, nil
	}
	return wt.Filesystem.Root(), nil
}

// Resolve joins p onto root unless p is already absolute.
func Resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}

// Validate checks the configuration against root. The destination is deleted
// on every run, so it must not equal or contain the source, nor live inside it.
func (c *Config) Validate(root string) error {
	if strings.TrimSpace(c.Source) == "" {
		return errors.ValidationError("source path is empty").Build()
	}
	if strings.TrimSpace(c.Destination) == "" {
		return errors.ValidationError("destination path is empty").Build()
	}

	src := Resolve(root, c.Source)
	dst := Resolve(root, c.Destination)
	if src == dst {
		return errors.ValidationError("source and destination are the same directory").
			WithContext("path", src).
			Build()
	}
	if within(dst, src) {
		return errors.ValidationError("source is inside the destination").
			WithContext("source", src).
			WithContext("destination", dst).
			Build()
	}
	if within(src, dst) {
		return errors.ValidationError("destination is inside the source").
			WithContext("source", src).
			WithContext("destination", dst).
			Build()
	}
	if dst == root || within(dst, root) {
		return errors.ValidationError("destination would replace the repository root").
			WithContext("destination", dst).
			Build()
	}
	return nil
}

// within reports whether child is strictly below parent.
func within(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
