package reportsync

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/benchsync/internal/foundation/errors"
)

// copyTree duplicates the directory tree at src into dst, which must not
// exist. File modes are preserved and directories stay owner-writable.
// Symlinks are followed: a link to a file is copied as a regular file and a
// link to a directory is copied as a directory, so the result never points
// back into src. It returns the number of regular files copied.
func copyTree(ctx context.Context, src, dst string) (int, error) {
	// a symlinked source root is copied as the directory it points to
	if resolved, err := filepath.EvalSymlinks(src); err == nil {
		src = resolved
	}
	files := 0
	if err := copyDir(ctx, src, dst, &files); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return files, ctxErr
		}
		return files, errors.WrapError(err, errors.CategoryFileSystem, "failed to copy report tree").
			WithContext("source", src).
			WithContext("destination", dst).
			Build()
	}
	return files, nil
}

func copyDir(ctx context.Context, src, dst string, files *int) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.Type()&fs.ModeSymlink != 0:
			return copyLinked(ctx, path, target, files)
		case d.IsDir():
			info, err := d.Info()
			if err != nil {
				return err
			}
			return os.MkdirAll(target, info.Mode().Perm()|0o700)
		case d.Type().IsRegular():
			info, err := d.Info()
			if err != nil {
				return err
			}
			if err := copyFile(path, target, info.Mode().Perm()); err != nil {
				return err
			}
			*files++
			return nil
		default:
			// sockets, devices and pipes have no place in a report tree
			return nil
		}
	})
}

// copyLinked copies whatever the symlink at path resolves to. Dangling links
// and links to one of their own ancestors are errors.
func copyLinked(ctx context.Context, path, target string, files *int) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Mode().IsRegular() {
		if err := copyFile(path, target, info.Mode().Perm()); err != nil {
			return err
		}
		*files++
		return nil
	}
	if !info.IsDir() {
		return nil
	}

	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return err
	}
	parent, err := filepath.EvalSymlinks(filepath.Dir(path))
	if err != nil {
		return err
	}
	if parent == resolved || strings.HasPrefix(parent, resolved+string(filepath.Separator)) {
		return fmt.Errorf("symlink loop: %s -> %s", path, resolved)
	}
	return copyDir(ctx, resolved, target, files)
}

// copyFile copies a single file from src to dst with the given permissions.
func copyFile(src, dst string, perm fs.FileMode) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = in.Close()
	}()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	// OpenFile honours umask; restore the source mode explicitly.
	return os.Chmod(dst, perm)
}
