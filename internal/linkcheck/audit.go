package linkcheck

import (
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/benchsync/internal/foundation/errors"
	"git.home.luguber.info/inful/benchsync/internal/logfields"
)

// Report is the outcome of auditing one index page.
type Report struct {
	Index   string
	Checked int
	Broken  []Link
	// Escaping holds links that resolve outside the audited tree.
	Escaping []Link
}

// OK reports whether every checked link resolved inside the tree.
func (r *Report) OK() bool {
	return len(r.Broken) == 0 && len(r.Escaping) == 0
}

// Audit checks that every relative link in <root>/index.html resolves to an
// existing file or directory below root. A missing index yields a not_found
// error.
func Audit(root string) (*Report, error) {
	index := filepath.Join(root, "index.html")
	if _, err := os.Stat(index); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewError(errors.CategoryNotFound, "no index.html to audit").
				WithContext("path", index).
				Build()
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to stat index").
			WithContext("path", index).
			Build()
	}

	links, err := ExtractLinks(index)
	if err != nil {
		return nil, err
	}

	rep := &Report{Index: index}
	for _, link := range links {
		if !ShouldVerifyLink(link) {
			continue
		}
		rep.Checked++
		target, inside := resolveTarget(root, link.URL)
		if !inside {
			rep.Escaping = append(rep.Escaping, link)
			continue
		}
		if _, err := os.Stat(target); err != nil {
			rep.Broken = append(rep.Broken, link)
		}
	}

	for _, l := range rep.Broken {
		slog.Warn("Broken link in report index", logfields.URL(l.URL), slog.String("tag", l.Tag))
	}
	for _, l := range rep.Escaping {
		slog.Warn("Link leaves the report tree", logfields.URL(l.URL), slog.String("tag", l.Tag))
	}
	slog.Debug("Link audit finished", logfields.Path(index), logfields.Links(rep.Checked))
	return rep, nil
}

// resolveTarget maps a relative URL onto the filesystem below root.
func resolveTarget(root, raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	p, err := url.PathUnescape(u.Path)
	if err != nil {
		p = u.Path
	}
	target := filepath.Join(root, filepath.FromSlash(p))
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return target, false
	}
	return target, true
}
