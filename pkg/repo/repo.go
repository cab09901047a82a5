// Package repo lays out a git-style repository directory around the object
// store.
package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/agenthands/gitcas/pkg/core"
)

// Layout holds every path of one repository.
type Layout struct {
	Root    string
	Objects string
	Refs    string
	Heads   string
	Head    string
	Branch  string
}

// LayoutOf derives the repository layout from cfg.
func LayoutOf(cfg core.Config) Layout {
	cfg = cfg.WithDefaults()
	return Layout{
		Root:    cfg.Dir,
		Objects: cfg.Objects.Dir,
		Refs:    cfg.Refs.Dir,
		Heads:   filepath.Join(cfg.Refs.Dir, "heads"),
		Head:    cfg.Refs.HeadFile,
		Branch:  cfg.Refs.DefaultBranch,
	}
}

// HeadContent is what a fresh HEAD points at.
func (l Layout) HeadContent() string {
	return "ref: refs/heads/" + l.Branch + "\n"
}

// Init creates the repository directories and HEAD. Running it again on an
// existing repository is safe: directories are kept and HEAD is not rewritten.
// reinit reports whether a HEAD was already present.
func Init(cfg core.Config) (reinit bool, err error) {
	l := LayoutOf(cfg)
	for _, dir := range []string{l.Root, l.Objects, l.Refs, l.Heads} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("%w: create %s: %w", core.ErrIOFailure, dir, err)
		}
	}

	f, err := os.OpenFile(l.Head, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return true, nil
		}
		return false, fmt.Errorf("%w: create %s: %w", core.ErrIOFailure, l.Head, err)
	}
	if _, err := f.WriteString(l.HeadContent()); err != nil {
		f.Close()
		return false, fmt.Errorf("%w: write %s: %w", core.ErrIOFailure, l.Head, err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("%w: close %s: %w", core.ErrIOFailure, l.Head, err)
	}
	return false, nil
}

// Exists reports whether cfg points at an initialized repository.
func Exists(cfg core.Config) bool {
	l := LayoutOf(cfg)
	st, err := os.Stat(l.Objects)
	if err != nil || !st.IsDir() {
		return false
	}
	_, err = os.Stat(l.Head)
	return err == nil
}
