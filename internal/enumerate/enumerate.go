// SPDX-License-Identifier: MPL-2.0

// Package enumerate produces the ordered list of candidate files for a search.
//
// Flat lists the regular files directly inside a root directory (the input of
// coordinated mode). Recursive walks sub-directories up to a depth limit (the
// input of the sequential scan). A root that cannot be listed yields an empty
// list and a warning: enumeration never fails a run.
package enumerate

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"

	"github.com/ksearch/ksearch/pkg/types"
)

// Options controls which files are enumerated.
type Options struct {
	// MaxDepth bounds Recursive; 0 lists only the root, -1 is unlimited.
	// Flat ignores it.
	MaxDepth types.MaxDepth

	// Exclude are doublestar glob patterns matched against the slash-separated
	// path relative to the root. An excluded directory is not descended.
	Exclude []string

	// Logger receives enumeration warnings. nil discards them.
	Logger *log.Logger
}

// Flat returns the regular files directly inside root in directory-listing
// order. Sub-directories, symlinks and other special files are skipped.
func Flat(root string, opts Options) FileList {
	logger := loggerOrDiscard(opts.Logger)

	var b Builder
	entries, err := os.ReadDir(root)
	if err != nil {
		logger.Warn("cannot list search root", "root", root, "error", err)
		return b.Build()
	}

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if isExcluded(opts.Exclude, entry.Name(), false) {
			logger.Debug("excluded", "path", entry.Name())
			continue
		}
		b.Add(joinPath(root, entry.Name()))
	}

	logger.Debug("enumerated", "root", root, "files", b.Len())
	return b.Build()
}

// Recursive returns the regular files under root, descending into
// sub-directories as they appear in each listing, no deeper than
// opts.MaxDepth levels below root.
func Recursive(root string, opts Options) FileList {
	logger := loggerOrDiscard(opts.Logger)

	var b Builder
	w := walker{opts: opts, logger: logger, root: root, out: &b}
	w.walk(root, "", 0)

	logger.Debug("enumerated", "root", root, "files", b.Len(), "max_depth", int(opts.MaxDepth))
	return b.Build()
}

// ValidatePatterns checks that every pattern is a valid doublestar glob, so a
// typo fails at startup instead of silently excluding nothing.
func ValidatePatterns(patterns []string) error {
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("invalid exclude pattern %q: %w", pat, doublestar.ErrBadPattern)
		}
	}
	return nil
}

type walker struct {
	opts   Options
	logger *log.Logger
	root   string
	out    *Builder
}

func (w *walker) walk(dir, rel string, depth int) {
	if !w.opts.MaxDepth.Allows(depth) {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if depth == 0 {
			w.logger.Warn("cannot list search root", "root", dir, "error", err)
		} else {
			w.logger.Debug("skipping unreadable directory", "dir", dir, "error", err)
		}
		return
	}

	for _, entry := range entries {
		childRel := entry.Name()
		if rel != "" {
			childRel = rel + "/" + entry.Name()
		}
		childPath := joinPath(dir, entry.Name())

		switch {
		case entry.IsDir():
			if isExcluded(w.opts.Exclude, childRel, true) {
				w.logger.Debug("excluded", "path", childRel)
				continue
			}
			w.walk(childPath, childRel, depth+1)
		case entry.Type().IsRegular():
			if isExcluded(w.opts.Exclude, childRel, false) {
				w.logger.Debug("excluded", "path", childRel)
				continue
			}
			w.out.Add(childPath)
		}
	}
}

// joinPath appends name to dir without cleaning dir, so reported paths keep
// the spelling the user gave for the root ("./docs/a.txt").
func joinPath(dir, name string) string {
	if strings.HasSuffix(dir, string(filepath.Separator)) || strings.HasSuffix(dir, "/") {
		return dir + name
	}
	return dir + string(filepath.Separator) + name
}

func isExcluded(patterns []string, rel string, isDir bool) bool {
	if len(patterns) == 0 {
		return false
	}
	normalized := filepath.ToSlash(rel)
	for _, pat := range patterns {
		if matched, err := doublestar.Match(pat, normalized); err == nil && matched {
			return true
		}
		if isDir {
			if matched, err := doublestar.Match(pat, normalized+"/"); err == nil && matched {
				return true
			}
		}
	}
	return false
}

func loggerOrDiscard(l *log.Logger) *log.Logger {
	if l != nil {
		return l
	}
	return log.New(io.Discard)
}
