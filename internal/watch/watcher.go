// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs a search when files under its root change.
//
// Events are debounced: a burst of writes (an editor saving through a temp
// file, a checkout touching many files) produces a single callback carrying
// every changed path. Each callback is expected to start a complete,
// independent run; nothing is reported incrementally.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/ksearch/ksearch/pkg/types"
)

const defaultDebounce = 300 * time.Millisecond

// ErrAlreadyRunning is returned by a second call to Run.
var ErrAlreadyRunning = errors.New("watch: Run called more than once")

// defaultIgnores are never watched: VCS metadata, editor swap files and OS
// metadata generate noise without changing search results.
var defaultIgnores = []string{
	"**/.git/**",
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.DS_Store",
}

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Root is the searched directory.
		Root string

		// MaxDepth mirrors the enumeration depth: 0 watches only files
		// directly inside Root (coordinated mode), -1 watches the whole tree.
		MaxDepth types.MaxDepth

		// Exclude are doublestar patterns, relative to Root, whose changes
		// never trigger a re-run. They are merged with the default ignores.
		Exclude []string

		// Debounce is the quiet period after the last event before OnChange
		// fires. Zero or negative values use the default.
		Debounce time.Duration

		// OnChange receives the sorted, deduplicated changed paths relative
		// to Root. A nil callback is a no-op.
		OnChange func(ctx context.Context, changed []string) error

		// Logger receives watcher diagnostics. nil discards them.
		Logger *log.Logger
	}

	// Watcher monitors Root and fires a debounced callback on change. Run
	// must be called exactly once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		ignores  []string
		logger   *log.Logger
		debounce time.Duration
		root     string
		started  atomic.Bool
	}
)

// New creates a Watcher and registers Root, and its sub-directories down to
// MaxDepth, with fsnotify.
func New(cfg Config) (*Watcher, error) {
	root := cfg.Root
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve root: %w", err)
	}

	for _, pat := range cfg.Exclude {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("watch: invalid exclude pattern %q: %w", pat, doublestar.ErrBadPattern)
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		ignores:  slices.Concat(defaultIgnores, cfg.Exclude),
		logger:   logger,
		debounce: debounce,
		root:     absRoot,
	}

	if err := w.addDirectories(); err != nil {
		if closeErr := fsw.Close(); closeErr != nil {
			logger.Warn("close watcher after init failure", "error", closeErr)
		}
		return nil, err
	}

	return w, nil
}

// Run blocks until ctx is cancelled, dispatching debounced callbacks. It
// returns nil on cancellation and an error when the watcher breaks, in both
// cases only after a callback in progress has returned. A callback is never
// started while the previous one is still running; its changes are retried
// after another debounce period.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	var (
		mu       sync.Mutex
		pending  = make(map[string]struct{})
		timer    *time.Timer
		running  atomic.Bool
		stopped  bool
		inflight sync.WaitGroup
	)

	fire := func() {
		mu.Lock()
		if stopped || ctx.Err() != nil {
			mu.Unlock()
			return
		}
		inflight.Add(1)
		mu.Unlock()
		defer inflight.Done()

		if !running.CompareAndSwap(false, true) {
			w.logger.Debug("previous run still in progress, deferring")
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		w.logger.Debug("change detected", "files", len(changed))
		if w.cfg.OnChange != nil {
			if err := w.cfg.OnChange(ctx, changed); err != nil {
				w.logger.Error("re-run failed", "error", err)
			}
		}
	}

	// Callbacks already started finish before Run returns; none start after.
	defer func() {
		mu.Lock()
		stopped = true
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		inflight.Wait()
		if closeErr := w.fsw.Close(); closeErr != nil {
			w.logger.Warn("close watcher", "error", closeErr)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}

			rel, ok := w.relevant(evt)
			if !ok {
				continue
			}

			mu.Lock()
			pending[rel] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.logger.Warn("fsnotify error", "error", err)
		}
	}
}

// relevant maps an event to its root-relative path and reports whether it
// can change search results.
func (w *Watcher) relevant(evt fsnotify.Event) (string, bool) {
	rel, err := filepath.Rel(w.root, evt.Name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	rel = filepath.ToSlash(rel)

	if w.isIgnored(rel) || !w.withinDepth(rel) {
		return "", false
	}

	if evt.Has(fsnotify.Create) {
		w.maybeAddDir(evt.Name, rel)
	}
	return rel, true
}

// withinDepth reports whether a root-relative file path lies inside the
// enumerated tree.
func (w *Watcher) withinDepth(rel string) bool {
	return w.cfg.MaxDepth.Allows(strings.Count(rel, "/"))
}

// addDirectories registers Root and every non-ignored directory the
// enumeration could descend into.
func (w *Watcher) addDirectories() error {
	if err := w.fsw.Add(w.root); err != nil {
		return fmt.Errorf("watch: add root %q: %w", w.root, err)
	}
	if w.cfg.MaxDepth == 0 {
		return nil
	}

	return filepath.WalkDir(w.root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			w.logger.Debug("skipping inaccessible path", "path", path, "error", walkErr)
			return nil //nolint:nilerr // inaccessible directories are skipped, not fatal
		}
		if !d.IsDir() || path == w.root {
			return nil
		}

		rel, err := filepath.Rel(w.root, path)
		if err != nil {
			return nil //nolint:nilerr // cannot happen below root
		}
		rel = filepath.ToSlash(rel)
		depth := strings.Count(rel, "/") + 1
		if !w.cfg.MaxDepth.Allows(depth) || w.isIgnored(rel) || w.isIgnored(rel+"/") {
			return filepath.SkipDir
		}

		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, err)
		}
		return nil
	})
}

// maybeAddDir starts watching a directory created after startup.
func (w *Watcher) maybeAddDir(path, rel string) {
	if w.cfg.MaxDepth == 0 {
		return
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if !w.cfg.MaxDepth.Allows(strings.Count(rel, "/")+1) || w.isIgnored(rel+"/") {
		return
	}
	if err := w.fsw.Add(path); err != nil {
		w.logger.Warn("watch new directory", "path", path, "error", err)
	}
}

func (w *Watcher) isIgnored(rel string) bool {
	for _, pat := range w.ignores {
		if matched, err := doublestar.Match(pat, rel); err == nil && matched {
			return true
		}
	}
	return false
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}
