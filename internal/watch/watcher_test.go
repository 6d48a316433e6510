// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ksearch/ksearch/internal/testutil"
	"github.com/ksearch/ksearch/pkg/types"
)

// startWatcher runs w in the background and returns a stop function that
// cancels it and fails the test if Run returned an error.
func startWatcher(t *testing.T, w *Watcher) func() {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	// Give the event loop time to start.
	time.Sleep(50 * time.Millisecond)

	return func() {
		cancel()
		if err := <-errCh; err != nil {
			t.Errorf("Run() error: %v", err)
		}
	}
}

func TestWatcherDebounce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	var (
		mu        sync.Mutex
		calls     int
		collected []string
	)
	done := make(chan struct{})

	w, err := New(Config{
		Root:     dir,
		Debounce: 100 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			mu.Lock()
			defer mu.Unlock()
			calls++
			collected = append(collected, changed...)
			if calls == 1 {
				close(done)
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)

	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		testutil.MustWriteFile(t, filepath.Join(dir, name), "data")
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
	time.Sleep(200 * time.Millisecond)
	stop()

	mu.Lock()
	defer mu.Unlock()

	if calls != 1 {
		t.Errorf("expected 1 debounced callback, got %d", calls)
	}
	for _, want := range []string{"a.txt", "b.txt", "c.txt"} {
		if !slices.Contains(collected, want) {
			t.Errorf("expected %q in changed files, got %v", want, collected)
		}
	}
	if !slices.IsSorted(collected) {
		t.Errorf("changed files not sorted: %v", collected)
	}
}

func TestWatcherExcludePatterns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fired := make(chan []string, 10)

	w, err := New(Config{
		Root:     dir,
		Exclude:  []string{"**/*.log"},
		Debounce: 50 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			fired <- changed
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)
	defer stop()

	testutil.MustWriteFile(t, filepath.Join(dir, "debug.log"), "log")
	time.Sleep(200 * time.Millisecond)
	testutil.MustWriteFile(t, filepath.Join(dir, "notes.txt"), "keyword")

	select {
	case changed := <-fired:
		if slices.Contains(changed, "debug.log") {
			t.Error("excluded file debug.log appeared in changed set")
		}
		if !slices.Contains(changed, "notes.txt") {
			t.Errorf("expected notes.txt in changed set, got %v", changed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
}

func TestWatcherFlatIgnoresSubdirectories(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.MustMkdirAll(t, filepath.Join(dir, "nested"))
	fired := make(chan []string, 10)

	w, err := New(Config{
		Root:     dir,
		MaxDepth: 0,
		Debounce: 50 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			fired <- changed
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)
	defer stop()

	testutil.MustWriteFile(t, filepath.Join(dir, "nested", "deep.txt"), "x")
	time.Sleep(200 * time.Millisecond)
	testutil.MustWriteFile(t, filepath.Join(dir, "top.txt"), "x")

	select {
	case changed := <-fired:
		if slices.Contains(changed, "nested/deep.txt") {
			t.Errorf("flat watcher reported nested file: %v", changed)
		}
		if !slices.Contains(changed, "top.txt") {
			t.Errorf("expected top.txt in changed set, got %v", changed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
}

func TestWatcherRecursiveSeesNestedFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.MustMkdirAll(t, filepath.Join(dir, "a", "b"))
	fired := make(chan []string, 10)

	w, err := New(Config{
		Root:     dir,
		MaxDepth: types.UnlimitedDepth,
		Debounce: 50 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			fired <- changed
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)
	defer stop()

	testutil.MustWriteFile(t, filepath.Join(dir, "a", "b", "deep.txt"), "x")

	select {
	case changed := <-fired:
		if !slices.Contains(changed, "a/b/deep.txt") {
			t.Errorf("expected a/b/deep.txt in changed set, got %v", changed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
}

func TestWatcherContextCancel(t *testing.T) {
	t.Parallel()

	w, err := New(Config{Root: t.TempDir(), Debounce: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Run() returned %v after cancel, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestWatcherRunWaitsForCallback(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	started := make(chan struct{})
	release := make(chan struct{})
	var (
		startOnce sync.Once
		finished  atomic.Bool
	)

	w, err := New(Config{
		Root:     dir,
		Debounce: 20 * time.Millisecond,
		OnChange: func(context.Context, []string) error {
			startOnce.Do(func() { close(started) })
			<-release
			finished.Store(true)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)

	testutil.MustWriteFile(t, filepath.Join(dir, "a.txt"), "data")
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}

	cancel()
	select {
	case err := <-errCh:
		t.Fatalf("Run() returned %v while a callback was still running", err)
	case <-time.After(100 * time.Millisecond):
	}

	close(release)
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Run() error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after the callback finished")
	}
	if !finished.Load() {
		t.Error("Run() returned before the callback finished")
	}
}

func TestWatcherSkipIfBusy(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	var (
		mu      sync.Mutex
		calls   int
		active  int
		overlap bool
	)
	firstCallDone := make(chan struct{})

	w, err := New(Config{
		Root:     dir,
		Debounce: 50 * time.Millisecond,
		OnChange: func(_ context.Context, _ []string) error {
			mu.Lock()
			calls++
			callNum := calls
			active++
			if active > 1 {
				overlap = true
			}
			mu.Unlock()

			if callNum == 1 {
				time.Sleep(300 * time.Millisecond)
				close(firstCallDone)
			}

			mu.Lock()
			active--
			mu.Unlock()
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)

	testutil.MustWriteFile(t, filepath.Join(dir, "first.txt"), "1")
	time.Sleep(100 * time.Millisecond)
	testutil.MustWriteFile(t, filepath.Join(dir, "second.txt"), "2")

	select {
	case <-firstCallDone:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for first callback")
	}
	time.Sleep(200 * time.Millisecond)
	stop()

	mu.Lock()
	defer mu.Unlock()
	if overlap {
		t.Error("callbacks ran concurrently")
	}
	if calls > 2 {
		t.Errorf("expected at most 2 callback invocations, got %d", calls)
	}
}

func TestWatcherInvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := New(Config{Root: t.TempDir(), Exclude: []string{"[invalid"}})
	if err == nil {
		t.Fatal("New() should reject an invalid exclude pattern")
	}
	if !strings.Contains(err.Error(), "invalid exclude pattern") {
		t.Errorf("error = %v, want mention of invalid exclude pattern", err)
	}
}

func TestWatcherMissingRoot(t *testing.T) {
	t.Parallel()

	_, err := New(Config{Root: filepath.Join(t.TempDir(), "gone")})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("New() error = %v, want os.ErrNotExist", err)
	}
}

func TestWatcherDoubleRunError(t *testing.T) {
	t.Parallel()

	w, err := New(Config{Root: t.TempDir()})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)
	defer stop()

	if err := w.Run(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() error = %v, want ErrAlreadyRunning", err)
	}
}

func TestDefaultIgnores(t *testing.T) {
	t.Parallel()

	ignores := DefaultIgnores()
	if !slices.Contains(ignores, "**/.git/**") {
		t.Errorf("DefaultIgnores() = %v, want .git excluded", ignores)
	}

	ignores[0] = "mutated"
	if DefaultIgnores()[0] == "mutated" {
		t.Error("DefaultIgnores() must return a copy")
	}

	w := &Watcher{ignores: defaultIgnores}
	for _, rel := range []string{".git/HEAD", "src/.git/config", "notes.txt.swp", "draft~"} {
		if !w.isIgnored(rel) {
			t.Errorf("isIgnored(%q) = false, want true", rel)
		}
	}
	if w.isIgnored("notes.txt") {
		t.Error("isIgnored(notes.txt) = true, want false")
	}
}
