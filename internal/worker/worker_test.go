// SPDX-License-Identifier: MPL-2.0

package worker

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ksearch/ksearch/internal/enumerate"
	"github.com/ksearch/ksearch/internal/partition"
	"github.com/ksearch/ksearch/internal/searcher"
	"github.com/ksearch/ksearch/internal/testutil"
)

func fixedCounts(counts map[string]int, failing ...string) searcher.Func {
	return func(path, _ string) (int, error) {
		for _, f := range failing {
			if f == path {
				return 0, &searcher.UnreadableError{Path: path, Err: errors.New("permission denied")}
			}
		}
		return counts[path], nil
	}
}

func TestExecutorRun(t *testing.T) {
	t.Parallel()

	files := enumerate.NewFileList("a.txt", "b.txt", "c.txt", "d.txt")
	counts := map[string]int{"a.txt": 2, "b.txt": 0, "c.txt": 1, "d.txt": 5}

	var (
		mu      sync.Mutex
		matches []Match
	)
	exec := &Executor{
		Searcher: fixedCounts(counts),
		Clock:    testutil.NewSteppingClock(3 * time.Millisecond),
		OnMatch: func(m Match) {
			mu.Lock()
			defer mu.Unlock()
			matches = append(matches, m)
		},
	}

	got := exec.Run(partition.Shard{Worker: 1, Start: 0, End: 3}, files, "hello")

	want := LocalResult{Worker: 1, Count: 3, Elapsed: 3 * time.Millisecond, Files: 3}
	if got != want {
		t.Errorf("Run() = %+v, want %+v", got, want)
	}

	wantMatches := []Match{
		{Worker: 1, Keyword: "hello", Path: "a.txt", Occurrences: 2},
		{Worker: 1, Keyword: "hello", Path: "c.txt", Occurrences: 1},
	}
	if len(matches) != len(wantMatches) {
		t.Fatalf("matches = %+v, want %+v", matches, wantMatches)
	}
	for i := range wantMatches {
		if matches[i] != wantMatches[i] {
			t.Errorf("matches[%d] = %+v, want %+v", i, matches[i], wantMatches[i])
		}
	}
}

func TestExecutorRunEmptyShard(t *testing.T) {
	t.Parallel()

	called := false
	exec := &Executor{
		Searcher: searcher.Func(func(string, string) (int, error) {
			called = true
			return 1, nil
		}),
		Clock: testutil.NewSteppingClock(time.Second),
	}

	got := exec.Run(partition.Shard{Worker: 2, Start: 4, End: 4}, enumerate.NewFileList(), "x")
	if got != (LocalResult{Worker: 2}) {
		t.Errorf("Run(empty) = %+v, want zero result for worker 2", got)
	}
	if called {
		t.Error("searcher was called for an empty shard")
	}
}

func TestExecutorRunUnreadableContributesZero(t *testing.T) {
	t.Parallel()

	files := enumerate.NewFileList("ok.txt", "locked.txt", "also-ok.txt")
	exec := &Executor{
		Searcher: fixedCounts(map[string]int{"ok.txt": 1, "locked.txt": 9, "also-ok.txt": 2}, "locked.txt"),
	}

	got := exec.Run(partition.Shard{Worker: 0, Start: 0, End: 3}, files, "k")
	if got.Count != 3 {
		t.Errorf("Count = %d, want 3", got.Count)
	}
	if got.Unreadable != 1 || got.Files != 3 {
		t.Errorf("Files = %d, Unreadable = %d, want 3 and 1", got.Files, got.Unreadable)
	}
	if got.Elapsed < 0 {
		t.Errorf("Elapsed = %v, want >= 0", got.Elapsed)
	}
}

func TestExecutorRunOnlyReadsItsShard(t *testing.T) {
	t.Parallel()

	files := enumerate.NewFileList("0", "1", "2", "3", "4")
	var seen []string
	exec := &Executor{
		Searcher: searcher.Func(func(path, _ string) (int, error) {
			seen = append(seen, path)
			return 0, nil
		}),
	}

	exec.Run(partition.Shard{Worker: 1, Start: 2, End: 4}, files, "k")
	if len(seen) != 2 || seen[0] != "2" || seen[1] != "3" {
		t.Errorf("searched %v, want [2 3]", seen)
	}
}

func TestExecutorRunElapsedCoversEverySearch(t *testing.T) {
	t.Parallel()

	clock := testutil.NewFakeClock(time.Time{})
	files := enumerate.NewFileList("a", "b", "c")
	exec := &Executor{
		Searcher: searcher.Func(func(string, string) (int, error) {
			clock.Advance(40 * time.Millisecond)
			return 0, nil
		}),
		Clock: clock,
	}

	got := exec.Run(partition.Shard{Worker: 0, Start: 0, End: 3}, files, "k")
	if got.Elapsed != 120*time.Millisecond {
		t.Errorf("Elapsed = %v, want 120ms", got.Elapsed)
	}
}
