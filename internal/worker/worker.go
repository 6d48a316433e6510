// SPDX-License-Identifier: MPL-2.0

// Package worker runs the search over one shard of the file list.
package worker

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ksearch/ksearch/internal/enumerate"
	"github.com/ksearch/ksearch/internal/partition"
	"github.com/ksearch/ksearch/internal/searcher"
)

type (
	// Clock abstracts time for elapsed-time measurement.
	Clock interface {
		Now() time.Time
		Since(t time.Time) time.Duration
	}

	// LocalResult is one worker's partial result. Count and Elapsed feed the
	// aggregate; Files and Unreadable are diagnostics only.
	LocalResult struct {
		Worker     int
		Count      int
		Elapsed    time.Duration
		Files      int
		Unreadable int
	}

	// Match attributes a file with at least one hit to the worker that
	// searched it.
	Match struct {
		Worker      int
		Keyword     string
		Path        string
		Occurrences int
	}

	// Executor searches the files of a shard sequentially. An Executor holds
	// no per-run state, so one value may serve every worker of a run.
	Executor struct {
		Searcher searcher.Searcher
		Clock    Clock
		// OnMatch, if set, is called for every file with a non-zero count.
		// Calls from different workers may interleave.
		OnMatch func(Match)
		Logger  *log.Logger
	}

	// SystemClock reads the wall clock.
	SystemClock struct{}
)

// Run searches files[shard.Start:shard.End] for keyword and returns the
// worker's partial result. Per-file failures count as zero and never stop
// the shard. An empty shard reports a zero elapsed time.
func (e *Executor) Run(shard partition.Shard, files enumerate.FileList, keyword string) LocalResult {
	result := LocalResult{Worker: shard.Worker}
	if shard.Empty() {
		return result
	}

	logger := e.logger()
	clock := e.clock()

	start := clock.Now()
	for i := shard.Start; i < shard.End; i++ {
		path := files.At(i)
		n, err := e.Searcher.Count(path, keyword)
		result.Files++
		if err != nil {
			result.Unreadable++
			logger.Debug("skipping file", "worker", shard.Worker, "path", path, "error", err)
			continue
		}
		if n > 0 {
			result.Count += n
			if e.OnMatch != nil {
				e.OnMatch(Match{Worker: shard.Worker, Keyword: keyword, Path: path, Occurrences: n})
			}
		}
	}
	result.Elapsed = clock.Since(start)

	logger.Debug("shard done",
		"worker", shard.Worker,
		"shard", shard.String(),
		"count", result.Count,
		"elapsed", result.Elapsed)
	return result
}

func (e *Executor) clock() Clock {
	if e.Clock == nil {
		return SystemClock{}
	}
	return e.Clock
}

func (e *Executor) logger() *log.Logger {
	if e.Logger == nil {
		return log.New(io.Discard)
	}
	return e.Logger
}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// Since returns time.Since(t).
func (SystemClock) Since(t time.Time) time.Duration { return time.Since(t) }
