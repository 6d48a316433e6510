// SPDX-License-Identifier: MPL-2.0

// Package coordinator drives a search run from enumeration to the final
// aggregate.
//
// A coordinated run lists the root's files once, splits the list into one
// static shard per worker, runs every worker concurrently against the shared
// read-only list and waits at a single barrier for all partial results before
// reducing them. There is no work stealing, no retry and no mid-run
// cancellation: once workers start, the run completes.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/sourcegraph/conc"

	"github.com/ksearch/ksearch/internal/aggregate"
	"github.com/ksearch/ksearch/internal/enumerate"
	"github.com/ksearch/ksearch/internal/partition"
	"github.com/ksearch/ksearch/internal/searcher"
	"github.com/ksearch/ksearch/internal/worker"
	"github.com/ksearch/ksearch/pkg/types"
)

// ErrInvalidRequest is returned for a request that must not start a run.
var ErrInvalidRequest = errors.New("invalid search request")

// Mode distinguishes coordinated runs from sequential scans.
type Mode int

const (
	// ModeCoordinated is the multi-worker flat search.
	ModeCoordinated Mode = iota
	// ModeSequential is the single-worker recursive scan.
	ModeSequential
)

type (
	// Request describes a coordinated run.
	Request struct {
		Root    types.SearchRoot
		Keyword types.Keyword
		Workers types.WorkerCount
		// Strategy splits the file list; nil selects partition.Contiguous.
		Strategy  partition.Strategy
		Enumerate enumerate.Options
	}

	// SequentialRequest describes a recursive single-worker scan.
	SequentialRequest struct {
		Root      types.SearchRoot
		Keyword   types.Keyword
		Enumerate enumerate.Options
	}

	// Coordinator runs searches. The zero value uses a LineCounter, the
	// system clock, no logging and no observer.
	Coordinator struct {
		Searcher searcher.Searcher
		Clock    worker.Clock
		Logger   *log.Logger
		Observer Observer
	}

	// Report is the outcome of a run.
	Report struct {
		Mode      Mode
		Keyword   string
		Files     enumerate.FileList
		Shards    []partition.Shard
		Locals    []worker.LocalResult
		Aggregate aggregate.AggregateResult
	}

	// Renderer writes a finished report.
	Renderer interface {
		Render(Report) error
	}

	// RendererFunc adapts a function to Renderer.
	RendererFunc func(Report) error
)

// Run executes a coordinated search and returns its report in the Aggregated
// state. ctx is consulted only before the workers start.
func (c *Coordinator) Run(ctx context.Context, req Request) (Report, error) {
	if err := req.validate(); err != nil {
		return Report{}, err
	}
	strategy := req.Strategy
	if strategy == nil {
		strategy = partition.Contiguous{}
	}
	logger := c.logger()
	obs := c.observer()
	keyword := req.Keyword.String()
	workers := int(req.Workers)

	obs.OnState(Enumerating)
	opts := req.Enumerate
	if opts.Logger == nil {
		opts.Logger = logger
	}
	files := enumerate.Flat(req.Root.String(), opts)

	shards, err := strategy.Partition(files.Len(), workers)
	if err != nil {
		return Report{}, fmt.Errorf("partition %d files over %d workers: %w", files.Len(), workers, err)
	}
	if err := partition.Verify(shards, files.Len()); err != nil {
		return Report{}, fmt.Errorf("strategy %s: %w", strategy.Name(), err)
	}
	obs.OnState(Partitioned)
	logger.Debug("partitioned", "files", files.Len(), "workers", workers, "strategy", strategy.Name())

	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	exec := c.executor(obs)
	collector := aggregate.NewCollector(workers)

	obs.OnState(Executing)
	var wg conc.WaitGroup
	for _, shard := range shards {
		wg.Go(func() {
			local := exec.Run(shard, files, keyword)
			obs.OnWorkerDone(local)
			if err := collector.Submit(local); err != nil {
				logger.Error("dropping worker result", "worker", shard.Worker, "error", err)
			}
		})
	}

	obs.OnState(Synchronizing)
	// Wait re-panics if a worker panicked; Submit never blocks, so every
	// surviving result is already buffered when it returns.
	wg.Wait()
	result := collector.Wait()

	obs.OnState(Aggregated)
	logger.Debug("aggregated", "total", result.TotalCount, "max_elapsed", result.MaxElapsed)

	return Report{
		Mode:      ModeCoordinated,
		Keyword:   keyword,
		Files:     files,
		Shards:    shards,
		Locals:    collector.Results(),
		Aggregate: result,
	}, nil
}

// RunSequential scans root recursively with a single worker. Unlike Run,
// the elapsed time covers enumeration as well as searching.
func (c *Coordinator) RunSequential(ctx context.Context, req SequentialRequest) (Report, error) {
	if err := validateCommon(req.Root, req.Keyword); err != nil {
		return Report{}, err
	}
	if ok, errs := req.Enumerate.MaxDepth.IsValid(); !ok {
		return Report{}, fmt.Errorf("%w: %w", ErrInvalidRequest, errors.Join(errs...))
	}
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	logger := c.logger()
	obs := c.observer()
	clock := c.clock()
	keyword := req.Keyword.String()

	start := clock.Now()

	obs.OnState(Enumerating)
	opts := req.Enumerate
	if opts.Logger == nil {
		opts.Logger = logger
	}
	files := enumerate.Recursive(req.Root.String(), opts)

	shard := partition.Shard{Worker: 0, Start: 0, End: files.Len()}
	obs.OnState(Partitioned)
	obs.OnState(Executing)
	local := c.executor(obs).Run(shard, files, keyword)
	local.Elapsed = clock.Since(start)
	obs.OnWorkerDone(local)

	obs.OnState(Synchronizing)
	result := aggregate.Reduce([]worker.LocalResult{local})
	obs.OnState(Aggregated)

	return Report{
		Mode:      ModeSequential,
		Keyword:   keyword,
		Files:     files,
		Shards:    []partition.Shard{shard},
		Locals:    []worker.LocalResult{local},
		Aggregate: result,
	}, nil
}

// Publish renders report and moves the run to the Reported state.
func (c *Coordinator) Publish(report Report, r Renderer) error {
	if err := r.Render(report); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	c.observer().OnState(Reported)
	return nil
}

// Render calls f.
func (f RendererFunc) Render(r Report) error { return f(r) }

func (req Request) validate() error {
	if err := validateCommon(req.Root, req.Keyword); err != nil {
		return err
	}
	if ok, errs := req.Workers.IsValid(); !ok {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, errors.Join(errs...))
	}
	if !req.Workers.IsSet() {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, &types.InvalidWorkerCountError{Value: req.Workers})
	}
	return nil
}

func validateCommon(root types.SearchRoot, keyword types.Keyword) error {
	var errs []error
	if ok, rootErrs := root.IsValid(); !ok {
		errs = append(errs, rootErrs...)
	}
	if ok, kwErrs := keyword.IsValid(); !ok {
		errs = append(errs, kwErrs...)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, errors.Join(errs...))
	}
	return nil
}

func (c *Coordinator) executor(obs Observer) *worker.Executor {
	return &worker.Executor{
		Searcher: c.searcher(),
		Clock:    c.clock(),
		OnMatch:  obs.OnMatch,
		Logger:   c.logger(),
	}
}

func (c *Coordinator) searcher() searcher.Searcher {
	if c.Searcher == nil {
		return searcher.LineCounter{}
	}
	return c.Searcher
}

func (c *Coordinator) clock() worker.Clock {
	if c.Clock == nil {
		return worker.SystemClock{}
	}
	return c.Clock
}

func (c *Coordinator) logger() *log.Logger {
	if c.Logger == nil {
		return log.New(io.Discard)
	}
	return c.Logger
}

func (c *Coordinator) observer() Observer {
	if c.Observer == nil {
		return nopObserver{}
	}
	return c.Observer
}
