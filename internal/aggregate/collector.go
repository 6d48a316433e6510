// SPDX-License-Identifier: MPL-2.0

package aggregate

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/ksearch/ksearch/internal/worker"
)

var (
	// ErrDuplicateResult is returned when a worker submits a second result.
	ErrDuplicateResult = errors.New("worker already submitted a result")
	// ErrUnknownWorker is returned for a worker id outside [0, expected).
	ErrUnknownWorker = errors.New("unknown worker")
)

// Collector is the barrier between the workers and the reduction. Each of
// the expected workers submits exactly once; Wait blocks until all of them
// have and only then exposes the combined result.
type Collector struct {
	expected int
	results  chan worker.LocalResult

	mu        sync.Mutex
	submitted []bool

	once    sync.Once
	locals  []worker.LocalResult
	reduced AggregateResult
}

// NewCollector creates a Collector for expected workers, numbered from 0.
func NewCollector(expected int) *Collector {
	expected = max(expected, 0)
	return &Collector{
		expected:  expected,
		results:   make(chan worker.LocalResult, expected),
		submitted: make([]bool, expected),
	}
}

// Submit records the partial result of r.Worker. It never blocks.
func (c *Collector) Submit(r worker.LocalResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if r.Worker < 0 || r.Worker >= c.expected {
		return fmt.Errorf("%w: %d (expected 0..%d)", ErrUnknownWorker, r.Worker, c.expected-1)
	}
	if c.submitted[r.Worker] {
		return fmt.Errorf("%w: worker %d", ErrDuplicateResult, r.Worker)
	}
	c.submitted[r.Worker] = true
	c.results <- r
	return nil
}

// Wait blocks until every expected worker has submitted and returns the
// reduced result. It has no timeout: a worker that never submits blocks Wait
// forever. Later calls return the same result.
func (c *Collector) Wait() AggregateResult {
	c.once.Do(func() {
		locals := make([]worker.LocalResult, 0, c.expected)
		for range c.expected {
			locals = append(locals, <-c.results)
		}
		slices.SortFunc(locals, func(a, b worker.LocalResult) int {
			return cmp.Compare(a.Worker, b.Worker)
		})
		c.locals = locals
		c.reduced = Reduce(locals)
	})
	return c.reduced
}

// Results returns the partial results ordered by worker id. It blocks like
// Wait.
func (c *Collector) Results() []worker.LocalResult {
	c.Wait()
	return slices.Clone(c.locals)
}
