// SPDX-License-Identifier: MPL-2.0

// Package aggregate reduces per-worker partial results into the global result.
//
// Counts combine with Sum and elapsed times with Max. Both operators are
// associative and commutative, so the order in which workers finish never
// changes the outcome.
package aggregate

import (
	"time"

	"golang.org/x/exp/constraints"

	"github.com/ksearch/ksearch/internal/worker"
)

type (
	// Number is any type Sum and Max can reduce.
	Number interface {
		constraints.Integer | constraints.Float
	}

	// AggregateResult is the combined result of every worker of a run.
	AggregateResult struct {
		TotalCount int
		MaxElapsed time.Duration
		Workers    int
	}
)

// Sum returns the sum of values, or zero for none.
func Sum[T Number](values ...T) T {
	var total T
	for _, v := range values {
		total += v
	}
	return total
}

// Max returns the largest of values, or zero for none.
func Max[T Number](values ...T) T {
	var largest T
	for i, v := range values {
		if i == 0 || v > largest {
			largest = v
		}
	}
	return largest
}

// Reduce combines partial results: counts are summed and elapsed times
// reduced with Max.
func Reduce(results []worker.LocalResult) AggregateResult {
	counts := make([]int, len(results))
	elapsed := make([]time.Duration, len(results))
	for i, r := range results {
		counts[i] = r.Count
		elapsed[i] = r.Elapsed
	}
	return AggregateResult{
		TotalCount: Sum(counts...),
		MaxElapsed: Max(elapsed...),
		Workers:    len(results),
	}
}

// Milliseconds returns MaxElapsed in fractional milliseconds.
func (r AggregateResult) Milliseconds() float64 {
	return float64(r.MaxElapsed) / float64(time.Millisecond)
}
