// SPDX-License-Identifier: MPL-2.0

// Package partition splits a file list into one contiguous shard per worker.
//
// A Strategy only decides shard boundaries; it never sees file contents, so
// swapping strategies changes load balance without touching the workers or
// the reduction. Every strategy must produce exactly one shard per worker,
// in worker order, pairwise disjoint, covering [0, totalFiles) exactly.
package partition

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

const (
	// NameContiguous selects Contiguous.
	NameContiguous = "contiguous"
	// NameBalanced selects Balanced.
	NameBalanced = "balanced"

	// DefaultName is the strategy used when none is configured.
	DefaultName = NameContiguous
)

var (
	// ErrInvalidPartition is returned for a negative file count or a worker
	// count below one.
	ErrInvalidPartition = errors.New("invalid partition request")
	// ErrUnknownStrategy is the sentinel error wrapped by UnknownStrategyError.
	ErrUnknownStrategy = errors.New("unknown partition strategy")
	// ErrBadShards is returned by Verify when shards do not tile the range.
	ErrBadShards = errors.New("shards do not cover the file list exactly once")
)

type (
	// Shard is the half-open index range [Start, End) of the file list
	// assigned to one worker.
	Shard struct {
		Worker int
		Start  int
		End    int
	}

	// Strategy computes shard boundaries for totalFiles files over
	// workerCount workers.
	Strategy interface {
		Name() string
		Partition(totalFiles, workerCount int) ([]Shard, error)
	}

	// Contiguous gives every worker totalFiles/workerCount files and hands the
	// remainder to the last worker. With N workers the last shard can hold up
	// to N-1 extra files.
	Contiguous struct{}

	// Balanced gives the first totalFiles%workerCount workers one extra file,
	// so shard sizes differ by at most one.
	Balanced struct{}

	// UnknownStrategyError is returned by ByName for an unregistered name.
	UnknownStrategyError struct {
		Name string
	}
)

var registry = map[string]Strategy{
	NameContiguous: Contiguous{},
	NameBalanced:   Balanced{},
}

// ByName returns the strategy registered under name (case-insensitive).
// An empty name selects the default.
func ByName(name string) (Strategy, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = DefaultName
	}
	s, ok := registry[key]
	if !ok {
		return nil, &UnknownStrategyError{Name: name}
	}
	return s, nil
}

// Names lists the registered strategy names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of files in the shard.
func (s Shard) Len() int { return s.End - s.Start }

// Empty reports whether the shard holds no files.
func (s Shard) Empty() bool { return s.End <= s.Start }

// String renders the shard as "[start, end)".
func (s Shard) String() string { return fmt.Sprintf("[%d, %d)", s.Start, s.End) }

// Name returns NameContiguous.
func (Contiguous) Name() string { return NameContiguous }

// Partition implements Strategy.
func (Contiguous) Partition(totalFiles, workerCount int) ([]Shard, error) {
	if err := checkArgs(totalFiles, workerCount); err != nil {
		return nil, err
	}

	base := totalFiles / workerCount
	shards := make([]Shard, workerCount)
	for i := range shards {
		start := i * base
		end := start + base
		if i == workerCount-1 {
			end = totalFiles
		}
		shards[i] = Shard{Worker: i, Start: start, End: end}
	}
	return shards, nil
}

// Name returns NameBalanced.
func (Balanced) Name() string { return NameBalanced }

// Partition implements Strategy.
func (Balanced) Partition(totalFiles, workerCount int) ([]Shard, error) {
	if err := checkArgs(totalFiles, workerCount); err != nil {
		return nil, err
	}

	base := totalFiles / workerCount
	extra := totalFiles % workerCount
	shards := make([]Shard, workerCount)
	start := 0
	for i := range shards {
		size := base
		if i < extra {
			size++
		}
		shards[i] = Shard{Worker: i, Start: start, End: start + size}
		start += size
	}
	return shards, nil
}

// Verify checks that shards are in worker order, pairwise disjoint and cover
// [0, totalFiles) exactly.
func Verify(shards []Shard, totalFiles int) error {
	next := 0
	for i, s := range shards {
		switch {
		case s.Worker != i:
			return fmt.Errorf("%w: shard %d belongs to worker %d", ErrBadShards, i, s.Worker)
		case s.Start != next:
			return fmt.Errorf("%w: shard %d starts at %d, want %d", ErrBadShards, i, s.Start, next)
		case s.End < s.Start:
			return fmt.Errorf("%w: shard %d is inverted %s", ErrBadShards, i, s)
		}
		next = s.End
	}
	if next != totalFiles {
		return fmt.Errorf("%w: shards end at %d, want %d", ErrBadShards, next, totalFiles)
	}
	return nil
}

func checkArgs(totalFiles, workerCount int) error {
	if totalFiles < 0 {
		return fmt.Errorf("%w: total files %d is negative", ErrInvalidPartition, totalFiles)
	}
	if workerCount < 1 {
		return fmt.Errorf("%w: worker count %d is below 1", ErrInvalidPartition, workerCount)
	}
	return nil
}

// Error implements the error interface for UnknownStrategyError.
func (e *UnknownStrategyError) Error() string {
	return fmt.Sprintf("unknown partition strategy %q (available: %s)", e.Name, strings.Join(Names(), ", "))
}

// Unwrap returns ErrUnknownStrategy for errors.Is() compatibility.
func (e *UnknownStrategyError) Unwrap() error { return ErrUnknownStrategy }
