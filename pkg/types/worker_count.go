// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidWorkerCount is the sentinel error wrapped by InvalidWorkerCountError.
var ErrInvalidWorkerCount = errors.New("invalid worker count")

type (
	// WorkerCount is the fixed number of workers a coordinated run is split
	// across. It is decided once at startup and never changes during a run.
	// The zero value means "not configured" and is resolved by the caller
	// (flag, environment, config file, then CPU count).
	WorkerCount int

	// InvalidWorkerCountError is returned when a WorkerCount is negative.
	InvalidWorkerCountError struct {
		Value WorkerCount
	}
)

// IsValid returns whether the WorkerCount is usable or unset.
func (w WorkerCount) IsValid() (bool, []error) {
	if w < 0 {
		return false, []error{&InvalidWorkerCountError{Value: w}}
	}
	return true, nil
}

// IsSet reports whether a concrete worker count was supplied.
func (w WorkerCount) IsSet() bool { return w > 0 }

// OrDefault returns w when set, otherwise fallback.
func (w WorkerCount) OrDefault(fallback WorkerCount) WorkerCount {
	if w.IsSet() {
		return w
	}
	return fallback
}

// String returns the decimal representation of the WorkerCount.
func (w WorkerCount) String() string { return strconv.Itoa(int(w)) }

// Error implements the error interface for InvalidWorkerCountError.
func (e *InvalidWorkerCountError) Error() string {
	return fmt.Sprintf("invalid worker count %d: must be at least 1", e.Value)
}

// Unwrap returns ErrInvalidWorkerCount for errors.Is() compatibility.
func (e *InvalidWorkerCountError) Unwrap() error { return ErrInvalidWorkerCount }
