// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSearchRoot is the sentinel error wrapped by InvalidSearchRootError.
var ErrInvalidSearchRoot = errors.New("invalid search root")

type (
	// SearchRoot is the directory whose files are enumerated for a search.
	// A valid root must be non-empty and not whitespace-only. Whether it can
	// actually be opened is decided later: an unreadable root yields an empty
	// file list, not an error.
	SearchRoot string

	// InvalidSearchRootError is returned when a SearchRoot is empty or
	// whitespace-only.
	InvalidSearchRootError struct {
		Value SearchRoot
	}
)

// String returns the string representation of the SearchRoot.
func (r SearchRoot) String() string { return string(r) }

// IsValid returns whether the SearchRoot is usable.
func (r SearchRoot) IsValid() (bool, []error) {
	if strings.TrimSpace(string(r)) == "" {
		return false, []error{&InvalidSearchRootError{Value: r}}
	}
	return true, nil
}

// Error implements the error interface for InvalidSearchRootError.
func (e *InvalidSearchRootError) Error() string {
	return fmt.Sprintf("invalid search root %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidSearchRoot for errors.Is() compatibility.
func (e *InvalidSearchRootError) Unwrap() error { return ErrInvalidSearchRoot }
