// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// UnlimitedDepth disables the recursion limit of a sequential scan.
const UnlimitedDepth MaxDepth = -1

// ErrInvalidMaxDepth is the sentinel error wrapped by InvalidMaxDepthError.
var ErrInvalidMaxDepth = errors.New("invalid max depth")

type (
	// MaxDepth limits how many directory levels below the root a sequential
	// scan descends. 0 lists only the root itself; -1 is unlimited.
	MaxDepth int

	// InvalidMaxDepthError is returned when a MaxDepth is below -1 or cannot
	// be parsed.
	InvalidMaxDepthError struct {
		Input string
	}
)

// ParseMaxDepth parses a command-line depth argument.
func ParseMaxDepth(s string) (MaxDepth, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &InvalidMaxDepthError{Input: s}
	}
	d := MaxDepth(n)
	if ok, errs := d.IsValid(); !ok {
		return 0, errs[0]
	}
	return d, nil
}

// IsValid returns whether the MaxDepth is -1 or non-negative.
func (d MaxDepth) IsValid() (bool, []error) {
	if d < UnlimitedDepth {
		return false, []error{&InvalidMaxDepthError{Input: strconv.Itoa(int(d))}}
	}
	return true, nil
}

// Unlimited reports whether recursion is unbounded.
func (d MaxDepth) Unlimited() bool { return d == UnlimitedDepth }

// Allows reports whether a directory at the given depth may be listed.
func (d MaxDepth) Allows(depth int) bool {
	return d.Unlimited() || depth <= int(d)
}

// Error implements the error interface for InvalidMaxDepthError.
func (e *InvalidMaxDepthError) Error() string {
	return fmt.Sprintf("invalid max depth %q: use -1 for unlimited or a non-negative integer", e.Input)
}

// Unwrap returns ErrInvalidMaxDepth for errors.Is() compatibility.
func (e *InvalidMaxDepthError) Unwrap() error { return ErrInvalidMaxDepth }
