// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidKeyword is the sentinel error wrapped by InvalidKeywordError.
var ErrInvalidKeyword = errors.New("invalid keyword")

type (
	// Keyword is the literal text searched for in every file. It is matched as
	// a plain substring: no regex, no case folding. A valid keyword is non-empty
	// and contains no line break, since matching is performed line by line.
	Keyword string

	// InvalidKeywordError is returned when a Keyword is empty or spans lines.
	InvalidKeywordError struct {
		Value  Keyword
		Reason string
	}
)

// String returns the string representation of the Keyword.
func (k Keyword) String() string { return string(k) }

// IsValid returns whether the Keyword can be matched against a single line.
func (k Keyword) IsValid() (bool, []error) {
	switch {
	case k == "":
		return false, []error{&InvalidKeywordError{Value: k, Reason: "must be non-empty"}}
	case strings.ContainsAny(string(k), "\r\n"):
		return false, []error{&InvalidKeywordError{Value: k, Reason: "must not contain line breaks"}}
	}
	return true, nil
}

// Error implements the error interface for InvalidKeywordError.
func (e *InvalidKeywordError) Error() string {
	return fmt.Sprintf("invalid keyword %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidKeyword for errors.Is() compatibility.
func (e *InvalidKeywordError) Unwrap() error { return ErrInvalidKeyword }
