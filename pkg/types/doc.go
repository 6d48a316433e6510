// SPDX-License-Identifier: MPL-2.0

// Package types defines cross-cutting value types shared by the search
// pipeline and the CLI (keywords, worker counts, depth limits, search roots,
// exit codes). Each type carries its own validation and a sentinel error so
// callers can branch with errors.Is.
//
// This package is a leaf dependency: it imports only the standard library.
package types
