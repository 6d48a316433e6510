// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing error reporting for ksearch.
//
// ActionableError carries the operation that failed, the resource involved and
// remediation hints. Issue is a catalogue of longer Markdown explanations,
// rendered through glamour, for the failure classes a user can fix themselves
// (bad arguments, unreadable search roots, broken config files).
package issue
