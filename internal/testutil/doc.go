// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers shared by the search pipeline tests:
// fixture trees written under t.TempDir (WriteTree, MustWriteFile), permission
// and working-directory management (MustMakeUnreadable, MustChdir), and a
// FakeClock whose readings only move when the test says so.
package testutil
