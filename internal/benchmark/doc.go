// SPDX-License-Identifier: MPL-2.0

// Package benchmark provides benchmarks for the search hot paths:
//   - file enumeration and partitioning
//   - per-file line counting
//   - coordinated runs across worker counts and strategies
//   - sequential recursive scans
//   - configuration loading through the CUE schema
//
// To generate a PGO profile, run:
//
//	go test -run='^$' -bench=. -cpuprofile=default.pgo ./internal/benchmark
package benchmark
