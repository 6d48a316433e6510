// SPDX-License-Identifier: MPL-2.0

// Package config handles ksearch configuration using Viper with CUE as the file format.
//
// Values are resolved from, in increasing priority: built-in defaults, a
// config.cue file (the platform config directory, then the current directory,
// or an explicit --config path), and KSEARCH_* environment variables.
// Command-line flags are applied on top by the CLI layer.
//
// Config files are validated against an embedded CUE schema (config_schema.cue)
// so unknown keys and ill-typed values are reported with their CUE path.
package config
