// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ksearch/ksearch/internal/enumerate"
	"github.com/ksearch/ksearch/internal/partition"
	"github.com/ksearch/ksearch/pkg/types"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
	// ColorSchemeNone disables styling.
	ColorSchemeNone ColorScheme = "none"

	// DefaultDebounce is the default quiet period before a watch re-run.
	DefaultDebounce = 300 * time.Millisecond
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidDebounce is returned for a negative watch debounce.
	ErrInvalidDebounce = errors.New("invalid watch debounce")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sections.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Search configures coordinated mode.
		Search SearchConfig `json:"search" mapstructure:"search" toml:"search"`
		// Scan configures sequential mode.
		Scan ScanConfig `json:"scan" mapstructure:"scan" toml:"scan"`
		// Watch configures --watch re-runs.
		Watch WatchConfig `json:"watch" mapstructure:"watch" toml:"watch"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui" toml:"ui"`
	}

	// SearchConfig configures coordinated searches.
	SearchConfig struct {
		// Workers is the worker count; 0 uses one per CPU.
		Workers types.WorkerCount `json:"workers" mapstructure:"workers" toml:"workers"`
		// Strategy names the partition strategy.
		Strategy string `json:"strategy" mapstructure:"strategy" toml:"strategy"`
		// Exclude lists doublestar patterns of files to skip.
		Exclude []string `json:"exclude" mapstructure:"exclude" toml:"exclude"`
		// HTMLText matches HTML files against their visible text.
		HTMLText bool `json:"html_text" mapstructure:"html_text" toml:"html_text"`
	}

	// ScanConfig configures sequential scans.
	ScanConfig struct {
		// MaxDepth is used when the depth argument is omitted.
		MaxDepth types.MaxDepth `json:"max_depth" mapstructure:"max_depth" toml:"max_depth"`
	}

	// WatchConfig configures watch mode.
	WatchConfig struct {
		// Debounce is the quiet period after the last change before re-running.
		Debounce time.Duration `json:"debounce" mapstructure:"debounce" toml:"debounce"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme" toml:"color_scheme"`
		// Verbose enables verbose output
		Verbose bool `json:"verbose" mapstructure:"verbose" toml:"verbose"`
	}
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			Workers:  0,
			Strategy: partition.DefaultName,
			Exclude:  []string{},
		},
		Scan: ScanConfig{
			MaxDepth: types.UnlimitedDepth,
		},
		Watch: WatchConfig{
			Debounce: DefaultDebounce,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
	}
}

// IsValid returns whether the ColorScheme is one of the defined schemes.
func (c ColorScheme) IsValid() (bool, []error) {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight, ColorSchemeNone:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: c}}
	}
}

// String returns the string representation of the ColorScheme.
func (c ColorScheme) String() string { return string(c) }

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light, none)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// IsValid returns whether every section of the Config holds valid values,
// including checks CUE cannot express for environment overrides.
func (c *Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Search.Workers.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if _, err := partition.ByName(c.Search.Strategy); err != nil {
		errs = append(errs, err)
	}
	if err := enumerate.ValidatePatterns(c.Search.Exclude); err != nil {
		errs = append(errs, err)
	}
	if valid, fieldErrs := c.Scan.MaxDepth.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if c.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidDebounce, c.Watch.Debounce))
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	if len(e.FieldErrors) == 1 {
		return fmt.Sprintf("invalid config: %v", e.FieldErrors[0])
	}
	return fmt.Sprintf("invalid config: %d field errors: %v", len(e.FieldErrors), errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }
