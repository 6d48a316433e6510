// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/ksearch/ksearch/internal/issue"
	"github.com/ksearch/ksearch/internal/partition"
	"github.com/ksearch/ksearch/internal/testutil"
	"github.com/ksearch/ksearch/pkg/types"
)

func load(t *testing.T, opts LoadOptions) (Loaded, error) {
	t.Helper()
	return NewProvider().Load(context.Background(), opts)
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.Search.Workers != 0 {
		t.Errorf("default workers = %d, want 0 (one per CPU)", cfg.Search.Workers)
	}
	if cfg.Search.Strategy != partition.NameContiguous {
		t.Errorf("default strategy = %q, want %q", cfg.Search.Strategy, partition.NameContiguous)
	}
	if cfg.Scan.MaxDepth != types.UnlimitedDepth {
		t.Errorf("default max depth = %d, want -1", cfg.Scan.MaxDepth)
	}
	if cfg.Watch.Debounce != DefaultDebounce {
		t.Errorf("default debounce = %v, want %v", cfg.Watch.Debounce, DefaultDebounce)
	}
	if cfg.UI.ColorScheme != ColorSchemeAuto || cfg.UI.Verbose {
		t.Errorf("default UI = %+v", cfg.UI)
	}
	if valid, errs := cfg.IsValid(); !valid {
		t.Errorf("default config invalid: %v", errs)
	}
}

func TestConfigDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG lookup is Linux-specific")
	}

	t.Setenv("XDG_CONFIG_HOME", "/tmp/test-xdg-config")
	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() returned error: %v", err)
	}
	if want := filepath.Join("/tmp/test-xdg-config", AppName); dir != want {
		t.Errorf("ConfigDir() = %s, want %s", dir, want)
	}

	SetConfigDirOverride("/elsewhere")
	t.Cleanup(Reset)
	if dir, _ := ConfigDir(); dir != "/elsewhere" {
		t.Errorf("ConfigDir() with override = %s, want /elsewhere", dir)
	}
}

func TestLoad_ReturnsDefaultsWhenNoConfigFile(t *testing.T) {
	t.Cleanup(testutil.MustChdir(t, t.TempDir()))

	loaded, err := load(t, LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Path != "" {
		t.Errorf("Path = %q, want empty", loaded.Path)
	}
	if loaded.Config.Search.Strategy != partition.NameContiguous {
		t.Errorf("Strategy = %q, want default", loaded.Config.Search.Strategy)
	}
}

func TestLoad_ReadsConfigDir(t *testing.T) {
	t.Cleanup(testutil.MustChdir(t, t.TempDir()))
	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, "config.cue"), `
search: {
	workers: 6
	strategy: "balanced"
	exclude: ["**/*.log", "vendor/**"]
	html_text: true
}
scan: max_depth: 3
watch: debounce: "1s"
ui: verbose: true
`)

	loaded, err := load(t, LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	cfg := loaded.Config

	if loaded.Path != filepath.Join(dir, "config.cue") {
		t.Errorf("Path = %q", loaded.Path)
	}
	if cfg.Search.Workers != 6 || cfg.Search.Strategy != partition.NameBalanced || !cfg.Search.HTMLText {
		t.Errorf("Search = %+v", cfg.Search)
	}
	if len(cfg.Search.Exclude) != 2 || cfg.Search.Exclude[1] != "vendor/**" {
		t.Errorf("Exclude = %v", cfg.Search.Exclude)
	}
	if cfg.Scan.MaxDepth != 3 {
		t.Errorf("MaxDepth = %d, want 3", cfg.Scan.MaxDepth)
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("Debounce = %v, want 1s", cfg.Watch.Debounce)
	}
	if !cfg.UI.Verbose || cfg.UI.ColorScheme != ColorSchemeAuto {
		t.Errorf("UI = %+v", cfg.UI)
	}
}

func TestLoad_FallsBackToCurrentDirectory(t *testing.T) {
	cwd := t.TempDir()
	t.Cleanup(testutil.MustChdir(t, cwd))
	testutil.MustWriteFile(t, filepath.Join(cwd, "config.cue"), "search: workers: 2\n")

	loaded, err := load(t, LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Config.Search.Workers != 2 || loaded.Path != "config.cue" {
		t.Errorf("Workers = %d, Path = %q", loaded.Config.Search.Workers, loaded.Path)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Cleanup(testutil.MustChdir(t, t.TempDir()))
	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, "config.cue"), "search: {workers: 6, strategy: \"balanced\"}\n")

	t.Setenv(WorkersEnv, "3")
	t.Setenv("KSEARCH_SEARCH_STRATEGY", "contiguous")
	t.Setenv("KSEARCH_UI_VERBOSE", "true")

	loaded, err := load(t, LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	cfg := loaded.Config
	if cfg.Search.Workers != 3 {
		t.Errorf("Workers = %d, want 3 from %s", cfg.Search.Workers, WorkersEnv)
	}
	if cfg.Search.Strategy != partition.NameContiguous {
		t.Errorf("Strategy = %q, want contiguous from env", cfg.Search.Strategy)
	}
	if !cfg.UI.Verbose {
		t.Error("Verbose = false, want true from env")
	}
}

func TestLoad_InvalidEnvironmentValue(t *testing.T) {
	t.Cleanup(testutil.MustChdir(t, t.TempDir()))
	t.Setenv("KSEARCH_SEARCH_STRATEGY", "round-robin")

	_, err := load(t, LoadOptions{ConfigDirPath: t.TempDir()})
	if err == nil {
		t.Fatal("Load() succeeded with an unknown strategy")
	}
	if !errors.Is(err, partition.ErrUnknownStrategy) {
		t.Errorf("error = %v, want ErrUnknownStrategy in chain", err)
	}
	var ae *issue.ActionableError
	if !errors.As(err, &ae) || !ae.HasSuggestions() {
		t.Errorf("error should be an ActionableError with suggestions, got %T", err)
	}
}

func TestLoad_CustomPath_NotFound_ReturnsError(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "nope.cue")
	_, err := load(t, LoadOptions{ConfigFilePath: missing})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Load() error = %v, want os.ErrNotExist", err)
	}
	var ae *issue.ActionableError
	if !errors.As(err, &ae) || ae.Resource != missing {
		t.Errorf("ActionableError resource = %v, want %s", ae, missing)
	}
}

func TestLoad_SchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown key", "search: colour: true\n", "colour"},
		{"negative workers", "search: workers: -1\n", "workers"},
		{"bad strategy", "search: strategy: \"random\"\n", "strategy"},
		{"depth below -1", "scan: max_depth: -2\n", "max_depth"},
		{"bad debounce", "watch: debounce: \"soon\"\n", "debounce"},
		{"syntax", "search: {\n", "config.cue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "config.cue")
			testutil.MustWriteFile(t, path, tt.content)

			_, err := load(t, LoadOptions{ConfigFilePath: path})
			if err == nil {
				t.Fatal("Load() succeeded, want schema error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewProvider().Load(ctx, LoadOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested")
	path, created, err := CreateDefaultConfig(dir)
	if err != nil {
		t.Fatalf("CreateDefaultConfig() error = %v", err)
	}
	if !created || path != filepath.Join(dir, "config.cue") {
		t.Errorf("CreateDefaultConfig() = %q, %v", path, created)
	}

	// The generated file must round-trip through the schema.
	loaded, err := load(t, LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("Load(generated) error = %v", err)
	}
	if loaded.Config.Scan.MaxDepth != types.UnlimitedDepth {
		t.Errorf("MaxDepth = %d, want -1", loaded.Config.Scan.MaxDepth)
	}

	if _, created, err := CreateDefaultConfig(dir); err != nil || created {
		t.Errorf("second CreateDefaultConfig() created = %v, err = %v", created, err)
	}
}

func TestGenerateCUE_RoundTrip(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Search.Workers = 4
	cfg.Search.Exclude = []string{"**/.git/**"}
	cfg.Watch.Debounce = 750 * time.Millisecond
	cfg.UI.ColorScheme = ColorSchemeNone

	path := filepath.Join(t.TempDir(), "config.cue")
	testutil.MustWriteFile(t, path, GenerateCUE(cfg))

	loaded, err := load(t, LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	got := loaded.Config
	if got.Search.Workers != 4 || got.Search.Exclude[0] != "**/.git/**" || got.Watch.Debounce != 750*time.Millisecond || got.UI.ColorScheme != ColorSchemeNone {
		t.Errorf("round trip = %+v", got)
	}
}

func TestGenerateTOML(t *testing.T) {
	t.Parallel()

	out, err := GenerateTOML(DefaultConfig())
	if err != nil {
		t.Fatalf("GenerateTOML() error = %v", err)
	}

	var doc map[string]map[string]any
	if err := toml.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("output is not TOML: %v\n%s", err, out)
	}
	if doc["search"]["strategy"] != "contiguous" {
		t.Errorf("search.strategy = %v", doc["search"]["strategy"])
	}
	if doc["watch"]["debounce"] != "300ms" {
		t.Errorf("watch.debounce = %v, want 300ms", doc["watch"]["debounce"])
	}
	if doc["scan"]["max_depth"] != int64(-1) {
		t.Errorf("scan.max_depth = %#v, want -1", doc["scan"]["max_depth"])
	}
}

func TestColorSchemeIsValid(t *testing.T) {
	t.Parallel()

	for _, c := range []ColorScheme{ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight, ColorSchemeNone} {
		if ok, _ := c.IsValid(); !ok {
			t.Errorf("%q should be valid", c)
		}
	}
	ok, errs := ColorScheme("neon").IsValid()
	if ok || len(errs) != 1 || !errors.Is(errs[0], ErrInvalidColorScheme) {
		t.Errorf("IsValid(neon) = %v, %v", ok, errs)
	}
}

func TestConfigIsValidCollectsFieldErrors(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Search.Workers = -2
	cfg.Watch.Debounce = -time.Second
	cfg.Search.Exclude = []string{"[unclosed"}

	ok, errs := cfg.IsValid()
	if ok {
		t.Fatal("IsValid() = true")
	}
	var invalid *InvalidConfigError
	if !errors.As(errs[0], &invalid) || len(invalid.FieldErrors) != 3 {
		t.Fatalf("errs = %v", errs)
	}
	if !errors.Is(errs[0], ErrInvalidConfig) {
		t.Error("error should wrap ErrInvalidConfig")
	}
}
