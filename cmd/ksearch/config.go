// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ksearch/ksearch/internal/config"
	"github.com/ksearch/ksearch/internal/issue"
)

const (
	dumpFormatCUE  = "cue"
	dumpFormatTOML = "toml"
)

// newConfigCommand creates the `ksearch config` command tree. Subcommands
// read the configuration already resolved for the session.
func newConfigCommand(app *App, s *session) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage ksearch configuration",
		Long: `Manage ksearch configuration.

Configuration is read from config.cue in:
  - Linux: $XDG_CONFIG_HOME/ksearch (default ~/.config/ksearch)
  - macOS: ~/Library/Application Support/ksearch
  - Windows: %APPDATA%\ksearch
falling back to ./config.cue. Every key can be overridden with a KSEARCH_
environment variable, e.g. KSEARCH_SEARCH_STRATEGY=balanced.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			showConfig(app.stdout, s.loaded)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := configPath(s.loaded)
			if err != nil {
				return err
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, created, err := config.CreateDefaultConfig("")
			if err != nil {
				return issue.WrapWithContext(err, "create default config", config.ConfigFileName+"."+config.ConfigFileExt)
			}
			if !created {
				fmt.Fprintf(app.stdout, "%s already exists at %s\n", SubtitleStyle.Render("Config file"), path)
				return nil
			}
			fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("Created"), path)
			return nil
		},
	})

	var format string
	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the effective configuration as CUE or TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return dumpConfig(cmd, app.stdout, s.loaded.Config, format)
		},
	}
	dumpCmd.Flags().StringVar(&format, "format", dumpFormatCUE, "output format: cue or toml")
	cfgCmd.AddCommand(dumpCmd)

	return cfgCmd
}

func showConfig(w io.Writer, loaded config.Loaded) {
	cfg := loaded.Config

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	if loaded.Path != "" {
		fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render("Config file"), loaded.Path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	workers := "one per CPU"
	if cfg.Search.Workers.IsSet() {
		workers = cfg.Search.Workers.String()
	}
	depth := "unlimited"
	if !cfg.Scan.MaxDepth.Unlimited() {
		depth = strconv.Itoa(int(cfg.Scan.MaxDepth))
	}
	exclude := "(none)"
	if len(cfg.Search.Exclude) > 0 {
		exclude = strings.Join(cfg.Search.Exclude, ", ")
	}

	for _, kv := range [][2]string{
		{"search.workers", workers},
		{"search.strategy", cfg.Search.Strategy},
		{"search.exclude", exclude},
		{"search.html_text", strconv.FormatBool(cfg.Search.HTMLText)},
		{"scan.max_depth", depth},
		{"watch.debounce", cfg.Watch.Debounce.String()},
		{"ui.color_scheme", cfg.UI.ColorScheme.String()},
		{"ui.verbose", strconv.FormatBool(cfg.UI.Verbose)},
	} {
		fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render(kv[0]), SuccessStyle.Render(kv[1]))
	}
}

// configPath returns the file the session loaded, or where `config init`
// would create one.
func configPath(loaded config.Loaded) (string, error) {
	if loaded.Path != "" {
		return loaded.Path, nil
	}
	dir, err := config.ConfigDir()
	if err != nil {
		return "", issue.WrapWithContext(err, "resolve config directory", "")
	}
	return filepath.Join(dir, config.ConfigFileName+"."+config.ConfigFileExt), nil
}

func dumpConfig(cmd *cobra.Command, w io.Writer, cfg *config.Config, format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case dumpFormatCUE:
		_, err := io.WriteString(w, config.GenerateCUE(cfg))
		return err
	case dumpFormatTOML:
		out, err := config.GenerateTOML(cfg)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	default:
		return usageError(cmd, fmt.Sprintf("unknown format %q (want %s or %s)", format, dumpFormatCUE, dumpFormatTOML))
	}
}
