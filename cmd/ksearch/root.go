// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for ksearch.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/ksearch/ksearch/internal/issue"
	"github.com/ksearch/ksearch/pkg/types"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the ksearch command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	cmd, _ := newRootCommand(app)
	return cmd
}

func newRootCommand(app *App) (*cobra.Command, *session) {
	s := &session{}

	rootCmd := &cobra.Command{
		Use:   "ksearch",
		Short: "Count keyword occurrences across the files of a directory",
		Long: TitleStyle.Render("ksearch") + SubtitleStyle.Render(" - parallel literal keyword search") + `

ksearch lists the regular files directly inside a directory, splits the list
among a fixed number of workers and reports, for every file, how many of its
lines contain the keyword, followed by the total and the slowest worker's time.

` + SubtitleStyle.Render("Examples:") + `
  ksearch search ./logs ERROR              Search with one worker per CPU
  ksearch search ./logs ERROR -w 4         Search with four workers
  ksearch scan ./src TODO 2                Recursive scan, two levels deep
  ksearch config show                      Show the effective configuration`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			app.loadConfig(cmd.Context(), s)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&s.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&s.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/ksearch/config.cue)")

	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError(cmd, err.Error())
	})

	rootCmd.AddCommand(newSearchCommand(app, s))
	rootCmd.AddCommand(newScanCommand(app, s))
	rootCmd.AddCommand(newConfigCommand(app, s))

	return rootCmd, s
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI with the process arguments and exits with the
// resulting code. It is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	os.Exit(int(app.Execute(context.Background(), os.Args[1:])))
}

// Execute runs the command tree with args through fang and returns the exit
// code the process should end with.
func (a *App) Execute(ctx context.Context, args []string) types.ExitCode {
	rootCmd, s := newRootCommand(a)
	rootCmd.SetArgs(args)

	err := fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, s.verbose))
			if s.verbose && s.loaded.Config != nil {
				renderIssue(w, err, s.loaded.Config.UI.ColorScheme)
			}
		}),
	)
	return exitCodeFor(err)
}

// usageError prints cmd's usage to the root's stdout and returns the exit error for a
// malformed invocation. Nothing else runs.
func usageError(cmd *cobra.Command, reason string) error {
	_ = cmd.Usage()

	return &ExitError{
		Code: types.ExitUsage,
		Err: issue.NewErrorContext().
			WithOperation("parse arguments").
			WithResource(cmd.CommandPath()).
			WithSuggestion(fmt.Sprintf("Run '%s --help' for usage", cmd.CommandPath())).
			WithIssue(issue.UsageErrorId).
			Wrap(errors.New(reason)).
			BuildError(),
	}
}
