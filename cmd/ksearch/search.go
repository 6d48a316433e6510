// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ksearch/ksearch/internal/config"
	"github.com/ksearch/ksearch/internal/coordinator"
	"github.com/ksearch/ksearch/internal/enumerate"
	"github.com/ksearch/ksearch/internal/issue"
	"github.com/ksearch/ksearch/internal/partition"
	"github.com/ksearch/ksearch/internal/report"
	"github.com/ksearch/ksearch/pkg/types"
)

type (
	// outputFlags are shared by search and scan.
	outputFlags struct {
		json     bool
		watch    bool
		htmlText bool
		exclude  []string
	}

	searchFlags struct {
		outputFlags
		workers  int
		strategy string
	}
)

func newSearchCommand(app *App, s *session) *cobra.Command {
	var flags searchFlags

	cmd := &cobra.Command{
		Use:   "search <rootDirectory> <keyword>",
		Short: "Search the files directly inside a directory with parallel workers",
		Long: `Search the regular files directly inside <rootDirectory> for <keyword>.

The file list is split into one contiguous shard per worker. Each worker prints
a line for every file where the keyword occurs, then the total number of
matching lines and the slowest worker's time are reported.

The worker count comes from --workers, else $` + config.WorkersEnv + `, else the
search.workers config key, else the number of CPUs.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return usageError(cmd, "requires <rootDirectory> and <keyword>")
			}
			return runSearch(cmd, app, s, &flags, args[0], args[1])
		},
	}

	cmd.Flags().IntVarP(&flags.workers, "workers", "w", 0, "number of workers (default: one per CPU)")
	cmd.Flags().StringVar(&flags.strategy, "strategy", "", "partition strategy: "+strings.Join(partition.Names(), ", "))
	addOutputFlags(cmd, &flags.outputFlags)

	return cmd
}

func addOutputFlags(cmd *cobra.Command, flags *outputFlags) {
	cmd.Flags().BoolVar(&flags.json, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&flags.watch, "watch", false, "re-run the search whenever a file under the root changes")
	cmd.Flags().BoolVar(&flags.htmlText, "html-text", false, "match .html files against their visible text")
	cmd.Flags().StringSliceVar(&flags.exclude, "exclude", nil, "glob pattern of paths to skip (repeatable)")
}

func runSearch(cmd *cobra.Command, app *App, s *session, flags *searchFlags, root, keyword string) error {
	cfg := s.loaded.Config

	kw, err := validateKeyword(keyword)
	if err != nil {
		return err
	}

	workers, err := resolveWorkers(cmd.Flags().Changed("workers"), flags.workers, cfg)
	if err != nil {
		return err
	}

	strategyName := cfg.Search.Strategy
	if cmd.Flags().Changed("strategy") {
		strategyName = flags.strategy
	}
	strategy, err := partition.ByName(strategyName)
	if err != nil {
		return &ExitError{
			Code: types.ExitUsage,
			Err: issue.NewErrorContext().
				WithOperation("select partition strategy").
				WithResource(strategyName).
				WithSuggestion("Use one of: " + strings.Join(partition.Names(), ", ")).
				WithIssue(issue.UnknownStrategyId).
				Wrap(err).
				BuildError(),
		}
	}

	exclude, err := resolveExclude(flags.exclude, cfg)
	if err != nil {
		return err
	}

	req := coordinator.Request{
		Root:     types.SearchRoot(root),
		Keyword:  kw,
		Workers:  workers,
		Strategy: strategy,
		Enumerate: enumerate.Options{
			Exclude: exclude,
			Logger:  s.logger,
		},
	}
	s.logger.Debug("starting search", "root", root, "workers", int(workers), "strategy", strategy.Name())

	once := func(ctx context.Context) error {
		printer := app.newPrinter(s, coordinator.ModeCoordinated, flags.json)
		c := app.coordinator(s, cfg, flags.htmlText, printer)
		rep, err := c.Run(ctx, req)
		if err != nil {
			return searchFailed(root, err)
		}
		return c.Publish(rep, printer)
	}

	if err := once(cmd.Context()); err != nil {
		return err
	}
	if !flags.watch {
		return nil
	}
	return app.watch(cmd.Context(), s, watchTarget{
		root:     root,
		maxDepth: 0,
		exclude:  exclude,
		debounce: cfg.Watch.Debounce,
		header:   !flags.json,
		run:      once,
	})
}

// resolveWorkers applies the worker count precedence: an explicit flag,
// then the environment or config file (already merged into cfg), then one
// worker per CPU.
func resolveWorkers(flagSet bool, flagValue int, cfg *config.Config) (types.WorkerCount, error) {
	if flagSet {
		wc := types.WorkerCount(flagValue)
		if !wc.IsSet() {
			return 0, invalidWorkers(wc)
		}
		return wc, nil
	}
	if ok, _ := cfg.Search.Workers.IsValid(); !ok {
		return 0, invalidWorkers(cfg.Search.Workers)
	}
	return cfg.Search.Workers.OrDefault(types.WorkerCount(runtime.NumCPU())), nil
}

func invalidWorkers(wc types.WorkerCount) error {
	return &ExitError{
		Code: types.ExitUsage,
		Err: issue.NewErrorContext().
			WithOperation("resolve worker count").
			WithResource(wc.String()).
			WithSuggestion("Pass --workers with a value of at least 1").
			WithIssue(issue.InvalidWorkerCountId).
			Wrap(&types.InvalidWorkerCountError{Value: wc}).
			BuildError(),
	}
}

func validateKeyword(keyword string) (types.Keyword, error) {
	kw := types.Keyword(keyword)
	if ok, errs := kw.IsValid(); !ok {
		return "", &ExitError{
			Code: types.ExitUsage,
			Err: issue.NewErrorContext().
				WithOperation("validate keyword").
				WithSuggestion("Quote the keyword and keep it on a single line").
				WithIssue(issue.InvalidKeywordId).
				Wrap(errors.Join(errs...)).
				BuildError(),
		}
	}
	return kw, nil
}

// resolveExclude appends flag patterns to the configured ones and rejects
// malformed globs before any file is listed.
func resolveExclude(flagPatterns []string, cfg *config.Config) ([]string, error) {
	patterns := append(append([]string{}, cfg.Search.Exclude...), flagPatterns...)
	if err := enumerate.ValidatePatterns(patterns); err != nil {
		return nil, &ExitError{
			Code: types.ExitUsage,
			Err: issue.NewErrorContext().
				WithOperation("parse exclude patterns").
				WithSuggestion("Patterns use doublestar syntax, e.g. '**/*.log' or 'vendor/**'").
				Wrap(err).
				BuildError(),
		}
	}
	return patterns, nil
}

func searchFailed(root string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return issue.NewErrorContext().
		WithOperation("search").
		WithResource(root).
		WithSuggestion("Check that the directory exists and is readable").
		WithIssue(issue.SearchRootUnreadableId).
		Wrap(err).
		BuildError()
}

func (a *App) newPrinter(s *session, mode coordinator.Mode, asJSON bool) *report.Printer {
	opts := report.Options{
		Format:  report.FormatText,
		Verbose: s.verbose,
	}
	if asJSON {
		opts.Format = report.FormatJSON
	}
	if s.loaded.Config.UI.ColorScheme != config.ColorSchemeNone {
		opts.Title = TitleStyle.Render
	}
	return report.NewPrinter(a.stdout, mode, opts)
}
