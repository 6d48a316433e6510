// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ksearch/ksearch/internal/coordinator"
	"github.com/ksearch/ksearch/internal/enumerate"
	"github.com/ksearch/ksearch/internal/issue"
	"github.com/ksearch/ksearch/pkg/types"
)

func newScanCommand(app *App, s *session) *cobra.Command {
	var flags outputFlags

	cmd := &cobra.Command{
		Use:   "scan <rootDirectory> <keyword> [maxDepth]",
		Short: "Recursively search a directory tree with a single worker",
		Long: `Recursively search <rootDirectory> for <keyword>, one file at a time.

[maxDepth] limits how many directory levels below the root are visited:
0 searches only the root's own files and -1 removes the limit. When omitted
the scan.max_depth config key is used (unlimited by default).

The reported time covers both listing the tree and searching it. Flags must
come before <rootDirectory> so that a depth of -1 is not read as a flag.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 || len(args) > 3 {
				return usageError(cmd, "requires <rootDirectory> <keyword> [maxDepth]")
			}
			depth := s.loaded.Config.Scan.MaxDepth
			if len(args) == 3 {
				parsed, err := types.ParseMaxDepth(args[2])
				if err != nil {
					return &ExitError{
						Code: types.ExitUsage,
						Err: issue.NewErrorContext().
							WithOperation("parse max depth").
							WithResource(args[2]).
							WithSuggestion("Use -1 for unlimited depth or a non-negative integer").
							WithIssue(issue.InvalidMaxDepthId).
							Wrap(err).
							BuildError(),
					}
				}
				depth = parsed
			}
			return runScan(cmd, app, s, &flags, args[0], args[1], depth)
		},
	}

	addOutputFlags(cmd, &flags)
	cmd.Flags().SetInterspersed(false)

	return cmd
}

func runScan(cmd *cobra.Command, app *App, s *session, flags *outputFlags, root, keyword string, depth types.MaxDepth) error {
	cfg := s.loaded.Config

	kw, err := validateKeyword(keyword)
	if err != nil {
		return err
	}
	exclude, err := resolveExclude(flags.exclude, cfg)
	if err != nil {
		return err
	}

	req := coordinator.SequentialRequest{
		Root:    types.SearchRoot(root),
		Keyword: kw,
		Enumerate: enumerate.Options{
			MaxDepth: depth,
			Exclude:  exclude,
			Logger:   s.logger,
		},
	}
	s.logger.Debug("starting scan", "root", root, "max_depth", int(depth))

	once := func(ctx context.Context) error {
		printer := app.newPrinter(s, coordinator.ModeSequential, flags.json)
		c := app.coordinator(s, cfg, flags.htmlText, printer)
		rep, err := c.RunSequential(ctx, req)
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
		maxDepth: depth,
		exclude:  exclude,
		debounce: cfg.Watch.Debounce,
		header:   !flags.json,
		run:      once,
	})
}
