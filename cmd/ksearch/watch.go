// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/ksearch/ksearch/internal/issue"
	"github.com/ksearch/ksearch/internal/watch"
	"github.com/ksearch/ksearch/pkg/types"
)

// watchTarget describes what --watch monitors and how it searches again.
type watchTarget struct {
	root     string
	maxDepth types.MaxDepth
	exclude  []string
	debounce time.Duration
	// header prints a separator before each re-run.
	header bool
	run    func(ctx context.Context) error
}

// watch blocks until ctx is cancelled, running t.run again after every
// debounced batch of changes under t.root.
func (a *App) watch(ctx context.Context, s *session, t watchTarget) error {
	w, err := watch.New(watch.Config{
		Root:     t.root,
		MaxDepth: t.maxDepth,
		Exclude:  t.exclude,
		Debounce: t.debounce,
		Logger:   s.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			s.logger.Debug("re-running search", "changed", changed)
			if t.header {
				fmt.Fprintln(a.stdout)
				fmt.Fprintln(a.stdout, SubtitleStyle.Render(
					fmt.Sprintf("--- %d file(s) changed, searching again ---", len(changed))))
			}
			return t.run(ctx)
		},
	})
	if err != nil {
		return watchFailed(t.root, err)
	}

	fmt.Fprintln(a.stderr, SubtitleStyle.Render("Watching "+t.root+" for changes (Ctrl+C to stop)"))
	if err := w.Run(ctx); err != nil {
		return watchFailed(t.root, err)
	}
	return nil
}

func watchFailed(root string, err error) error {
	return issue.NewErrorContext().
		WithOperation("watch").
		WithResource(root).
		WithSuggestion("Check that the directory exists and is readable").
		WithIssue(issue.WatchFailedId).
		Wrap(err).
		BuildError()
}
