// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/ksearch/ksearch/internal/config"
	"github.com/ksearch/ksearch/internal/coordinator"
	"github.com/ksearch/ksearch/internal/issue"
	"github.com/ksearch/ksearch/internal/searcher"
	"github.com/ksearch/ksearch/internal/worker"
)

type (
	// App wires CLI services and shared dependencies. Every Cobra handler
	// receives an App and resolves its collaborators through it.
	App struct {
		Config config.Provider
		Clock  worker.Clock
		// Searcher overrides the LineCounter built from configuration.
		Searcher searcher.Searcher
		stdout   io.Writer
		stderr   io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config   config.Provider
		Clock    worker.Clock
		Searcher searcher.Searcher
		Stdout   io.Writer
		Stderr   io.Writer
	}

	// session is the state resolved once per invocation by the root
	// command's pre-run hook.
	session struct {
		verbose    bool
		configPath string
		loaded     config.Loaded
		logger     *log.Logger
	}
)

// NewApp creates an App, filling unset dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:   deps.Config,
		Clock:    deps.Clock,
		Searcher: deps.Searcher,
		stdout:   deps.Stdout,
		stderr:   deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.Clock == nil {
		app.Clock = worker.SystemClock{}
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

// loadConfig resolves configuration for the session. A broken config is
// reported as a warning and replaced by the defaults so that searches still
// run.
func (a *App) loadConfig(ctx context.Context, s *session) {
	loaded, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: s.configPath})
	if err != nil {
		fmt.Fprintln(a.stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, s.verbose))
		loaded = config.Loaded{Config: config.DefaultConfig()}
	}
	if loaded.Config == nil {
		loaded.Config = config.DefaultConfig()
	}
	s.loaded = loaded

	if !s.verbose {
		s.verbose = loaded.Config.UI.Verbose
	}
	s.logger = a.newLogger(s.verbose)
}

func (a *App) newLogger(verbose bool) *log.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(a.stderr, log.Options{
		Prefix: config.AppName,
		Level:  level,
	})
}

// searcher returns the injected Searcher or a LineCounter configured by cfg.
func (a *App) searcher(cfg *config.Config, htmlText bool) searcher.Searcher {
	if a.Searcher != nil {
		return a.Searcher
	}
	return searcher.LineCounter{HTMLText: htmlText || cfg.Search.HTMLText}
}

func (a *App) coordinator(s *session, cfg *config.Config, htmlText bool, obs coordinator.Observer) *coordinator.Coordinator {
	return &coordinator.Coordinator{
		Searcher: a.searcher(cfg, htmlText),
		Clock:    a.Clock,
		Logger:   s.logger,
		Observer: obs,
	}
}

// formatErrorForDisplay formats an error for user display. ActionableErrors
// use their own Format; verbose mode shows the full chain.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}

// renderIssue writes the catalogued explanation for err, if it has one.
func renderIssue(w io.Writer, err error, scheme config.ColorScheme) {
	var ae *issue.ActionableError
	if !errors.As(err, &ae) || ae.Issue == 0 {
		return
	}
	entry := issue.Get(ae.Issue)
	if entry == nil {
		return
	}
	rendered, renderErr := entry.Render(glamourStyle(scheme))
	if renderErr != nil {
		return
	}
	fmt.Fprint(w, rendered)
}

func glamourStyle(scheme config.ColorScheme) string {
	switch scheme {
	case config.ColorSchemeDark:
		return "dark"
	case config.ColorSchemeLight:
		return "light"
	case config.ColorSchemeNone:
		return "notty"
	default:
		return "auto"
	}
}
