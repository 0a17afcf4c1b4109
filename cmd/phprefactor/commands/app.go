// Package commands implements the phprefactor subcommands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/phprefactor/pkg/config"
	"github.com/Sumatoshi-tech/phprefactor/pkg/observability"
	"github.com/Sumatoshi-tech/phprefactor/pkg/refactor"
	"github.com/Sumatoshi-tech/phprefactor/pkg/version"
)

// ErrRefactorFailed is returned when a refactoring did not apply.
var ErrRefactorFailed = errors.New("refactoring failed")

// Options are the persistent flags shared by every subcommand.
type Options struct {
	ConfigPath string
	Format     string
	Verbose    bool
	Quiet      bool
	Write      bool
	Diff       bool
}

// App holds the state a subcommand builds once per invocation.
type App struct {
	stderr    io.Writer
	cfg       *config.Config
	engine    *refactor.Engine
	metrics   *observability.RefactorMetrics
	providers observability.Providers
	opts      Options
}

// NewRootCommand creates the phprefactor root command with all subcommands.
func NewRootCommand() *cobra.Command {
	return newRootCommand(os.Stdout, os.Stderr)
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	app := &App{stderr: stderr}

	rootCmd := &cobra.Command{
		Use:   "phprefactor",
		Short: "Scope-aware refactoring for PHP source files",
		Long: `phprefactor rewrites PHP source with scope-aware refactorings.

Commands:
  rename            Rename a variable within its enclosing scope
  extract-variable  Extract an expression into a new variable
  extract-method    Extract statements into a new function or method
  apply             Run a batch plan of refactorings
  inspect           List the scopes of a file
  mcp               Serve the refactorings as MCP tools over stdio
  lsp               Serve the refactorings as a language server over stdio`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.opts.ConfigPath, "config", "", "config file (default: .phprefactor.yaml in ., $HOME, /etc/phprefactor)")
	flags.BoolVarP(&app.opts.Verbose, "verbose", "v", false, "verbose output")
	flags.BoolVarP(&app.opts.Quiet, "quiet", "q", false, "suppress output")
	flags.BoolVarP(&app.opts.Write, "write", "w", false, "write the result back to the file")
	flags.BoolVarP(&app.opts.Diff, "diff", "d", false, "print a unified diff instead of the full source")
	flags.StringVarP(&app.opts.Format, "format", "f", "", "output format: text, json or yaml (default from config)")

	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.AddCommand(
		newRenameCommand(app),
		newExtractVariableCommand(app),
		newExtractMethodCommand(app),
		newApplyCommand(app),
		newInspectCommand(app),
		newMCPCommand(app),
		newLSPCommand(app),
		newVersionCommand(app),
	)

	return rootCmd
}

// setup loads configuration and builds observability and the engine.
// metricsAddr, when set, overrides the configured metrics address.
func (app *App) setup(mode observability.AppMode, metricsAddr string) error {
	cfg, err := config.LoadConfig(app.opts.ConfigPath)
	if err != nil {
		return err
	}

	if app.opts.Format != "" {
		cfg.Output.Format = app.opts.Format
	}

	if metricsAddr != "" {
		cfg.Metrics.Addr = metricsAddr
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	obsCfg := cfg.ObservabilityConfig(mode, version.Get().Version)
	obsCfg.LogOutput = app.stderr

	switch {
	case app.opts.Verbose:
		obsCfg.LogLevel = slog.LevelDebug
	case app.opts.Quiet:
		obsCfg.LogLevel = slog.LevelError
	}

	if mode != observability.ModeCLI {
		obsCfg.LogJSON = true
	}

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	metrics, err := observability.NewRefactorMetrics(providers.Meter)
	if err != nil {
		return errors.Join(err, providers.Shutdown(context.Background()))
	}

	maxSize, err := cfg.MaxFileSizeBytes()
	if err != nil {
		return errors.Join(err, providers.Shutdown(context.Background()))
	}

	engine, err := refactor.NewEngine(
		refactor.WithLogger(providers.Logger),
		refactor.WithTracer(providers.Tracer),
		refactor.WithMetrics(metrics),
		refactor.WithMaxFileSize(maxSize),
	)
	if err != nil {
		return errors.Join(err, providers.Shutdown(context.Background()))
	}

	app.cfg = cfg
	app.providers = providers
	app.metrics = metrics
	app.engine = engine

	return nil
}

// close flushes telemetry. It is a no-op when setup never ran.
func (app *App) close() {
	if app.providers.Shutdown == nil {
		return
	}

	err := app.providers.Shutdown(context.Background())
	app.providers.Shutdown = nil

	if err != nil {
		app.providers.Logger.Warn("observability shutdown failed", "error", err)
	}
}

func (app *App) format() string {
	if app.cfg == nil {
		return config.FormatText
	}

	return app.cfg.Output.Format
}

func (app *App) palette() palette {
	if app.cfg == nil {
		return newPalette(config.ColorAuto)
	}

	return newPalette(app.cfg.Output.Color)
}
