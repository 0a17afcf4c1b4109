package commands

import (
	"context"
	"fmt"
	"net"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/phprefactor/pkg/lsp"
	"github.com/Sumatoshi-tech/phprefactor/pkg/mcp"
	"github.com/Sumatoshi-tech/phprefactor/pkg/observability"
	"github.com/Sumatoshi-tech/phprefactor/pkg/version"
)

func newMCPCommand(app *App) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the refactorings as MCP tools over stdio",
		Long: `Start a Model Context Protocol server on stdin/stdout exposing the
rename_variable, extract_variable and extract_method tools.

Logs are written to stderr as JSON. With --metrics-addr, Prometheus metrics
and a health check are served on /metrics and /healthz.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.setup(observability.ModeMCP, metricsAddr); err != nil {
				return err
			}

			defer app.close()

			srv := mcp.NewServer(mcp.ServerDeps{
				Engine:  app.engine,
				Logger:  app.providers.Logger,
				Metrics: app.metrics.REDMetrics,
				Tracer:  app.providers.Tracer,
				Version: version.Get().Version,
			})

			return app.serve(cmd.Context(), srv.Run)
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve /metrics and /healthz on this address (e.g. :9464)")

	return cmd
}

func newLSPCommand(app *App) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Serve the refactorings as a language server over stdio",
		Long: `Start a Language Server Protocol server on stdin/stdout offering rename,
prepare-rename and extract code actions for PHP documents.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.setup(observability.ModeLSP, metricsAddr); err != nil {
				return err
			}

			defer app.close()

			srv := lsp.NewServer(app.engine, app.providers.Logger, version.Get().Version)

			return app.serve(cmd.Context(), func(context.Context) error { return srv.Run() })
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve /metrics and /healthz on this address (e.g. :9464)")

	return cmd
}

// serve runs a stdio server until it returns or a signal arrives, alongside
// the metrics endpoint when one is configured.
func (app *App) serve(parent context.Context, run func(context.Context) error) error {
	if parent == nil {
		parent = context.Background()
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()

		return run(ctx)
	})

	if addr := app.cfg.Metrics.Addr; addr != "" && app.providers.MetricsHandler != nil {
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			cancel()

			return fmt.Errorf("listen on %s: %w", addr, err)
		}

		g.Go(func() error {
			return observability.ServeMetrics(ctx, listener, app.providers.Tracer,
				app.metrics.REDMetrics, app.providers.MetricsHandler, app.providers.Logger)
		})
	}

	return g.Wait()
}
