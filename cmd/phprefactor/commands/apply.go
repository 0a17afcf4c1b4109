package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/phprefactor/pkg/config"
	"github.com/Sumatoshi-tech/phprefactor/pkg/observability"
	"github.com/Sumatoshi-tech/phprefactor/pkg/plan"
	"github.com/Sumatoshi-tech/phprefactor/pkg/refactor"
)

func newApplyCommand(app *App) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "apply PLAN",
		Short: "Run a batch plan of refactorings",
		Long: `Run the operations listed in a YAML or JSON plan file.

Operations on the same file run in order on the evolving source; different
files run in parallel. A failing operation skips the rest of its file.
Nothing is written unless --write is given, and then only files whose
operations all succeeded.`,
		Example: `  phprefactor apply refactor-plan.yaml --diff
  phprefactor apply refactor-plan.yaml --write`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runApply(cmd, args[0], workers)
		},
	}

	cmd.Flags().IntVarP(&workers, "jobs", "j", 0, "files processed in parallel (default: number of CPUs)")

	return cmd
}

func (app *App) runApply(cmd *cobra.Command, path string, workers int) error {
	if err := app.setup(observability.ModeCLI, ""); err != nil {
		return err
	}

	defer app.close()

	p, err := plan.Load(path)
	if err != nil {
		return err
	}

	results, err := plan.NewRunner(app.engine, workers).Apply(cmd.Context(), p)
	if err != nil {
		return err
	}

	failed := 0

	for _, result := range results {
		if !result.Success {
			failed++

			continue
		}

		if app.opts.Write && result.Changes > 0 {
			if err := refactor.WriteSource(result.File, []byte(result.Code)); err != nil {
				return fmt.Errorf("write %s: %w", result.File, err)
			}
		}
	}

	out := cmd.OutOrStdout()

	if format := app.format(); format != config.FormatText {
		if err := writeStructured(out, format, results); err != nil {
			return err
		}
	} else {
		if app.opts.Diff {
			for _, result := range results {
				if result.Success {
					fmt.Fprint(out, unifiedDiff(app.palette(), result.File, string(result.Original), result.Code))
				}
			}
		}

		if !app.opts.Quiet {
			renderApplySummary(out, app.palette(), results)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d file(s) failed", ErrRefactorFailed, failed, len(results))
	}

	return nil
}

func renderApplySummary(w io.Writer, p palette, results []plan.FileResult) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"File", "Operations", "Changes", "Size", "Status"})

	totalChanges := 0

	for _, result := range results {
		status := p.ok.Sprint("ok")
		if !result.Success {
			status = p.failed.Sprint("failed: " + result.Error)
		}

		totalChanges += result.Changes

		tw.AppendRow(table.Row{
			result.File,
			strconv.Itoa(len(result.Steps)),
			result.Changes,
			humanize.Bytes(uint64(len(result.Code))),
			status,
		})
	}

	tw.AppendFooter(table.Row{"Total", strconv.Itoa(len(results)) + " file(s)", totalChanges, "", ""})
	tw.Render()
}
