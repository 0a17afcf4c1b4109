package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/phprefactor/pkg/config"
	"github.com/Sumatoshi-tech/phprefactor/pkg/observability"
	"github.com/Sumatoshi-tech/phprefactor/pkg/refactor"
)

// inspectReport is the structured form of the inspect output.
type inspectReport struct {
	File     string               `json:"file"               yaml:"file"`
	Scopes   []refactor.ScopeInfo `json:"scopes"             yaml:"scopes"`
	Resolved *int                 `json:"resolved,omitempty" yaml:"resolved,omitempty"`
}

func newInspectCommand(app *App) *cobra.Command {
	var line uint

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "List the variable scopes of a file",
		Long: `List the top-level scope and every function, method, closure and arrow
function with its line span and the variables that belong to it. With
--line, the scope a refactoring at that line would operate on is marked.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runInspect(cmd, args[0], line)
		},
	}

	cmd.Flags().UintVarP(&line, "line", "l", 0, "mark the scope enclosing this line")

	return cmd
}

func (app *App) runInspect(cmd *cobra.Command, file string, line uint) error {
	if err := app.setup(observability.ModeCLI, ""); err != nil {
		return err
	}

	defer app.close()

	tree, err := app.engine.Parse(cmd.Context(), file, nil)
	if err != nil {
		return err
	}

	report := inspectReport{File: file, Scopes: refactor.DescribeScopes(tree)}

	if line > 0 {
		scope := refactor.FindScope(tree.Root, line)

		for idx, info := range report.Scopes {
			if info.Node == scope {
				report.Resolved = &idx

				break
			}
		}
	}

	out := cmd.OutOrStdout()

	if format := app.format(); format != config.FormatText {
		return writeStructured(out, format, report)
	}

	renderScopes(out, app.palette(), report)

	return nil
}

func renderScopes(w io.Writer, p palette, report inspectReport) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.SetTitle(report.File)
	tw.AppendHeader(table.Row{"", "Scope", "Name", "Lines", "Depth", "Variables"})

	for idx, info := range report.Scopes {
		marker := ""
		if report.Resolved != nil && *report.Resolved == idx {
			marker = p.ok.Sprint("→")
		}

		variables := make([]string, len(info.Variables))
		for i, name := range info.Variables {
			variables[i] = "$" + name
		}

		tw.AppendRow(table.Row{
			marker,
			strings.Repeat("  ", info.Depth) + info.Kind,
			info.Name,
			fmt.Sprintf("%d-%d", info.StartLine, info.EndLine),
			info.Depth,
			strings.Join(variables, ", "),
		})
	}

	tw.Render()
}
