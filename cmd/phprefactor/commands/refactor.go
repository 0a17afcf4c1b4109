package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/phprefactor/pkg/config"
	"github.com/Sumatoshi-tech/phprefactor/pkg/observability"
	"github.com/Sumatoshi-tech/phprefactor/pkg/refactor"
)

func newRenameCommand(app *App) *cobra.Command {
	var (
		line     uint
		from, to string
	)

	cmd := &cobra.Command{
		Use:   "rename FILE",
		Short: "Rename a variable within the scope enclosing a line",
		Example: `  phprefactor rename src/Cart.php --line 12 --from total --to sum
  phprefactor rename src/Cart.php --line 12 --from '$total' --to '$sum' --diff`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runRefactor(cmd, args[0], func(source []byte) refactor.Result {
				return app.engine.RenameVariable(cmd.Context(), refactor.RenameRequest{
					File: args[0], Source: source, Line: line, OldName: from, NewName: to,
				})
			})
		},
	}

	cmd.Flags().UintVarP(&line, "line", "l", 0, "line inside the scope to rename in (1-based)")
	cmd.Flags().StringVar(&from, "from", "", "current variable name, with or without $")
	cmd.Flags().StringVar(&to, "to", "", "new variable name, with or without $")

	for _, name := range []string{"line", "from", "to"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func newExtractVariableCommand(app *App) *cobra.Command {
	var rangeText, name string

	cmd := &cobra.Command{
		Use:   "extract-variable FILE",
		Short: "Extract the expression in a range into a new variable",
		Example: `  phprefactor extract-variable src/Cart.php --range 14 --name subtotal
  phprefactor extract-variable src/Cart.php --range 14:9-14:31 --name subtotal`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runRefactor(cmd, args[0], func(source []byte) refactor.Result {
				rng, err := refactor.ParseRange(rangeText)
				if err != nil {
					return refactor.Failure(args[0], refactor.OpExtractVariable, err)
				}

				return app.engine.ExtractVariable(cmd.Context(), refactor.ExtractVariableRequest{
					File: args[0], Source: source, Range: rng, Name: name,
				})
			})
		},
	}

	cmd.Flags().StringVarP(&rangeText, "range", "r", "", "selection as LINE[:COL][-LINE[:COL]]")
	cmd.Flags().StringVarP(&name, "name", "n", "", "name of the new variable")

	for _, flag := range []string{"range", "name"} {
		_ = cmd.MarkFlagRequired(flag)
	}

	return cmd
}

func newExtractMethodCommand(app *App) *cobra.Command {
	var (
		start, end uint
		name       string
	)

	cmd := &cobra.Command{
		Use:     "extract-method FILE",
		Short:   "Extract whole statements into a new function or method",
		Example: `  phprefactor extract-method src/Cart.php --start 20 --end 27 --name applyDiscounts`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runRefactor(cmd, args[0], func(source []byte) refactor.Result {
				return app.engine.ExtractMethod(cmd.Context(), refactor.ExtractMethodRequest{
					File: args[0], Source: source, StartLine: start, EndLine: end, Name: name,
				})
			})
		},
	}

	cmd.Flags().UintVar(&start, "start", 0, "first line of the selection")
	cmd.Flags().UintVar(&end, "end", 0, "last line of the selection")
	cmd.Flags().StringVarP(&name, "name", "n", "", "name of the new function")

	for _, flag := range []string{"start", "end", "name"} {
		_ = cmd.MarkFlagRequired(flag)
	}

	return cmd
}

// runRefactor reads file once, runs the operation and reports the result.
func (app *App) runRefactor(cmd *cobra.Command, file string, run func(source []byte) refactor.Result) error {
	if err := app.setup(observability.ModeCLI, ""); err != nil {
		return err
	}

	defer app.close()

	source, _, err := refactor.ReadSource(file)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}

	result := run(source)
	result.File = file

	return app.report(cmd, result, source)
}

// report prints a refactoring result and writes it back when requested.
func (app *App) report(cmd *cobra.Command, result refactor.Result, original []byte) error {
	out := cmd.OutOrStdout()
	format := app.format()

	if format != config.FormatText {
		if err := writeStructured(out, format, result); err != nil {
			return err
		}
	}

	if !result.Success {
		return fmt.Errorf("%w: %s", ErrRefactorFailed, result.Error)
	}

	if app.opts.Write {
		if err := refactor.WriteSource(result.File, []byte(result.Code)); err != nil {
			return fmt.Errorf("write %s: %w", result.File, err)
		}
	}

	if format != config.FormatText {
		return nil
	}

	p := app.palette()

	switch {
	case app.opts.Diff:
		fmt.Fprint(out, unifiedDiff(p, result.File, string(original), result.Code))
	case app.opts.Write:
		if !app.opts.Quiet {
			p.ok.Fprintf(out, "✓ %s: %d change(s) written\n", result.File, result.Changes)
		}
	default:
		fmt.Fprint(out, result.Code)
	}

	return nil
}
