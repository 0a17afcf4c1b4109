package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/phprefactor/pkg/config"
	"github.com/Sumatoshi-tech/phprefactor/pkg/version"
)

func newVersionCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format := app.opts.Format
			if format == "" {
				format = config.FormatText
			}

			info := version.Get()

			switch format {
			case config.FormatText:
				fmt.Fprintln(cmd.OutOrStdout(), info.String())

				return nil
			case config.FormatJSON, config.FormatYAML:
				return writeStructured(cmd.OutOrStdout(), format, info)
			default:
				return fmt.Errorf("%w: %q", config.ErrInvalidFormat, format)
			}
		},
	}
}
