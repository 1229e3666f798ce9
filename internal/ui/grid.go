package ui

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

func (a *App) gridCmd() *cobra.Command {
	var (
		noColor bool
		copyOut bool
		width   int
	)

	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Print the weekly timetable of a section",
		Long: `Print the section's week as a grid: time slots down, working days across.
Break rows span the whole week.

Examples:
  horario -s "3rd A" grid
  horario -s "3rd A" grid --copy`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sec, s, err := a.loadSession(cmd.Context())
			if err != nil {
				return err
			}
			if err := s.Scheduler().Err(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n\n", formatHeader(sec.Name))
			fmt.Fprint(out, renderGrid(s, gridOptions{CellWidth: width, Plain: noColor}))

			if copyOut {
				plain := sec.Name + "\n\n" + renderGrid(s, gridOptions{CellWidth: width, Plain: true})
				if err := clipboard.WriteAll(plain); err != nil {
					return fmt.Errorf("copying to clipboard: %w", err)
				}
				fmt.Fprintln(out, formatMuted("\nCopied to clipboard."))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noColor, "no-color", false, "Print without colors")
	cmd.Flags().BoolVar(&copyOut, "copy", false, "Also copy the grid to the clipboard as plain text")
	cmd.Flags().IntVar(&width, "width", 0, "Cell width (default: fit the terminal)")
	return cmd
}
