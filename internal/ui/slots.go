package ui

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/horario/internal/timetable"
)

func (a *App) slotsCmd() *cobra.Command {
	var dayFlag string

	cmd := &cobra.Command{
		Use:   "slots",
		Short: "List the generated time slots of a section",
		Long: `List the time slots generated from the section's configuration, with
breaks and what each class slot currently holds.

Examples:
  horario -s "3rd A" slots
  horario -s "3rd A" slots --day wed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sec, s, err := a.loadSession(cmd.Context())
			if err != nil {
				return err
			}
			sched := s.Scheduler()
			if err := sched.Err(); err != nil {
				return err
			}

			days := sched.Config().WorkingDays
			if dayFlag != "" {
				day, err := timetable.ParseWeekday(dayFlag)
				if err != nil {
					return err
				}
				days = []timetable.Weekday{day}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatHeader(sec.Name))
			for _, day := range days {
				fmt.Fprintf(out, "\n%s\n", formatHeader(day.String()))
				slots := sched.Slots(day)
				if len(slots) == 0 {
					fmt.Fprintln(out, formatMuted("  not a working day"))
					continue
				}
				for _, slot := range slots {
					if slot.IsBreak {
						fmt.Fprintf(out, "  %s  %s\n", slot, formatBreak(slot.Label))
						continue
					}
					fmt.Fprintf(out, "  %s  %s\n", slot, cellText(s, s.Index().CellsFor(day, slot), 24, colored))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dayFlag, "day", "d", "", "Only list this day")
	return cmd
}
