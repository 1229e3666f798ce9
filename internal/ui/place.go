package ui

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/javiermolinar/horario/internal/session"
	"github.com/javiermolinar/horario/internal/timetable"
)

func (a *App) placeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "place COURSE DAY START",
		Short: "Place a course into a class slot",
		Long: `Place a course assignment into the class slot of DAY starting at START.
COURSE is an assignment ID or a course name.

The slot must be a class slot of a working day and must be free.

Example:
  horario -s "3rd A" place Math monday 07:45`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, s, err := a.loadSession(ctx)
			if err != nil {
				return err
			}
			asg, err := findAssignment(s.Assignments(), args[0])
			if err != nil {
				return err
			}
			day, slot, err := resolveSlot(s, args[1], args[2])
			if err != nil {
				return err
			}
			if _, err := s.Drop(asg.ID, day, slot); err != nil {
				return err
			}
			if err := a.commit(ctx, cmd.OutOrStdout(), s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Placed %s on %s %s\n", asg.Label(), day, slot)
			return nil
		},
	}
}

func (a *App) moveCmd() *cobra.Command {
	var course string

	cmd := &cobra.Command{
		Use:   "move DAY START NEW_DAY NEW_START",
		Short: "Move a placed class to another slot",
		Long: `Move the class placed at DAY START to NEW_DAY NEW_START.

Example:
  horario -s "3rd A" move monday 07:45 thursday 10:15`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, s, err := a.loadSession(ctx)
			if err != nil {
				return err
			}
			from, err := placedAt(s, args[0], args[1], course)
			if err != nil {
				return err
			}
			day, slot, err := resolveSlot(s, args[2], args[3])
			if err != nil {
				return err
			}
			if _, err := s.Move(from.Ref(), day, slot); err != nil {
				return err
			}
			if err := a.commit(ctx, cmd.OutOrStdout(), s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s from %s %s to %s %s\n",
				scheduleLabel(s, from), from.DayOfWeek, from.Slot(), day, slot)
			return nil
		},
	}

	cmd.Flags().StringVar(&course, "course", "", "Pick the class by course when the slot holds several")
	return cmd
}

func (a *App) removeCmd() *cobra.Command {
	var course string

	cmd := &cobra.Command{
		Use:     "remove DAY START",
		Aliases: []string{"rm"},
		Short:   "Remove a placed class",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, s, err := a.loadSession(ctx)
			if err != nil {
				return err
			}
			target, err := placedAt(s, args[0], args[1], course)
			if err != nil {
				return err
			}
			if err := s.Remove(target.Ref()); err != nil {
				return err
			}
			if err := a.commit(ctx, cmd.OutOrStdout(), s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from %s %s\n", scheduleLabel(s, target), target.DayOfWeek, target.Slot())
			return nil
		},
	}

	cmd.Flags().StringVar(&course, "course", "", "Pick the class by course when the slot holds several")
	return cmd
}

// placedAt returns the schedule starting at (day, start), narrowed by course
// when the cell holds more than one.
func placedAt(s *session.Session, dayArg, start, course string) (timetable.Schedule, error) {
	day, err := timetable.ParseWeekday(dayArg)
	if err != nil {
		return timetable.Schedule{}, err
	}
	cells := s.Index().At(day, start)
	if course != "" {
		asg, err := findAssignment(s.Assignments(), course)
		if err != nil {
			return timetable.Schedule{}, err
		}
		var keep []timetable.Schedule
		for _, c := range cells {
			if c.CourseAssignmentID == asg.ID {
				keep = append(keep, c)
			}
		}
		cells = keep
	}
	switch len(cells) {
	case 0:
		return timetable.Schedule{}, fmt.Errorf("%w: nothing placed on %s at %s", timetable.ErrScheduleNotFound, day, start)
	case 1:
		return cells[0], nil
	default:
		return timetable.Schedule{}, fmt.Errorf("%d classes on %s at %s, pick one with --course", len(cells), day, start)
	}
}

func scheduleLabel(s *session.Session, sc timetable.Schedule) string {
	if a, ok := s.Assignment(sc.CourseAssignmentID); ok {
		return a.Label()
	}
	return fmt.Sprintf("assignment #%d", sc.CourseAssignmentID)
}

// commit saves the session ledger, reporting what is left on failure.
func (a *App) commit(ctx context.Context, w io.Writer, s *session.Session) error {
	if err := a.ensureRepo(); err != nil {
		return err
	}
	res, err := session.NewCommitter(a.repo, a.log).Commit(ctx, s)
	if err != nil {
		var cerr *session.CommitError
		if errors.As(err, &cerr) {
			fmt.Fprintf(w, "%s\n", formatWarn(fmt.Sprintf("%d change(s) were not saved", cerr.Pending)))
		}
		if errors.Is(err, timetable.ErrSlotTaken) {
			return fmt.Errorf("%w (another editor may have saved this slot)", err)
		}
		return err
	}
	if !res.Empty() {
		a.log.Debug("committed",
			zap.Int("deleted", res.Deleted), zap.Int("updated", res.Updated), zap.Int("created", len(res.Created)))
	}
	return nil
}
