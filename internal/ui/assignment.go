package ui

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/horario/internal/timetable"
)

func (a *App) assignmentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "assignment",
		Aliases: []string{"course"},
		Short:   "Manage the course assignments of a section",
	}
	cmd.AddCommand(a.assignmentAddCmd(), a.assignmentListCmd())
	return cmd
}

func (a *App) assignmentAddCmd() *cobra.Command {
	var (
		teacher string
		minutes int
	)

	cmd := &cobra.Command{
		Use:   "add COURSE",
		Short: "Assign a course and teacher to a section",
		Long: `Assign a course taught by a teacher to the section.

Teachers are registered by name on first use. --minutes sets the weekly
target the summary and autofill work towards.

Example:
  horario -s "3rd A" assignment add Math --teacher "Ana Ruiz" --minutes 180`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sec, err := a.currentSection(ctx)
			if err != nil {
				return err
			}

			course := strings.TrimSpace(strings.Join(args, " "))
			teacher = strings.TrimSpace(teacher)
			if course == "" || teacher == "" {
				return fmt.Errorf("course and --teacher are required: %w", timetable.ErrEmptyName)
			}
			if minutes < 0 {
				return fmt.Errorf("--minutes must not be negative")
			}

			asg := &timetable.CourseAssignment{
				SectionID:     sec.ID,
				TeacherName:   teacher,
				CourseName:    course,
				WeeklyMinutes: minutes,
			}
			if err := a.repo.CreateAssignment(ctx, asg); err != nil {
				return fmt.Errorf("creating assignment: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Assigned %s (%s) to %s as #%d\n", asg.CourseName, asg.TeacherName, sec.Name, asg.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&teacher, "teacher", "t", "", "Teacher name (required)")
	cmd.Flags().IntVarP(&minutes, "minutes", "m", 0, "Weekly target in minutes (0 = not tracked)")
	_ = cmd.MarkFlagRequired("teacher")

	return cmd
}

func (a *App) assignmentListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the course assignments of a section",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			sec, err := a.currentSection(ctx)
			if err != nil {
				return err
			}
			list, err := a.repo.ListAssignments(ctx, sec.ID)
			if err != nil {
				return fmt.Errorf("listing assignments: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatHeader(sec.Name))
			if len(list) == 0 {
				fmt.Fprintln(out, formatMuted("  no course assignments"))
				return nil
			}
			for _, asg := range list {
				target := formatMuted("untracked")
				if asg.WeeklyMinutes > 0 {
					target = FormatDuration(asg.WeeklyMinutes) + "/week"
				}
				fmt.Fprintf(out, "  %s %s %s %s\n",
					pad(fmt.Sprintf("#%d", asg.ID), 5), pad(asg.CourseName, 18), pad(asg.TeacherName, 18), target)
			}
			return nil
		},
	}
}
