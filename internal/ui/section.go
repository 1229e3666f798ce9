package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/horario/internal/timetable"
)

func (a *App) sectionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "section",
		Short: "Manage sections",
	}
	cmd.AddCommand(a.sectionAddCmd(), a.sectionListCmd())
	return cmd
}

func (a *App) sectionAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME",
		Short: "Create a section",
		Long: `Create a section (a class group such as "3rd A").

The section starts with the default week from the [schedule] config until
it is set up with "horario setup".

Example:
  horario section add "3rd A"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			name := strings.TrimSpace(strings.Join(args, " "))
			if name == "" {
				return timetable.ErrEmptyName
			}

			ctx := cmd.Context()
			if existing, err := a.repo.FindSection(ctx, name); err == nil {
				return fmt.Errorf("section %q already exists (id %d)", existing.Name, existing.ID)
			} else if !errors.Is(err, timetable.ErrSectionNotFound) {
				return err
			}

			sec := &timetable.Section{Name: name}
			if err := a.repo.CreateSection(ctx, sec); err != nil {
				return fmt.Errorf("creating section: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created section %q (id %d)\n", sec.Name, sec.ID)
			return nil
		},
	}
}

func (a *App) sectionListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List sections",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			sections, err := a.repo.ListSections(ctx)
			if err != nil {
				return fmt.Errorf("listing sections: %w", err)
			}
			if len(sections) == 0 {
				fmt.Fprintln(out, `No sections yet. Create one with "horario section add NAME".`)
				return nil
			}

			for _, sec := range sections {
				cfg, err := a.repo.GetConfig(ctx, sec.ID)
				if err != nil {
					return err
				}
				setup := formatMuted("default week")
				if cfg != nil {
					setup = fmt.Sprintf("%s-%s, %d min classes, %d day(s)",
						cfg.StartTime, cfg.EndTime, cfg.ClassDuration, len(cfg.WorkingDays))
				}
				fmt.Fprintf(out, "  %s %s %s\n", pad(fmt.Sprintf("%d", sec.ID), 4), pad(sec.Name, 20), setup)
			}
			return nil
		},
	}
}
