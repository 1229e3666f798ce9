package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/horario/internal/autofill"
	"github.com/javiermolinar/horario/internal/llm"
	"github.com/javiermolinar/horario/internal/session"
	"github.com/javiermolinar/horario/internal/tui"
)

func (a *App) editCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Open the grid editor",
		Long: `Open the interactive timetable editor for a section.

Classes are picked from the assignment list and dropped into class slots;
placed classes can be moved or removed. Nothing is written until the changes
are saved with "s".

Example:
  horario -s "3rd A" edit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runEditor(cmd.Context())
		},
	}
}

// runEditor opens the TUI on --section, or on the only section when there
// is exactly one.
func (a *App) runEditor(ctx context.Context) error {
	if err := a.ensureRepo(); err != nil {
		return err
	}
	if strings.TrimSpace(a.section) == "" {
		sections, err := a.repo.ListSections(ctx)
		if err != nil {
			return err
		}
		switch len(sections) {
		case 0:
			return fmt.Errorf(`%w: create one with "horario section add NAME"`, session.ErrNoSection)
		case 1:
			a.section = fmt.Sprintf("%d", sections[0].ID)
		default:
			names := make([]string, 0, len(sections))
			for _, s := range sections {
				names = append(names, s.Name)
			}
			return fmt.Errorf("%w: pass --section, one of: %s", session.ErrNoSection, strings.Join(names, ", "))
		}
	}

	sec, s, err := a.loadSession(ctx)
	if err != nil {
		return err
	}
	return tui.Run(ctx, tui.Options{
		Store:       a.repo,
		Session:     s,
		SectionName: sec.Name,
		Theme:       a.config.UI.Theme,
		Logger:      a.log,
		NewFiller:   a.newFiller(sec.Name),
	})
}

// newFiller returns the editor's autofill constructor, or nil when no LLM
// provider is configured.
func (a *App) newFiller(section string) func(string) (*autofill.Filler, error) {
	if a.config.LLM.Provider == "" {
		return nil
	}
	return func(instructions string) (*autofill.Filler, error) {
		client, err := a.llmClient("")
		if err != nil {
			return nil, err
		}
		return autofill.New(client, autofill.Options{
			SectionName:  section,
			Instructions: instructions,
			Compact:      llm.IsLocal(a.config.LLM.Provider),
			Logger:       a.log,
		}), nil
	}
}
