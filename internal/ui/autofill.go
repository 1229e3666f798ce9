package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/horario/internal/autofill"
	"github.com/javiermolinar/horario/internal/llm"
	"github.com/javiermolinar/horario/internal/session"
)

func (a *App) autofillCmd() *cobra.Command {
	var (
		modelFlag    string
		instructions string
		dryRun       bool
		yes          bool
		retries      int
	)

	cmd := &cobra.Command{
		Use:   "autofill",
		Short: "Let an LLM place the classes a section is missing",
		Long: `Ask the configured LLM to place the courses that are short of their weekly
minutes into free class slots.

Every proposed placement is checked against the grid like a manual one:
rejected placements are sent back to the model with the reason, a few times
at most, and nothing is saved until you accept.

Examples:
  horario -s "3rd A" autofill
  horario -s "3rd A" autofill --instructions "keep Fridays light"
  horario -s "3rd A" autofill --dry-run

Interactive mode:
  After the proposal is shown you can:
  - [a]ccept: Save the placements
  - [m]odify: Give the model more instructions and try again
  - [c]ancel: Exit without saving`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			sec, s, err := a.loadSession(ctx)
			if err != nil {
				return err
			}
			client, err := a.llmClient(modelFlag)
			if err != nil {
				return err
			}

			fill := func(extra string) (*autofill.Result, error) {
				f := autofill.New(client, autofill.Options{
					SectionName:  sec.Name,
					Instructions: extra,
					Compact:      llm.IsLocal(a.config.LLM.Provider),
					MaxRetries:   retries,
					Logger:       a.log,
				})
				fmt.Fprintln(out, formatMuted("Asking the model for placements..."))
				return f.Fill(ctx, s)
			}

			result, err := fill(instructions)
			if errors.Is(err, autofill.ErrNothingToFill) {
				fmt.Fprintln(out, "Nothing to fill: every course has its weekly minutes or no class slot is free.")
				return nil
			}
			if err != nil {
				return err
			}

			reader := bufio.NewReader(cmd.InOrStdin())
			for {
				displayFillResult(out, s, result)

				if dryRun {
					fmt.Fprintln(out, "\n(Dry run - placements not saved)")
					return nil
				}
				if len(result.Accepted) == 0 {
					fmt.Fprintln(out, "\nNo placement could be accepted.")
				}

				choice := "a"
				if !yes {
					fmt.Fprint(out, "\n[a]ccept / [m]odify / [c]ancel: ")
					line, err := reader.ReadString('\n')
					if err != nil && line == "" {
						return fmt.Errorf("reading input: %w", err)
					}
					choice = strings.TrimSpace(strings.ToLower(line))
				}

				switch choice {
				case "a", "accept":
					if len(result.Accepted) == 0 {
						return nil
					}
					if err := a.commit(ctx, out, s); err != nil {
						return fmt.Errorf("saving placements: %w", err)
					}
					fmt.Fprintf(out, "\n%d placement(s) saved\n", len(result.Accepted))
					return nil

				case "m", "modify":
					fmt.Fprint(out, "What would you like to change? ")
					line, err := reader.ReadString('\n')
					if err != nil && line == "" {
						return fmt.Errorf("reading input: %w", err)
					}
					extra := strings.TrimSpace(line)
					if extra == "" {
						fmt.Fprintln(out, "No instructions given, showing the current proposal...")
						continue
					}
					if err := s.Discard(); err != nil {
						return err
					}
					instructions = strings.TrimSpace(instructions + "\n" + extra)
					result, err = fill(instructions)
					if errors.Is(err, autofill.ErrNothingToFill) {
						fmt.Fprintln(out, "Nothing left to fill.")
						return nil
					}
					if err != nil {
						return err
					}

				case "c", "cancel":
					fmt.Fprintln(out, "Autofill cancelled.")
					return nil

				default:
					fmt.Fprintln(out, "Invalid choice. Please enter 'a', 'm', or 'c'.")
				}
			}
		},
	}

	cmd.Flags().StringVar(&modelFlag, "model", "", "LLM model to use (from config if not set)")
	cmd.Flags().StringVarP(&instructions, "instructions", "i", "", "Extra instructions for the model")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the proposal without saving")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Accept the proposal without asking")
	cmd.Flags().IntVar(&retries, "retries", autofill.DefaultMaxRetries, "Feedback rounds for rejected placements (negative disables)")

	return cmd
}

func displayFillResult(w io.Writer, s *session.Session, result *autofill.Result) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, formatHeader("Needed"))
	for _, n := range result.Needs {
		fmt.Fprintf(w, "  %s %s missing (about %d class(es))\n", pad(n.Course, 18), FormatDuration(n.MissingMinutes), n.MissingSlots)
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintln(w, "\nWarnings:")
		for _, warn := range result.Warnings {
			fmt.Fprintf(w, "  ! %s\n", warn)
		}
	}

	fmt.Fprintf(w, "\n%s %s\n", formatHeader("Proposed"), formatMuted(fmt.Sprintf("(%d attempt(s))", result.Attempts)))
	if len(result.Accepted) == 0 {
		fmt.Fprintln(w, formatMuted("  none"))
	}
	for _, p := range result.Accepted {
		fmt.Fprintf(w, "  %s %s %s\n", formatPending("+"), pad(p.Schedule.DayOfWeek.String(), 10), p.Schedule.Slot())
		fmt.Fprintf(w, "      %s\n", p.Course)
	}

	if result.HasRejections() {
		fmt.Fprintln(w, "\nRejected (retry limit reached):")
		for _, r := range result.Rejected {
			fmt.Fprintf(w, "  - %s\n", r)
		}
	}

	if len(result.Accepted) > 0 {
		fmt.Fprintln(w)
		fmt.Fprint(w, renderGrid(s, gridOptions{}))
	}
}
