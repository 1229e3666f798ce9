package ui

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/horario/internal/llm"
	"github.com/javiermolinar/horario/internal/summary"
)

func (a *App) summaryCmd() *cobra.Command {
	var (
		insight   bool
		modelFlag string
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the weekly load of a section",
		Long: `Show how much of each course's weekly target is placed, per course and per
teacher, and how many class slots are still free.

With --insight an LLM reviews the load and suggests what to place next.

Examples:
  horario -s "3rd A" summary
  horario -s "3rd A" summary --insight`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			sec, err := a.currentSection(ctx)
			if err != nil {
				return err
			}

			opts := summary.BuildOptions{
				SectionName:    sec.Name,
				Fallback:       a.sectionDefaults(sec.ID),
				IncludeInsight: insight,
				Logger:         a.log,
			}
			if insight {
				client, err := a.llmClient(modelFlag)
				if err != nil {
					return err
				}
				opts.Client = client
			}

			out := cmd.OutOrStdout()
			if insight {
				fmt.Fprintln(out, formatMuted("Reviewing load..."))
			}
			sum, err := summary.Build(ctx, a.repo, sec.ID, opts)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "%s  %s\n\n", formatHeader(sec.Name), formatMuted(fmt.Sprintf("%d min classes", sum.ClassDuration)))
			printLoad(out, sum)

			if short := sum.Short(); len(short) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, formatHeader("Still to place"))
				for _, l := range short {
					slots := (l.Missing() + sum.ClassDuration - 1) / sum.ClassDuration
					fmt.Fprintf(out, "  %s %s (about %d class(es))\n", pad(l.Assignment.CourseName, 18), FormatDuration(l.Missing()), slots)
				}
			}

			if sum.Insight != "" {
				fmt.Fprintln(out)
				printInsight(out, sum.Insight, min(termWidth(), 100))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&insight, "insight", false, "Ask the LLM to review the load")
	cmd.Flags().StringVar(&modelFlag, "model", "", "LLM model to use (from config if not set)")
	return cmd
}

// llmClient builds the configured client, with model overriding the config.
func (a *App) llmClient(model string) (llm.Client, error) {
	if model == "" {
		model = a.config.LLM.Model
	}
	client, err := llm.NewClient(a.config.LLM.Provider, model, a.config.LLM.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("creating LLM client: %w", err)
	}
	return client, nil
}
