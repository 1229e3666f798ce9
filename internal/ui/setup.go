package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/javiermolinar/horario/internal/scheduler"
	"github.com/javiermolinar/horario/internal/timetable"
)

// presets are ready-made school shifts.
var presets = map[string]func(sectionID int64) *timetable.ScheduleConfig{
	"morning": timetable.DefaultScheduleConfig,
	"afternoon": func(sectionID int64) *timetable.ScheduleConfig {
		days := []timetable.Weekday{timetable.Monday, timetable.Tuesday, timetable.Wednesday, timetable.Thursday, timetable.Friday}
		recess := []timetable.ScheduleSlot{{Start: "15:15", End: "15:30", Label: "RECREO", Type: timetable.SlotBreak}}
		return &timetable.ScheduleConfig{
			SectionID:     sectionID,
			WorkingDays:   days,
			StartTime:     "13:00",
			EndTime:       "19:00",
			ClassDuration: 45,
			BreakSlots:    timetable.InitializeForDays(days, recess),
		}
	},
}

type setupFlags struct {
	preset      string
	days        string
	start       string
	end         string
	duration    int
	breaks      []string
	copyFrom    string
	clearBreaks bool
}

func (a *App) setupCmd() *cobra.Command {
	var f setupFlags

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Configure the week of a section",
		Long: `Configure how a section's week is divided into class slots.

Without flags the current configuration is shown. Flags change only what
they name; the rest of the configuration is kept.

Breaks are given as "DAYS HH:MM-HH:MM [LABEL] [TYPE]" where DAYS is a day,
a list, a range or "all", and TYPE is one of break, lunch, activity, free,
class or custom. A class-type slot is labelled but still holds classes.

Examples:
  horario -s "3rd A" setup --preset afternoon
  horario -s "3rd A" setup --days mon-fri --start 08:00 --end 14:00 --duration 50
  horario -s "3rd A" setup --clear-breaks --break "all 10:30-11:00 RECREO"
  horario -s "3rd A" setup --break "wed 12:00-12:45 ASSEMBLY activity"
  horario -s "3rd A" setup --copy-breaks-from monday`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			sec, err := a.currentSection(ctx)
			if err != nil {
				return err
			}

			stored, err := a.repo.GetConfig(ctx, sec.ID)
			if err != nil {
				return err
			}
			cfg := stored
			if cfg == nil {
				cfg = a.sectionDefaults(sec.ID)
			}

			if !anyChanged(cmd, "preset", "days", "start", "end", "duration", "break", "copy-breaks-from", "clear-breaks") {
				if stored == nil {
					fmt.Fprintln(out, formatMuted("Not set up yet, showing the default week."))
				}
				printScheduleConfig(out, sec.Name, cfg)
				return nil
			}

			next, err := applySetup(cfg.Clone(), f, cmd.Flags().Changed)
			if err != nil {
				return err
			}
			next.SectionID = sec.ID

			if err := a.repo.SaveConfig(ctx, timetable.SaveConfigRequest{Config: *next}); err != nil {
				var cfgErr *timetable.ConfigurationError
				if errors.As(err, &cfgErr) {
					fmt.Fprintln(out, formatWarn("Configuration not saved:"))
					for _, p := range cfgErr.Problems {
						fmt.Fprintf(out, "  - %s\n", p)
					}
					return fmt.Errorf("invalid configuration for %s", sec.Name)
				}
				return fmt.Errorf("saving configuration: %w", err)
			}
			a.log.Info("section configured", zap.Int64("section", sec.ID), zap.Int("classDuration", next.ClassDuration))

			fmt.Fprintf(out, "Saved configuration for %s\n\n", sec.Name)
			printScheduleConfig(out, sec.Name, next)

			schedules, err := a.repo.ListSchedules(ctx, sec.ID)
			if err != nil {
				return err
			}
			if stale := misaligned(next, schedules); stale > 0 {
				fmt.Fprintf(out, "\n%s\n", formatWarn(fmt.Sprintf(
					"%d placement(s) no longer match a class slot; move or remove them in the editor", stale)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&f.preset, "preset", "", "Start from a preset: morning or afternoon")
	cmd.Flags().StringVar(&f.days, "days", "", `Working days, e.g. "mon-fri" or "mon,wed,fri"`)
	cmd.Flags().StringVar(&f.start, "start", "", "First class starts at (HH:MM)")
	cmd.Flags().StringVar(&f.end, "end", "", "Day ends at (HH:MM)")
	cmd.Flags().IntVar(&f.duration, "duration", 0, "Class length in minutes")
	cmd.Flags().StringArrayVar(&f.breaks, "break", nil, `Add a break: "DAYS HH:MM-HH:MM [LABEL] [TYPE]" (repeatable)`)
	cmd.Flags().StringVar(&f.copyFrom, "copy-breaks-from", "", "Copy one day's breaks to every working day")
	cmd.Flags().BoolVar(&f.clearBreaks, "clear-breaks", false, "Remove all breaks before adding new ones")

	return cmd
}

func anyChanged(cmd *cobra.Command, names ...string) bool {
	for _, name := range names {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

// applySetup applies the flags in a fixed order: preset, days and times,
// clear, copy, then added breaks.
func applySetup(cfg *timetable.ScheduleConfig, f setupFlags, changed func(string) bool) (*timetable.ScheduleConfig, error) {
	if changed("preset") {
		build, ok := presets[strings.ToLower(f.preset)]
		if !ok {
			return nil, fmt.Errorf("unknown preset %q (morning, afternoon)", f.preset)
		}
		cfg = build(cfg.SectionID)
	}
	if changed("days") {
		days, err := timetable.ParseWeekdays(f.days)
		if err != nil {
			return nil, err
		}
		cfg.WorkingDays = days
	}
	if changed("start") {
		cfg.StartTime = f.start
	}
	if changed("end") {
		cfg.EndTime = f.end
	}
	if changed("duration") {
		cfg.ClassDuration = f.duration
	}
	if f.clearBreaks {
		cfg.BreakSlots = timetable.DaySlots{}
	}
	if changed("copy-breaks-from") {
		day, err := timetable.ParseWeekday(f.copyFrom)
		if err != nil {
			return nil, err
		}
		cfg.BreakSlots = cfg.BreakSlots.ApplyTo(cfg.WorkingDays, cfg.BreakSlots.For(day))
	}
	for _, raw := range f.breaks {
		days, slot, err := parseBreak(raw, cfg.WorkingDays)
		if err != nil {
			return nil, err
		}
		for _, d := range days {
			cfg.BreakSlots = cfg.BreakSlots.With(d, append(cfg.BreakSlots.For(d), slot))
		}
	}
	return cfg, nil
}

// parseBreak reads "DAYS HH:MM-HH:MM [LABEL] [TYPE]". "all" stands for the
// working days.
func parseBreak(raw string, working []timetable.Weekday) ([]timetable.Weekday, timetable.ScheduleSlot, error) {
	fields := strings.Fields(raw)
	if len(fields) < 2 || len(fields) > 4 {
		return nil, timetable.ScheduleSlot{}, fmt.Errorf("break %q: want \"DAYS HH:MM-HH:MM [LABEL] [TYPE]\"", raw)
	}

	days := working
	if !strings.EqualFold(fields[0], "all") {
		parsed, err := timetable.ParseWeekdays(fields[0])
		if err != nil {
			return nil, timetable.ScheduleSlot{}, fmt.Errorf("break %q: %w", raw, err)
		}
		days = parsed
	}

	start, end, ok := strings.Cut(fields[1], "-")
	if !ok {
		return nil, timetable.ScheduleSlot{}, fmt.Errorf("break %q: interval must be HH:MM-HH:MM", raw)
	}
	for _, t := range []string{start, end} {
		if err := timetable.ValidateTimeFormat(t); err != nil {
			return nil, timetable.ScheduleSlot{}, fmt.Errorf("break %q: %w", raw, err)
		}
	}

	var typ timetable.SlotType
	var err error
	if len(fields) == 4 {
		typ, err = timetable.ParseSlotType(fields[3])
	} else {
		typ, err = timetable.ParseSlotType("")
	}
	if err != nil {
		return nil, timetable.ScheduleSlot{}, fmt.Errorf("break %q: %w", raw, err)
	}

	label := strings.ToUpper(string(typ))
	if len(fields) >= 3 {
		label = fields[2]
	}
	return days, timetable.ScheduleSlot{
		Start:   start,
		End:     end,
		Label:   label,
		Type:    typ,
		IsClass: typ == timetable.SlotClass,
	}, nil
}

// misaligned counts schedules that do not sit on a generated class slot.
func misaligned(cfg *timetable.ScheduleConfig, schedules []timetable.Schedule) int {
	sched := scheduler.New(cfg)
	n := 0
	for _, s := range schedules {
		slot, ok := sched.FindSlot(s.DayOfWeek, s.StartTime)
		if !ok || slot.IsBreak || slot.End != s.EndTime {
			n++
		}
	}
	return n
}

func printScheduleConfig(w io.Writer, name string, cfg *timetable.ScheduleConfig) {
	sched := scheduler.New(cfg)
	days := make([]string, 0, len(cfg.WorkingDays))
	for _, d := range cfg.WorkingDays {
		days = append(days, d.Short())
	}

	fmt.Fprintln(w, formatHeader(name))
	fmt.Fprintf(w, "  working days   %s\n", strings.Join(days, ", "))
	fmt.Fprintf(w, "  day            %s-%s\n", cfg.StartTime, cfg.EndTime)
	fmt.Fprintf(w, "  class length   %d min\n", cfg.ClassDuration)
	if err := sched.Err(); err != nil {
		fmt.Fprintf(w, "  %s\n", formatWarn(err.Error()))
	}

	for _, d := range cfg.WorkingDays {
		var breaks []string
		for _, b := range cfg.BreakSlots.For(d) {
			breaks = append(breaks, fmt.Sprintf("%s-%s %s", b.Start, b.End, b.Label))
		}
		line := formatMuted("no breaks")
		if len(breaks) > 0 {
			line = strings.Join(breaks, ", ")
		}
		fmt.Fprintf(w, "  %s  %2d classes  %s\n", pad(d.String(), 10), len(sched.ClassSlots(d)), line)
	}
}
