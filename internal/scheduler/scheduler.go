// Package scheduler turns a section's schedule configuration into the
// bookable time slots of each working day.
package scheduler

import (
	"fmt"

	"github.com/javiermolinar/horario/internal/timetable"
)

// Generate carves the slots of one day out of cfg. Starting at the day start
// it emits classDuration-long class slots; a candidate that intersects a
// non-class override is replaced by a single break slot spanning the override
// and the cursor jumps to the override end. A trailing remainder shorter than
// a class is dropped.
//
// A day that is not a working day has no slots. Invalid day bounds or class
// duration yield a *timetable.ConfigurationError.
func Generate(cfg *timetable.ScheduleConfig, day timetable.Weekday) ([]timetable.TimeSlot, error) {
	if err := checkBounds(cfg); err != nil {
		return nil, err
	}
	if !cfg.IsWorkingDay(day) {
		return nil, nil
	}

	start := timetable.TimeToMinutes(cfg.StartTime)
	end := timetable.TimeToMinutes(cfg.EndTime)
	overrides := interrupting(cfg.BreakSlots.For(day))

	var slots []timetable.TimeSlot
	cursor := start
	for cursor < end {
		candidateEnd := min(cursor+cfg.ClassDuration, end)

		if o, ok := firstIntersecting(overrides, cursor, candidateEnd); ok {
			slots = append(slots, timetable.TimeSlot{
				Start:   timetable.MinutesToTime(max(o.start, cursor)),
				End:     timetable.MinutesToTime(min(o.end, end)),
				Label:   o.label,
				IsBreak: true,
			})
			cursor = o.end
			continue
		}

		if cursor+cfg.ClassDuration > end {
			break
		}
		slots = append(slots, timetable.TimeSlot{
			Start: timetable.MinutesToTime(cursor),
			End:   timetable.MinutesToTime(candidateEnd),
		})
		cursor = candidateEnd
	}
	return slots, nil
}

// GenerateOrDefault never fails: when cfg cannot be carved it returns the
// slots of the default hours, class length and recess on the working days of
// cfg so a grid can always be rendered.
func GenerateOrDefault(cfg *timetable.ScheduleConfig, day timetable.Weekday) []timetable.TimeSlot {
	slots, err := Generate(cfg, day)
	if err == nil {
		return slots
	}
	fallback, _ := Generate(fallbackConfig(cfg), day)
	return fallback
}

func fallbackConfig(cfg *timetable.ScheduleConfig) *timetable.ScheduleConfig {
	def := timetable.DefaultScheduleConfig(cfg.SectionID)
	days := timetable.NormalizeWeekdays(cfg.WorkingDays)
	if len(days) == 0 {
		return def
	}
	def.BreakSlots = timetable.InitializeForDays(days, def.BreakSlots.For(timetable.Monday))
	def.WorkingDays = days
	return def
}

func checkBounds(cfg *timetable.ScheduleConfig) error {
	var problems []timetable.Problem
	startOK := timetable.ValidateTimeFormat(cfg.StartTime) == nil
	endOK := timetable.ValidateTimeFormat(cfg.EndTime) == nil
	if !startOK {
		problems = append(problems, timetable.Problem{Field: "startTime", Message: fmt.Sprintf("%q must be in HH:MM format", cfg.StartTime)})
	}
	if !endOK {
		problems = append(problems, timetable.Problem{Field: "endTime", Message: fmt.Sprintf("%q must be in HH:MM format", cfg.EndTime)})
	}
	if startOK && endOK && cfg.StartTime >= cfg.EndTime {
		problems = append(problems, timetable.Problem{
			Field:   "startTime",
			Start:   cfg.StartTime,
			End:     cfg.EndTime,
			Message: "start time must be before end time",
		})
	}
	if cfg.ClassDuration <= 0 {
		problems = append(problems, timetable.Problem{
			Field:   "classDuration",
			Message: fmt.Sprintf("must be positive, got %d", cfg.ClassDuration),
		})
	}
	if len(problems) > 0 {
		return &timetable.ConfigurationError{Problems: problems}
	}
	return nil
}

// override is a non-class ScheduleSlot in minutes.
type override struct {
	start, end int
	label      string
}

// interrupting keeps the well-formed overrides that interrupt class carving.
// Slots come sorted by start from DaySlots.
func interrupting(slots []timetable.ScheduleSlot) []override {
	var out []override
	for _, s := range slots {
		if s.IsClass || s.Type == timetable.SlotClass {
			continue
		}
		if timetable.ValidateTimeFormat(s.Start) != nil || timetable.ValidateTimeFormat(s.End) != nil {
			continue
		}
		o := override{start: timetable.TimeToMinutes(s.Start), end: timetable.TimeToMinutes(s.End), label: s.Label}
		if o.start >= o.end {
			continue
		}
		out = append(out, o)
	}
	return out
}

func firstIntersecting(overrides []override, start, end int) (override, bool) {
	for _, o := range overrides {
		if o.start < end && start < o.end {
			return o, true
		}
	}
	return override{}, false
}
