package scheduler

import (
	"cmp"
	"slices"

	"github.com/javiermolinar/horario/internal/timetable"
)

// WeekSlots holds the generated slots of every weekday, indexed Monday first.
type WeekSlots [7][]timetable.TimeSlot

// For returns the slots of day, nil for an unknown day.
func (w WeekSlots) For(day timetable.Weekday) []timetable.TimeSlot {
	if !day.Valid() {
		return nil
	}
	return w[day-1]
}

// Scheduler answers slot questions for one section configuration.
type Scheduler struct {
	cfg  *timetable.ScheduleConfig
	week WeekSlots
	err  error
}

// New generates the week of cfg once. Invalid configurations fall back to
// the default slots; Err reports why.
func New(cfg *timetable.ScheduleConfig) *Scheduler {
	s := &Scheduler{cfg: cfg}
	s.err = checkBounds(cfg)
	for _, day := range cfg.WorkingDays {
		if !day.Valid() {
			continue
		}
		s.week[day-1] = GenerateOrDefault(cfg, day)
	}
	return s
}

// Week generates the slots of all working days of cfg.
func Week(cfg *timetable.ScheduleConfig) WeekSlots {
	return New(cfg).Week()
}

// Config returns the configuration the scheduler was built from.
func (s *Scheduler) Config() *timetable.ScheduleConfig {
	return s.cfg
}

// Err returns the configuration error that forced the default slots, if any.
func (s *Scheduler) Err() error {
	return s.err
}

// Week returns the generated slots of all days.
func (s *Scheduler) Week() WeekSlots {
	return s.week
}

// Slots returns the generated slots of day.
func (s *Scheduler) Slots(day timetable.Weekday) []timetable.TimeSlot {
	return s.week.For(day)
}

// IsWorkday reports whether day is a configured working day.
func (s *Scheduler) IsWorkday(day timetable.Weekday) bool {
	return s.cfg.IsWorkingDay(day)
}

// FindSlot returns the slot of day starting at start.
func (s *Scheduler) FindSlot(day timetable.Weekday, start string) (timetable.TimeSlot, bool) {
	for _, slot := range s.week.For(day) {
		if slot.Start == start {
			return slot, true
		}
	}
	return timetable.TimeSlot{}, false
}

// ClassSlots returns the bookable (non-break) slots of day.
func (s *Scheduler) ClassSlots(day timetable.Weekday) []timetable.TimeSlot {
	var out []timetable.TimeSlot
	for _, slot := range s.week.For(day) {
		if !slot.IsBreak {
			out = append(out, slot)
		}
	}
	return out
}

// ValidateTimeSlot checks that [start, end) is a generated class slot of day.
// Returns an error message if invalid, empty string if valid.
func (s *Scheduler) ValidateTimeSlot(day timetable.Weekday, start, end string) string {
	if !s.IsWorkday(day) {
		return "not a working day"
	}
	slot, ok := s.FindSlot(day, start)
	if !ok {
		return "no slot starts at " + start
	}
	if slot.End != end {
		return "slot " + slot.String() + " ends at " + slot.End
	}
	if slot.IsBreak {
		return "slot is a break (" + slot.Label + ")"
	}
	return ""
}

// AxisRow is one row of the shared weekly time axis. Cells hold the slot
// each day has at exactly these bounds; days without such a slot are not
// applicable for the row.
type AxisRow struct {
	Start string
	End   string
	cells [7]*timetable.TimeSlot
}

// Cell returns the slot of day in this row and whether the day has one.
func (r AxisRow) Cell(day timetable.Weekday) (timetable.TimeSlot, bool) {
	if !day.Valid() || r.cells[day-1] == nil {
		return timetable.TimeSlot{}, false
	}
	return *r.cells[day-1], true
}

// IsBreak reports whether every applicable cell in the row is a break.
func (r AxisRow) IsBreak() bool {
	found := false
	for _, c := range r.cells {
		if c == nil {
			continue
		}
		if !c.IsBreak {
			return false
		}
		found = true
	}
	return found
}

// Label returns the label of the first labelled cell.
func (r AxisRow) Label() string {
	for _, c := range r.cells {
		if c != nil && c.Label != "" {
			return c.Label
		}
	}
	return ""
}

// BuildAxis aligns the days of a week on one time axis: the rows are the
// distinct (start, end) intervals across all days ordered by start then end.
// A day only owns a cell in rows matching one of its own slots exactly, so
// days with different break timing never share a cell with different bounds.
func BuildAxis(week WeekSlots) []AxisRow {
	type key struct{ start, end string }
	index := make(map[key]int)
	var rows []AxisRow

	for d := range week {
		for i := range week[d] {
			slot := week[d][i]
			k := key{slot.Start, slot.End}
			pos, ok := index[k]
			if !ok {
				pos = len(rows)
				index[k] = pos
				rows = append(rows, AxisRow{Start: slot.Start, End: slot.End})
			}
			rows[pos].cells[d] = &slot
		}
	}

	slices.SortFunc(rows, func(a, b AxisRow) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.End, b.End)
	})
	return rows
}
