// Package grid indexes the schedules of one section by (day, start time),
// merging persisted rows with the uncommitted state of an edit session.
package grid

import (
	"cmp"
	"slices"

	"github.com/javiermolinar/horario/internal/timetable"
)

// Key addresses one grid cell.
type Key struct {
	Day   timetable.Weekday
	Start string // "HH:MM"
}

// Index is an immutable lookup of schedules per cell. Build a new one
// instead of changing an existing one.
type Index struct {
	cells map[Key][]timetable.Schedule
	byDay [7][]timetable.Schedule
	byRef map[string]timetable.Schedule
	all   []timetable.Schedule
}

// Empty returns an index with no schedules.
func Empty() *Index {
	return Build(nil, nil, nil)
}

// Build merges persisted rows, session temp schedules and the pending
// changes. Rows are deduplicated by Ref; a pending create contributes its
// schedule when it is not already in temp. Refs with a delete change are
// dropped and refs with an update change take the updated shape, which
// places them at their new cell.
func Build(persisted, temp []timetable.Schedule, pending []timetable.ScheduleChange) *Index {
	merged := make(map[string]timetable.Schedule, len(persisted)+len(temp))
	var order []string
	put := func(s timetable.Schedule) {
		ref := s.Ref()
		if _, ok := merged[ref]; !ok {
			order = append(order, ref)
		}
		merged[ref] = s
	}

	for _, s := range persisted {
		put(s)
	}
	for _, s := range temp {
		put(s)
	}
	for _, c := range pending {
		if c.Action == timetable.ActionCreate {
			put(c.Schedule)
		}
	}

	for _, c := range pending {
		ref := c.Schedule.Ref()
		switch c.Action {
		case timetable.ActionDelete:
			delete(merged, ref)
		case timetable.ActionUpdate:
			if _, ok := merged[ref]; ok {
				merged[ref] = c.Schedule
			}
		}
	}

	idx := &Index{
		cells: make(map[Key][]timetable.Schedule),
		byRef: make(map[string]timetable.Schedule, len(merged)),
	}
	for _, ref := range order {
		s, ok := merged[ref]
		if !ok {
			continue
		}
		idx.byRef[ref] = s
		idx.all = append(idx.all, s)
	}
	slices.SortStableFunc(idx.all, compareSchedules)

	for _, s := range idx.all {
		k := Key{Day: s.DayOfWeek, Start: s.StartTime}
		idx.cells[k] = append(idx.cells[k], s)
		if s.DayOfWeek.Valid() {
			idx.byDay[s.DayOfWeek-1] = append(idx.byDay[s.DayOfWeek-1], s)
		}
	}
	return idx
}

func compareSchedules(a, b timetable.Schedule) int {
	if c := cmp.Compare(a.DayOfWeek, b.DayOfWeek); c != 0 {
		return c
	}
	return cmp.Compare(a.StartTime, b.StartTime)
}

// At returns the schedules keyed exactly at (day, start).
func (idx *Index) At(day timetable.Weekday, start string) []timetable.Schedule {
	return slices.Clone(idx.cells[Key{Day: day, Start: start}])
}

// CellsFor returns the schedules of day that occupy any part of slot. Rows
// aligned to the slot are found by key; rows left over from an older slot
// layout are found by overlap.
func (idx *Index) CellsFor(day timetable.Weekday, slot timetable.TimeSlot) []timetable.Schedule {
	if !day.Valid() {
		return nil
	}
	var out []timetable.Schedule
	for _, s := range idx.byDay[day-1] {
		if s.StartTime == slot.Start || timetable.TimesOverlap(s.StartTime, s.EndTime, slot.Start, slot.End) {
			out = append(out, s)
		}
	}
	return out
}

// Day returns the schedules of day ordered by start time.
func (idx *Index) Day(day timetable.Weekday) []timetable.Schedule {
	if !day.Valid() {
		return nil
	}
	return slices.Clone(idx.byDay[day-1])
}

// Find returns the schedule with the given ref.
func (idx *Index) Find(ref string) (timetable.Schedule, bool) {
	s, ok := idx.byRef[ref]
	return s, ok
}

// ForAssignment returns every placement of a course assignment.
func (idx *Index) ForAssignment(assignmentID int64) []timetable.Schedule {
	var out []timetable.Schedule
	for _, s := range idx.all {
		if s.CourseAssignmentID == assignmentID {
			out = append(out, s)
		}
	}
	return out
}

// All returns every schedule ordered by day and start time.
func (idx *Index) All() []timetable.Schedule {
	return slices.Clone(idx.all)
}

// Len returns the number of schedules in the index.
func (idx *Index) Len() int {
	return len(idx.all)
}

// IntegrityIssue is a cell holding more than one schedule.
type IntegrityIssue struct {
	Key       Key
	Schedules []timetable.Schedule
}

// Integrity reports every cell that holds more than one schedule. The index
// never resolves such cells itself.
func (idx *Index) Integrity() []IntegrityIssue {
	var issues []IntegrityIssue
	for k, list := range idx.cells {
		if len(list) > 1 {
			issues = append(issues, IntegrityIssue{Key: k, Schedules: slices.Clone(list)})
		}
	}
	slices.SortFunc(issues, func(a, b IntegrityIssue) int {
		if c := cmp.Compare(a.Key.Day, b.Key.Day); c != 0 {
			return c
		}
		return cmp.Compare(a.Key.Start, b.Key.Start)
	})
	return issues
}
