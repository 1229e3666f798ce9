package timetable

import (
	"strconv"
	"strings"
)

// TempIDPrefix marks identifiers of schedules that exist only in an edit session.
const TempIDPrefix = "temp_"

// Section is the scheduled resource (a class group such as "3rd A").
type Section struct {
	ID   int64
	Name string
}

// CourseAssignment is the (teacher, course, section) triple that can be
// placed into a time slot.
type CourseAssignment struct {
	ID            int64
	SectionID     int64
	TeacherID     int64
	TeacherName   string
	CourseName    string
	WeeklyMinutes int // target weekly load, 0 when not tracked
}

// Label returns the name shown in grid cells.
func (a *CourseAssignment) Label() string {
	return a.CourseName
}

// Schedule is a timetable entry. Persisted rows have a positive ID; rows
// created during an edit session carry a TempID and IsPending instead.
type Schedule struct {
	ID                 int64
	TempID             string
	CourseAssignmentID int64
	SectionID          int64
	TeacherID          int64
	DayOfWeek          Weekday
	StartTime          string // "HH:MM"
	EndTime            string // "HH:MM"
	Classroom          string
	IsPending          bool
}

// Ref returns the identity of the schedule within an edit session.
func (s Schedule) Ref() string {
	if s.TempID != "" {
		return s.TempID
	}
	return strconv.FormatInt(s.ID, 10)
}

// IsTemp reports whether the schedule has not been persisted yet.
func (s Schedule) IsTemp() bool {
	return s.TempID != ""
}

// IsTempRef reports whether ref identifies a session-local schedule.
func IsTempRef(ref string) bool {
	return strings.HasPrefix(ref, TempIDPrefix)
}

// Slot returns the time slot the schedule occupies.
func (s Schedule) Slot() TimeSlot {
	return TimeSlot{Start: s.StartTime, End: s.EndTime}
}

// ChangeAction is the kind of a pending schedule change.
type ChangeAction string

const (
	ActionCreate ChangeAction = "create"
	ActionUpdate ChangeAction = "update"
	ActionDelete ChangeAction = "delete"
)

// ScheduleChange is one entry of an edit session ledger.
type ScheduleChange struct {
	Action   ChangeAction
	Schedule Schedule
}
