package session

import (
	"fmt"

	"github.com/javiermolinar/horario/internal/grid"
	"github.com/javiermolinar/horario/internal/scheduler"
	"github.com/javiermolinar/horario/internal/timetable"
)

// Rules is the reference data placements are checked against.
type Rules struct {
	SectionID   int64
	Scheduler   *scheduler.Scheduler // nil skips the slot checks
	Assignments map[int64]*timetable.CourseAssignment
}

// CheckDrop validates placing an assignment into (day, slot) of idx. Rules
// are checked in order and the first failure is returned:
//
//  1. the assignment must be known;
//  2. a section must be selected (ErrNoSection, callers treat it as a no-op);
//  3. the day must be a working day and slot one of its class slots;
//  4. the slot must not be occupied by another assignment;
//  5. the assignment must not already sit at (day, slot.Start).
//
// On success the resolved assignment is returned.
func CheckDrop(r Rules, assignmentID int64, day timetable.Weekday, slot timetable.TimeSlot, idx *grid.Index) (*timetable.CourseAssignment, error) {
	a, ok := r.Assignments[assignmentID]
	if !ok || a == nil {
		return nil, &ConflictError{Code: AssignmentNotFound, Reason: "assignment not found"}
	}
	if r.SectionID == 0 {
		return nil, ErrNoSection
	}
	if err := r.checkSlot(day, slot); err != nil {
		return nil, err
	}
	if err := r.checkOccupancy(assignmentID, day, slot, idx, ""); err != nil {
		return nil, err
	}
	return a, nil
}

// CheckMove validates moving an existing schedule to (day, slot). The
// schedule itself never blocks its own move.
func CheckMove(r Rules, s timetable.Schedule, day timetable.Weekday, slot timetable.TimeSlot, idx *grid.Index) error {
	if r.SectionID == 0 {
		return ErrNoSection
	}
	if err := r.checkSlot(day, slot); err != nil {
		return err
	}
	return r.checkOccupancy(s.CourseAssignmentID, day, slot, idx, s.Ref())
}

func (r Rules) checkSlot(day timetable.Weekday, slot timetable.TimeSlot) error {
	if slot.IsBreak {
		return &ConflictError{Code: BreakSlot, Reason: fmt.Sprintf("slot %s is a break (%s)", slot, slot.Label)}
	}
	if r.Scheduler == nil {
		return nil
	}
	if !r.Scheduler.IsWorkday(day) {
		return &ConflictError{Code: NotWorkingDay, Reason: fmt.Sprintf("%s is not a working day", day)}
	}
	generated, ok := r.Scheduler.FindSlot(day, slot.Start)
	if !ok || generated.End != slot.End {
		return &ConflictError{Code: InvalidSlot, Reason: fmt.Sprintf("%s has no slot %s", day, slot)}
	}
	if generated.IsBreak {
		return &ConflictError{Code: BreakSlot, Reason: fmt.Sprintf("slot %s is a break (%s)", slot, generated.Label)}
	}
	return nil
}

func (r Rules) checkOccupancy(assignmentID int64, day timetable.Weekday, slot timetable.TimeSlot, idx *grid.Index, ignoreRef string) error {
	var duplicate *timetable.Schedule
	for _, existing := range idx.CellsFor(day, slot) {
		if existing.Ref() == ignoreRef {
			continue
		}
		if existing.CourseAssignmentID == assignmentID && existing.StartTime == slot.Start {
			duplicate = &existing
			continue
		}
		return &ConflictError{
			Code:     SlotOccupied,
			Reason:   "slot occupied by " + r.label(existing),
			Existing: &existing,
		}
	}
	if duplicate != nil {
		return &ConflictError{Code: DuplicatePlacement, Reason: "duplicate placement", Existing: duplicate}
	}
	return nil
}

func (r Rules) label(s timetable.Schedule) string {
	if a, ok := r.Assignments[s.CourseAssignmentID]; ok && a != nil {
		return a.Label()
	}
	return "schedule " + s.Ref()
}
