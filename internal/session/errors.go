package session

import (
	"errors"
	"fmt"

	"github.com/javiermolinar/horario/internal/timetable"
)

// Session errors.
var (
	ErrNoSection        = errors.New("no section selected")
	ErrCommitInProgress = errors.New("a commit is in progress")
	ErrNothingToUndo    = errors.New("nothing to undo")
	ErrUnknownRef       = errors.New("schedule not in session")
)

// ConflictCode identifies the rule that rejected a placement.
type ConflictCode string

const (
	AssignmentNotFound ConflictCode = "assignment_not_found"
	NotWorkingDay      ConflictCode = "not_working_day"
	InvalidSlot        ConflictCode = "invalid_slot"
	BreakSlot          ConflictCode = "break_slot"
	SlotOccupied       ConflictCode = "slot_occupied"
	DuplicatePlacement ConflictCode = "duplicate_placement"
)

// ConflictError is a rejected placement. The session is left unchanged.
type ConflictError struct {
	Code     ConflictCode
	Reason   string
	Existing *timetable.Schedule // occupant for SlotOccupied and DuplicatePlacement
}

func (e *ConflictError) Error() string {
	return e.Reason
}

// IsConflict reports whether err is a *ConflictError with the given code.
func IsConflict(err error, code ConflictCode) bool {
	var c *ConflictError
	return errors.As(err, &c) && c.Code == code
}

// CommitError reports the partition of a batch commit that failed. Changes
// applied before the failure have left the session; the rest stay pending.
type CommitError struct {
	Action  timetable.ChangeAction
	Pending int // changes still in the ledger
	Err     error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit failed applying %ss (%d change(s) still pending): %v", e.Action, e.Pending, e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}
