package autofill

import (
	"errors"
	"fmt"
	"strings"

	"github.com/javiermolinar/horario/internal/llm"
	"github.com/javiermolinar/horario/internal/session"
	"github.com/javiermolinar/horario/internal/timetable"
)

// Rejection is a proposal the session refused.
type Rejection struct {
	Proposal llm.Proposal
	Reason   string
}

func (r Rejection) String() string {
	return fmt.Sprintf("assignment %d on %s at %s: %s", r.Proposal.AssignmentID, r.Proposal.Day, r.Proposal.Start, r.Reason)
}

// Placement is an accepted proposal, already in the session ledger.
type Placement struct {
	Schedule timetable.Schedule
	Course   string
}

// applier runs proposals through the session, keeping each assignment
// within the slots it still needs.
type applier struct {
	s         *session.Session
	remaining map[int64]int
}

func newApplier(s *session.Session, needs []llm.Need) *applier {
	a := &applier{s: s, remaining: make(map[int64]int, len(needs))}
	for _, n := range needs {
		a.remaining[n.AssignmentID] = n.MissingSlots
	}
	return a
}

func (a *applier) apply(p llm.Proposal) (Placement, error) {
	if _, ok := a.s.Assignment(p.AssignmentID); !ok {
		return Placement{}, fmt.Errorf("assignment %d does not exist in this section", p.AssignmentID)
	}
	left, ok := a.remaining[p.AssignmentID]
	if !ok || left <= 0 {
		return Placement{}, errors.New("assignment needs no more classes")
	}

	day, err := timetable.ParseWeekday(p.Day)
	if err != nil {
		return Placement{}, fmt.Errorf("unknown day %q", p.Day)
	}
	sched := a.s.Scheduler()
	if !sched.IsWorkday(day) {
		return Placement{}, fmt.Errorf("%s is not a working day", day)
	}
	slot, ok := sched.FindSlot(day, strings.TrimSpace(p.Start))
	if !ok {
		return Placement{}, fmt.Errorf("no slot starts at %s on %s", p.Start, day)
	}

	created, err := a.s.Drop(p.AssignmentID, day, slot)
	if err != nil {
		return Placement{}, err
	}
	a.remaining[p.AssignmentID] = left - 1

	course, _ := a.s.Assignment(p.AssignmentID)
	return Placement{Schedule: created, Course: course.Label()}, nil
}

// formatRejections renders rejections as feedback lines.
func formatRejections(rejected []Rejection) []string {
	out := make([]string, len(rejected))
	for i, r := range rejected {
		out[i] = r.String()
	}
	return out
}
