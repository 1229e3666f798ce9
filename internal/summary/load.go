// Package summary computes the weekly load of a section: scheduled minutes
// per course assignment and per teacher, and the class slots still free.
package summary

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/javiermolinar/horario/internal/grid"
	"github.com/javiermolinar/horario/internal/llm"
	"github.com/javiermolinar/horario/internal/scheduler"
	"github.com/javiermolinar/horario/internal/session"
	"github.com/javiermolinar/horario/internal/timetable"
)

// Status classifies an assignment against its weekly target.
type Status string

const (
	StatusUntracked Status = "untracked" // no weekly target
	StatusShort     Status = "short"
	StatusMet       Status = "met"
	StatusOver      Status = "over"
)

// AssignmentLoad is the weekly load of one course assignment.
type AssignmentLoad struct {
	Assignment *timetable.CourseAssignment
	Placements []timetable.Schedule
	Scheduled  int // minutes
}

// Target returns the weekly target in minutes.
func (l AssignmentLoad) Target() int {
	return l.Assignment.WeeklyMinutes
}

// Missing returns the minutes still needed to reach the target.
func (l AssignmentLoad) Missing() int {
	return max(0, l.Target()-l.Scheduled)
}

func (l AssignmentLoad) Status() Status {
	switch t := l.Target(); {
	case t == 0:
		return StatusUntracked
	case l.Scheduled < t:
		return StatusShort
	case l.Scheduled == t:
		return StatusMet
	default:
		return StatusOver
	}
}

// TeacherLoad aggregates the assignments of one teacher in the section.
type TeacherLoad struct {
	TeacherID int64
	Name      string
	Courses   int
	Scheduled int
	Target    int
}

// FreeSlot is a class slot with no schedule in it.
type FreeSlot struct {
	Day  timetable.Weekday
	Slot timetable.TimeSlot
}

// Summary is the load report of one section.
type Summary struct {
	SectionID     int64
	ClassDuration int
	Assignments   []AssignmentLoad
	Teachers      []TeacherLoad
	Free          []FreeSlot
	// Schedules whose assignment is not part of the section.
	Orphans []timetable.Schedule
	Issues  []grid.IntegrityIssue
	Insight string
}

// Summarize builds the report from a slot generator, the section's
// assignments and a grid index.
func Summarize(sched *scheduler.Scheduler, assignments []*timetable.CourseAssignment, idx *grid.Index) *Summary {
	cfg := sched.Config()
	sum := &Summary{
		SectionID:     cfg.SectionID,
		ClassDuration: cfg.ClassDuration,
		Issues:        idx.Integrity(),
	}

	known := make(map[int64]bool, len(assignments))
	teachers := make(map[int64]*TeacherLoad)
	for _, a := range assignments {
		known[a.ID] = true
		load := AssignmentLoad{Assignment: a, Placements: idx.ForAssignment(a.ID)}
		for _, p := range load.Placements {
			load.Scheduled += timetable.DurationMinutes(p.StartTime, p.EndTime)
		}
		sum.Assignments = append(sum.Assignments, load)

		t, ok := teachers[a.TeacherID]
		if !ok {
			t = &TeacherLoad{TeacherID: a.TeacherID, Name: a.TeacherName}
			teachers[a.TeacherID] = t
		}
		t.Courses++
		t.Scheduled += load.Scheduled
		t.Target += a.WeeklyMinutes
	}

	for _, t := range teachers {
		sum.Teachers = append(sum.Teachers, *t)
	}
	slices.SortFunc(sum.Teachers, func(a, b TeacherLoad) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.TeacherID, b.TeacherID)
	})

	for _, s := range idx.All() {
		if !known[s.CourseAssignmentID] {
			sum.Orphans = append(sum.Orphans, s)
		}
	}

	for _, day := range timetable.AllWeekdays {
		if !sched.IsWorkday(day) {
			continue
		}
		for _, slot := range sched.ClassSlots(day) {
			if len(idx.CellsFor(day, slot)) == 0 {
				sum.Free = append(sum.Free, FreeSlot{Day: day, Slot: slot})
			}
		}
	}
	return sum
}

// FromSession summarizes the merged state of an edit session, pending
// changes included.
func FromSession(s *session.Session) *Summary {
	return Summarize(s.Scheduler(), s.Assignments(), s.Index())
}

// FreeOn returns the free slots of day.
func (s *Summary) FreeOn(day timetable.Weekday) []timetable.TimeSlot {
	var out []timetable.TimeSlot
	for _, f := range s.Free {
		if f.Day == day {
			out = append(out, f.Slot)
		}
	}
	return out
}

// Short returns the assignments below their target, largest gap first.
func (s *Summary) Short() []AssignmentLoad {
	var out []AssignmentLoad
	for _, l := range s.Assignments {
		if l.Status() == StatusShort {
			out = append(out, l)
		}
	}
	slices.SortStableFunc(out, func(a, b AssignmentLoad) int {
		return cmp.Compare(b.Missing(), a.Missing())
	})
	return out
}

// Totals returns the scheduled and target minutes over all assignments.
func (s *Summary) Totals() (scheduled, target int) {
	for _, l := range s.Assignments {
		scheduled += l.Scheduled
		target += l.Target()
	}
	return scheduled, target
}

// LoadLines converts the report for the LLM evaluator.
func (s *Summary) LoadLines() []llm.LoadLine {
	lines := make([]llm.LoadLine, 0, len(s.Assignments))
	for _, l := range s.Assignments {
		lines = append(lines, llm.LoadLine{
			Course:    l.Assignment.CourseName,
			Teacher:   l.Assignment.TeacherName,
			Scheduled: l.Scheduled,
			Target:    l.Target(),
		})
	}
	return lines
}

// BuildOptions configures the store-backed summary builder.
type BuildOptions struct {
	SectionName    string
	Fallback       *timetable.ScheduleConfig
	IncludeInsight bool
	Client         llm.Client // required when IncludeInsight is set
	Logger         *zap.Logger
}

// Build loads a section from the store and summarizes it, optionally adding
// an LLM review of the load.
func Build(ctx context.Context, src session.Source, sectionID int64, opts BuildOptions) (*Summary, error) {
	s, err := session.Load(ctx, src, sectionID, session.LoadOptions{Fallback: opts.Fallback, Logger: opts.Logger})
	if err != nil {
		return nil, err
	}
	sum := FromSession(s)

	if opts.IncludeInsight && len(sum.Assignments) > 0 {
		if opts.Client == nil {
			return nil, errors.New("an LLM client is required for insight")
		}
		name := opts.SectionName
		if name == "" {
			name = fmt.Sprintf("section %d", sectionID)
		}
		insight, err := llm.NewEvaluator(opts.Client).EvaluateLoad(ctx, name, sum.LoadLines(), len(sum.Free))
		if err != nil {
			return nil, fmt.Errorf("evaluating load: %w", err)
		}
		sum.Insight = insight
	}
	return sum, nil
}
