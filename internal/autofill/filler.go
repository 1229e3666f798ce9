// Package autofill asks an LLM to place under-scheduled course assignments
// into free class slots. Every proposal goes through the edit session, so a
// placement the grid would reject never reaches the store.
package autofill

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/javiermolinar/horario/internal/llm"
	"github.com/javiermolinar/horario/internal/session"
	"github.com/javiermolinar/horario/internal/summary"
)

// DefaultMaxRetries bounds the feedback rounds after the first proposal.
const DefaultMaxRetries = 2

// ErrNothingToFill is returned when no assignment is short or no class slot is free.
var ErrNothingToFill = errors.New("nothing to fill: no assignment is short or no class slot is free")

// Options tunes a Filler.
type Options struct {
	SectionName  string
	Instructions string
	Compact      bool // shorter prompt for local models
	MaxRetries   int  // negative disables retries, 0 uses DefaultMaxRetries
	Logger       *zap.Logger
}

// Result is the outcome of one autofill run. Accepted placements are
// pending in the session and not yet committed.
type Result struct {
	Needs    []llm.Need
	Accepted []Placement
	Rejected []Rejection // left unresolved after the last attempt
	Warnings []string
	Attempts int
}

// HasRejections reports whether some proposals were never fixed.
func (r *Result) HasRejections() bool {
	return len(r.Rejected) > 0
}

// Filler drives the propose/validate/feedback loop.
type Filler struct {
	planner *llm.Planner
	opts    Options
	log     *zap.Logger
}

// New creates a Filler that asks client for placements.
func New(client llm.Client, opts Options) *Filler {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	switch {
	case opts.MaxRetries == 0:
		opts.MaxRetries = DefaultMaxRetries
	case opts.MaxRetries < 0:
		opts.MaxRetries = 0
	}
	return &Filler{planner: llm.NewPlanner(client), opts: opts, log: log.Named("autofill")}
}

// Fill proposes placements for the session's short assignments and drops
// the valid ones into the session. Rejected proposals are sent back to the
// model with their reasons until none remain or the retries run out.
func (f *Filler) Fill(ctx context.Context, s *session.Session) (*Result, error) {
	sum := summary.FromSession(s)
	needs := Needs(sum)
	if len(needs) == 0 || len(sum.Free) == 0 {
		return nil, ErrNothingToFill
	}

	result := &Result{Needs: needs}
	apply := newApplier(s, needs)
	messages := f.planner.BuildInitialMessages(f.request(s, sum, needs))

	for attempt := 0; attempt <= f.opts.MaxRetries; attempt++ {
		result.Attempts++
		resp, err := f.planner.Propose(ctx, messages)
		if err != nil {
			return result, fmt.Errorf("autofill attempt %d: %w", attempt+1, err)
		}
		result.Warnings = resp.Warnings

		var rejected []Rejection
		for _, p := range resp.Placements {
			placed, err := apply.apply(p)
			if err != nil {
				rejected = append(rejected, Rejection{Proposal: p, Reason: err.Error()})
				continue
			}
			result.Accepted = append(result.Accepted, placed)
		}
		result.Rejected = rejected

		f.log.Info("autofill attempt",
			zap.Int("attempt", attempt+1),
			zap.Int("proposed", len(resp.Placements)),
			zap.Int("rejected", len(rejected)),
			zap.String("session", s.ID()))

		if len(rejected) == 0 {
			break
		}
		messages = llm.WithFeedback(messages, resp, formatRejections(rejected))
	}
	return result, nil
}

func (f *Filler) request(s *session.Session, sum *summary.Summary, needs []llm.Need) llm.PlacementRequest {
	name := f.opts.SectionName
	if name == "" {
		name = fmt.Sprintf("section %d", s.SectionID())
	}

	req := llm.PlacementRequest{
		Section:       name,
		ClassDuration: sum.ClassDuration,
		Needs:         needs,
		Instructions:  f.opts.Instructions,
		Compact:       f.opts.Compact,
	}
	for _, fs := range sum.Free {
		req.Free = append(req.Free, llm.FreeSlot{Day: fs.Day.String(), Start: fs.Slot.Start, End: fs.Slot.End})
	}
	for _, sc := range s.Index().All() {
		course := "unknown course"
		if a, ok := s.Assignment(sc.CourseAssignmentID); ok {
			course = a.Label()
		}
		req.Placed = append(req.Placed, llm.Placed{
			Day:    sc.DayOfWeek.String(),
			Start:  sc.StartTime,
			End:    sc.EndTime,
			Course: course,
		})
	}
	return req
}

// Needs lists the short assignments of a summary, largest gap first. The
// slot count rounds up so a partial class still counts as one.
func Needs(sum *summary.Summary) []llm.Need {
	var needs []llm.Need
	for _, l := range sum.Short() {
		slots := 1
		if sum.ClassDuration > 0 {
			slots = (l.Missing() + sum.ClassDuration - 1) / sum.ClassDuration
		}
		needs = append(needs, llm.Need{
			AssignmentID:   l.Assignment.ID,
			Course:         l.Assignment.CourseName,
			Teacher:        l.Assignment.TeacherName,
			MissingMinutes: l.Missing(),
			MissingSlots:   slots,
		})
	}
	return needs
}
