package session

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/javiermolinar/horario/internal/timetable"
)

// Store is the part of the repository the committer writes through.
type Store interface {
	ListSchedules(ctx context.Context, sectionID int64) ([]timetable.Schedule, error)
	CreateSchedule(ctx context.Context, req timetable.CreateScheduleRequest) (timetable.Schedule, error)
	UpdateSchedule(ctx context.Context, req timetable.UpdateScheduleRequest) error
	DeleteSchedule(ctx context.Context, req timetable.DeleteScheduleRequest) error
}

// BatchCreator is implemented by stores that can insert several schedules
// in one request.
type BatchCreator interface {
	CreateSchedules(ctx context.Context, reqs []timetable.CreateScheduleRequest) ([]timetable.Schedule, error)
}

// CommitResult reports what a commit applied.
type CommitResult struct {
	Deleted int
	Updated int
	Created []timetable.Schedule
}

// Empty reports whether the commit had nothing to apply.
func (r CommitResult) Empty() bool {
	return r.Deleted == 0 && r.Updated == 0 && len(r.Created) == 0
}

// Committer drains edit sessions into a store.
type Committer struct {
	store Store
	log   *zap.Logger
}

// NewCommitter creates a committer writing to store.
func NewCommitter(store Store, log *zap.Logger) *Committer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Committer{store: store, log: log}
}

// outcome collects the refs the store accepted during one commit.
type outcome struct {
	deleted map[string]bool
	updated map[string]timetable.Schedule
	created map[string]timetable.Schedule // temp ref -> stored row
}

// Commit applies the session ledger as deletes, then updates, then creates,
// stopping at the first partition the store rejects. Accepted changes leave
// the ledger even when a later partition fails; the rest stay pending and a
// *CommitError names the failed action. On success the persisted schedules
// are reloaded from the store.
//
// Commits of one session are strictly sequential: a second Commit while one
// is in flight returns ErrCommitInProgress.
func (c *Committer) Commit(ctx context.Context, s *Session) (CommitResult, error) {
	changes, persisted, err := s.beginCommit()
	if err != nil {
		return CommitResult{}, err
	}
	log := c.log.With(zap.String("session", s.ID()), zap.Int64("section", s.SectionID()))
	if len(changes) == 0 {
		s.endCommit(outcome{}, nil)
		return CommitResult{}, nil
	}

	var deletes, updates, creates []timetable.ScheduleChange
	for _, ch := range changes {
		switch ch.Action {
		case timetable.ActionDelete:
			deletes = append(deletes, ch)
		case timetable.ActionUpdate:
			updates = append(updates, ch)
		case timetable.ActionCreate:
			creates = append(creates, ch)
		}
	}
	updates = orderUpdates(updates, persisted)
	log.Info("commit started",
		zap.Int("deletes", len(deletes)),
		zap.Int("updates", len(updates)),
		zap.Int("creates", len(creates)))

	out := outcome{
		deleted: make(map[string]bool),
		updated: make(map[string]timetable.Schedule),
		created: make(map[string]timetable.Schedule),
	}
	failedAction, failErr := c.apply(ctx, out, deletes, updates, creates)

	reloaded, reloadErr := c.store.ListSchedules(ctx, s.SectionID())
	if reloadErr != nil {
		log.Warn("reload after commit failed", zap.Error(reloadErr))
		reloaded = nil
	} else if reloaded == nil {
		reloaded = []timetable.Schedule{}
	}
	pending := s.endCommit(out, reloaded)

	result := CommitResult{Deleted: len(out.deleted), Updated: len(out.updated)}
	for _, ch := range creates {
		if row, ok := out.created[ch.Schedule.Ref()]; ok {
			result.Created = append(result.Created, row)
		}
	}

	if failErr != nil {
		log.Warn("commit failed",
			zap.String("action", string(failedAction)),
			zap.Int("pending", pending),
			zap.Error(failErr))
		return result, &CommitError{Action: failedAction, Pending: pending, Err: failErr}
	}
	if reloadErr != nil {
		return result, fmt.Errorf("reloading schedules: %w", reloadErr)
	}
	log.Info("commit finished",
		zap.Int("deleted", result.Deleted),
		zap.Int("updated", result.Updated),
		zap.Int("created", len(result.Created)))
	return result, nil
}

func (c *Committer) apply(ctx context.Context, out outcome, deletes, updates, creates []timetable.ScheduleChange) (timetable.ChangeAction, error) {
	for _, ch := range deletes {
		if err := c.store.DeleteSchedule(ctx, timetable.DeleteScheduleRequest{ID: ch.Schedule.ID}); err != nil {
			return timetable.ActionDelete, fmt.Errorf("deleting schedule %d: %w", ch.Schedule.ID, err)
		}
		out.deleted[ch.Schedule.Ref()] = true
	}

	for _, ch := range updates {
		if err := c.store.UpdateSchedule(ctx, timetable.NewUpdateRequest(ch.Schedule)); err != nil {
			return timetable.ActionUpdate, fmt.Errorf("updating schedule %d: %w", ch.Schedule.ID, err)
		}
		out.updated[ch.Schedule.Ref()] = ch.Schedule
	}

	if len(creates) == 0 {
		return "", nil
	}
	reqs := make([]timetable.CreateScheduleRequest, len(creates))
	for i, ch := range creates {
		reqs[i] = timetable.NewCreateRequest(ch.Schedule)
	}

	if batch, ok := c.store.(BatchCreator); ok {
		rows, err := batch.CreateSchedules(ctx, reqs)
		if err != nil {
			return timetable.ActionCreate, fmt.Errorf("creating %d schedule(s): %w", len(reqs), err)
		}
		for i, row := range rows {
			if i < len(creates) {
				out.created[creates[i].Schedule.Ref()] = row
			}
		}
		return "", nil
	}

	for i, req := range reqs {
		row, err := c.store.CreateSchedule(ctx, req)
		if err != nil {
			return timetable.ActionCreate, fmt.Errorf("creating schedule %s %s: %w", req.DayOfWeek, req.StartTime, err)
		}
		out.created[creates[i].Schedule.Ref()] = row
	}
	return "", nil
}

// orderUpdates sorts moves so a schedule only lands on a cell after the
// schedule sitting there has moved away. Moves that form a cycle keep their
// ledger order at the end.
func orderUpdates(updates []timetable.ScheduleChange, persisted []timetable.Schedule) []timetable.ScheduleChange {
	if len(updates) < 2 {
		return updates
	}
	type cell struct {
		day   timetable.Weekday
		start string
	}
	from := make(map[int64]cell, len(persisted))
	for _, row := range persisted {
		from[row.ID] = cell{row.DayOfWeek, row.StartTime}
	}
	occupant := make(map[cell]int64, len(updates))
	for _, ch := range updates {
		if c, ok := from[ch.Schedule.ID]; ok {
			occupant[c] = ch.Schedule.ID
		}
	}

	ordered := make([]timetable.ScheduleChange, 0, len(updates))
	remaining := updates
	for len(remaining) > 0 {
		var blocked []timetable.ScheduleChange
		for _, ch := range remaining {
			target := cell{ch.Schedule.DayOfWeek, ch.Schedule.StartTime}
			if id, ok := occupant[target]; ok && id != ch.Schedule.ID {
				blocked = append(blocked, ch)
				continue
			}
			if c, ok := from[ch.Schedule.ID]; ok && occupant[c] == ch.Schedule.ID {
				delete(occupant, c)
			}
			ordered = append(ordered, ch)
		}
		if len(blocked) == len(remaining) {
			return append(ordered, blocked...)
		}
		remaining = blocked
	}
	return ordered
}

// beginCommit locks the session for discard and hands out a copy of the
// ledger and of the persisted schedules it applies to.
func (s *Session) beginCommit() ([]timetable.ScheduleChange, []timetable.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.committing {
		return nil, nil, ErrCommitInProgress
	}
	if s.sectionID == 0 {
		return nil, nil, ErrNoSection
	}
	s.committing = true
	return slices.Clone(s.changes), slices.Clone(s.persisted), nil
}

// endCommit removes the accepted changes from the ledger, promotes created
// temp schedules, replays the changes queued during the commit and unlocks
// the session. A nil reloaded means the store could not be read back and the
// outcome is applied to the persisted rows locally. It returns the number of
// changes left pending.
func (s *Session) endCommit(out outcome, reloaded []timetable.Schedule) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	accepted := func(ch timetable.ScheduleChange) bool {
		ref := ch.Schedule.Ref()
		switch ch.Action {
		case timetable.ActionDelete:
			return out.deleted[ref]
		case timetable.ActionUpdate:
			_, ok := out.updated[ref]
			return ok
		default:
			_, ok := out.created[ref]
			return ok
		}
	}

	var remaining []timetable.ScheduleChange
	for _, ch := range s.changes {
		if !accepted(ch) {
			remaining = append(remaining, ch)
		}
	}
	s.changes = remaining

	s.temps = slices.DeleteFunc(slices.Clone(s.temps), func(t timetable.Schedule) bool {
		_, ok := out.created[t.Ref()]
		return ok
	})

	if reloaded != nil {
		s.persisted = slices.Clone(reloaded)
	} else {
		s.persisted = patchPersisted(s.persisted, out)
	}

	for _, ch := range s.queued {
		if row, ok := out.created[ch.Schedule.Ref()]; ok {
			promoted := ch.Schedule
			promoted.ID = row.ID
			promoted.TempID = ""
			promoted.IsPending = false
			ch.Schedule = promoted
		}
		s.changes = mergeChange(s.changes, ch)
	}
	s.queued = nil

	if len(out.created)+len(out.updated)+len(out.deleted) > 0 {
		s.history = nil
	}
	s.committing = false
	s.rebuild()
	return len(s.changes)
}

// patchPersisted applies an outcome locally when the store cannot be reloaded.
func patchPersisted(persisted []timetable.Schedule, out outcome) []timetable.Schedule {
	var patched []timetable.Schedule
	for _, row := range persisted {
		if out.deleted[row.Ref()] {
			continue
		}
		if moved, ok := out.updated[row.Ref()]; ok {
			row = moved
		}
		patched = append(patched, row)
	}
	for _, row := range out.created {
		patched = append(patched, row)
	}
	return patched
}
