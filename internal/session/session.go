// Package session implements the timetable edit session: a ledger of
// pending schedule changes checked against the merged grid and committed to
// the store in one batch.
package session

import (
	"cmp"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/javiermolinar/horario/internal/grid"
	"github.com/javiermolinar/horario/internal/scheduler"
	"github.com/javiermolinar/horario/internal/timetable"
)

const defaultMaxHistory = 50

// State is the ledger state of a session.
type State int

const (
	Clean State = iota // no pending changes
	Dirty              // at least one pending change
)

func (s State) String() string {
	if s == Dirty {
		return "dirty"
	}
	return "clean"
}

// Counts summarizes the pending changes.
type Counts struct {
	Created int
	Updated int
	Deleted int
	Total   int
}

// Options configures a new Session.
type Options struct {
	SectionID   int64
	Config      *timetable.ScheduleConfig // nil uses the default configuration
	Assignments []*timetable.CourseAssignment
	Persisted   []timetable.Schedule
	Logger      *zap.Logger
	Clock       func() time.Time
}

type snapshot struct {
	changes []timetable.ScheduleChange
	temps   []timetable.Schedule
	label   string
}

// Session accumulates schedule changes for one section without touching the
// store. Every mutation rebuilds the grid index from scratch.
type Session struct {
	mu sync.Mutex

	id          string
	sectionID   int64
	sched       *scheduler.Scheduler
	assignments map[int64]*timetable.CourseAssignment
	log         *zap.Logger
	now         func() time.Time

	persisted []timetable.Schedule
	temps     []timetable.Schedule
	changes   []timetable.ScheduleChange

	// Changes recorded while a commit is in flight. They join the ledger
	// once the commit resolves.
	queued     []timetable.ScheduleChange
	committing bool

	history    []snapshot
	maxHistory int
	lastTempMs int64

	index *grid.Index
}

// New creates a clean session over the persisted schedules of a section.
func New(opts Options) *Session {
	cfg := opts.Config
	if cfg == nil {
		cfg = timetable.DefaultScheduleConfig(opts.SectionID)
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	s := &Session{
		id:          uuid.NewString(),
		sectionID:   opts.SectionID,
		sched:       scheduler.New(cfg),
		assignments: make(map[int64]*timetable.CourseAssignment, len(opts.Assignments)),
		now:         now,
		persisted:   slices.Clone(opts.Persisted),
		maxHistory:  defaultMaxHistory,
	}
	for _, a := range opts.Assignments {
		s.assignments[a.ID] = a
	}
	s.log = log.With(zap.String("session", s.id), zap.Int64("section", opts.SectionID))
	s.rebuild()
	return s
}

// ID returns the session identifier used in logs.
func (s *Session) ID() string {
	return s.id
}

// SectionID returns the section being edited, 0 when none is selected.
func (s *Session) SectionID() int64 {
	return s.sectionID
}

// Scheduler returns the slot generator of the section configuration.
func (s *Session) Scheduler() *scheduler.Scheduler {
	return s.sched
}

// Assignment returns a course assignment of the section.
func (s *Session) Assignment(id int64) (*timetable.CourseAssignment, bool) {
	a, ok := s.assignments[id]
	return a, ok
}

// Assignments returns the course assignments ordered by ID.
func (s *Session) Assignments() []*timetable.CourseAssignment {
	out := make([]*timetable.CourseAssignment, 0, len(s.assignments))
	for _, a := range s.assignments {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b *timetable.CourseAssignment) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

func (s *Session) rules() Rules {
	return Rules{SectionID: s.sectionID, Scheduler: s.sched, Assignments: s.assignments}
}

// Index returns the merged grid of the current state.
func (s *Session) Index() *grid.Index {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// State reports whether the session has pending changes.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.changes)+len(s.queued) > 0 {
		return Dirty
	}
	return Clean
}

// IsCommitting reports whether a commit is in flight.
func (s *Session) IsCommitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.committing
}

// Changes returns the pending changes in ledger order.
func (s *Session) Changes() []timetable.ScheduleChange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(slices.Clone(s.changes), s.queued...)
}

// Temps returns the schedules created in this session and not yet committed.
func (s *Session) Temps() []timetable.Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.temps)
}

// Persisted returns the authoritative schedules the session started from.
func (s *Session) Persisted() []timetable.Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.persisted)
}

// Counts returns the number of pending creates, updates and deletes.
func (s *Session) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	var c Counts
	for _, ch := range append(slices.Clone(s.changes), s.queued...) {
		switch ch.Action {
		case timetable.ActionCreate:
			c.Created++
		case timetable.ActionUpdate:
			c.Updated++
		case timetable.ActionDelete:
			c.Deleted++
		}
	}
	c.Total = c.Created + c.Updated + c.Deleted
	return c
}

// Drop places an assignment into (day, slot). On success a temp schedule is
// created and a create change is recorded. A rejected drop returns a
// *ConflictError and leaves the session unchanged.
func (s *Session) Drop(assignmentID int64, day timetable.Weekday, slot timetable.TimeSlot) (timetable.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := CheckDrop(s.rules(), assignmentID, day, slot, s.index)
	if err != nil {
		s.log.Debug("drop rejected",
			zap.Int64("assignment", assignmentID),
			zap.Stringer("day", day),
			zap.String("slot", slot.String()),
			zap.Error(err))
		return timetable.Schedule{}, err
	}

	temp := timetable.Schedule{
		TempID:             s.nextTempID(),
		CourseAssignmentID: a.ID,
		SectionID:          s.sectionID,
		TeacherID:          a.TeacherID,
		DayOfWeek:          day,
		StartTime:          slot.Start,
		EndTime:            slot.End,
		IsPending:          true,
	}
	s.record("Drop: "+a.Label(), timetable.ScheduleChange{Action: timetable.ActionCreate, Schedule: temp})
	s.log.Debug("drop accepted", zap.String("ref", temp.Ref()), zap.Int64("assignment", a.ID))
	return temp, nil
}

// Move places the schedule ref at (day, slot).
func (s *Session) Move(ref string, day timetable.Weekday, slot timetable.TimeSlot) (timetable.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.index.Find(ref)
	if !ok {
		return timetable.Schedule{}, ErrUnknownRef
	}
	if err := CheckMove(s.rules(), current, day, slot, s.index); err != nil {
		return timetable.Schedule{}, err
	}

	moved := current
	moved.DayOfWeek = day
	moved.StartTime = slot.Start
	moved.EndTime = slot.End
	s.record("Move: "+s.rules().label(current), timetable.ScheduleChange{Action: timetable.ActionUpdate, Schedule: moved})
	return moved, nil
}

// Remove marks the schedule ref for deletion. Removing a temp schedule
// simply forgets it.
func (s *Session) Remove(ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.index.Find(ref)
	if !ok {
		return ErrUnknownRef
	}
	s.record("Remove: "+s.rules().label(current), timetable.ScheduleChange{Action: timetable.ActionDelete, Schedule: current})
	return nil
}

// Append records a change directly, merging it with the pending change of
// the same schedule. Re-appending a delete is a no-op.
func (s *Session) Append(change timetable.ScheduleChange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(string(change.Action)+": "+change.Schedule.Ref(), change)
}

// Discard drops every pending change and temp schedule. It is refused while
// a commit is in flight.
func (s *Session) Discard() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.committing {
		return ErrCommitInProgress
	}
	n := len(s.changes)
	s.changes = nil
	s.temps = nil
	s.queued = nil
	s.history = nil
	s.rebuild()
	s.log.Debug("session discarded", zap.Int("changes", n))
	return nil
}

// CanUndo reports whether an edit can be undone.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.committing && len(s.history) > 0
}

// Undo reverts the last edit and returns its description.
func (s *Session) Undo() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.committing {
		return "", ErrCommitInProgress
	}
	if len(s.history) == 0 {
		return "", ErrNothingToUndo
	}
	last := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	s.changes = last.changes
	s.temps = last.temps
	s.rebuild()
	return last.label, nil
}

// Reload replaces the persisted schedules, e.g. after another writer
// changed the section. Pending changes are kept.
func (s *Session) Reload(persisted []timetable.Schedule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persisted = slices.Clone(persisted)
	s.rebuild()
}

// record merges change into the ledger (or the commit queue) and keeps the
// temp cache in sync. Callers hold mu.
func (s *Session) record(label string, change timetable.ScheduleChange) {
	if s.committing {
		s.queued = mergeChange(s.queued, change)
	} else {
		s.pushHistory(label)
		s.changes = mergeChange(s.changes, change)
	}
	s.syncTemp(change)
	s.rebuild()
}

func (s *Session) syncTemp(change timetable.ScheduleChange) {
	if !change.Schedule.IsTemp() {
		return
	}
	ref := change.Schedule.Ref()
	i := slices.IndexFunc(s.temps, func(t timetable.Schedule) bool { return t.Ref() == ref })
	switch {
	case change.Action == timetable.ActionDelete && i >= 0:
		s.temps = slices.Delete(slices.Clone(s.temps), i, i+1)
	case change.Action == timetable.ActionDelete:
	case i >= 0:
		s.temps = slices.Clone(s.temps)
		s.temps[i] = change.Schedule
	default:
		s.temps = append(slices.Clone(s.temps), change.Schedule)
	}
}

func (s *Session) pushHistory(label string) {
	if len(s.history) >= s.maxHistory {
		s.history = s.history[1:]
	}
	s.history = append(s.history, snapshot{
		changes: slices.Clone(s.changes),
		temps:   slices.Clone(s.temps),
		label:   label,
	})
}

func (s *Session) rebuild() {
	pending := s.changes
	if len(s.queued) > 0 {
		pending = append(slices.Clone(s.changes), s.queued...)
	}
	s.index = grid.Build(s.persisted, s.temps, pending)
}

// nextTempID returns "temp_<unix millis>", bumped past the last issued value
// so two drops in the same millisecond get distinct ids.
func (s *Session) nextTempID() string {
	ms := s.now().UnixMilli()
	if ms <= s.lastTempMs {
		ms = s.lastTempMs + 1
	}
	s.lastTempMs = ms
	return timetable.TempIDPrefix + strconv.FormatInt(ms, 10)
}

// mergeChange folds c into changes so each schedule has at most one pending
// change:
//
//	create + update -> create with the new shape
//	create + delete -> nothing
//	update + update -> the last update
//	update + delete -> delete
//	delete + delete -> delete
//
// The input slice is never modified.
func mergeChange(changes []timetable.ScheduleChange, c timetable.ScheduleChange) []timetable.ScheduleChange {
	ref := c.Schedule.Ref()
	i := slices.IndexFunc(changes, func(existing timetable.ScheduleChange) bool {
		return existing.Schedule.Ref() == ref
	})
	if i < 0 {
		return append(slices.Clone(changes), c)
	}

	out := slices.Clone(changes)
	prev := out[i]
	switch {
	case prev.Action == timetable.ActionCreate && c.Action == timetable.ActionDelete:
		return slices.Delete(out, i, i+1)
	case prev.Action == timetable.ActionCreate:
		out[i] = timetable.ScheduleChange{Action: timetable.ActionCreate, Schedule: c.Schedule}
	case prev.Action == timetable.ActionDelete && c.Action == timetable.ActionDelete:
		return out
	default:
		out[i] = c
	}
	return out
}
