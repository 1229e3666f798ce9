package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javiermolinar/horario/internal/grid"
	"github.com/javiermolinar/horario/internal/scheduler"
	"github.com/javiermolinar/horario/internal/timetable"
)

const sectionID = 1

var assignments = []*timetable.CourseAssignment{
	{ID: 7, SectionID: sectionID, TeacherID: 70, TeacherName: "Ana", CourseName: "Math"},
	{ID: 9, SectionID: sectionID, TeacherID: 90, TeacherName: "Luis", CourseName: "History"},
	{ID: 11, SectionID: sectionID, TeacherID: 110, TeacherName: "Rosa", CourseName: "Art"},
}

func row(id, assignment int64, day timetable.Weekday, start, end string) timetable.Schedule {
	return timetable.Schedule{
		ID:                 id,
		CourseAssignmentID: assignment,
		SectionID:          sectionID,
		DayOfWeek:          day,
		StartTime:          start,
		EndTime:            end,
	}
}

func newSession(t *testing.T, persisted ...timetable.Schedule) *Session {
	t.Helper()
	return New(Options{
		SectionID:   sectionID,
		Config:      timetable.DefaultScheduleConfig(sectionID),
		Assignments: assignments,
		Persisted:   persisted,
	})
}

func slotAt(t *testing.T, s *Session, day timetable.Weekday, start string) timetable.TimeSlot {
	t.Helper()
	slot, ok := s.Scheduler().FindSlot(day, start)
	require.True(t, ok, "no slot %s %s", day, start)
	return slot
}

func TestNew_Defaults(t *testing.T) {
	s := New(Options{SectionID: sectionID})

	_, err := uuid.Parse(s.ID())
	require.NoError(t, err)
	assert.Equal(t, Clean, s.State())
	assert.Zero(t, s.Index().Len())
	assert.Len(t, s.Scheduler().Slots(timetable.Monday), 8, "default configuration")
}

func TestDrop_CreatesPendingSchedule(t *testing.T) {
	s := newSession(t)
	tue0700 := slotAt(t, s, timetable.Tuesday, "07:00")

	temp, err := s.Drop(7, timetable.Tuesday, tue0700)
	require.NoError(t, err)

	assert.True(t, temp.IsPending)
	assert.True(t, timetable.IsTempRef(temp.Ref()))
	assert.Equal(t, int64(70), temp.TeacherID)
	assert.Equal(t, int64(sectionID), temp.SectionID)
	assert.Empty(t, temp.Classroom)

	changes := s.Changes()
	require.Len(t, changes, 1)
	assert.Equal(t, timetable.ActionCreate, changes[0].Action)

	cell := s.Index().CellsFor(timetable.Tuesday, tue0700)
	require.Len(t, cell, 1)
	assert.Equal(t, int64(7), cell[0].CourseAssignmentID)
	assert.Equal(t, Dirty, s.State())

	_, err = s.Drop(9, timetable.Tuesday, tue0700)
	require.True(t, IsConflict(err, SlotOccupied), "got %v", err)
	assert.EqualError(t, err, "slot occupied by Math")
	assert.Len(t, s.Changes(), 1, "rejected drop leaves the session unchanged")
}

func TestDiscard_RevertsToPersisted(t *testing.T) {
	persisted := []timetable.Schedule{
		row(1, 7, timetable.Monday, "07:00", "07:45"),
		row(2, 9, timetable.Wednesday, "07:45", "08:30"),
	}
	s := newSession(t, persisted...)

	_, err := s.Drop(9, timetable.Tuesday, slotAt(t, s, timetable.Tuesday, "07:00"))
	require.NoError(t, err)
	_, err = s.Drop(11, timetable.Friday, slotAt(t, s, timetable.Friday, "08:30"))
	require.NoError(t, err)
	require.NoError(t, s.Remove("1"))

	assert.Equal(t, Counts{Created: 2, Deleted: 1, Total: 3}, s.Counts())

	require.NoError(t, s.Discard())
	assert.Empty(t, s.Changes())
	assert.Empty(t, s.Temps())
	assert.Equal(t, persisted, s.Index().All())
	assert.Equal(t, Clean, s.State())
	assert.False(t, s.CanUndo())

	require.NoError(t, s.Discard(), "discarding a clean session is a no-op")
	assert.Equal(t, persisted, s.Index().All())
}

func TestDiscard_AnyLedgerSize(t *testing.T) {
	for _, n := range []int{0, 1, 5, 20} {
		s := newSession(t)
		dropped := 0
		for _, day := range []timetable.Weekday{timetable.Monday, timetable.Tuesday, timetable.Wednesday, timetable.Thursday, timetable.Friday} {
			for _, slot := range s.Scheduler().ClassSlots(day) {
				if dropped == n {
					break
				}
				_, err := s.Drop(7, day, slot)
				require.NoError(t, err)
				dropped++
			}
		}
		require.Equal(t, n, len(s.Changes()))

		require.NoError(t, s.Discard())
		assert.Empty(t, s.Changes())
		assert.Empty(t, s.Temps())
		assert.Zero(t, s.Index().Len())
	}
}

func TestCheckDrop_Rules(t *testing.T) {
	cfg := timetable.DefaultScheduleConfig(sectionID)
	byID := map[int64]*timetable.CourseAssignment{}
	for _, a := range assignments {
		byID[a.ID] = a
	}
	rules := Rules{SectionID: sectionID, Scheduler: scheduler.New(cfg), Assignments: byID}
	idx := grid.Build([]timetable.Schedule{
		row(1, 9, timetable.Monday, "07:00", "07:45"),
		row(2, 7, timetable.Monday, "07:45", "08:30"),
	}, nil, nil)

	mon0700 := timetable.TimeSlot{Start: "07:00", End: "07:45"}
	mon0745 := timetable.TimeSlot{Start: "07:45", End: "08:30"}
	free := timetable.TimeSlot{Start: "08:30", End: "09:15"}

	tests := []struct {
		name       string
		rules      Rules
		assignment int64
		day        timetable.Weekday
		slot       timetable.TimeSlot
		code       ConflictCode
		reason     string
		noSection  bool
	}{
		{
			name: "unknown assignment wins over missing section", rules: Rules{Assignments: byID},
			assignment: 42, day: timetable.Monday, slot: free,
			code: AssignmentNotFound, reason: "assignment not found",
		},
		{
			name: "missing section", rules: Rules{Assignments: byID},
			assignment: 7, day: timetable.Monday, slot: free, noSection: true,
		},
		{
			name: "break slot", rules: rules, assignment: 7, day: timetable.Monday,
			slot: timetable.TimeSlot{Start: "09:15", End: "09:30"}, code: BreakSlot,
		},
		{
			name: "flagged break slot", rules: rules, assignment: 7, day: timetable.Monday,
			slot: timetable.TimeSlot{Start: "09:15", End: "09:30", Label: "RECREO", IsBreak: true}, code: BreakSlot,
		},
		{
			name: "weekend", rules: rules, assignment: 7, day: timetable.Saturday, slot: free,
			code: NotWorkingDay, reason: "Saturday is not a working day",
		},
		{
			name: "not a generated slot", rules: rules, assignment: 7, day: timetable.Monday,
			slot: timetable.TimeSlot{Start: "07:10", End: "07:55"}, code: InvalidSlot,
		},
		{
			name: "occupied", rules: rules, assignment: 7, day: timetable.Monday, slot: mon0700,
			code: SlotOccupied, reason: "slot occupied by History",
		},
		{
			name: "duplicate", rules: rules, assignment: 7, day: timetable.Monday, slot: mon0745,
			code: DuplicatePlacement, reason: "duplicate placement",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CheckDrop(tt.rules, tt.assignment, tt.day, tt.slot, idx)
			if tt.noSection {
				assert.ErrorIs(t, err, ErrNoSection)
				return
			}
			var conflict *ConflictError
			require.ErrorAs(t, err, &conflict)
			assert.Equal(t, tt.code, conflict.Code)
			if tt.reason != "" {
				assert.Equal(t, tt.reason, conflict.Reason)
			}
		})
	}

	a, err := CheckDrop(rules, 11, timetable.Monday, free, idx)
	require.NoError(t, err)
	assert.Equal(t, "Art", a.Label())
}

func TestDrop_NoSectionIsSilent(t *testing.T) {
	s := New(Options{Assignments: assignments})
	_, err := s.Drop(7, timetable.Monday, slotAt(t, s, timetable.Monday, "07:00"))

	assert.ErrorIs(t, err, ErrNoSection)
	assert.Equal(t, Clean, s.State())
}

func TestConflictSymmetry(t *testing.T) {
	store := newMemStore()
	committer := NewCommitter(store, nil)
	s := newSession(t)
	tue := slotAt(t, s, timetable.Tuesday, "07:00")

	_, err := s.Drop(7, timetable.Tuesday, tue)
	require.NoError(t, err)
	_, err = committer.Commit(context.Background(), s)
	require.NoError(t, err)

	for _, other := range []int64{9, 11} {
		_, err = s.Drop(other, timetable.Tuesday, tue)
		assert.True(t, IsConflict(err, SlotOccupied), "assignment %d: %v", other, err)
	}

	committed := s.Index().CellsFor(timetable.Tuesday, tue)
	require.Len(t, committed, 1)
	require.NoError(t, s.Remove(committed[0].Ref()))

	_, err = s.Drop(9, timetable.Tuesday, tue)
	require.NoError(t, err, "cell is free once the first entry is deleted")

	_, err = committer.Commit(context.Background(), s)
	require.NoError(t, err)
	rows, err := store.ListSchedules(context.Background(), sectionID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(9), rows[0].CourseAssignmentID)
}

func TestMergeChange(t *testing.T) {
	temp := timetable.Schedule{TempID: "temp_1", CourseAssignmentID: 7, DayOfWeek: timetable.Monday, StartTime: "07:00", EndTime: "07:45"}
	tempMoved := temp
	tempMoved.StartTime, tempMoved.EndTime = "07:45", "08:30"
	stored := row(5, 9, timetable.Monday, "08:30", "09:15")
	storedMoved := stored
	storedMoved.DayOfWeek = timetable.Tuesday
	storedMovedAgain := stored
	storedMovedAgain.DayOfWeek = timetable.Wednesday

	change := func(a timetable.ChangeAction, s timetable.Schedule) timetable.ScheduleChange {
		return timetable.ScheduleChange{Action: a, Schedule: s}
	}

	tests := []struct {
		name string
		in   []timetable.ScheduleChange
		want []timetable.ScheduleChange
	}{
		{
			name: "create then update",
			in:   []timetable.ScheduleChange{change(timetable.ActionCreate, temp), change(timetable.ActionUpdate, tempMoved)},
			want: []timetable.ScheduleChange{change(timetable.ActionCreate, tempMoved)},
		},
		{
			name: "create then delete",
			in:   []timetable.ScheduleChange{change(timetable.ActionCreate, temp), change(timetable.ActionDelete, temp)},
			want: []timetable.ScheduleChange{},
		},
		{
			name: "update then update",
			in:   []timetable.ScheduleChange{change(timetable.ActionUpdate, storedMoved), change(timetable.ActionUpdate, storedMovedAgain)},
			want: []timetable.ScheduleChange{change(timetable.ActionUpdate, storedMovedAgain)},
		},
		{
			name: "update then delete",
			in:   []timetable.ScheduleChange{change(timetable.ActionUpdate, storedMoved), change(timetable.ActionDelete, stored)},
			want: []timetable.ScheduleChange{change(timetable.ActionDelete, stored)},
		},
		{
			name: "delete twice",
			in:   []timetable.ScheduleChange{change(timetable.ActionDelete, stored), change(timetable.ActionDelete, stored)},
			want: []timetable.ScheduleChange{change(timetable.ActionDelete, stored)},
		},
		{
			name: "independent refs keep order",
			in:   []timetable.ScheduleChange{change(timetable.ActionDelete, stored), change(timetable.ActionCreate, temp)},
			want: []timetable.ScheduleChange{change(timetable.ActionDelete, stored), change(timetable.ActionCreate, temp)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := []timetable.ScheduleChange{}
			for _, c := range tt.in {
				got = mergeChange(got, c)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAppend_DeleteIsIdempotent(t *testing.T) {
	stored := row(1, 7, timetable.Monday, "07:00", "07:45")
	s := newSession(t, stored)
	del := timetable.ScheduleChange{Action: timetable.ActionDelete, Schedule: stored}

	s.Append(del)
	s.Append(del)

	assert.Equal(t, []timetable.ScheduleChange{del}, s.Changes())
	assert.Zero(t, s.Index().Len())
}

func TestMove(t *testing.T) {
	stored := row(3, 7, timetable.Monday, "08:30", "09:15")
	s := newSession(t, stored, row(4, 9, timetable.Monday, "10:15", "11:00"))
	from := slotAt(t, s, timetable.Monday, "08:30")
	to := slotAt(t, s, timetable.Monday, "09:30")

	moved, err := s.Move("3", timetable.Monday, to)
	require.NoError(t, err)
	assert.Equal(t, "09:30", moved.StartTime)
	assert.Equal(t, int64(3), moved.ID)

	assert.Empty(t, s.Index().CellsFor(timetable.Monday, from))
	cell := s.Index().CellsFor(timetable.Monday, to)
	require.Len(t, cell, 1)
	assert.Equal(t, moved, cell[0])
	assert.Equal(t, Counts{Updated: 1, Total: 1}, s.Counts())

	_, err = s.Move("3", timetable.Monday, slotAt(t, s, timetable.Monday, "10:15"))
	assert.True(t, IsConflict(err, SlotOccupied), "got %v", err)

	_, err = s.Move("3", timetable.Monday, to)
	require.NoError(t, err, "a schedule never blocks itself")

	_, err = s.Move("404", timetable.Monday, to)
	assert.ErrorIs(t, err, ErrUnknownRef)
}

func TestMove_TempStaysCreate(t *testing.T) {
	s := newSession(t)
	temp, err := s.Drop(7, timetable.Thursday, slotAt(t, s, timetable.Thursday, "07:00"))
	require.NoError(t, err)

	_, err = s.Move(temp.Ref(), timetable.Friday, slotAt(t, s, timetable.Friday, "11:00"))
	require.NoError(t, err)

	changes := s.Changes()
	require.Len(t, changes, 1)
	assert.Equal(t, timetable.ActionCreate, changes[0].Action)
	assert.Equal(t, timetable.Friday, changes[0].Schedule.DayOfWeek)
	temps := s.Temps()
	require.Len(t, temps, 1)
	assert.Equal(t, "11:00", temps[0].StartTime)
}

func TestRemove_TempIsForgotten(t *testing.T) {
	s := newSession(t)
	temp, err := s.Drop(7, timetable.Monday, slotAt(t, s, timetable.Monday, "07:00"))
	require.NoError(t, err)

	require.NoError(t, s.Remove(temp.Ref()))
	assert.Empty(t, s.Changes())
	assert.Empty(t, s.Temps())
	assert.Equal(t, Clean, s.State())
	assert.ErrorIs(t, s.Remove(temp.Ref()), ErrUnknownRef)
}

func TestUndo(t *testing.T) {
	s := newSession(t)
	_, err := s.Drop(7, timetable.Monday, slotAt(t, s, timetable.Monday, "07:00"))
	require.NoError(t, err)
	_, err = s.Drop(9, timetable.Monday, slotAt(t, s, timetable.Monday, "07:45"))
	require.NoError(t, err)

	label, err := s.Undo()
	require.NoError(t, err)
	assert.Equal(t, "Drop: History", label)
	assert.Len(t, s.Changes(), 1)
	assert.Len(t, s.Temps(), 1)

	_, err = s.Undo()
	require.NoError(t, err)
	assert.Equal(t, Clean, s.State())
	assert.Zero(t, s.Index().Len())

	_, err = s.Undo()
	assert.ErrorIs(t, err, ErrNothingToUndo)
}

func TestTempIDsAreUnique(t *testing.T) {
	fixed := time.UnixMilli(1_700_000_000_000)
	s := New(Options{
		SectionID:   sectionID,
		Assignments: assignments,
		Clock:       func() time.Time { return fixed },
	})

	a, err := s.Drop(7, timetable.Monday, slotAt(t, s, timetable.Monday, "07:00"))
	require.NoError(t, err)
	b, err := s.Drop(9, timetable.Monday, slotAt(t, s, timetable.Monday, "07:45"))
	require.NoError(t, err)

	assert.Equal(t, "temp_1700000000000", a.TempID)
	assert.Equal(t, "temp_1700000000001", b.TempID)
}

func TestIsConflict(t *testing.T) {
	err := &ConflictError{Code: SlotOccupied, Reason: "slot occupied by Math"}
	assert.True(t, IsConflict(err, SlotOccupied))
	assert.False(t, IsConflict(err, DuplicatePlacement))
	assert.False(t, IsConflict(errors.New("other"), SlotOccupied))
}
