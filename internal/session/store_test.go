package session

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/javiermolinar/horario/internal/timetable"
)

var errStore = errors.New("store unavailable")

// memStore is an in-memory Store without batch support.
type memStore struct {
	mu     sync.Mutex
	rows   map[int64]timetable.Schedule
	nextID int64
	calls  []string

	failDelete   error
	failUpdate   error
	failCreateAt int // 1-based create call that fails, 0 never
	failList     error
	creates      int

	// started is signalled and gate awaited on the first write when set.
	started chan struct{}
	gate    chan struct{}
}

func newMemStore(rows ...timetable.Schedule) *memStore {
	s := &memStore{rows: make(map[int64]timetable.Schedule), nextID: 100}
	for _, r := range rows {
		s.rows[r.ID] = r
	}
	return s
}

func (s *memStore) wait() {
	if s.gate == nil {
		return
	}
	if s.started != nil {
		close(s.started)
		s.started = nil
	}
	<-s.gate
}

func (s *memStore) ListSchedules(_ context.Context, sectionID int64) ([]timetable.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failList != nil {
		return nil, s.failList
	}
	var out []timetable.Schedule
	for _, r := range s.rows {
		if r.SectionID == sectionID {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b timetable.Schedule) int { return int(a.ID - b.ID) })
	return out, nil
}

func (s *memStore) CreateSchedule(_ context.Context, req timetable.CreateScheduleRequest) (timetable.Schedule, error) {
	s.wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	s.calls = append(s.calls, "create")
	if s.failCreateAt != 0 && s.creates == s.failCreateAt {
		return timetable.Schedule{}, errStore
	}
	return s.insert(req)
}

func (s *memStore) insert(req timetable.CreateScheduleRequest) (timetable.Schedule, error) {
	for _, r := range s.rows {
		if r.SectionID == req.SectionID && r.DayOfWeek == req.DayOfWeek && r.StartTime == req.StartTime {
			return timetable.Schedule{}, timetable.ErrSlotTaken
		}
	}
	s.nextID++
	row := timetable.Schedule{
		ID:                 s.nextID,
		CourseAssignmentID: req.CourseAssignmentID,
		SectionID:          req.SectionID,
		DayOfWeek:          req.DayOfWeek,
		StartTime:          req.StartTime,
		EndTime:            req.EndTime,
		Classroom:          req.Classroom,
	}
	s.rows[row.ID] = row
	return row, nil
}

func (s *memStore) UpdateSchedule(_ context.Context, req timetable.UpdateScheduleRequest) error {
	s.wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "update")
	if s.failUpdate != nil {
		return s.failUpdate
	}
	row, ok := s.rows[req.ID]
	if !ok {
		return timetable.ErrScheduleNotFound
	}
	for _, r := range s.rows {
		if r.ID != row.ID && r.SectionID == row.SectionID && r.DayOfWeek == req.DayOfWeek && r.StartTime == req.StartTime {
			return timetable.ErrSlotTaken
		}
	}
	row.DayOfWeek, row.StartTime, row.EndTime = req.DayOfWeek, req.StartTime, req.EndTime
	s.rows[req.ID] = row
	return nil
}

func (s *memStore) DeleteSchedule(_ context.Context, req timetable.DeleteScheduleRequest) error {
	s.wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "delete")
	if s.failDelete != nil {
		return s.failDelete
	}
	if _, ok := s.rows[req.ID]; !ok {
		return timetable.ErrScheduleNotFound
	}
	delete(s.rows, req.ID)
	return nil
}

// batchStore adds an all-or-nothing multi-row create.
type batchStore struct {
	*memStore
	failBatch error
}

func (s *batchStore) CreateSchedules(_ context.Context, reqs []timetable.CreateScheduleRequest) ([]timetable.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "create-batch")
	if s.failBatch != nil {
		return nil, s.failBatch
	}
	snapshot := make(map[int64]timetable.Schedule, len(s.rows))
	for k, v := range s.rows {
		snapshot[k] = v
	}
	var out []timetable.Schedule
	for _, req := range reqs {
		row, err := s.insert(req)
		if err != nil {
			s.rows = snapshot
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}
