package commands

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/javiermolinar/horario/internal/db"
	"github.com/javiermolinar/horario/internal/session"
	"github.com/javiermolinar/horario/internal/summary"
	"github.com/javiermolinar/horario/internal/timetable"
)

func openSession(t *testing.T) (*db.SQLite, *session.Session) {
	t.Helper()
	ctx := context.Background()

	repo, err := db.New(filepath.Join(t.TempDir(), "horario.db"))
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	sec := &timetable.Section{Name: "1A"}
	if err := repo.CreateSection(ctx, sec); err != nil {
		t.Fatalf("CreateSection: %v", err)
	}
	a := &timetable.CourseAssignment{SectionID: sec.ID, CourseName: "Math", TeacherName: "Ana", WeeklyMinutes: 90}
	if err := repo.CreateAssignment(ctx, a); err != nil {
		t.Fatalf("CreateAssignment: %v", err)
	}

	s, err := session.Load(ctx, repo, sec.ID, session.LoadOptions{})
	if err != nil {
		t.Fatalf("session.Load: %v", err)
	}
	return repo, s
}

func drop(t *testing.T, s *session.Session, day timetable.Weekday, start string) {
	t.Helper()
	slot, ok := s.Scheduler().FindSlot(day, start)
	if !ok {
		t.Fatalf("no slot %s %s", day, start)
	}
	a := s.Assignments()[0]
	if _, err := s.Drop(a.ID, day, slot); err != nil {
		t.Fatalf("Drop: %v", err)
	}
}

func TestCommit(t *testing.T) {
	repo, s := openSession(t)
	drop(t, s, timetable.Monday, "07:00")
	drop(t, s, timetable.Tuesday, "07:45")

	msg := Commit(context.Background(), session.NewCommitter(repo, nil), s)()
	committed, ok := msg.(CommittedMsg)
	if !ok {
		t.Fatalf("Commit() msg = %T (%v), want CommittedMsg", msg, msg)
	}
	if got := len(committed.Result.Created); got != 2 {
		t.Errorf("created = %d, want 2", got)
	}
	if s.State() != session.Clean {
		t.Errorf("state after commit = %s, want clean", s.State())
	}

	stored, err := repo.ListSchedules(context.Background(), s.SectionID())
	if err != nil {
		t.Fatalf("ListSchedules: %v", err)
	}
	if len(stored) != 2 {
		t.Errorf("stored schedules = %d, want 2", len(stored))
	}
}

func TestCommit_StoreFailure(t *testing.T) {
	repo, s := openSession(t)
	drop(t, s, timetable.Monday, "07:00")
	_ = repo.Close()

	msg := Commit(context.Background(), session.NewCommitter(repo, nil), s)()
	failed, ok := msg.(CommitFailedMsg)
	if !ok {
		t.Fatalf("Commit() msg = %T, want CommitFailedMsg", msg)
	}
	if failed.Pending != 1 {
		t.Errorf("pending = %d, want 1", failed.Pending)
	}
	var ce *session.CommitError
	if !errors.As(failed.Err, &ce) {
		t.Errorf("err = %v, want a CommitError", failed.Err)
	}
}

func TestSummarize(t *testing.T) {
	_, s := openSession(t)
	drop(t, s, timetable.Monday, "07:00")

	msg := Summarize(s)()
	sm, ok := msg.(SummaryMsg)
	if !ok {
		t.Fatalf("Summarize() msg = %T, want SummaryMsg", msg)
	}
	if len(sm.Summary.Assignments) != 1 {
		t.Fatalf("assignments = %d, want 1", len(sm.Summary.Assignments))
	}
	load := sm.Summary.Assignments[0]
	if load.Scheduled != 45 || load.Status() != summary.StatusShort {
		t.Errorf("load = %d minutes (%s), want 45 minutes short", load.Scheduled, load.Status())
	}
}

func TestStatus(t *testing.T) {
	msg := Status("saved")()
	if got, ok := msg.(StatusMsgCmd); !ok || got.Msg != "saved" {
		t.Errorf("Status() msg = %#v", msg)
	}
}
