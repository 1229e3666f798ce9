package summary

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javiermolinar/horario/internal/llm"
	"github.com/javiermolinar/horario/internal/session"
	"github.com/javiermolinar/horario/internal/timetable"
)

var testAssignments = []*timetable.CourseAssignment{
	{ID: 7, SectionID: 1, TeacherID: 1, TeacherName: "Ana", CourseName: "Math", WeeklyMinutes: 180},
	{ID: 9, SectionID: 1, TeacherID: 2, TeacherName: "Luis", CourseName: "History", WeeklyMinutes: 90},
	{ID: 11, SectionID: 1, TeacherID: 1, TeacherName: "Ana", CourseName: "Art"},
}

func placed(id, assignmentID int64, day timetable.Weekday, start, end string) timetable.Schedule {
	return timetable.Schedule{
		ID:                 id,
		CourseAssignmentID: assignmentID,
		SectionID:          1,
		DayOfWeek:          day,
		StartTime:          start,
		EndTime:            end,
	}
}

func testPersisted() []timetable.Schedule {
	return []timetable.Schedule{
		placed(1, 7, timetable.Monday, "07:00", "07:45"),
		placed(2, 7, timetable.Tuesday, "07:00", "07:45"),
		placed(3, 9, timetable.Monday, "07:45", "08:30"),
		placed(4, 9, timetable.Wednesday, "07:00", "07:45"),
		placed(5, 9, timetable.Thursday, "07:00", "07:45"),
		placed(6, 99, timetable.Friday, "07:00", "07:45"),
	}
}

func testSession() *session.Session {
	return session.New(session.Options{
		SectionID:   1,
		Assignments: testAssignments,
		Persisted:   testPersisted(),
	})
}

type fakeSource struct {
	cfg     *timetable.ScheduleConfig
	listErr error
}

func (f *fakeSource) GetConfig(context.Context, int64) (*timetable.ScheduleConfig, error) {
	return f.cfg, nil
}

func (f *fakeSource) ListAssignments(context.Context, int64) ([]*timetable.CourseAssignment, error) {
	return testAssignments, nil
}

func (f *fakeSource) ListSchedules(context.Context, int64) ([]timetable.Schedule, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return testPersisted(), nil
}

type fakeClient struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeClient) Chat(_ context.Context, messages []llm.Message) (string, error) {
	f.prompt = messages[len(messages)-1].Content
	return f.reply, f.err
}

func (f *fakeClient) ChatJSON(context.Context, []llm.Message, any) error {
	return errors.New("not used")
}

func TestSummarize_AssignmentLoads(t *testing.T) {
	sum := FromSession(testSession())

	require.Len(t, sum.Assignments, 3)
	math, history, art := sum.Assignments[0], sum.Assignments[1], sum.Assignments[2]

	assert.Equal(t, 90, math.Scheduled)
	assert.Equal(t, 90, math.Missing())
	assert.Equal(t, StatusShort, math.Status())
	assert.Len(t, math.Placements, 2)

	assert.Equal(t, 135, history.Scheduled)
	assert.Equal(t, 0, history.Missing())
	assert.Equal(t, StatusOver, history.Status())

	assert.Equal(t, StatusUntracked, art.Status())

	scheduled, target := sum.Totals()
	assert.Equal(t, 225, scheduled)
	assert.Equal(t, 270, target)
}

func TestSummarize_Teachers(t *testing.T) {
	sum := FromSession(testSession())

	require.Len(t, sum.Teachers, 2)
	assert.Equal(t, TeacherLoad{TeacherID: 1, Name: "Ana", Courses: 2, Scheduled: 90, Target: 180}, sum.Teachers[0])
	assert.Equal(t, TeacherLoad{TeacherID: 2, Name: "Luis", Courses: 1, Scheduled: 135, Target: 90}, sum.Teachers[1])
}

func TestSummarize_FreeSlots(t *testing.T) {
	sum := FromSession(testSession())

	// Default week: five days of seven class slots, six of them taken.
	assert.Len(t, sum.Free, 29)

	monday := sum.FreeOn(timetable.Monday)
	require.Len(t, monday, 5)
	assert.Equal(t, "08:30", monday[0].Start)
	for _, slot := range monday {
		assert.False(t, slot.IsBreak)
	}
	assert.Empty(t, sum.FreeOn(timetable.Saturday))
}

func TestSummarize_OrphansAndShort(t *testing.T) {
	sum := FromSession(testSession())

	require.Len(t, sum.Orphans, 1)
	assert.Equal(t, int64(99), sum.Orphans[0].CourseAssignmentID)
	assert.Empty(t, sum.Issues)

	short := sum.Short()
	require.Len(t, short, 1)
	assert.Equal(t, "Math", short[0].Assignment.CourseName)
}

func TestSummarize_IncludesPendingChanges(t *testing.T) {
	s := testSession()
	slot, ok := s.Scheduler().FindSlot(timetable.Friday, "07:45")
	require.True(t, ok)
	_, err := s.Drop(7, timetable.Friday, slot)
	require.NoError(t, err)

	sum := FromSession(s)
	assert.Equal(t, 135, sum.Assignments[0].Scheduled)
	assert.Len(t, sum.Free, 28)
}

func TestLoadLines(t *testing.T) {
	lines := FromSession(testSession()).LoadLines()
	require.Len(t, lines, 3)
	assert.Equal(t, llm.LoadLine{Course: "Math", Teacher: "Ana", Scheduled: 90, Target: 180}, lines[0])
}

func TestBuild(t *testing.T) {
	sum, err := Build(context.Background(), &fakeSource{}, 1, BuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), sum.SectionID)
	assert.Equal(t, 45, sum.ClassDuration)
	assert.Empty(t, sum.Insight)
}

func TestBuild_Errors(t *testing.T) {
	_, err := Build(context.Background(), &fakeSource{}, 0, BuildOptions{})
	assert.ErrorIs(t, err, session.ErrNoSection)

	boom := errors.New("disk gone")
	_, err = Build(context.Background(), &fakeSource{listErr: boom}, 1, BuildOptions{})
	assert.ErrorIs(t, err, boom)

	_, err = Build(context.Background(), &fakeSource{}, 1, BuildOptions{IncludeInsight: true})
	assert.ErrorContains(t, err, "LLM client is required")
}

func TestBuild_Insight(t *testing.T) {
	client := &fakeClient{reply: "BALANCE: Math short"}
	sum, err := Build(context.Background(), &fakeSource{}, 1, BuildOptions{
		SectionName:    "1A",
		IncludeInsight: true,
		Client:         client,
	})
	require.NoError(t, err)
	assert.Equal(t, "BALANCE: Math short", sum.Insight)
	assert.Contains(t, client.prompt, "Section: 1A")
	assert.Contains(t, client.prompt, "Free class slots: 29")

	_, err = Build(context.Background(), &fakeSource{}, 1, BuildOptions{
		IncludeInsight: true,
		Client:         &fakeClient{err: errors.New("offline")},
	})
	assert.ErrorContains(t, err, "evaluating load")
}
