package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javiermolinar/horario/internal/autofill"
	"github.com/javiermolinar/horario/internal/db"
	"github.com/javiermolinar/horario/internal/llm"
	"github.com/javiermolinar/horario/internal/session"
	"github.com/javiermolinar/horario/internal/timetable"
	"github.com/javiermolinar/horario/internal/tui/commands"
)

func init() {
	lipgloss.SetColorProfile(termenv.TrueColor)
}

type fixture struct {
	repo    *db.SQLite
	session *session.Session
	ids     map[string]int64 // course name to assignment ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	repo, err := db.New(filepath.Join(t.TempDir(), "horario.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	sec := &timetable.Section{Name: "1A"}
	require.NoError(t, repo.CreateSection(ctx, sec))

	f := &fixture{repo: repo, ids: make(map[string]int64)}
	for _, a := range []*timetable.CourseAssignment{
		{SectionID: sec.ID, CourseName: "Math", TeacherName: "Ana Ruiz", WeeklyMinutes: 180},
		{SectionID: sec.ID, CourseName: "Art", TeacherName: "Luis Paz", WeeklyMinutes: 90},
	} {
		require.NoError(t, repo.CreateAssignment(ctx, a))
		f.ids[a.CourseName] = a.ID
	}

	f.session, err = session.Load(ctx, repo, sec.ID, session.LoadOptions{})
	require.NoError(t, err)
	return f
}

func (f *fixture) model(t *testing.T, opts ...func(*Options)) Model {
	t.Helper()
	o := Options{Store: f.repo, Session: f.session, SectionName: "1A", Theme: "mocha"}
	for _, opt := range opts {
		opt(&o)
	}
	m, err := New(context.Background(), o)
	require.NoError(t, err)
	return update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok, "Update returned %T", next)
	return model
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
}

// press sends keys in order and returns the model and the last command.
func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(keyMsg(k))
		m = next.(Model)
	}
	return m, cmd
}

// place drops course at the cursor through the pick list.
func place(t *testing.T, m Model, course string) Model {
	t.Helper()
	m, _ = press(t, m, "p")
	require.Equal(t, ModePick, m.mode)
	for i := 0; m.summary.Assignments[m.pick].Assignment.CourseName != course; i++ {
		require.Less(t, i, len(m.summary.Assignments), "course %s not in pick list", course)
		m, _ = press(t, m, "j")
	}
	m, _ = press(t, m, "enter")
	require.Equal(t, ModeNormal, m.mode)
	return m
}

// drain runs cmd and feeds the resulting messages back, expanding batches.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			m = drain(t, m, c)
		}
	case commands.ClearStatusMsg:
	default:
		m = update(t, m, msg)
	}
	return m
}

func TestNew_RequiresSession(t *testing.T) {
	_, err := New(context.Background(), Options{})
	assert.ErrorIs(t, err, session.ErrNoSection)
}

func TestNavigation_SkipsBreakRows(t *testing.T) {
	m := newFixture(t).model(t)
	assert.Equal(t, Position{Day: 0, Row: 0}, m.cursor)
	assert.Equal(t, "Monday 07:00-07:45 · free", m.describeCursor())

	m, _ = press(t, m, "j", "j", "j")
	assert.Equal(t, "09:30", m.rows[m.cursor.Row].Start, "the 09:15 break is skipped")

	m, _ = press(t, m, "k")
	assert.Equal(t, "08:30", m.rows[m.cursor.Row].Start)

	m, _ = press(t, m, "h", "l", "right", "G")
	assert.Equal(t, 2, m.cursor.Day)
	assert.Equal(t, "11:45", m.rows[m.cursor.Row].Start)

	m, _ = press(t, m, "g")
	assert.Equal(t, "07:00", m.rows[m.cursor.Row].Start)

	m, _ = press(t, m, "l", "l", "l", "l", "l")
	assert.Equal(t, len(m.days)-1, m.cursor.Day)
}

func TestPlaceMoveRemoveUndo(t *testing.T) {
	f := newFixture(t)
	m := f.model(t)

	m = place(t, m, "Math")
	cells := m.cursorCells()
	require.Len(t, cells, 1)
	assert.True(t, cells[0].IsPending)
	assert.Equal(t, f.ids["Math"], cells[0].CourseAssignmentID)
	assert.Equal(t, "Placed Math on Monday 07:00-07:45", m.statusMsg)
	assert.Equal(t, session.Dirty, f.session.State())
	assert.Contains(t, m.describeCursor(), "Math (Ana Ruiz), unsaved")

	m, _ = press(t, m, "m")
	require.Equal(t, ModeMove, m.mode)
	m, _ = press(t, m, "l", "enter")
	assert.Equal(t, ModeNormal, m.mode)
	assert.Equal(t, "Moved Math to Tuesday 07:00-07:45", m.statusMsg)
	assert.Empty(t, f.session.Index().At(timetable.Monday, "07:00"))
	assert.Len(t, f.session.Index().At(timetable.Tuesday, "07:00"), 1)

	m, _ = press(t, m, "d")
	assert.Empty(t, m.cursorCells())
	assert.Contains(t, m.statusMsg, "Removed Math from Tuesday")

	m, _ = press(t, m, "u")
	assert.Len(t, m.cursorCells(), 1)
	assert.True(t, strings.HasPrefix(m.statusMsg, "Undid "), m.statusMsg)
}

func TestPlace_OccupiedSlotIsRejected(t *testing.T) {
	f := newFixture(t)
	m := place(t, f.model(t), "Math")

	m = place(t, m, "Art")
	require.Error(t, m.err)
	assert.True(t, session.IsConflict(m.err, session.SlotOccupied), "err = %v", m.err)
	assert.True(t, strings.HasPrefix(m.statusMsg, "Error: "))
	assert.Len(t, m.cursorCells(), 1)
}

func TestMove_EscCancels(t *testing.T) {
	f := newFixture(t)
	m := place(t, f.model(t), "Art")

	m, _ = press(t, m, "enter", "j", "esc")
	assert.Equal(t, ModeNormal, m.mode)
	assert.Nil(t, m.moving)
	assert.Len(t, f.session.Index().At(timetable.Monday, "07:00"), 1)
}

func TestSave(t *testing.T) {
	f := newFixture(t)
	m := place(t, f.model(t), "Math")

	m, cmd := press(t, m, "s")
	assert.Equal(t, "saving…", m.busy)
	m = drain(t, m, cmd)

	assert.Empty(t, m.busy)
	assert.Equal(t, "Saved: 1 created, 0 updated, 0 deleted", m.statusMsg)
	assert.Equal(t, session.Clean, f.session.State())

	stored, err := f.repo.ListSchedules(context.Background(), f.session.SectionID())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "07:00", stored[0].StartTime)

	m, _ = press(t, m, "s")
	assert.Equal(t, "Nothing to save", m.statusMsg)
}

func TestQuit(t *testing.T) {
	f := newFixture(t)

	m, cmd := press(t, f.model(t), "q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	m = place(t, f.model(t), "Math")
	m, cmd = press(t, m, "q")
	assert.Nil(t, cmd)
	assert.Equal(t, ModalConfirmQuit, m.modalType)
	assert.Contains(t, ansi.Strip(m.View()), "Quit without saving?")

	m, _ = press(t, m, "n")
	assert.Equal(t, ModeNormal, m.mode)

	m, cmd = press(t, m, "q", "y")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.quitting)
}

func TestDiscard(t *testing.T) {
	f := newFixture(t)
	m := place(t, f.model(t), "Math")

	m, _ = press(t, m, "D")
	require.Equal(t, ModalConfirmDiscard, m.modalType)
	m, _ = press(t, m, "y")

	assert.Equal(t, session.Clean, f.session.State())
	assert.Empty(t, m.cursorCells())
	assert.Equal(t, "Discarded unsaved changes", m.statusMsg)
}

func TestSummaryModal(t *testing.T) {
	f := newFixture(t)
	m := place(t, f.model(t), "Art")

	m, cmd := press(t, m, "i")
	m = drain(t, m, cmd)
	require.Equal(t, ModalSummary, m.modalType)

	out := ansi.Strip(m.View())
	assert.Contains(t, out, "Weekly load")
	assert.Contains(t, out, "45m/1h30m")

	m, _ = press(t, m, "esc")
	assert.Equal(t, ModalNone, m.modalType)
}

func TestView(t *testing.T) {
	f := newFixture(t)
	m := place(t, f.model(t), "Math")

	out := ansi.Strip(m.View())
	for _, want := range []string{"1A", "1 unsaved change", "Monday", "07:00-07:45", "RECREO", "Math*", "NORMAL"} {
		assert.Contains(t, out, want)
	}

	small := update(t, m, tea.WindowSizeMsg{Width: 20, Height: 5})
	assert.Contains(t, small.View(), "Terminal too small")
}

func TestPlainGrid(t *testing.T) {
	f := newFixture(t)
	m := place(t, f.model(t), "Math")

	lines := strings.Split(m.plainGrid(), "\n")
	assert.Equal(t, "Time\tMonday\tTuesday\tWednesday\tThursday\tFriday", lines[0])
	assert.Equal(t, "07:00-07:45\tMath\t\t\t\t", lines[1])
	assert.Equal(t, "09:15-09:30\tRECREO\t\t\t\t", lines[4])
}

// scriptedClient answers every ChatJSON call with the next reply.
type scriptedClient struct {
	replies []string
}

func (c *scriptedClient) Chat(context.Context, []llm.Message) (string, error) {
	return "", fmt.Errorf("not scripted")
}

func (c *scriptedClient) ChatJSON(_ context.Context, _ []llm.Message, result any) error {
	if len(c.replies) == 0 {
		return fmt.Errorf("no more replies")
	}
	reply := c.replies[0]
	c.replies = c.replies[1:]
	return json.Unmarshal([]byte(reply), result)
}

func TestAutofill(t *testing.T) {
	f := newFixture(t)

	m, _ := press(t, f.model(t), "a")
	assert.Contains(t, m.statusMsg, "Autofill needs an LLM provider")

	client := &scriptedClient{replies: []string{fmt.Sprintf(
		`{"placements":[{"assignment_id":%d,"day":"Monday","start":"07:00"},{"assignment_id":%d,"day":"Tuesday","start":"07:45"}],"warnings":["Fridays left free"]}`,
		f.ids["Math"], f.ids["Art"])}}
	var gotInstructions string
	withFiller := func(o *Options) {
		o.NewFiller = func(instructions string) (*autofill.Filler, error) {
			gotInstructions = instructions
			return autofill.New(client, autofill.Options{SectionName: "1A", Instructions: instructions, MaxRetries: -1}), nil
		}
	}

	m, _ = press(t, f.model(t, withFiller), "a")
	require.Equal(t, ModePrompt, m.mode)
	m, _ = press(t, m, "n", "o", " ", "f", "r", "i")
	m, cmd := press(t, m, "enter")
	assert.Equal(t, "filling…", m.busy)
	m = drain(t, m, cmd)

	assert.Equal(t, "no fri", gotInstructions)
	require.Equal(t, ModalFillResult, m.modalType)
	require.NotNil(t, m.fillResult)
	assert.Len(t, m.fillResult.Accepted, 2)
	out := ansi.Strip(m.View())
	assert.Contains(t, out, "2 class(es) proposed")
	assert.Contains(t, out, "Fridays left free")
	assert.Equal(t, 2, f.session.Counts().Total)

	m, _ = press(t, m, "r")
	assert.Equal(t, ModeNormal, m.mode)
	assert.Equal(t, session.Clean, f.session.State())
	assert.Equal(t, "Rejected 2 proposed class(es)", m.statusMsg)
}

func TestAutofill_NothingToFill(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, func(o *Options) {
		o.NewFiller = func(string) (*autofill.Filler, error) {
			return autofill.New(&scriptedClient{}, autofill.Options{}), nil
		}
	})

	m = update(t, m, commands.ErrMsg{Err: autofill.ErrNothingToFill})
	assert.Nil(t, m.err)
	assert.Contains(t, m.statusMsg, "Nothing to fill")
}
