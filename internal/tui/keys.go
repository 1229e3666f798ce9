package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/javiermolinar/horario/internal/session"
	"github.com/javiermolinar/horario/internal/summary"
	"github.com/javiermolinar/horario/internal/tui/commands"
)

const (
	statusDuration = 3 * time.Second
	errorDuration  = 5 * time.Second
)

// handleKeyMsg dispatches a key press to the handler of the current mode.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case ModePick:
		return m.handlePickMode(msg)
	case ModeMove:
		return m.handleMoveMode(msg)
	case ModePrompt:
		return m.handlePromptMode(msg)
	case ModeModal:
		return m.handleModalMode(msg)
	default:
		return m.handleNormalMode(msg)
	}
}

// handleNavigation moves the cursor and reports whether key was a
// navigation key.
func (m *Model) handleNavigation(key string) bool {
	switch key {
	case "h", "left":
		if m.cursor.Day > 0 {
			m.cursor.Day--
		}
	case "l", "right":
		if m.cursor.Day < len(m.days)-1 {
			m.cursor.Day++
		}
	case "k", "up":
		m.cursor.Row = m.nextClassRow(m.cursor.Row, -1)
	case "j", "down":
		m.cursor.Row = m.nextClassRow(m.cursor.Row, 1)
	case "g", "home":
		m.cursor.Row = m.nextClassRow(-1, 1)
	case "G", "end":
		m.cursor.Row = m.nextClassRow(len(m.rows), -1)
	default:
		return false
	}
	m.scrollToCursor()
	return true
}

func (m Model) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if m.handleNavigation(key) {
		return m, nil
	}

	switch key {
	case "q", "ctrl+c":
		if m.session.State() == session.Dirty {
			return m.openModal(ModalConfirmQuit), nil
		}
		m.quitting = true
		return m, tea.Quit

	case "?":
		return m.openModal(ModalHelp), nil

	case "p":
		return m.startPick()

	case "enter":
		if len(m.cursorCells()) > 0 {
			return m.startMove()
		}
		return m.startPick()

	case "m":
		return m.startMove()

	case "d", "x", "delete":
		return m.removeAtCursor()

	case "u":
		label, err := m.session.Undo()
		if err != nil {
			return m.withError(err)
		}
		return m.withStatus("Undid " + label)

	case "s":
		return m.save()

	case "D":
		if m.session.State() != session.Dirty {
			return m.withStatus("Nothing to discard")
		}
		return m.openModal(ModalConfirmDiscard), nil

	case "i":
		return m, commands.Summarize(m.session)

	case "a":
		if m.newFiller == nil {
			return m.withStatus("Autofill needs an LLM provider, see horario config")
		}
		if m.busy != "" {
			return m.withStatus("Wait for " + m.busy)
		}
		m.mode = ModePrompt
		m.prompt.Reset()
		return m, m.prompt.Focus()

	case "y":
		if err := clipboard.WriteAll(m.plainGrid()); err != nil {
			return m.withError(fmt.Errorf("copying grid: %w", err))
		}
		return m.withStatus("Copied timetable to clipboard")
	}

	return m, nil
}

// startPick opens the class list for the cursor slot.
func (m Model) startPick() (tea.Model, tea.Cmd) {
	if _, _, err := m.cursorSlot(); err != nil {
		return m.withError(err)
	}
	if len(m.session.Assignments()) == 0 {
		return m.withStatus(`No courses yet, add one with "horario assignment add"`)
	}
	m.summary = summary.FromSession(m.session)
	m.pick = firstShort(m.summary)
	m.mode = ModePick
	return m, nil
}

// firstShort is the index of the first assignment still missing minutes.
func firstShort(sum *summary.Summary) int {
	for i, l := range sum.Assignments {
		if l.Status() == summary.StatusShort {
			return i
		}
	}
	return 0
}

func (m Model) handlePickMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.summary.Assignments)
	switch msg.String() {
	case "esc", "q":
		m.mode = ModeNormal
		return m, nil
	case "j", "down", "tab":
		if n > 0 {
			m.pick = (m.pick + 1) % n
		}
	case "k", "up", "shift+tab":
		if n > 0 {
			m.pick = (m.pick - 1 + n) % n
		}
	case "enter", "p":
		if m.pick < 0 || m.pick >= n {
			m.mode = ModeNormal
			return m, nil
		}
		a := m.summary.Assignments[m.pick].Assignment
		m.mode = ModeNormal
		day, slot, err := m.cursorSlot()
		if err != nil {
			return m.withError(err)
		}
		s, err := m.session.Drop(a.ID, day, slot)
		if err != nil {
			return m.withError(err)
		}
		m.log.Debug("placed", zap.String("ref", s.Ref()), zap.String("course", a.CourseName))
		return m.withStatus(fmt.Sprintf("Placed %s on %s %s", a.CourseName, day, slot))
	}
	return m, nil
}

// startMove picks up the class under the cursor.
func (m Model) startMove() (tea.Model, tea.Cmd) {
	cells := m.cursorCells()
	if len(cells) == 0 {
		return m.withStatus("Nothing to move here")
	}
	s := cells[0]
	m.moving = &s
	m.mode = ModeMove
	return m, nil
}

func (m Model) handleMoveMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if m.handleNavigation(key) {
		return m, nil
	}

	switch key {
	case "esc", "q":
		m.mode = ModeNormal
		m.moving = nil
		return m, nil
	case "enter", "m":
		src := *m.moving
		m.mode = ModeNormal
		m.moving = nil
		day, slot, err := m.cursorSlot()
		if err != nil {
			return m.withError(err)
		}
		if _, err := m.session.Move(src.Ref(), day, slot); err != nil {
			return m.withError(err)
		}
		return m.withStatus(fmt.Sprintf("Moved %s to %s %s", m.courseName(src), day, slot))
	}
	return m, nil
}

// removeAtCursor removes the first class in the cursor cell.
func (m Model) removeAtCursor() (tea.Model, tea.Cmd) {
	cells := m.cursorCells()
	if len(cells) == 0 {
		return m.withStatus("Nothing to remove here")
	}
	s := cells[0]
	if err := m.session.Remove(s.Ref()); err != nil {
		return m.withError(err)
	}
	return m.withStatus(fmt.Sprintf("Removed %s from %s %s", m.courseName(s), s.DayOfWeek, s.Slot()))
}

func (m Model) save() (tea.Model, tea.Cmd) {
	if m.busy != "" {
		return m.withStatus("Wait for " + m.busy)
	}
	if m.session.State() != session.Dirty {
		return m.withStatus("Nothing to save")
	}
	m.busy = "saving…"
	return m, commands.Commit(m.ctx, m.committer, m.session)
}

func (m Model) handlePromptMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = ModeNormal
		m.prompt.Blur()
		return m, nil
	case "enter":
		instructions := strings.TrimSpace(m.prompt.Value())
		m.mode = ModeNormal
		m.prompt.Blur()
		f, err := m.newFiller(instructions)
		if err != nil {
			return m.withError(err)
		}
		m.busy = "filling…"
		return m, tea.Batch(
			func() tea.Msg { return commands.FillStartedMsg{} },
			commands.Fill(m.ctx, f, m.session),
		)
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m Model) handleModalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch m.modalType {
	case ModalConfirmQuit:
		switch key {
		case "y", "Y":
			m.quitting = true
			return m.closeModal(), tea.Quit
		case "n", "N", "esc", "q":
			return m.closeModal(), nil
		}
		return m, nil

	case ModalConfirmDiscard:
		switch key {
		case "y", "Y":
			m = m.closeModal()
			if err := m.session.Discard(); err != nil {
				return m.withError(err)
			}
			return m.withStatus("Discarded unsaved changes")
		case "n", "N", "esc", "q":
			return m.closeModal(), nil
		}
		return m, nil

	case ModalFillResult:
		switch key {
		case "r":
			n := 0
			if m.fillResult != nil {
				n = len(m.fillResult.Accepted)
			}
			m = m.closeModal()
			for range n {
				if _, err := m.session.Undo(); err != nil {
					return m.withError(err)
				}
			}
			return m.withStatus(fmt.Sprintf("Rejected %d proposed class(es)", n))
		case "enter", "esc", "q", "s":
			m = m.closeModal()
			if key == "s" {
				return m.save()
			}
			return m, nil
		}
		return m, nil
	}

	switch key {
	case "esc", "q", "enter", "?", "i":
		return m.closeModal(), nil
	case "y":
		if m.modalType == ModalSummary && m.summary != nil {
			if err := clipboard.WriteAll(summaryText(m.summary, m.section)); err != nil {
				return m.withError(fmt.Errorf("copying summary: %w", err))
			}
			return m.withStatus("Copied summary to clipboard")
		}
	}
	return m, nil
}

func (m Model) openModal(t ModalType) Model {
	m.mode = ModeModal
	m.modalType = t
	return m
}

func (m Model) closeModal() Model {
	m.mode = ModeNormal
	m.modalType = ModalNone
	return m
}

// withStatus shows msg and schedules its removal.
func (m Model) withStatus(msg string) (tea.Model, tea.Cmd) {
	m.err = nil
	m.statusMsg = msg
	m.statusTime = time.Now().Add(statusDuration)
	return m, commands.ClearStatusAfter(statusDuration)
}

// withError shows err in the status bar. Conflicts are expected user
// errors and are not logged.
func (m Model) withError(err error) (tea.Model, tea.Cmd) {
	var ce *session.ConflictError
	if !errors.As(err, &ce) {
		m.log.Warn("editor action failed", zap.Error(err))
	}
	m.err = err
	m.statusMsg = "Error: " + err.Error()
	m.statusTime = time.Now().Add(errorDuration)
	return m, commands.ClearStatusAfter(errorDuration)
}

// describeCursor names the cursor slot and what is placed in it.
func (m Model) describeCursor() string {
	day, ok := m.cursorDay()
	if !ok || m.cursor.Row >= len(m.rows) {
		return ""
	}
	row := m.rows[m.cursor.Row]
	desc := fmt.Sprintf("%s %s-%s", day, row.Start, row.End)
	if _, ok := row.Cell(day); !ok {
		return desc + " · no class slot"
	}
	cells := m.cursorCells()
	if len(cells) == 0 {
		return desc + " · free"
	}
	parts := make([]string, 0, len(cells))
	for _, c := range cells {
		name := m.courseName(c)
		if a, ok := m.session.Assignment(c.CourseAssignmentID); ok && a.TeacherName != "" {
			name += " (" + a.TeacherName + ")"
		}
		if c.IsPending {
			name += ", unsaved"
		}
		parts = append(parts, name)
	}
	return desc + " · " + strings.Join(parts, " / ")
}
