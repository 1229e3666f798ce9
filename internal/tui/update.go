package tui

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/javiermolinar/horario/internal/autofill"
	"github.com/javiermolinar/horario/internal/tui/commands"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.colWidth = m.calculateColWidth()
		m.prompt.Width = max(10, m.width-20)
		m.scrollToCursor()
		return m, nil

	case commands.CommittedMsg:
		m.busy = ""
		r := msg.Result
		if r.Empty() {
			return m.withStatus("Nothing to save")
		}
		return m.withStatus(fmt.Sprintf("Saved: %d created, %d updated, %d deleted", len(r.Created), r.Updated, r.Deleted))

	case commands.CommitFailedMsg:
		m.busy = ""
		next, cmd := m.withError(msg.Err)
		model := next.(Model)
		model.statusMsg = fmt.Sprintf("Save failed, %d change(s) still unsaved: %v", msg.Pending, errors.Unwrap(msg.Err))
		return model, cmd

	case commands.ErrMsg:
		m.busy = ""
		if errors.Is(msg.Err, autofill.ErrNothingToFill) {
			return m.withStatus("Nothing to fill: every course has its minutes or no slot is free")
		}
		return m.withError(msg.Err)

	case commands.StatusMsgCmd:
		return m.withStatus(msg.Msg)

	case commands.ClearStatusMsg:
		if time.Now().After(m.statusTime) {
			m.statusMsg = ""
			m.err = nil
		}
		return m, nil

	case commands.SummaryMsg:
		m.summary = msg.Summary
		return m.openModal(ModalSummary), nil

	case commands.FillStartedMsg:
		m.statusMsg = "Asking the model for placements…"
		return m, nil

	case commands.FillResultMsg:
		m.busy = ""
		m.statusMsg = ""
		m.fillResult = msg.Result
		m.log.Info("autofill finished",
			zap.Int("accepted", len(msg.Result.Accepted)),
			zap.Int("rejected", len(msg.Result.Rejected)),
			zap.Int("attempts", msg.Result.Attempts))
		return m.openModal(ModalFillResult), nil
	}

	if m.mode == ModePrompt {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}
	return m, nil
}
