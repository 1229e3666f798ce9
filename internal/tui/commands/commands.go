// Package commands provides TUI command constructors and message types.
package commands

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/horario/internal/autofill"
	"github.com/javiermolinar/horario/internal/session"
	"github.com/javiermolinar/horario/internal/summary"
)

// ErrMsg is sent when an error occurs.
type ErrMsg struct {
	Err error
}

// StatusMsgCmd is sent for temporary status messages.
type StatusMsgCmd struct {
	Msg string
}

// ClearStatusMsg is sent to clear the status message.
type ClearStatusMsg struct{}

// CommittedMsg is sent when the session ledger was written to the store.
type CommittedMsg struct {
	Result session.CommitResult
}

// CommitFailedMsg is sent when a commit stopped part way. Pending counts
// the changes that are still unsaved.
type CommitFailedMsg struct {
	Err     error
	Pending int
}

// SummaryMsg carries the load report of the current session.
type SummaryMsg struct {
	Summary *summary.Summary
}

// FillStartedMsg is sent when an autofill request goes out.
type FillStartedMsg struct{}

// FillResultMsg is sent when autofill finished. Accepted placements are
// already pending in the session.
type FillResultMsg struct {
	Result *autofill.Result
}

// Status shows msg in the status bar.
func Status(msg string) tea.Cmd {
	return func() tea.Msg {
		return StatusMsgCmd{Msg: msg}
	}
}

// ClearStatusAfter clears the status bar after d.
func ClearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}

// Commit writes the pending changes of s through c.
func Commit(ctx context.Context, c *session.Committer, s *session.Session) tea.Cmd {
	return func() tea.Msg {
		res, err := c.Commit(ctx, s)
		if err != nil {
			var ce *session.CommitError
			if errors.As(err, &ce) {
				return CommitFailedMsg{Err: err, Pending: ce.Pending}
			}
			return ErrMsg{Err: err}
		}
		return CommittedMsg{Result: res}
	}
}

// Summarize builds the load report of s.
func Summarize(s *session.Session) tea.Cmd {
	return func() tea.Msg {
		return SummaryMsg{Summary: summary.FromSession(s)}
	}
}

// Fill asks f to place the missing classes of s.
func Fill(ctx context.Context, f *autofill.Filler, s *session.Session) tea.Cmd {
	return func() tea.Msg {
		res, err := f.Fill(ctx, s)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return FillResultMsg{Result: res}
	}
}
