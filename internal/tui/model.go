// Package tui is the interactive timetable editor: a week grid over an edit
// session where classes are placed, moved and removed before being saved.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/javiermolinar/horario/internal/autofill"
	"github.com/javiermolinar/horario/internal/scheduler"
	"github.com/javiermolinar/horario/internal/session"
	"github.com/javiermolinar/horario/internal/summary"
	"github.com/javiermolinar/horario/internal/timetable"
	"github.com/javiermolinar/horario/internal/tui/theme"
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModePick        // choosing the class to place in the cursor slot
	ModeMove        // carrying a placed class to another slot
	ModePrompt      // typing autofill instructions
	ModeModal
)

func (m Mode) String() string {
	switch m {
	case ModePick:
		return "PLACE"
	case ModeMove:
		return "MOVE"
	case ModePrompt:
		return "AUTOFILL"
	default:
		return "NORMAL"
	}
}

// ModalType identifies the type of modal.
type ModalType int

const (
	ModalNone ModalType = iota
	ModalHelp
	ModalSummary
	ModalFillResult
	ModalConfirmQuit
	ModalConfirmDiscard
)

// Position is a cursor position in the grid.
type Position struct {
	Day int // index into the working days
	Row int // index into the time axis
}

// Options configures the editor.
type Options struct {
	Store       session.Store
	Session     *session.Session
	SectionName string
	Theme       string
	Logger      *zap.Logger

	// NewFiller builds an autofill run with the user's instructions. Nil
	// disables autofill.
	NewFiller func(instructions string) (*autofill.Filler, error)
}

// Model is the main TUI model.
type Model struct {
	ctx       context.Context
	session   *session.Session
	committer *session.Committer
	newFiller func(string) (*autofill.Filler, error)
	log       *zap.Logger
	section   string

	theme   *theme.Theme
	styles  *Styles
	overlay OverlayModel

	// Grid axes, fixed for the session's configuration.
	days []timetable.Weekday
	rows []scheduler.AxisRow

	cursor    Position
	mode      Mode
	modalType ModalType
	pick      int                 // selected assignment in ModePick
	moving    *timetable.Schedule // class carried in ModeMove
	prompt    textinput.Model

	summary    *summary.Summary
	fillResult *autofill.Result
	busy       string // running background job, empty when idle

	width        int
	height       int
	colWidth     int
	scrollOffset int

	statusMsg  string
	statusTime time.Time
	err        error
	quitting   bool
}

// New creates the editor model for an already loaded session.
func New(ctx context.Context, opts Options) (Model, error) {
	if opts.Session == nil {
		return Model{}, session.ErrNoSection
	}
	if opts.Store == nil {
		return Model{}, errors.New("tui: a store is required")
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	t, err := theme.Load(opts.Theme)
	if err != nil {
		return Model{}, err
	}
	styles := NewStyles(t)

	ti := textinput.New()
	ti.Placeholder = "e.g. keep Fridays light"
	ti.CharLimit = 200
	ti.Prompt = "> "
	ti.TextStyle = styles.PromptStyle

	overlay := NewOverlayModel()
	overlay.SetBackground(styles.Palette().Modal.Bg)

	sched := opts.Session.Scheduler()
	name := opts.SectionName
	if name == "" {
		name = fmt.Sprintf("section %d", opts.Session.SectionID())
	}

	m := Model{
		ctx:       ctx,
		session:   opts.Session,
		committer: session.NewCommitter(opts.Store, log),
		newFiller: opts.NewFiller,
		log:       log.Named("tui"),
		section:   name,
		theme:     t,
		styles:    styles,
		overlay:   overlay,
		days:      sched.Config().WorkingDays,
		rows:      scheduler.BuildAxis(sched.Week()),
		prompt:    ti,
		colWidth:  defaultColWidth,
	}
	m.cursor.Row = m.nextClassRow(-1, 1)
	return m, nil
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Run starts the editor and blocks until the user quits or ctx is done.
func Run(ctx context.Context, opts Options) error {
	m, err := New(ctx, opts)
	if err != nil {
		return err
	}
	m.log.Info("editor opened",
		zap.String("session", opts.Session.ID()),
		zap.Int64("section", opts.Session.SectionID()))

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("running editor: %w", err)
	}
	if fm, ok := final.(Model); ok {
		c := fm.session.Counts()
		fm.log.Info("editor closed", zap.Int("unsaved", c.Total))
	}
	return nil
}
