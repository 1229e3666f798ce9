package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/javiermolinar/horario/internal/timetable"
)

// Source is the read side of the store a session is loaded from.
type Source interface {
	GetConfig(ctx context.Context, sectionID int64) (*timetable.ScheduleConfig, error)
	ListAssignments(ctx context.Context, sectionID int64) ([]*timetable.CourseAssignment, error)
	ListSchedules(ctx context.Context, sectionID int64) ([]timetable.Schedule, error)
}

// LoadOptions tunes Load.
type LoadOptions struct {
	// Fallback is used when the section has no stored configuration.
	// Nil means timetable.DefaultScheduleConfig.
	Fallback *timetable.ScheduleConfig
	Logger   *zap.Logger
}

// Load builds a clean session for a section from the store.
func Load(ctx context.Context, src Source, sectionID int64, opts LoadOptions) (*Session, error) {
	if sectionID == 0 {
		return nil, ErrNoSection
	}

	cfg, err := src.GetConfig(ctx, sectionID)
	if err != nil {
		return nil, fmt.Errorf("loading schedule config: %w", err)
	}
	if cfg == nil {
		cfg = opts.Fallback
	}

	assignments, err := src.ListAssignments(ctx, sectionID)
	if err != nil {
		return nil, fmt.Errorf("loading course assignments: %w", err)
	}
	persisted, err := src.ListSchedules(ctx, sectionID)
	if err != nil {
		return nil, fmt.Errorf("loading schedules: %w", err)
	}

	s := New(Options{
		SectionID:   sectionID,
		Config:      cfg,
		Assignments: assignments,
		Persisted:   persisted,
		Logger:      opts.Logger,
	})
	if err := s.Scheduler().Err(); err != nil {
		s.log.Warn("stored configuration is invalid, using defaults", zap.Error(err))
	}
	return s, nil
}
