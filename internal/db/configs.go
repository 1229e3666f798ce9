package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/javiermolinar/horario/internal/timetable"
)

// GetConfig returns the stored configuration of a section, or nil when the
// section was never configured. Break slots stored in the legacy flat array
// format are expanded onto every working day.
func (s *SQLite) GetConfig(ctx context.Context, sectionID int64) (*timetable.ScheduleConfig, error) {
	var (
		cfg         timetable.ScheduleConfig
		workingDays string
		breakSlots  string
		updatedAt   string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT section_id, working_days, start_time, end_time, class_duration, break_slots, updated_at
		FROM schedule_configs
		WHERE section_id = ?
	`, sectionID).Scan(&cfg.SectionID, &workingDays, &cfg.StartTime, &cfg.EndTime, &cfg.ClassDuration, &breakSlots, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying schedule config: %w", err)
	}

	if err := json.Unmarshal([]byte(workingDays), &cfg.WorkingDays); err != nil {
		return nil, fmt.Errorf("parsing working days: %w", err)
	}
	cfg.WorkingDays = timetable.NormalizeWeekdays(cfg.WorkingDays)

	cfg.BreakSlots, err = timetable.NormalizeBreakSlots([]byte(breakSlots), cfg.WorkingDays)
	if err != nil {
		return nil, err
	}

	cfg.UpdatedAt, err = parseTimestamp(updatedAt)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveConfig validates and replaces the configuration of a section.
func (s *SQLite) SaveConfig(ctx context.Context, req timetable.SaveConfigRequest) error {
	cfg := req.Config.Clone()
	cfg.WorkingDays = timetable.NormalizeWeekdays(cfg.WorkingDays)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if _, err := s.GetSection(ctx, cfg.SectionID); err != nil {
		return err
	}

	workingDays, err := json.Marshal(cfg.WorkingDays)
	if err != nil {
		return fmt.Errorf("encoding working days: %w", err)
	}
	breakSlots, err := json.Marshal(cfg.BreakSlots)
	if err != nil {
		return fmt.Errorf("encoding break slots: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO schedule_configs (section_id, working_days, start_time, end_time, class_duration, break_slots, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(section_id) DO UPDATE SET
			working_days = excluded.working_days,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			class_duration = excluded.class_duration,
			break_slots = excluded.break_slots,
			updated_at = excluded.updated_at
	`, cfg.SectionID, string(workingDays), cfg.StartTime, cfg.EndTime, cfg.ClassDuration, string(breakSlots),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("saving schedule config: %w", err)
	}
	return nil
}

// parseTimestamp accepts the formats SQLite and the driver may hand back.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05Z",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse timestamp: %s", s)
}
