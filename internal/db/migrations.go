package db

import "fmt"

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	query := `
		PRAGMA foreign_keys = ON;

		CREATE TABLE IF NOT EXISTS sections (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			name       TEXT NOT NULL UNIQUE COLLATE NOCASE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS teachers (
			id   INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE COLLATE NOCASE
		);

		CREATE TABLE IF NOT EXISTS course_assignments (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			section_id     INTEGER NOT NULL REFERENCES sections(id),
			teacher_id     INTEGER NOT NULL REFERENCES teachers(id),
			course_name    TEXT NOT NULL,
			weekly_minutes INTEGER NOT NULL DEFAULT 0 CHECK(weekly_minutes >= 0)
		);

		CREATE TABLE IF NOT EXISTS schedules (
			id                   INTEGER PRIMARY KEY AUTOINCREMENT,
			section_id           INTEGER NOT NULL REFERENCES sections(id),
			course_assignment_id INTEGER NOT NULL REFERENCES course_assignments(id),
			day_of_week          INTEGER NOT NULL CHECK(day_of_week BETWEEN 1 AND 7),
			start_time           TEXT NOT NULL,
			end_time             TEXT NOT NULL,
			classroom            TEXT,
			created_at           DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(section_id, day_of_week, start_time)
		);

		CREATE TABLE IF NOT EXISTS schedule_configs (
			section_id     INTEGER PRIMARY KEY REFERENCES sections(id),
			working_days   TEXT NOT NULL,
			start_time     TEXT NOT NULL,
			end_time       TEXT NOT NULL,
			class_duration INTEGER NOT NULL,
			break_slots    TEXT NOT NULL DEFAULT '{}',
			updated_at     DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_assignments_section ON course_assignments(section_id);
		CREATE INDEX IF NOT EXISTS idx_schedules_section_day ON schedules(section_id, day_of_week);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating timetable tables: %w", err)
	}

	return nil
}
