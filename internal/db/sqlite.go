// Package db provides SQLite storage implementation.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/javiermolinar/horario/internal/timetable"
)

// SQLite implements timetable.Repository using SQLite.
type SQLite struct {
	db  *sql.DB
	log *zap.Logger
}

// Option configures a SQLite repository.
type Option func(*SQLite)

// WithLogger logs schedule writes at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(s *SQLite) {
		if l != nil {
			s.log = l.Named("db")
		}
	}
}

var _ timetable.Repository = (*SQLite)(nil)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a new SQLite repository and runs migrations.
func New(path string, opts ...Option) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// A single connection keeps PRAGMA foreign_keys in effect for every query.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &SQLite{db: db, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close releases database resources.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// CreateSection adds a section and sets its ID.
func (s *SQLite) CreateSection(ctx context.Context, sec *timetable.Section) error {
	sec.Name = strings.TrimSpace(sec.Name)
	if sec.Name == "" {
		return timetable.ErrEmptyName
	}

	result, err := s.db.ExecContext(ctx, `INSERT INTO sections (name) VALUES (?)`, sec.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("section %q already exists", sec.Name)
		}
		return fmt.Errorf("inserting section: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	sec.ID = id
	return nil
}

// ListSections returns all sections ordered by name.
func (s *SQLite) ListSections(ctx context.Context) ([]*timetable.Section, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM sections ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying sections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sections []*timetable.Section
	for rows.Next() {
		var sec timetable.Section
		if err := rows.Scan(&sec.ID, &sec.Name); err != nil {
			return nil, fmt.Errorf("scanning section: %w", err)
		}
		sections = append(sections, &sec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sections: %w", err)
	}
	return sections, nil
}

// GetSection returns a section by ID.
func (s *SQLite) GetSection(ctx context.Context, id int64) (*timetable.Section, error) {
	return s.scanSection(s.db.QueryRowContext(ctx, `SELECT id, name FROM sections WHERE id = ?`, id), fmt.Sprint(id))
}

// FindSection returns a section by name.
func (s *SQLite) FindSection(ctx context.Context, name string) (*timetable.Section, error) {
	name = strings.TrimSpace(name)
	return s.scanSection(s.db.QueryRowContext(ctx, `SELECT id, name FROM sections WHERE name = ?`, name), name)
}

func (s *SQLite) scanSection(row *sql.Row, key string) (*timetable.Section, error) {
	var sec timetable.Section
	err := row.Scan(&sec.ID, &sec.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", timetable.ErrSectionNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("querying section: %w", err)
	}
	return &sec, nil
}

// CreateAssignment adds a course assignment, registering its teacher by
// name when no TeacherID is given.
func (s *SQLite) CreateAssignment(ctx context.Context, a *timetable.CourseAssignment) error {
	a.CourseName = strings.TrimSpace(a.CourseName)
	a.TeacherName = strings.TrimSpace(a.TeacherName)
	if a.CourseName == "" {
		return fmt.Errorf("course %w", timetable.ErrEmptyName)
	}
	if a.WeeklyMinutes < 0 {
		return fmt.Errorf("weekly minutes must not be negative, got %d", a.WeeklyMinutes)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := s.scanSection(tx.QueryRowContext(ctx, `SELECT id, name FROM sections WHERE id = ?`, a.SectionID), fmt.Sprint(a.SectionID)); err != nil {
		return err
	}

	if a.TeacherID == 0 {
		if a.TeacherName == "" {
			return fmt.Errorf("teacher %w", timetable.ErrEmptyName)
		}
		id, err := ensureTeacher(ctx, tx, a.TeacherName)
		if err != nil {
			return err
		}
		a.TeacherID = id
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO course_assignments (section_id, teacher_id, course_name, weekly_minutes)
		VALUES (?, ?, ?, ?)
	`, a.SectionID, a.TeacherID, a.CourseName, a.WeeklyMinutes)
	if err != nil {
		return fmt.Errorf("inserting course assignment: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	a.ID = id
	return nil
}

func ensureTeacher(ctx context.Context, q querier, name string) (int64, error) {
	if _, err := q.ExecContext(ctx, `INSERT INTO teachers (name) VALUES (?) ON CONFLICT(name) DO NOTHING`, name); err != nil {
		return 0, fmt.Errorf("inserting teacher: %w", err)
	}
	var id int64
	if err := q.QueryRowContext(ctx, `SELECT id FROM teachers WHERE name = ?`, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("querying teacher: %w", err)
	}
	return id, nil
}

const assignmentColumns = `
	SELECT a.id, a.section_id, a.teacher_id, t.name, a.course_name, a.weekly_minutes
	FROM course_assignments a
	JOIN teachers t ON t.id = a.teacher_id
`

// ListAssignments returns the course assignments of a section ordered by ID.
func (s *SQLite) ListAssignments(ctx context.Context, sectionID int64) ([]*timetable.CourseAssignment, error) {
	rows, err := s.db.QueryContext(ctx, assignmentColumns+` WHERE a.section_id = ? ORDER BY a.id`, sectionID)
	if err != nil {
		return nil, fmt.Errorf("querying course assignments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*timetable.CourseAssignment
	for rows.Next() {
		var a timetable.CourseAssignment
		if err := rows.Scan(&a.ID, &a.SectionID, &a.TeacherID, &a.TeacherName, &a.CourseName, &a.WeeklyMinutes); err != nil {
			return nil, fmt.Errorf("scanning course assignment: %w", err)
		}
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating course assignments: %w", err)
	}
	return out, nil
}

// GetAssignment returns a course assignment by ID.
func (s *SQLite) GetAssignment(ctx context.Context, id int64) (*timetable.CourseAssignment, error) {
	var a timetable.CourseAssignment
	err := s.db.QueryRowContext(ctx, assignmentColumns+` WHERE a.id = ?`, id).
		Scan(&a.ID, &a.SectionID, &a.TeacherID, &a.TeacherName, &a.CourseName, &a.WeeklyMinutes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", timetable.ErrAssignmentNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying course assignment: %w", err)
	}
	return &a, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
