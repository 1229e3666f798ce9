package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/javiermolinar/horario/internal/timetable"
)

const scheduleColumns = `
	SELECT s.id, s.section_id, s.course_assignment_id, a.teacher_id,
	       s.day_of_week, s.start_time, s.end_time, COALESCE(s.classroom, '')
	FROM schedules s
	JOIN course_assignments a ON a.id = s.course_assignment_id
`

// ListSchedules returns the persisted schedules of a section ordered by day and start.
func (s *SQLite) ListSchedules(ctx context.Context, sectionID int64) ([]timetable.Schedule, error) {
	rows, err := s.db.QueryContext(ctx, scheduleColumns+`
		WHERE s.section_id = ?
		ORDER BY s.day_of_week, s.start_time, s.id
	`, sectionID)
	if err != nil {
		return nil, fmt.Errorf("querying schedules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []timetable.Schedule
	for rows.Next() {
		var sc timetable.Schedule
		if err := rows.Scan(
			&sc.ID, &sc.SectionID, &sc.CourseAssignmentID, &sc.TeacherID,
			&sc.DayOfWeek, &sc.StartTime, &sc.EndTime, &sc.Classroom,
		); err != nil {
			return nil, fmt.Errorf("scanning schedule: %w", err)
		}
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating schedules: %w", err)
	}
	return out, nil
}

// CreateSchedule persists one schedule.
func (s *SQLite) CreateSchedule(ctx context.Context, req timetable.CreateScheduleRequest) (timetable.Schedule, error) {
	created, err := s.CreateSchedules(ctx, []timetable.CreateScheduleRequest{req})
	if err != nil {
		return timetable.Schedule{}, err
	}
	return created[0], nil
}

// CreateSchedules persists several schedules in one transaction. Either all
// rows are stored or none.
func (s *SQLite) CreateSchedules(ctx context.Context, reqs []timetable.CreateScheduleRequest) ([]timetable.Schedule, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	for _, req := range reqs {
		if err := checkPlacement(req.DayOfWeek, req.StartTime, req.EndTime); err != nil {
			return nil, err
		}
	}
	if err := checkBatchOverlap(reqs); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	teachers := make(map[int64]int64)
	for _, req := range reqs {
		teacherID, err := assignmentTeacher(ctx, tx, req.CourseAssignmentID, req.SectionID)
		if err != nil {
			return nil, err
		}
		teachers[req.CourseAssignmentID] = teacherID

		if err := checkOverlapTx(ctx, tx, req.SectionID, req.DayOfWeek, req.StartTime, req.EndTime, 0); err != nil {
			return nil, err
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO schedules (section_id, course_assignment_id, day_of_week, start_time, end_time, classroom)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("preparing statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	out := make([]timetable.Schedule, 0, len(reqs))
	for _, req := range reqs {
		result, err := stmt.ExecContext(ctx,
			req.SectionID,
			req.CourseAssignmentID,
			req.DayOfWeek,
			req.StartTime,
			req.EndTime,
			nullString(req.Classroom),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, fmt.Errorf("%w: %s %s", timetable.ErrSlotTaken, req.DayOfWeek, req.StartTime)
			}
			return nil, fmt.Errorf("inserting schedule: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("getting last insert id: %w", err)
		}
		out = append(out, timetable.Schedule{
			ID:                 id,
			CourseAssignmentID: req.CourseAssignmentID,
			SectionID:          req.SectionID,
			TeacherID:          teachers[req.CourseAssignmentID],
			DayOfWeek:          req.DayOfWeek,
			StartTime:          req.StartTime,
			EndTime:            req.EndTime,
			Classroom:          req.Classroom,
		})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	s.log.Debug("schedules created", zap.Int("count", len(out)), zap.Int64("section", reqs[0].SectionID))
	return out, nil
}

// UpdateSchedule moves a persisted schedule. The schedule's own current
// placement does not count as an overlap.
func (s *SQLite) UpdateSchedule(ctx context.Context, req timetable.UpdateScheduleRequest) error {
	if err := checkPlacement(req.DayOfWeek, req.StartTime, req.EndTime); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var sectionID, assignmentID int64
	err = tx.QueryRowContext(ctx, `SELECT section_id, course_assignment_id FROM schedules WHERE id = ?`, req.ID).
		Scan(&sectionID, &assignmentID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %d", timetable.ErrScheduleNotFound, req.ID)
	}
	if err != nil {
		return fmt.Errorf("querying schedule: %w", err)
	}

	if req.CourseAssignmentID != 0 && req.CourseAssignmentID != assignmentID {
		if _, err := assignmentTeacher(ctx, tx, req.CourseAssignmentID, sectionID); err != nil {
			return err
		}
		assignmentID = req.CourseAssignmentID
	}

	if err := checkOverlapTx(ctx, tx, sectionID, req.DayOfWeek, req.StartTime, req.EndTime, req.ID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE schedules
		SET course_assignment_id = ?, day_of_week = ?, start_time = ?, end_time = ?, classroom = ?
		WHERE id = ?
	`, assignmentID, req.DayOfWeek, req.StartTime, req.EndTime, nullString(req.Classroom), req.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s %s", timetable.ErrSlotTaken, req.DayOfWeek, req.StartTime)
		}
		return fmt.Errorf("updating schedule: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	s.log.Debug("schedule updated", zap.Int64("id", req.ID), zap.Stringer("day", req.DayOfWeek), zap.String("start", req.StartTime))
	return nil
}

// DeleteSchedule removes a persisted schedule.
func (s *SQLite) DeleteSchedule(ctx context.Context, req timetable.DeleteScheduleRequest) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM schedules WHERE id = ?`, req.ID)
	if err != nil {
		return fmt.Errorf("deleting schedule: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %d", timetable.ErrScheduleNotFound, req.ID)
	}
	s.log.Debug("schedule deleted", zap.Int64("id", req.ID))
	return nil
}

func checkPlacement(day timetable.Weekday, start, end string) error {
	if !day.Valid() {
		return fmt.Errorf("%w: %d", timetable.ErrInvalidWeekday, day)
	}
	if err := timetable.ValidateTimeFormat(start); err != nil {
		return err
	}
	if err := timetable.ValidateTimeFormat(end); err != nil {
		return err
	}
	if timetable.TimeToMinutes(end) <= timetable.TimeToMinutes(start) {
		return fmt.Errorf("%w: %s-%s", timetable.ErrEndBeforeStart, start, end)
	}
	return nil
}

// assignmentTeacher returns the teacher of an assignment, checking that the
// assignment belongs to the section.
func assignmentTeacher(ctx context.Context, q querier, assignmentID, sectionID int64) (int64, error) {
	var owner, teacherID int64
	err := q.QueryRowContext(ctx, `SELECT section_id, teacher_id FROM course_assignments WHERE id = ?`, assignmentID).
		Scan(&owner, &teacherID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %d", timetable.ErrAssignmentNotFound, assignmentID)
	}
	if err != nil {
		return 0, fmt.Errorf("querying course assignment: %w", err)
	}
	if owner != sectionID {
		return 0, fmt.Errorf("%w: %d in section %d", timetable.ErrAssignmentNotFound, assignmentID, sectionID)
	}
	return teacherID, nil
}

// checkOverlapTx fails with ErrSlotTaken when a schedule of the section
// intersects [start, end) on day. excludeID skips the schedule being moved.
func checkOverlapTx(ctx context.Context, q querier, sectionID int64, day timetable.Weekday, start, end string, excludeID int64) error {
	var id int64
	var existingStart, existingEnd string
	err := q.QueryRowContext(ctx, `
		SELECT id, start_time, end_time FROM schedules
		WHERE section_id = ? AND day_of_week = ? AND id != ?
		  AND start_time < ? AND end_time > ?
		LIMIT 1
	`, sectionID, day, excludeID, end, start).Scan(&id, &existingStart, &existingEnd)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking overlap: %w", err)
	}
	return fmt.Errorf("%w: %s %s-%s conflicts with schedule %d (%s-%s)",
		timetable.ErrSlotTaken, day, start, end, id, existingStart, existingEnd)
}

// checkBatchOverlap checks for overlaps between requests of the same batch.
func checkBatchOverlap(reqs []timetable.CreateScheduleRequest) error {
	for i := 0; i < len(reqs); i++ {
		for j := i + 1; j < len(reqs); j++ {
			a, b := reqs[i], reqs[j]
			if a.SectionID != b.SectionID || a.DayOfWeek != b.DayOfWeek {
				continue
			}
			if timetable.TimesOverlap(a.StartTime, a.EndTime, b.StartTime, b.EndTime) {
				return fmt.Errorf("%w: %s %s-%s conflicts with %s-%s in the same batch",
					timetable.ErrSlotTaken, a.DayOfWeek, a.StartTime, a.EndTime, b.StartTime, b.EndTime)
			}
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
