package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/javiermolinar/horario/internal/session"
	"github.com/javiermolinar/horario/internal/timetable"
)

// currentSection resolves --section as an ID or a name.
func (a *App) currentSection(ctx context.Context) (*timetable.Section, error) {
	ref := strings.TrimSpace(a.section)
	if ref == "" {
		return nil, fmt.Errorf("%w: pass --section NAME", session.ErrNoSection)
	}
	if err := a.ensureRepo(); err != nil {
		return nil, err
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		sec, err := a.repo.GetSection(ctx, id)
		if err == nil {
			return sec, nil
		}
		if !errors.Is(err, timetable.ErrSectionNotFound) {
			return nil, err
		}
		// a section may be named "1"
	}
	return a.repo.FindSection(ctx, ref)
}

// loadSession opens an edit session for --section.
func (a *App) loadSession(ctx context.Context) (*timetable.Section, *session.Session, error) {
	sec, err := a.currentSection(ctx)
	if err != nil {
		return nil, nil, err
	}
	s, err := session.Load(ctx, a.repo, sec.ID, session.LoadOptions{
		Fallback: a.sectionDefaults(sec.ID),
		Logger:   a.log,
	})
	if err != nil {
		return nil, nil, err
	}
	return sec, s, nil
}

// findAssignment matches ref against assignment IDs, then course names.
func findAssignment(list []*timetable.CourseAssignment, ref string) (*timetable.CourseAssignment, error) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		for _, a := range list {
			if a.ID == id {
				return a, nil
			}
		}
	}
	var match *timetable.CourseAssignment
	for _, a := range list {
		if strings.EqualFold(a.CourseName, ref) {
			if match != nil {
				return nil, fmt.Errorf("course %q has several assignments, use the assignment ID", ref)
			}
			match = a
		}
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", timetable.ErrAssignmentNotFound, ref)
	}
	return match, nil
}

// resolveSlot finds the generated slot of day starting at start.
func resolveSlot(s *session.Session, dayArg, start string) (timetable.Weekday, timetable.TimeSlot, error) {
	day, err := timetable.ParseWeekday(dayArg)
	if err != nil {
		return 0, timetable.TimeSlot{}, err
	}
	if err := timetable.ValidateTimeFormat(start); err != nil {
		return 0, timetable.TimeSlot{}, fmt.Errorf("start %q: %w", start, err)
	}
	slot, ok := s.Scheduler().FindSlot(day, start)
	if !ok {
		if !s.Scheduler().IsWorkday(day) {
			return 0, timetable.TimeSlot{}, fmt.Errorf("%s is not a working day", day)
		}
		return 0, timetable.TimeSlot{}, fmt.Errorf("no slot starts at %s on %s", start, day)
	}
	return day, slot, nil
}

func resolvePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("empty path")
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	return absPath, nil
}
