package timetable

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors.
var (
	ErrInvalidTimeFormat = errors.New("time must be in HH:MM format")
	ErrEndBeforeStart    = errors.New("end time must be after start time")
	ErrInvalidWeekday    = errors.New("invalid weekday")
	ErrInvalidSlotType   = errors.New("invalid slot type")
	ErrEmptyName         = errors.New("name cannot be empty")
)

// Domain errors.
var (
	ErrSlotTaken          = errors.New("time slot already taken in this section")
	ErrScheduleNotFound   = errors.New("schedule not found")
	ErrSectionNotFound    = errors.New("section not found")
	ErrAssignmentNotFound = errors.New("course assignment not found")
)

// Problem is one violated configuration rule.
type Problem struct {
	Field   string  // e.g. "start_time", "class_duration", "break_slots"
	Day     Weekday // 0 when the rule is not tied to a day
	Start   string  // offending interval, empty when not applicable
	End     string
	Message string
}

// String renders the problem as a single user-facing line.
func (p Problem) String() string {
	var sb strings.Builder
	if p.Day.Valid() {
		sb.WriteString(p.Day.String())
		sb.WriteString(" ")
	}
	if p.Start != "" || p.End != "" {
		fmt.Fprintf(&sb, "%s-%s ", p.Start, p.End)
	}
	if sb.Len() > 0 {
		return fmt.Sprintf("%s: %s(%s)", p.Field, sb.String(), p.Message)
	}
	return fmt.Sprintf("%s: %s", p.Field, p.Message)
}

// ConfigurationError reports every rule a ScheduleConfig violates.
type ConfigurationError struct {
	Problems []Problem
}

func (e *ConfigurationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid schedule configuration: " + e.Problems[0].String()
	}
	lines := make([]string, 0, len(e.Problems)+1)
	lines = append(lines, fmt.Sprintf("invalid schedule configuration (%d problems):", len(e.Problems)))
	for _, p := range e.Problems {
		lines = append(lines, "  - "+p.String())
	}
	return strings.Join(lines, "\n")
}

// IsConfigurationError reports whether err wraps a *ConfigurationError.
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}
