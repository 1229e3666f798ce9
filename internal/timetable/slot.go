package timetable

import (
	"fmt"
	"strings"
)

// SlotType classifies a configured ScheduleSlot.
type SlotType string

const (
	SlotBreak    SlotType = "break"
	SlotLunch    SlotType = "lunch"
	SlotActivity SlotType = "activity"
	SlotFree     SlotType = "free"
	SlotClass    SlotType = "class"
	SlotCustom   SlotType = "custom"
)

// Valid returns true if the slot type is a known value.
func (t SlotType) Valid() bool {
	switch t {
	case SlotBreak, SlotLunch, SlotActivity, SlotFree, SlotClass, SlotCustom:
		return true
	default:
		return false
	}
}

// ParseSlotType parses a slot type name, defaulting to break for "".
func ParseSlotType(s string) (SlotType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SlotBreak, nil
	}
	t := SlotType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSlotType, s)
	}
	return t, nil
}

// ScheduleSlot is a configured per-day override such as a break or lunch.
// When IsClass is set the interval still counts as class time and does not
// interrupt slot generation.
type ScheduleSlot struct {
	Start   string   `json:"start" toml:"start"` // "HH:MM"
	End     string   `json:"end" toml:"end"`     // "HH:MM"
	Label   string   `json:"label" toml:"label"`
	Type    SlotType `json:"type" toml:"type"`
	IsClass bool     `json:"isClass" toml:"is_class"`
}

// Duration returns the slot length in minutes.
func (s ScheduleSlot) Duration() int {
	return DurationMinutes(s.Start, s.End)
}

// Overlaps reports whether the slot intersects [start, end).
func (s ScheduleSlot) Overlaps(start, end string) bool {
	return TimesOverlap(s.Start, s.End, start, end)
}

// TimeSlot is a generated, bookable (or break) interval of a day.
type TimeSlot struct {
	Start   string
	End     string
	Label   string
	IsBreak bool
}

// Duration returns the slot length in minutes.
func (s TimeSlot) Duration() int {
	return DurationMinutes(s.Start, s.End)
}

// String renders the slot as "HH:MM-HH:MM".
func (s TimeSlot) String() string {
	return s.Start + "-" + s.End
}
