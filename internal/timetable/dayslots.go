package timetable

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
)

// DaySlots holds the configured override slots of every weekday. It is
// indexed by weekday so a day without overrides is simply an empty list.
// Values are treated as immutable: every update returns a new DaySlots.
type DaySlots [7][]ScheduleSlot

// InitializeForDays seeds every given day with its own copy of defaults.
func InitializeForDays(days []Weekday, defaults []ScheduleSlot) DaySlots {
	var ds DaySlots
	return ds.ApplyTo(days, defaults)
}

// For returns a copy of the slots configured for day. Unknown days yield nil.
func (ds DaySlots) For(day Weekday) []ScheduleSlot {
	if !day.Valid() {
		return nil
	}
	return slices.Clone(ds[day.index()])
}

// With returns a copy of ds where only day's entry is replaced by slots.
func (ds DaySlots) With(day Weekday, slots []ScheduleSlot) DaySlots {
	if !day.Valid() {
		return ds
	}
	ds[day.index()] = sortedSlots(slots)
	return ds
}

// ApplyTo copies one slot list to many days ("copy to all days").
func (ds DaySlots) ApplyTo(days []Weekday, slots []ScheduleSlot) DaySlots {
	for _, d := range days {
		ds = ds.With(d, slots)
	}
	return ds
}

// IsEmpty reports whether no day has overrides.
func (ds DaySlots) IsEmpty() bool {
	for _, slots := range ds {
		if len(slots) > 0 {
			return false
		}
	}
	return true
}

// Equal reports whether both values hold the same slots for every day.
func (ds DaySlots) Equal(other DaySlots) bool {
	for i := range ds {
		if !slices.Equal(ds[i], other[i]) {
			return false
		}
	}
	return true
}

func sortedSlots(slots []ScheduleSlot) []ScheduleSlot {
	if len(slots) == 0 {
		return nil
	}
	out := slices.Clone(slots)
	slices.SortStableFunc(out, func(a, b ScheduleSlot) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		default:
			return 0
		}
	})
	return out
}

// MarshalJSON encodes the slots as an object keyed by day number ("1".."7").
func (ds DaySlots) MarshalJSON() ([]byte, error) {
	m := make(map[string][]ScheduleSlot)
	for i, slots := range ds {
		if len(slots) > 0 {
			m[strconv.Itoa(i+1)] = slots
		}
	}
	return json.Marshal(m)
}

// UnmarshalJSON accepts the per-day object and the legacy flat array, which
// is applied to every day.
func (ds *DaySlots) UnmarshalJSON(data []byte) error {
	parsed, err := NormalizeBreakSlots(data, AllWeekdays)
	if err != nil {
		return err
	}
	*ds = parsed
	return nil
}

// NormalizeBreakSlots converts a raw breakSlots document into DaySlots.
// A flat JSON array (legacy format) is applied to every working day. An object
// may be keyed by day number or weekday name. Empty input yields no overrides.
func NormalizeBreakSlots(raw []byte, workingDays []Weekday) (DaySlots, error) {
	var ds DaySlots
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ds, nil
	}

	switch raw[0] {
	case '[':
		var flat []ScheduleSlot
		if err := json.Unmarshal(raw, &flat); err != nil {
			return ds, fmt.Errorf("parsing break slots: %w", err)
		}
		return ds.ApplyTo(workingDays, flat), nil
	case '{':
		var byDay map[string][]ScheduleSlot
		if err := json.Unmarshal(raw, &byDay); err != nil {
			return ds, fmt.Errorf("parsing break slots: %w", err)
		}
		return DaySlotsFromMap(byDay)
	default:
		return ds, fmt.Errorf("parsing break slots: unexpected %q", raw[0])
	}
}

// DaySlotsFromMap builds DaySlots from a map keyed by day number or name.
func DaySlotsFromMap(byDay map[string][]ScheduleSlot) (DaySlots, error) {
	var ds DaySlots
	for key, slots := range byDay {
		day, err := ParseWeekday(key)
		if err != nil {
			return ds, fmt.Errorf("break slots: %w", err)
		}
		slots = slices.Clone(slots)
		for i := range slots {
			if slots[i].Type == "" {
				slots[i].Type = SlotBreak
			}
		}
		ds = ds.With(day, slots)
	}
	return ds, nil
}
