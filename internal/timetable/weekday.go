package timetable

import (
	"fmt"
	"strconv"
	"strings"
)

// Weekday identifies a day of the week, 1 = Monday through 7 = Sunday.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// AllWeekdays lists every weekday in order.
var AllWeekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var weekdayNames = [...]string{"", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Valid reports whether d is in 1..7.
func (d Weekday) Valid() bool {
	return d >= Monday && d <= Sunday
}

// String returns the English name of the day.
func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// Short returns the three-letter abbreviation ("Mon").
func (d Weekday) Short() string {
	if !d.Valid() {
		return "???"
	}
	return weekdayNames[d][:3]
}

// index returns the zero-based array position of the day.
func (d Weekday) index() int {
	return int(d) - 1
}

// ParseWeekday accepts "1".."7", full English names and three-letter prefixes.
func ParseWeekday(s string) (Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		d := Weekday(n)
		if !d.Valid() {
			return 0, fmt.Errorf("%w: %d", ErrInvalidWeekday, n)
		}
		return d, nil
	}
	if len(s) >= 3 {
		for _, d := range AllWeekdays {
			name := strings.ToLower(weekdayNames[d])
			if strings.HasPrefix(name, s) {
				return d, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidWeekday, s)
}

// ParseWeekdays parses a comma-separated list of days. Ranges like "1-5" or
// "mon-fri" are expanded.
func ParseWeekdays(s string) ([]Weekday, error) {
	var days []Weekday
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if from, to, ok := strings.Cut(part, "-"); ok {
			first, err := ParseWeekday(from)
			if err != nil {
				return nil, err
			}
			last, err := ParseWeekday(to)
			if err != nil {
				return nil, err
			}
			if last < first {
				return nil, fmt.Errorf("%w: range %q is reversed", ErrInvalidWeekday, part)
			}
			for d := first; d <= last; d++ {
				days = append(days, d)
			}
			continue
		}
		d, err := ParseWeekday(part)
		if err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return NormalizeWeekdays(days), nil
}

// NormalizeWeekdays returns the valid days of the input sorted and without duplicates.
func NormalizeWeekdays(days []Weekday) []Weekday {
	var seen [7]bool
	for _, d := range days {
		if d.Valid() {
			seen[d.index()] = true
		}
	}
	result := make([]Weekday, 0, len(days))
	for i, ok := range seen {
		if ok {
			result = append(result, Weekday(i+1))
		}
	}
	return result
}
