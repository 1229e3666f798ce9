package timetable

import (
	"errors"
	"slices"
	"testing"
)

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		input string
		want  Weekday
	}{
		{"1", Monday},
		{"7", Sunday},
		{"monday", Monday},
		{"Wed", Wednesday},
		{"  FRIDAY ", Friday},
		{"thurs", Thursday},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseWeekday(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseWeekday(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseWeekday_Errors(t *testing.T) {
	for _, input := range []string{"0", "8", "mo", "", "someday"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseWeekday(input)
			if !errors.Is(err, ErrInvalidWeekday) {
				t.Errorf("ParseWeekday(%q) error = %v, want ErrInvalidWeekday", input, err)
			}
		})
	}
}

func TestParseWeekdays(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Weekday
	}{
		{name: "numeric range", input: "1-5", want: []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}},
		{name: "named range", input: "mon-wed", want: []Weekday{Monday, Tuesday, Wednesday}},
		{name: "list is sorted and unique", input: "fri,1,mon", want: []Weekday{Monday, Friday}},
		{name: "mixed", input: "1-2, sat", want: []Weekday{Monday, Tuesday, Saturday}},
		{name: "empty", input: "", want: []Weekday{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWeekdays(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("ParseWeekdays(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}

	if _, err := ParseWeekdays("5-1"); !errors.Is(err, ErrInvalidWeekday) {
		t.Errorf("reversed range error = %v, want ErrInvalidWeekday", err)
	}
}

func TestWeekdayString(t *testing.T) {
	if got := Tuesday.String(); got != "Tuesday" {
		t.Errorf("String() = %q", got)
	}
	if got := Tuesday.Short(); got != "Tue" {
		t.Errorf("Short() = %q", got)
	}
	if got := Weekday(9).Short(); got != "???" {
		t.Errorf("invalid Short() = %q", got)
	}
}
