package ui

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/javiermolinar/horario/internal/session"
	"github.com/javiermolinar/horario/internal/timetable"
)

func TestLoadBar(t *testing.T) {
	DisableColor()
	defer EnableColor()

	tests := []struct {
		scheduled, target int
		want              string
	}{
		{0, 0, "[··········]"},
		{0, 100, "[░░░░░░░░░░]"},
		{50, 100, "[█████░░░░░]"},
		{100, 100, "[██████████]"},
		{250, 100, "[██████████]"},
	}
	for _, tt := range tests {
		if got := LoadBar(tt.scheduled, tt.target, 10); got != tt.want {
			t.Errorf("LoadBar(%d, %d) = %q, want %q", tt.scheduled, tt.target, got, tt.want)
		}
	}
}

func TestPad(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"Math", 6, "Math  "},
		{"Mathematics", 6, "Mathe…"},
		{"", 3, "   "},
		{"Educación", 9, "Educación"},
	}
	for _, tt := range tests {
		if got := pad(tt.in, tt.width); got != tt.want {
			t.Errorf("pad(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestPrintInsight(t *testing.T) {
	DisableColor()
	defer EnableColor()

	var buf bytes.Buffer
	printInsight(&buf, "```\nBALANCE: uneven\n# Next\n- place Math on Monday morning before the recess\n1. move Art\n```", 30)
	out := buf.String()

	if strings.Contains(out, "```") {
		t.Errorf("code fences not stripped:\n%s", out)
	}
	for _, want := range []string{"  BALANCE: uneven", "  Next", "    • place Math on Monday", "  1. move Art"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		if len([]rune(line)) > 30 {
			t.Errorf("line longer than 30 columns: %q", line)
		}
	}
}

func TestIsNumberedItem(t *testing.T) {
	tests := map[string]bool{
		"1. one":  true,
		"10. ten": true,
		"0. zero": false,
		"1) one":  false,
		"a. b":    false,
		"1.":      false,
	}
	for in, want := range tests {
		if got := isNumberedItem(in); got != want {
			t.Errorf("isNumberedItem(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRenderGrid(t *testing.T) {
	DisableColor()
	defer EnableColor()

	cfg := timetable.DefaultScheduleConfig(1)
	cfg.BreakSlots = cfg.BreakSlots.With(timetable.Wednesday, []timetable.ScheduleSlot{
		{Start: "10:15", End: "11:00", Label: "ASSEMBLY", Type: timetable.SlotActivity},
	})
	s := session.New(session.Options{
		SectionID: 1,
		Config:    cfg,
		Assignments: []*timetable.CourseAssignment{
			{ID: 7, SectionID: 1, TeacherName: "Ana Ruiz", CourseName: "Math", WeeklyMinutes: 180},
		},
		Persisted: []timetable.Schedule{
			{ID: 1, CourseAssignmentID: 7, SectionID: 1, DayOfWeek: timetable.Monday, StartTime: "07:00", EndTime: "07:45"},
		},
	})
	slot, ok := s.Scheduler().FindSlot(timetable.Friday, "11:45")
	if !ok {
		t.Fatal("friday 11:45 slot missing")
	}
	if _, err := s.Drop(7, timetable.Friday, slot); err != nil {
		t.Fatal(err)
	}

	out := renderGrid(s, gridOptions{CellWidth: 10, Plain: true})
	lines := strings.Split(out, "\n")

	if !strings.Contains(lines[0], "Monday") || !strings.Contains(lines[0], "Friday") {
		t.Errorf("header = %q", lines[0])
	}
	var first, recess, pending, assembly bool
	for _, l := range lines {
		switch {
		case strings.HasPrefix(l, "07:00-07:45") && strings.Contains(l, "Math"):
			first = true
		case strings.HasPrefix(l, "09:15-09:30") && strings.Contains(l, "RECREO"):
			recess = true
		case strings.HasPrefix(l, "11:45-12:30") && strings.Contains(l, "Math*"):
			pending = true
		case strings.HasPrefix(l, "10:15-11:00") && strings.Contains(l, "ASSEMBLY"):
			assembly = true
		}
	}
	if !first || !recess || !pending || !assembly {
		t.Errorf("grid rows: first=%v recess=%v pending=%v assembly=%v\n%s", first, recess, pending, assembly, out)
	}
}

func TestRunConfigInteractive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	var out bytes.Buffer
	if err := runConfigInteractive(strings.NewReader("n\n"), &out, path); err != nil {
		t.Fatalf("runConfigInteractive() error = %v", err)
	}
	if !strings.Contains(out.String(), "Created "+path) || !strings.Contains(out.String(), "class_duration   = 45") {
		t.Errorf("output = %q", out.String())
	}

	// edit: days, start, end, duration, then keep the rest
	input := "y\nmonday, tuesday\n08:00\n12:00\n40\n\n\n\n\n\n\n"
	out.Reset()
	if err := runConfigInteractive(strings.NewReader(input), &out, path); err != nil {
		t.Fatalf("editing config: %v\n%s", err, out.String())
	}
	if !strings.Contains(out.String(), "Configuration saved!") {
		t.Errorf("output = %q", out.String())
	}

	out.Reset()
	if err := runConfigInteractive(strings.NewReader("n\n"), &out, path); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"working_days     = monday, tuesday", "day_start        = 08:00", "class_duration   = 40"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("saved config missing %q:\n%s", want, out.String())
		}
	}
}
