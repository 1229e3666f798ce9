package seed

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/javiermolinar/horario/internal/timetable"
)

// Export reads every section of src back into a seed document. Applying
// the result to another store reproduces the sections, their stored
// configuration, assignments and placements.
func Export(ctx context.Context, src timetable.Repository) (*File, error) {
	sections, err := src.ListSections(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sections: %w", err)
	}

	f := &File{}
	for _, sec := range sections {
		s, err := exportSection(ctx, src, sec)
		if err != nil {
			return nil, fmt.Errorf("section %q: %w", sec.Name, err)
		}
		f.Sections = append(f.Sections, s)
	}
	return f, nil
}

func exportSection(ctx context.Context, src timetable.Repository, sec *timetable.Section) (Section, error) {
	out := Section{Name: sec.Name}

	cfg, err := src.GetConfig(ctx, sec.ID)
	if err != nil {
		return out, err
	}
	if cfg != nil {
		out.Schedule = fromConfig(cfg)
	}

	assignments, err := src.ListAssignments(ctx, sec.ID)
	if err != nil {
		return out, err
	}
	byID := make(map[int64]*timetable.CourseAssignment, len(assignments))
	courses := make(map[string]int)
	for _, a := range assignments {
		byID[a.ID] = a
		courses[strings.ToLower(a.CourseName)]++
		out.Assignments = append(out.Assignments, Assignment{
			Course:        a.CourseName,
			Teacher:       a.TeacherName,
			WeeklyMinutes: a.WeeklyMinutes,
		})
	}

	schedules, err := src.ListSchedules(ctx, sec.ID)
	if err != nil {
		return out, err
	}
	for _, s := range schedules {
		a, ok := byID[s.CourseAssignmentID]
		if !ok {
			continue
		}
		p := Placement{Course: a.CourseName, Day: s.DayOfWeek.String(), Start: s.StartTime}
		if courses[strings.ToLower(a.CourseName)] > 1 {
			p.Teacher = a.TeacherName
		}
		out.Placements = append(out.Placements, p)
	}
	return out, nil
}

// fromConfig writes every working day's breaks out explicitly; an empty,
// non-nil Breaks list clears the defaults on import.
func fromConfig(cfg *timetable.ScheduleConfig) *Schedule {
	days := make([]string, 0, len(cfg.WorkingDays))
	for _, d := range cfg.WorkingDays {
		days = append(days, d.Short())
	}
	s := &Schedule{
		WorkingDays:   strings.ToLower(strings.Join(days, ",")),
		Start:         cfg.StartTime,
		End:           cfg.EndTime,
		ClassDuration: cfg.ClassDuration,
		Breaks:        []Break{},
	}
	for _, d := range cfg.WorkingDays {
		for _, b := range cfg.BreakSlots.For(d) {
			typ := b.Type
			if typ == "" {
				typ = timetable.SlotBreak
			}
			s.Breaks = append(s.Breaks, Break{
				Days:  strings.ToLower(d.Short()),
				Start: b.Start,
				End:   b.End,
				Label: b.Label,
				Type:  string(typ),
			})
		}
	}
	return s
}

// Marshal encodes a seed document as TOML.
func Marshal(f *File) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(f); err != nil {
		return nil, fmt.Errorf("encoding seed: %w", err)
	}
	return buf.Bytes(), nil
}
