// Package seed imports sections, course assignments, schedule
// configurations and initial placements from a TOML file.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"github.com/javiermolinar/horario/internal/session"
	"github.com/javiermolinar/horario/internal/timetable"
)

// File is the root of a seed document.
type File struct {
	Sections []Section `toml:"sections" validate:"min=1,dive"`
}

// Section describes one section and everything placed in it.
type Section struct {
	Name        string       `toml:"name" validate:"required"`
	Schedule    *Schedule    `toml:"schedule,omitempty"`
	Assignments []Assignment `toml:"assignments,omitempty" validate:"dive"`
	Placements  []Placement  `toml:"placements,omitempty" validate:"dive"`
}

// Schedule overrides the section's default week. Empty fields keep the default.
type Schedule struct {
	WorkingDays   string  `toml:"working_days"` // e.g. "mon-fri" or "1,2,3"
	Start         string  `toml:"start" validate:"omitempty,datetime=15:04"`
	End           string  `toml:"end" validate:"omitempty,datetime=15:04"`
	ClassDuration int     `toml:"class_duration" validate:"omitempty,min=1,max=240"`
	Breaks        []Break `toml:"breaks" validate:"dive"`
}

// Break is a non-class interval applied to a set of days.
type Break struct {
	Days  string `toml:"days" validate:"required"`
	Start string `toml:"start" validate:"required,datetime=15:04"`
	End   string `toml:"end" validate:"required,datetime=15:04"`
	Label string `toml:"label"`
	Type  string `toml:"type" validate:"omitempty,oneof=break lunch activity free class custom"`
}

// Assignment is a (teacher, course) pair of the section.
type Assignment struct {
	Course        string `toml:"course" validate:"required"`
	Teacher       string `toml:"teacher" validate:"required"`
	WeeklyMinutes int    `toml:"weekly_minutes" validate:"min=0"`
}

// Placement puts a course into the class slot starting at Start.
type Placement struct {
	Course  string `toml:"course" validate:"required"`
	Teacher string `toml:"teacher,omitempty"` // only needed when several teachers share the course
	Day     string `toml:"day" validate:"required"`
	Start   string `toml:"start" validate:"required,datetime=15:04"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Parse decodes and validates a seed document. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	var f File
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("parsing seed: %s", strict.String())
		}
		return nil, fmt.Errorf("parsing seed: %w", err)
	}
	if err := validate.Struct(&f); err != nil {
		return nil, fmt.Errorf("invalid seed: %w", err)
	}
	return &f, nil
}

// Load reads a seed file from disk.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	return Parse(data)
}

// Report counts what Apply changed.
type Report struct {
	SectionsCreated int
	SectionsReused  int
	Assignments     int
	Configs         int
	Placements      int
}

// Options tunes Apply.
type Options struct {
	// Defaults returns the configuration a section starts from before the
	// seed's schedule is applied. Nil means timetable.DefaultScheduleConfig.
	Defaults func(sectionID int64) *timetable.ScheduleConfig
	Logger   *zap.Logger
}

// Apply writes the seed into the repository. Sections are matched by name
// and assignments by course and teacher, so applying the same file twice
// only adds what is missing. Placements go through an edit session and are
// committed per section.
func Apply(ctx context.Context, repo timetable.Repository, f *File, opts Options) (Report, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	defaults := opts.Defaults
	if defaults == nil {
		defaults = timetable.DefaultScheduleConfig
	}

	var rep Report
	for _, s := range f.Sections {
		if err := applySection(ctx, repo, s, defaults, log, &rep); err != nil {
			return rep, fmt.Errorf("section %q: %w", s.Name, err)
		}
	}
	return rep, nil
}

func applySection(ctx context.Context, repo timetable.Repository, s Section, defaults func(int64) *timetable.ScheduleConfig, log *zap.Logger, rep *Report) error {
	sec, err := repo.FindSection(ctx, s.Name)
	switch {
	case errors.Is(err, timetable.ErrSectionNotFound):
		sec = &timetable.Section{Name: s.Name}
		if err := repo.CreateSection(ctx, sec); err != nil {
			return err
		}
		rep.SectionsCreated++
	case err != nil:
		return err
	default:
		rep.SectionsReused++
	}

	if s.Schedule != nil {
		cfg, err := s.Schedule.toConfig(defaults(sec.ID))
		if err != nil {
			return err
		}
		if err := repo.SaveConfig(ctx, timetable.SaveConfigRequest{Config: *cfg}); err != nil {
			return err
		}
		rep.Configs++
	}

	existing, err := repo.ListAssignments(ctx, sec.ID)
	if err != nil {
		return err
	}
	for _, a := range s.Assignments {
		if findAssignment(existing, a.Course, a.Teacher) != nil {
			continue
		}
		ca := &timetable.CourseAssignment{
			SectionID:     sec.ID,
			TeacherName:   a.Teacher,
			CourseName:    a.Course,
			WeeklyMinutes: a.WeeklyMinutes,
		}
		if err := repo.CreateAssignment(ctx, ca); err != nil {
			return fmt.Errorf("assignment %s/%s: %w", a.Course, a.Teacher, err)
		}
		existing = append(existing, ca)
		rep.Assignments++
	}

	if len(s.Placements) == 0 {
		return nil
	}
	n, err := place(ctx, repo, sec, s.Placements, defaults(sec.ID), log)
	rep.Placements += n
	return err
}

func place(ctx context.Context, repo timetable.Repository, sec *timetable.Section, placements []Placement, fallback *timetable.ScheduleConfig, log *zap.Logger) (int, error) {
	sess, err := session.Load(ctx, repo, sec.ID, session.LoadOptions{Fallback: fallback, Logger: log})
	if err != nil {
		return 0, err
	}
	for i, p := range placements {
		if err := dropPlacement(sess, p); err != nil {
			return 0, fmt.Errorf("placement %d (%s %s %s): %w", i+1, p.Course, p.Day, p.Start, err)
		}
	}
	res, err := session.NewCommitter(repo, log).Commit(ctx, sess)
	return len(res.Created), err
}

func dropPlacement(sess *session.Session, p Placement) error {
	var match *timetable.CourseAssignment
	for _, a := range sess.Assignments() {
		if strings.EqualFold(a.CourseName, strings.TrimSpace(p.Course)) &&
			(p.Teacher == "" || strings.EqualFold(a.TeacherName, strings.TrimSpace(p.Teacher))) {
			if match != nil {
				return fmt.Errorf("course %q is taught by more than one teacher", p.Course)
			}
			match = a
		}
	}
	if match == nil {
		return fmt.Errorf("unknown course %q", p.Course)
	}

	day, err := timetable.ParseWeekday(p.Day)
	if err != nil {
		return err
	}
	slot, ok := sess.Scheduler().FindSlot(day, p.Start)
	if !ok {
		return fmt.Errorf("no slot starts at %s on %s", p.Start, day)
	}
	existing := sess.Index().At(day, slot.Start)
	for _, e := range existing {
		if e.CourseAssignmentID == match.ID && !e.IsTemp() {
			// already stored by an earlier import
			return nil
		}
	}
	_, err = sess.Drop(match.ID, day, slot)
	return err
}

func findAssignment(list []*timetable.CourseAssignment, course, teacher string) *timetable.CourseAssignment {
	for _, a := range list {
		if strings.EqualFold(a.CourseName, course) && strings.EqualFold(a.TeacherName, teacher) {
			return a
		}
	}
	return nil
}

func (s *Schedule) toConfig(base *timetable.ScheduleConfig) (*timetable.ScheduleConfig, error) {
	cfg := base.Clone()
	if s.WorkingDays != "" {
		days, err := timetable.ParseWeekdays(s.WorkingDays)
		if err != nil {
			return nil, err
		}
		cfg.WorkingDays = days
		// keep the default breaks only on the remaining working days
		var kept timetable.DaySlots
		for _, d := range days {
			kept = kept.With(d, cfg.BreakSlots.For(d))
		}
		cfg.BreakSlots = kept
	}
	if s.Start != "" {
		cfg.StartTime = s.Start
	}
	if s.End != "" {
		cfg.EndTime = s.End
	}
	if s.ClassDuration != 0 {
		cfg.ClassDuration = s.ClassDuration
	}

	if s.Breaks != nil {
		var slots timetable.DaySlots
		for _, b := range s.Breaks {
			days, err := timetable.ParseWeekdays(b.Days)
			if err != nil {
				return nil, err
			}
			typ, err := timetable.ParseSlotType(b.Type)
			if err != nil {
				return nil, err
			}
			label := b.Label
			if label == "" {
				label = strings.ToUpper(string(typ))
			}
			slot := timetable.ScheduleSlot{Start: b.Start, End: b.End, Label: label, Type: typ, IsClass: typ == timetable.SlotClass}
			for _, d := range days {
				slots = slots.With(d, append(slots.For(d), slot))
			}
		}
		cfg.BreakSlots = slots
	}
	return cfg, nil
}
