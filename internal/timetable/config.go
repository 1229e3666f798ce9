package timetable

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Class duration bounds in minutes.
const (
	MinClassDuration = 1
	MaxClassDuration = 240
)

// ScheduleConfig describes how a section's week is divided into time slots.
type ScheduleConfig struct {
	SectionID     int64     `json:"sectionId" validate:"gt=0"`
	WorkingDays   []Weekday `json:"workingDays" validate:"min=1,unique,dive,min=1,max=7"`
	StartTime     string    `json:"startTime" validate:"required,datetime=15:04"`
	EndTime       string    `json:"endTime" validate:"required,datetime=15:04"`
	ClassDuration int       `json:"classDuration" validate:"min=1,max=240"`
	BreakSlots    DaySlots  `json:"breakSlots"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// DefaultScheduleConfig returns the configuration used for a section that
// has never been configured: Monday to Friday, 07:00-13:00, 45 minute
// classes and a 15 minute recess after the third class.
func DefaultScheduleConfig(sectionID int64) *ScheduleConfig {
	days := []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}
	recess := []ScheduleSlot{{Start: "09:15", End: "09:30", Label: "RECREO", Type: SlotBreak}}
	return &ScheduleConfig{
		SectionID:     sectionID,
		WorkingDays:   days,
		StartTime:     "07:00",
		EndTime:       "13:00",
		ClassDuration: 45,
		BreakSlots:    InitializeForDays(days, recess),
	}
}

// IsWorkingDay reports whether day is one of the configured working days.
func (c *ScheduleConfig) IsWorkingDay(day Weekday) bool {
	return slices.Contains(c.WorkingDays, day)
}

// Clone returns a deep copy of the config.
func (c *ScheduleConfig) Clone() *ScheduleConfig {
	cp := *c
	cp.WorkingDays = slices.Clone(c.WorkingDays)
	for i := range cp.BreakSlots {
		cp.BreakSlots[i] = slices.Clone(c.BreakSlots[i])
	}
	return &cp
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks every configuration rule and returns a *ConfigurationError
// listing all violations, or nil.
func (c *ScheduleConfig) Validate() error {
	problems := fieldProblems(c)

	startOK := ValidateTimeFormat(c.StartTime) == nil
	endOK := ValidateTimeFormat(c.EndTime) == nil
	if startOK && endOK && c.StartTime >= c.EndTime {
		problems = append(problems, Problem{
			Field:   "startTime",
			Start:   c.StartTime,
			End:     c.EndTime,
			Message: "start time must be before end time",
		})
	}

	if startOK && endOK {
		for _, day := range NormalizeWeekdays(c.WorkingDays) {
			problems = append(problems, c.slotProblems(day)...)
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return &ConfigurationError{Problems: problems}
}

func (c *ScheduleConfig) slotProblems(day Weekday) []Problem {
	var problems []Problem
	slots := c.BreakSlots.For(day)

	valid := make([]ScheduleSlot, 0, len(slots))
	for _, s := range slots {
		p := Problem{Field: "breakSlots", Day: day, Start: s.Start, End: s.End}
		switch {
		case ValidateTimeFormat(s.Start) != nil || ValidateTimeFormat(s.End) != nil:
			p.Message = "slot times must be in HH:MM format"
		case s.Start >= s.End:
			p.Message = "slot start must be before its end"
		case s.Start < c.StartTime || s.End > c.EndTime:
			p.Message = fmt.Sprintf("slot lies outside working hours %s-%s", c.StartTime, c.EndTime)
		case s.Type != "" && !s.Type.Valid():
			p.Message = fmt.Sprintf("unknown slot type %q", s.Type)
		default:
			valid = append(valid, s)
			continue
		}
		problems = append(problems, p)
	}

	valid = sortedSlots(valid)
	var furthest ScheduleSlot
	for i, cur := range valid {
		if i > 0 && cur.Start < furthest.End {
			problems = append(problems, Problem{
				Field:   "breakSlots",
				Day:     day,
				Start:   cur.Start,
				End:     cur.End,
				Message: fmt.Sprintf("overlaps %q %s-%s", furthest.Label, furthest.Start, furthest.End),
			})
		}
		if i == 0 || cur.End > furthest.End {
			furthest = cur
		}
	}
	return problems
}

// fieldProblems runs the struct tag rules.
func fieldProblems(c *ScheduleConfig) []Problem {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []Problem{{Field: "config", Message: err.Error()}}
	}

	problems := make([]Problem, 0, len(verrs))
	for _, fe := range verrs {
		field, _, _ := strings.Cut(fe.Field(), "[")
		problems = append(problems, Problem{Field: field, Message: tagMessage(fe)})
	}
	return problems
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "datetime":
		return fmt.Sprintf("%q must be in HH:MM format", fe.Value())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at least %s, got %v", fe.Param(), fe.Value())
	case "max":
		return fmt.Sprintf("must be at most %s, got %v", fe.Param(), fe.Value())
	case "unique":
		return "must not repeat a day"
	default:
		return fmt.Sprintf("failed %q rule", fe.Tag())
	}
}
