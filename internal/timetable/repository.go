package timetable

import "context"

// CreateScheduleRequest asks the store to persist a new schedule.
type CreateScheduleRequest struct {
	SectionID          int64
	CourseAssignmentID int64
	DayOfWeek          Weekday
	StartTime          string
	EndTime            string
	Classroom          string
}

// UpdateScheduleRequest replaces the placement of a persisted schedule.
type UpdateScheduleRequest struct {
	ID                 int64
	CourseAssignmentID int64
	DayOfWeek          Weekday
	StartTime          string
	EndTime            string
	Classroom          string
}

// DeleteScheduleRequest removes a persisted schedule.
type DeleteScheduleRequest struct {
	ID int64
}

// SaveConfigRequest stores a section's schedule configuration.
type SaveConfigRequest struct {
	Config ScheduleConfig
}

// NewCreateRequest builds the create request for a pending schedule.
func NewCreateRequest(s Schedule) CreateScheduleRequest {
	return CreateScheduleRequest{
		SectionID:          s.SectionID,
		CourseAssignmentID: s.CourseAssignmentID,
		DayOfWeek:          s.DayOfWeek,
		StartTime:          s.StartTime,
		EndTime:            s.EndTime,
		Classroom:          s.Classroom,
	}
}

// NewUpdateRequest builds the update request for a moved schedule.
func NewUpdateRequest(s Schedule) UpdateScheduleRequest {
	return UpdateScheduleRequest{
		ID:                 s.ID,
		CourseAssignmentID: s.CourseAssignmentID,
		DayOfWeek:          s.DayOfWeek,
		StartTime:          s.StartTime,
		EndTime:            s.EndTime,
		Classroom:          s.Classroom,
	}
}

// Repository defines the storage interface for timetables.
type Repository interface {
	// CreateSection adds a section and sets its ID.
	CreateSection(ctx context.Context, s *Section) error

	// ListSections returns all sections ordered by name.
	ListSections(ctx context.Context) ([]*Section, error)

	// GetSection returns a section or ErrSectionNotFound.
	GetSection(ctx context.Context, id int64) (*Section, error)

	// FindSection looks a section up by name, case-insensitively.
	FindSection(ctx context.Context, name string) (*Section, error)

	// CreateAssignment adds a course assignment and sets its ID. A zero
	// TeacherID registers the teacher by TeacherName.
	CreateAssignment(ctx context.Context, a *CourseAssignment) error

	// ListAssignments returns the course assignments of a section.
	ListAssignments(ctx context.Context, sectionID int64) ([]*CourseAssignment, error)

	// GetAssignment returns a course assignment or ErrAssignmentNotFound.
	GetAssignment(ctx context.Context, id int64) (*CourseAssignment, error)

	// GetConfig returns the stored configuration, or nil if the section was never configured.
	GetConfig(ctx context.Context, sectionID int64) (*ScheduleConfig, error)

	// SaveConfig validates and replaces the section's configuration.
	// Returns a *ConfigurationError when validation fails.
	SaveConfig(ctx context.Context, req SaveConfigRequest) error

	// ListSchedules returns the persisted schedules of a section ordered by day and start.
	ListSchedules(ctx context.Context, sectionID int64) ([]Schedule, error)

	// CreateSchedule persists one schedule.
	// Returns ErrSlotTaken if the section already has a schedule at that time.
	CreateSchedule(ctx context.Context, req CreateScheduleRequest) (Schedule, error)

	// CreateSchedules persists several schedules atomically.
	CreateSchedules(ctx context.Context, reqs []CreateScheduleRequest) ([]Schedule, error)

	// UpdateSchedule moves a persisted schedule.
	UpdateSchedule(ctx context.Context, req UpdateScheduleRequest) error

	// DeleteSchedule removes a persisted schedule.
	DeleteSchedule(ctx context.Context, req DeleteScheduleRequest) error

	// Close releases any resources held by the repository.
	Close() error
}

// ConfigOrDefault loads the section's configuration and falls back to
// DefaultScheduleConfig when none is stored.
func ConfigOrDefault(ctx context.Context, repo Repository, sectionID int64) (*ScheduleConfig, error) {
	cfg, err := repo.GetConfig(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = DefaultScheduleConfig(sectionID)
	}
	return cfg, nil
}
