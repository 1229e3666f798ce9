package timetable

import "testing"

func TestSchedule_Ref(t *testing.T) {
	persisted := Schedule{ID: 42}
	if got := persisted.Ref(); got != "42" {
		t.Errorf("Ref() = %q, want 42", got)
	}
	if persisted.IsTemp() {
		t.Error("persisted schedule reported as temp")
	}

	temp := Schedule{TempID: "temp_1700000000000", IsPending: true}
	if got := temp.Ref(); got != "temp_1700000000000" {
		t.Errorf("Ref() = %q", got)
	}
	if !temp.IsTemp() || !IsTempRef(temp.Ref()) {
		t.Error("temp schedule not recognized")
	}
	if IsTempRef("42") {
		t.Error("numeric ref reported as temp")
	}
}

func TestNewRequests(t *testing.T) {
	s := Schedule{
		ID: 7, SectionID: 1, CourseAssignmentID: 3,
		DayOfWeek: Tuesday, StartTime: "07:45", EndTime: "08:30", Classroom: "B2",
	}

	create := NewCreateRequest(s)
	if create.SectionID != 1 || create.CourseAssignmentID != 3 || create.DayOfWeek != Tuesday {
		t.Errorf("create request = %+v", create)
	}

	update := NewUpdateRequest(s)
	if update.ID != 7 || update.StartTime != "07:45" || update.Classroom != "B2" {
		t.Errorf("update request = %+v", update)
	}
}
