package timetable

import (
	"encoding/json"
	"strings"
	"testing"
)

var recess = ScheduleSlot{Start: "09:15", End: "09:30", Label: "RECREO", Type: SlotBreak}

func TestDaySlots_WithDoesNotMutateReceiver(t *testing.T) {
	base := InitializeForDays([]Weekday{Monday, Tuesday}, []ScheduleSlot{recess})
	lunch := ScheduleSlot{Start: "12:00", End: "12:30", Label: "LUNCH", Type: SlotLunch}

	updated := base.With(Monday, append(base.For(Monday), lunch))

	if got := len(base.For(Monday)); got != 1 {
		t.Errorf("base Monday has %d slots, want 1", got)
	}
	if got := len(updated.For(Monday)); got != 2 {
		t.Errorf("updated Monday has %d slots, want 2", got)
	}
	if got := len(updated.For(Tuesday)); got != 1 {
		t.Errorf("updated Tuesday has %d slots, want 1", got)
	}
}

func TestDaySlots_ForReturnsCopy(t *testing.T) {
	ds := InitializeForDays([]Weekday{Monday}, []ScheduleSlot{recess})
	slots := ds.For(Monday)
	slots[0].Label = "changed"

	if got := ds.For(Monday)[0].Label; got != "RECREO" {
		t.Errorf("label = %q, want RECREO", got)
	}
	if ds.For(Weekday(0)) != nil {
		t.Error("invalid day should yield nil")
	}
}

func TestDaySlots_InitializeCopiesPerDay(t *testing.T) {
	defaults := []ScheduleSlot{recess}
	ds := InitializeForDays([]Weekday{Monday, Tuesday}, defaults)
	defaults[0].Label = "mutated"

	for _, d := range []Weekday{Monday, Tuesday} {
		if got := ds.For(d)[0].Label; got != "RECREO" {
			t.Errorf("%s label = %q, want RECREO", d, got)
		}
	}
	if len(ds.For(Wednesday)) != 0 {
		t.Error("Wednesday should have no overrides")
	}
}

func TestDaySlots_WithSortsByStart(t *testing.T) {
	late := ScheduleSlot{Start: "11:00", End: "11:15", Label: "late"}
	ds := DaySlots{}.With(Friday, []ScheduleSlot{late, recess})

	got := ds.For(Friday)
	if got[0].Start != "09:15" || got[1].Start != "11:00" {
		t.Errorf("slots not sorted: %+v", got)
	}
}

func TestNormalizeBreakSlots(t *testing.T) {
	t.Run("flat array applies to working days", func(t *testing.T) {
		raw := `[{"start":"09:15","end":"09:30","label":"RECREO","type":"break"}]`
		ds, err := NormalizeBreakSlots([]byte(raw), []Weekday{Monday, Wednesday})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(ds.For(Monday)) != 1 || len(ds.For(Wednesday)) != 1 {
			t.Errorf("expected overrides on Monday and Wednesday: %+v", ds)
		}
		if len(ds.For(Tuesday)) != 0 {
			t.Error("Tuesday is not a working day")
		}
	})

	t.Run("object keyed by day number and name", func(t *testing.T) {
		raw := `{"1":[{"start":"09:15","end":"09:30","label":"RECREO"}],"friday":[{"start":"10:00","end":"10:30","label":"ASSEMBLY","type":"activity"}]}`
		ds, err := NormalizeBreakSlots([]byte(raw), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		mon := ds.For(Monday)
		if len(mon) != 1 || mon[0].Type != SlotBreak {
			t.Errorf("Monday = %+v, want one break slot", mon)
		}
		fri := ds.For(Friday)
		if len(fri) != 1 || fri[0].Type != SlotActivity {
			t.Errorf("Friday = %+v, want one activity slot", fri)
		}
	})

	t.Run("empty and null", func(t *testing.T) {
		for _, raw := range []string{"", "null", "  "} {
			ds, err := NormalizeBreakSlots([]byte(raw), AllWeekdays)
			if err != nil {
				t.Fatalf("unexpected error for %q: %v", raw, err)
			}
			if !ds.IsEmpty() {
				t.Errorf("expected no overrides for %q", raw)
			}
		}
	})

	t.Run("unknown day key", func(t *testing.T) {
		_, err := NormalizeBreakSlots([]byte(`{"9":[]}`), nil)
		if err == nil || !strings.Contains(err.Error(), "invalid weekday") {
			t.Errorf("error = %v, want invalid weekday", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := NormalizeBreakSlots([]byte(`"nope"`), nil); err == nil {
			t.Error("expected error")
		}
	})
}

func TestDaySlots_JSONRoundTripsPerDayShape(t *testing.T) {
	ds := InitializeForDays([]Weekday{Monday, Friday}, []ScheduleSlot{recess})

	data, err := json.Marshal(ds)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"1":`) || !strings.Contains(string(data), `"5":`) {
		t.Errorf("unexpected encoding %s", data)
	}

	var back DaySlots
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(ds) {
		t.Errorf("decoded %+v, want %+v", back, ds)
	}
}
