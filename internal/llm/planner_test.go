package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func placementRequest() PlacementRequest {
	return PlacementRequest{
		Section:       "1A",
		ClassDuration: 45,
		Needs: []Need{
			{AssignmentID: 7, Course: "Math", Teacher: "Ana Ruiz", MissingMinutes: 90, MissingSlots: 2},
		},
		Free: []FreeSlot{
			{Day: "Monday", Start: "07:00", End: "07:45"},
			{Day: "Tuesday", Start: "07:45", End: "08:30"},
		},
		Placed: []Placed{
			{Day: "Monday", Start: "07:45", End: "08:30", Course: "Art"},
		},
	}
}

func TestBuildInitialMessages_FullPrompt(t *testing.T) {
	msgs := NewPlanner(nil).BuildInitialMessages(placementRequest())
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(msgs))
	}
	if msgs[0].Role != RoleSystem || msgs[1].Role != RoleUser {
		t.Fatalf("roles = %q, %q", msgs[0].Role, msgs[1].Role)
	}

	content := msgs[0].Content
	for _, want := range []string{
		"Section: 1A",
		"Class length: 45 minutes",
		"assignment_id=7 Math (Ana Ruiz): 90 minutes missing, about 2 slot(s)",
		"- Monday 07:00-07:45",
		"- Tuesday 07:45-08:30",
		"Current timetable:",
		"- Monday 07:45-08:30: Art",
		"Additional instructions: none",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("prompt missing %q:\n%s", want, content)
		}
	}
}

func TestBuildInitialMessages_CompactPrompt(t *testing.T) {
	req := placementRequest()
	req.Compact = true
	req.Instructions = "  keep Fridays light "

	content := NewPlanner(nil).BuildInitialMessages(req)[0].Content
	if strings.Contains(content, "Current timetable") {
		t.Fatalf("compact prompt should omit the timetable: %s", content)
	}
	if !strings.Contains(content, `Additional instructions: "keep Fridays light"`) {
		t.Fatalf("missing instructions: %s", content)
	}
	if !strings.Contains(content, "Section: 1A (classes of 45 minutes)") {
		t.Fatalf("missing header: %s", content)
	}
}

func TestBuildInitialMessages_Empty(t *testing.T) {
	content := NewPlanner(nil).BuildInitialMessages(PlacementRequest{Section: "2B", ClassDuration: 40})[0].Content
	for _, want := range []string{"Assignments needing classes: None", "Free slots: None", "Current timetable: empty"} {
		if !strings.Contains(content, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestPropose(t *testing.T) {
	client := &fakeClient{reply: "```json\n" +
		`{"placements":[{"assignment_id":7,"day":"Monday","start":"07:00"}],"warnings":["Math still short"]}` +
		"\n```"}
	p := NewPlanner(client)

	resp, err := p.Propose(context.Background(), p.BuildInitialMessages(placementRequest()))
	if err != nil {
		t.Fatalf("Propose() error = %v", err)
	}
	if len(resp.Placements) != 1 {
		t.Fatalf("placements = %d, want 1", len(resp.Placements))
	}
	got := resp.Placements[0]
	if got.AssignmentID != 7 || got.Day != "Monday" || got.Start != "07:00" {
		t.Errorf("placement = %+v", got)
	}
	if len(resp.Warnings) != 1 || resp.Warnings[0] != "Math still short" {
		t.Errorf("warnings = %v", resp.Warnings)
	}
}

func TestPropose_Errors(t *testing.T) {
	tests := []struct {
		name   string
		client *fakeClient
	}{
		{"client error", &fakeClient{err: errors.New("boom")}},
		{"bad json", &fakeClient{reply: "I cannot help"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPlanner(tt.client).Propose(context.Background(), nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), "getting placements from LLM") {
				t.Errorf("error = %v", err)
			}
		})
	}
}

func TestWithFeedback(t *testing.T) {
	initial := NewPlanner(nil).BuildInitialMessages(placementRequest())
	last := &PlacementResponse{Placements: []Proposal{{AssignmentID: 7, Day: "Monday", Start: "07:45"}}}

	msgs := WithFeedback(initial, last, []string{"Monday 07:45: slot occupied by Art"})
	if len(msgs) != len(initial)+2 {
		t.Fatalf("messages = %d, want %d", len(msgs), len(initial)+2)
	}
	if len(initial) != 2 {
		t.Fatalf("initial conversation was modified")
	}
	if msgs[2].Role != RoleAssistant || !strings.Contains(msgs[2].Content, `"start":"07:45"`) {
		t.Errorf("assistant echo = %+v", msgs[2])
	}
	if msgs[3].Role != RoleUser || !strings.Contains(msgs[3].Content, "- Monday 07:45: slot occupied by Art") {
		t.Errorf("feedback = %+v", msgs[3])
	}

	noLast := WithFeedback(initial, nil, []string{"x"})
	if len(noLast) != len(initial)+1 {
		t.Errorf("messages without last reply = %d, want %d", len(noLast), len(initial)+1)
	}
}
