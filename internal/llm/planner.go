package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const placementPrompt = `You are a school timetabling assistant. You place weekly classes of one
section into free class slots.

Section: %s
Class length: %d minutes

%s

%s

%s

%s

Rules:
1. Only use slots from the free slot list, exactly as written (day and start time).
2. Never place two classes in the same slot.
3. Each placement covers one slot. Place at most as many slots as an assignment still needs.
4. Spread an assignment across different days before doubling up on one day.
5. Prefer earlier slots for assignments with more missing minutes.
6. If something cannot be placed, explain it in "warnings" instead of inventing slots.

Respond ONLY with valid JSON (no markdown, no explanation):
{
  "placements": [
    {"assignment_id": 0, "day": "Monday", "start": "HH:MM"}
  ],
  "warnings": ["string"]
}`

const placementPromptCompact = `Place classes into free timetable slots. Return JSON only.

Section: %s (classes of %d minutes)

%s

%s

%s

Rules:
- Use only listed free slots, copying day and start exactly.
- One class per slot. Do not exceed the needed slots per assignment.
- "warnings" must be an array of strings.

JSON schema:
{"placements": [{"assignment_id": 0, "day": "Monday", "start": "HH:MM"}], "warnings": ["string"]}`

// Need is an assignment that is short of its weekly minutes.
type Need struct {
	AssignmentID   int64
	Course         string
	Teacher        string
	MissingMinutes int
	MissingSlots   int
}

// FreeSlot is an empty class slot.
type FreeSlot struct {
	Day   string // weekday name
	Start string // HH:MM
	End   string // HH:MM
}

// Placed is a class already on the timetable.
type Placed struct {
	Day    string
	Start  string
	End    string
	Course string
}

// PlacementRequest is the context sent to the model.
type PlacementRequest struct {
	Section       string
	ClassDuration int
	Needs         []Need
	Free          []FreeSlot
	Placed        []Placed
	Instructions  string // optional free-text hint from the user
	Compact       bool   // shorter prompt for local models
}

// Proposal is one placement suggested by the model.
type Proposal struct {
	AssignmentID int64  `json:"assignment_id"`
	Day          string `json:"day"`
	Start        string `json:"start"`
}

// PlacementResponse is the parsed model reply.
type PlacementResponse struct {
	Placements []Proposal `json:"placements"`
	Warnings   []string   `json:"warnings"`
}

// Planner asks an LLM for class placements.
type Planner struct {
	client Client
}

// NewPlanner creates a new Planner with the given LLM client.
func NewPlanner(client Client) *Planner {
	return &Planner{client: client}
}

// BuildInitialMessages creates the conversation for a placement request.
func (p *Planner) BuildInitialMessages(req PlacementRequest) []Message {
	needs := formatNeeds(req.Needs)
	free := formatFree(req.Free)
	instructions := "Additional instructions: none"
	if s := strings.TrimSpace(req.Instructions); s != "" {
		instructions = fmt.Sprintf("Additional instructions: %q", s)
	}

	var prompt string
	if req.Compact {
		prompt = fmt.Sprintf(placementPromptCompact, req.Section, req.ClassDuration, needs, free, instructions)
	} else {
		prompt = fmt.Sprintf(placementPrompt, req.Section, req.ClassDuration, needs, free, formatPlaced(req.Placed), instructions)
	}
	return []Message{
		{Role: RoleSystem, Content: prompt},
		{Role: RoleUser, Content: "Propose placements for the assignments above."},
	}
}

// Propose sends the conversation and parses the placements.
func (p *Planner) Propose(ctx context.Context, messages []Message) (*PlacementResponse, error) {
	var resp PlacementResponse
	if err := p.client.ChatJSON(ctx, messages, &resp); err != nil {
		return nil, fmt.Errorf("getting placements from LLM: %w", err)
	}
	return &resp, nil
}

// WithFeedback appends the model's last reply and the list of rejected
// placements so the next call can correct them.
func WithFeedback(messages []Message, last *PlacementResponse, problems []string) []Message {
	out := append([]Message(nil), messages...)
	if last != nil {
		if b, err := json.Marshal(last); err == nil {
			out = append(out, Message{Role: RoleAssistant, Content: string(b)})
		}
	}

	var sb strings.Builder
	sb.WriteString("Some placements were rejected:\n")
	for _, p := range problems {
		fmt.Fprintf(&sb, "- %s\n", p)
	}
	sb.WriteString("\nPropose replacements for the rejected placements only, as valid JSON.")
	return append(out, Message{Role: RoleUser, Content: sb.String()})
}

func formatNeeds(needs []Need) string {
	if len(needs) == 0 {
		return "Assignments needing classes: None"
	}
	var sb strings.Builder
	sb.WriteString("Assignments needing classes:\n")
	for _, n := range needs {
		fmt.Fprintf(&sb, "- assignment_id=%d %s (%s): %d minutes missing, about %d slot(s)\n",
			n.AssignmentID, n.Course, n.Teacher, n.MissingMinutes, n.MissingSlots)
	}
	return sb.String()
}

func formatFree(free []FreeSlot) string {
	if len(free) == 0 {
		return "Free slots: None"
	}
	var sb strings.Builder
	sb.WriteString("Free slots:\n")
	for _, f := range free {
		fmt.Fprintf(&sb, "- %s %s-%s\n", f.Day, f.Start, f.End)
	}
	return sb.String()
}

func formatPlaced(placed []Placed) string {
	if len(placed) == 0 {
		return "Current timetable: empty"
	}
	var sb strings.Builder
	sb.WriteString("Current timetable:\n")
	for _, p := range placed {
		fmt.Fprintf(&sb, "- %s %s-%s: %s\n", p.Day, p.Start, p.End, p.Course)
	}
	return sb.String()
}
