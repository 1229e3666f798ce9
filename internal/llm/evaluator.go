package llm

import (
	"context"
	"fmt"
	"strings"
)

const evaluatorSystemPrompt = `You are a minimalist school timetable reviewer. Output ONLY the exact format shown - no markdown, no extra text. Be extremely concise.`

const loadPromptTemplate = `Review this section's weekly load and output EXACTLY this format (no markdown, no code blocks):

BALANCE: [ 2-4 word verdict ]

⚠️  SHORT: Courses below their weekly minutes, with the gap.
📈 OVER: Courses above their weekly minutes, with the excess.
🗓  FREE: One sentence about how the free slots are spread over the week.

NEXT:
➜  First concrete placement to make.
➜  Second concrete change.

Section: %s

Load (scheduled/target minutes):
%s
Free class slots: %d

Rules:
- Use the exact emoji prefixes shown (⚠️, 📈, 🗓, ➜)
- Keep each line under 70 characters
- If no issue exists for a category, omit that line
- Output plain text only, no markdown formatting`

// LoadLine is one assignment's weekly load.
type LoadLine struct {
	Course    string
	Teacher   string
	Scheduled int // minutes
	Target    int // minutes
}

// Evaluator reviews a section's weekly load with an LLM.
type Evaluator struct {
	client Client
}

// NewEvaluator creates a new Evaluator with the given LLM client.
func NewEvaluator(client Client) *Evaluator {
	return &Evaluator{client: client}
}

// EvaluateLoad returns a short plain-text review of the load.
func (e *Evaluator) EvaluateLoad(ctx context.Context, section string, lines []LoadLine, freeSlots int) (string, error) {
	prompt := fmt.Sprintf(loadPromptTemplate, section, formatLoad(lines), freeSlots)
	return e.client.Chat(ctx, []Message{
		{Role: RoleSystem, Content: evaluatorSystemPrompt},
		{Role: RoleUser, Content: prompt},
	})
}

func formatLoad(lines []LoadLine) string {
	if len(lines) == 0 {
		return "  (no course assignments)\n"
	}
	var sb strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&sb, "  %-20s %-16s %s/%s\n", l.Course, l.Teacher, FormatDuration(l.Scheduled), FormatDuration(l.Target))
	}
	return sb.String()
}

// FormatDuration formats minutes as a human-readable duration.
func FormatDuration(minutes int) string {
	if minutes == 0 {
		return "0m"
	}
	hours := minutes / 60
	mins := minutes % 60
	if hours == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	if mins == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh%dm", hours, mins)
}
