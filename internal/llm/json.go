package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeJSON unmarshals the JSON payload found in a model reply.
func decodeJSON(content string, result any) error {
	if err := json.Unmarshal([]byte(extractJSON(content)), result); err != nil {
		return fmt.Errorf("parsing JSON response: %w (content: %s)", err, content)
	}
	return nil
}

// extractJSON pulls the JSON document out of a reply that may wrap it in a
// fenced code block or surround it with prose.
func extractJSON(s string) string {
	for _, fence := range []string{"```json", "```"} {
		if body, ok := fenced(s, fence); ok {
			return body
		}
	}

	start := strings.IndexAny(s, "{[")
	if start == -1 {
		return s
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return s
}

func fenced(s, open string) (string, bool) {
	idx := strings.Index(s, open)
	if idx == -1 {
		return "", false
	}
	rest := strings.TrimLeft(s[idx+len(open):], "\r\n")
	end := strings.Index(rest, "```")
	if end == -1 {
		return "", false
	}
	return strings.TrimRight(rest[:end], "\r\n"), true
}
