package ai

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/doeshing/codecraft/internal/domain"
)

type suggestionPayload struct {
	Command     *string `json:"command"`
	Explanation string  `json:"explanation"`
}

// ParseSuggestion decodes a {"command","explanation"} reply. Markdown fences
// and prose around a single JSON object are tolerated; anything else yields
// a *domain.FormatError carrying the raw reply.
func ParseSuggestion(reply string) (domain.CommandSuggestion, error) {
	text := strings.TrimSpace(reply)
	if block := extractCodeBlock(text); block != "" {
		text = block
	}

	payload, err := decodeSuggestion(text)
	if err != nil {
		if obj := outermostObject(text); obj != "" && obj != text {
			payload, err = decodeSuggestion(obj)
		}
	}
	if err != nil {
		return domain.CommandSuggestion{}, &domain.FormatError{Raw: reply, Err: err}
	}
	if payload.Command == nil {
		return domain.CommandSuggestion{}, &domain.FormatError{Raw: reply, Err: errors.New("missing command field")}
	}

	return domain.CommandSuggestion{
		Command:     strings.TrimSpace(*payload.Command),
		Explanation: strings.TrimSpace(payload.Explanation),
	}, nil
}

func decodeSuggestion(text string) (suggestionPayload, error) {
	var payload suggestionPayload
	err := json.Unmarshal([]byte(text), &payload)
	return payload, err
}

func outermostObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return ""
	}
	return text[start : end+1]
}

func extractCodeBlock(content string) string {
	start := strings.Index(content, "```")
	if start == -1 {
		return ""
	}
	suffix := content[start+3:]
	end := strings.Index(suffix, "```")
	if end == -1 {
		return ""
	}

	block := suffix[:end]
	lines := strings.Split(block, "\n")
	if len(lines) > 1 {
		tag := strings.TrimSpace(lines[0])
		if tag == "" || !strings.ContainsAny(tag, "{}") {
			lines = lines[1:]
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
