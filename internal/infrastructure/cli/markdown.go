package cli

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Markdown renders model replies for the terminal.
type Markdown struct {
	term *glamour.TermRenderer
}

// NewMarkdown creates a renderer wrapping at width columns.
func NewMarkdown(width int) (*Markdown, error) {
	term, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &Markdown{term: term}, nil
}

// Render returns the styled text, or the input unchanged when rendering fails.
func (m *Markdown) Render(markdown string) string {
	if m == nil || m.term == nil {
		return markdown
	}
	out, err := m.term.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(out, "\n")
}
