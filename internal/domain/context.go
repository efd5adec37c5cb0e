package domain

import (
	"fmt"
	"strings"
)

// SystemContext describes the host the command will run on.
type SystemContext struct {
	OS             string
	Platform       string
	Shell          string
	WorkingDir     string
	AvailableTools []string
	HomeDir        string
	Username       string
}

// ToolList joins the detected tools for display.
func (c SystemContext) ToolList() string {
	if len(c.AvailableTools) == 0 {
		return "none detected"
	}
	return strings.Join(c.AvailableTools, ", ")
}

// HasTool reports whether name was found on PATH.
func (c SystemContext) HasTool(name string) bool {
	for _, tool := range c.AvailableTools {
		if tool == name {
			return true
		}
	}
	return false
}

// PromptContext renders the one-line summary injected into model prompts.
func (c SystemContext) PromptContext() string {
	return fmt.Sprintf("You are helping a user on %s using %s. Current directory: %s. Available tools: %s.",
		c.OS, c.Shell, c.WorkingDir, c.ToolList())
}

// Describe renders the multi-line summary printed by the context command.
func (c SystemContext) Describe() string {
	var b strings.Builder
	b.WriteString("System Context:\n")
	fmt.Fprintf(&b, "- OS: %s (%s)\n", c.OS, c.Platform)
	fmt.Fprintf(&b, "- Shell: %s\n", c.Shell)
	fmt.Fprintf(&b, "- Current Directory: %s\n", c.WorkingDir)
	fmt.Fprintf(&b, "- Available Tools: %s\n", c.ToolList())
	fmt.Fprintf(&b, "- User: %s", c.Username)
	return b.String()
}
