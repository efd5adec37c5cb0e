package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/doeshing/codecraft/internal/domain"
	"github.com/doeshing/codecraft/internal/pkg/logger"
)

func TestParseSuggestion(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  domain.CommandSuggestion
	}{
		{
			name:  "plain json",
			reply: `{"command": "ls -la", "explanation": "lists all files"}`,
			want:  domain.CommandSuggestion{Command: "ls -la", Explanation: "lists all files"},
		},
		{
			name:  "fenced json",
			reply: "```json\n{\"command\": \"df -h\", \"explanation\": \"disk usage\"}\n```",
			want:  domain.CommandSuggestion{Command: "df -h", Explanation: "disk usage"},
		},
		{
			name:  "bare fence",
			reply: "```\n{\"command\": \"pwd\", \"explanation\": \"cwd\"}\n```",
			want:  domain.CommandSuggestion{Command: "pwd", Explanation: "cwd"},
		},
		{
			name:  "prose around object",
			reply: "Here you go:\n{\"command\": \"git status\", \"explanation\": \"status\"}\nEnjoy!",
			want:  domain.CommandSuggestion{Command: "git status", Explanation: "status"},
		},
		{
			name:  "empty command is passed on for validation",
			reply: `{"command": "", "explanation": "nothing to do"}`,
			want:  domain.CommandSuggestion{Command: "", Explanation: "nothing to do"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSuggestion(tt.reply)
			if err != nil {
				t.Fatalf("ParseSuggestion() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("suggestion mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseSuggestionFormatErrors(t *testing.T) {
	for _, reply := range []string{
		"Sure! You can run ls -la to list files.",
		`{"explanation": "no command here"}`,
		`["ls"]`,
		"",
	} {
		_, err := ParseSuggestion(reply)
		var formatErr *domain.FormatError
		if !errors.As(err, &formatErr) {
			t.Fatalf("ParseSuggestion(%q) error = %v, want FormatError", reply, err)
		}
		if formatErr.Raw != reply {
			t.Errorf("Raw = %q, want %q", formatErr.Raw, reply)
		}
	}
}

type stubChat struct {
	reply    string
	err      error
	messages []domain.ChatMessage
	opts     domain.ChatOptions
}

func (s *stubChat) Chat(_ context.Context, messages []domain.ChatMessage, opts domain.ChatOptions) (string, error) {
	s.messages = messages
	s.opts = opts
	return s.reply, s.err
}

func (s *stubChat) StreamChat(ctx context.Context, messages []domain.ChatMessage, opts domain.ChatOptions, onChunk func(string)) (string, error) {
	reply, err := s.Chat(ctx, messages, opts)
	if err == nil && onChunk != nil {
		onChunk(reply)
	}
	return reply, err
}

func TestCommandGeneratorSuggest(t *testing.T) {
	chat := &stubChat{reply: `{"command":"ls -la","explanation":"lists all files"}`}
	gen := NewCommandGenerator(chat, logger.Nop())

	sys := domain.SystemContext{OS: "Linux", Shell: "bash", WorkingDir: "/srv", AvailableTools: []string{"git"}}
	got, err := gen.Suggest(context.Background(), domain.GenerationRequest{Intent: "list files", System: sys, Model: "x/y"})
	if err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}
	if got.Command != "ls -la" {
		t.Errorf("command = %q", got.Command)
	}
	if len(chat.messages) != 2 || chat.messages[0].Role != domain.RoleSystem || chat.messages[1].Content != "list files" {
		t.Fatalf("messages = %+v", chat.messages)
	}
	if !strings.Contains(chat.messages[0].Content, "Linux using bash") || !strings.Contains(chat.messages[0].Content, "JSON object") {
		t.Errorf("system prompt missing context: %q", chat.messages[0].Content)
	}
	if chat.opts.Model != "x/y" {
		t.Errorf("model override not forwarded: %+v", chat.opts)
	}
}

func TestCommandGeneratorPropagatesErrors(t *testing.T) {
	gen := NewCommandGenerator(&stubChat{err: ErrMissingAPIKey}, logger.Nop())
	if _, err := gen.Suggest(context.Background(), domain.GenerationRequest{Intent: "x"}); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("Suggest() error = %v", err)
	}
}

func TestHeuristicGenerator(t *testing.T) {
	gen := NewGenerator(true, nil, logger.Nop())
	if gen.Name() != "heuristic" {
		t.Fatalf("Name() = %q", gen.Name())
	}
	got, err := gen.Suggest(context.Background(), domain.GenerationRequest{Intent: "List files", System: domain.SystemContext{OS: "Linux"}})
	if err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}
	want := domain.CommandSuggestion{Command: "ls -la", Explanation: "lists all files"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("suggestion mismatch (-want +got):\n%s", diff)
	}
}
