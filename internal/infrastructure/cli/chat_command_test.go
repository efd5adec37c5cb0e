package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/doeshing/codecraft/internal/application/assist"
	"github.com/doeshing/codecraft/internal/domain"
	"github.com/doeshing/codecraft/internal/infrastructure/ai"
)

type stubCollector struct{}

func (stubCollector) Collect(context.Context) (domain.SystemContext, error) {
	return domain.SystemContext{OS: "Linux", Shell: "bash", WorkingDir: "/tmp"}, nil
}

type scriptedChat struct {
	fail  int
	calls int
}

func (c *scriptedChat) Chat(context.Context, []domain.ChatMessage, domain.ChatOptions) (string, error) {
	return "", errors.New("not used")
}

func (c *scriptedChat) StreamChat(_ context.Context, _ []domain.ChatMessage, _ domain.ChatOptions, onChunk func(string)) (string, error) {
	c.calls++
	if c.calls <= c.fail {
		return "", errors.New("rate limited")
	}
	onChunk("Hi")
	onChunk(" there")
	return "Hi there", nil
}

func newChatFixture(t *testing.T, input string, chat *scriptedChat) (*session, *assist.ChatSession, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	s := newSession(Options{In: strings.NewReader(input), Out: &out, Err: &errOut, ForcePrompt: true})
	svc := &assist.Service{Chat: chat, Collector: stubCollector{}, Prompts: ai.Prompts{}}
	session, err := svc.NewChatSession(context.Background(), "")
	if err != nil {
		t.Fatalf("NewChatSession() error = %v", err)
	}
	return s, session, &out, &errOut
}

func TestChatLoop(t *testing.T) {
	chat := &scriptedChat{}
	s, session, out, _ := newChatFixture(t, "hello\n\n  \nquit\nnever read\n", chat)

	if err := chatLoop(context.Background(), s, session); err != nil {
		t.Fatalf("chatLoop() error = %v", err)
	}
	got := out.String()
	for _, want := range []string{"Interactive Chat Mode", "Assistant: Hi there", "Goodbye!"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q:\n%s", want, got)
		}
	}
	if chat.calls != 1 {
		t.Errorf("StreamChat calls = %d, want 1 (blank lines are skipped)", chat.calls)
	}
	if n := len(session.Messages()); n != 3 {
		t.Errorf("history has %d messages, want 3", n)
	}
}

func TestChatLoopContinuesAfterError(t *testing.T) {
	chat := &scriptedChat{fail: 1}
	s, session, out, errOut := newChatFixture(t, "first\nsecond\n", chat)

	if err := chatLoop(context.Background(), s, session); err != nil {
		t.Fatalf("chatLoop() error = %v", err)
	}
	if !strings.Contains(errOut.String(), "rate limited") {
		t.Errorf("stderr = %q", errOut.String())
	}
	if !strings.Contains(out.String(), "Continuing conversation...") || !strings.Contains(out.String(), "Hi there") {
		t.Errorf("stdout:\n%s", out.String())
	}
	// EOF ends the session like exit.
	if !strings.Contains(out.String(), "Goodbye!") {
		t.Error("EOF should end the chat")
	}
	msgs := session.Messages()
	if len(msgs) != 3 || msgs[1].Content != "second" {
		t.Errorf("failed turn should not be kept: %+v", msgs)
	}
}
