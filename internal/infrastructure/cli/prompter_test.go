package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/doeshing/codecraft/internal/application/gate"
	"github.com/doeshing/codecraft/internal/domain"
	"github.com/doeshing/codecraft/internal/pkg/logger"
)

func TestAskYesNo(t *testing.T) {
	tests := []struct {
		name  string
		input string
		def   bool
		want  bool
	}{
		{name: "empty takes default yes", input: "\n", def: true, want: true},
		{name: "empty takes default no", input: "\n", def: false, want: false},
		{name: "yes", input: "YES\n", def: false, want: true},
		{name: "no", input: " n \n", def: true, want: false},
		{name: "anything else declines", input: "sure\ny\n", def: true, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewForcedPrompter(strings.NewReader(tt.input), &out)
			got, err := p.AskYesNo(context.Background(), "Execute this command?", tt.def)
			if err != nil {
				t.Fatalf("AskYesNo() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("AskYesNo() = %v, want %v", got, tt.want)
			}
			if !strings.Contains(out.String(), "Execute this command?") {
				t.Errorf("question not shown: %q", out.String())
			}
		})
	}
}

func TestAskYesNoAsksOnce(t *testing.T) {
	var out bytes.Buffer
	p := NewForcedPrompter(strings.NewReader("sure\ny\n"), &out)
	got, err := p.AskYesNo(context.Background(), "Execute this command?", true)
	if err != nil {
		t.Fatalf("AskYesNo() error = %v", err)
	}
	if got {
		t.Error("AskYesNo() = true, want an unrecognised answer to decline")
	}
	if n := strings.Count(out.String(), "Execute this command?"); n != 1 {
		t.Errorf("question shown %d times, want 1", n)
	}
	if strings.Contains(out.String(), "Please answer") {
		t.Errorf("unexpected re-ask: %q", out.String())
	}
}

func TestAskLineIsVerbatim(t *testing.T) {
	p := NewForcedPrompter(strings.NewReader(" CONFIRM\r\n"), io.Discard)
	got, err := p.AskLine(context.Background(), "Type CONFIRM:")
	if err != nil {
		t.Fatalf("AskLine() error = %v", err)
	}
	if got != " CONFIRM" {
		t.Errorf("AskLine() = %q, want surrounding spaces kept", got)
	}
}

func TestAskLineAtEOF(t *testing.T) {
	p := NewForcedPrompter(strings.NewReader("CONFIRM"), io.Discard)
	if got, err := p.AskLine(context.Background(), "?"); err != nil || got != "CONFIRM" {
		t.Fatalf("AskLine() = %q, %v", got, err)
	}
	if _, err := p.AskLine(context.Background(), "?"); !errors.Is(err, io.EOF) {
		t.Fatalf("AskLine() at EOF error = %v, want io.EOF", err)
	}
}

func TestNonInteractiveRefuses(t *testing.T) {
	p := NewPrompter(strings.NewReader("y\n"), io.Discard)
	if p.Interactive() {
		t.Fatal("a strings.Reader is not a terminal")
	}
	if _, err := p.AskYesNo(context.Background(), "?", true); !errors.Is(err, ErrNonInteractive) {
		t.Errorf("AskYesNo() error = %v", err)
	}
	if _, err := p.AskLine(context.Background(), "?"); !errors.Is(err, ErrNonInteractive) {
		t.Errorf("AskLine() error = %v", err)
	}
}

func TestCancelInterruptsWait(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	p := NewForcedPrompter(pr, io.Discard)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := p.AskLine(ctx, "?"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("AskLine() error = %v, want deadline exceeded", err)
	}

	// The abandoned read delivers to the next question.
	go pw.Write([]byte("CONFIRM\n"))
	got, err := p.AskLine(context.Background(), "?")
	if err != nil || got != "CONFIRM" {
		t.Fatalf("AskLine() after cancel = %q, %v", got, err)
	}
}

func TestWarningGateDeclinesUnrecognisedAnswer(t *testing.T) {
	var out bytes.Buffer
	g := gate.New(NewForcedPrompter(strings.NewReader("sure\ny\n"), &out), "", logger.New(io.Discard, false))

	decision, err := g.Gate(context.Background(), domain.CommandSuggestion{Command: "pkill node", Tier: domain.TierWarning}, false)
	if err != nil {
		t.Fatalf("Gate() error = %v", err)
	}
	if decision != domain.DecisionCancel {
		t.Errorf("Gate() = %v, want cancel", decision)
	}
	if n := strings.Count(out.String(), "Execute it?"); n != 1 {
		t.Errorf("prompted %d times, want 1", n)
	}
}
