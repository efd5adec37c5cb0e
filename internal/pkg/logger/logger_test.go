package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestSlogLoggerRespectsVerbosity(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, false)

	log.Debug("hidden", nil)
	log.Info("hidden too", nil)
	if buf.Len() != 0 {
		t.Fatalf("expected no output without verbose, got %q", buf.String())
	}

	log.Warn("shown", map[string]interface{}{"b": 2, "a": 1})
	out := buf.String()
	if !strings.Contains(out, "msg=shown") {
		t.Fatalf("warn not logged: %q", out)
	}
	if strings.Index(out, "a=1") > strings.Index(out, "b=2") {
		t.Errorf("fields should be sorted: %q", out)
	}
}

func TestSlogLoggerError(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, true).With("executor")

	log.Error("spawn failed", errors.New("boom"), map[string]interface{}{"command": "ls"})
	out := buf.String()
	for _, want := range []string{"level=ERROR", "component=executor", "error=boom", "command=ls"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}
