package executor

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/doeshing/codecraft/internal/domain"
)

func newTestExecutor(t *testing.T, opts Options) *ShellExecutor {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("executor tests use POSIX shell syntax")
	}
	if opts.Shell == "" {
		opts.Shell = "/bin/sh"
	}
	return New(opts)
}

func TestRunPrintf(t *testing.T) {
	e := newTestExecutor(t, Options{})

	got := e.Run(context.Background(), "printf A", 5*time.Second, nil)

	if !got.Success || got.CombinedOutput != "A" || got.ExitCode != 0 || got.ErrorText != "" {
		t.Fatalf("Run(printf A) = %+v, want {true A 0 \"\"}", got)
	}
}

func TestRunFallsBackToStderr(t *testing.T) {
	e := newTestExecutor(t, Options{})

	got := e.Run(context.Background(), "printf oops >&2", 5*time.Second, nil)

	if !got.Success || got.CombinedOutput != "oops" || got.Stderr != "oops" || got.ErrorText != "" {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestRunNoOutputMarker(t *testing.T) {
	e := newTestExecutor(t, Options{})

	got := e.Run(context.Background(), "true", 5*time.Second, nil)

	if !got.Success || got.CombinedOutput != domain.NoOutputMarker {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestRunNonZeroExit(t *testing.T) {
	e := newTestExecutor(t, Options{})

	tests := []struct {
		name      string
		command   string
		wantCode  int
		wantError string
	}{
		{name: "stderr becomes error text", command: "printf bad >&2; exit 3", wantCode: 3, wantError: "bad"},
		{name: "silent failure", command: "exit 2", wantCode: 2, wantError: "exit status 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Run(context.Background(), tt.command, 5*time.Second, nil)
			if got.Success {
				t.Fatalf("expected failure, got %+v", got)
			}
			if got.ExitCode != tt.wantCode {
				t.Errorf("ExitCode = %d, want %d", got.ExitCode, tt.wantCode)
			}
			if got.ErrorText != tt.wantError {
				t.Errorf("ErrorText = %q, want %q", got.ErrorText, tt.wantError)
			}
			if got.CombinedOutput == domain.NoOutputMarker {
				t.Error("failed command must not report the success marker")
			}
		})
	}
}

func TestRunTimeout(t *testing.T) {
	e := newTestExecutor(t, Options{WaitDelay: 500 * time.Millisecond})

	start := time.Now()
	got := e.Run(context.Background(), "sleep 5", 100*time.Millisecond, nil)
	elapsed := time.Since(start)

	if got.Success || !got.TimedOut {
		t.Fatalf("expected timeout, got %+v", got)
	}
	if got.ExitCode == 0 {
		t.Errorf("ExitCode = 0, want non-zero")
	}
	if !strings.Contains(got.ErrorText, "timed out") {
		t.Errorf("ErrorText = %q, want mention of timeout", got.ErrorText)
	}
	if elapsed > 3*time.Second {
		t.Errorf("timeout took %v, want well under the sleep duration", elapsed)
	}
}

func TestRunKillsProcessGroupOnTimeout(t *testing.T) {
	e := newTestExecutor(t, Options{WaitDelay: 500 * time.Millisecond})

	start := time.Now()
	got := e.Run(context.Background(), "sleep 5 & sleep 5; wait", 100*time.Millisecond, nil)

	if !got.TimedOut {
		t.Fatalf("expected timeout, got %+v", got)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("background child kept the run alive for %v", elapsed)
	}
}

func TestRunParentCancel(t *testing.T) {
	e := newTestExecutor(t, Options{WaitDelay: 500 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	got := e.Run(ctx, "sleep 5", 10*time.Second, nil)

	if got.Success || got.TimedOut {
		t.Fatalf("expected interrupted failure, got %+v", got)
	}
	if !strings.Contains(got.ErrorText, "interrupted") {
		t.Errorf("ErrorText = %q, want mention of interruption", got.ErrorText)
	}
}

func TestRunOutputLimit(t *testing.T) {
	e := newTestExecutor(t, Options{MaxOutputBytes: 1024, WaitDelay: 500 * time.Millisecond})

	got := e.Run(context.Background(), "yes", 10*time.Second, nil)

	if got.Success || !got.Truncated {
		t.Fatalf("expected truncated failure, got success=%v truncated=%v", got.Success, got.Truncated)
	}
	if len(got.Stdout)+len(got.Stderr) != 1024 {
		t.Errorf("captured %d bytes, want exactly 1024", len(got.Stdout)+len(got.Stderr))
	}
	if !strings.Contains(got.ErrorText, "exceeded maximum size") {
		t.Errorf("ErrorText = %q", got.ErrorText)
	}
	if got.TimedOut {
		t.Error("output limit must not be reported as a timeout")
	}
}

func TestRunSpawnFailure(t *testing.T) {
	e := newTestExecutor(t, Options{Shell: "/nonexistent/codecraft-shell"})

	got := e.Run(context.Background(), "ls", 5*time.Second, nil)

	if got.Success || got.ExitCode != 1 || got.ErrorText == "" {
		t.Fatalf("expected spawn failure result, got %+v", got)
	}
}

func TestRunStreamsBothPipes(t *testing.T) {
	e := newTestExecutor(t, Options{})

	var mu sync.Mutex
	chunks := map[domain.OutputStream]string{}
	got := e.Run(context.Background(), "printf one; printf two >&2; printf three", 5*time.Second, func(ev domain.OutputEvent) {
		mu.Lock()
		defer mu.Unlock()
		chunks[ev.Stream] += ev.Text
	})

	if chunks[domain.StreamStdout] != "onethree" {
		t.Errorf("stdout events = %q, want %q", chunks[domain.StreamStdout], "onethree")
	}
	if chunks[domain.StreamStderr] != "two" {
		t.Errorf("stderr events = %q, want %q", chunks[domain.StreamStderr], "two")
	}
	if got.Stdout != "onethree" || got.Stderr != "two" {
		t.Errorf("accumulators = %q / %q", got.Stdout, got.Stderr)
	}
	if len(got.Transcript) != len("onetwothree") {
		t.Errorf("Transcript = %q, want all chunks", got.Transcript)
	}
}

func TestStreamChannels(t *testing.T) {
	e := newTestExecutor(t, Options{BufferSize: 1})

	events, results := e.Stream(context.Background(), "for i in 1 2 3 4 5; do echo line$i; done", 5*time.Second)

	var text strings.Builder
	for ev := range events {
		text.WriteString(ev.Text)
	}
	result := <-results

	if !result.Success {
		t.Fatalf("unexpected failure %+v", result)
	}
	if text.String() != result.Stdout {
		t.Errorf("streamed %q, accumulated %q", text.String(), result.Stdout)
	}
	if !strings.Contains(result.Stdout, "line5") {
		t.Errorf("missing output: %q", result.Stdout)
	}
}

func TestRunSlowSubscriberDoesNotLoseOutput(t *testing.T) {
	e := newTestExecutor(t, Options{BufferSize: 1})

	var received int
	got := e.Run(context.Background(), "i=0; while [ $i -lt 200 ]; do echo line; i=$((i+1)); done", 10*time.Second, func(ev domain.OutputEvent) {
		time.Sleep(time.Millisecond)
		received += len(ev.Text)
	})

	if !got.Success {
		t.Fatalf("unexpected failure %+v", got)
	}
	if received != len(got.Stdout) || received != 200*len("line\n") {
		t.Errorf("received %d bytes, accumulated %d", received, len(got.Stdout))
	}
}
