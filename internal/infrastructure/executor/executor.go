// Package executor runs one command through the host shell and streams its output.
package executor

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/doeshing/codecraft/internal/domain"
	"github.com/doeshing/codecraft/internal/ports"
)

var (
	// ErrTimeout is the cancellation cause when a command outlives its timeout.
	ErrTimeout = errors.New("command timed out")
	// ErrOutputLimit is the cancellation cause when output exceeds the cap.
	ErrOutputLimit = errors.New("output limit exceeded")
)

const (
	defaultWaitDelay  = 2 * time.Second
	defaultBufferSize = 64
)

// Options configures a ShellExecutor.
type Options struct {
	// Shell is the interpreter path or "auto".
	Shell string
	// MaxOutputBytes caps stdout and stderr combined.
	MaxOutputBytes int
	// WaitDelay bounds how long pipes stay open after the child exits or is killed.
	WaitDelay time.Duration
	// BufferSize is the capacity of the event channel.
	BufferSize int
	Logger     ports.Logger
}

// ShellExecutor implements ports.CommandExecutor.
type ShellExecutor struct {
	interpreter Interpreter
	maxOutput   int
	waitDelay   time.Duration
	bufferSize  int
	logger      ports.Logger
}

var _ ports.CommandExecutor = (*ShellExecutor)(nil)

// New builds an executor for the current platform.
func New(opts Options) *ShellExecutor {
	e := &ShellExecutor{
		interpreter: ResolveInterpreter(opts.Shell, runtime.GOOS),
		maxOutput:   opts.MaxOutputBytes,
		waitDelay:   opts.WaitDelay,
		bufferSize:  opts.BufferSize,
		logger:      opts.Logger,
	}
	if e.maxOutput <= 0 {
		e.maxOutput = domain.DefaultMaxOutputBytes
	}
	if e.waitDelay <= 0 {
		e.waitDelay = defaultWaitDelay
	}
	if e.bufferSize <= 0 {
		e.bufferSize = defaultBufferSize
	}
	return e
}

// Interpreter returns the resolved shell invocation.
func (e *ShellExecutor) Interpreter() Interpreter {
	return e.interpreter
}

// Run executes command and calls onOutput for every chunk in arrival order.
// onOutput runs on the caller's goroutine and should return quickly.
func (e *ShellExecutor) Run(ctx context.Context, command string, timeout time.Duration, onOutput func(domain.OutputEvent)) domain.ExecutionResult {
	events, results := e.Stream(ctx, command, timeout)
	for ev := range events {
		if onOutput != nil {
			onOutput(ev)
		}
	}
	return <-results
}

// Stream starts command and returns its output events and final result.
// The events channel is closed before the result is sent; callers must drain
// it to receive the result.
func (e *ShellExecutor) Stream(ctx context.Context, command string, timeout time.Duration) (<-chan domain.OutputEvent, <-chan domain.ExecutionResult) {
	events := make(chan domain.OutputEvent, e.bufferSize)
	results := make(chan domain.ExecutionResult, 1)
	go func() {
		defer close(results)
		result := e.execute(ctx, command, timeout, events)
		close(events)
		results <- result
	}()
	return events, results
}

func (e *ShellExecutor) execute(ctx context.Context, command string, timeout time.Duration, events chan<- domain.OutputEvent) domain.ExecutionResult {
	if timeout <= 0 {
		timeout = domain.DefaultExecutionTimeout
	}
	start := time.Now()

	runCtx, cancelTimeout := context.WithTimeoutCause(ctx, timeout, ErrTimeout)
	defer cancelTimeout()
	runCtx, abort := context.WithCancelCause(runCtx)
	defer abort(nil)

	out := newCapture(e.maxOutput, func() { abort(ErrOutputLimit) })

	cmd := exec.CommandContext(runCtx, e.interpreter.Path, e.interpreter.Argv(command)...)
	cmd.Stdout = out.writer(domain.StreamStdout)
	cmd.Stderr = out.writer(domain.StreamStderr)
	cmd.WaitDelay = e.waitDelay
	configureProcess(cmd)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		out.forward(events, done)
	}()

	e.debug("executing command", map[string]interface{}{
		"shell":   e.interpreter.String(),
		"timeout": timeout.String(),
	})

	if err := cmd.Start(); err != nil {
		close(done)
		wg.Wait()
		e.logError("failed to start command", err, map[string]interface{}{"shell": e.interpreter.Path})
		return domain.ExecutionResult{
			Success:   false,
			ExitCode:  1,
			ErrorText: fmt.Sprintf("failed to start command: %v", err),
			Duration:  time.Since(start),
		}
	}

	waitErr := cmd.Wait()
	close(done)
	wg.Wait()

	result := e.buildResult(ctx, runCtx, cmd, waitErr, out.snapshot(), timeout)
	result.Duration = time.Since(start)
	e.debug("command finished", map[string]interface{}{
		"exit_code": result.ExitCode,
		"success":   result.Success,
		"duration":  result.Duration.String(),
	})
	return result
}

func (e *ShellExecutor) buildResult(parent, runCtx context.Context, cmd *exec.Cmd, waitErr error, snap snapshot, timeout time.Duration) domain.ExecutionResult {
	result := domain.ExecutionResult{
		Stdout:     snap.stdout,
		Stderr:     snap.stderr,
		Transcript: snap.transcript,
		Truncated:  snap.truncated,
	}
	exitCode := -1
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}

	switch {
	case snap.truncated:
		result.ExitCode = nonZero(exitCode, 1)
		result.ErrorText = fmt.Sprintf("output exceeded maximum size of %d bytes", e.maxOutput)
		result.CombinedOutput = firstNonEmpty(snap.stdout, snap.stderr)
		return result
	case waitErr == nil, errors.Is(waitErr, exec.ErrWaitDelay) && exitCode == 0:
		result.Success = true
		result.ExitCode = 0
		result.CombinedOutput = firstNonEmpty(snap.stdout, snap.stderr, domain.NoOutputMarker)
		return result
	case errors.Is(context.Cause(runCtx), ErrTimeout) && parent.Err() == nil:
		result.TimedOut = true
		result.ExitCode = domain.TimeoutExitCode
		result.ErrorText = fmt.Sprintf("command timed out after %s", timeout)
	case parent.Err() != nil:
		result.ExitCode = nonZero(exitCode, 130)
		result.ErrorText = fmt.Sprintf("command interrupted: %v", context.Cause(parent))
	default:
		result.ExitCode = nonZero(exitCode, 1)
		result.ErrorText = strings.TrimSpace(snap.stderr)
		if result.ErrorText == "" {
			result.ErrorText = waitErr.Error()
		}
	}
	result.CombinedOutput = firstNonEmpty(snap.stdout, snap.stderr)
	return result
}

func nonZero(code, fallback int) int {
	if code <= 0 {
		return fallback
	}
	return code
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (e *ShellExecutor) debug(msg string, fields map[string]interface{}) {
	if e.logger != nil {
		e.logger.Debug(msg, fields)
	}
}

func (e *ShellExecutor) logError(msg string, err error, fields map[string]interface{}) {
	if e.logger != nil {
		e.logger.Error(msg, err, fields)
	}
}
