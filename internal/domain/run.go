package domain

import (
	"fmt"
	"time"
)

// CommandSuggestion is a generated command awaiting validation.
type CommandSuggestion struct {
	Command     string   `json:"command"`
	Explanation string   `json:"explanation"`
	Tier        RiskTier `json:"-"`
}

// GenerationRequest carries what a generator needs to propose a command.
type GenerationRequest struct {
	Intent string
	System SystemContext
	Model  string
}

// OutputStream identifies which pipe produced a chunk.
type OutputStream string

const (
	StreamStdout OutputStream = "stdout"
	StreamStderr OutputStream = "stderr"
)

// OutputEvent is one chunk of child output, delivered in arrival order.
type OutputEvent struct {
	Stream OutputStream
	Text   string
}

// ExecutionResult describes a finished (or aborted) command.
type ExecutionResult struct {
	Success        bool
	CombinedOutput string
	// ErrorText is empty unless the command failed or the engine aborted it.
	ErrorText string
	ExitCode  int

	Stdout string
	Stderr string
	// Transcript interleaves both streams in the order chunks arrived.
	Transcript string
	Duration   time.Duration
	TimedOut   bool
	Truncated  bool
}

// HasError reports whether the result carries error text.
func (r ExecutionResult) HasError() bool {
	return r.ErrorText != ""
}

// RunRequest is one invocation of the generate/validate/confirm/execute flow.
type RunRequest struct {
	Intent      string
	AutoApprove bool
	Model       string
	// Timeout overrides the configured execution timeout when positive.
	Timeout time.Duration
}

// RunStatus is the terminal state of a run.
type RunStatus string

const (
	RunExecuted    RunStatus = "executed"
	RunBlocked     RunStatus = "blocked"
	RunRejected    RunStatus = "rejected"
	RunCancelled   RunStatus = "cancelled"
	RunFormatError RunStatus = "format_error"
)

// RunReport summarises a run for callers and history.
type RunReport struct {
	ID         string
	Status     RunStatus
	Suggestion CommandSuggestion
	Outcome    ValidationOutcome
	Decision   Decision
	Result     *ExecutionResult
	RawReply   string
	StartedAt  time.Time
}

// FormatError reports a generator reply that is not a structured suggestion.
type FormatError struct {
	Raw string
	Err error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unstructured response: %v", e.Err)
	}
	return "unstructured response"
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
