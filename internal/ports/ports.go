// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the application core and external
// adapters (infrastructure). Following the Ports and Adapters (Hexagonal) pattern,
// these interfaces allow the application to remain independent of specific
// implementations like HTTP clients, subprocesses, terminals, or databases.
//
// Key architectural concepts:
//   - Ports: Interfaces defined here (e.g., Generator, RiskClassifier)
//   - Adapters: Concrete implementations in the infrastructure layer
//   - Dependency inversion: Application depends on abstractions, not implementations
package ports

import (
	"context"
	"time"

	"github.com/doeshing/codecraft/internal/domain"
)

// ConfigProvider loads the configuration once at startup.
// Implementations typically read from ~/.codecraft/config.yaml plus the environment.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// ContextCollector describes the host so generated commands fit it.
type ContextCollector interface {
	Collect(context.Context) (domain.SystemContext, error)
}

// Generator turns a natural-language intent into a command suggestion.
// A reply that is not a structured suggestion is reported as *domain.FormatError.
type Generator interface {
	Name() string
	Suggest(ctx context.Context, req domain.GenerationRequest) (domain.CommandSuggestion, error)
}

// ChatClient talks to a chat completion API.
type ChatClient interface {
	Chat(ctx context.Context, messages []domain.ChatMessage, opts domain.ChatOptions) (string, error)
	// StreamChat calls onChunk for every content delta and returns the full reply.
	StreamChat(ctx context.Context, messages []domain.ChatMessage, opts domain.ChatOptions, onChunk func(string)) (string, error)
}

// PromptBuilder renders the system prompts for free-form conversations.
type PromptBuilder interface {
	Ask(domain.SystemContext) string
	Explain(domain.SystemContext) string
	Chat(domain.SystemContext) string
}

// ModelCatalog lists the models the API can serve.
type ModelCatalog interface {
	ListModels(ctx context.Context) ([]domain.ModelInfo, error)
}

// KeyInspector reports usage and limits of the configured API key.
type KeyInspector interface {
	KeyInfo(ctx context.Context) (domain.KeyInfo, error)
}

// RiskClassifier is the single authority on command risk.
type RiskClassifier interface {
	Classify(command string) domain.RiskTier
	Validate(command string) domain.ValidationOutcome
}

// CommandExecutor runs one command through the host shell.
// Failures are reported inside the result, never as an error.
type CommandExecutor interface {
	Run(ctx context.Context, command string, timeout time.Duration, onOutput func(domain.OutputEvent)) domain.ExecutionResult
}

// Prompter asks the user questions on the terminal.
type Prompter interface {
	// AskYesNo returns def when the user just presses enter.
	AskYesNo(ctx context.Context, question string, def bool) (bool, error)
	// AskLine returns one line of input without its line terminator.
	AskLine(ctx context.Context, question string) (string, error)
}

// ConfirmationGate decides whether a validated command may run.
type ConfirmationGate interface {
	Gate(ctx context.Context, suggestion domain.CommandSuggestion, autoApprove bool) (domain.Decision, error)
}

// RunPresenter renders the stages of a run to the user.
type RunPresenter interface {
	Suggestion(domain.CommandSuggestion)
	Rejected(domain.CommandSuggestion, domain.ValidationOutcome)
	FormatError(raw string)
	Cancelled()
	Executing(command string)
	Output(domain.OutputEvent)
	Result(domain.ExecutionResult)
}

// HistoryRepository persists run records.
type HistoryRepository interface {
	Save(context.Context, domain.RunRecord) error
	Records(ctx context.Context, limit int, search string) ([]domain.RunRecord, error)
	Clear(context.Context) error
	Prune(ctx context.Context, olderThan time.Time) (int64, error)
}

// CatalogCache stores the model catalog between invocations.
type CatalogCache interface {
	Get(key string) (domain.CatalogEntry, bool, error)
	Set(domain.CatalogEntry) error
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stderr, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
