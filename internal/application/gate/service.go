package gate

import (
	"context"
	"errors"
	"fmt"

	"github.com/doeshing/codecraft/internal/domain"
	"github.com/doeshing/codecraft/internal/ports"
)

// ErrInterrupted wraps any failure of the prompt collaborator.
var ErrInterrupted = errors.New("confirmation interrupted")

// Service implements ports.ConfirmationGate. Every tier gets at most one prompt.
type Service struct {
	prompter ports.Prompter
	literal  string
	logger   ports.Logger
}

var _ ports.ConfirmationGate = (*Service)(nil)

// New creates a gate. An empty literal falls back to CONFIRM.
func New(prompter ports.Prompter, literal string, logger ports.Logger) *Service {
	if literal == "" {
		literal = domain.DefaultConfirmLiteral
	}
	return &Service{prompter: prompter, literal: literal, logger: logger}
}

// Literal returns the token required for dangerous commands.
func (s *Service) Literal() string {
	return s.literal
}

// Gate decides whether suggestion may run. autoApprove only skips the
// prompt for safe commands.
func (s *Service) Gate(ctx context.Context, suggestion domain.CommandSuggestion, autoApprove bool) (domain.Decision, error) {
	switch suggestion.Tier {
	case domain.TierSafe:
		if autoApprove {
			s.debug("auto-approved safe command", suggestion)
			return domain.DecisionProceed, nil
		}
		return s.askYesNo(ctx, "Execute this command?")
	case domain.TierWarning:
		return s.askYesNo(ctx, "This command may have side effects. Execute it?")
	case domain.TierDangerous:
		return s.askLiteral(ctx)
	default:
		s.logger.Warn("refusing to gate command", map[string]interface{}{
			"tier": string(suggestion.Tier),
		})
		return domain.DecisionCancel, nil
	}
}

func (s *Service) askYesNo(ctx context.Context, question string) (domain.Decision, error) {
	ok, err := s.prompter.AskYesNo(ctx, question, true)
	if err != nil {
		return domain.DecisionCancel, fmt.Errorf("%w: %w", ErrInterrupted, err)
	}
	if !ok {
		return domain.DecisionCancel, nil
	}
	return domain.DecisionProceed, nil
}

func (s *Service) askLiteral(ctx context.Context) (domain.Decision, error) {
	question := fmt.Sprintf("This command is DANGEROUS. Type %s to execute it:", s.literal)
	line, err := s.prompter.AskLine(ctx, question)
	if err != nil {
		return domain.DecisionCancel, fmt.Errorf("%w: %w", ErrInterrupted, err)
	}
	if line != s.literal {
		s.logger.Debug("dangerous command not confirmed", nil)
		return domain.DecisionCancel, nil
	}
	return domain.DecisionProceed, nil
}

func (s *Service) debug(msg string, suggestion domain.CommandSuggestion) {
	s.logger.Debug(msg, map[string]interface{}{"tier": string(suggestion.Tier)})
}
