package run

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/codecraft/internal/domain"
	"github.com/doeshing/codecraft/internal/ports"
)

// Service drives one invocation: generate, validate, confirm, execute, report.
type Service struct {
	Generator  ports.Generator
	Collector  ports.ContextCollector
	Classifier ports.RiskClassifier
	Gate       ports.ConfirmationGate
	Executor   ports.CommandExecutor
	Presenter  ports.RunPresenter
	History    ports.HistoryRepository
	Logger     ports.Logger

	// Model is recorded in history when the request does not override it.
	Model string
	// Timeout applies when the request carries none.
	Timeout time.Duration

	NewID func() string
	Now   func() time.Time
}

// Run processes a single natural-language intent. Rejections, cancellations
// and failed commands are normal outcomes reported in RunReport; only
// collaborator faults are returned as errors.
func (s *Service) Run(ctx context.Context, req domain.RunRequest) (domain.RunReport, error) {
	if s.Generator == nil || s.Collector == nil || s.Classifier == nil || s.Gate == nil ||
		s.Executor == nil || s.Presenter == nil || s.Logger == nil {
		return domain.RunReport{}, errors.New("run.Service dependencies not satisfied")
	}
	if strings.TrimSpace(req.Intent) == "" {
		return domain.RunReport{}, errors.New("intent is empty")
	}

	report := domain.RunReport{ID: s.newID(), StartedAt: s.now()}

	system, err := s.Collector.Collect(ctx)
	if err != nil {
		return report, fmt.Errorf("collect context: %w", err)
	}

	s.Logger.Info("generating command", map[string]interface{}{
		"generator": s.Generator.Name(),
		"model":     s.model(req),
	})
	suggestion, err := s.Generator.Suggest(ctx, domain.GenerationRequest{
		Intent: req.Intent,
		System: system,
		Model:  req.Model,
	})
	if err != nil {
		var formatErr *domain.FormatError
		if errors.As(err, &formatErr) {
			report.Status = domain.RunFormatError
			report.RawReply = formatErr.Raw
			s.Presenter.FormatError(formatErr.Raw)
			s.record(ctx, report, req)
			return report, nil
		}
		return report, fmt.Errorf("generate command: %w", err)
	}

	outcome := s.Classifier.Validate(suggestion.Command)
	suggestion.Tier = outcome.Tier
	report.Suggestion = suggestion
	report.Outcome = outcome

	if !outcome.Valid {
		report.Status = domain.RunRejected
		if outcome.Tier == domain.TierBlocked {
			report.Status = domain.RunBlocked
		}
		report.Decision = domain.DecisionCancel
		s.Logger.Warn("command rejected", map[string]interface{}{
			"tier": string(outcome.Tier),
			"rule": outcome.Rule,
		})
		s.Presenter.Rejected(suggestion, outcome)
		s.record(ctx, report, req)
		return report, nil
	}

	s.Presenter.Suggestion(suggestion)

	decision, err := s.Gate.Gate(ctx, suggestion, req.AutoApprove)
	report.Decision = decision
	if err != nil {
		report.Status = domain.RunCancelled
		s.record(ctx, report, req)
		return report, fmt.Errorf("confirm command: %w", err)
	}
	if !decision.Proceed() {
		report.Status = domain.RunCancelled
		s.Presenter.Cancelled()
		s.record(ctx, report, req)
		return report, nil
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = s.Timeout
	}
	s.Presenter.Executing(suggestion.Command)
	result := s.Executor.Run(ctx, suggestion.Command, timeout, s.Presenter.Output)
	report.Result = &result
	report.Status = domain.RunExecuted
	s.Presenter.Result(result)

	s.Logger.Debug("command executed", map[string]interface{}{
		"exit_code": result.ExitCode,
		"success":   result.Success,
	})
	s.record(ctx, report, req)
	return report, nil
}

func (s *Service) record(ctx context.Context, report domain.RunReport, req domain.RunRequest) {
	if s.History == nil {
		return
	}
	record := domain.NewRunRecord(report, req.Intent, s.model(req))
	if err := s.History.Save(ctx, record); err != nil {
		s.Logger.Warn("failed to record run", map[string]interface{}{"error": err.Error()})
	}
}

func (s *Service) model(req domain.RunRequest) string {
	if req.Model != "" {
		return req.Model
	}
	return s.Model
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
