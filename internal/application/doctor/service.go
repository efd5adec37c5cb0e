package doctor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/doeshing/codecraft/internal/domain"
	"github.com/doeshing/codecraft/internal/pkg/filesystem"
	"github.com/doeshing/codecraft/internal/ports"
)

// probeModel is cheap and always available on OpenRouter.
const probeModel = "openai/gpt-4o-mini"

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider   ports.ConfigProvider
	ContextCollector ports.ContextCollector
	Classifier       ports.RiskClassifier
	History          ports.HistoryRepository
	Models           ports.ModelCatalog
	Keys             ports.KeyInspector
	Chat             ports.ChatClient

	// ConfigPath and EnvFile are shown in the report.
	ConfigPath string
	EnvFile    string
}

// Run executes checks and returns a report. Network probes stop at the first
// failure, since the later ones would fail for the same reason.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	checks = append(checks, s.envFileChecks()...)

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	checks = append(checks, ok("Config file", fmt.Sprintf("loaded %s (format %s, model %s)", s.ConfigPath, cfg.ConfigFormatVersion, cfg.ChatModel(""))))
	checks = append(checks, keyCheck(cfg)...)

	if s.Classifier != nil {
		checks = append(checks, rulesCheck(s.Classifier))
	} else {
		checks = append(checks, warn("Risk rules", "classifier not initialized"))
	}

	if s.ContextCollector != nil {
		if snapshot, err := s.ContextCollector.Collect(ctx); err == nil {
			checks = append(checks, ok("Context collector", fmt.Sprintf("%s, %s, detected tools: %d", snapshot.OS, snapshot.Shell, len(snapshot.AvailableTools))))
		} else {
			checks = append(checks, warn("Context collector", err.Error()))
		}
	}

	if s.History != nil {
		if _, err := s.History.Records(ctx, 1, ""); err != nil {
			checks = append(checks, warn("History", err.Error()))
		} else {
			checks = append(checks, ok("History", "store readable"))
		}
	} else {
		checks = append(checks, warn("History", "disabled"))
	}

	if cfg.Offline {
		checks = append(checks, warn("OpenRouter", "offline mode: network checks skipped"))
		return domain.HealthReport{Checks: checks}, nil
	}
	checks = append(checks, s.networkChecks(ctx, cfg)...)
	return domain.HealthReport{Checks: checks}, nil
}

func (s *Service) envFileChecks() []domain.HealthCheck {
	var checks []domain.HealthCheck
	envFile := s.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	abs, err := filepath.Abs(envFile)
	if err != nil {
		abs = envFile
	}
	if _, err := os.Stat(abs); err == nil {
		checks = append(checks, ok("Environment file", fmt.Sprintf(".env found at %s", abs)))
	} else {
		checks = append(checks, warn("Environment file", fmt.Sprintf(".env not found at %s", abs)))
	}

	homeEnv := filepath.Join(filesystem.UserHomeDir(), ".env")
	if homeEnv != abs {
		if _, err := os.Stat(homeEnv); err == nil {
			checks = append(checks, warn("Environment file", fmt.Sprintf("also found .env at %s (not loaded, may conflict)", homeEnv)))
		}
	}
	return checks
}

func keyCheck(cfg domain.Config) []domain.HealthCheck {
	key := cfg.APIKey
	if !cfg.HasAPIKey() {
		if cfg.Offline {
			return []domain.HealthCheck{warn("API key", "not set (offline mode)")}
		}
		return []domain.HealthCheck{fail("API key", fmt.Sprintf("%s is not set", cfg.OpenRouter.APIKeyEnv))}
	}

	checks := []domain.HealthCheck{ok("API key", fmt.Sprintf("%s (%d characters)", cfg.RedactedAPIKey(), len(key)))}
	if key != strings.TrimSpace(key) {
		checks = append(checks, warn("API key", "has leading or trailing whitespace"))
	}
	if strings.ContainsAny(key, `"'`) {
		checks = append(checks, warn("API key", "contains quote characters"))
	}
	if strings.Contains(strings.TrimSpace(key), " ") {
		checks = append(checks, warn("API key", "contains spaces"))
	}
	return checks
}

// rulesCheck confirms the canonical table still separates the extremes.
func rulesCheck(classifier ports.RiskClassifier) domain.HealthCheck {
	probes := []struct {
		command string
		want    domain.RiskTier
	}{
		{"ls -la", domain.TierSafe},
		{"rm -rf /", domain.TierBlocked},
		{"rm -rf ./build", domain.TierDangerous},
	}
	for _, p := range probes {
		if got := classifier.Classify(p.command); got != p.want {
			return fail("Risk rules", fmt.Sprintf("%q classified as %s, expected %s", p.command, got, p.want))
		}
	}
	return ok("Risk rules", "self-check passed")
}

func (s *Service) networkChecks(ctx context.Context, cfg domain.Config) []domain.HealthCheck {
	var checks []domain.HealthCheck

	if s.Models != nil {
		models, err := s.Models.ListModels(ctx)
		if err != nil {
			return append(checks, fail("/models", err.Error()))
		}
		checks = append(checks, ok("/models", fmt.Sprintf("found %d models", len(models))))
	}

	if !cfg.HasAPIKey() {
		return append(checks, warn("/auth/key", "skipped: no API key"))
	}

	if s.Keys != nil {
		info, err := s.Keys.KeyInfo(ctx)
		if err != nil {
			return append(checks, fail("/auth/key", err.Error()))
		}
		checks = append(checks, ok("/auth/key", describeKey(info)))
	}

	if s.Chat != nil {
		reply, err := s.Chat.Chat(ctx, []domain.ChatMessage{{Role: domain.RoleUser, Content: `Say "OK"`}}, domain.ChatOptions{Model: probeModel})
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return append(checks, warn("/chat/completions", "interrupted"))
			}
			return append(checks, fail("/chat/completions", err.Error()))
		}
		checks = append(checks, ok("/chat/completions", fmt.Sprintf("response: %s", truncate(strings.TrimSpace(reply), 50))))
	}
	return checks
}

func describeKey(info domain.KeyInfo) string {
	label := info.Label
	if label == "" {
		label = "N/A"
	}
	limit := "unlimited"
	if info.Limit != nil {
		limit = fmt.Sprintf("%.2f", *info.Limit)
	}
	return fmt.Sprintf("valid (label %s, limit %s, usage %.4f)", label, limit, info.Usage)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
