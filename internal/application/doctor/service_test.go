package doctor

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/doeshing/codecraft/internal/domain"
)

type stubConfig struct {
	cfg domain.Config
	err error
}

func (s stubConfig) Load(context.Context) (domain.Config, error) { return s.cfg, s.err }

type tierMap map[string]domain.RiskTier

func (m tierMap) Classify(command string) domain.RiskTier {
	if tier, ok := m[command]; ok {
		return tier
	}
	return domain.TierSafe
}

func (m tierMap) Validate(command string) domain.ValidationOutcome {
	return domain.ValidationOutcome{Valid: true, Tier: m.Classify(command)}
}

var goodRules = tierMap{"rm -rf /": domain.TierBlocked, "rm -rf ./build": domain.TierDangerous}

type stubRemote struct {
	modelsErr error
	keyErr    error
	chatErr   error
	chatCalls int
	keyCalls  int
}

func (s *stubRemote) ListModels(context.Context) ([]domain.ModelInfo, error) {
	return []domain.ModelInfo{{ID: "a"}, {ID: "b"}}, s.modelsErr
}

func (s *stubRemote) KeyInfo(context.Context) (domain.KeyInfo, error) {
	s.keyCalls++
	return domain.KeyInfo{Label: "sk-or-v1-abc"}, s.keyErr
}

func (s *stubRemote) Chat(context.Context, []domain.ChatMessage, domain.ChatOptions) (string, error) {
	s.chatCalls++
	return "OK", s.chatErr
}

func (s *stubRemote) StreamChat(ctx context.Context, m []domain.ChatMessage, o domain.ChatOptions, _ func(string)) (string, error) {
	return s.Chat(ctx, m, o)
}

func newService(t *testing.T, cfg domain.Config, remote *stubRemote) *Service {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	return &Service{
		ConfigProvider: stubConfig{cfg: cfg},
		Classifier:     goodRules,
		Models:         remote,
		Keys:           remote,
		Chat:           remote,
		ConfigPath:     "/tmp/config.yaml",
		EnvFile:        filepath.Join(t.TempDir(), ".env"),
	}
}

func findCheck(report domain.HealthReport, name string) (domain.HealthCheck, bool) {
	for _, check := range report.Checks {
		if check.Name == name {
			return check, true
		}
	}
	return domain.HealthCheck{}, false
}

func TestRunAllHealthy(t *testing.T) {
	remote := &stubRemote{}
	cfg := domain.Config{APIKey: "sk-or-v1-0123456789abcdef"}
	report, err := newService(t, cfg, remote).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.HasErrors() {
		t.Fatalf("unexpected errors: %+v", report.Checks)
	}
	for _, name := range []string{"Config file", "API key", "Risk rules", "/models", "/auth/key", "/chat/completions"} {
		check, found := findCheck(report, name)
		if !found || check.Status != domain.HealthOK {
			t.Errorf("check %q = %+v (found %v)", name, check, found)
		}
	}
	key, _ := findCheck(report, "API key")
	if strings.Contains(key.Details, "0123456789abcdef") {
		t.Errorf("key details leak the secret: %q", key.Details)
	}
	if env, _ := findCheck(report, "Environment file"); env.Status != domain.HealthWarn {
		t.Errorf("missing .env should warn, got %+v", env)
	}
}

func TestRunConfigFailure(t *testing.T) {
	svc := newService(t, domain.Config{}, &stubRemote{})
	svc.ConfigProvider = stubConfig{err: errors.New("bad yaml")}
	report, err := svc.Run(context.Background())
	if err == nil || !report.HasErrors() {
		t.Fatalf("Run() = %+v, %v; want config failure", report, err)
	}
}

func TestRunMissingKeySkipsAuthenticatedProbes(t *testing.T) {
	remote := &stubRemote{}
	cfg := domain.Config{OpenRouter: domain.OpenRouterSettings{APIKeyEnv: "OPENROUTER_API_KEY"}}
	report, err := newService(t, cfg, remote).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if key, _ := findCheck(report, "API key"); key.Status != domain.HealthError {
		t.Errorf("API key check = %+v", key)
	}
	if remote.keyCalls != 0 || remote.chatCalls != 0 {
		t.Errorf("authenticated probes ran without a key: key=%d chat=%d", remote.keyCalls, remote.chatCalls)
	}
	if models, _ := findCheck(report, "/models"); models.Status != domain.HealthOK {
		t.Errorf("/models should run without a key: %+v", models)
	}
}

func TestRunStopsAtFirstNetworkFailure(t *testing.T) {
	remote := &stubRemote{keyErr: errors.New("invalid API key")}
	report, _ := newService(t, domain.Config{APIKey: "sk-or-v1-0123456789abcdef"}, remote).Run(context.Background())
	if check, _ := findCheck(report, "/auth/key"); check.Status != domain.HealthError {
		t.Errorf("/auth/key = %+v", check)
	}
	if remote.chatCalls != 0 {
		t.Error("chat probe should be skipped after an auth failure")
	}
}

func TestRunOfflineSkipsNetwork(t *testing.T) {
	remote := &stubRemote{}
	report, err := newService(t, domain.Config{Offline: true}, remote).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if report.HasErrors() {
		t.Errorf("offline mode without a key should not fail: %+v", report.Checks)
	}
	if _, found := findCheck(report, "/models"); found {
		t.Error("network checks ran in offline mode")
	}
}

func TestKeyCheckWarnsOnFormatting(t *testing.T) {
	checks := keyCheck(domain.Config{APIKey: ` "sk-or-v1-0123456789abcdef" `})
	warns := 0
	for _, c := range checks {
		if c.Status == domain.HealthWarn {
			warns++
		}
	}
	if warns != 2 {
		t.Errorf("want whitespace and quote warnings, got %+v", checks)
	}
}

func TestRulesCheckDetectsBrokenTable(t *testing.T) {
	if check := rulesCheck(tierMap{}); check.Status != domain.HealthError {
		t.Errorf("rulesCheck() = %+v", check)
	}
	if check := rulesCheck(goodRules); check.Status != domain.HealthOK {
		t.Errorf("rulesCheck() = %+v", check)
	}
}
