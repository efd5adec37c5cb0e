package domain_test

import (
	"testing"

	"github.com/doeshing/codecraft/internal/domain"
)

func TestRiskTierOrder(t *testing.T) {
	order := []domain.RiskTier{domain.TierSafe, domain.TierWarning, domain.TierDangerous, domain.TierBlocked}
	for i := 1; i < len(order); i++ {
		if !order[i].MoreSevereThan(order[i-1]) {
			t.Errorf("%s should outrank %s", order[i], order[i-1])
		}
	}
	if !domain.RiskTier("mystery").MoreSevereThan(domain.TierBlocked) {
		t.Error("unknown tiers must never rank below blocked")
	}
}

func TestParseRiskTier(t *testing.T) {
	got, err := domain.ParseRiskTier(" Dangerous ")
	if err != nil || got != domain.TierDangerous {
		t.Fatalf("ParseRiskTier() = %q, %v", got, err)
	}
	if _, err := domain.ParseRiskTier("critical"); err == nil {
		t.Fatal("expected error for unknown tier")
	}
}

func TestRuleTableMergeKeepsCanonicalRules(t *testing.T) {
	base := domain.RuleTable{
		Version: 1,
		Blocked: []domain.ClassificationRule{{Name: "a", Pattern: "a"}},
	}
	extra := domain.RuleTable{
		Blocked: []domain.ClassificationRule{{Name: "b", Pattern: "b"}},
		Warning: []domain.ClassificationRule{{Name: "c", Pattern: "c"}},
	}

	merged := base.Merge(extra)
	if merged.Version != 1 || merged.RuleCount() != 3 {
		t.Fatalf("merged = %+v", merged)
	}
	if merged.Blocked[0].Name != "a" {
		t.Errorf("canonical rule must stay first, got %q", merged.Blocked[0].Name)
	}
	if len(base.Blocked) != 1 {
		t.Error("Merge must not modify the receiver")
	}

	tiers := merged.Tiers()
	if tiers[0].Tier != domain.TierBlocked || tiers[0].Rules[1].Tier != domain.TierBlocked {
		t.Errorf("tiers not populated: %+v", tiers[0])
	}
	if tiers[2].Rules[0].Tier != domain.TierWarning {
		t.Errorf("warning tier not populated: %+v", tiers[2])
	}
}
