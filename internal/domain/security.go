package domain

import (
	"fmt"
	"strings"
)

// RiskTier is the discrete risk classification of a candidate command.
type RiskTier string

const (
	TierSafe      RiskTier = "safe"
	TierWarning   RiskTier = "warning"
	TierDangerous RiskTier = "dangerous"
	TierBlocked   RiskTier = "blocked"
)

// Severity orders tiers: Blocked > Dangerous > Warning > Safe.
// Unknown tiers sort above Blocked so they are never treated as harmless.
func (t RiskTier) Severity() int {
	switch t {
	case TierSafe:
		return 0
	case TierWarning:
		return 1
	case TierDangerous:
		return 2
	case TierBlocked:
		return 3
	default:
		return 4
	}
}

// MoreSevereThan reports whether t outranks other.
func (t RiskTier) MoreSevereThan(other RiskTier) bool {
	return t.Severity() > other.Severity()
}

// Label returns the upper-case banner label for the tier.
func (t RiskTier) Label() string {
	return strings.ToUpper(string(t))
}

// ParseRiskTier converts user input into a RiskTier.
func ParseRiskTier(value string) (RiskTier, error) {
	switch RiskTier(strings.ToLower(strings.TrimSpace(value))) {
	case TierSafe:
		return TierSafe, nil
	case TierWarning:
		return TierWarning, nil
	case TierDangerous:
		return TierDangerous, nil
	case TierBlocked:
		return TierBlocked, nil
	}
	return "", fmt.Errorf("unknown risk tier %q", value)
}

// ClassificationRule is a named pattern belonging to one non-safe tier.
type ClassificationRule struct {
	Name       string   `yaml:"name"`
	Pattern    string   `yaml:"pattern"`
	IgnoreCase bool     `yaml:"ignore_case,omitempty"`
	Message    string   `yaml:"message,omitempty"`
	Tier       RiskTier `yaml:"-"`
}

// RuleTable is the versioned set of classification rules, one ordered list
// per non-safe tier.
type RuleTable struct {
	Version   int                  `yaml:"version"`
	Blocked   []ClassificationRule `yaml:"blocked"`
	Dangerous []ClassificationRule `yaml:"dangerous"`
	Warning   []ClassificationRule `yaml:"warning"`
}

// Tiers returns the rule lists in evaluation order with Tier populated.
func (t RuleTable) Tiers() []TierRules {
	return []TierRules{
		{Tier: TierBlocked, Rules: withTier(t.Blocked, TierBlocked)},
		{Tier: TierDangerous, Rules: withTier(t.Dangerous, TierDangerous)},
		{Tier: TierWarning, Rules: withTier(t.Warning, TierWarning)},
	}
}

// Merge appends the rules of extra to a copy of t. Existing rules are kept.
func (t RuleTable) Merge(extra RuleTable) RuleTable {
	merged := RuleTable{Version: t.Version}
	merged.Blocked = append(append([]ClassificationRule{}, t.Blocked...), extra.Blocked...)
	merged.Dangerous = append(append([]ClassificationRule{}, t.Dangerous...), extra.Dangerous...)
	merged.Warning = append(append([]ClassificationRule{}, t.Warning...), extra.Warning...)
	return merged
}

// RuleCount returns the number of rules across all tiers.
func (t RuleTable) RuleCount() int {
	return len(t.Blocked) + len(t.Dangerous) + len(t.Warning)
}

// TierRules groups the rules of one tier.
type TierRules struct {
	Tier  RiskTier
	Rules []ClassificationRule
}

func withTier(rules []ClassificationRule, tier RiskTier) []ClassificationRule {
	out := make([]ClassificationRule, len(rules))
	for i, rule := range rules {
		rule.Tier = tier
		out[i] = rule
	}
	return out
}

// ValidationOutcome is the verdict on a single candidate command.
type ValidationOutcome struct {
	Valid  bool
	Reason string
	Tier   RiskTier
	// Rule is the name of the matching rule, empty for safe commands.
	Rule string
}

// Decision is the confirmation gate verdict.
type Decision string

const (
	DecisionProceed Decision = "proceed"
	DecisionCancel  Decision = "cancel"
)

// Proceed reports whether execution may continue.
func (d Decision) Proceed() bool {
	return d == DecisionProceed
}
