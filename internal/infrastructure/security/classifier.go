package security

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/doeshing/codecraft/internal/domain"
	"github.com/doeshing/codecraft/internal/ports"
)

// Classifier implements the RiskClassifier port over a compiled rule table.
// It is immutable after construction and safe for concurrent use.
type Classifier struct {
	version int
	tiers   []compiledTier
}

type compiledTier struct {
	tier  domain.RiskTier
	rules []compiledRule
}

type compiledRule struct {
	re   *regexp.Regexp
	rule domain.ClassificationRule
}

// Match describes one rule that matched a command.
type Match struct {
	Tier domain.RiskTier
	Rule domain.ClassificationRule
}

var _ ports.RiskClassifier = (*Classifier)(nil)

// NewClassifier compiles every rule of table. Any invalid pattern fails the
// whole table so a typo can never silently disable coverage.
func NewClassifier(table domain.RuleTable) (*Classifier, error) {
	c := &Classifier{version: table.Version}
	for _, group := range table.Tiers() {
		compiled := compiledTier{tier: group.Tier}
		for _, rule := range group.Rules {
			if strings.TrimSpace(rule.Pattern) == "" {
				return nil, fmt.Errorf("%s rule %q has an empty pattern", group.Tier, rule.Name)
			}
			expr := rule.Pattern
			if rule.IgnoreCase {
				expr = "(?i)" + expr
			}
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, fmt.Errorf("%s rule %q: %w", group.Tier, rule.Name, err)
			}
			compiled.rules = append(compiled.rules, compiledRule{re: re, rule: rule})
		}
		c.tiers = append(c.tiers, compiled)
	}
	return c, nil
}

// NewDefaultClassifier compiles the embedded canonical table.
func NewDefaultClassifier() (*Classifier, error) {
	table, err := DefaultTable()
	if err != nil {
		return nil, err
	}
	return NewClassifier(table)
}

// Version returns the rule table version.
func (c *Classifier) Version() int {
	return c.version
}

// Rules returns the compiled rules grouped by tier, most severe first.
func (c *Classifier) Rules() []domain.TierRules {
	out := make([]domain.TierRules, 0, len(c.tiers))
	for _, tier := range c.tiers {
		group := domain.TierRules{Tier: tier.tier}
		for _, r := range tier.rules {
			group.Rules = append(group.Rules, r.rule)
		}
		out = append(out, group)
	}
	return out
}

// Classify returns the tier of the first tier list with a matching rule,
// checking Blocked, then Dangerous, then Warning.
func (c *Classifier) Classify(command string) domain.RiskTier {
	if m, ok := c.firstMatch(command); ok {
		return m.Tier
	}
	return domain.TierSafe
}

// Validate rejects empty and blocked commands and attaches the tier otherwise.
func (c *Classifier) Validate(command string) domain.ValidationOutcome {
	if strings.TrimSpace(command) == "" {
		return domain.ValidationOutcome{Valid: false, Reason: "Command is empty", Tier: domain.TierSafe}
	}

	m, ok := c.firstMatch(command)
	if !ok {
		return domain.ValidationOutcome{Valid: true, Tier: domain.TierSafe}
	}
	outcome := domain.ValidationOutcome{Valid: true, Tier: m.Tier, Rule: m.Rule.Name}
	if m.Tier == domain.TierBlocked {
		outcome.Valid = false
		outcome.Reason = blockedReason(m.Rule)
	}
	return outcome
}

// Matches lists every rule that matches command, most severe tier first.
func (c *Classifier) Matches(command string) []Match {
	var matches []Match
	for _, tier := range c.tiers {
		for _, r := range tier.rules {
			if r.re.MatchString(command) {
				matches = append(matches, Match{Tier: tier.tier, Rule: r.rule})
			}
		}
	}
	return matches
}

func (c *Classifier) firstMatch(command string) (Match, bool) {
	for _, tier := range c.tiers {
		for _, r := range tier.rules {
			if r.re.MatchString(command) {
				return Match{Tier: tier.tier, Rule: r.rule}, true
			}
		}
	}
	return Match{}, false
}

func blockedReason(rule domain.ClassificationRule) string {
	detail := rule.Message
	if detail == "" {
		detail = rule.Name
	}
	return fmt.Sprintf("Command is blocked for security reasons (%s). This command could cause irreversible damage to your system.", detail)
}
