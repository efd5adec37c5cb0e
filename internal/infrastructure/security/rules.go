package security

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/codecraft/assets"
	"github.com/doeshing/codecraft/internal/domain"
	"github.com/doeshing/codecraft/internal/pkg/filesystem"
)

// TableVersion is the schema version of the canonical rule table.
const TableVersion = 1

// DefaultTable parses the embedded canonical rule table.
func DefaultTable() (domain.RuleTable, error) {
	table, err := parseTable(assets.DefaultRulesYAML)
	if err != nil {
		return domain.RuleTable{}, fmt.Errorf("embedded rules: %w", err)
	}
	return table, nil
}

// LoadTable returns the canonical table extended with the rules in path.
// Extra rules can only add coverage; canonical rules are always kept.
func LoadTable(path string) (domain.RuleTable, error) {
	table, err := DefaultTable()
	if err != nil {
		return domain.RuleTable{}, err
	}
	if path == "" {
		return table, nil
	}

	data, err := os.ReadFile(filesystem.ExpandPath(path))
	if err != nil {
		return domain.RuleTable{}, fmt.Errorf("read rules file: %w", err)
	}
	extra, err := parseTable(data)
	if err != nil {
		return domain.RuleTable{}, fmt.Errorf("rules file %s: %w", path, err)
	}
	return table.Merge(extra), nil
}

func parseTable(data []byte) (domain.RuleTable, error) {
	var table domain.RuleTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return domain.RuleTable{}, err
	}
	if table.Version > TableVersion {
		return domain.RuleTable{}, fmt.Errorf("unsupported rule table version %d", table.Version)
	}
	return table, nil
}
