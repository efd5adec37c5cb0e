// Package redact masks credentials in command text before it is stored or shown.
package redact

import (
	"regexp"
)

// Placeholder replaces every secret.
const Placeholder = "[REDACTED]"

type secretPattern struct {
	re *regexp.Regexp
	// keep is the number of leading submatches preserved, so "KEY=secret"
	// becomes "KEY=[REDACTED]" instead of losing the variable name.
	keep int
}

var patterns = []secretPattern{
	{re: regexp.MustCompile(`sk-or-v1-[A-Za-z0-9]{16,}`)},
	{re: regexp.MustCompile(`sk-(ant-)?[A-Za-z0-9_-]{20,}`)},
	{re: regexp.MustCompile(`AKIA[0-9A-Z]{16}`)},
	{re: regexp.MustCompile(`gh[pousr]_[A-Za-z0-9]{36}`)},
	{re: regexp.MustCompile(`xox[baprs]-[0-9]{10,13}-[0-9]{10,13}[a-zA-Z0-9-]*`)},
	{re: regexp.MustCompile(`[sr]k_live_[0-9a-zA-Z]{24}`)},
	{re: regexp.MustCompile(`-----BEGIN (RSA |EC |DSA |OPENSSH |PGP )?PRIVATE KEY-----`)},
	{re: regexp.MustCompile(`(?i)(bearer\s+)[A-Za-z0-9._-]{20,}`), keep: 1},
	{re: regexp.MustCompile(`(https?://[^:/\s]+:)[^@\s]+(@)`), keep: 2},
	{re: regexp.MustCompile(`(?i)(\b[A-Z0-9_]*(?:api[_-]?key|secret|token|password|passwd|pwd)[A-Z0-9_]*\s*[=:]\s*)['"]?[^\s'"]{8,}['"]?`), keep: 1},
}

// String replaces known credential shapes in s with Placeholder.
func String(s string) string {
	for _, p := range patterns {
		switch p.keep {
		case 0:
			s = p.re.ReplaceAllString(s, Placeholder)
		case 1:
			s = p.re.ReplaceAllString(s, "${1}"+Placeholder)
		default:
			s = p.re.ReplaceAllString(s, "${1}"+Placeholder+"${2}")
		}
	}
	return s
}

// Contains reports whether s holds anything String would mask.
func Contains(s string) bool {
	for _, p := range patterns {
		if p.re.MatchString(s) {
			return true
		}
	}
	return false
}
