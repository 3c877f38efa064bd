package retention

import "strings"

// Matcher decides whether a filename is exempt from automated archiving and
// deletion. Patterns are literal strings: a name is excluded when it equals a
// pattern or ends with it. No globbing or regular expressions.
type Matcher struct {
	patterns []string
}

// NewMatcher builds a Matcher. Empty patterns are ignored since they would
// match every name.
func NewMatcher(patterns []string) Matcher {
	m := Matcher{}
	for _, p := range patterns {
		if p == "" {
			continue
		}
		m.patterns = append(m.patterns, p)
	}
	return m
}

// Excluded reports whether name is exempt.
func (m Matcher) Excluded(name string) bool {
	for _, p := range m.patterns {
		if name == p || strings.HasSuffix(name, p) {
			return true
		}
	}
	return false
}
