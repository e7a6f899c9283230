package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// Filter narrows a listing. The navigation layer only sets Hide and Only
// for database listings.
type Filter struct {
	// Search keeps identifiers containing the value, case-insensitively.
	Search string
	// Hide is a regular expression; matching identifiers are dropped.
	Hide string
	// Only holds SQL LIKE patterns; when present an identifier must match one.
	Only []string
}

func (f Filter) onlyPatterns() []string {
	return lo.Compact(lo.Map(f.Only, func(p string, _ int) string {
		return strings.TrimSpace(p)
	}))
}

// Matcher evaluates a Filter against identifiers.
type Matcher struct {
	search string
	hide   *regexp.Regexp
	only   []*regexp.Regexp
}

// Compile validates the filter's patterns and returns a reusable matcher.
func (f Filter) Compile() (*Matcher, error) {
	m := &Matcher{search: strings.ToLower(f.Search)}
	if f.Hide != "" {
		re, err := regexp.Compile(f.Hide)
		if err != nil {
			return nil, fmt.Errorf("catalog: compile hide pattern: %w", err)
		}
		m.hide = re
	}
	for _, pattern := range f.onlyPatterns() {
		re, err := regexp.Compile(likeToRegexp(pattern))
		if err != nil {
			return nil, fmt.Errorf("catalog: compile only pattern %q: %w", pattern, err)
		}
		m.only = append(m.only, re)
	}
	return m, nil
}

// Match reports whether name passes the filter.
func (m *Matcher) Match(name string) bool {
	if m == nil {
		return true
	}
	if m.search != "" && !strings.Contains(strings.ToLower(name), m.search) {
		return false
	}
	if m.hide != nil && m.hide.MatchString(name) {
		return false
	}
	if len(m.only) == 0 {
		return true
	}
	for _, re := range m.only {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// Apply returns the subset of names passing the filter, preserving order.
func (m *Matcher) Apply(names []string) []string {
	return lo.Filter(names, func(name string, _ int) bool {
		return m.Match(name)
	})
}

// likeToRegexp translates an SQL LIKE pattern (with backslash escapes) into
// an anchored, case-insensitive regular expression.
func likeToRegexp(pattern string) string {
	var b strings.Builder
	b.WriteString("(?i)^")
	escaped := false
	for _, r := range pattern {
		switch {
		case escaped:
			b.WriteString(regexp.QuoteMeta(string(r)))
			escaped = false
		case r == '\\':
			escaped = true
		case r == '%':
			b.WriteString(".*")
		case r == '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	if escaped {
		b.WriteString(`\\`)
	}
	b.WriteString("$")
	return b.String()
}

// EscapeLike escapes LIKE wildcards so value matches literally.
func EscapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
