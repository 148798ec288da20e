// Package wildcard provides shell-glob style string matching for mapping
// rule patterns. `*` matches any run of characters (including separators)
// and `?` matches a single character.
package wildcard

import "github.com/gobwas/glob"

// Match reports whether value matches pattern. Empty value and empty pattern
// are matched literally: only an empty pattern matches an empty value. A
// malformed pattern never matches.
func Match(value, pattern string) bool {
	g, err := glob.Compile(pattern)
	if err != nil {
		return false
	}
	return g.Match(value)
}

// MatchAny reports whether value matches at least one of the patterns
func MatchAny(value string, patterns []string) bool {
	for _, pattern := range patterns {
		if Match(value, pattern) {
			return true
		}
	}
	return false
}
