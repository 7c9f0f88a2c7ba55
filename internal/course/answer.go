package course

import "strings"

// NormalizeAnswer trims surrounding whitespace and collapses internal runs
// of whitespace to a single space.
func NormalizeAnswer(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// MatchAnswer compares a submitted answer with the expected one after
// normalization, ignoring case. An empty submission never matches.
func MatchAnswer(expected, submitted string) bool {
	sub := NormalizeAnswer(submitted)
	if sub == "" {
		return false
	}
	return strings.EqualFold(NormalizeAnswer(expected), sub)
}
