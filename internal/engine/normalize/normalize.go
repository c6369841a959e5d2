// internal/engine/normalize/normalize.go

// Package normalize holds the string comparison primitives shared by the
// CV dedup engine and the search pipeline. Both sides must agree on what
// "the same name" means, so the rules live here and nowhere else.
package normalize

import "strings"

// Fold lowercases and trims a value. nil-ish input (empty string) stays an
// empty string and never acts as a wildcard.
func Fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Equal reports whether two values are equal after folding. Two empty
// values are equal; an empty value never equals a non-empty one.
func Equal(a, b string) bool {
	return Fold(a) == Fold(b)
}

// EqualPair compares two-field keys, e.g. (company, role) or
// (institution, degree).
func EqualPair(a1, a2, b1, b2 string) bool {
	return Equal(a1, b1) && Equal(a2, b2)
}

// ContainsFold reports whether needle occurs in haystack, case-insensitively.
// An empty needle matches nothing.
func ContainsFold(haystack, needle string) bool {
	n := Fold(needle)
	if n == "" {
		return false
	}
	return strings.Contains(Fold(haystack), n)
}

// FoldSet builds a membership set of folded values, skipping empties.
func FoldSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if f := Fold(v); f != "" {
			set[f] = struct{}{}
		}
	}
	return set
}
