// Package query provides query string normalization for click-history keys.
package query

import "strings"

// Normalize canonicalizes a raw query for use as a click-history key.
// It trims surrounding whitespace, collapses internal whitespace runs to a
// single space, and lowercases the result. Normalizing an already-normalized
// string returns it unchanged.
//
// An empty or whitespace-only query normalizes to "", which callers must
// treat as "no active query": it is never a valid click-history key.
func Normalize(raw string) string {
	parts := strings.Fields(raw)
	if len(parts) == 0 {
		return ""
	}
	return strings.ToLower(strings.Join(parts, " "))
}
