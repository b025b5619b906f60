// Package slug derives URL-safe identifiers from titles.
package slug

import (
	"strings"
)

// Make lowercases s, collapses every run of characters outside [a-z0-9]
// into a single "-" and trims hyphens from both ends. The result may be
// empty when s holds no ASCII letters or digits.
func Make(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingHyphen := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

// Valid reports whether s is a non-empty slug as produced by Make.
func Valid(s string) bool {
	if s == "" || s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}
	prevHyphen := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			prevHyphen = false
		case c == '-':
			if prevHyphen {
				return false
			}
			prevHyphen = true
		default:
			return false
		}
	}
	return true
}

// CategoryName maps a category page slug back to the stored category name
// ("prop-firm" -> "prop firm"); callers compare case-insensitively.
func CategoryName(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "-", " ")
}
