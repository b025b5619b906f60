// Package htmlsafe normalizes and sanitizes rich-text HTML submitted by the
// admin editor before it is stored.
package htmlsafe

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// maxUnescapeDepth bounds how many layers of entity escaping are unwrapped.
const maxUnescapeDepth = 3

var (
	policy        = newPolicy()
	escapedTagRef = regexp.MustCompile(`&(?:amp;)*lt;`)
)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^[a-zA-Z0-9 _-]+$`)).OnElements("code", "pre", "span", "div", "p")
	p.AllowAttrs("target").Matching(regexp.MustCompile(`^_blank$`)).OnElements("a")
	p.AllowAttrs("width", "height").Matching(bluemonday.Integer).OnElements("img")
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoFollowOnFullyQualifiedLinks(true)
	return p
}

// Canonicalize unwraps HTML that arrived entity-escaped one or more times
// ("&lt;p&gt;" or "&amp;lt;p&amp;gt;") so markup is stored exactly once.
// Content that already contains raw tags is returned unchanged.
func Canonicalize(s string) string {
	for i := 0; i < maxUnescapeDepth; i++ {
		if strings.Contains(s, "<") {
			break
		}
		if !escapedTagRef.MatchString(s) {
			break
		}
		s = html.UnescapeString(s)
	}
	return s
}

// Sanitize strips everything outside the allowlist.
func Sanitize(s string) string {
	return policy.Sanitize(s)
}

// Clean is Canonicalize followed by Sanitize; apply it to every HTML field at
// write time.
func Clean(s string) string {
	return strings.TrimSpace(Sanitize(Canonicalize(s)))
}

// Text returns the plain text of an HTML fragment with whitespace collapsed.
func Text(s string) string {
	stripped := bluemonday.StrictPolicy().Sanitize(s)
	return strings.Join(strings.Fields(html.UnescapeString(stripped)), " ")
}

// Excerpt returns at most n runes of the fragment's plain text.
func Excerpt(s string, n int) string {
	text := []rune(Text(s))
	if len(text) <= n {
		return string(text)
	}
	return string(text[:n])
}
