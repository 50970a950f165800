// internal/sanitize/sanitize.go
//
// Recursive denylist sanitizer for untrusted structured input.
//
// Context
// -------
// `Value` walks nested maps, lists, and scalars; every string leaf loses
// script-tag blocks, `javascript:` scheme prefixes, and inline event
// handler attributes, then gets trimmed.  Non-string leaves pass through
// untouched.  The transform is idempotent: sanitizing twice equals
// sanitizing once.
//
// This is a best-effort denylist, NOT a parser-based sanitizer; it makes
// common injection strings inert before business logic sees them, and
// nothing more.  Output encoding at render time remains the real XSS
// defence.
//
// Notes
// -----
//   • Oxford commas, two spaces after periods.

package sanitize

import (
	"regexp"
	"strings"
)

var (
	// Opening <script …> through the matching close, case-insensitive,
	// across newlines.
	scriptRe = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)

	// javascript: scheme prefix, with optional interior whitespace the
	// way browsers tolerate it.
	jsSchemeRe = regexp.MustCompile(`(?i)j\s*a\s*v\s*a\s*s\s*c\s*r\s*i\s*p\s*t\s*:`)

	// Inline handler attributes: onclick=, onerror =, and friends.
	eventAttrRe = regexp.MustCompile(`(?i)\bon\w+\s*=`)
)

// String sanitizes one string leaf.  Each pattern is stripped to a fixed
// point so a removal can never splice a new match together ("jjavascript::"
// style smuggling), which is also what makes the transform idempotent.
func String(s string) string {
	for _, re := range []*regexp.Regexp{scriptRe, jsSchemeRe, eventAttrRe} {
		for {
			out := re.ReplaceAllString(s, "")
			if out == s {
				break
			}
			s = out
		}
	}
	return strings.TrimSpace(s)
}

// Value recursively sanitizes v.  Maps and slices are rewritten in place
// where possible; unknown container types pass through unchanged.
func Value(v any) any {
	switch t := v.(type) {
	case string:
		return String(t)
	case map[string]any:
		return Map(t)
	case []any:
		for i, e := range t {
			t[i] = Value(e)
		}
		return t
	case []string:
		for i, e := range t {
			t[i] = String(e)
		}
		return t
	default:
		return v
	}
}

// Map sanitizes every value of m in place and returns it.
func Map(m map[string]any) map[string]any {
	for k, v := range m {
		m[k] = Value(v)
	}
	return m
}
