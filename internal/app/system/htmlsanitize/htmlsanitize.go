// Package htmlsanitize cleans user-supplied HTML before it is stored.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	rich  = newRichPolicy()
	plain = bluemonday.StrictPolicy()
)

func newRichPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("u", "s", "mark")
	p.AllowAttrs("class").OnElements("table", "tr", "td", "th")
	return p
}

// Sanitize keeps formatting markup (paragraphs, lists, links, tables, code)
// and strips scripts, event handlers and javascript: URLs. Used for staff
// assignment descriptions.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return rich.Sanitize(s)
}

// Plain strips every tag, leaving escaped text. Used for student-entered
// submission notes.
func Plain(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(plain.Sanitize(s)))
}
