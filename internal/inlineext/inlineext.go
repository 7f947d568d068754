// Package inlineext converts the inline markup that CommonMark lacks:
// ==mark==, ++inserted++, ^superscript^ and ~subscript~.
package inlineext

import (
	"regexp"
	"strings"

	"github.com/alnah/go-hackmd/internal/fence"
)

// Precompiled regex patterns for performance.
var (
	// Highlight syntax ==text==
	markPattern = regexp.MustCompile(`==([^\s=](?:[^=]*?[^\s=])?)==`)
	// Inserted text ++text++
	insPattern = regexp.MustCompile(`\+\+([^\s+](?:[^+]*?[^\s+])?)\+\+`)
	// Superscript ^text^, no spaces; brackets excluded so [^1] footnotes survive
	supPattern = regexp.MustCompile(`\^([^\s^\[\]]+)\^`)
	// Subscript ~text~; the lead group keeps ~~strike~~ out
	subPattern = regexp.MustCompile(`(^|[^~\\])~([^\s~]+)~`)
	// Tags and link destinations are left alone
	protectedPattern = regexp.MustCompile(`<[^>\n]*>|\]\([^)\n]*\)`)
)

// Apply converts the inline extensions in prose outside code.
func Apply(markdown string) string {
	if !strings.ContainsAny(markdown, "=+^~") {
		return markdown
	}
	return fence.MapText(markdown, convertLine)
}

func convertLine(s string) string {
	var b strings.Builder
	last := 0
	for _, loc := range protectedPattern.FindAllStringIndex(s, -1) {
		b.WriteString(convert(s[last:loc[0]]))
		b.WriteString(s[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(convert(s[last:]))
	return b.String()
}

func convert(s string) string {
	if s == "" {
		return s
	}
	s = markPattern.ReplaceAllString(s, "<mark>$1</mark>")
	s = insPattern.ReplaceAllString(s, "<ins>$1</ins>")
	s = supPattern.ReplaceAllString(s, "<sup>$1</sup>")
	return convertSubscripts(s)
}

func convertSubscripts(s string) string {
	if !strings.Contains(s, "~") {
		return s
	}
	return subPattern.ReplaceAllStringFunc(s, func(m string) string {
		sub := subPattern.FindStringSubmatch(m)
		return sub[1] + "<sub>" + sub[2] + "</sub>"
	})
}
