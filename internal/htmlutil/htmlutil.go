// Package htmlutil holds the escaping helpers shared by every pass that
// emits raw HTML, plus the minimal inline renderer used inside admonitions
// and labelled quotes.
package htmlutil

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#x27;",
	)
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
)

// EscapeAttr escapes s for use inside a quoted HTML attribute value.
// Both quote characters are escaped.
func EscapeAttr(s string) string {
	return attrEscaper.Replace(s)
}

// EscapeText escapes s for use as HTML text content. Quotes are kept.
func EscapeText(s string) string {
	return textEscaper.Replace(s)
}

// Stash placeholders use Unicode Private Use Area characters so they never
// collide with user text.
const (
	stashStart = "\uE002"
	stashEnd   = "\uE003"
)

// Precompiled regex patterns for performance.
var (
	emojiImgPattern   = regexp.MustCompile(`<img\s+class="emoji"[^>]*?/?>`)
	inlineTagPattern  = regexp.MustCompile(`</?(?:mark|ins|sup|sub)>`)
	sizedImgPattern   = regexp.MustCompile(`<img src="[^"<>]*" alt="[^"<>]*" loading="lazy"(?: title="[^"<>]*")?(?: width="\d+")?(?: height="\d+")? style="[^"<>]*" />`)
	inlineCodePattern = regexp.MustCompile("`([^`]+)`")
	boldPattern       = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	stashPattern      = regexp.MustCompile(stashStart + `(\d+)` + stashEnd)
)

// InlineMinimal renders a single line of text with `code` and **bold**
// support. Tags emitted by earlier passes (emoji and sized images, plus the
// bare mark, ins, sup and sub elements) are kept as HTML; everything else is
// escaped.
func InlineMinimal(s string) string {
	var stash []string
	keep := func(tag string) string {
		stash = append(stash, tag)
		return stashStart + strconv.Itoa(len(stash)-1) + stashEnd
	}
	s = emojiImgPattern.ReplaceAllStringFunc(s, keep)
	s = sizedImgPattern.ReplaceAllStringFunc(s, keep)
	s = inlineTagPattern.ReplaceAllStringFunc(s, keep)

	s = EscapeText(s)
	s = inlineCodePattern.ReplaceAllString(s, `<code class="px-1 py-0.5 rounded bg-gray-100 text-gray-800">$1</code>`)
	s = boldPattern.ReplaceAllString(s, "<strong>$1</strong>")

	if len(stash) == 0 {
		return s
	}
	return stashPattern.ReplaceAllStringFunc(s, func(m string) string {
		idx, err := strconv.Atoi(stashPattern.FindStringSubmatch(m)[1])
		if err != nil || idx >= len(stash) {
			return m
		}
		return stash[idx]
	})
}
