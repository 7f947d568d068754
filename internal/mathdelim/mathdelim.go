// Package mathdelim rewrites LaTeX-style math delimiters into the dollar
// form the math renderer understands.
//
//	\(x\)   becomes  $x$
//	\[x\]   becomes  $$x$$
//
// A line holding only \[ or \] becomes $$, so display math written over
// several lines keeps its line structure.
package mathdelim

import (
	"regexp"
	"strings"

	"github.com/alnah/go-hackmd/internal/fence"
)

// Precompiled regex patterns for performance.
var (
	inlinePattern  = regexp.MustCompile(`\\\((.+?)\\\)`)
	displayPattern = regexp.MustCompile(`\\\[(.+?)\\\]`)
)

// Normalize rewrites math delimiters outside code.
func Normalize(markdown string) string {
	if !strings.Contains(markdown, `\(`) && !strings.Contains(markdown, `\[`) {
		return markdown
	}
	return fence.MapProseLines(markdown, normalizeLine)
}

func normalizeLine(line string) string {
	body := fence.TrimEOL(line)
	switch strings.TrimSpace(body) {
	case `\[`, `\]`:
		indent := body[:len(body)-len(strings.TrimLeft(body, " \t"))]
		return indent + "$$" + fence.EOL(line)
	}
	return fence.MapOutsideInlineCode(line, func(s string) string {
		s = displayPattern.ReplaceAllString(s, "$$$$$1$$$$")
		return inlinePattern.ReplaceAllString(s, "$$$1$$")
	})
}
