// Package scrollmark injects invisible line markers that let the editor and
// the preview scroll together.
//
// A marker is placed on every ATX heading and on the first line of a
// paragraph once at least Cadence source lines have passed since the last
// marker. Constructs whose first line cannot carry inline HTML (fences,
// tables, admonitions, math blocks, indented code, HTML blocks, quotes,
// list items and link or footnote definitions) are never marked. The end of
// the document gets a tail marker.
package scrollmark

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/alnah/go-hackmd/internal/fence"
)

// DefaultCadence is the default minimum distance in lines between two
// paragraph markers.
const DefaultCadence = 5

// Tail marks the end of the rendered document.
const Tail = `<span data-codoc-tail></span>`

// Precompiled regex patterns for performance.
var (
	headingPattern    = regexp.MustCompile(`^( {0,3}#{1,6})([ \t]+|$)`)
	listItemPattern   = regexp.MustCompile(`^ {0,3}(?:[-+*]|\d{1,9}[.)])(?:[ \t]|$)`)
	admonitionOpen    = regexp.MustCompile(`^ {0,3}:::\s*[A-Za-z0-9_-]+`)
	admonitionClose   = regexp.MustCompile(`^ {0,3}:::\s*$`)
	tableDelimiterRow = regexp.MustCompile(`^\s*\|?\s*:?-+:?\s*(?:\|\s*:?-+:?\s*)*\|?\s*$`)
	definitionPattern = regexp.MustCompile(`^ {0,3}\[[^\]]+\]:`)
	thematicBreak     = regexp.MustCompile(`^ {0,3}(?:(?:\*[ \t]*){3,}|(?:-[ \t]*){3,}|(?:_[ \t]*){3,})$`)
)

// Marker returns the marker for 1-based source line n.
func Marker(n int) string {
	return `<span class="codoc-mdline" data-line="` + strconv.Itoa(n) + `"></span>`
}

type block int

const (
	blockNone block = iota
	blockMath
	blockAdmonition
	blockTable
	blockHTML
	blockQuote
	blockIndented
)

// Inject adds line markers and the tail marker to markdown. A cadence below
// one falls back to DefaultCadence.
func Inject(markdown string, cadence int) string {
	if cadence < 1 {
		cadence = DefaultCadence
	}

	lines := fence.Scan(markdown)
	var b strings.Builder
	b.Grow(len(markdown) + len(markdown)/8)

	var (
		inside    block
		prevBlank = true
		next      = 1
	)
	for i, l := range lines {
		n := i + 1
		if l.Kind != fence.Prose {
			inside, prevBlank = blockNone, l.Kind == fence.Close
			b.WriteString(l.Text)
			continue
		}

		body := fence.TrimEOL(l.Text)
		trimmed := strings.TrimSpace(body)

		if inside == blockIndented && trimmed != "" && !isIndentedCode(body) {
			inside = blockNone
		}
		if inside != blockNone {
			inside = stillInside(inside, body, trimmed)
			prevBlank = trimmed == ""
			b.WriteString(l.Text)
			continue
		}

		if trimmed == "" {
			prevBlank = true
			b.WriteString(l.Text)
			continue
		}

		if m := headingPattern.FindStringSubmatchIndex(body); m != nil {
			b.WriteString(body[:m[3]])
			b.WriteString(body[m[3]:m[5]])
			if m[5] == m[4] {
				b.WriteByte(' ')
			}
			b.WriteString(Marker(n))
			b.WriteString(l.Text[m[5]:])
			next = n + cadence
			prevBlank = false
			continue
		}

		if opened := opens(body, trimmed, prevBlank, nextText(lines, i)); opened != blockNone {
			inside = opened
			if opened == blockMath && isOneLineMath(trimmed) {
				inside = blockNone
			}
			prevBlank = false
			b.WriteString(l.Text)
			continue
		}

		if prevBlank && n >= next && markable(body) {
			indent := len(body) - len(strings.TrimLeft(body, " "))
			b.WriteString(l.Text[:indent])
			b.WriteString(Marker(n))
			b.WriteString(l.Text[indent:])
			next = n + cadence
		} else {
			b.WriteString(l.Text)
		}
		prevBlank = false
	}

	if len(lines) > 0 && lines[len(lines)-1].Kind == fence.Unclosed {
		return b.String()
	}
	out := b.String()
	if out != "" && !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out + "\n" + Tail + "\n"
}

// markable reports whether a paragraph-starting line can carry a marker.
// Link reference and footnote definitions stop being definitions once
// anything precedes them.
func markable(body string) bool {
	return !listItemPattern.MatchString(body) &&
		!thematicBreak.MatchString(body) &&
		!definitionPattern.MatchString(body)
}

// opens reports which unmarked construct starts at this line.
func opens(body, trimmed string, prevBlank bool, next string) block {
	switch {
	case strings.HasPrefix(trimmed, "$$"):
		return blockMath
	case admonitionOpen.MatchString(body):
		return blockAdmonition
	case strings.HasPrefix(trimmed, ">"):
		return blockQuote
	case strings.HasPrefix(trimmed, "<"):
		return blockHTML
	case prevBlank && isIndentedCode(body):
		return blockIndented
	case strings.HasPrefix(trimmed, "|"),
		strings.Contains(trimmed, "|") && tableDelimiterRow.MatchString(fence.TrimEOL(next)) && strings.Contains(next, "-"):
		return blockTable
	}
	return blockNone
}

// stillInside reports the construct the following line belongs to, given
// that this line was inside b.
func stillInside(b block, body, trimmed string) block {
	switch b {
	case blockMath:
		if strings.HasSuffix(trimmed, "$$") {
			return blockNone
		}
	case blockAdmonition:
		if admonitionClose.MatchString(body) {
			return blockNone
		}
	case blockIndented:
	default:
		if trimmed == "" {
			return blockNone
		}
	}
	return b
}

func isOneLineMath(trimmed string) bool {
	return len(trimmed) > 4 && strings.HasSuffix(trimmed, "$$")
}

func isIndentedCode(body string) bool {
	return strings.HasPrefix(body, "    ") || strings.HasPrefix(body, "\t")
}

func nextText(lines []fence.Line, i int) string {
	if i+1 < len(lines) {
		return lines[i+1].Text
	}
	return ""
}
