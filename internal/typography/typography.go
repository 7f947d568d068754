// Package typography applies HackMD-style typographic replacements to
// Markdown: smart quotes, dashes, ellipses, symbol ligatures and collapsed
// punctuation runs.
//
// Only prose is touched. Fenced code, inline code, math, embed directives,
// GFM tables, raw HTML tags, thematic breaks and link destinations are kept
// intact so that the document still parses the same way afterwards.
package typography

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/alnah/go-hackmd/internal/fence"
)

// Precompiled regex patterns for performance.
var (
	// Embed directives {% name args %}
	directivePattern = regexp.MustCompile(`(?is)\{%\s*[A-Za-z0-9_-]+(?:\s+.*?)?\s*%\}`)

	// GFM table delimiter row, one dash per cell is enough
	tableDelimPattern = regexp.MustCompile(`^\s*\|?\s*:?-+:?\s*(?:\|\s*:?-+:?\s*)+\|?\s*$`)
	delimCellPattern  = regexp.MustCompile(`^:?-+:?$`)

	// Inline $...$ and display $$...$$ math
	mathSpanPattern = regexp.MustCompile(`\$\$[\s\S]+?\$\$|\$[^\s$](?:[^$\n]*?[^\s$])?\$`)

	// Raw HTML tags and comments
	htmlTagPattern = regexp.MustCompile(`<!--[\s\S]*?-->|</?[A-Za-z][^>]*?>`)

	// Inline link or image with destination: [label](dest) / ![alt](dest)
	inlineLinkPattern = regexp.MustCompile(`(!?\[[^\]]*\])\(([^)\n]*)\)`)

	// Reference definition line: [label]: dest "title"
	refDefPattern = regexp.MustCompile(`(?m)^[ \t]*\[[^\]]+\][ \t]*:[ \t]*[^\n]*$`)

	// Symbol ligatures
	copyrightPattern  = regexp.MustCompile(`(?i)\(c\)`)
	registeredPattern = regexp.MustCompile(`(?i)\(r\)`)
	trademarkPattern  = regexp.MustCompile(`(?i)\(tm\)`)
	paragraphPattern  = regexp.MustCompile(`(?i)\(p\)`)

	// Punctuation runs
	manyBangs  = regexp.MustCompile(`!{4,}`)
	manyQuests = regexp.MustCompile(`\?{4,}`)
	manyCommas = regexp.MustCompile(`,{2,}`)
)

var curlyToStraight = strings.NewReplacer(
	"“", `"`,
	"”", `"`,
	"‘", "'",
	"’", "'",
)

// Apply runs the typography pass over a Markdown document.
func Apply(markdown string) string {
	if markdown == "" {
		return markdown
	}
	return fence.MapProse(markdown, processProse)
}

// processProse handles one run of prose lines.
func processProse(segment string) string {
	var b strings.Builder
	b.Grow(len(segment))

	last := 0
	for _, loc := range directivePattern.FindAllStringIndex(segment, -1) {
		b.WriteString(processOutsideDirectives(segment[last:loc[0]]))
		b.WriteString(segment[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(processOutsideDirectives(segment[last:]))
	return b.String()
}

func processOutsideDirectives(chunk string) string {
	if chunk == "" {
		return chunk
	}
	var b strings.Builder
	for _, p := range splitProtectedLines(chunk) {
		if p.raw {
			b.WriteString(p.text)
			continue
		}
		for _, sp := range fence.SplitInlineCode(p.text) {
			if sp.Code {
				b.WriteString(sp.Text)
				continue
			}
			b.WriteString(applyOutsideMath(sp.Text))
		}
	}
	return b.String()
}

// applyOutsideMath typesets s but copies math spans unchanged.
func applyOutsideMath(s string) string {
	if !strings.Contains(s, "$") {
		return applyPreservingSyntax(s)
	}
	var b strings.Builder
	last := 0
	for _, loc := range mathSpanPattern.FindAllStringIndex(s, -1) {
		b.WriteString(applyPreservingSyntax(s[last:loc[0]]))
		b.WriteString(s[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(applyPreservingSyntax(s[last:]))
	return b.String()
}

// part is a slice of lines that is either typeset or kept raw.
type part struct {
	text string
	raw  bool
}

// splitProtectedLines separates GFM tables and thematic breaks from the
// text around them. Table delimiter rows are normalized on the way.
func splitProtectedLines(chunk string) []part {
	lines := fence.SplitLines(chunk)
	var parts []part
	var text strings.Builder

	flush := func() {
		if text.Len() > 0 {
			parts = append(parts, part{text: text.String()})
			text.Reset()
		}
	}

	for i := 0; i < len(lines); {
		if i+1 < len(lines) && isTableHeader(lines[i]) && isTableDelimiter(lines[i+1]) {
			flush()
			var table strings.Builder
			table.WriteString(lines[i])
			table.WriteString(NormalizeDelimiterRow(lines[i+1]))
			i += 2
			for i < len(lines) && strings.TrimSpace(lines[i]) != "" && strings.Contains(lines[i], "|") {
				table.WriteString(lines[i])
				i++
			}
			parts = append(parts, part{text: table.String(), raw: true})
			continue
		}
		if isThematicBreak(lines[i]) {
			flush()
			parts = append(parts, part{text: lines[i], raw: true})
			i++
			continue
		}
		text.WriteString(lines[i])
		i++
	}
	flush()
	return parts
}

func isTableHeader(line string) bool {
	s := strings.TrimSpace(line)
	if !strings.Contains(s, "|") {
		return false
	}
	return strings.ContainsFunc(s, func(r rune) bool {
		return !strings.ContainsRune("|:- ", r)
	})
}

func isTableDelimiter(line string) bool {
	return tableDelimPattern.MatchString(fence.TrimEOL(line))
}

// isThematicBreak reports whether line is a run of three or more '-', '*'
// or '_' (spaces allowed between), or a setext underline of '=' or '-'.
func isThematicBreak(line string) bool {
	s := strings.TrimSpace(line)
	if len(s) < 2 {
		return false
	}
	ch := s[0]
	if ch != '-' && ch != '*' && ch != '_' && ch != '=' {
		return false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ch:
			n++
		case ' ', '\t':
		default:
			return false
		}
	}
	if ch == '=' || ch == '-' {
		return n >= 2
	}
	return n >= 3
}

// NormalizeDelimiterRow pads every cell of a GFM delimiter row to at least
// three dashes, keeping alignment colons, and adds outer pipes.
func NormalizeDelimiterRow(line string) string {
	raw := fence.TrimEOL(line)
	eol := line[len(raw):]
	if !strings.Contains(raw, "|") {
		return line
	}

	s := raw
	if !strings.HasPrefix(strings.TrimSpace(s), "|") {
		s = "|" + s
	}
	if !strings.HasSuffix(strings.TrimSpace(s), "|") {
		s += "|"
	}

	cells := strings.Split(s, "|")
	for i, c := range cells {
		core := strings.TrimSpace(c)
		if !delimCellPattern.MatchString(core) {
			continue
		}
		lead := c[:strings.Index(c, core)]
		trail := c[len(lead)+len(core):]
		cells[i] = lead + padCell(core) + trail
	}
	return strings.Join(cells, "|") + eol
}

func padCell(cell string) string {
	left, right := "", ""
	if strings.HasPrefix(cell, ":") {
		left = ":"
	}
	if strings.HasSuffix(cell, ":") && len(cell) > 1 {
		right = ":"
	}
	dashes := len(cell) - len(left) - len(right)
	return left + strings.Repeat("-", max(3, dashes)) + right
}

// applyPreservingSyntax typesets text while keeping reference definitions
// and inline link destinations parseable.
func applyPreservingSyntax(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	last := 0
	for _, loc := range refDefPattern.FindAllStringIndex(s, -1) {
		b.WriteString(applyPreservingLinks(s[last:loc[0]]))
		b.WriteString(curlyToStraight.Replace(s[loc[0]:loc[1]]))
		last = loc[1]
	}
	b.WriteString(applyPreservingLinks(s[last:]))
	return b.String()
}

func applyPreservingLinks(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	last := 0
	for _, m := range inlineLinkPattern.FindAllStringSubmatchIndex(s, -1) {
		b.WriteString(applyPreservingHTML(s[last:m[0]]))
		b.WriteString(s[m[2]:m[3]])
		b.WriteByte('(')
		b.WriteString(curlyToStraight.Replace(s[m[4]:m[5]]))
		b.WriteByte(')')
		last = m[1]
	}
	b.WriteString(applyPreservingHTML(s[last:]))
	return b.String()
}

func applyPreservingHTML(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	last := 0
	for _, loc := range htmlTagPattern.FindAllStringIndex(s, -1) {
		b.WriteString(Text(s[last:loc[0]]))
		b.WriteString(s[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(Text(s[last:]))
	return b.String()
}

// Text applies every replacement to plain text. Callers are responsible for
// excluding code and markup.
func Text(s string) string {
	if s == "" {
		return s
	}

	s = copyrightPattern.ReplaceAllLiteralString(s, "©")
	s = registeredPattern.ReplaceAllLiteralString(s, "®")
	s = trademarkPattern.ReplaceAllLiteralString(s, "™")
	s = paragraphPattern.ReplaceAllLiteralString(s, "§")
	s = strings.ReplaceAll(s, "+-", "±")

	s = strings.ReplaceAll(s, "---", "—")
	s = strings.ReplaceAll(s, "--", "–")
	s = strings.ReplaceAll(s, "...", "…")

	s = manyBangs.ReplaceAllLiteralString(s, "!!!")
	s = manyQuests.ReplaceAllLiteralString(s, "???")
	s = manyCommas.ReplaceAllLiteralString(s, ",")

	return Smarten(s)
}

// Smarten replaces straight quotes with directional ones.
//
// A quote opens when the previous non-space character is absent, an opening
// bracket or '-', or when whitespace directly precedes it. It closes when the
// next non-space character is absent or closing punctuation. A single quote
// directly between two alphanumerics is an apostrophe.
func Smarten(s string) string {
	if !strings.ContainsAny(s, `"'`) {
		return s
	}

	rs := []rune(s)
	out := make([]rune, len(rs))
	for i, r := range rs {
		if r != '"' && r != '\'' {
			out[i] = r
			continue
		}

		if r == '\'' && i > 0 && i+1 < len(rs) && isAlnum(rs[i-1]) && isAlnum(rs[i+1]) {
			out[i] = '’'
			continue
		}

		prev := prevNonSpace(rs, i)
		next := nextNonSpace(rs, i)

		open := prev == 0 || strings.ContainsRune("([{-", prev) || (i > 0 && unicode.IsSpace(rs[i-1]))
		if next == 0 || strings.ContainsRune(")]}.,:;!?", next) {
			open = false
		}

		switch {
		case r == '"' && open:
			out[i] = '“'
		case r == '"':
			out[i] = '”'
		case open:
			out[i] = '‘'
		default:
			out[i] = '’'
		}
	}
	return string(out)
}

func prevNonSpace(rs []rune, i int) rune {
	for j := i - 1; j >= 0; j-- {
		if !unicode.IsSpace(rs[j]) {
			return rs[j]
		}
	}
	return 0
}

func nextNonSpace(rs []rune, i int) rune {
	for j := i + 1; j < len(rs); j++ {
		if !unicode.IsSpace(rs[j]) {
			return rs[j]
		}
	}
	return 0
}

func isAlnum(r rune) bool {
	return r != 0 && (unicode.IsLetter(r) || unicode.IsDigit(r))
}
