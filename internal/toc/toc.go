// Package toc expands a [TOC] line into a nested list of links to the
// document's headings.
package toc

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/alnah/go-hackmd/internal/fence"
	"github.com/alnah/go-hackmd/internal/htmlutil"
)

// MaxDepth is the deepest heading level listed.
const MaxDepth = 3

// Precompiled regex patterns for performance.
var (
	atxHeading  = regexp.MustCompile(`^ {0,3}(#{1,6})(?:[ \t]+(.*?))?(?:[ \t]+#+)?[ \t]*$`)
	htmlTag     = regexp.MustCompile(`<[^>]*>`)
	inlineLink  = regexp.MustCompile(`!?\[([^\]]*)\]\([^)]*\)`)
	emphasisRun = regexp.MustCompile("[*_~`]+")
)

// Heading is one ATX heading of the source.
type Heading struct {
	Level int
	Text  string // plain text, markup removed
	ID    string
}

// Slugger builds GitHub-style anchors and numbers repeats with -1, -2, ...
// A Slugger is used for one document only.
type Slugger struct {
	seen map[string]int
}

// NewSlugger creates an empty Slugger.
func NewSlugger() *Slugger {
	return &Slugger{seen: make(map[string]int)}
}

// Slug returns the anchor for text, unique within this Slugger.
func (s *Slugger) Slug(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('-')
		}
	}
	base := b.String()

	slug := base
	if n, ok := s.seen[base]; ok {
		for {
			n++
			slug = base + "-" + strconv.Itoa(n)
			if _, taken := s.seen[slug]; !taken {
				break
			}
		}
		s.seen[base] = n
	} else {
		s.seen[base] = 0
	}
	s.seen[slug] = 0
	return slug
}

// Headings returns every ATX heading outside fenced code, with anchors
// assigned in document order.
func Headings(markdown string) []Heading {
	slugger := NewSlugger()
	var out []Heading
	for _, l := range fence.Scan(markdown) {
		if l.Kind != fence.Prose {
			continue
		}
		m := atxHeading.FindStringSubmatch(fence.TrimEOL(l.Text))
		if m == nil {
			continue
		}
		text := plainText(m[2])
		out = append(out, Heading{Level: len(m[1]), Text: text, ID: slugger.Slug(text)})
	}
	return out
}

func plainText(s string) string {
	s = htmlTag.ReplaceAllString(s, "")
	s = inlineLink.ReplaceAllString(s, "$1")
	s = emphasisRun.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Apply replaces every prose line reading [TOC] with the table of contents.
// Without headings the line is left as is.
func Apply(markdown string) string {
	if !strings.Contains(markdown, "[TOC]") {
		return markdown
	}

	var listed []Heading
	for _, h := range Headings(markdown) {
		if h.Level <= MaxDepth && h.Text != "" {
			listed = append(listed, h)
		}
	}
	if len(listed) == 0 {
		return markdown
	}
	nav := Render(listed)

	return fence.MapProseLines(markdown, func(line string) string {
		if strings.TrimSpace(fence.TrimEOL(line)) != "[TOC]" {
			return line
		}
		eol := fence.EOL(line)
		if eol == "" {
			eol = "\n"
		}
		return eol + nav + eol + eol
	})
}

// Render builds the nav element for headings. Levels are normalized so the
// shallowest heading sits at the top, and skipped levels nest one deep.
func Render(headings []Heading) string {
	var b strings.Builder
	b.WriteString(`<nav class="toc codoc-toc"><ul>`)

	minLevel, cur := 0, 0
	for _, h := range headings {
		if minLevel == 0 {
			minLevel = h.Level
		}
		depth := max(h.Level-minLevel+1, 1)

		switch {
		case cur == 0:
			depth = 1
		case depth > cur:
			depth = cur + 1
			b.WriteString("<ul>")
		case depth == cur:
			b.WriteString("</li>")
		default:
			b.WriteString("</li>")
			for ; cur > depth; cur-- {
				b.WriteString("</ul></li>")
			}
		}
		cur = depth

		b.WriteString(`<li><a href="#`)
		b.WriteString(htmlutil.EscapeAttr(h.ID))
		b.WriteString(`">`)
		b.WriteString(htmlutil.EscapeText(h.Text))
		b.WriteString("</a>")
	}

	if cur > 0 {
		b.WriteString("</li>")
		for ; cur > 1; cur-- {
			b.WriteString("</ul></li>")
		}
	}
	b.WriteString("</ul></nav>")
	return b.String()
}
