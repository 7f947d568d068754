// Package admonition renders HackMD container blocks (:::info, :::spoiler,
// ...) as styled raw HTML.
package admonition

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/alnah/go-hackmd/internal/fence"
	"github.com/alnah/go-hackmd/internal/htmlutil"
)

// Precompiled regex patterns for performance.
var (
	startPattern = regexp.MustCompile(`^\s*:::([a-zA-Z0-9_-]+)(.*)$`)
	endPattern   = regexp.MustCompile(`^\s*:::\s*$`)

	// Spoiler attribute block: {state="open"} Title
	attrsPattern = regexp.MustCompile(`^\s*\{([^}]*)\}\s*(.*)$`)
	openPattern  = regexp.MustCompile(`\bstate\s*=\s*(?:["“”]open["“”]|'open'|open)`)
)

// Palette holds the colors of one admonition kind.
type Palette struct {
	Border, Background, Title string
}

var palettes = map[string]Palette{
	"success": {Border: "#16a34a", Background: "#dcfce7", Title: "#166534"},
	"info":    {Border: "#0284c7", Background: "#e0f2fe", Title: "#075985"},
	"warning": {Border: "#f59e0b", Background: "#fef9c3", Title: "#92400e"},
	"danger":  {Border: "#ef4444", Background: "#fee2e2", Title: "#991b1b"},
}

var fallbackPalette = Palette{Border: "#cbd5e1", Background: "#f8fafc", Title: "#334155"}

// PaletteFor returns the colors for kind, or a neutral palette.
func PaletteFor(kind string) Palette {
	if p, ok := palettes[strings.ToLower(kind)]; ok {
		return p
	}
	return fallbackPalette
}

// Supported reports whether kind is rendered as an admonition.
func Supported(kind string) bool {
	kind = strings.ToLower(kind)
	_, ok := palettes[kind]
	return ok || kind == "spoiler"
}

// Emoji resolves shortcodes inside admonition text.
type Emoji interface {
	Replace(text string) string
}

// Parser converts admonition blocks. It is safe for concurrent use.
type Parser struct {
	emoji Emoji
}

// New creates a Parser. A nil emoji resolver leaves shortcodes as they are.
func New(emoji Emoji) *Parser {
	return &Parser{emoji: emoji}
}

// Apply replaces supported admonition blocks outside fenced code.
// A block without a closing ::: runs to the end of the document.
// Unsupported kinds are left as literal text.
func (p *Parser) Apply(markdown string) string {
	if !strings.Contains(markdown, ":::") {
		return markdown
	}

	lines := fence.SplitLines(markdown)
	var out strings.Builder
	out.Grow(len(markdown))

	for i := 0; i < len(lines); {
		if next, ok := fence.SkipBlock(lines, i); ok {
			for _, l := range lines[i:next] {
				out.WriteString(l)
			}
			i = next
			continue
		}

		m := startPattern.FindStringSubmatch(fence.TrimEOL(lines[i]))
		if m == nil || !Supported(m[1]) {
			out.WriteString(lines[i])
			i++
			continue
		}

		var body []string
		for i++; i < len(lines) && !endPattern.MatchString(fence.TrimEOL(lines[i])); i++ {
			body = append(body, fence.TrimEOL(lines[i]))
		}
		if i < len(lines) {
			i++
		}

		kind, rest := strings.ToLower(m[1]), strings.TrimSpace(m[2])
		if kind == "spoiler" {
			out.WriteString(p.renderSpoiler(rest, body))
			continue
		}
		out.WriteString(p.renderBox(kind, body))
	}
	return out.String()
}

func (p *Parser) renderBox(kind string, body []string) string {
	pal := PaletteFor(kind)

	var b strings.Builder
	b.WriteString("\n<div style=\"")
	b.WriteString("border-left:4px solid " + pal.Border + ";")
	b.WriteString("background:" + pal.Background + ";")
	b.WriteString("padding:0.9rem 1rem;border-radius:0.5rem;margin:1rem 0;\">")
	b.WriteString(`<div style="font-weight:700;color:` + pal.Title + `;margin-bottom:0.35rem">`)
	// A Caser must not be shared between goroutines.
	b.WriteString(cases.Title(language.Und).String(kind))
	b.WriteString("</div>")
	b.WriteString(p.renderBody(body))
	b.WriteString("</div>\n")
	return b.String()
}

func (p *Parser) renderSpoiler(rest string, body []string) string {
	title, open := rest, false
	if m := attrsPattern.FindStringSubmatch(rest); m != nil {
		title = strings.TrimSpace(m[2])
		open = openPattern.MatchString(m[1])
	}

	summary := htmlutil.InlineMinimal(p.replaceEmoji(title))
	if summary == "" {
		summary = "Details"
	}
	openAttr := ""
	if open {
		openAttr = " open"
	}

	var b strings.Builder
	b.WriteString("\n<details" + openAttr)
	b.WriteString(` style="border:1px solid #e5e7eb;border-radius:0.5rem;background:#f3f4f6;overflow:hidden;margin:1rem 0">`)
	b.WriteString(`<summary style="cursor:pointer;user-select:none;padding:0.75rem 1rem;font-weight:600;color:#374151">`)
	b.WriteString(summary)
	b.WriteString("</summary>")
	b.WriteString(`<div style="padding:0.75rem 1rem;background:#ffffff">`)
	b.WriteString(p.renderBody(body))
	b.WriteString("</div></details>\n")
	return b.String()
}

// renderBody splits body into paragraphs on blank lines.
func (p *Parser) renderBody(body []string) string {
	var paragraphs [][]string
	var buf []string
	for _, line := range body {
		if strings.TrimSpace(line) == "" {
			if len(buf) > 0 {
				paragraphs = append(paragraphs, buf)
				buf = nil
			}
			continue
		}
		buf = append(buf, line)
	}
	if len(buf) > 0 {
		paragraphs = append(paragraphs, buf)
	}

	var b strings.Builder
	b.WriteString(`<div style="display:flex;flex-direction:column;gap:0.5rem">`)
	for _, para := range paragraphs {
		rendered := make([]string, len(para))
		for i, line := range para {
			rendered[i] = htmlutil.InlineMinimal(p.replaceEmoji(line))
		}
		b.WriteString(`<p style="margin:0" class="text-gray-700 leading-relaxed">`)
		b.WriteString(strings.Join(rendered, "<br/>"))
		b.WriteString("</p>")
	}
	b.WriteString("</div>")
	return b.String()
}

func (p *Parser) replaceEmoji(s string) string {
	if p.emoji == nil {
		return s
	}
	return p.emoji.Replace(s)
}
