package codefence

import (
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/alnah/go-hackmd/internal/fence"
	"github.com/alnah/go-hackmd/internal/htmlutil"
)

// DefaultStyle is the chroma style used when none is configured.
const DefaultStyle = "github"

const (
	blockOpen  = `<div style="margin-top: 1em; margin-bottom: 1em; overflow-x: auto;">`
	blockClose = `</div>`
	wrapStyle  = "white-space: pre-wrap; word-break: break-word; "
)

// Precompiled regex patterns for performance.
var (
	preStylePattern = regexp.MustCompile(`(?i)<pre\b[^>]*?style="`)
	preTagPattern   = regexp.MustCompile(`(?i)<pre\b`)
)

// Highlighter renders fenced code blocks to inline-styled HTML.
// It is safe for concurrent use.
type Highlighter struct {
	style *chroma.Style
}

// Option configures a Highlighter.
type Option func(*Highlighter)

// WithStyle selects a chroma style by name. Unknown names fall back to
// chroma's default style.
func WithStyle(name string) Option {
	return func(h *Highlighter) {
		h.style = styles.Get(name)
	}
}

// NewHighlighter creates a Highlighter.
func NewHighlighter(opts ...Option) *Highlighter {
	h := &Highlighter{style: styles.Get(DefaultStyle)}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Apply replaces every closed fenced block with highlighted HTML.
// Unclosed fences are left as text.
func (h *Highlighter) Apply(markdown string) string {
	if !strings.Contains(markdown, "```") && !strings.Contains(markdown, "~~~") {
		return markdown
	}
	return fence.MapBlocks(markdown, func(b *fence.Block) (string, bool) {
		return h.RenderBlock(b.Info, b.Code()) + "\n", true
	})
}

// RenderBlock highlights code according to a canonical info string.
// Unknown languages use the plain-text lexer.
func (h *Highlighter) RenderBlock(info, code string) string {
	in := ParseInfo(info)

	highlighted, err := h.highlight(in, code)
	if err != nil {
		highlighted = `<pre style="` + h.preStyle() + `"><code>` + htmlutil.EscapeText(code) + "</code></pre>"
	}
	if in.Wrap {
		highlighted = addWrap(highlighted)
	}
	return blockOpen + highlighted + blockClose
}

func (h *Highlighter) highlight(in Info, code string) (string, error) {
	lexer := lexers.Get(in.Language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", err
	}

	formatter := chromahtml.New(
		chromahtml.WithClasses(false),
		chromahtml.WithLineNumbers(in.LineNumbers),
		chromahtml.LineNumbersInTable(in.LineNumbers),
		chromahtml.BaseLineNumber(in.Start),
	)

	var sb strings.Builder
	if err := formatter.Format(&sb, h.style, iterator); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (h *Highlighter) preStyle() string {
	bg := h.style.Get(chroma.Background)
	if bg.Background.IsSet() {
		return "background-color:" + bg.Background.String() + ";"
	}
	return ""
}

// addWrap enables line wrapping on the first <pre> element.
func addWrap(s string) string {
	if loc := preStylePattern.FindStringIndex(s); loc != nil {
		return s[:loc[1]] + wrapStyle + s[loc[1]:]
	}
	if loc := preTagPattern.FindStringIndex(s); loc != nil {
		return s[:loc[1]] + ` style="` + strings.TrimSpace(wrapStyle) + `"` + s[loc[1]:]
	}
	return s
}
