// Package export turns a rendered document into a standalone HTML page and
// prints that page to PDF with headless Chrome.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrHTMLConversion indicates the Markdown to HTML step failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

const (
	documentHead = `<!doctype html><html><head><meta charset="utf-8"/>` +
		`<meta name="viewport" content="width=device-width, initial-scale=1"/>` +
		`</head><body><article class="markdown-body">`
	documentTail = `</article></body></html>`
)

// HTMLBuilder converts pipeline output to a complete HTML document.
// It is safe for concurrent use.
type HTMLBuilder struct {
	md goldmark.Markdown
}

// NewHTMLBuilder creates an HTMLBuilder with GFM, footnotes and syntax
// highlighting for fences the pipeline left untouched. Raw HTML passes
// through, since the pipeline's output is mostly HTML.
func NewHTMLBuilder() *HTMLBuilder {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,      // Tables, strikethrough, autolinks, task lists
			extension.Footnote, // [^1] footnotes
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(false), // inline styles, the PDF has no chroma stylesheet
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(), // ids match the [TOC] anchors
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
			html.WithXHTML(),
		),
	)
	return &HTMLBuilder{md: md}
}

// Build converts markdown to a standalone HTML document. Root-relative src
// and href values are made absolute against baseURL when it is not empty.
// Goldmark has no context support, so conversion runs in a goroutine and
// Build returns as soon as ctx is done.
func (b *HTMLBuilder) Build(ctx context.Context, markdown, baseURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := b.md.Convert([]byte(markdown), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		body, err := absolutize(buf.String(), baseURL)
		if err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: documentHead + body + documentTail}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// absolutize prefixes root-relative src and href attributes with base.
// Protocol-relative values ("//host/x") are left alone.
func absolutize(fragment, base string) (string, error) {
	base = strings.TrimRight(base, "/")
	if base == "" || (!strings.Contains(fragment, `src="/`) && !strings.Contains(fragment, `href="/`)) {
		return fragment, nil
	}

	parent := &nethtml.Node{Type: nethtml.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := nethtml.ParseFragment(strings.NewReader(fragment), parent)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		rewriteLinks(n, base)
		if err := nethtml.Render(&buf, n); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func rewriteLinks(n *nethtml.Node, base string) {
	if n.Type == nethtml.ElementNode {
		for i, a := range n.Attr {
			if a.Namespace != "" || (a.Key != "src" && a.Key != "href") {
				continue
			}
			if strings.HasPrefix(a.Val, "/") && !strings.HasPrefix(a.Val, "//") {
				n.Attr[i].Val = base + a.Val
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteLinks(c, base)
	}
}
