package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/dustin/go-humanize"
)

// ErrEmptyDocument is returned when there is nothing to export.
var ErrEmptyDocument = errors.New("document is empty")

// Precompiled regex patterns for performance.
var (
	titlePattern    = regexp.MustCompile(`^\s*#\s+(.+?)\s*$`)
	unsafeFileChars = regexp.MustCompile(`[\\/:*?"<>|]+`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
)

// DefaultFilename is used when a title leaves nothing usable.
const DefaultFilename = "document"

// Title returns the front matter title of the raw document, else the text of
// its first level-one heading, else fallback.
func Title(markdown, fallback string) string {
	meta, body := SplitFrontMatter(markdown)
	if title := strings.TrimSpace(meta.Title); title != "" {
		return title
	}
	for line := range strings.Lines(body) {
		m := titlePattern.FindStringSubmatch(strings.TrimRight(line, "\r\n"))
		if m == nil {
			continue
		}
		if title := strings.TrimSpace(m[1]); title != "" {
			return title
		}
	}
	return fallback
}

// Filename turns a title into a file name without extension.
// Characters that are unsafe on common file systems become "-".
func Filename(title string) string {
	name := strings.TrimSpace(unsafeFileChars.ReplaceAllString(title, "-"))
	name = whitespaceRun.ReplaceAllString(name, " ")
	if name == "" {
		return DefaultFilename
	}
	return name
}

// MarkdownRenderer runs the text pipeline in export mode.
type MarkdownRenderer interface {
	RenderExport(ctx context.Context, text string) (string, error)
}

// Exporter renders a document, builds its HTML page and prints it.
type Exporter struct {
	markdown MarkdownRenderer
	pdf      PDFRenderer
	html     *HTMLBuilder
	baseURL  string
	css      string
	logger   *slog.Logger
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithBaseURL sets the URL root-relative links are resolved against.
func WithBaseURL(u string) Option {
	return func(e *Exporter) {
		e.baseURL = strings.TrimRight(u, "/")
	}
}

// WithPage sets the page size and margin of the print stylesheet.
func WithPage(size, margin string) Option {
	return func(e *Exporter) {
		e.css = Stylesheet(size, margin)
	}
}

// WithLogger sets the logger. Panics if l is nil.
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic("export: WithLogger requires a non-nil logger")
	}
	return func(e *Exporter) {
		e.logger = l
	}
}

// NewExporter creates an Exporter. Panics if md or pdf is nil.
func NewExporter(md MarkdownRenderer, pdf PDFRenderer, opts ...Option) *Exporter {
	if md == nil || pdf == nil {
		panic("export: NewExporter requires a markdown renderer and a PDF renderer")
	}
	e := &Exporter{
		markdown: md,
		pdf:      pdf,
		html:     NewHTMLBuilder(),
		css:      Stylesheet(DefaultPageSize, DefaultMargin),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// HTML returns the title and the print-ready HTML page of a document.
// Front matter is not printed.
func (e *Exporter) HTML(ctx context.Context, docID, markdown string) (title, page string, err error) {
	_, body := SplitFrontMatter(markdown)
	if strings.TrimSpace(body) == "" {
		return "", "", ErrEmptyDocument
	}

	prepared, err := e.markdown.RenderExport(ctx, body)
	if err != nil {
		return "", "", err
	}
	doc, err := e.html.Build(ctx, prepared, e.baseURL)
	if err != nil {
		return "", "", err
	}
	return Title(markdown, docID), injectCSS(doc, e.css), nil
}

// Export returns the file name (without extension) and the PDF bytes of a
// document.
func (e *Exporter) Export(ctx context.Context, docID, markdown string) (string, []byte, error) {
	title, page, err := e.HTML(ctx, docID, markdown)
	if err != nil {
		return "", nil, fmt.Errorf("exporting %s: %w", docID, err)
	}

	pdf, err := e.pdf.PDF(ctx, page)
	if err != nil {
		return "", nil, fmt.Errorf("exporting %s: %w", docID, err)
	}

	e.logger.Debug("document exported", "doc_id", docID, "title", title, "size", humanize.Bytes(uint64(len(pdf))))
	return Filename(title), pdf, nil
}
