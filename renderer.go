package hackmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alnah/go-hackmd/internal/admonition"
	"github.com/alnah/go-hackmd/internal/cache"
	"github.com/alnah/go-hackmd/internal/codefence"
	"github.com/alnah/go-hackmd/internal/embed"
	"github.com/alnah/go-hackmd/internal/emoji"
	"github.com/alnah/go-hackmd/internal/fencedblock"
	"github.com/alnah/go-hackmd/internal/fontawesome"
	"github.com/alnah/go-hackmd/internal/imagesize"
	"github.com/alnah/go-hackmd/internal/inlineext"
	"github.com/alnah/go-hackmd/internal/mathdelim"
	"github.com/alnah/go-hackmd/internal/quote"
	"github.com/alnah/go-hackmd/internal/remote"
	"github.com/alnah/go-hackmd/internal/scrollmark"
	"github.com/alnah/go-hackmd/internal/toc"
	"github.com/alnah/go-hackmd/internal/typography"
)

// Mode selects which passes run.
type Mode int

const (
	// ModeInteractive is for the live editor view and adds scroll markers.
	ModeInteractive Mode = iota
	// ModeExport is for printing and skips scroll markers.
	ModeExport
)

// String returns "interactive" or "export".
func (m Mode) String() string {
	switch m {
	case ModeInteractive:
		return "interactive"
	case ModeExport:
		return "export"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses the name of a mode, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "interactive":
		return ModeInteractive, nil
	case "export":
		return ModeExport, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// stage is one pass over the whole document.
type stage struct {
	name  string
	apply func(ctx context.Context, markdown string) string
}

// Renderer runs the extension pipeline. It holds no per-call state and is
// safe for concurrent use.
type Renderer struct {
	logger      *slog.Logger
	interactive []stage
	export      []stage
}

// New creates a Renderer. Without WithRemote it builds a remote client from
// the cache, HTTP and fetch options.
func New(opts ...Option) *Renderer {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}

	rem := s.remote
	if !s.remoteSet {
		rem = newRemoteClient(&s)
	}

	embeds := embed.NewRegistry(embed.Defaults(s.baseURL, rem)...)
	for _, p := range s.embeds {
		embeds.Register(p)
	}
	blocks := fencedblock.Default(s.baseURL)
	for _, b := range s.blocks {
		blocks.Register(b.lang, b.provider)
	}

	resolver := emoji.NewResolver()
	admonitions := admonition.New(resolver)
	quotes := quote.New(resolver)

	text := func(name string, fn func(string) string) stage {
		return stage{name: name, apply: func(_ context.Context, md string) string { return fn(md) }}
	}

	var body []stage
	body = append(body,
		text("codefence", func(md string) string { return codefence.Normalize(md, &codefence.State{}) }),
		text("toc", toc.Apply),
	)
	if s.typography {
		body = append(body, text("typography", typography.Apply))
	}
	body = append(body,
		text("inline", inlineext.Apply),
		text("fontawesome", fontawesome.Apply),
		text("emoji", resolver.Apply),
		text("imagesize", imagesize.Apply),
		stage{name: "embed", apply: embeds.Apply},
		text("fencedblock", blocks.Apply),
		text("admonition", admonitions.Apply),
		text("quote", quotes.Apply),
	)
	if s.highlight {
		body = append(body, text("highlight", codefence.NewHighlighter().Apply))
	}

	cadence := s.cadence
	r := &Renderer{logger: s.logger}
	r.export = append([]stage{text("math", mathdelim.Normalize)}, body...)
	r.interactive = append([]stage{
		text("math", mathdelim.Normalize),
		text("scrollmark", func(md string) string { return scrollmark.Inject(md, cadence) }),
	}, body...)
	return r
}

func newRemoteClient(s *settings) *remote.Client {
	opts := []remote.Option{
		remote.WithCache(cache.New(s.cacheSize, s.cacheTTL, cache.WithClock(s.now))),
		remote.WithLogger(s.logger),
		remote.WithUserAgent(s.userAgent),
		remote.WithFetchHook(s.fetchHook),
	}
	if s.httpClient != nil {
		opts = append(opts, remote.WithHTTPClient(s.httpClient))
	}
	if s.fetchTimeout > 0 {
		opts = append(opts, remote.WithTimeout(s.fetchTimeout))
	}
	return remote.NewClient(opts...)
}

// Render runs the pipeline for mode over text and returns Markdown with
// the extensions expanded to HTML.
//
// Remote lookups that fail never fail the render; the affected directive
// falls back to its static form. Cancellation of ctx does, and is reported
// as ErrRenderCanceled wrapping ctx.Err().
func (r *Renderer) Render(ctx context.Context, text string, mode Mode) (string, error) {
	if ctx == nil {
		return "", ErrNilContext
	}

	var stages []stage
	switch mode {
	case ModeInteractive:
		stages = r.interactive
	case ModeExport:
		stages = r.export
	default:
		return "", fmt.Errorf("%w: %v", ErrUnknownMode, mode)
	}

	start := time.Now()
	out := text
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("%w before %s: %w", ErrRenderCanceled, st.name, err)
		}
		out = st.apply(ctx, out)
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrRenderCanceled, err)
	}

	r.logger.Debug("markdown rendered",
		"mode", mode.String(),
		"in_bytes", len(text),
		"out_bytes", len(out),
		"duration", time.Since(start))
	return out, nil
}

// RenderInteractive is Render with ModeInteractive.
func (r *Renderer) RenderInteractive(ctx context.Context, text string) (string, error) {
	return r.Render(ctx, text, ModeInteractive)
}

// RenderExport is Render with ModeExport.
func (r *Renderer) RenderExport(ctx context.Context, text string) (string, error) {
	return r.Render(ctx, text, ModeExport)
}
