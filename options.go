package hackmd

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alnah/go-hackmd/internal/cache"
	"github.com/alnah/go-hackmd/internal/embed"
	"github.com/alnah/go-hackmd/internal/fencedblock"
	"github.com/alnah/go-hackmd/internal/scrollmark"
)

// Remote fetches the third-party metadata some embeds need.
// OEmbed returns the HTML of an oEmbed response; Gist returns the gist's
// files rendered as escaped <pre> blocks.
type Remote interface {
	OEmbed(ctx context.Context, endpoint, target string) (string, error)
	Gist(ctx context.Context, id string) (string, error)
}

// Directive is one parsed {% name args %} occurrence.
type Directive = embed.Directive

// EmbedProvider renders one {% name %} directive.
type EmbedProvider = embed.Provider

// FencedBlockProvider renders the code of one fenced block language.
type FencedBlockProvider = fencedblock.Provider

// FencedBlockFunc adapts a function to FencedBlockProvider.
type FencedBlockFunc = fencedblock.ProviderFunc

type blockBinding struct {
	lang     string
	provider FencedBlockProvider
}

// settings collects options before New builds the stages.
type settings struct {
	baseURL      string
	cacheSize    int
	cacheTTL     time.Duration
	httpClient   *http.Client
	remote       Remote
	remoteSet    bool
	logger       *slog.Logger
	cadence      int
	typography   bool
	highlight    bool
	embeds       []EmbedProvider
	blocks       []blockBinding
	now          func() time.Time
	fetchTimeout time.Duration
	userAgent    string
	fetchHook    func(kind, outcome string)
}

func defaultSettings() settings {
	return settings{
		cacheSize:  cache.DefaultSize,
		cacheTTL:   cache.DefaultTTL,
		logger:     slog.New(slog.DiscardHandler),
		cadence:    scrollmark.DefaultCadence,
		typography: true,
		highlight:  true,
		now:        time.Now,
	}
}

// Option configures a Renderer.
type Option func(*settings)

// WithBaseURL sets the backend root that embed iframes point at, for
// example "https://codoc.example". A trailing slash is dropped.
func WithBaseURL(u string) Option {
	return func(s *settings) {
		s.baseURL = strings.TrimRight(u, "/")
	}
}

// WithCache bounds the metadata cache of the built-in remote client.
// Panics if size or ttl is not positive.
func WithCache(size int, ttl time.Duration) Option {
	if size <= 0 || ttl <= 0 {
		panic("hackmd: WithCache size and ttl must be positive")
	}
	return func(s *settings) {
		s.cacheSize = size
		s.cacheTTL = ttl
	}
}

// WithHTTPClient sets the client used for oEmbed and Gist lookups.
// Panics if hc is nil.
func WithHTTPClient(hc *http.Client) Option {
	if hc == nil {
		panic("hackmd: WithHTTPClient requires a non-nil client")
	}
	return func(s *settings) {
		s.httpClient = hc
	}
}

// WithRemote replaces the built-in remote client. A nil r disables remote
// lookups: oEmbed and Gist directives fall back to their static forms.
func WithRemote(r Remote) Option {
	return func(s *settings) {
		s.remote = r
		s.remoteSet = true
	}
}

// WithFetchTimeout bounds each remote lookup. Panics if d <= 0.
func WithFetchTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("hackmd: WithFetchTimeout duration must be positive")
	}
	return func(s *settings) {
		s.fetchTimeout = d
	}
}

// WithUserAgent sets the User-Agent of remote lookups.
func WithUserAgent(ua string) Option {
	return func(s *settings) {
		s.userAgent = ua
	}
}

// WithFetchHook registers fn to be told the kind ("oembed", "gist") and the
// outcome of every remote lookup.
func WithFetchHook(fn func(kind, outcome string)) Option {
	return func(s *settings) {
		s.fetchHook = fn
	}
}

// WithLogger sets the logger. Panics if l is nil.
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic("hackmd: WithLogger requires a non-nil logger")
	}
	return func(s *settings) {
		s.logger = l
	}
}

// WithScrollCadence sets how many lines apart paragraph scroll markers are.
// Panics if n < 1.
func WithScrollCadence(n int) Option {
	if n < 1 {
		panic("hackmd: WithScrollCadence must be at least 1")
	}
	return func(s *settings) {
		s.cadence = n
	}
}

// WithTypography toggles smart quotes, dashes and ellipses.
func WithTypography(enabled bool) Option {
	return func(s *settings) {
		s.typography = enabled
	}
}

// WithHighlight toggles server-side syntax highlighting of code fences.
// When off, fences are left for the HTML renderer.
func WithHighlight(enabled bool) Option {
	return func(s *settings) {
		s.highlight = enabled
	}
}

// WithEmbedProvider adds a directive provider. It replaces a built-in
// provider with the same name. Panics if p is nil.
func WithEmbedProvider(p EmbedProvider) Option {
	if p == nil {
		panic("hackmd: WithEmbedProvider requires a non-nil provider")
	}
	return func(s *settings) {
		s.embeds = append(s.embeds, p)
	}
}

// WithFencedBlockProvider binds a fence language, case-insensitively, to p.
// Panics if lang is empty or p is nil.
func WithFencedBlockProvider(lang string, p FencedBlockProvider) Option {
	if strings.TrimSpace(lang) == "" || p == nil {
		panic("hackmd: WithFencedBlockProvider requires a language and a non-nil provider")
	}
	return func(s *settings) {
		s.blocks = append(s.blocks, blockBinding{lang: lang, provider: p})
	}
}

// WithClock sets the time source of the metadata cache. Panics if now is nil.
func WithClock(now func() time.Time) Option {
	if now == nil {
		panic("hackmd: WithClock requires a non-nil function")
	}
	return func(s *settings) {
		s.now = now
	}
}
