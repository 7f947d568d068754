// Package remote fetches third-party embed data: oEmbed snippets
// (SlideShare, SpeakerDeck) and GitHub Gist contents.
//
// Responses are cached, concurrent identical requests share one fetch, and
// oEmbed HTML is sanitized before it reaches a document.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/singleflight"

	"github.com/alnah/go-hackmd/internal/cache"
	"github.com/alnah/go-hackmd/internal/htmlutil"
)

// Defaults for outbound metadata requests.
const (
	DefaultTimeout   = 3 * time.Second
	DefaultUserAgent = "codoc-in-md"
	DefaultGistAPI   = "https://api.github.com/gists/"

	maxResponseBytes = 1 << 20
)

// Sentinel errors. Callers degrade to a fallback rendering on any of them.
var (
	ErrRequest = errors.New("remote request failed")
	ErrStatus  = errors.New("unexpected remote status")
	ErrDecode  = errors.New("invalid remote response")
	ErrEmpty   = errors.New("empty remote response")
)

// Fetch kinds reported to the fetch hook.
const (
	KindOEmbed = "oembed"
	KindGist   = "gist"
)

// Fetch outcomes reported to the fetch hook.
const (
	OutcomeHit   = "cache_hit"
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Client fetches and caches embed data. It is safe for concurrent use.
type Client struct {
	http      *http.Client
	cache     *cache.Cache
	logger    *slog.Logger
	userAgent string
	gistAPI   string
	timeout   time.Duration
	policy    *bluemonday.Policy
	onFetch   func(kind, outcome string)
	group     singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client. Panics if hc is nil.
func WithHTTPClient(hc *http.Client) Option {
	if hc == nil {
		panic("remote: WithHTTPClient requires a non-nil client")
	}
	return func(c *Client) {
		c.http = hc
	}
}

// WithCache sets the response cache. Panics if ch is nil.
func WithCache(ch *cache.Cache) Option {
	if ch == nil {
		panic("remote: WithCache requires a non-nil cache")
	}
	return func(c *Client) {
		c.cache = ch
	}
}

// WithLogger sets the logger. Panics if l is nil.
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic("remote: WithLogger requires a non-nil logger")
	}
	return func(c *Client) {
		c.logger = l
	}
}

// WithTimeout bounds each outbound request. Panics if d is not positive.
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("remote: WithTimeout requires a positive duration")
	}
	return func(c *Client) {
		c.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithGistAPI sets the Gist API base URL, ending with a slash.
func WithGistAPI(base string) Option {
	return func(c *Client) {
		c.gistAPI = base
	}
}

// WithFetchHook registers fn to be told the kind and outcome of every lookup.
func WithFetchHook(fn func(kind, outcome string)) Option {
	return func(c *Client) {
		c.onFetch = fn
	}
}

// NewClient creates a Client with a 3s timeout and a default-sized cache.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{},
		logger:    slog.New(slog.DiscardHandler),
		userAgent: DefaultUserAgent,
		gistAPI:   DefaultGistAPI,
		timeout:   DefaultTimeout,
		policy:    newEmbedPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		c.cache = cache.New(cache.DefaultSize, cache.DefaultTTL)
	}
	return c
}

// newEmbedPolicy allows the markup oEmbed providers return: an iframe plus
// a caption with links.
func newEmbedPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("iframe")
	p.AllowAttrs("src", "width", "height", "frameborder", "allowfullscreen", "allow",
		"title", "scrolling", "marginwidth", "marginheight", "loading", "style").OnElements("iframe")
	p.AllowAttrs("style").OnElements("div", "strong", "a")
	p.AllowURLSchemes("https")
	return p
}

// OEmbed returns the sanitized html field of an oEmbed response for target.
func (c *Client) OEmbed(ctx context.Context, endpoint, target string) (string, error) {
	key := endpoint + "|" + target
	return c.lookup(ctx, KindOEmbed, key, func(ctx context.Context) (string, error) {
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		full := endpoint + sep + "url=" + url.QueryEscape(target) + "&format=json"

		body, err := c.get(ctx, full, nil)
		if err != nil {
			return "", err
		}
		if !gjson.ValidBytes(body) {
			return "", ErrDecode
		}
		snippet := gjson.GetBytes(body, "html")
		if snippet.Type != gjson.String || strings.TrimSpace(snippet.Str) == "" {
			return "", ErrEmpty
		}
		clean := strings.TrimSpace(c.policy.Sanitize(snippet.Str))
		if clean == "" {
			return "", ErrEmpty
		}
		return clean, nil
	})
}

// Gist renders the files of a gist as escaped <pre> blocks.
func (c *Client) Gist(ctx context.Context, id string) (string, error) {
	key := "gist|" + id
	return c.lookup(ctx, KindGist, key, func(ctx context.Context) (string, error) {
		header := http.Header{"Accept": {"application/vnd.github+json"}}
		body, err := c.get(ctx, c.gistAPI+url.PathEscape(id), header)
		if err != nil {
			return "", err
		}
		if !gjson.ValidBytes(body) {
			return "", ErrDecode
		}
		files := gjson.GetBytes(body, "files")
		if !files.IsObject() || len(files.Map()) == 0 {
			return "", ErrEmpty
		}

		var b strings.Builder
		b.WriteString(`<div class="my-4 w-full">`)
		files.ForEach(func(name, meta gjson.Result) bool {
			content := meta.Get("content")
			if !meta.IsObject() || content.Type != gjson.String {
				return true
			}
			b.WriteString(`<div class="mb-3"><div class="text-sm font-semibold text-gray-700 mb-1">`)
			b.WriteString(htmlutil.EscapeAttr(name.String()))
			b.WriteString(`</div><pre class="overflow-auto text-sm bg-gray-50 border border-gray-200 rounded p-3">`)
			b.WriteString(htmlutil.EscapeAttr(content.Str))
			b.WriteString(`</pre></div>`)
			return true
		})
		b.WriteString(`</div>`)
		return b.String(), nil
	})
}

// lookup serves key from the cache or runs fetch once for all concurrent
// callers. Only successful results are cached.
func (c *Client) lookup(ctx context.Context, kind, key string, fetch func(context.Context) (string, error)) (string, error) {
	if v, ok := c.cache.Get(key); ok {
		c.observe(kind, OutcomeHit)
		return v, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		// The shared fetch outlives any single caller's cancellation.
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		v, err := fetch(fctx)
		if err != nil {
			return "", err
		}
		c.cache.Set(key, v)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			c.observe(kind, OutcomeError)
			c.logger.Debug("remote fetch failed", "kind", kind, "key", key, "error", res.Err)
			return "", res.Err
		}
		c.observe(kind, OutcomeOK)
		return res.Val.(string), nil
	}
}

func (c *Client) get(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	return body, nil
}

func (c *Client) observe(kind, outcome string) {
	if c.onFetch != nil {
		c.onFetch(kind, outcome)
	}
}
