package proxy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/netip"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// PDF fetch defaults.
const (
	DefaultPDFTimeout  = 10 * time.Second
	DefaultPDFMaxBytes = 15 * 1024 * 1024
	DefaultUserAgent   = "codoc-in-md"

	chunkSize = 64 * 1024
)

// Sentinel errors. Each maps to one placeholder text.
var (
	ErrInvalidURL  = errors.New("invalid PDF URL")
	ErrBlockedHost = errors.New("blocked host")
	ErrBlockedPort = errors.New("blocked port")
	ErrTooLarge    = errors.New("PDF too large")
	ErrFetch       = errors.New("failed to fetch PDF")
	ErrNotPDF      = errors.New("URL is not a PDF")
)

// Placeholder returns the text shown in place of a PDF that could not be
// served.
func Placeholder(err error) string {
	switch {
	case errors.Is(err, ErrInvalidURL):
		return "Invalid PDF URL"
	case errors.Is(err, ErrBlockedHost):
		return "Blocked host"
	case errors.Is(err, ErrBlockedPort):
		return "Blocked port"
	case errors.Is(err, ErrTooLarge):
		return "PDF too large"
	case errors.Is(err, ErrNotPDF):
		return "URL is not a PDF"
	default:
		return "Failed to fetch PDF"
	}
}

// Address blocks beyond the private, loopback, link-local and multicast
// classes netip already reports.
var reservedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("192.0.2.0/24"),
	netip.MustParsePrefix("198.18.0.0/15"),
	netip.MustParsePrefix("198.51.100.0/24"),
	netip.MustParsePrefix("203.0.113.0/24"),
	netip.MustParsePrefix("240.0.0.0/4"),
	netip.MustParsePrefix("::/128"),
	netip.MustParsePrefix("100::/64"),
	netip.MustParsePrefix("2001::/23"),
	netip.MustParsePrefix("2001:db8::/32"),
	netip.MustParsePrefix("64:ff9b::/96"),
}

// CheckPDFURL validates raw against the PDF proxy rules: https only, no
// local hosts or non-public IP literals, default port only. Hostnames are
// not resolved.
func CheckPDFURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.HasPrefix(strings.ToLower(raw), "https://") {
		return nil, ErrInvalidURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	host := strings.TrimSpace(u.Hostname())
	if host == "" {
		return nil, ErrInvalidURL
	}
	if err := checkHost(host); err != nil {
		return nil, err
	}
	if p := u.Port(); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
		}
		if n != 443 {
			return nil, fmt.Errorf("%w: %d", ErrBlockedPort, n)
		}
	}
	return u, nil
}

func checkHost(host string) error {
	lower := strings.ToLower(host)
	if lower == "localhost" || strings.HasSuffix(lower, ".local") {
		return fmt.Errorf("%w: %s", ErrBlockedHost, host)
	}

	addr, err := netip.ParseAddr(host)
	if err != nil {
		return nil
	}
	addr = addr.Unmap().WithZone("")
	if addr.IsPrivate() || addr.IsLoopback() || addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() || addr.IsMulticast() || addr.IsUnspecified() {
		return fmt.Errorf("%w: %s", ErrBlockedHost, host)
	}
	for _, p := range reservedPrefixes {
		if p.Contains(addr) {
			return fmt.Errorf("%w: %s", ErrBlockedHost, host)
		}
	}
	return nil
}

// Fetcher downloads PDFs for the embed proxy.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	maxBytes  int64
	userAgent string
	logger    *slog.Logger
}

// FetchOption configures a Fetcher.
type FetchOption func(*Fetcher)

// WithTransport sets the transport used for downloads. Panics if rt is nil.
func WithTransport(rt http.RoundTripper) FetchOption {
	if rt == nil {
		panic("proxy: WithTransport requires a non-nil transport")
	}
	return func(f *Fetcher) {
		f.client.Transport = rt
	}
}

// WithFetchTimeout bounds a whole download. Panics if d is not positive.
func WithFetchTimeout(d time.Duration) FetchOption {
	if d <= 0 {
		panic("proxy: WithFetchTimeout requires a positive duration")
	}
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithMaxBytes caps the size of a download. Panics if n is not positive.
func WithMaxBytes(n int64) FetchOption {
	if n <= 0 {
		panic("proxy: WithMaxBytes requires a positive size")
	}
	return func(f *Fetcher) {
		f.maxBytes = n
	}
}

// WithFetchUserAgent sets the User-Agent header.
func WithFetchUserAgent(ua string) FetchOption {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithFetchLogger sets the logger. Panics if l is nil.
func WithFetchLogger(l *slog.Logger) FetchOption {
	if l == nil {
		panic("proxy: WithFetchLogger requires a non-nil logger")
	}
	return func(f *Fetcher) {
		f.logger = l
	}
}

// NewFetcher creates a Fetcher with a 10s timeout and a 15 MB cap.
// Redirects are followed only to URLs that pass CheckPDFURL.
func NewFetcher(opts ...FetchOption) *Fetcher {
	f := &Fetcher{
		client: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return errors.New("stopped after 10 redirects")
				}
				_, err := CheckPDFURL(req.URL.String())
				return err
			},
		},
		timeout:   DefaultPDFTimeout,
		maxBytes:  DefaultPDFMaxBytes,
		userAgent: DefaultUserAgent,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch validates raw and downloads it. The body is accepted when the
// response is labelled application/pdf or the URL path ends in .pdf.
func (f *Fetcher) Fetch(ctx context.Context, raw string) ([]byte, error) {
	u, err := CheckPDFURL(raw)
	if err != nil {
		if errors.Is(err, ErrBlockedHost) || errors.Is(err, ErrBlockedPort) {
			f.logger.Warn("pdf proxy rejected url", "url", raw, "reason", err)
		}
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, ErrBlockedHost) || errors.Is(err, ErrBlockedPort) {
			f.logger.Warn("pdf proxy rejected redirect", "url", raw, "reason", err)
		}
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrFetch, resp.Status)
	}

	data, err := f.read(resp.Body)
	if err != nil {
		return nil, err
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if !strings.Contains(contentType, "application/pdf") && !strings.HasSuffix(strings.ToLower(u.Path), ".pdf") {
		return nil, fmt.Errorf("%w: %s", ErrNotPDF, contentType)
	}

	f.logger.Debug("pdf fetched", "host", u.Host, "size", humanize.Bytes(uint64(len(data))))
	return data, nil
}

func (f *Fetcher) read(r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	chunk := make([]byte, chunkSize)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			if int64(buf.Len()+n) > f.maxBytes {
				return nil, fmt.Errorf("%w: over %s", ErrTooLarge, humanize.Bytes(uint64(f.maxBytes)))
			}
			buf.Write(chunk[:n])
		}
		if errors.Is(err, io.EOF) {
			return buf.Bytes(), nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFetch, err)
		}
	}
}
