package proxy

// Notes:
// - checkPDFURL: scheme, port and private address rejection without network.
// - Fetcher tests swap the transport for a roundTripFunc, so no socket is
//   opened. Blocked hosts must never reach it, redirects included.

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestCheckPDFURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw     string
		wantErr error
	}{
		{raw: "https://example.com/a.pdf"},
		{raw: "HTTPS://Example.com:443/a.pdf"},
		{raw: "https://8.8.8.8/a.pdf"},
		{raw: "https://[2606:4700::1111]/a.pdf"},
		{raw: "", wantErr: ErrInvalidURL},
		{raw: "http://example.com/a.pdf", wantErr: ErrInvalidURL},
		{raw: "https:///a.pdf", wantErr: ErrInvalidURL},
		{raw: "https://localhost/a.pdf", wantErr: ErrBlockedHost},
		{raw: "https://printer.LOCAL/a.pdf", wantErr: ErrBlockedHost},
		{raw: "https://127.0.0.1/x", wantErr: ErrBlockedHost},
		{raw: "https://10.1.2.3/x", wantErr: ErrBlockedHost},
		{raw: "https://192.168.0.1/x", wantErr: ErrBlockedHost},
		{raw: "https://169.254.169.254/latest", wantErr: ErrBlockedHost},
		{raw: "https://224.0.0.1/x", wantErr: ErrBlockedHost},
		{raw: "https://0.0.0.0/x", wantErr: ErrBlockedHost},
		{raw: "https://240.0.0.1/x", wantErr: ErrBlockedHost},
		{raw: "https://[::1]/x", wantErr: ErrBlockedHost},
		{raw: "https://[::ffff:127.0.0.1]/x", wantErr: ErrBlockedHost},
		{raw: "https://[fe80::1]/x", wantErr: ErrBlockedHost},
		{raw: "https://[fd00::1]/x", wantErr: ErrBlockedHost},
		{raw: "https://host:8080/x", wantErr: ErrBlockedPort},
		{raw: "https://host:80/x", wantErr: ErrBlockedPort},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()

			_, err := CheckPDFURL(tt.raw)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("CheckPDFURL(%q) error = %v, want nil", tt.raw, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CheckPDFURL(%q) error = %v, want %v", tt.raw, err, tt.wantErr)
			}
		})
	}
}

func TestPlaceholder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err      error
		expected string
	}{
		{err: ErrInvalidURL, expected: "Invalid PDF URL"},
		{err: ErrBlockedHost, expected: "Blocked host"},
		{err: ErrBlockedPort, expected: "Blocked port"},
		{err: ErrTooLarge, expected: "PDF too large"},
		{err: ErrFetch, expected: "Failed to fetch PDF"},
		{err: ErrNotPDF, expected: "URL is not a PDF"},
		{err: errors.New("other"), expected: "Failed to fetch PDF"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			t.Parallel()

			if got := Placeholder(tt.err); got != tt.expected {
				t.Errorf("Placeholder(%v) = %q, want %q", tt.err, got, tt.expected)
			}
		})
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func respond(status int, contentType, body string) *http.Response {
	h := http.Header{}
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     h,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestFetcherFetch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		url         string
		status      int
		contentType string
		body        string
		maxBytes    int64
		wantErr     error
	}{
		{name: "labelled pdf", url: "https://example.com/doc", status: 200, contentType: "application/pdf", body: "%PDF-1.4"},
		{name: "pdf extension", url: "https://example.com/doc.PDF", status: 200, contentType: "application/octet-stream", body: "%PDF"},
		{name: "not a pdf", url: "https://example.com/page", status: 200, contentType: "text/html", body: "<html>", wantErr: ErrNotPDF},
		{name: "upstream error", url: "https://example.com/a.pdf", status: 404, wantErr: ErrFetch},
		{name: "too large", url: "https://example.com/a.pdf", status: 200, contentType: "application/pdf", body: strings.Repeat("x", 100), maxBytes: 99, wantErr: ErrTooLarge},
		{name: "exactly at cap", url: "https://example.com/a.pdf", status: 200, contentType: "application/pdf", body: strings.Repeat("x", 99), maxBytes: 99},
		{name: "blocked before fetch", url: "https://127.0.0.1/a.pdf", wantErr: ErrBlockedHost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var called bool
			var gotUA string
			opts := []FetchOption{WithTransport(roundTripFunc(func(r *http.Request) (*http.Response, error) {
				called = true
				gotUA = r.UserAgent()
				return respond(tt.status, tt.contentType, tt.body), nil
			}))}
			if tt.maxBytes > 0 {
				opts = append(opts, WithMaxBytes(tt.maxBytes))
			}

			data, err := NewFetcher(opts...).Fetch(context.Background(), tt.url)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Fetch() error = %v, want %v", err, tt.wantErr)
				}
				if errors.Is(tt.wantErr, ErrBlockedHost) && called {
					t.Error("Fetch() contacted a blocked host")
				}
				return
			}
			if err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
			if string(data) != tt.body {
				t.Errorf("Fetch() = %q, want %q", data, tt.body)
			}
			if gotUA != DefaultUserAgent {
				t.Errorf("User-Agent = %q, want %q", gotUA, DefaultUserAgent)
			}
		})
	}
}

func TestFetcherRefusesBlockedRedirect(t *testing.T) {
	t.Parallel()

	var hops []string
	f := NewFetcher(WithTransport(roundTripFunc(func(r *http.Request) (*http.Response, error) {
		hops = append(hops, r.URL.String())
		resp := respond(http.StatusFound, "", "")
		resp.Header.Set("Location", "https://169.254.169.254/latest/meta-data")
		return resp, nil
	})))

	_, err := f.Fetch(context.Background(), "https://example.com/a.pdf")
	if !errors.Is(err, ErrFetch) {
		t.Errorf("Fetch() error = %v, want %v", err, ErrFetch)
	}
	if len(hops) != 1 {
		t.Errorf("hops = %v, want only the first request", hops)
	}
}

func TestFetchOptionPanics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fn   func()
	}{
		{name: "nil transport", fn: func() { WithTransport(nil) }},
		{name: "zero timeout", fn: func() { WithFetchTimeout(0) }},
		{name: "zero size", fn: func() { WithMaxBytes(0) }},
		{name: "nil logger", fn: func() { WithFetchLogger(nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			defer func() {
				if recover() == nil {
					t.Errorf("%s did not panic", tt.name)
				}
			}()
			tt.fn()
		})
	}
}
