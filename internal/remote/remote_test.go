package remote

// Notes:
// - oEmbed and Gist endpoints are httptest servers.
// - Only successful fetches are cached; failures are retried next call.
// - TestLookupSharesConcurrentFetch checks singleflight with a gated handler.

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestOEmbed(t *testing.T) {
	t.Parallel()

	var gotQuery, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotUA = r.UserAgent()
		_, _ = w.Write([]byte(`{"html":"<iframe src=\"https://player.example/1\" width=\"500\"></iframe><script>alert(1)</script>"}`))
	}))
	defer srv.Close()

	c := NewClient()
	got, err := c.OEmbed(context.Background(), srv.URL+"/oembed", "https://www.slideshare.net/a/b")
	if err != nil {
		t.Fatalf("OEmbed() error = %v", err)
	}
	if gotQuery != "url=https%3A%2F%2Fwww.slideshare.net%2Fa%2Fb&format=json" {
		t.Errorf("query = %q", gotQuery)
	}
	if gotUA != DefaultUserAgent {
		t.Errorf("User-Agent = %q, want %q", gotUA, DefaultUserAgent)
	}
	if !strings.Contains(got, `<iframe src="https://player.example/1"`) {
		t.Errorf("OEmbed() = %q, want iframe kept", got)
	}
	if strings.Contains(got, "<script") {
		t.Errorf("OEmbed() = %q, want script removed", got)
	}
}

func TestOEmbedEndpointWithQuery(t *testing.T) {
	t.Parallel()

	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"html":"<div>x</div>"}`))
	}))
	defer srv.Close()

	if _, err := NewClient().OEmbed(context.Background(), srv.URL+"/o?v=2", "https://x"); err != nil {
		t.Fatalf("OEmbed() error = %v", err)
	}
	if !strings.HasPrefix(gotQuery, "v=2&url=") {
		t.Errorf("query = %q, want appended with &", gotQuery)
	}
}

func TestOEmbedErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "status", status: http.StatusNotFound, body: `{}`, wantErr: ErrStatus},
		{name: "invalid json", status: http.StatusOK, body: `not json`, wantErr: ErrDecode},
		{name: "missing html", status: http.StatusOK, body: `{"title":"x"}`, wantErr: ErrEmpty},
		{name: "blank html", status: http.StatusOK, body: `{"html":"  "}`, wantErr: ErrEmpty},
		{name: "non-string html", status: http.StatusOK, body: `{"html":3}`, wantErr: ErrEmpty},
		{name: "sanitized away", status: http.StatusOK, body: `{"html":"<script>x</script>"}`, wantErr: ErrEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient().OEmbed(context.Background(), srv.URL, "https://x")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("OEmbed() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestOEmbedCachesSuccessOnly(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	fail := atomic.Bool{}
	fail.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"html":"<div>ok</div>"}`))
	}))
	defer srv.Close()

	var outcomes []string
	var mu sync.Mutex
	c := NewClient(WithFetchHook(func(kind, outcome string) {
		mu.Lock()
		defer mu.Unlock()
		outcomes = append(outcomes, kind+":"+outcome)
	}))
	ctx := context.Background()

	if _, err := c.OEmbed(ctx, srv.URL, "https://x"); err == nil {
		t.Fatal("OEmbed() error = nil, want failure")
	}
	fail.Store(false)
	for range 3 {
		if _, err := c.OEmbed(ctx, srv.URL, "https://x"); err != nil {
			t.Fatalf("OEmbed() error = %v", err)
		}
	}

	if n := calls.Load(); n != 2 {
		t.Errorf("server calls = %d, want 2", n)
	}
	want := []string{"oembed:error", "oembed:ok", "oembed:cache_hit", "oembed:cache_hit"}
	if strings.Join(outcomes, ",") != strings.Join(want, ",") {
		t.Errorf("outcomes = %v, want %v", outcomes, want)
	}
}

func TestGist(t *testing.T) {
	t.Parallel()

	var gotPath, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write([]byte(`{"files":{"a.go":{"content":"x < y"},"bin":{"size":3},"b.txt":{"content":"'hi'"}}}`))
	}))
	defer srv.Close()

	c := NewClient(WithGistAPI(srv.URL + "/gists/"))
	got, err := c.Gist(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("Gist() error = %v", err)
	}

	want := `<div class="my-4 w-full">` +
		`<div class="mb-3"><div class="text-sm font-semibold text-gray-700 mb-1">a.go</div>` +
		`<pre class="overflow-auto text-sm bg-gray-50 border border-gray-200 rounded p-3">x &lt; y</pre></div>` +
		`<div class="mb-3"><div class="text-sm font-semibold text-gray-700 mb-1">b.txt</div>` +
		`<pre class="overflow-auto text-sm bg-gray-50 border border-gray-200 rounded p-3">&#x27;hi&#x27;</pre></div>` +
		`</div>`
	if got != want {
		t.Errorf("Gist() =\n%q\nwant\n%q", got, want)
	}
	if gotPath != "/gists/abc123" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAccept != "application/vnd.github+json" {
		t.Errorf("Accept = %q", gotAccept)
	}
}

func TestGistNoFiles(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"files":{}}`))
	}))
	defer srv.Close()

	_, err := NewClient(WithGistAPI(srv.URL+"/")).Gist(context.Background(), "x")
	if !errors.Is(err, ErrEmpty) {
		t.Errorf("Gist() error = %v, want %v", err, ErrEmpty)
	}
}

func TestLookupSharesConcurrentFetch(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		_, _ = w.Write([]byte(`{"html":"<div>ok</div>"}`))
	}))
	defer srv.Close()

	c := NewClient(WithTimeout(5 * time.Second))
	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.OEmbed(context.Background(), srv.URL, "https://same"); err != nil {
				t.Errorf("OEmbed() error = %v", err)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Errorf("server calls = %d, want 1", n)
	}
}

func TestLookupCanceled(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient().OEmbed(ctx, srv.URL, "https://x")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("OEmbed() error = %v, want %v", err, context.Canceled)
	}
}

func TestOptionPanics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fn   func()
	}{
		{name: "nil http client", fn: func() { WithHTTPClient(nil) }},
		{name: "nil cache", fn: func() { WithCache(nil) }},
		{name: "nil logger", fn: func() { WithLogger(nil) }},
		{name: "zero timeout", fn: func() { WithTimeout(0) }},
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
