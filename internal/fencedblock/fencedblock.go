// Package fencedblock replaces whole fenced blocks of diagram languages
// with sandboxed iframes served by the backend.
//
// For example, with the default registry
//
//	```mermaid
//	graph TD; A-->B
//	```
//
// becomes an iframe pointing at {base}/__embed/mermaid?b64=... that draws the
// diagram. Unregistered languages are left for the highlighter.
package fencedblock

import (
	"encoding/base64"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/alnah/go-hackmd/internal/fence"
	"github.com/alnah/go-hackmd/internal/htmlutil"
)

// Provider renders the code of one fenced block.
type Provider interface {
	// Render returns HTML for code, or false to keep the block.
	Render(lang, code string) (string, bool)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(lang, code string) (string, bool)

// Render calls f.
func (f ProviderFunc) Render(lang, code string) (string, bool) { return f(lang, code) }

var _ Provider = Backend{}

// Registry maps fence languages to providers. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register binds lang, case-insensitively, to p.
func (r *Registry) Register(lang string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[strings.ToLower(lang)] = p
}

// Languages returns the number of registered languages.
func (r *Registry) Languages() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}

func (r *Registry) lookup(lang string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[lang]
	return p, ok
}

// Default returns a Registry with the backend diagram languages.
func Default(baseURL string) *Registry {
	r := NewRegistry()
	for _, d := range []struct {
		langs  []string
		kind   string
		height int
	}{
		{[]string{"sequence"}, "sequence", 360},
		{[]string{"flow", "flowchart"}, "flow", 420},
		{[]string{"graphviz", "dot"}, "graphviz", 420},
		{[]string{"mermaid"}, "mermaid", 420},
		{[]string{"abc"}, "abc", 420},
		{[]string{"vega", "vega-lite"}, "vega", 520},
	} {
		b := Backend{BaseURL: baseURL, Kind: d.kind, Height: d.height}
		for _, lang := range d.langs {
			r.Register(lang, b)
		}
	}
	return r
}

// Apply replaces every closed fenced block whose language is registered.
func (r *Registry) Apply(markdown string) string {
	if !strings.Contains(markdown, "```") && !strings.Contains(markdown, "~~~") {
		return markdown
	}
	return fence.MapBlocks(markdown, func(b *fence.Block) (string, bool) {
		lang := Language(b.Info)
		if lang == "" {
			return "", false
		}
		p, ok := r.lookup(lang)
		if !ok {
			return "", false
		}
		return p.Render(lang, b.Code())
	})
}

var normalizedSuffix = regexp.MustCompile(`(?:-linenos-\d+)?(?:-wrap)?$`)

// Language extracts the registry key from a fence info string: the first
// token without a trailing "!", any "=..." option or a normalized
// line-number/wrap suffix, lower-cased.
func Language(info string) string {
	fields := strings.Fields(info)
	if len(fields) == 0 {
		return ""
	}
	lang := strings.TrimSuffix(fields[0], "!")
	lang, _, _ = strings.Cut(lang, "=")
	lang = normalizedSuffix.ReplaceAllString(lang, "")
	return strings.ToLower(lang)
}

// EncodeCode encodes code as unpadded base64url.
func EncodeCode(code string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(code))
}

// DecodeCode reverses EncodeCode. Padding is accepted.
func DecodeCode(s string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Backend renders code as an iframe of the backend page for Kind.
type Backend struct {
	BaseURL string
	Kind    string
	Height  int
}

// Render returns the iframe markup for code.
func (b Backend) Render(_, code string) (string, bool) {
	src := strings.TrimRight(b.BaseURL, "/") + "/__embed/" + b.Kind + "?" +
		url.Values{"b64": {EncodeCode(code)}}.Encode()
	return "\n" + `<div class="my-4 w-full"><iframe sandbox="allow-scripts allow-same-origin" style="width:100%;height:` +
		strconv.Itoa(b.Height) + `px;border:0;" src="` + htmlutil.EscapeAttr(src) + `"></iframe></div>` + "\n", true
}
