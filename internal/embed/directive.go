// Package embed expands {% name args %} directives into embed markup.
//
// Each directive name maps to a Provider. A provider that cannot handle its
// arguments reports false and the directive text is kept as written.
package embed

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"github.com/alnah/go-hackmd/internal/fence"
)

var directivePattern = regexp.MustCompile(`(?is)\{%\s*([A-Za-z0-9_-]+)(?:\s+(.*?))?\s*%\}`)

// Directive is one parsed {% name args %} occurrence.
type Directive struct {
	Name string // lower-cased
	Args string // trimmed
	Raw  string // source text
}

// Parse returns every directive in text, in order.
func Parse(text string) []Directive {
	var out []Directive
	for _, m := range directivePattern.FindAllStringSubmatch(text, -1) {
		out = append(out, newDirective(m))
	}
	return out
}

func newDirective(m []string) Directive {
	return Directive{
		Name: strings.ToLower(m[1]),
		Args: strings.TrimSpace(m[2]),
		Raw:  m[0],
	}
}

// Provider renders one directive name.
type Provider interface {
	// Name is the directive name the provider answers to, lower-case.
	Name() string
	// Render returns the HTML for d, or false to keep d.Raw.
	Render(ctx context.Context, d Directive) (string, bool)
}

// Registry dispatches directives to providers by name.
// It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates a Registry holding providers.
// A later provider replaces an earlier one with the same name.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// Register adds p, replacing any provider with the same name.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[strings.ToLower(p.Name())] = p
}

func (r *Registry) lookup(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

// Apply expands directives in the prose of markdown. Fenced code and the
// tail of an unclosed fence are left alone.
func (r *Registry) Apply(ctx context.Context, markdown string) string {
	if !strings.Contains(markdown, "{%") {
		return markdown
	}
	return fence.MapProse(markdown, func(prose string) string {
		return directivePattern.ReplaceAllStringFunc(prose, func(raw string) string {
			if ctx.Err() != nil {
				return raw
			}
			d := newDirective(directivePattern.FindStringSubmatch(raw))
			p, ok := r.lookup(d.Name)
			if !ok {
				return raw
			}
			if html, ok := p.Render(ctx, d); ok {
				return html
			}
			return raw
		})
	})
}
