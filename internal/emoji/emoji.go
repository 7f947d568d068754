// Package emoji resolves HackMD :shortcode: emojis.
//
// A shortcode is resolved through four tiers, first match wins:
//
//  1. a small override table;
//  2. two-letter country flags (flag-fr, flag_fr) as regional indicators;
//  3. the emojify.js image set, rendered as an <img class="emoji"> tag;
//  4. the GitHub Unicode alias table.
//
// Unresolved shortcodes are left untouched.
package emoji

import (
	"bufio"
	"bytes"
	_ "embed"
	"maps"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/yuin/goldmark-emoji/definition"

	"github.com/alnah/go-hackmd/internal/fence"
	"github.com/alnah/go-hackmd/internal/htmlutil"
)

// CDNBase is where emojify.js basic images are served from.
const CDNBase = "https://cdn.jsdelivr.net/npm/@hackmd/emojify.js@2.1.0/dist/images/basic"

//go:embed names.txt.gz
var namesGz []byte

// Precompiled regex patterns for performance.
var (
	shortcodePattern = regexp.MustCompile(`:([a-zA-Z0-9_+\-]+):`)
	imageTagPattern  = regexp.MustCompile(`<img\s+class="emoji"[^>]*?/?>`)
	flagPattern      = regexp.MustCompile(`^flag[-_]([a-zA-Z]{2})$`)
)

var overrides = map[string]string{
	"tada":                         "🎉",
	"mega":                         "📣",
	"zap":                          "⚡",
	"fire":                         "🔥",
	"stuck_out_tongue_winking_eye": "😜",
}

// loadNames decompresses the embedded image-name list once per process.
var loadNames = sync.OnceValue(func() map[string]struct{} {
	set := make(map[string]struct{}, 2048)
	zr, err := gzip.NewReader(bytes.NewReader(namesGz))
	if err != nil {
		return set
	}
	defer func() { _ = zr.Close() }()

	sc := bufio.NewScanner(zr)
	for sc.Scan() {
		if name := strings.TrimSpace(sc.Text()); name != "" {
			set[name] = struct{}{}
		}
	}
	return set
})

// Names returns the sorted emojify.js image names.
func Names() []string {
	return slices.Sorted(maps.Keys(loadNames()))
}

// HasImage reports whether name has an emojify.js image.
func HasImage(name string) bool {
	_, ok := loadNames()[name]
	return ok
}

// Resolver replaces shortcodes. It is safe for concurrent use.
type Resolver struct {
	unicode definition.Emojis
	names   map[string]struct{}
}

// NewResolver creates a Resolver backed by the embedded image names and
// the GitHub emoji definitions.
func NewResolver() *Resolver {
	return &Resolver{
		unicode: definition.Github(),
		names:   loadNames(),
	}
}

// Replace resolves every shortcode in text. It does not know about code;
// use Apply for whole documents. Replacing twice gives the same result as
// replacing once.
func (r *Resolver) Replace(text string) string {
	if text == "" || !strings.Contains(text, ":") {
		return text
	}

	// Images from an earlier pass carry :name: in their alt text.
	var b strings.Builder
	last := 0
	for _, loc := range imageTagPattern.FindAllStringIndex(text, -1) {
		b.WriteString(r.replaceShortcodes(text[last:loc[0]]))
		b.WriteString(text[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(r.replaceShortcodes(text[last:]))
	return b.String()
}

func (r *Resolver) replaceShortcodes(text string) string {
	return shortcodePattern.ReplaceAllStringFunc(text, func(token string) string {
		if out, ok := r.resolve(token[1 : len(token)-1]); ok {
			return out
		}
		return token
	})
}

// Apply resolves shortcodes in a Markdown document, skipping fenced code
// and inline code spans.
func (r *Resolver) Apply(markdown string) string {
	if !strings.Contains(markdown, ":") {
		return markdown
	}
	return fence.MapText(markdown, r.Replace)
}

func (r *Resolver) resolve(name string) (string, bool) {
	if s, ok := overrides[name]; ok {
		return s, true
	}

	if m := flagPattern.FindStringSubmatch(name); m != nil {
		return flag(m[1]), true
	}

	if _, ok := r.names[name]; ok {
		return imageTag(name), true
	}
	if alt := strings.ReplaceAll(name, "_", "-"); alt != name {
		if _, ok := r.names[alt]; ok {
			return imageTag(alt), true
		}
	}

	if r.unicode == nil {
		return "", false
	}
	normalized := strings.ReplaceAll(name, "-", "_")
	switch {
	case strings.HasPrefix(normalized, "female_"):
		normalized = "woman_" + strings.TrimPrefix(normalized, "female_")
	case strings.HasPrefix(normalized, "male_"):
		normalized = "man_" + strings.TrimPrefix(normalized, "male_")
	}
	if e, ok := r.unicode.Get(normalized); ok && len(e.Unicode) > 0 {
		return string(e.Unicode), true
	}
	return "", false
}

// flag maps a two-letter country code to its regional indicator pair.
func flag(code string) string {
	code = strings.ToUpper(code)
	const base = 0x1F1E6
	return string([]rune{
		rune(base + int(code[0]-'A')),
		rune(base + int(code[1]-'A')),
	})
}

func imageTag(name string) string {
	safe := htmlutil.EscapeAttr(name)
	return `<img class="emoji" alt=":` + safe + `:" src="` + CDNBase + "/" + safe +
		`.png" style="display:inline-block;width:1.25em;height:1.25em;vertical-align:-0.2em"/>`
}
