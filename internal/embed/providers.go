package embed

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/alnah/go-hackmd/internal/htmlutil"
)

// Remote fetches third-party data for the oEmbed and Gist providers.
type Remote interface {
	OEmbed(ctx context.Context, endpoint, target string) (string, error)
	Gist(ctx context.Context, id string) (string, error)
}

// oEmbed endpoints.
const (
	SlideShareEndpoint  = "https://www.slideshare.net/api/oembed/2"
	SpeakerDeckEndpoint = "https://speakerdeck.com/oembed.json"
)

// Compile-time interface checks.
var (
	_ Provider = YouTube{}
	_ Provider = Vimeo{}
	_ Provider = PDF{}
	_ Provider = Gist{}
	_ Provider = SlideShare{}
	_ Provider = SpeakerDeck{}
	_ Provider = IFrame{}
)

var (
	youTubeIDPattern   = regexp.MustCompile(`^[A-Za-z0-9_-]{6,64}$`)
	vimeoIDPattern     = regexp.MustCompile(`^\d{3,20}$`)
	gistShortPattern   = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9]+$`)
	embedPathIDPattern = regexp.MustCompile(`/embed/([A-Za-z0-9_-]{6,64})`)
)

// Defaults returns the built-in providers. Backend iframes point at base;
// a nil remote makes oEmbed and Gist providers use their fallbacks.
func Defaults(base string, remote Remote) []Provider {
	return []Provider{
		YouTube{},
		Vimeo{},
		PDF{BaseURL: base},
		Gist{BaseURL: base, Remote: remote},
		SlideShare{Remote: remote},
		SpeakerDeck{Remote: remote},
	}
}

func videoFrame(src, title, allow string) string {
	return "\n" + `<div class="my-4 w-full" style="position:relative;padding-bottom:56.25%;height:0;overflow:hidden;">` +
		`<iframe src="` + src + `" title="` + title + `" frameborder="0" allow="` + allow + `" allowfullscreen ` +
		`style="position:absolute;top:0;left:0;width:100%;height:100%;"></iframe></div>` + "\n"
}

func frame(src, title string, height int) string {
	return "\n" + `<div class="my-4 w-full"><iframe src="` + htmlutil.EscapeAttr(src) + `" title="` + htmlutil.EscapeAttr(title) +
		`" style="width:100%;height:` + strconv.Itoa(height) + `px;border:0;"></iframe></div>` + "\n"
}

func sandboxFrame(src string, height int) string {
	return "\n" + `<div class="my-4 w-full"><iframe sandbox="allow-scripts allow-same-origin" style="width:100%;height:` +
		strconv.Itoa(height) + `px;border:0;" src="` + htmlutil.EscapeAttr(src) + `"></iframe></div>` + "\n"
}

func isHTTPS(s string) bool {
	return strings.HasPrefix(strings.ToLower(s), "https://")
}

// isHTTPURL reports whether s is an absolute http or https URL with a host.
func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

func backendURL(base, path string, q url.Values) string {
	return strings.TrimRight(base, "/") + path + "?" + q.Encode()
}

// YouTube embeds a video by ID, watch URL, embed URL or youtu.be link.
type YouTube struct{}

func (YouTube) Name() string { return "youtube" }

func (YouTube) Render(_ context.Context, d Directive) (string, bool) {
	id, ok := youTubeID(d.Args)
	if !ok {
		return "", false
	}
	return videoFrame("https://www.youtube.com/embed/"+id, "YouTube video",
		"accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture; web-share"), true
}

func youTubeID(v string) (string, bool) {
	if youTubeIDPattern.MatchString(v) {
		return v, true
	}
	u, err := url.Parse(v)
	if err != nil {
		return "", false
	}
	host := strings.ToLower(u.Host)
	switch {
	case strings.Contains(host, "youtube.com"):
		if id := u.Query().Get("v"); youTubeIDPattern.MatchString(id) {
			return id, true
		}
		if m := embedPathIDPattern.FindStringSubmatch(u.Path); m != nil {
			return m[1], true
		}
	case strings.HasSuffix(host, "youtu.be"):
		id, _, _ := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
		if youTubeIDPattern.MatchString(id) {
			return id, true
		}
	}
	return "", false
}

// Vimeo embeds a video by numeric ID or vimeo.com URL.
type Vimeo struct{}

func (Vimeo) Name() string { return "vimeo" }

func (Vimeo) Render(_ context.Context, d Directive) (string, bool) {
	id, ok := vimeoID(d.Args)
	if !ok {
		return "", false
	}
	return videoFrame("https://player.vimeo.com/video/"+id, "Vimeo video",
		"autoplay; fullscreen; picture-in-picture"), true
}

func vimeoID(v string) (string, bool) {
	if vimeoIDPattern.MatchString(v) {
		return v, true
	}
	u, err := url.Parse(v)
	if err != nil || !strings.Contains(strings.ToLower(u.Host), "vimeo.com") {
		return "", false
	}
	id, _, _ := strings.Cut(strings.Trim(u.Path, "/"), "/")
	if vimeoIDPattern.MatchString(id) {
		return id, true
	}
	return "", false
}

// PDF embeds an https PDF through the backend proxy.
type PDF struct {
	BaseURL string
}

func (PDF) Name() string { return "pdf" }

func (p PDF) Render(_ context.Context, d Directive) (string, bool) {
	if !isHTTPS(d.Args) {
		return "", false
	}
	src := backendURL(p.BaseURL, "/__embed/pdf", url.Values{"url": {d.Args}})
	return "\n" + `<div class="my-4 w-full"><iframe src="` + htmlutil.EscapeAttr(src) +
		`" title="PDF" style="width:100%;height:600px;border:0;"></iframe></div>` + "\n", true
}

// Gist embeds a gist. The script loader runs in a sandboxed backend iframe;
// without it the files are fetched and rendered as <pre> blocks, and as a
// last resort the directive becomes a link.
type Gist struct {
	BaseURL string
	Remote  Remote
	// ServerSide renders file contents instead of the script iframe.
	ServerSide bool
}

func (Gist) Name() string { return "gist" }

func (g Gist) Render(ctx context.Context, d Directive) (string, bool) {
	v := d.Args
	if v == "" {
		return "", false
	}

	if !g.ServerSide {
		if js, ok := gistScriptURL(v); ok {
			src := backendURL(g.BaseURL, "/__embed/gist", url.Values{"url": {js}})
			return sandboxFrame(src, 600), true
		}
	}

	if g.Remote != nil {
		if id, ok := gistID(v); ok {
			if html, err := g.Remote.Gist(ctx, id); err == nil {
				return "\n" + html + "\n", true
			}
		}
	}

	href := v
	if gistShortPattern.MatchString(v) {
		href = "https://gist.github.com/" + v
	}
	if !isHTTPURL(href) {
		return "", false
	}
	return "\n" + `<div class="my-4"><a href="` + htmlutil.EscapeAttr(href) + `" target="_blank" rel="noreferrer">Gist ` +
		htmlutil.EscapeText(v) + "</a></div>\n", true
}

func gistScriptURL(v string) (string, bool) {
	if gistShortPattern.MatchString(v) {
		return "https://gist.github.com/" + v + ".js", true
	}
	if !isHTTPS(v) {
		return "", false
	}
	u, err := url.Parse(v)
	if err != nil || !strings.Contains(strings.ToLower(u.Host), "gist.github.com") {
		return "", false
	}
	path := strings.TrimRight(u.Path, "/")
	if path == "" {
		return "", false
	}
	if !strings.HasSuffix(path, ".js") {
		path += ".js"
	}
	u.Path = path
	u.RawPath = ""
	return u.String(), true
}

func gistID(v string) (string, bool) {
	if gistShortPattern.MatchString(v) {
		_, id, _ := strings.Cut(v, "/")
		return id, true
	}
	u, err := url.Parse(v)
	if err != nil || !strings.Contains(strings.ToLower(u.Host), "gist.github.com") {
		return "", false
	}
	path := strings.Trim(u.Path, "/")
	id := strings.TrimSuffix(path[strings.LastIndex(path, "/")+1:], ".js")
	if id == "" {
		return "", false
	}
	return id, true
}

// SlideShare embeds a deck through its oEmbed snippet.
type SlideShare struct {
	Remote Remote
}

func (SlideShare) Name() string { return "slideshare" }

func (s SlideShare) Render(ctx context.Context, d Directive) (string, bool) {
	return renderOEmbed(ctx, s.Remote, d.Args, "https://www.slideshare.net/", SlideShareEndpoint, "SlideShare")
}

// SpeakerDeck embeds a deck through its oEmbed snippet.
type SpeakerDeck struct {
	Remote Remote
}

func (SpeakerDeck) Name() string { return "speakerdeck" }

func (s SpeakerDeck) Render(ctx context.Context, d Directive) (string, bool) {
	return renderOEmbed(ctx, s.Remote, d.Args, "https://speakerdeck.com/", SpeakerDeckEndpoint, "SpeakerDeck")
}

// renderOEmbed expands a bare path to a site URL, then prefers the oEmbed
// snippet and falls back to a plain iframe of the page.
func renderOEmbed(ctx context.Context, remote Remote, v, site, endpoint, title string) (string, bool) {
	if v == "" {
		return "", false
	}
	target := v
	if !isHTTPS(target) {
		target = site + strings.TrimLeft(target, "/")
	}
	if remote != nil {
		if html, err := remote.OEmbed(ctx, endpoint, target); err == nil && strings.TrimSpace(html) != "" {
			return "\n" + `<div class="my-4 w-full">` + html + "</div>\n", true
		}
	}
	return frame(target, title, 520), true
}

// IFrame embeds any https page under a custom directive name.
type IFrame struct {
	Key    string
	Title  string
	Height int // pixels; 0 means 480
}

func (f IFrame) Name() string { return strings.ToLower(f.Key) }

func (f IFrame) Render(_ context.Context, d Directive) (string, bool) {
	if !isHTTPS(d.Args) {
		return "", false
	}
	h := f.Height
	if h <= 0 {
		h = 480
	}
	return frame(d.Args, f.Title, h), true
}
