// Package imagesize rewrites HackMD sized images such as
// ![alt](url =200x100) into raw <img> tags.
package imagesize

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/alnah/go-hackmd/internal/fence"
	"github.com/alnah/go-hackmd/internal/htmlutil"
)

// Precompiled regex patterns for performance.
var (
	// Image whose destination carries a =WxH token
	sizedImagePattern = regexp.MustCompile(`(?i)!\[([^\]]*)\]\(([^)]*?\s=\s*\d*\s*x\s*\d*[^)]*?)\)`)

	// Size token; must be followed by whitespace or the end (checked by hand)
	sizeTokenPattern = regexp.MustCompile(`(?i)(?:^|\s)=\s*(\d*)\s*x(\s*)(\d*)`)

	// First quoted segment: "t", 't' or “t”
	titlePattern = regexp.MustCompile(`"(.*?)"|'(.*?)'|“(.*?)”`)

	firstTokenPattern = regexp.MustCompile(`^(\S+)(.*)$`)
)

// Image is a parsed sized-image destination. Zero Width or Height means
// the dimension was not given.
type Image struct {
	URL       string
	Title     string
	Width     int
	Height    int
	HasHeight bool
}

// Parse reads the inside of an image destination: a URL (bare or in
// angle brackets), an optional quoted title and a size token anywhere after
// the URL. It returns false when no usable size token is present.
func Parse(inside string) (Image, bool) {
	s := strings.TrimSpace(inside)
	if s == "" {
		return Image{}, false
	}

	var url, rest string
	if strings.HasPrefix(s, "<") {
		end := strings.Index(s, ">")
		if end <= 1 {
			return Image{}, false
		}
		url = strings.TrimSpace(s[1:end])
		rest = strings.TrimSpace(s[end+1:])
	} else {
		m := firstTokenPattern.FindStringSubmatch(s)
		if m == nil {
			return Image{}, false
		}
		url = m[1]
		rest = strings.TrimSpace(m[2])
	}
	if url == "" {
		return Image{}, false
	}

	start, end, rawW, rawH, ok := findSizeToken(rest)
	if !ok || (rawW == "" && rawH == "") {
		return Image{}, false
	}

	img := Image{URL: url}
	var err error
	if rawW != "" {
		if img.Width, err = strconv.Atoi(rawW); err != nil {
			return Image{}, false
		}
	}
	if rawH != "" {
		if img.Height, err = strconv.Atoi(rawH); err != nil {
			return Image{}, false
		}
		img.HasHeight = true
	}

	remaining := strings.TrimSpace(rest[:start] + rest[end:])
	if m := titlePattern.FindStringSubmatch(remaining); m != nil {
		img.Title = m[1] + m[2] + m[3]
	}
	return img, true
}

// findSizeToken locates the first size token followed by whitespace or the
// end of rest.
func findSizeToken(rest string) (start, end int, w, h string, ok bool) {
	for offset := 0; offset < len(rest); {
		m := sizeTokenPattern.FindStringSubmatchIndex(rest[offset:])
		if m == nil {
			return 0, 0, "", "", false
		}
		start, end = offset+m[0], offset+m[1]
		if start == offset && offset > 0 && !unicode.IsSpace(rune(rest[start])) {
			// ^ only anchors at the real start of rest.
			offset++
			continue
		}
		w = rest[offset+m[2] : offset+m[3]]
		h = rest[offset+m[6] : offset+m[7]]
		gap := m[5] - m[4]

		switch {
		case h == "" && gap > 0:
			// Whitespace right after x already satisfies the boundary.
			return start, offset + m[4], w, h, true
		case end == len(rest) || unicode.IsSpace(rune(rest[end])):
			return start, end, w, h, true
		}
		offset = end
	}
	return 0, 0, "", "", false
}

// Tag renders img as a raw HTML <img> element.
func (img Image) Tag(alt string) string {
	attrs := []string{
		`src="` + htmlutil.EscapeAttr(img.URL) + `"`,
		`alt="` + htmlutil.EscapeAttr(alt) + `"`,
		`loading="lazy"`,
	}
	if img.Title != "" {
		attrs = append(attrs, `title="`+htmlutil.EscapeAttr(img.Title)+`"`)
	}

	style := []string{"max-width:100%"}
	if img.Width > 0 {
		attrs = append(attrs, `width="`+strconv.Itoa(img.Width)+`"`)
		style = append(style, "width:"+strconv.Itoa(img.Width)+"px")
	}
	if img.Height > 0 {
		attrs = append(attrs, `height="`+strconv.Itoa(img.Height)+`"`)
		style = append(style, "height:"+strconv.Itoa(img.Height)+"px")
	}
	if !img.HasHeight {
		style = append(style, "height:auto")
	}
	attrs = append(attrs, `style="`+htmlutil.EscapeAttr(strings.Join(style, ";"))+`"`)

	return "<img " + strings.Join(attrs, " ") + " />"
}

// Apply rewrites sized images outside fenced code and inline code spans.
// Images without a usable size token are left as they are.
func Apply(markdown string) string {
	if !strings.Contains(markdown, "![") {
		return markdown
	}
	return fence.MapText(markdown, rewrite)
}

func rewrite(s string) string {
	return sizedImagePattern.ReplaceAllStringFunc(s, func(match string) string {
		m := sizedImagePattern.FindStringSubmatch(match)
		img, ok := Parse(m[2])
		if !ok {
			return match
		}
		return img.Tag(m[1])
	})
}
