// Package fontawesome keeps Font Awesome icon classes alive through HTML
// sanitizers that strip the class attribute.
//
// Icon elements such as <i class="fa fa-file-text"></i> become
// <span class="fa fa-file-text" data-codoc-fa-class="fa fa-file-text"></span>.
// A client script can restore the class from the data attribute.
package fontawesome

import (
	"regexp"
	"strings"

	"github.com/alnah/go-hackmd/internal/fence"
	"github.com/alnah/go-hackmd/internal/htmlutil"
)

// DataAttr is the attribute that carries the original class list.
const DataAttr = "data-codoc-fa-class"

const iconTag = `<i((?:\s[^>]*?)?)\sclass=(?:"([^"']*\bfa\b[^"']*)"|'([^"']*\bfa\b[^"']*)')([^>]*)>`

// Precompiled regex patterns for performance.
var (
	// <i ... class="... fa ...">   </i>
	elementPattern = regexp.MustCompile(`(?i)` + iconTag + `\s*</i>`)

	// <i ... class="... fa ..."> left after elements are converted
	tagPattern = regexp.MustCompile(`(?i)` + iconTag)

	annotatedPattern = regexp.MustCompile(`(?i)\b` + DataAttr + `\s*=`)
)

// icon is one matched <i> tag split into its parts.
type icon struct {
	before, after string
	quote         string
	class         string
}

func parseIcon(re *regexp.Regexp, match string) icon {
	m := re.FindStringSubmatch(match)
	ic := icon{before: m[1], after: m[4], quote: `"`, class: m[2]}
	if m[3] != "" {
		ic.quote = "'"
		ic.class = m[3]
	}
	ic.class = strings.TrimSpace(ic.class)
	return ic
}

func (ic icon) annotated() bool {
	return annotatedPattern.MatchString(ic.before + ic.after)
}

func (ic icon) attrs() string {
	return ic.before + " class=" + ic.quote + ic.class + ic.quote + ic.after
}

func (ic icon) dataAttr() string {
	return " " + DataAttr + `="` + htmlutil.EscapeAttr(ic.class) + `"`
}

// Apply rewrites icon markup outside fenced code and inline code spans.
func Apply(markdown string) string {
	if !strings.Contains(markdown, "<i") && !strings.Contains(markdown, "<I") {
		return markdown
	}
	return fence.MapText(markdown, rewrite)
}

func rewrite(s string) string {
	s = elementPattern.ReplaceAllStringFunc(s, func(match string) string {
		ic := parseIcon(elementPattern, match)
		data := ic.dataAttr()
		if ic.annotated() {
			data = ""
		}
		return "<span" + ic.attrs() + data + "></span>"
	})

	return tagPattern.ReplaceAllStringFunc(s, func(match string) string {
		ic := parseIcon(tagPattern, match)
		if ic.annotated() {
			return match
		}
		return "<i" + ic.attrs() + ic.dataAttr() + ">"
	})
}
