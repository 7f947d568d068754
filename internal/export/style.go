package export

import (
	_ "embed"
	"fmt"
	"strings"
)

//go:embed pdf.css
var baseCSS string

// Page defaults.
const (
	DefaultPageSize = "A4"
	DefaultMargin   = "12mm"
)

// Stylesheet returns the print stylesheet for the given page size and
// margin. Scroll markers, the tail marker and the [TOC] navigation are
// hidden in print.
func Stylesheet(pageSize, margin string) string {
	if pageSize == "" {
		pageSize = DefaultPageSize
	}
	if margin == "" {
		margin = DefaultMargin
	}
	if len(pageSize) == 2 {
		pageSize = strings.ToUpper(pageSize) // a4 -> A4
	}
	return fmt.Sprintf("@page {\n  size: %s;\n  margin: %s;\n}\n\n", pageSize, margin) + baseCSS
}

// injectCSS places a style element at the end of the document head.
func injectCSS(doc, css string) string {
	style := "<style>" + css + "</style>"
	if i := strings.Index(doc, "</head>"); i >= 0 {
		return doc[:i] + style + doc[i:]
	}
	return style + doc
}
