package export

import (
	"strings"

	"github.com/alnah/go-hackmd/internal/yamlutil"
)

// FrontMatter holds the keys export reads from a leading YAML block.
// Other keys (tags, robots, breaks...) are ignored.
type FrontMatter struct {
	Title string `yaml:"title"`
}

// SplitFrontMatter separates a leading YAML block delimited by "---" and
// "---" (or "...") from the rest of the document. A block that is not
// closed or does not decode is treated as ordinary Markdown.
func SplitFrontMatter(markdown string) (FrontMatter, string) {
	var (
		meta   FrontMatter
		offset int
		yaml   strings.Builder
	)
	first := true
	for line := range strings.Lines(markdown) {
		offset += len(line)
		text := strings.TrimRight(line, "\r\n")
		if first {
			if text != "---" {
				return meta, markdown
			}
			first = false
			continue
		}
		if text == "---" || text == "..." {
			if yaml.Len() > 0 && yamlutil.Unmarshal([]byte(yaml.String()), &meta) != nil {
				return FrontMatter{}, markdown
			}
			return meta, markdown[offset:]
		}
		yaml.WriteString(line)
	}
	return meta, markdown
}
