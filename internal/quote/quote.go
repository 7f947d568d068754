// Package quote renders HackMD labelled blockquotes.
//
// A blockquote that carries a metadata line
//
//	> [name=Ada] [time=2024-01-01] [color=#f00]
//
// is rebuilt as a tree of nested quotes and emitted as styled HTML with a
// name/time footer. Blockquotes without metadata are left to the Markdown
// renderer.
package quote

import (
	"regexp"
	"strings"

	"github.com/alnah/go-hackmd/internal/fence"
	"github.com/alnah/go-hackmd/internal/htmlutil"
)

// DefaultColor is the left border color of a quote without [color=...].
const DefaultColor = "#CBD5E1"

var metaPattern = regexp.MustCompile(`\[name=([^\]]+)\]\s*\[time=([^\]]+)\]\s*\[color=([^\]]+)\]`)

// Node is one quote level. Lines hold the content with markers removed.
type Node struct {
	Depth    int
	Lines    []string
	Children []*Node
	Name     string
	Time     string
	Color    string
}

// Depth counts the quote markers at the start of line and returns the
// remaining content. Markers may be preceded by spaces or tabs and followed
// by one optional space, so ">>", "> >" and "  > x" all count.
func Depth(line string) (int, string, bool) {
	i, depth := 0, 0
	for i < len(line) {
		for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
		if i < len(line) && line[i] == '>' {
			depth++
			i++
			if i < len(line) && line[i] == ' ' {
				i++
			}
			continue
		}
		break
	}
	if depth == 0 {
		return 0, "", false
	}
	return depth, line[i:], true
}

// Build turns consecutive quote lines into a forest. A line deeper than the
// current node opens a child; a shallower one closes nodes until the depth
// fits.
func Build(lines []string) []*Node {
	var roots, stack []*Node

	for _, raw := range lines {
		depth, content, ok := Depth(raw)
		if !ok {
			continue
		}

		for len(stack) > 0 && stack[len(stack)-1].Depth > depth {
			stack = stack[:len(stack)-1]
		}

		if len(stack) == 0 || stack[len(stack)-1].Depth < depth {
			node := &Node{Depth: depth}
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				top.Children = append(top.Children, node)
			} else {
				roots = append(roots, node)
			}
			stack = append(stack, node)
		}

		top := stack[len(stack)-1]
		top.Lines = append(top.Lines, fence.TrimEOL(content))
	}
	return roots
}

// ExtractMeta moves the first metadata line of every node into its Name,
// Time and Color fields. Later metadata lines stay as text.
func ExtractMeta(node *Node) {
	found := false
	kept := node.Lines[:0]
	for _, line := range node.Lines {
		if !found {
			if m := metaPattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
				node.Name = strings.TrimSpace(m[1])
				node.Time = strings.TrimSpace(m[2])
				node.Color = strings.TrimSpace(m[3])
				found = true
				continue
			}
		}
		kept = append(kept, line)
	}
	node.Lines = kept

	for _, child := range node.Children {
		ExtractMeta(child)
	}
}

const (
	iconAttrs = `viewBox="0 0 24 24" aria-hidden="true" style="width:1rem;height:1rem;color:#9CA3AF;flex:none" ` +
		`fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round"`
	userIcon  = `<svg ` + iconAttrs + `><path d="M20 21a8 8 0 0 0-16 0"/><circle cx="12" cy="8" r="4"/></svg>`
	clockIcon = `<svg ` + iconAttrs + `><circle cx="12" cy="12" r="9"/><path d="M12 7v6l3 2"/></svg>`

	metaItemOpen = `<span style="display:inline-flex;align-items:center;gap:0.25rem">`
	metaRowOpen  = `<div class="mt-2 text-sm text-gray-500" ` +
		`style="display:flex;align-items:center;gap:0.75rem;flex-wrap:nowrap;white-space:nowrap;overflow-x:auto">` +
		`<span style="color:#9CA3AF">—</span>`
)

// RenderNode renders node and its children as HTML.
func RenderNode(node *Node) string {
	color := strings.TrimSpace(node.Color)
	if color == "" {
		color = DefaultColor
	}

	var b strings.Builder
	b.WriteString(`<div class="my-4 pl-4 border-l-4" style="border-left-color:` + htmlutil.EscapeAttr(color) + `">`)

	for _, para := range paragraphs(node.Lines) {
		rendered := make([]string, len(para))
		for i, line := range para {
			rendered[i] = htmlutil.InlineMinimal(line)
		}
		b.WriteString(`<p class="mb-3 last:mb-0 text-gray-700 leading-relaxed">`)
		b.WriteString(strings.Join(rendered, "<br/>"))
		b.WriteString("</p>")
	}

	for _, child := range node.Children {
		b.WriteString(RenderNode(child))
	}

	if node.Name != "" || node.Time != "" {
		b.WriteString(metaRowOpen)
		if node.Name != "" {
			b.WriteString(metaItemOpen + userIcon)
			b.WriteString(`<span style="font-weight:500;color:#374151">` + htmlutil.EscapeText(node.Name) + "</span>")
			b.WriteString("</span>")
		}
		if node.Time != "" {
			b.WriteString(metaItemOpen + clockIcon)
			b.WriteString("<span>" + htmlutil.EscapeText(node.Time) + "</span>")
			b.WriteString("</span>")
		}
		b.WriteString("</div>")
	}

	b.WriteString("</div>")
	return b.String()
}

func paragraphs(lines []string) [][]string {
	var out [][]string
	var buf []string
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			if len(buf) > 0 {
				out = append(out, buf)
				buf = nil
			}
			continue
		}
		buf = append(buf, line)
	}
	if len(buf) > 0 {
		out = append(out, buf)
	}
	return out
}

// Emoji resolves shortcodes inside quote text.
type Emoji interface {
	Replace(text string) string
}

// Builder rewrites labelled blockquotes. It is safe for concurrent use.
type Builder struct {
	emoji Emoji
}

// New creates a Builder. A nil emoji resolver leaves shortcodes as they are.
func New(emoji Emoji) *Builder {
	return &Builder{emoji: emoji}
}

// Apply replaces every contiguous blockquote that contains a metadata line.
// Fenced code is never scanned.
func (q *Builder) Apply(markdown string) string {
	if !strings.Contains(markdown, "[name=") {
		return markdown
	}

	lines := fence.SplitLines(markdown)
	var out strings.Builder
	out.Grow(len(markdown))

	for i := 0; i < len(lines); {
		if next, ok := fence.SkipBlock(lines, i); ok {
			for _, l := range lines[i:next] {
				out.WriteString(l)
			}
			i = next
			continue
		}
		if _, _, ok := Depth(lines[i]); !ok {
			out.WriteString(lines[i])
			i++
			continue
		}

		start := i
		for i < len(lines) {
			if _, _, ok := Depth(lines[i]); !ok {
				break
			}
			i++
		}
		block := lines[start:i]

		if !hasMeta(block) {
			for _, l := range block {
				out.WriteString(l)
			}
			continue
		}
		out.WriteString(q.render(block))
	}
	return out.String()
}

func (q *Builder) render(block []string) string {
	roots := Build(block)
	html := make([]string, len(roots))
	for i, root := range roots {
		ExtractMeta(root)
		q.replaceEmoji(root)
		html[i] = RenderNode(root)
	}
	return "\n" + strings.Join(html, "\n") + "\n"
}

func (q *Builder) replaceEmoji(node *Node) {
	if q.emoji == nil {
		return
	}
	for i, line := range node.Lines {
		node.Lines[i] = q.emoji.Replace(line)
	}
	for _, child := range node.Children {
		q.replaceEmoji(child)
	}
}

func hasMeta(block []string) bool {
	for _, line := range block {
		if _, content, ok := Depth(line); ok && metaPattern.MatchString(strings.TrimSpace(content)) {
			return true
		}
	}
	return false
}
