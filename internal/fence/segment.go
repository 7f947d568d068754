package fence

import "strings"

// Block is a closed fenced code block.
type Block struct {
	Region
	Open  string   // opening line, line ending included
	Body  []string // body lines, line endings included
	Close string   // closing line, line ending included
}

// Raw returns the block exactly as it appeared in the source.
func (b *Block) Raw() string {
	var sb strings.Builder
	sb.WriteString(b.Open)
	for _, l := range b.Body {
		sb.WriteString(l)
	}
	sb.WriteString(b.Close)
	return sb.String()
}

// Code returns the body without the line ending that precedes the closing fence.
func (b *Block) Code() string {
	code := strings.Join(b.Body, "")
	code = strings.TrimSuffix(code, "\n")
	return strings.TrimSuffix(code, "\r")
}

// Segment is either a run of prose, a closed fenced block, or the verbatim
// tail left by a fence that never closes.
type Segment struct {
	Text     string // prose or verbatim text; empty for blocks
	Block    *Block
	Verbatim bool
}

// Segments groups the lines of text into prose runs and fenced blocks.
func Segments(text string) []Segment {
	lines := Scan(text)
	var out []Segment
	var prose strings.Builder
	var verbatim strings.Builder

	flush := func() {
		if prose.Len() > 0 {
			out = append(out, Segment{Text: prose.String()})
			prose.Reset()
		}
	}

	var cur *Block
	for _, l := range lines {
		switch l.Kind {
		case Prose:
			prose.WriteString(l.Text)
		case Open:
			flush()
			cur = &Block{Region: *l.Region, Open: l.Text}
		case Body:
			cur.Body = append(cur.Body, l.Text)
		case Close:
			cur.Close = l.Text
			out = append(out, Segment{Block: cur})
			cur = nil
		case Unclosed:
			flush()
			verbatim.WriteString(l.Text)
		}
	}
	flush()
	if verbatim.Len() > 0 {
		out = append(out, Segment{Text: verbatim.String(), Verbatim: true})
	}
	return out
}

// MapProse applies fn to every maximal run of prose lines.
// Fenced blocks and unclosed-fence tails pass through unchanged.
func MapProse(text string, fn func(string) string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, seg := range Segments(text) {
		switch {
		case seg.Block != nil:
			b.WriteString(seg.Block.Raw())
		case seg.Verbatim:
			b.WriteString(seg.Text)
		default:
			b.WriteString(fn(seg.Text))
		}
	}
	return b.String()
}

// MapProseLines applies fn to every prose line individually.
func MapProseLines(text string, fn func(string) string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, l := range Scan(text) {
		if l.Kind == Prose {
			b.WriteString(fn(l.Text))
			continue
		}
		b.WriteString(l.Text)
	}
	return b.String()
}

// MapBlocks applies fn to every closed fenced block. Returning false keeps
// the block's raw text.
func MapBlocks(text string, fn func(*Block) (string, bool)) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, seg := range Segments(text) {
		if seg.Block == nil {
			b.WriteString(seg.Text)
			continue
		}
		if out, ok := fn(seg.Block); ok {
			b.WriteString(out)
			continue
		}
		b.WriteString(seg.Block.Raw())
	}
	return b.String()
}
