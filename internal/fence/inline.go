package fence

import "strings"

// Span is a piece of a line, either inline code or text.
type Span struct {
	Text string
	Code bool
}

// SplitInlineCode splits s on inline code spans. A span opens with a run of
// N backticks and closes at the next run of exactly N backticks. A run with
// no matching closer is plain text.
func SplitInlineCode(s string) []Span {
	var spans []Span
	last := 0
	i := 0
	for i < len(s) {
		if s[i] != '`' {
			i++
			continue
		}
		n := runLength(s[i:], '`')
		end := findClosingRun(s, i+n, n)
		if end < 0 {
			i += n
			continue
		}
		if i > last {
			spans = append(spans, Span{Text: s[last:i]})
		}
		spans = append(spans, Span{Text: s[i : end+n], Code: true})
		i = end + n
		last = i
	}
	if last < len(s) {
		spans = append(spans, Span{Text: s[last:]})
	}
	return spans
}

// findClosingRun returns the index of the next run of exactly n backticks
// at or after from, or -1.
func findClosingRun(s string, from, n int) int {
	for j := from; j < len(s); {
		k := strings.IndexByte(s[j:], '`')
		if k < 0 {
			return -1
		}
		j += k
		run := runLength(s[j:], '`')
		if run == n {
			return j
		}
		j += run
	}
	return -1
}

// MapOutsideInlineCode applies fn to the parts of s that are not inline code.
func MapOutsideInlineCode(s string, fn func(string) string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, sp := range SplitInlineCode(s) {
		if sp.Code {
			b.WriteString(sp.Text)
			continue
		}
		b.WriteString(fn(sp.Text))
	}
	return b.String()
}

// MapText applies fn to prose outside fences and inline code spans,
// one line at a time.
func MapText(text string, fn func(string) string) string {
	return MapProseLines(text, func(line string) string {
		return MapOutsideInlineCode(line, fn)
	})
}
