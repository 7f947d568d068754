// Package fence classifies Markdown lines as prose or fenced code.
//
// Every text pass in the pipeline delegates fence detection to this package
// so that all of them agree on where code starts and ends. A fence opens on a
// line with at most three leading spaces followed by three or more backticks
// or tildes, and closes on the first later line with the same indent and at
// least as many of the same character. A fence that never closes turns the
// rest of the document into verbatim text.
package fence

import (
	"strings"
)

// Kind is the classification of a single line.
type Kind int

const (
	// Prose is a line outside any fence.
	Prose Kind = iota
	// Open is the opening line of a closed fence.
	Open
	// Body is a line between an opening and a closing fence line.
	Body
	// Close is the closing line of a fence.
	Close
	// Unclosed is an opening or body line of a fence that never closes.
	Unclosed
)

// String returns a short name for the kind.
func (k Kind) String() string {
	switch k {
	case Prose:
		return "prose"
	case Open:
		return "open"
	case Body:
		return "body"
	case Close:
		return "close"
	case Unclosed:
		return "unclosed"
	default:
		return "unknown"
	}
}

// Region describes an open fence.
type Region struct {
	Char   byte   // '`' or '~'
	Length int    // number of fence characters on the opening line
	Indent string // leading spaces of the opening line
	Info   string // everything after the fence characters, line ending removed
}

// Line is one physical line with its classification.
// Text keeps the original line ending.
type Line struct {
	Text   string
	Kind   Kind
	Region *Region
}

// SplitLines splits text into lines, keeping each line's ending.
// The last line has no ending if the text does not end with a newline.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// TrimEOL removes a trailing "\n" or "\r\n".
func TrimEOL(line string) string {
	return strings.TrimRight(line, "\r\n")
}

// EOL returns the line ending of line ("", "\n" or "\r\n").
func EOL(line string) string {
	return line[len(TrimEOL(line)):]
}

// ParseOpen reports whether line opens a fence and returns its region.
// A backtick fence whose info string contains a backtick is not a fence.
func ParseOpen(line string) (Region, bool) {
	s := TrimEOL(line)

	indent := 0
	for indent < len(s) && indent < 4 && s[indent] == ' ' {
		indent++
	}
	if indent > 3 || indent >= len(s) {
		return Region{}, false
	}

	ch := s[indent]
	if ch != '`' && ch != '~' {
		return Region{}, false
	}

	n := runLength(s[indent:], ch)
	if n < 3 {
		return Region{}, false
	}

	info := s[indent+n:]
	if ch == '`' && strings.ContainsRune(info, '`') {
		return Region{}, false
	}

	return Region{
		Char:   ch,
		Length: n,
		Indent: s[:indent],
		Info:   info,
	}, true
}

// Closes reports whether line closes the fence described by r.
func (r Region) Closes(line string) bool {
	s := TrimEOL(line)
	if !strings.HasPrefix(s, r.Indent) {
		return false
	}
	s = s[len(r.Indent):]

	n := runLength(s, r.Char)
	if n < r.Length {
		return false
	}
	return strings.TrimSpace(s[n:]) == ""
}

// runLength counts how many leading bytes of s equal ch.
func runLength(s string, ch byte) int {
	n := 0
	for n < len(s) && s[n] == ch {
		n++
	}
	return n
}

// scanState is the scanner's state machine.
type scanState int

const (
	outsideFence scanState = iota
	inFence
)

// Scan classifies every line of text.
// Joining the Text of the returned lines reproduces text exactly.
func Scan(text string) []Line {
	raw := SplitLines(text)
	out := make([]Line, 0, len(raw))

	state := outsideFence
	var region *Region
	openIdx := -1

	for _, line := range raw {
		switch state {
		case outsideFence:
			if r, ok := ParseOpen(line); ok {
				region = &r
				openIdx = len(out)
				out = append(out, Line{Text: line, Kind: Open, Region: region})
				state = inFence
				continue
			}
			out = append(out, Line{Text: line, Kind: Prose})

		case inFence:
			if region.Closes(line) {
				out = append(out, Line{Text: line, Kind: Close, Region: region})
				state = outsideFence
				region = nil
				continue
			}
			out = append(out, Line{Text: line, Kind: Body, Region: region})
		}
	}

	if state == inFence {
		for i := openIdx; i < len(out); i++ {
			out[i].Kind = Unclosed
		}
	}

	return out
}

// Join concatenates the text of lines.
func Join(lines []Line) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l.Text)
	}
	return b.String()
}

// SkipBlock reports whether lines[i] opens a fence and returns the index of
// the first line after it. An unclosed fence runs to len(lines).
func SkipBlock(lines []string, i int) (int, bool) {
	r, ok := ParseOpen(lines[i])
	if !ok {
		return i, false
	}
	for j := i + 1; j < len(lines); j++ {
		if r.Closes(lines[j]) {
			return j + 1, true
		}
	}
	return len(lines), true
}
