package codefence

import (
	"strconv"
	"strings"

	"github.com/alnah/go-hackmd/internal/fence"
)

// State carries line numbering across the fences of one document.
// Each render owns its own State; it must not be shared between documents.
type State struct {
	// LastEnd is the last line number of the most recent numbered block,
	// or 0 when none has been numbered yet.
	LastEnd int
}

// Normalize rewrites HackMD fence options into canonical info tokens.
// Code bodies are never modified and unclosed fences are left verbatim.
// A nil state behaves like a fresh one.
func Normalize(markdown string, st *State) string {
	if !strings.Contains(markdown, "```") && !strings.Contains(markdown, "~~~") {
		return markdown
	}
	if st == nil {
		st = &State{}
	}
	return fence.MapBlocks(markdown, func(b *fence.Block) (string, bool) {
		open, changed := st.rewriteOpen(b)
		if !changed {
			return "", false
		}
		var sb strings.Builder
		sb.WriteString(open)
		for _, l := range b.Body {
			sb.WriteString(l)
		}
		sb.WriteString(b.Close)
		return sb.String(), true
	})
}

// rewriteOpen returns the new opening line of b and updates the state.
func (st *State) rewriteOpen(b *fence.Block) (string, bool) {
	info := strings.TrimSpace(b.Info)
	if info == "" {
		return "", false
	}

	token, rest := info, ""
	if i := strings.IndexAny(info, " \t"); i >= 0 {
		token, rest = info[:i], strings.TrimSpace(info[i+1:])
	}

	wrap := false
	if base, ok := strings.CutSuffix(token, "!"); ok {
		wrap = true
		token = base
		if token == "" {
			token = "markdown"
		}
	}

	start, numbered := 0, false
	if base, opt, ok := strings.Cut(token, "="); ok {
		numbered = true
		token = strings.TrimSpace(base)
		switch opt = strings.TrimSpace(opt); {
		case opt == "+":
			start = st.LastEnd + 1
			if st.LastEnd == 0 {
				start = 1
			}
		case isDigits(opt):
			start, _ = strconv.Atoi(opt)
		default:
			start = 1
		}
	}

	out := token
	if numbered {
		out += "-linenos-" + strconv.Itoa(start)
	}
	if wrap {
		out += "-wrap"
	}
	if rest != "" {
		out = strings.TrimRight(out+" "+rest, " \t")
	}

	if numbered {
		st.LastEnd = start
		if n := len(b.Body); n > 0 {
			st.LastEnd = start + n - 1
		}
	}

	line := b.Indent + strings.Repeat(string(b.Char), b.Length) + out + fence.EOL(b.Open)
	return line, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
