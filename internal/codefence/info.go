// Package codefence handles HackMD code fence options and server-side
// syntax highlighting.
//
// HackMD info strings carry options in the first token:
//
//	```js=        line numbers from 1
//	```js=101     line numbers from 101
//	```js=+       continue numbering after the previous numbered block
//	```js!        wrap long lines
//	```!          wrapped Markdown
//
// Normalize rewrites these into a canonical token (js-linenos-101-wrap) that
// survives any Markdown parser. ParseInfo reads the canonical token back.
package codefence

import (
	"regexp"
	"strconv"
	"strings"
)

var lineNumbersPattern = regexp.MustCompile(`(?i)^(.+?)-linenos-(\d+)$`)

// Aliases maps common short language names to lexer names.
var Aliases = map[string]string{
	"js":      "javascript",
	"ts":      "typescript",
	"py":      "python",
	"sh":      "bash",
	"shell":   "bash",
	"zsh":     "bash",
	"yml":     "yaml",
	"md":      "markdown",
	"c++":     "cpp",
	"c#":      "csharp",
	"ps1":     "powershell",
	"console": "text",
}

// Info is a parsed canonical info string.
type Info struct {
	Language    string
	Wrap        bool
	LineNumbers bool
	Start       int
}

// ParseInfo reads a canonical info string as produced by Normalize.
// An empty info string is plain text.
func ParseInfo(info string) Info {
	out := Info{Language: "text", Start: 1}
	fields := strings.Fields(info)
	if len(fields) == 0 {
		return out
	}

	token := fields[0]
	if base, ok := strings.CutSuffix(token, "-wrap"); ok {
		out.Wrap = true
		token = base
	}
	if m := lineNumbersPattern.FindStringSubmatch(token); m != nil {
		if n, err := strconv.Atoi(m[2]); err == nil {
			out.LineNumbers = true
			out.Start = n
			token = m[1]
		}
	}

	lang := strings.ToLower(strings.TrimSpace(token))
	if alias, ok := Aliases[lang]; ok {
		lang = alias
	}
	if lang != "" {
		out.Language = lang
	}
	return out
}
