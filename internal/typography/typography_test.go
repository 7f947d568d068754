package typography

// Notes:
// - Text: replacements on plain strings, including quote direction.
// - Apply: everything that must stay untouched (code, math, directives,
//   tables, HTML, link destinations).

import "testing"

func TestText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "en dash", input: "a -- b", expected: "a – b"},
		{name: "em dash", input: "a --- b", expected: "a — b"},
		{name: "ellipsis", input: "wait...", expected: "wait…"},
		{name: "symbols", input: "(c) (R) (tm) (p) +-", expected: "© ® ™ § ±"},
		{name: "collapse bangs", input: "wow!!!!!", expected: "wow!!!"},
		{name: "collapse questions", input: "what?????", expected: "what???"},
		{name: "three bangs kept", input: "wow!!!", expected: "wow!!!"},
		{name: "collapse commas", input: "a,,,b", expected: "a,b"},
		{name: "double quotes", input: `"hello"`, expected: "“hello”"},
		{name: "quote after word", input: `say "hi" now`, expected: "say “hi” now"},
		{name: "apostrophe", input: "don't", expected: "don’t"},
		{name: "single quotes", input: "('x')", expected: "(‘x’)"},
		{name: "single quotes after apostrophe", input: "it's 'quoted'.", expected: "it’s ‘quoted’."},
		{name: "quote after space opens", input: "a 'b", expected: "a ‘b"},
		{name: "no quotes", input: "plain text", expected: "plain text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Text(tt.input); got != tt.expected {
				t.Errorf("Text(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestApply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
		{
			name:     "prose",
			input:    "It's \"fine\" -- really...\n",
			expected: "It’s “fine” – really…\n",
		},
		{
			name:     "fenced code untouched",
			input:    "a -- b\n```\nx -- \"y\"\n```\n",
			expected: "a – b\n```\nx -- \"y\"\n```\n",
		},
		{
			name:     "unclosed fence untouched",
			input:    "```\n\"x\" -- y\n",
			expected: "```\n\"x\" -- y\n",
		},
		{
			name:     "inline code untouched",
			input:    "`a--b` and a--b\n",
			expected: "`a--b` and a–b\n",
		},
		{
			name:     "inline math untouched",
			input:    "$a--b$ and a--b\n",
			expected: "$a--b$ and a–b\n",
		},
		{
			name:     "display math untouched",
			input:    "$$\nx -- \"y\"...\n$$\nafter--\n",
			expected: "$$\nx -- \"y\"...\n$$\nafter–\n",
		},
		{
			name:     "lone dollar typeset",
			input:    "costs $5 -- cheap\n",
			expected: "costs $5 – cheap\n",
		},
		{
			name:     "directive untouched",
			input:    "see {% youtube \"abc--def\" %} -- ok\n",
			expected: "see {% youtube \"abc--def\" %} – ok\n",
		},
		{
			name:     "table kept and delimiter normalized",
			input:    "| a | \"b\" |\n|-|:-:|\n| x--y | z |\n\nafter--\n",
			expected: "| a | \"b\" |\n|---|:---:|\n| x--y | z |\n\nafter–\n",
		},
		{
			name:     "thematic break kept",
			input:    "above\n\n---\n\nbelow\n",
			expected: "above\n\n---\n\nbelow\n",
		},
		{
			name:     "setext underline kept",
			input:    "Title\n--\n",
			expected: "Title\n--\n",
		},
		{
			name:     "link destination straightened",
			input:    "[a--b](http://x/a--b \"t\")\n",
			expected: "[a--b](http://x/a--b \"t\")\n",
		},
		{
			name:     "html attributes untouched",
			input:    "<span title=\"a--b\">x--y</span>\n",
			expected: "<span title=\"a--b\">x–y</span>\n",
		},
		{
			name:     "html comment untouched",
			input:    "<!-- note -->\n",
			expected: "<!-- note -->\n",
		},
		{
			name:     "reference definition",
			input:    "[id]: http://x/a--b \"t\"\n",
			expected: "[id]: http://x/a--b \"t\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Apply(tt.input); got != tt.expected {
				t.Errorf("Apply(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeDelimiterRow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "short cells", input: "|-|-|\n", expected: "|---|---|\n"},
		{name: "alignment kept", input: "|:-|-:|:-:|", expected: "|:---|---:|:---:|"},
		{name: "outer pipes added", input: "- | -", expected: "|--- | ---|"},
		{name: "long cells kept", input: "|-----|", expected: "|-----|"},
		{name: "spaces kept", input: "| - | :- |", expected: "| --- | :--- |"},
		{name: "no pipe", input: "---", expected: "---"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := NormalizeDelimiterRow(tt.input); got != tt.expected {
				t.Errorf("NormalizeDelimiterRow(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
