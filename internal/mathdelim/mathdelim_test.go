package mathdelim

import "testing"

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "no math", input: "plain (text) [x]", expected: "plain (text) [x]"},
		{name: "inline", input: `area \(\pi r^2\) here`, expected: `area $\pi r^2$ here`},
		{name: "two inline", input: `\(a\) and \(b\)`, expected: `$a$ and $b$`},
		{name: "display on one line", input: `\[E = mc^2\]`, expected: `$$E = mc^2$$`},
		{name: "display block", input: "\\[\n\\int_0^1 x\\,dx\n  \\]\r\n", expected: "$$\n\\int_0^1 x\\,dx\n  $$\r\n"},
		{name: "unclosed inline", input: `\(a`, expected: `\(a`},
		{name: "inline code", input: "`\\(a\\)` \\(b\\)", expected: "`\\(a\\)` $b$"},
		{name: "fenced code", input: "```tex\n\\(a\\)\n```\n", expected: "```tex\n\\(a\\)\n```\n"},
		{name: "dollar signs kept", input: `\(\$5\)`, expected: `$\$5$`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Normalize(tt.input); got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
