package inlineext

import "testing"

func TestApply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "mark", input: "a ==hot== b", expected: "a <mark>hot</mark> b"},
		{name: "mark with spaces inside", input: "==two words==", expected: "<mark>two words</mark>"},
		{name: "setext underline", input: "Title\n=====\n", expected: "Title\n=====\n"},
		{name: "mark needs content", input: "a ==== b", expected: "a ==== b"},
		{name: "ins", input: "++new++ text", expected: "<ins>new</ins> text"},
		{name: "c plus plus", input: "C++ and C++", expected: "C++ and C++"},
		{name: "sup", input: "x^2^ + y^10^", expected: "x<sup>2</sup> + y<sup>10</sup>"},
		{name: "sup needs no spaces", input: "a ^b c^ d", expected: "a ^b c^ d"},
		{name: "footnotes", input: "one[^1] two[^2]", expected: "one[^1] two[^2]"},
		{name: "sub", input: "H~2~O", expected: "H<sub>2</sub>O"},
		{name: "strike left alone", input: "~~gone~~", expected: "~~gone~~"},
		{name: "escaped tilde", input: `a\~b~`, expected: `a\~b~`},
		{name: "inline code", input: "`==x==` ==y==", expected: "`==x==` <mark>y</mark>"},
		{name: "fenced code", input: "```\n==x==\n```\n", expected: "```\n==x==\n```\n"},
		{name: "link destination", input: "[a](http://h/~u~/p) ~b~", expected: "[a](http://h/~u~/p) <sub>b</sub>"},
		{name: "html attribute", input: `<img alt="x^2^">`, expected: `<img alt="x^2^">`},
		{name: "combined", input: "==++both++==", expected: "<mark><ins>both</ins></mark>"},
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
