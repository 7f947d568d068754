package fontawesome

import "testing"

func TestApply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "element becomes span",
			input:    `<i class="fa fa-file-text"></i> Docs`,
			expected: `<span class="fa fa-file-text" data-codoc-fa-class="fa fa-file-text"></span> Docs`,
		},
		{
			name:     "whitespace inside element",
			input:    `<i class="fa fa-star">  </i>`,
			expected: `<span class="fa fa-star" data-codoc-fa-class="fa fa-star"></span>`,
		},
		{
			name:     "single quotes and other attributes",
			input:    `<i id="x" class='fa fa-check' title="ok"></i>`,
			expected: `<span id="x" class='fa fa-check' title="ok" data-codoc-fa-class="fa fa-check"></span>`,
		},
		{
			name:     "class list is trimmed",
			input:    `<i class=" fa fa-bolt "></i>`,
			expected: `<span class="fa fa-bolt" data-codoc-fa-class="fa fa-bolt"></span>`,
		},
		{
			name:     "already annotated element keeps its attribute",
			input:    `<i class="fa fa-a" data-codoc-fa-class="fa fa-a"></i>`,
			expected: `<span class="fa fa-a" data-codoc-fa-class="fa fa-a"></span>`,
		},
		{
			name:     "open tag with content is annotated",
			input:    `<i class="fa fa-user">x</i>`,
			expected: `<i class="fa fa-user" data-codoc-fa-class="fa fa-user">x</i>`,
		},
		{
			name:     "already annotated tag untouched",
			input:    `<i class="fa" data-codoc-fa-class="fa">x</i>`,
			expected: `<i class="fa" data-codoc-fa-class="fa">x</i>`,
		},
		{
			name:     "non fa class untouched",
			input:    `<i class="icon-star"></i>`,
			expected: `<i class="icon-star"></i>`,
		},
		{
			name:     "fab prefix is not fa",
			input:    `<i class="fab-x"></i>`,
			expected: `<i class="fab-x"></i>`,
		},
		{
			name:     "img tag untouched",
			input:    `<img class="fa" src="x.png">`,
			expected: `<img class="fa" src="x.png">`,
		},
		{
			name:     "escapes class in data attribute",
			input:    `<i class="fa a&b"></i>`,
			expected: `<span class="fa a&b" data-codoc-fa-class="fa a&amp;b"></span>`,
		},
		{
			name:     "fenced code untouched",
			input:    "```html\n<i class=\"fa fa-x\"></i>\n```\n",
			expected: "```html\n<i class=\"fa fa-x\"></i>\n```\n",
		},
		{
			name:     "inline code untouched",
			input:    "`<i class=\"fa fa-x\"></i>`",
			expected: "`<i class=\"fa fa-x\"></i>`",
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
