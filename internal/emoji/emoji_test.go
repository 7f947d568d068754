package emoji

// Notes:
// - Replace: overrides, country flags, image fallbacks and the alias table,
//   plus text that only looks like a shortcode.
// - Apply skips fenced and inline code.

import (
	"slices"
	"testing"
)

func img(name string) string {
	return `<img class="emoji" alt=":` + name + `:" src="` + CDNBase + "/" + name +
		`.png" style="display:inline-block;width:1.25em;height:1.25em;vertical-align:-0.2em"/>`
}

func TestNames(t *testing.T) {
	t.Parallel()

	names := Names()
	if len(names) < 1500 {
		t.Fatalf("Names() returned %d names, want at least 1500", len(names))
	}
	if !slices.IsSorted(names) {
		t.Error("Names() is not sorted")
	}
	for _, want := range []string{"smile", "+1", "flag-england", "thinking_face"} {
		if !HasImage(want) {
			t.Errorf("HasImage(%q) = false, want true", want)
		}
	}
	if HasImage("flag_england") {
		t.Error("HasImage(\"flag_england\") = true, want false")
	}
}

func TestReplace(t *testing.T) {
	t.Parallel()

	r := NewResolver()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "override", input: "party :tada:", expected: "party 🎉"},
		{name: "override before image", input: ":fire:", expected: "🔥"},
		{name: "country flag dash", input: ":flag-fr:", expected: "🇫🇷"},
		{name: "country flag underscore", input: ":flag_us:", expected: "🇺🇸"},
		{name: "country flag uppercase code", input: ":flag-JP:", expected: "🇯🇵"},
		{name: "non-country flag uses image", input: ":flag-england:", expected: img("flag-england")},
		{name: "underscore flag falls back to dashed image", input: ":flag_scotland:", expected: img("flag-scotland")},
		{name: "image", input: ":smile:", expected: img("smile")},
		{name: "plus one", input: ":+1:", expected: img("+1")},
		{name: "underscore to dash image", input: ":female_technologist:", expected: img("female-technologist")},
		{name: "unicode alias", input: ":thinking:", expected: "🤔"},
		{name: "unknown left alone", input: ":not_an_emoji_at_all:", expected: ":not_an_emoji_at_all:"},
		{name: "adjacent", input: ":tada::zap:", expected: "🎉⚡"},
		{name: "time is not a shortcode", input: "at 10:30 today", expected: "at 10:30 today"},
		{name: "no colon", input: "plain", expected: "plain"},
		{name: "existing image kept", input: img("smile") + " :smile:", expected: img("smile") + " " + img("smile")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := r.Replace(tt.input); got != tt.expected {
				t.Errorf("Replace(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestApply(t *testing.T) {
	t.Parallel()

	r := NewResolver()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "prose",
			input:    "hi :tada:\n",
			expected: "hi 🎉\n",
		},
		{
			name:     "fenced code skipped",
			input:    "```\n:tada:\n```\n:tada:\n",
			expected: "```\n:tada:\n```\n🎉\n",
		},
		{
			name:     "inline code skipped",
			input:    "`:tada:` :tada:\n",
			expected: "`:tada:` 🎉\n",
		},
		{
			name:     "unclosed fence skipped",
			input:    "```\n:tada:\n",
			expected: "```\n:tada:\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := r.Apply(tt.input); got != tt.expected {
				t.Errorf("Apply(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestReplaceIdempotent(t *testing.T) {
	t.Parallel()

	r := NewResolver()
	for _, in := range []string{":smile: and :+1:", ":flag-england: :tada:", "a :thinking: b"} {
		once := r.Replace(in)
		if twice := r.Replace(once); twice != once {
			t.Errorf("Replace(Replace(%q)) = %q, want %q", in, twice, once)
		}
	}
}
