package yamlutil_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/alnah/go-hackmd/internal/yamlutil"
)

type section struct {
	BaseURL string `yaml:"baseURL"`
	Size    int    `yaml:"size"`
	Enabled bool   `yaml:"enabled"`
}

func TestUnmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		strict  bool
		dest    any
		want    section
		wantErr error
		prefix  bool
	}{
		{name: "valid", data: []byte("baseURL: http://x\nsize: 42\nenabled: true"), dest: &section{}, want: section{BaseURL: "http://x", Size: 42, Enabled: true}},
		{name: "unknown key tolerated", data: []byte("size: 1\nextra: 2"), dest: &section{}, want: section{Size: 1}},
		{name: "unknown key strict", data: []byte("size: 1\nextra: 2"), strict: true, dest: &section{}, prefix: true},
		{name: "syntax error", data: []byte("size: [unclosed"), dest: &section{}, prefix: true},
		{name: "nil data", data: nil, dest: &section{}, wantErr: yamlutil.ErrNilData},
		{name: "nil data strict", data: []byte{}, strict: true, dest: &section{}, wantErr: yamlutil.ErrNilData},
		{name: "nil destination", data: []byte("size: 1"), dest: nil, wantErr: yamlutil.ErrNilDestination},
		{name: "too large", data: []byte("size: 1\n" + strings.Repeat("#", yamlutil.MaxInputSize)), dest: &section{}, wantErr: yamlutil.ErrInputTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			decode := yamlutil.Unmarshal
			if tt.strict {
				decode = yamlutil.UnmarshalStrict
			}
			err := decode(tt.data, tt.dest)

			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
			case tt.prefix:
				if err == nil || !strings.HasPrefix(err.Error(), "yamlutil:") {
					t.Fatalf("error = %v, want a yamlutil: error", err)
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got := *tt.dest.(*section); got != tt.want {
					t.Errorf("decoded = %+v, want %+v", got, tt.want)
				}
			}
		})
	}
}

func TestMarshal(t *testing.T) {
	t.Parallel()

	data, err := yamlutil.Marshal(section{BaseURL: "https://codoc.example", Size: 5})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	for _, want := range []string{"baseURL: https://codoc.example", "size: 5", "enabled: false"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("Marshal() = %q, want it to contain %q", data, want)
		}
	}

	var back section
	if err := yamlutil.UnmarshalStrict(data, &back); err != nil {
		t.Fatalf("UnmarshalStrict(Marshal()) error = %v", err)
	}
	if back.BaseURL != "https://codoc.example" || back.Size != 5 {
		t.Errorf("decoded = %+v", back)
	}
}
