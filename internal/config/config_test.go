package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.Backend.BaseURL != "http://localhost:8000" {
		t.Errorf("Backend.BaseURL = %q, want %q", cfg.Backend.BaseURL, "http://localhost:8000")
	}
	if cfg.Cache.Size != 1024 {
		t.Errorf("Cache.Size = %d, want 1024", cfg.Cache.Size)
	}
	if got := cfg.Cache.TTL.Value(); got != 24*time.Hour {
		t.Errorf("Cache.TTL = %v, want 24h", got)
	}
	if got := cfg.Fetch.MetadataTimeout.Value(); got != 3*time.Second {
		t.Errorf("Fetch.MetadataTimeout = %v, want 3s", got)
	}
	if got := cfg.Fetch.PDFTimeout.Value(); got != 10*time.Second {
		t.Errorf("Fetch.PDFTimeout = %v, want 10s", got)
	}
	if cfg.Fetch.PDFMaxBytes != 15*1024*1024 {
		t.Errorf("Fetch.PDFMaxBytes = %d, want 15 MB", cfg.Fetch.PDFMaxBytes)
	}
	if cfg.Fetch.UserAgent != "codoc-in-md" {
		t.Errorf("Fetch.UserAgent = %q, want %q", cfg.Fetch.UserAgent, "codoc-in-md")
	}
	if !cfg.Render.Typography || !cfg.Render.Highlight {
		t.Error("Render.Typography and Render.Highlight should default to true")
	}
	if cfg.Render.ScrollCadence != 5 {
		t.Errorf("Render.ScrollCadence = %d, want 5", cfg.Render.ScrollCadence)
	}
	if cfg.Export.PageSize != "a4" || cfg.Export.Margin != "12mm" {
		t.Errorf("Export = %+v, want a4 / 12mm", cfg.Export)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
}

func TestDurationValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    Duration
		expected time.Duration
	}{
		{input: "3s", expected: 3 * time.Second},
		{input: "1h30m", expected: 90 * time.Minute},
		{input: "", expected: 0},
		{input: "soon", expected: 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.input), func(t *testing.T) {
			t.Parallel()

			if got := tt.input.Value(); got != tt.expected {
				t.Errorf("Duration(%q).Value() = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestValidateFieldLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		value     string
		maxLength int
		wantErr   bool
	}{
		{name: "empty value is valid", value: "", maxLength: 10},
		{name: "value at limit is valid", value: "1234567890", maxLength: 10},
		{name: "value over limit returns error", value: "12345678901", maxLength: 10, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := validateFieldLength("test.field", tt.value, tt.maxLength)
			if !tt.wantErr {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrFieldTooLong) {
				t.Fatalf("error = %v, want ErrFieldTooLong", err)
			}
			if !strings.Contains(err.Error(), "test.field") {
				t.Errorf("error = %q, want it to name the field", err)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
		message string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "https base with path", mutate: func(c *Config) { c.Backend.BaseURL = "https://codoc.example/app" }},
		{name: "relative base", mutate: func(c *Config) { c.Backend.BaseURL = "/app" }, wantErr: ErrInvalidBaseURL},
		{name: "ftp base", mutate: func(c *Config) { c.Backend.BaseURL = "ftp://host" }, wantErr: ErrInvalidBaseURL},
		{name: "base with query", mutate: func(c *Config) { c.Backend.BaseURL = "http://host/?a=b" }, wantErr: ErrInvalidBaseURL},
		{name: "long base", mutate: func(c *Config) { c.Backend.BaseURL = "http://h/" + strings.Repeat("a", MaxURLLength) }, wantErr: ErrFieldTooLong},
		{name: "zero cache", mutate: func(c *Config) { c.Cache.Size = 0 }, wantErr: ErrInvalidSize},
		{name: "huge cache", mutate: func(c *Config) { c.Cache.Size = MaxCacheSize + 1 }, wantErr: ErrInvalidSize},
		{name: "negative pdf cap", mutate: func(c *Config) { c.Fetch.PDFMaxBytes = -1 }, wantErr: ErrInvalidSize},
		{name: "zero cadence", mutate: func(c *Config) { c.Render.ScrollCadence = 0 }, wantErr: ErrInvalidSize},
		{name: "bad ttl", mutate: func(c *Config) { c.Cache.TTL = "forever" }, wantErr: ErrInvalidDuration},
		{name: "negative timeout", mutate: func(c *Config) { c.Fetch.PDFTimeout = "-1s" }, wantErr: ErrInvalidDuration},
		{name: "empty export timeout", mutate: func(c *Config) { c.Export.Timeout = "" }, wantErr: ErrInvalidDuration},
		{name: "long user agent", mutate: func(c *Config) { c.Fetch.UserAgent = strings.Repeat("x", MaxUserAgentLength+1) }, wantErr: ErrFieldTooLong},
		{name: "letter upper case", mutate: func(c *Config) { c.Export.PageSize = "Letter" }},
		{name: "unknown page size", mutate: func(c *Config) { c.Export.PageSize = "tabloid" }, message: "export.pageSize"},
		{name: "margin in inches", mutate: func(c *Config) { c.Export.Margin = "0.5in" }},
		{name: "margin without unit", mutate: func(c *Config) { c.Export.Margin = "12" }, message: "export.margin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
				}
			case tt.message != "":
				if err == nil || !strings.Contains(err.Error(), tt.message) {
					t.Errorf("Validate() error = %v, want it to mention %q", err, tt.message)
				}
			case err != nil:
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("empty name returns ErrEmptyConfigName", func(t *testing.T) {
		t.Parallel()

		if _, err := LoadConfig(""); !errors.Is(err, ErrEmptyConfigName) {
			t.Errorf("error = %v, want ErrEmptyConfigName", err)
		}
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, t.TempDir(), "hackmd.yaml", `backend:
  baseURL: "https://codoc.example/"
cache:
  ttl: 1h
render:
  typography: false
`)
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Backend.BaseURL != "https://codoc.example" {
			t.Errorf("Backend.BaseURL = %q, want trailing slash trimmed", cfg.Backend.BaseURL)
		}
		if cfg.Cache.TTL.Value() != time.Hour {
			t.Errorf("Cache.TTL = %q, want 1h", cfg.Cache.TTL)
		}
		if cfg.Cache.Size != DefaultCacheSize {
			t.Errorf("Cache.Size = %d, want default %d", cfg.Cache.Size, DefaultCacheSize)
		}
		if cfg.Render.Typography {
			t.Error("Render.Typography = true, want false")
		}
		if !cfg.Render.Highlight {
			t.Error("Render.Highlight = false, want default true")
		}
	})

	t.Run("nonexistent file path returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		if _, err := LoadConfig("/nonexistent/path/config.yaml"); !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("invalid YAML returns ErrConfigParse", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, t.TempDir(), "bad.yaml", "backend: [unclosed")
		if _, err := LoadConfig(path); !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("unknown field returns ErrConfigParse", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, t.TempDir(), "bad.yaml", "render:\n  colors: true\n")
		if _, err := LoadConfig(path); !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("validation runs after decoding", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, t.TempDir(), "bad.yaml", "fetch:\n  pdfTimeout: later\n")
		if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidDuration) {
			t.Errorf("error = %v, want ErrInvalidDuration", err)
		}
	})
}

func TestLoadConfig_ByName(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "team.yml", "server:\n  addr: \":9000\"\n")
	t.Chdir(dir)

	cfg, err := LoadConfig("team")
	if err != nil {
		t.Fatalf("LoadConfig(team) error = %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":9000")
	}

	_, err = LoadConfig("missing")
	if !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("LoadConfig(missing) error = %v, want ErrConfigNotFound", err)
	}
	if !strings.Contains(err.Error(), "missing.yaml") {
		t.Errorf("error = %q, want the tried paths", err)
	}
}

func TestConfigYAML(t *testing.T) {
	t.Parallel()

	data, err := DefaultConfig().YAML()
	if err != nil {
		t.Fatalf("YAML() error = %v", err)
	}

	path := writeConfig(t, t.TempDir(), "roundtrip.yaml", string(data))
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig(YAML()) error = %v", err)
	}
	if *cfg != *DefaultConfig() {
		t.Errorf("round trip = %+v, want defaults", cfg)
	}
}
