package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/alnah/go-hackmd/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidDuration = errors.New("invalid duration")
	ErrInvalidBaseURL  = errors.New("invalid backend base URL")
	ErrInvalidSize     = errors.New("invalid size")
	ErrInvalidPage     = errors.New("invalid page setting")
)

// Field length limits.
const (
	MaxURLLength       = 2048 // Browser limit
	MaxAddrLength      = 256  // "host:port"
	MaxUserAgentLength = 256
	MaxDurationLength  = 32 // "1h30m", "250ms"
	MaxPageSizeLength  = 10 // "a4", "letter"
	MaxMarginLength    = 16 // "12mm", "0.5in"
)

// Upper bounds for numeric fields.
const (
	MaxCacheSize     = 1 << 20
	MaxPDFBytes      = 1 << 30
	MaxScrollCadence = 1000
)

// Defaults.
const (
	DefaultBaseURL         = "http://localhost:8000"
	DefaultCacheSize       = 1024
	DefaultCacheTTL        = 24 * time.Hour
	DefaultMetadataTimeout = 3 * time.Second
	DefaultPDFTimeout      = 10 * time.Second
	DefaultPDFMaxBytes     = 15 * 1024 * 1024
	DefaultUserAgent       = "codoc-in-md"
	DefaultScrollCadence   = 5
	DefaultAddr            = ":8000"
	DefaultPageSize        = "a4"
	DefaultMargin          = "12mm"
	DefaultExportTimeout   = 30 * time.Second
)

var marginPattern = regexp.MustCompile(`^\d+(?:\.\d+)?(?:mm|cm|in|pt|px)$`)

var pageSizes = map[string]bool{"a3": true, "a4": true, "a5": true, "letter": true, "legal": true}

// Duration is a Go duration string such as "3s" or "24h".
type Duration string

// Value parses d. An empty or invalid value yields 0.
func (d Duration) Value() time.Duration {
	v, err := time.ParseDuration(string(d))
	if err != nil {
		return 0
	}
	return v
}

// Config holds all configuration for the renderer, the backend and export.
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Cache   CacheConfig   `yaml:"cache"`
	Fetch   FetchConfig   `yaml:"fetch"`
	Render  RenderConfig  `yaml:"render"`
	Server  ServerConfig  `yaml:"server"`
	Export  ExportConfig  `yaml:"export"`
}

// BackendConfig locates the backend that serves /__embed and /__export.
type BackendConfig struct {
	BaseURL string `yaml:"baseURL"`
}

// CacheConfig bounds the oEmbed/Gist response cache.
type CacheConfig struct {
	Size int      `yaml:"size"` // entries
	TTL  Duration `yaml:"ttl"`
}

// FetchConfig controls outbound requests.
type FetchConfig struct {
	MetadataTimeout Duration `yaml:"metadataTimeout"` // oEmbed and Gist
	PDFTimeout      Duration `yaml:"pdfTimeout"`
	PDFMaxBytes     int64    `yaml:"pdfMaxBytes"`
	UserAgent       string   `yaml:"userAgent"`
}

// RenderConfig tunes the text pipeline.
type RenderConfig struct {
	ScrollCadence int  `yaml:"scrollCadence"` // lines between scroll markers
	Typography    bool `yaml:"typography"`
	Highlight     bool `yaml:"highlight"` // server-side syntax highlighting
}

// ServerConfig defines the backend listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// ExportConfig defines PDF export settings.
type ExportConfig struct {
	PageSize string   `yaml:"pageSize"` // "a4", "letter", ...
	Margin   string   `yaml:"margin"`   // CSS length
	Timeout  Duration `yaml:"timeout"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{BaseURL: DefaultBaseURL},
		Cache:   CacheConfig{Size: DefaultCacheSize, TTL: Duration(DefaultCacheTTL.String())},
		Fetch: FetchConfig{
			MetadataTimeout: Duration(DefaultMetadataTimeout.String()),
			PDFTimeout:      Duration(DefaultPDFTimeout.String()),
			PDFMaxBytes:     DefaultPDFMaxBytes,
			UserAgent:       DefaultUserAgent,
		},
		Render: RenderConfig{ScrollCadence: DefaultScrollCadence, Typography: true, Highlight: true},
		Server: ServerConfig{Addr: DefaultAddr},
		Export: ExportConfig{
			PageSize: DefaultPageSize,
			Margin:   DefaultMargin,
			Timeout:  Duration(DefaultExportTimeout.String()),
		},
	}
}

// Validate checks every field. Called automatically by LoadConfig, and by
// the CLI once flags and environment have been applied.
func (c *Config) Validate() error {
	if err := validateFieldLength("backend.baseURL", c.Backend.BaseURL, MaxURLLength); err != nil {
		return err
	}
	if err := validateBaseURL(c.Backend.BaseURL); err != nil {
		return err
	}

	if c.Cache.Size < 1 || c.Cache.Size > MaxCacheSize {
		return fmt.Errorf("%w: cache.size must be between 1 and %d, got %d", ErrInvalidSize, MaxCacheSize, c.Cache.Size)
	}
	if c.Fetch.PDFMaxBytes < 1 || c.Fetch.PDFMaxBytes > MaxPDFBytes {
		return fmt.Errorf("%w: fetch.pdfMaxBytes must be between 1 and %d, got %d", ErrInvalidSize, MaxPDFBytes, c.Fetch.PDFMaxBytes)
	}
	if c.Render.ScrollCadence < 1 || c.Render.ScrollCadence > MaxScrollCadence {
		return fmt.Errorf("%w: render.scrollCadence must be between 1 and %d, got %d", ErrInvalidSize, MaxScrollCadence, c.Render.ScrollCadence)
	}

	durations := []struct {
		field string
		value Duration
	}{
		{"cache.ttl", c.Cache.TTL},
		{"fetch.metadataTimeout", c.Fetch.MetadataTimeout},
		{"fetch.pdfTimeout", c.Fetch.PDFTimeout},
		{"export.timeout", c.Export.Timeout},
	}
	for _, d := range durations {
		if err := validateDuration(d.field, d.value); err != nil {
			return err
		}
	}

	if err := validateFieldLength("fetch.userAgent", c.Fetch.UserAgent, MaxUserAgentLength); err != nil {
		return err
	}
	if err := validateFieldLength("server.addr", c.Server.Addr, MaxAddrLength); err != nil {
		return err
	}

	if err := validateFieldLength("export.pageSize", c.Export.PageSize, MaxPageSizeLength); err != nil {
		return err
	}
	if !pageSizes[strings.ToLower(c.Export.PageSize)] {
		return fmt.Errorf("%w: export.pageSize %q (must be a3, a4, a5, letter, or legal)", ErrInvalidPage, c.Export.PageSize)
	}
	if err := validateFieldLength("export.margin", c.Export.Margin, MaxMarginLength); err != nil {
		return err
	}
	if !marginPattern.MatchString(c.Export.Margin) {
		return fmt.Errorf("%w: export.margin %q is not a CSS length", ErrInvalidPage, c.Export.Margin)
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

func validateDuration(fieldName string, d Duration) error {
	if err := validateFieldLength(fieldName, string(d), MaxDurationLength); err != nil {
		return err
	}
	v, err := time.ParseDuration(string(d))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidDuration, fieldName, err)
	}
	if v <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidDuration, fieldName, d)
	}
	return nil
}

// validateBaseURL accepts absolute http(s) URLs without query or fragment.
func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q must be an absolute http(s) URL", ErrInvalidBaseURL, raw)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("%w: %q must not carry a query or fragment", ErrInvalidBaseURL, raw)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Keys missing from the file keep their defaults.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !isFilePath(nameOrPath) {
		var err error
		if configPath, err = resolveConfigPath(nameOrPath); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	cfg.Backend.BaseURL = strings.TrimRight(cfg.Backend.BaseURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// YAML encodes the configuration, as printed by the config subcommand.
func (c *Config) YAML() ([]byte, error) {
	return yamlutil.Marshal(c)
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-hackmd/
func resolveConfigPath(name string) (string, error) {
	var candidates []string
	for _, ext := range []string{".yaml", ".yml"} {
		candidates = append(candidates, name+ext)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range []string{".yaml", ".yml"} {
			candidates = append(candidates, filepath.Join(dir, "go-hackmd", name+ext))
		}
	}

	for _, p := range candidates {
		if fileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(candidates, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
