package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-hackmd/internal/config"
)

// legacyBaseURLVar is the variable the CodiMD backend already exports.
const legacyBaseURLVar = "CODOC_BACKEND_BASE_URL"

// envConfig holds configuration from environment variables.
// Provides container-friendly overrides without a YAML file.
type envConfig struct {
	ConfigPath    string        // HACKMD_CONFIG
	BaseURL       string        // HACKMD_BASE_URL, then CODOC_BACKEND_BASE_URL
	Addr          string        // HACKMD_ADDR
	CacheSize     int           // HACKMD_CACHE_SIZE
	FetchTimeout  time.Duration // HACKMD_FETCH_TIMEOUT: oEmbed and Gist
	ExportTimeout time.Duration // HACKMD_EXPORT_TIMEOUT
	PageSize      string        // HACKMD_PAGE_SIZE
	UserAgent     string        // HACKMD_USER_AGENT
}

// knownEnvVars lists valid HACKMD_* environment variables.
var knownEnvVars = map[string]bool{
	"HACKMD_CONFIG":         true,
	"HACKMD_BASE_URL":       true,
	"HACKMD_ADDR":           true,
	"HACKMD_CACHE_SIZE":     true,
	"HACKMD_FETCH_TIMEOUT":  true,
	"HACKMD_EXPORT_TIMEOUT": true,
	"HACKMD_PAGE_SIZE":      true,
	"HACKMD_USER_AGENT":     true,
	"HACKMD_CONTAINER":      true, // read by doctor
}

// loadEnvConfig reads the recognized variables. Malformed numbers and
// durations are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("HACKMD_CONFIG"),
		BaseURL:    os.Getenv("HACKMD_BASE_URL"),
		Addr:       os.Getenv("HACKMD_ADDR"),
		PageSize:   os.Getenv("HACKMD_PAGE_SIZE"),
		UserAgent:  os.Getenv("HACKMD_USER_AGENT"),
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = os.Getenv(legacyBaseURLVar)
	}

	if v := os.Getenv("HACKMD_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CacheSize = n
		}
	}
	cfg.FetchTimeout = positiveDuration(os.Getenv("HACKMD_FETCH_TIMEOUT"))
	cfg.ExportTimeout = positiveDuration(os.Getenv("HACKMD_EXPORT_TIMEOUT"))

	return cfg
}

func positiveDuration(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0
	}
	return d
}

// warnUnknownEnvVars warns about HACKMD_* variables nobody reads, which
// usually are typos.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, "HACKMD_") {
			continue
		}
		name, _, _ := strings.Cut(env, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig overrides cfg with every variable that is set.
// Precedence is: flags > environment > config file > defaults
// (flags are applied afterwards).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.BaseURL != "" {
		cfg.Backend.BaseURL = strings.TrimRight(env.BaseURL, "/")
	}
	if env.Addr != "" {
		cfg.Server.Addr = env.Addr
	}
	if env.CacheSize > 0 {
		cfg.Cache.Size = env.CacheSize
	}
	if env.FetchTimeout > 0 {
		cfg.Fetch.MetadataTimeout = config.Duration(env.FetchTimeout.String())
	}
	if env.ExportTimeout > 0 {
		cfg.Export.Timeout = config.Duration(env.ExportTimeout.String())
	}
	if env.PageSize != "" {
		cfg.Export.PageSize = env.PageSize
	}
	if env.UserAgent != "" {
		cfg.Fetch.UserAgent = env.UserAgent
	}
}
