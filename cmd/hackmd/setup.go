package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-hackmd"
	"github.com/alnah/go-hackmd/internal/config"
	"github.com/alnah/go-hackmd/internal/fileutil"
	flag "github.com/spf13/pflag"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage            = errors.New("invalid usage")
	ErrTooManyArgs      = errors.New("too many arguments")
	ErrReadMarkdown     = errors.New("failed to read markdown")
	ErrWriteOutput      = errors.New("failed to write output")
	ErrInvalidExtension = errors.New("file must have .md or .markdown extension")
	ErrListen           = errors.New("failed to listen")
)

// maxInputBytes bounds documents read by render and export.
const maxInputBytes = 5 << 20

// flagError turns a parse error into a usage error, keeping ErrHelp.
func flagError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}

// loadConfig resolves and validates the configuration.
// Precedence is: flags > environment > config file > defaults.
// overrides apply command-specific flags last.
func loadConfig(common commonFlags, p pipelineFlags, overrides ...func(*config.Config)) (*config.Config, error) {
	env := loadEnvConfig()

	name := common.config
	if name == "" {
		name = env.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		var err error
		if cfg, err = config.LoadConfig(name); err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	applyEnvConfig(env, cfg)
	applyPipelineFlags(p, cfg)
	for _, o := range overrides {
		o(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyPipelineFlags copies the renderer flags that were set onto cfg.
func applyPipelineFlags(p pipelineFlags, cfg *config.Config) {
	if p.baseURL != "" {
		cfg.Backend.BaseURL = strings.TrimRight(p.baseURL, "/")
	}
	if p.cadence > 0 {
		cfg.Render.ScrollCadence = p.cadence
	}
	if p.noTypography {
		cfg.Render.Typography = false
	}
	if p.noHighlight {
		cfg.Render.Highlight = false
	}
}

// newLogger logs text to w: warnings only with quiet, debug with verbose.
func newLogger(common commonFlags, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case common.quiet:
		level = slog.LevelWarn
	case common.verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newRenderer builds the pipeline described by cfg. The cache expires
// entries by env.Now. hook, when not nil, observes remote lookups.
func newRenderer(cfg *config.Config, env *Environment, logger *slog.Logger, hook func(kind, outcome string)) *hackmd.Renderer {
	opts := []hackmd.Option{
		hackmd.WithBaseURL(cfg.Backend.BaseURL),
		hackmd.WithCache(cfg.Cache.Size, cfg.Cache.TTL.Value()),
		hackmd.WithFetchTimeout(cfg.Fetch.MetadataTimeout.Value()),
		hackmd.WithUserAgent(cfg.Fetch.UserAgent),
		hackmd.WithScrollCadence(cfg.Render.ScrollCadence),
		hackmd.WithTypography(cfg.Render.Typography),
		hackmd.WithHighlight(cfg.Render.Highlight),
		hackmd.WithLogger(logger),
	}
	if env.Now != nil {
		opts = append(opts, hackmd.WithClock(env.Now))
	}
	if hook != nil {
		opts = append(opts, hackmd.WithFetchHook(hook))
	}
	return hackmd.New(opts...)
}

// readInput reads the document named by args: stdin for none or "-",
// otherwise a Markdown file. It returns the document and its base name
// without extension ("" for stdin).
func readInput(args []string, stdin io.Reader) (text, name string, err error) {
	if len(args) > 1 {
		return "", "", fmt.Errorf("%w: %s", ErrTooManyArgs, strings.Join(args[1:], " "))
	}

	if len(args) == 1 && args[0] != "-" {
		path := args[0]
		if err := validateMarkdownExtension(path); err != nil {
			return "", "", err
		}
		data, err := readFile(path)
		if err != nil {
			return "", "", fmt.Errorf("%w: %w", ErrReadMarkdown, err)
		}
		return string(data), strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), nil
	}

	data, err := io.ReadAll(io.LimitReader(stdin, maxInputBytes+1))
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrReadMarkdown, err)
	}
	if len(data) > maxInputBytes {
		return "", "", fmt.Errorf("%w: input exceeds %d bytes", ErrReadMarkdown, maxInputBytes)
	}
	return string(data), "", nil
}

// validateMarkdownExtension checks that the file has a .md or .markdown extension.
func validateMarkdownExtension(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".md" && ext != ".markdown" {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, ext)
	}
	return nil
}

// writeOutput writes data to path, or to stdout when path is "" or "-".
func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == "" || path == "-" {
		if _, err := stdout.Write(data); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
		return nil
	}
	if err := fileutil.WriteFile(path, data); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}

// readFile reads at most maxInputBytes from path.
func readFile(path string) ([]byte, error) {
	f, err := os.Open(path) // #nosec G304 -- path is user-provided
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, maxInputBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxInputBytes {
		return nil, fmt.Errorf("%s exceeds %d bytes", path, maxInputBytes)
	}
	return data, nil
}
