package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/alnah/go-hackmd/internal/config"
	"github.com/alnah/go-hackmd/internal/export"
)

// runExport prints one document to PDF, or to its print HTML with
// --html-only.
func runExport(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseExportFlags(args, env.Stderr)
	if err != nil {
		return flagError(err)
	}

	cfg, err := loadConfig(f.common, f.pipeline, func(c *config.Config) {
		if f.pageSize != "" {
			c.Export.PageSize = f.pageSize
		}
		if f.margin != "" {
			c.Export.Margin = f.margin
		}
		if f.timeout != "" {
			c.Export.Timeout = config.Duration(f.timeout)
		}
	})
	if err != nil {
		return err
	}

	text, docID, err := readInput(positional, env.Stdin)
	if err != nil {
		return err
	}
	if docID == "" {
		docID = export.DefaultFilename
	}

	logger := newLogger(f.common, env.Stderr)
	timeout := cfg.Export.Timeout.Value()
	printer := env.NewPrinter(timeout, logger)
	defer func() { _ = printer.Close() }()

	exporter := export.NewExporter(
		newRenderer(cfg, env, logger, nil),
		printer,
		export.WithBaseURL(cfg.Backend.BaseURL),
		export.WithPage(cfg.Export.PageSize, cfg.Export.Margin),
		export.WithLogger(logger),
	)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		name string
		data []byte
		ext  = ".pdf"
	)
	if f.htmlOnly {
		var title, page string
		title, page, err = exporter.HTML(ctx, docID, text)
		name, data, ext = export.Filename(title), []byte(page), ".html"
	} else {
		name, data, err = exporter.Export(ctx, docID, text)
	}
	if err != nil {
		return err
	}

	out := resolveOutputPath(f.output, name+ext)
	if err := writeOutput(out, data, env.Stdout); err != nil {
		return err
	}
	if out != "-" && !f.common.quiet {
		fmt.Fprintf(env.Stderr, "Created %s (%s)\n", out, humanize.Bytes(uint64(len(data))))
	}
	return nil
}

// resolveOutputPath places filename in output when output is a directory
// (existing, or ending with a separator). An empty output means the
// current directory.
func resolveOutputPath(output, filename string) string {
	switch {
	case output == "":
		return filename
	case output == "-":
		return output
	case strings.HasSuffix(output, "/") || strings.HasSuffix(output, string(filepath.Separator)):
		return filepath.Join(output, filename)
	}
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return filepath.Join(output, filename)
	}
	return output
}
