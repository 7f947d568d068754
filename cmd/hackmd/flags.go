package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// pipelineFlags tune the renderer. Zero values keep the configuration.
type pipelineFlags struct {
	baseURL      string
	cadence      int
	noTypography bool
	noHighlight  bool
}

// renderFlags holds flags for the render command.
type renderFlags struct {
	common   commonFlags
	pipeline pipelineFlags
	mode     string
	output   string
}

// exportFlags holds flags for the export command.
type exportFlags struct {
	common   commonFlags
	pipeline pipelineFlags
	output   string
	pageSize string
	margin   string
	timeout  string
	htmlOnly bool
}

// serveFlags holds flags for the serve command.
type serveFlags struct {
	common   commonFlags
	pipeline pipelineFlags
	addr     string
}

type doctorFlags struct {
	config string
	json   bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log debug details")
}

// addPipelineFlags adds renderer flags to a FlagSet.
func addPipelineFlags(fs *flag.FlagSet, f *pipelineFlags) {
	fs.StringVar(&f.baseURL, "base-url", "", "backend URL embeds point at")
	fs.IntVar(&f.cadence, "scroll-cadence", 0, "lines between scroll markers (0 = config)")
	fs.BoolVar(&f.noTypography, "no-typography", false, "disable smart quotes and dashes")
	fs.BoolVar(&f.noHighlight, "no-highlight", false, "leave code fences unhighlighted")
}

// newFlagSet creates a FlagSet whose usage goes to w.
func newFlagSet(name string, w io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	fs.Usage = func() { usage(w) }
	return fs
}

func buildRenderFlagSet(w io.Writer, f *renderFlags) *flag.FlagSet {
	fs := newFlagSet("render", w, printRenderUsage)
	fs.StringVarP(&f.mode, "mode", "m", "interactive", "pipeline mode: interactive, export")
	fs.StringVarP(&f.output, "output", "o", "", "output file (default: stdout)")
	addCommonFlags(fs, &f.common)
	addPipelineFlags(fs, &f.pipeline)
	return fs
}

func buildExportFlagSet(w io.Writer, f *exportFlags) *flag.FlagSet {
	fs := newFlagSet("export", w, printExportUsage)
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.StringVarP(&f.pageSize, "page-size", "p", "", "page size: a3, a4, a5, letter, legal")
	fs.StringVar(&f.margin, "margin", "", "page margin as a CSS length (e.g. 12mm)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "export timeout (e.g. 30s, 2m)")
	fs.BoolVar(&f.htmlOnly, "html-only", false, "write the print HTML, skip PDF")
	addCommonFlags(fs, &f.common)
	addPipelineFlags(fs, &f.pipeline)
	return fs
}

func buildServeFlagSet(w io.Writer, f *serveFlags) *flag.FlagSet {
	fs := newFlagSet("serve", w, printServeUsage)
	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (e.g. :8000)")
	addCommonFlags(fs, &f.common)
	addPipelineFlags(fs, &f.pipeline)
	return fs
}

func buildConfigFlagSet(w io.Writer, f *commonFlags) *flag.FlagSet {
	fs := newFlagSet("config", w, printConfigUsage)
	addCommonFlags(fs, f)
	return fs
}

// parseRenderFlags parses render flags and returns positional args.
func parseRenderFlags(args []string, w io.Writer) (*renderFlags, []string, error) {
	f := &renderFlags{}
	fs := buildRenderFlagSet(w, f)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseExportFlags parses export flags and returns positional args.
func parseExportFlags(args []string, w io.Writer) (*exportFlags, []string, error) {
	f := &exportFlags{}
	fs := buildExportFlagSet(w, f)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseServeFlags parses serve flags and returns positional args.
func parseServeFlags(args []string, w io.Writer) (*serveFlags, []string, error) {
	f := &serveFlags{}
	fs := buildServeFlagSet(w, f)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseConfigFlags parses config flags and returns positional args.
func parseConfigFlags(args []string, w io.Writer) (*commonFlags, []string, error) {
	f := &commonFlags{}
	fs := buildConfigFlagSet(w, f)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

func buildDoctorFlagSet(w io.Writer, f *doctorFlags) *flag.FlagSet {
	fs := newFlagSet("doctor", w, printDoctorUsage)
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVar(&f.json, "json", false, "print the report as JSON")
	return fs
}
