package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: hackmd <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render       Expand HackMD extensions in a markdown document")
	fmt.Fprintln(w, "  export       Print a markdown document to PDF")
	fmt.Fprintln(w, "  serve        Run the embed/export backend")
	fmt.Fprintln(w, "  config       Print the effective configuration")
	fmt.Fprintln(w, "  doctor       Check the PDF export environment")
	fmt.Fprintln(w, "  completion   Generate shell completion script")
	fmt.Fprintln(w, "  version      Show version information")
	fmt.Fprintln(w, "  help         Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'hackmd help <command>' for details on a specific command.")
}

func printCommonFlags(w io.Writer) {
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Log debug details")
}

func printPipelineFlags(w io.Writer) {
	fmt.Fprintln(w, "Pipeline:")
	fmt.Fprintln(w, "      --base-url <url>      Backend URL embeds point at")
	fmt.Fprintln(w, "      --scroll-cadence <n>  Lines between scroll markers")
	fmt.Fprintln(w, "      --no-typography       Disable smart quotes and dashes")
	fmt.Fprintln(w, "      --no-highlight        Leave code fences unhighlighted")
	fmt.Fprintln(w)
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: hackmd render [input.md|-] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Expand HackMD extensions and print the resulting markdown.")
	fmt.Fprintln(w, "Reads stdin when no input is given.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render:")
	fmt.Fprintln(w, "  -m, --mode <s>            interactive (default) or export")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (default: stdout)")
	fmt.Fprintln(w)
	printPipelineFlags(w)
	printCommonFlags(w)
}

// printExportUsage prints usage for the export command.
func printExportUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: hackmd export [input.md|-] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print a markdown document to PDF with headless Chrome.")
	fmt.Fprintln(w, "The file is named after the first '# ' heading.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory")
	fmt.Fprintln(w, "  -p, --page-size <s>       Page size: a3, a4, a5, letter, legal")
	fmt.Fprintln(w, "      --margin <len>        Page margin (e.g. 12mm, 0.5in)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Export timeout (e.g. 30s, 2m)")
	fmt.Fprintln(w, "      --html-only           Write the print HTML, skip PDF")
	fmt.Fprintln(w)
	printPipelineFlags(w)
	printCommonFlags(w)
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: hackmd serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve /__embed/*, /__export/pdf, /api/* and /metrics.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "  -a, --addr <addr>         Listen address (e.g. :8000)")
	fmt.Fprintln(w)
	printPipelineFlags(w)
	printCommonFlags(w)
}

// printConfigUsage prints usage for the config command.
func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: hackmd config [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the configuration after defaults, config file and")
	fmt.Fprintln(w, "HACKMD_* environment variables are applied.")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: hackmd doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check the configuration, the serve address, Chrome and the temp directory.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -c, --config string   config file name or path")
	fmt.Fprintln(w, "      --json            print the report as JSON")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "render":
		printRenderUsage(env.Stdout)
	case "export":
		printExportUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "config":
		printConfigUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: hackmd version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: hackmd help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
