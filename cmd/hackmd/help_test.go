package main

// Notes:
// - runHelp: routing to each topic, plus the unknown-command path on stderr.
// - Usage text is matched on required strings, not exact formatting.

import (
	"bytes"
	"strings"
	"testing"
)

func TestRunHelp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []string
		want string
	}{
		{args: nil, want: "Commands:"},
		{args: []string{"render"}, want: "--mode"},
		{args: []string{"export"}, want: "--html-only"},
		{args: []string{"serve"}, want: "--addr"},
		{args: []string{"config"}, want: "HACKMD_*"},
		{args: []string{"doctor"}, want: "--json"},
		{args: []string{"completion"}, want: "powershell"},
		{args: []string{"version"}, want: "Usage: hackmd version"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(append([]string{"help"}, tt.args...), " "), func(t *testing.T) {
			t.Parallel()

			env, stdout, _ := newTestEnv("", &fakePrinter{})
			runHelp(tt.args, env)
			if !strings.Contains(stdout.String(), tt.want) {
				t.Errorf("runHelp(%q) missing %q in:\n%s", tt.args, tt.want, stdout)
			}
		})
	}

	t.Run("unknown", func(t *testing.T) {
		t.Parallel()

		env, stdout, stderr := newTestEnv("", &fakePrinter{})
		runHelp([]string{"nope"}, env)
		if stdout.Len() != 0 || !strings.Contains(stderr.String(), "Unknown command: nope") {
			t.Errorf("runHelp(nope) stdout=%q stderr=%q", stdout, stderr)
		}
	})
}

func TestPrintUsageListsCommands(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printUsage(&buf)
	for _, c := range getCommands() {
		if !strings.Contains(buf.String(), c.Name) {
			t.Errorf("printUsage() missing command %q", c.Name)
		}
	}
}
