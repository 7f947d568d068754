package main

// Notes:
// - GenerateCompletion: checks each shell script names every command and
//   the flags pulled from the pflag sets. Script syntax is not executed.
// - getCommands: every command is registered and enum flags carry values.

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestGenerateCompletion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		shell Shell
		want  []string
	}{
		{shell: ShellBash, want: []string{"_hackmd()", "complete -o default -F _hackmd hackmd", "render", "--base-url", "interactive export"}},
		{shell: ShellZsh, want: []string{"#compdef hackmd", "compdef _hackmd hackmd", "serve", "--page-size"}},
		{shell: ShellFish, want: []string{"complete -c hackmd", "__fish_seen_subcommand_from export", "-l html-only", "__fish_complete_suffix .md"}},
		{shell: ShellPowerShell, want: []string{"Register-ArgumentCompleter -Native -CommandName hackmd", "doctor", "--json"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.shell), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			if err := GenerateCompletion(&buf, tt.shell); err != nil {
				t.Fatalf("GenerateCompletion(%s) error = %v", tt.shell, err)
			}
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("GenerateCompletion(%s) missing %q", tt.shell, want)
				}
			}
		})
	}
}

func TestGenerateCompletion_Unsupported(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := GenerateCompletion(&buf, "tcsh"); !errors.Is(err, ErrUnsupportedShell) {
		t.Errorf("GenerateCompletion(tcsh) error = %v, want %v", err, ErrUnsupportedShell)
	}
	if buf.Len() != 0 {
		t.Errorf("GenerateCompletion(tcsh) wrote %q", buf.String())
	}
}

func TestGetCommands(t *testing.T) {
	t.Parallel()

	byName := map[string]commandDef{}
	for _, c := range getCommands() {
		byName[c.Name] = c
	}
	for _, name := range []string{"render", "export", "serve", "config", "doctor", "completion", "version", "help"} {
		if _, ok := byName[name]; !ok {
			t.Errorf("getCommands() missing %q", name)
		}
	}

	var mode *flagDef
	for i, f := range byName["render"].Flags {
		if f.Long == "mode" {
			mode = &byName["render"].Flags[i]
		}
	}
	if mode == nil || mode.Short != "m" || strings.Join(mode.Values, ",") != "interactive,export" {
		t.Errorf("render --mode = %+v", mode)
	}
	if !byName["export"].TakesFiles || byName["serve"].TakesFiles {
		t.Error("TakesFiles wrong for export or serve")
	}
}
