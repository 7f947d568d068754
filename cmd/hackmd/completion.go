package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	flag "github.com/spf13/pflag"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash       Shell = "bash"
	ShellZsh        Shell = "zsh"
	ShellFish       Shell = "fish"
	ShellPowerShell Shell = "powershell"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long   string
	Short  string
	Desc   string
	Bool   bool
	Values []string // enum values, if any
}

// commandDef describes a command for completion.
type commandDef struct {
	Name       string
	Desc       string
	Flags      []flagDef
	TakesFiles bool // accepts *.md arguments
}

// flagValues maps enum flags to their values. Names, descriptions and
// types come from the FlagSets.
var flagValues = map[string][]string{
	"mode":      {"interactive", "export"},
	"page-size": {"a3", "a4", "a5", "letter", "legal"},
}

// extractFlags lists the flags of fs in definition order.
func extractFlags(fs *flag.FlagSet) []flagDef {
	var flags []flagDef
	fs.VisitAll(func(f *flag.Flag) {
		flags = append(flags, flagDef{
			Long:   f.Name,
			Short:  f.Shorthand,
			Desc:   f.Usage,
			Bool:   f.Value.Type() == "bool",
			Values: flagValues[f.Name],
		})
	})
	return flags
}

// getCommands returns the command registry for completion.
func getCommands() []commandDef {
	return []commandDef{
		{Name: "render", Desc: "Expand HackMD extensions", Flags: extractFlags(buildRenderFlagSet(io.Discard, &renderFlags{})), TakesFiles: true},
		{Name: "export", Desc: "Print a document to PDF", Flags: extractFlags(buildExportFlagSet(io.Discard, &exportFlags{})), TakesFiles: true},
		{Name: "serve", Desc: "Run the embed/export backend", Flags: extractFlags(buildServeFlagSet(io.Discard, &serveFlags{}))},
		{Name: "config", Desc: "Print the effective configuration", Flags: extractFlags(buildConfigFlagSet(io.Discard, &commonFlags{}))},
		{Name: "doctor", Desc: "Check the PDF export environment", Flags: extractFlags(buildDoctorFlagSet(io.Discard, &doctorFlags{}))},
		{Name: "completion", Desc: "Generate shell completion script"},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command"},
	}
}

// GenerateCompletion writes a shell completion script to w.
func GenerateCompletion(w io.Writer, shell Shell) error {
	cmds := getCommands()
	var script string
	switch shell {
	case ShellBash:
		script = bashScript(cmds)
	case ShellZsh:
		script = zshScript(cmds)
	case ShellFish:
		script = fishScript(cmds)
	case ShellPowerShell:
		script = powerShellScript(cmds)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish, powershell)", ErrUnsupportedShell, shell)
	}
	_, err := io.WriteString(w, script)
	return err
}

func commandNames(cmds []commandDef) string {
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	return strings.Join(names, " ")
}

func flagWords(c commandDef) string {
	var words []string
	for _, f := range c.Flags {
		words = append(words, "--"+f.Long)
		if f.Short != "" {
			words = append(words, "-"+f.Short)
		}
	}
	return strings.Join(words, " ")
}

// enumFlags returns the enum flags of every command, deduplicated.
func enumFlags(cmds []commandDef) []flagDef {
	seen := map[string]flagDef{}
	for _, c := range cmds {
		for _, f := range c.Flags {
			if len(f.Values) > 0 {
				seen[f.Long] = f
			}
		}
	}
	out := make([]flagDef, 0, len(seen))
	for _, f := range seen {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Long < out[j].Long })
	return out
}

func bashScript(cmds []commandDef) string {
	var b strings.Builder
	b.WriteString("# bash completion for hackmd\n_hackmd() {\n")
	b.WriteString("  local cur prev cmd\n  cur=\"${COMP_WORDS[COMP_CWORD]}\"\n  prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n  cmd=\"${COMP_WORDS[1]}\"\n")
	fmt.Fprintf(&b, "  if [[ $COMP_CWORD -eq 1 ]]; then\n    COMPREPLY=($(compgen -W %q -- \"$cur\"))\n    return\n  fi\n", commandNames(cmds))
	b.WriteString("  case \"$prev\" in\n")
	for _, f := range enumFlags(cmds) {
		fmt.Fprintf(&b, "    --%s) COMPREPLY=($(compgen -W %q -- \"$cur\")); return ;;\n", f.Long, strings.Join(f.Values, " "))
	}
	b.WriteString("  esac\n  case \"$cmd\" in\n")
	for _, c := range cmds {
		switch {
		case c.Name == "completion":
			b.WriteString("    completion) COMPREPLY=($(compgen -W \"bash zsh fish powershell\" -- \"$cur\")) ;;\n")
		case c.Name == "help":
			fmt.Fprintf(&b, "    help) COMPREPLY=($(compgen -W %q -- \"$cur\")) ;;\n", commandNames(cmds))
		case len(c.Flags) > 0:
			files := ""
			if c.TakesFiles {
				files = " $(compgen -f -X '!*.@(md|markdown)' -- \"$cur\")"
			}
			fmt.Fprintf(&b, "    %s) COMPREPLY=($(compgen -W %q -- \"$cur\")%s) ;;\n", c.Name, flagWords(c), files)
		}
	}
	b.WriteString("  esac\n}\nshopt -s extglob\ncomplete -o default -F _hackmd hackmd\n")
	return b.String()
}

func zshScript(cmds []commandDef) string {
	var b strings.Builder
	b.WriteString("#compdef hackmd\n\n_hackmd() {\n  local -a commands\n  commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "    '%s:%s'\n", c.Name, c.Desc)
	}
	b.WriteString("  )\n  if (( CURRENT == 2 )); then\n    _describe 'command' commands\n    return\n  fi\n  case $words[2] in\n")
	for _, c := range cmds {
		if len(c.Flags) == 0 {
			continue
		}
		fmt.Fprintf(&b, "    %s)\n      _arguments \\\n", c.Name)
		for _, f := range c.Flags {
			opt := "--" + f.Long
			if f.Short != "" {
				opt = "{-" + f.Short + ",--" + f.Long + "}"
			}
			arg := ""
			switch {
			case len(f.Values) > 0:
				arg = ":" + f.Long + ":(" + strings.Join(f.Values, " ") + ")"
			case !f.Bool:
				arg = ":" + f.Long + ":"
			}
			fmt.Fprintf(&b, "        %s'[%s]%s' \\\n", opt, zshEscape(f.Desc), arg)
		}
		if c.TakesFiles {
			b.WriteString("        '*:markdown file:_files -g \"*.(md|markdown)\"'\n")
		} else {
			b.WriteString("        '*: :'\n")
		}
		b.WriteString("      ;;\n")
	}
	b.WriteString("    completion) _values 'shell' bash zsh fish powershell ;;\n  esac\n}\n\ncompdef _hackmd hackmd\n")
	return b.String()
}

func zshEscape(s string) string {
	return strings.NewReplacer("[", "(", "]", ")", "'", "", ":", " -").Replace(s)
}

func fishScript(cmds []commandDef) string {
	var b strings.Builder
	b.WriteString("# fish completion for hackmd\ncomplete -c hackmd -f\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "complete -c hackmd -n __fish_use_subcommand -a %s -d %q\n", c.Name, c.Desc)
	}
	for _, c := range cmds {
		for _, f := range c.Flags {
			line := fmt.Sprintf("complete -c hackmd -n '__fish_seen_subcommand_from %s' -l %s", c.Name, f.Long)
			if f.Short != "" {
				line += " -s " + f.Short
			}
			if len(f.Values) > 0 {
				line += fmt.Sprintf(" -x -a %q", strings.Join(f.Values, " "))
			} else if !f.Bool {
				line += " -r"
			}
			b.WriteString(line + fmt.Sprintf(" -d %q\n", f.Desc))
		}
		if c.TakesFiles {
			fmt.Fprintf(&b, "complete -c hackmd -n '__fish_seen_subcommand_from %s' -k -a '(__fish_complete_suffix .md)'\n", c.Name)
		}
	}
	b.WriteString("complete -c hackmd -n '__fish_seen_subcommand_from completion' -a 'bash zsh fish powershell'\n")
	return b.String()
}

func powerShellScript(cmds []commandDef) string {
	var b strings.Builder
	b.WriteString("# powershell completion for hackmd\n")
	b.WriteString("Register-ArgumentCompleter -Native -CommandName hackmd -ScriptBlock {\n")
	b.WriteString("  param($wordToComplete, $commandAst, $cursorPosition)\n")
	b.WriteString("  $words = $commandAst.CommandElements | ForEach-Object { $_.ToString() }\n")
	b.WriteString("  $flags = @{\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "    '%s' = @(", c.Name)
		for i, f := range c.Flags {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "'--%s'", f.Long)
		}
		b.WriteString(")\n")
	}
	b.WriteString("  }\n")
	b.WriteString("  if ($words.Count -le 2 -and -not $flags.ContainsKey($words[-1])) {\n")
	b.WriteString("    $candidates = $flags.Keys\n  } else {\n    $candidates = $flags[$words[1]]\n  }\n")
	b.WriteString("  $candidates | Where-Object { $_ -like \"$wordToComplete*\" } | Sort-Object | ForEach-Object {\n")
	b.WriteString("    [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)\n  }\n}\n")
	return b.String()
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	return GenerateCompletion(env.Stdout, Shell(args[0]))
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: hackmd completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the given shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w, "  powershell  PowerShell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:        eval \"$(hackmd completion bash)\"")
	fmt.Fprintln(w, "  Zsh:         eval \"$(hackmd completion zsh)\"")
	fmt.Fprintln(w, "  Fish:        hackmd completion fish > ~/.config/fish/completions/hackmd.fish")
	fmt.Fprintln(w, "  PowerShell:  hackmd completion powershell | Out-String | Invoke-Expression")
}
