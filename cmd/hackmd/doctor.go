package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	jsoniter "github.com/json-iterator/go"
	flag "github.com/spf13/pflag"
)

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult is what doctor found. Only configuration and temp directory
// problems are errors: render works without Chrome and serve can be given
// another address.
type doctorResult struct {
	Status   string     `json:"status"`
	Chrome   chromeInfo `json:"chrome"`
	Config   configInfo `json:"config"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

type configInfo struct {
	Valid    bool   `json:"valid"`
	BaseURL  string `json:"base_url,omitempty"`
	Addr     string `json:"addr,omitempty"`
	AddrFree bool   `json:"addr_free"`
}

type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

type systemInfo struct {
	TempDir      string `json:"temp_dir"`
	TempWritable bool   `json:"temp_writable"`
}

func (r *doctorResult) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *doctorResult) fail(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// runDoctorCmd runs every check and returns ExitGeneral when one failed.
func runDoctorCmd(args []string, env *Environment) int {
	f := &doctorFlags{}
	if err := buildDoctorFlagSet(env.Stderr, f).Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitUsage
	}

	r := runDoctor(f.config, env)
	if f.json {
		enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(r)
	} else {
		printDoctorResult(env.Stdout, r)
	}

	if r.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

func runDoctor(configName string, env *Environment) *doctorResult {
	r := &doctorResult{
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  os.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: os.Getenv("ROD_BROWSER_BIN"),
		},
	}

	checkConfig(r, configName, env)
	checkChrome(r)
	checkEnvironment(r)
	checkSystem(r)

	switch {
	case len(r.Errors) > 0:
		r.Status = statusErrors
	case len(r.Warnings) > 0:
		r.Status = statusWarnings
	default:
		r.Status = statusReady
	}
	return r
}

// checkConfig loads the configuration the other commands would use and
// probes the serve address.
func checkConfig(r *doctorResult, name string, env *Environment) {
	cfg, err := loadConfig(commonFlags{config: name}, pipelineFlags{})
	if err != nil {
		r.fail("Config: %v", err)
		return
	}
	r.Config = configInfo{Valid: true, BaseURL: cfg.Backend.BaseURL, Addr: cfg.Server.Addr}

	ln, err := env.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		r.warn("serve cannot listen on %s: %v", cfg.Server.Addr, err)
		return
	}
	_ = ln.Close()
	r.Config.AddrFree = true
}

// checkChrome looks for the browser export prints with.
func checkChrome(r *doctorResult) {
	path := r.Env.BrowserBin
	if path == "" {
		var found bool
		if path, found = launcher.LookPath(); !found {
			r.warn("Chrome/Chromium not found; export will download one, or set ROD_BROWSER_BIN")
			return
		}
	}
	if _, err := os.Stat(path); err != nil {
		r.fail("Chrome not found at %s", path)
		return
	}

	r.Chrome = chromeInfo{Found: true, Path: path, Sandbox: r.Env.NoSandbox != "1"}
	out, err := exec.Command(path, "--version").Output() // #nosec G204 -- browser path from env or rod lookup
	if err != nil {
		r.warn("Could not get Chrome version: %v", err)
		return
	}
	r.Chrome.Version = strings.TrimSpace(string(out))
}

func checkEnvironment(r *doctorResult) {
	r.Env.Container, r.Env.ContainerHint = isContainer()
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if os.Getenv(v) != "" {
			r.Env.CI = true
			break
		}
	}
	if (r.Env.Container || r.Env.CI) && r.Env.NoSandbox != "1" {
		r.warn("container or CI detected without ROD_NO_SANDBOX=1; export may fail to start Chrome")
	}
}

// isContainer reports whether a container was detected and by which signal.
func isContainer() (bool, string) {
	if os.Getenv("HACKMD_CONTAINER") == "1" {
		return true, "HACKMD_CONTAINER=1"
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the temp directory export writes pages to.
func checkSystem(r *doctorResult) {
	r.System.TempDir = os.TempDir()
	f, err := os.CreateTemp("", "hackmd-doctor-*")
	if err != nil {
		r.fail("Temp directory %s not writable", r.System.TempDir)
		return
	}
	_ = f.Close()
	_ = os.Remove(f.Name())
	r.System.TempWritable = true
}

// reportLine is one tagged line of the human-readable report.
type reportLine struct {
	tag  string // OK, WARN or ERROR
	text string
}

func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "hackmd doctor")

	var cfg []reportLine
	if r.Config.Valid {
		cfg = append(cfg, reportLine{"OK", "Backend: " + r.Config.BaseURL})
		if r.Config.AddrFree {
			cfg = append(cfg, reportLine{"OK", "Listen: " + r.Config.Addr})
		} else {
			cfg = append(cfg, reportLine{"WARN", "Listen: " + r.Config.Addr + " unavailable"})
		}
	} else {
		cfg = append(cfg, reportLine{"ERROR", "Invalid"})
	}
	printSection(w, "Configuration", cfg)

	var chrome []reportLine
	if r.Chrome.Found {
		chrome = append(chrome, reportLine{"OK", "Found at " + r.Chrome.Path})
		if r.Chrome.Version != "" {
			chrome = append(chrome, reportLine{"OK", "Version: " + r.Chrome.Version})
		}
		sandbox := "Sandbox: enabled"
		if !r.Chrome.Sandbox {
			sandbox = "Sandbox: disabled (ROD_NO_SANDBOX=1)"
		}
		chrome = append(chrome, reportLine{"OK", sandbox})
	} else {
		chrome = append(chrome, reportLine{"WARN", "Not found (needed by export only)"})
	}
	printSection(w, "Chrome/Chromium", chrome)

	envLines := []reportLine{{"OK", "Platform: " + r.Env.OS + "/" + r.Env.Arch}}
	if r.Env.Container {
		envLines = append(envLines, reportLine{"OK", "Container: detected (" + r.Env.ContainerHint + ")"})
	}
	if r.Env.CI {
		envLines = append(envLines, reportLine{"OK", "CI: detected"})
	}
	printSection(w, "Environment", envLines)

	if r.System.TempWritable {
		printSection(w, "System", []reportLine{{"OK", "Temp directory: writable"}})
	} else {
		printSection(w, "System", []reportLine{{"ERROR", "Temp directory: not writable"}})
	}

	if len(r.Warnings) > 0 {
		printSection(w, "Warnings:", tagAll("WARN", r.Warnings))
	}
	if len(r.Errors) > 0 {
		printSection(w, "Errors:", tagAll("ERROR", r.Errors))
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	default:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}

func printSection(w io.Writer, title string, lines []reportLine) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, title)
	for _, l := range lines {
		fmt.Fprintf(w, "  [%s] %s\n", l.tag, l.text)
	}
}

func tagAll(tag string, texts []string) []reportLine {
	lines := make([]reportLine, len(texts))
	for i, t := range texts {
		lines[i] = reportLine{tag, t}
	}
	return lines
}
