// Package hints turns common CLI failures into one-line suggestions.
// Each hint is formatted as "\n  hint: <text>" so it can be appended to an
// error message.
package hints

import (
	"os"
	"path/filepath"
	"strings"
)

// IsInContainer reports whether the process runs in a container.
// It is a variable so tests can replace it.
var IsInContainer = func() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return os.Getenv("container") != "" || os.Getenv("KUBERNETES_SERVICE_HOST") != ""
}

// inCI reports whether a CI runner is detected.
func inCI() bool {
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"} {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

// ForBrowserConnect suggests the browser environment variables that are
// not set yet. The sandbox hint only shows in CI or containers.
func ForBrowserConnect() string {
	var hints []string
	if (inCI() || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 in containers and CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use an installed Chrome")
	}
	return formatHints(hints)
}

// ForTimeout suggests raising the export timeout.
func ForTimeout() string {
	return format("large documents may need a longer --timeout (or export.timeout)")
}

// ForConfigNotFound suggests --config, or writing the defaults to the user
// config directory when it is known. An empty name means "hackmd".
func ForConfigNotFound(userConfigDir, name string) string {
	hint := "use --config /path/to/file.yaml"
	if userConfigDir != "" {
		if name == "" {
			name = "hackmd"
		}
		hint += " or run: hackmd config > " + filepath.Join(userConfigDir, "go-hackmd", name+".yaml")
	}
	return format(hint)
}

// ForOutputDirectory suggests checking the output location.
func ForOutputDirectory() string {
	return format("check the output directory exists and is writable")
}

// ForListen suggests another listen address.
func ForListen(addr string) string {
	if addr == "" {
		return format("pick a free address with --addr")
	}
	return format(addr + " may be in use; pick another with --addr")
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
