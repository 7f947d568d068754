package main

import (
	"context"
	"errors"
	"os"

	"github.com/alnah/go-hackmd"
	"github.com/alnah/go-hackmd/internal/config"
	"github.com/alnah/go-hackmd/internal/export"
	"github.com/alnah/go-hackmd/internal/hints"
)

// Exit codes for the hackmd CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Success
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or arguments
	ExitIO      = 3 // File or network I/O
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is, so callers must wrap with %w.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if isBrowserError(err) {
		return ExitBrowser
	}

	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadMarkdown) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrListen) {
		return ExitIO
	}

	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrTooManyArgs) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrUnsupportedShell) ||
		errors.Is(err, hackmd.ErrUnknownMode) ||
		errors.Is(err, export.ErrEmptyDocument) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidDuration) ||
		errors.Is(err, config.ErrInvalidBaseURL) ||
		errors.Is(err, config.ErrInvalidSize) ||
		errors.Is(err, config.ErrInvalidPage) {
		return ExitUsage
	}

	return ExitGeneral
}

func isBrowserError(err error) bool {
	return errors.Is(err, export.ErrBrowserConnect) ||
		errors.Is(err, export.ErrPageCreate) ||
		errors.Is(err, export.ErrPageLoad) ||
		errors.Is(err, export.ErrPDFGeneration)
}

// hintFor returns a suggestion to print after err, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, export.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		dir, _ := os.UserConfigDir()
		return hints.ForConfigNotFound(dir, "")
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	case errors.Is(err, ErrListen):
		return hints.ForListen("")
	}
	return ""
}
