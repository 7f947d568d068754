package main

import (
	"io"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/alnah/go-hackmd/internal/export"
)

// pdfPrinter is the browser the export paths print with.
type pdfPrinter interface {
	export.PDFRenderer
	Close() error
}

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now    func() time.Time
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Listen opens the serve listener.
	Listen func(network, addr string) (net.Listener, error)
	// NewPrinter creates the browser used by export and serve. It must not
	// start the browser before the first PDF is requested.
	NewPrinter func(timeout time.Duration, logger *slog.Logger) pdfPrinter
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:    time.Now,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Listen: net.Listen,
		NewPrinter: func(timeout time.Duration, logger *slog.Logger) pdfPrinter {
			return export.NewRodRenderer(export.WithTimeout(timeout), export.WithRodLogger(logger))
		},
	}
}
