package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-hackmd/internal/fileutil"
	"github.com/alnah/go-hackmd/internal/process"
)

// Sentinel errors for PDF rendering failures.
var (
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
)

// DefaultTimeout bounds page load when ctx carries no deadline.
const DefaultTimeout = 30 * time.Second

// PDFRenderer prints an HTML document to PDF.
type PDFRenderer interface {
	PDF(ctx context.Context, html string) ([]byte, error)
}

// Compile-time interface check.
var _ PDFRenderer = (*RodRenderer)(nil)

// RodRenderer prints HTML with headless Chrome driven by go-rod.
// The browser starts on first use and is shared by concurrent calls.
// Rod downloads Chromium on first run if none is found.
type RodRenderer struct {
	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	timeout  time.Duration
	logger   *slog.Logger
}

// RodOption configures a RodRenderer.
type RodOption func(*RodRenderer)

// WithTimeout sets the page load timeout. Panics if d is not positive.
func WithTimeout(d time.Duration) RodOption {
	if d <= 0 {
		panic("export: WithTimeout requires a positive duration")
	}
	return func(r *RodRenderer) {
		r.timeout = d
	}
}

// WithRodLogger sets the logger. Panics if l is nil.
func WithRodLogger(l *slog.Logger) RodOption {
	if l == nil {
		panic("export: WithRodLogger requires a non-nil logger")
	}
	return func(r *RodRenderer) {
		r.logger = l
	}
}

// NewRodRenderer creates a RodRenderer. No browser is started yet.
func NewRodRenderer(opts ...RodOption) *RodRenderer {
	r := &RodRenderer{
		timeout: DefaultTimeout,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ensureBrowser lazily launches and connects to the browser.
// Callers hold r.mu.
func (r *RodRenderer) ensureBrowser() (*rod.Browser, error) {
	if r.browser != nil {
		return r.browser, nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	r.logger.Debug("browser started", "pid", l.PID())
	r.launcher, r.browser = l, browser
	return browser, nil
}

// Close shuts the browser down and kills its process tree.
func (r *RodRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	if r.launcher != nil {
		process.KillProcessGroup(r.launcher.PID())
		r.launcher.Kill()
	}
	r.browser, r.launcher = nil, nil
	return err
}

// PDF loads html from a temporary file and prints it. Page size and margins
// come from the document's @page rule.
func (r *RodRenderer) PDF(ctx context.Context, html string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	browser, err := r.ensureBrowser()
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(html, "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	page, err := browser.Page(proto.TargetCreateTarget{URL: "file://" + tmpPath})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()

	// Wait for page to load with timeout from context or default
	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	if err := page.Context(ctx).Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	// Check context after page load
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := page.Context(ctx).PDF(&proto.PagePrintToPDF{
		PrintBackground:   true,
		PreferCSSPageSize: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return pdf, nil
}
