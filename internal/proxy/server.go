// Package proxy serves the backend half of the pipeline: the pages that
// embed iframes load, the PDF fetch proxy, the export endpoint and a small
// document API.
package proxy

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	jsoniter "github.com/json-iterator/go"
	"github.com/klauspost/compress/gzhttp"

	"github.com/alnah/go-hackmd/internal/docstore"
	"github.com/alnah/go-hackmd/internal/fencedblock"
)

const maxBodyBytes = 5 << 20

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Renderer runs the Markdown extension pipeline.
type Renderer interface {
	RenderInteractive(ctx context.Context, text string) (string, error)
	RenderExport(ctx context.Context, text string) (string, error)
}

// Exporter turns a document into a PDF file.
type Exporter interface {
	Export(ctx context.Context, docID, markdown string) (filename string, pdf []byte, err error)
}

// Server routes backend requests. Build one with NewServer.
type Server struct {
	logger   *slog.Logger
	fetcher  *Fetcher
	metrics  *Metrics
	renderer Renderer
	exporter Exporter
	store    *docstore.Store
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Panics if l is nil.
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic("proxy: WithLogger requires a non-nil logger")
	}
	return func(s *Server) {
		s.logger = l
	}
}

// WithFetcher sets the PDF fetcher. Panics if f is nil.
func WithFetcher(f *Fetcher) Option {
	if f == nil {
		panic("proxy: WithFetcher requires a non-nil fetcher")
	}
	return func(s *Server) {
		s.fetcher = f
	}
}

// WithMetrics sets the metrics collector. Panics if m is nil.
func WithMetrics(m *Metrics) Option {
	if m == nil {
		panic("proxy: WithMetrics requires non-nil metrics")
	}
	return func(s *Server) {
		s.metrics = m
	}
}

// WithRenderer enables the /api render routes.
func WithRenderer(r Renderer) Option {
	return func(s *Server) {
		s.renderer = r
	}
}

// WithExporter enables /__export/pdf.
func WithExporter(e Exporter) Option {
	return func(s *Server) {
		s.exporter = e
	}
}

// WithStore sets the document store. Panics if st is nil.
func WithStore(st *docstore.Store) Option {
	if st == nil {
		panic("proxy: WithStore requires a non-nil store")
	}
	return func(s *Server) {
		s.store = st
	}
}

// NewServer creates a Server. Without a renderer the render routes answer
// 503; without an exporter so does the export route.
func NewServer(opts ...Option) *Server {
	s := &Server{
		logger: slog.New(slog.DiscardHandler),
		store:  docstore.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fetcher == nil {
		s.fetcher = NewFetcher(WithFetchLogger(s.logger))
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	return s
}

// Handler returns the routed, gzip-compressed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeText(w, http.StatusOK, "text/plain", "ok")
	})
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/__embed", func(r chi.Router) {
		r.Get("/gist", s.handleGist)
		r.Get("/pdf", s.handlePDF)
		r.Get("/{kind}", s.handleDiagram)
	})
	r.Get("/__export/pdf", s.handleExport)

	r.Route("/api", func(r chi.Router) {
		r.Post("/render", s.handleRender)
		r.Post("/docs", s.handleCreateDoc)
		r.Get("/docs", s.handleListDocs)
		r.Put("/docs/{id}", s.handlePutDoc)
		r.Get("/docs/{id}", s.handleGetDoc)
		r.Get("/docs/{id}/render", s.handleRenderDoc)
	})

	return gzhttp.GzipHandler(r)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func writeText(w http.ResponseWriter, status int, contentType, body string) {
	w.Header().Set("Content-Type", contentType+"; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func writeHTML(w http.ResponseWriter, page string) {
	writeText(w, http.StatusOK, "text/html", page)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// code reads diagram source from the query. b64 wins over code; a b64
// value that does not decode to UTF-8 yields an empty string.
func code(r *http.Request) string {
	q := r.URL.Query()
	if b64 := strings.TrimSpace(q.Get("b64")); b64 != "" {
		s, err := fencedblock.DecodeCode(b64)
		if err != nil || !utf8.ValidString(s) {
			return ""
		}
		return s
	}
	return strings.TrimSpace(q.Get("code"))
}

func (s *Server) handleGist(w http.ResponseWriter, r *http.Request) {
	s.metrics.ObserveRequest("gist", "ok")
	writeHTML(w, GistPage(r.URL.Query().Get("url")))
}

func (s *Server) handleDiagram(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	page, ok := DiagramPage(kind, code(r))
	if !ok {
		http.NotFound(w, r)
		return
	}
	s.metrics.ObserveRequest(kind, "ok")
	writeHTML(w, page)
}

func (s *Server) handlePDF(w http.ResponseWriter, r *http.Request) {
	data, err := s.fetcher.Fetch(r.Context(), r.URL.Query().Get("url"))
	if err != nil {
		s.logger.Debug("pdf proxy failed", "error", err)
		s.metrics.ObserveRequest("pdf", outcome(err))
		writeHTML(w, Message(Placeholder(err)))
		return
	}

	s.metrics.ObserveRequest("pdf", "ok")
	s.metrics.ObservePDF(len(data))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline")
	_, _ = w.Write(data)
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrBlockedHost), errors.Is(err, ErrBlockedPort):
		return "blocked"
	case errors.Is(err, ErrInvalidURL):
		return "invalid"
	case errors.Is(err, ErrTooLarge):
		return "too_large"
	case errors.Is(err, ErrNotPDF):
		return "not_pdf"
	default:
		return "error"
	}
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	docID := strings.TrimSpace(r.URL.Query().Get("doc_id"))
	if docID == "" {
		s.metrics.ObserveRequest("export", "invalid")
		writeText(w, http.StatusBadRequest, "text/plain", "Missing doc_id")
		return
	}
	doc, err := s.store.Get(docID)
	if err != nil {
		s.metrics.ObserveRequest("export", "not_found")
		writeText(w, http.StatusNotFound, "text/plain", "Document not found")
		return
	}
	if s.exporter == nil {
		writeText(w, http.StatusServiceUnavailable, "text/plain", "Export unavailable")
		return
	}

	filename, pdf, err := s.exporter.Export(r.Context(), doc.ID, doc.Markdown)
	if err != nil {
		s.logger.Error("export failed", "doc_id", doc.ID, "error", err)
		s.metrics.ObserveRequest("export", "error")
		writeText(w, http.StatusInternalServerError, "text/plain", "Failed to export PDF")
		return
	}

	s.metrics.ObserveRequest("export", "ok")
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`.pdf"`)
	_, _ = w.Write(pdf)
}

func readBody(w http.ResponseWriter, r *http.Request) (string, bool) {
	b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeText(w, http.StatusRequestEntityTooLarge, "text/plain", "Body too large")
		return "", false
	}
	return string(b), true
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, text string) {
	if s.renderer == nil {
		writeText(w, http.StatusServiceUnavailable, "text/plain", "Rendering unavailable")
		return
	}

	var (
		out string
		err error
	)
	switch mode := r.URL.Query().Get("mode"); mode {
	case "", "interactive":
		out, err = s.renderer.RenderInteractive(r.Context(), text)
	case "export":
		out, err = s.renderer.RenderExport(r.Context(), text)
	default:
		writeText(w, http.StatusBadRequest, "text/plain", "Unknown mode "+mode)
		return
	}
	if err != nil {
		s.metrics.ObserveRequest("render", "error")
		writeText(w, http.StatusServiceUnavailable, "text/plain", err.Error())
		return
	}
	s.metrics.ObserveRequest("render", "ok")
	writeText(w, http.StatusOK, "text/markdown", out)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	text, ok := readBody(w, r)
	if !ok {
		return
	}
	s.render(w, r, text)
}

type docResponse struct {
	ID       string    `json:"id"`
	Markdown string    `json:"markdown,omitempty"`
	Created  time.Time `json:"created"`
	Updated  time.Time `json:"updated"`
}

func toResponse(d docstore.Doc, withBody bool) docResponse {
	resp := docResponse{ID: d.ID, Created: d.Created, Updated: d.Updated}
	if withBody {
		resp.Markdown = d.Markdown
	}
	return resp
}

func (s *Server) handleCreateDoc(w http.ResponseWriter, r *http.Request) {
	text, ok := readBody(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, toResponse(s.store.Create(text), false))
}

func (s *Server) handleListDocs(w http.ResponseWriter, _ *http.Request) {
	docs := s.store.List()
	out := make([]docResponse, len(docs))
	for i, d := range docs {
		out[i] = toResponse(d, false)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePutDoc(w http.ResponseWriter, r *http.Request) {
	text, ok := readBody(w, r)
	if !ok {
		return
	}
	d, err := s.store.Put(chi.URLParam(r, "id"), text)
	if err != nil {
		writeText(w, http.StatusBadRequest, "text/plain", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toResponse(d, false))
}

func (s *Server) handleGetDoc(w http.ResponseWriter, r *http.Request) {
	d, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeText(w, http.StatusNotFound, "text/plain", "Document not found")
		return
	}
	writeJSON(w, http.StatusOK, toResponse(d, true))
}

func (s *Server) handleRenderDoc(w http.ResponseWriter, r *http.Request) {
	d, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeText(w, http.StatusNotFound, "text/plain", "Document not found")
		return
	}
	s.render(w, r, d.Markdown)
}
