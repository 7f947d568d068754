package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-hackmd/internal/config"
	"github.com/alnah/go-hackmd/internal/docstore"
	"github.com/alnah/go-hackmd/internal/export"
	"github.com/alnah/go-hackmd/internal/proxy"
)

// Server timeouts.
const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

// runServe runs the backend until ctx is canceled, then drains in-flight
// requests.
func runServe(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return flagError(err)
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: %v", ErrTooManyArgs, positional)
	}

	cfg, err := loadConfig(f.common, f.pipeline, func(c *config.Config) {
		if f.addr != "" {
			c.Server.Addr = f.addr
		}
	})
	if err != nil {
		return err
	}

	logger := newLogger(f.common, env.Stderr)
	metrics := proxy.NewMetrics()
	renderer := newRenderer(cfg, env, logger, metrics.ObserveRemote)

	printer := env.NewPrinter(cfg.Export.Timeout.Value(), logger)
	defer func() { _ = printer.Close() }()

	srv := proxy.NewServer(
		proxy.WithLogger(logger),
		proxy.WithMetrics(metrics),
		proxy.WithStore(docstore.New()),
		proxy.WithRenderer(renderer),
		proxy.WithExporter(export.NewExporter(
			renderer,
			printer,
			export.WithBaseURL(cfg.Backend.BaseURL),
			export.WithPage(cfg.Export.PageSize, cfg.Export.Margin),
			export.WithLogger(logger),
		)),
		proxy.WithFetcher(proxy.NewFetcher(
			proxy.WithFetchTimeout(cfg.Fetch.PDFTimeout.Value()),
			proxy.WithMaxBytes(cfg.Fetch.PDFMaxBytes),
			proxy.WithFetchUserAgent(cfg.Fetch.UserAgent),
			proxy.WithFetchLogger(logger),
		)),
	)

	ln, err := env.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("%w on %s: %v", ErrListen, cfg.Server.Addr, err)
	}

	hs := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := hs.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return hs.Shutdown(sctx)
	})

	logger.Info("listening", "addr", ln.Addr().String(), "base_url", cfg.Backend.BaseURL)
	return g.Wait()
}
