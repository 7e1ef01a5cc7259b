// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the conversion pipeline over HTTP: an upload page,
// batch conversion, session results and downloads, plus the engine contract
// endpoint so one doc2md instance can act as another's remote engine.
package server

import (
	"context"
	_ "embed"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/pdiddy/doc2md/internal/convert"
	"github.com/pdiddy/doc2md/internal/history"
	"github.com/pdiddy/doc2md/internal/pipeline"
	"github.com/pdiddy/doc2md/internal/session"
	"github.com/pdiddy/doc2md/pkg/types"
)

const (
	// DefaultAddr is the listen address when ServeConfig.Addr is empty.
	DefaultAddr = ":8080"
	// DefaultMaxUploadBytes bounds request bodies when the config is unset.
	DefaultMaxUploadBytes = 64 << 20

	shutdownTimeout = 10 * time.Second
)

//go:embed index.html
var indexHTML []byte

// Server holds one process-lifetime conversion session and its HTTP surface.
type Server struct {
	cfg    types.ServeConfig
	engine convert.Engine
	ledger *session.Ledger
	runner *pipeline.Runner
}

// New builds a Server around eng. The history store may be nil.
func New(cfg types.ServeConfig, eng convert.Engine, hist *history.Store) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	ledger := session.NewLedger()
	return &Server{
		cfg:    cfg,
		engine: eng,
		ledger: ledger,
		runner: &pipeline.Runner{
			Engine:   eng,
			Ledger:   ledger,
			History:  hist,
			Parallel: cfg.Parallel,
		},
	}
}

// Handler mounts the routes behind the logging and recovery middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.index)
	mux.HandleFunc("/convert", s.convert)
	mux.HandleFunc("/results", s.results)
	mux.HandleFunc("/download/", s.download)
	mux.HandleFunc("/engine/convert", s.engineConvert)
	return WithRecover(LogMiddleware(mux))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			slog.String("addr", srv.Addr),
			slog.String("engine", s.engine.Name()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", slog.String("error", err.Error()))
		return err
	}

	slog.Info("server stopped")
	return nil
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}
