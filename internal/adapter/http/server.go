package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bnema/segbench/internal/adapter/http/middleware"
	"github.com/bnema/segbench/internal/infrastructure/logger"
	"github.com/bnema/segbench/internal/service"
)

// Server exposes run history, live progress and metrics over HTTP.
type Server struct {
	mux        *http.ServeMux
	handlers   *Handlers
	sseHandler *SSEHandler
	metrics    http.Handler
}

// NewServer wires the routes. metrics may be nil to leave /metrics unregistered.
func NewServer(runs RunReader, eventBus *service.EventBus, metrics http.Handler) *Server {
	s := &Server{
		mux:        http.NewServeMux(),
		handlers:   NewHandlers(runs),
		sseHandler: NewSSEHandler(eventBus, runs),
		metrics:    metrics,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /{$}", s.handlers.Dashboard())
	s.mux.HandleFunc("GET /runs/{id}", s.handlers.RunInfo())
	s.mux.HandleFunc("GET /events/{id}", s.sseHandler.Events())
	s.mux.HandleFunc("GET /healthz", s.handlers.Health())
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics)
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	middleware.SecurityHeaders(s.mux).ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info.Printf("status server listening on %s", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error.Printf("http shutdown error: %v", err)
			return err
		}
		return nil
	}
}
