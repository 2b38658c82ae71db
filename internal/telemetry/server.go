package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/abhisek/cascade/internal/logging"
)

// Server exposes /metrics over HTTP until its context is cancelled.
type Server struct {
	metrics *Metrics
	listen  string
	log     *slog.Logger

	mu   sync.Mutex
	addr string
}

// NewServer creates a metrics server bound to listen (host:port, port 0 picks
// a free one).
func NewServer(m *Metrics, listen string, log *slog.Logger) *Server {
	return &Server{metrics: m, listen: listen, log: logging.OrDiscard(log)}
}

// Addr returns the bound address once serving has started.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// ListenAndServe blocks until ctx is cancelled. A clean shutdown returns nil.
func (s *Server) ListenAndServe(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", s.metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	ln, err := net.Listen("tcp", s.listen)
	if err != nil {
		return fmt.Errorf("metrics listen %s: %w", s.listen, err)
	}
	s.mu.Lock()
	s.addr = ln.Addr().String()
	s.mu.Unlock()

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("metrics server listening", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
