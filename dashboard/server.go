// Package dashboard is a read-only status server exposing crawl counters
// and queue depth over plain HTTP.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/meshhq/ghcrawler/processor"
)

// QueueDepther reports the current backlog per priority lane. Only backends
// with a cheap local depth count (queue.MemoryQueue) implement it; message-
// bus backends (Kafka, SQS) leave depth reporting to their own consumer-lag
// tooling, so this is optional.
type QueueDepther interface {
	Depths() map[processor.Priority]int
}

// Server is a chi-routed read-only status server.
type Server struct {
	addr   string
	logger *slog.Logger
	stats  *Stats
	depths QueueDepther
	router *chi.Mux
	http   *http.Server
}

// NewServer builds a Server that reports stats over HTTP at addr. depths
// may be nil if the queue backend in use has no cheap depth count.
func NewServer(logger *slog.Logger, addr string, stats *Stats, depths QueueDepther) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if stats == nil {
		stats = NewStats()
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	s := &Server{addr: addr, logger: logger, stats: stats, depths: depths, router: r}
	r.Get("/healthz", s.handleHealthz)
	r.Get("/stats", s.handleStats)
	return s
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type statsPayload struct {
	Snapshot
	QueueDepths map[processor.Priority]int `json:"queueDepths,omitempty"`
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	payload := statsPayload{Snapshot: s.stats.Snapshot()}
	if s.depths != nil {
		payload.QueueDepths = s.depths.Depths()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode stats", "error", err)
	}
}

// Start runs the HTTP server until ctx is canceled or ListenAndServe fails.
func (s *Server) Start(ctx context.Context) error {
	s.http = &http.Server{Addr: s.addr, Handler: s.router}

	s.logger.Info("starting dashboard", "addr", s.addr)
	errCh := make(chan error, 1)
	go func() { errCh <- s.http.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return s.Stop(context.Background())
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("dashboard server: %w", err)
		}
		return nil
	}
}

// Stop shuts the HTTP server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	s.logger.Info("stopping dashboard")
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("dashboard server: shutdown: %w", err)
	}
	return nil
}
