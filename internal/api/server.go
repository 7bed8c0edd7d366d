// Package api serves the phonemiser over HTTP and WebSocket.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/FocuswithJustin/hindilts/core/cache"
	"github.com/FocuswithJustin/hindilts/internal/logging"
)

// Phonemiser converts one word to a phone string.
type Phonemiser interface {
	Phonemise(word string) (string, error)
}

// statsProvider is implemented by caching phonemisers.
type statsProvider interface {
	Stats() cache.Stats
}

// LexiconInfo describes the table the server transcribes with.
type LexiconInfo struct {
	Source      string `json:"source"`
	Entries     int    `json:"entries"`
	Fingerprint string `json:"fingerprint"`
}

// Config holds server configuration.
type Config struct {
	Port              int
	AllowedOrigins    []string // CORS and WebSocket origins; empty allows all
	RateLimitRequests int      // requests per minute per client, 0 disables
	RateLimitBurst    int
	Workers           int // per-job worker pool size
	Version           string
}

// Server is the HTTP front end.
type Server struct {
	cfg        Config
	phonemiser Phonemiser
	lexicon    LexiconInfo
	jobs       *JobStore
	hub        *Hub
	started    time.Time
}

// New creates a server. Call Handler for an http.Handler or Serve to
// listen.
func New(cfg Config, p Phonemiser, lexicon LexiconInfo) *Server {
	s := &Server{
		cfg:        cfg,
		phonemiser: p,
		lexicon:    lexicon,
		hub:        NewHub(),
		started:    time.Now(),
	}
	s.jobs = NewJobStore(p, cfg.Workers, s.hub)
	return s
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the full middleware chain around the routes.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.routes()
	handler = securityHeaders(handler)

	if s.cfg.RateLimitRequests > 0 {
		burst := s.cfg.RateLimitBurst
		if burst == 0 {
			burst = 10
		}
		handler = NewRateLimiter(RateLimiterConfig{
			RequestsPerMinute: s.cfg.RateLimitRequests,
			BurstSize:         burst,
		}).Middleware(handler)
	}

	handler = corsMiddleware(s.cfg.AllowedOrigins, handler)
	return logging.CombinedMiddleware(handler)
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/phonemise", s.handlePhonemise)
	mux.HandleFunc("/jobs", s.handleJobs)
	mux.HandleFunc("/jobs/", s.handleJobByID)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

// Serve listens on the configured port until ctx is done, then shuts
// down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.cfg.Port, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener is Serve on an existing listener.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go s.hub.Run(hubCtx)

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	port := s.cfg.Port
	if addr, ok := ln.Addr().(*net.TCPAddr); ok {
		port = addr.Port
	}
	logging.ServerStartup("phonemiser", "http", port,
		"websocket_protocol", "ws",
		"lexicon", s.lexicon.Source,
		"allowed_origins", len(s.cfg.AllowedOrigins))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.jobs.CancelAll()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
