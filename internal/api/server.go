// Package api serves the lectionary engine over HTTP: one-off citation
// normalization, verse enumeration and day matching, plus asynchronous batch
// builds whose progress is streamed over a websocket.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/FocuswithJustin/JuniperLectionary/core/calendar"
	"github.com/FocuswithJustin/JuniperLectionary/core/citation"
	"github.com/FocuswithJustin/JuniperLectionary/core/lectionary"
	"github.com/FocuswithJustin/JuniperLectionary/core/normalize"
	"github.com/FocuswithJustin/JuniperLectionary/core/versification"
	"github.com/FocuswithJustin/JuniperLectionary/internal/cache"
	"github.com/FocuswithJustin/JuniperLectionary/internal/logging"
	"github.com/FocuswithJustin/JuniperLectionary/internal/server"
)

// BatchSaver persists finished batches. *store.Store implements it.
type BatchSaver interface {
	SaveBatch(ctx context.Context, b *lectionary.Batch) error
}

// Enumerations are memoized per cleaned citation.
const (
	versesCacheSize = 1024
	versesCacheTTL  = 30 * time.Minute
)

// Server holds the engine components behind the HTTP handlers.
type Server struct {
	cfg        Config
	cors       server.CORSConfig
	table      *versification.Table
	parser     *citation.Parser
	normalizer *normalize.Normalizer
	matcher    *calendar.Matcher
	builder    *lectionary.Builder
	batches    BatchSaver
	verses     *cache.TTLCache[string, VersesResult]

	jobs    *JobStore
	hub     *Hub
	started time.Time

	startOnce sync.Once
	ctx       context.Context
}

// New returns a server for the given engine components. Call Start (or
// ListenAndServe) before serving websocket clients.
func New(cfg Config, table *versification.Table, n *normalize.Normalizer, m *calendar.Matcher) *Server {
	if cfg.MaxBodyBytes == 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Server{
		cfg:        cfg,
		cors:       server.CORSConfig{AllowedOrigins: cfg.AllowedOrigins},
		table:      table,
		parser:     citation.NewParser(table),
		normalizer: n,
		matcher:    m,
		builder:    lectionary.NewBuilder(n, m),
		verses:     cache.New[string, VersesResult](versesCacheSize, versesCacheTTL),
		jobs:       NewJobStore(),
		hub:        NewHub(),
		started:    time.Now(),
		ctx:        context.Background(),
	}
}

// WithStore makes finished jobs persist their batch through b.
func (s *Server) WithStore(b BatchSaver) *Server {
	s.batches = b
	return s
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Jobs returns the job store.
func (s *Server) Jobs() *JobStore {
	return s.jobs
}

// Start runs the websocket hub until ctx is done. Jobs started afterwards
// are cancelled with ctx. Only the first call has any effect.
func (s *Server) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		s.ctx = ctx
		go s.hub.Run(ctx)
	})
}

func (s *Server) baseContext() context.Context {
	return s.ctx
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/normalize", s.handleNormalize)
	mux.HandleFunc("/verses", s.handleVerses)
	mux.HandleFunc("/match", s.handleMatch)
	mux.HandleFunc("/jobs", s.handleJobs)
	mux.HandleFunc("/jobs/", s.handleJobByID)
	mux.HandleFunc("/ws", s.handleWebSocket)

	var handler http.Handler = server.SecurityHeaders(mux)
	handler = server.MaxBody(s.cfg.MaxBodyBytes, handler)
	handler = AuthMiddleware(s.cfg.Auth, handler)
	handler = server.CORSMiddleware(s.cors, handler)
	return logging.CombinedMiddleware(handler)
}

// ListenAndServe serves on the configured port until ctx is done, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if err := s.cfg.Auth.Validate(); err != nil {
		return fmt.Errorf("authentication configuration error: %w", err)
	}
	s.Start(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(logging.GetLogger().Handler(), slog.LevelError),
	}

	logging.ServerStartup("api", "http", s.cfg.Port,
		"translation", string(s.table.ID()),
		"catalogue_entries", s.matcher.Catalogue().Len(),
		"auth_enabled", s.cfg.Auth.Enabled)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logging.Info("server_shutdown", "reason", context.Cause(ctx))
		return srv.Shutdown(shutdownCtx)
	}
}
