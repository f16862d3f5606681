// Package serve hosts the local HTTP API that page-capture clients and
// the chat UI talk to.
package serve

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/spendguard/spendguard/models"
	"github.com/spendguard/spendguard/pkg/assistant"
	"github.com/spendguard/spendguard/pkg/db"
	"github.com/spendguard/spendguard/pkg/extractor"
	"github.com/spendguard/spendguard/pkg/fetcher"
	"github.com/spendguard/spendguard/pkg/pipeline"
	"github.com/spendguard/spendguard/pkg/warning"
)

// Server bundles the analysis pipeline, the snapshot store, and the chat
// orchestrator behind a chi router. The warning session is shared across
// requests so dismissals stick for as long as the client stays on the
// same page; navigation to a new URL starts a fresh session.
type Server struct {
	cfg      *models.Config
	store    *db.DB
	pipeline *pipeline.Pipeline
	session  *warning.Session
	fetcher  *fetcher.Fetcher
	chat     *assistant.Orchestrator
	logger   *slog.Logger

	mu      sync.Mutex
	lastURL string
}

// NewServer wires a Server from config. The chat orchestrator is optional:
// without an API key the chat endpoints return errors but analysis still
// works.
func NewServer(cfg *models.Config, store *db.DB, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	engine := warning.NewEngine(cfg.AllowedHosts)
	s := &Server{
		cfg:      cfg,
		store:    store,
		pipeline: pipeline.New(extractor.New(), engine, store, logger),
		session:  warning.NewSession(),
		fetcher:  fetcher.NewFetcher(),
		logger:   logger,
	}

	chat, err := assistant.New(cfg, store, logger)
	if err != nil {
		if errors.Is(err, assistant.ErrMissingAPIKey) {
			logger.Warn("chat disabled", "reason", "OPENAI_API_KEY not set")
		} else {
			logger.Warn("chat disabled", "error", err)
		}
	} else {
		s.chat = chat
	}
	return s
}

// Router builds the chi router with all API routes mounted.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(s.requestLogger)

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/context", s.handleContext)
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/warnings/dismiss", s.handleDismiss)
		r.Post("/handoff", s.handleSetHandoff)
		r.Get("/handoff", s.handleTakeHandoff)
		r.Post("/chat", s.handleChat)
		r.Get("/conversations", s.handleListConversations)
		r.Get("/conversations/{id}", s.handleGetConversation)
		r.Delete("/conversations/{id}", s.handleDeleteConversation)
	})
	return r
}

// ListenAndServe blocks until ctx is cancelled, then shuts the server
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).String())
	})
}
