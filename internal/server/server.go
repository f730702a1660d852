// Package server hosts the overlay files over HTTP for OBS browser
// sources, with a websocket channel that nudges pages to refresh.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/combokit/combotracker/internal/logging"
)

// Config holds server configuration.
type Config struct {
	Port int
	Dir  string // directory containing overlay.html, overlay_data.json, emotes/
}

// WSPath is where overlay pages connect for push refreshes.
const WSPath = "/ws"

// Server serves the overlay directory.
type Server struct {
	cfg        Config
	hub        *Hub
	log        *zap.SugaredLogger
	router     chi.Router
	httpServer *http.Server
}

// New creates a Server over the given overlay directory.
func New(cfg Config, hub *Hub, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = logging.Nop()
	}
	s := &Server{cfg: cfg, hub: hub, log: log}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	// OBS browser sources load from file:// or odd origins; the data
	// is local and read-only, so allow everything.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get(WSPath, s.hub.Handle)

	fileServer := http.FileServer(http.Dir(s.cfg.Dir))
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		// The page polls the JSON; stale caches defeat the point.
		if strings.HasSuffix(r.URL.Path, ".json") {
			w.Header().Set("Cache-Control", "no-store")
		}
		fileServer.ServeHTTP(w, r)
	})

	return r
}

// requestLogger logs requests at debug level through the injected
// logger instead of the process-wide one.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debugw("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub { return s.hub }

// URL returns the base URL the overlay is reachable at.
func (s *Server) URL() string {
	return fmt.Sprintf("http://localhost:%d", s.cfg.Port)
}

// Start begins listening on the configured port and blocks until the
// server stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Infow("overlay server listening", "addr", addr, "dir", s.cfg.Dir)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
