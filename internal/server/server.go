// Package server provides the HTTP server for Mudra.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/store"
)

// Engine is what the server needs from the running app.
type Engine interface {
	api.Engine
	api.StarSource
	WithPositions(fn func(positions []float32, rotation float64))
}

// statusReporter is implemented by engines that run a detection pipeline.
type statusReporter interface {
	IsEnabled() bool
	IsRunning() bool
	LastError() string
}

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Engine    Engine
	Preview   capture.FrameSource
	// PointsFPS is the WebSocket particle broadcast rate.
	PointsFPS int
	// StreamFPS is the MJPEG preview rate.
	StreamFPS int
}

// Server represents the HTTP server for the Mudra application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	points *PointsHandler

	mu   sync.Mutex
	http *http.Server
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.PointsFPS <= 0 {
		config.PointsFPS = 30
	}
	if config.StreamFPS <= 0 {
		config.StreamFPS = 15
	}
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Engine != nil {
		control := api.NewControlHandler(s.config.Engine)
		s.mux.Handle("/api/state", control)
		s.mux.Handle("/api/shape", control)
		s.mux.Handle("/api/color", control)
		s.mux.Handle("/api/starfield", api.NewStarfieldHandler(s.config.Engine))

		s.points = NewPointsHandler(s.config.Engine, s.config.PointsFPS)
		s.mux.Handle("/api/points", s.points)
	}

	if s.config.Store != nil {
		var engine api.Engine
		if s.config.Engine != nil {
			engine = s.config.Engine
		}
		profiles := api.NewProfileHandler(s.config.Store, engine)
		s.mux.Handle("/api/profiles", profiles)
		s.mux.Handle("/api/profiles/", profiles)
	}

	if s.config.Preview != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Preview, s.config.StreamFPS))
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).Round(time.Second).String(),
	}
	if sr, ok := s.config.Engine.(statusReporter); ok {
		response["detection_enabled"] = sr.IsEnabled()
		response["running"] = sr.IsRunning()
		if e := sr.LastError(); e != "" {
			response["last_error"] = e
		}
	}
	if s.points != nil {
		response["clients"] = s.points.Clients()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address and blocks
// until Shutdown.
func (s *Server) ListenAndServe(addr string) error {
	s.mu.Lock()
	s.http = &http.Server{Addr: addr, Handler: s}
	srv := s.http
	s.mu.Unlock()

	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the broadcast loop and gracefully stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.points != nil {
		s.points.Close()
	}
	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
