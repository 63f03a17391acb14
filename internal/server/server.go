// Package server provides the local HTTP surface of Movedoro: status and
// session APIs, the camera preview stream, the live event websocket, and
// the session report page.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/llermaly/movedoro-sub001/internal/app"
	"github.com/llermaly/movedoro-sub001/internal/server/api"
	"github.com/llermaly/movedoro-sub001/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	App       *app.App
}

// Server represents the HTTP server for the Movedoro application.
type Server struct {
	config Config
	mux    *http.ServeMux
	hub    *Hub
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		hub:    NewHub(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// Hub returns the websocket event hub; the application's OnEvent callback
// should publish into it.
func (s *Server) Hub() *Hub {
	return s.hub
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		sessionHandler := api.NewSessionHandler(s.config.Store)
		s.mux.Handle("/api/sessions", sessionHandler)
		s.mux.Handle("/api/sessions/", sessionHandler)

		reportHandler := NewReportHandler(s.config.Store)
		s.mux.Handle("/report", reportHandler)
	}

	if s.config.App != nil {
		s.mux.HandleFunc("/api/status", s.handleStatus)
		s.mux.Handle("/api/calibration", api.NewCalibrationHandler(s.config.App))
		s.mux.Handle("/api/timer/", api.NewTimerHandler(s.config.App))

		streamHandler := NewStreamHandler(s.config.App.Camera())
		s.mux.Handle("/api/stream", streamHandler)
	}

	s.mux.Handle("/api/events", s.hub)

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
		"uptime": time.Since(s.start).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// handleStatus handles GET requests to /api/status, reporting the live
// pipeline and timer state.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	a := s.config.App
	now := time.Now()

	response := map[string]interface{}{
		"mode": string(a.Mode()),
		"timer": map[string]interface{}{
			"phase":     string(a.Timer().Phase()),
			"remaining": a.Timer().Remaining(now).Round(time.Second).String(),
			"paused":    a.Timer().Paused(),
		},
		"calibration": map[string]interface{}{
			"state": string(a.Calibrator().State()),
		},
		"exercise": map[string]interface{}{
			"state":      string(a.Tracker().State()),
			"rep_count":  a.Tracker().RepCount(),
			"last_score": a.Tracker().LastScore(),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
