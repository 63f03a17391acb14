// Package api provides HTTP API handlers for the Movedoro application.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/llermaly/movedoro-sub001/internal/store"
)

// SessionHandler handles HTTP requests for exercise session resources.
type SessionHandler struct {
	store *store.Store
}

// NewSessionHandler creates a new SessionHandler with the given store.
func NewSessionHandler(s *store.Store) *SessionHandler {
	return &SessionHandler{store: s}
}

// ServeHTTP implements the http.Handler interface and routes requests to
// appropriate methods.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/sessions or /api/sessions/{id}
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	// Sub-resource endpoint: /api/sessions/{id}/reps
	if id, ok := strings.CutSuffix(path, "/reps"); ok {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.reps(w, r, id)
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Request and response types

type repResponse struct {
	RepNumber int    `json:"rep_number"`
	Score     int    `json:"score"`
	CreatedAt string `json:"created_at"`
}

type photoResponse struct {
	ID        string `json:"id"`
	RepNumber int    `json:"rep_number"`
	Position  string `json:"position"`
	Path      string `json:"path"`
}

type sessionResponse struct {
	ID        string          `json:"id"`
	Exercise  string          `json:"exercise"`
	StartedAt string          `json:"started_at"`
	EndedAt   string          `json:"ended_at,omitempty"`
	RepCount  int             `json:"rep_count"`
	MeanScore float64         `json:"mean_score"`
	Reps      []repResponse   `json:"reps,omitempty"`
	Photos    []photoResponse `json:"photos,omitempty"`
}

type listSessionsResponse struct {
	Sessions []sessionResponse `json:"sessions"`
}

type errorResponse struct {
	Error string `json:"error"`
}

const timeFormat = "2006-01-02T15:04:05Z07:00"

// toResponse converts a store.Session to a sessionResponse.
func toResponse(sess *store.Session) sessionResponse {
	out := sessionResponse{
		ID:        sess.ID,
		Exercise:  sess.Exercise,
		StartedAt: sess.StartedAt.Format(timeFormat),
		RepCount:  sess.RepCount,
		MeanScore: sess.MeanScore,
	}
	if sess.EndedAt != nil {
		out.EndedAt = sess.EndedAt.Format(timeFormat)
	}
	return out
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// list handles GET /api/sessions and returns recent sessions, newest first.
func (h *SessionHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 500 {
			limit = v
		}
	}

	sessions, err := h.store.Sessions().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	response := listSessionsResponse{
		Sessions: make([]sessionResponse, 0, len(sessions)),
	}
	for _, sess := range sessions {
		response.Sessions = append(response.Sessions, toResponse(sess))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/sessions/{id}, returning the session with its reps
// and photos.
func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	sess, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	response := toResponse(sess)

	reps, err := h.store.Sessions().GetReps(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get reps")
		return
	}
	for _, rep := range reps {
		response.Reps = append(response.Reps, repResponse{
			RepNumber: rep.RepNumber,
			Score:     rep.Score,
			CreatedAt: rep.CreatedAt.Format(timeFormat),
		})
	}

	photos, err := h.store.Photos().GetBySessionID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get photos")
		return
	}
	for _, photo := range photos {
		response.Photos = append(response.Photos, photoResponse{
			ID:        photo.ID,
			RepNumber: photo.RepNumber,
			Position:  photo.Position,
			Path:      photo.Path,
		})
	}

	writeJSON(w, http.StatusOK, response)
}

// reps handles GET /api/sessions/{id}/reps and returns just the per-rep
// scores.
func (h *SessionHandler) reps(w http.ResponseWriter, r *http.Request, id string) {
	if _, err := h.store.Sessions().GetByID(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	reps, err := h.store.Sessions().GetReps(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get reps")
		return
	}

	response := make([]repResponse, 0, len(reps))
	for _, rep := range reps {
		response = append(response, repResponse{
			RepNumber: rep.RepNumber,
			Score:     rep.Score,
			CreatedAt: rep.CreatedAt.Format(timeFormat),
		})
	}

	writeJSON(w, http.StatusOK, response)
}

// delete handles DELETE /api/sessions/{id} and removes a session with its
// reps.
func (h *SessionHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Sessions().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
