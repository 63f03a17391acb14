package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/llermaly/movedoro-sub001/internal/app"
)

// TimerHandler handles HTTP requests controlling the Pomodoro timer.
type TimerHandler struct {
	app *app.App
}

// NewTimerHandler creates a new TimerHandler driving the given application.
func NewTimerHandler(a *app.App) *TimerHandler {
	return &TimerHandler{app: a}
}

type timerResponse struct {
	Phase     string `json:"phase"`
	Remaining string `json:"remaining"`
	Paused    bool   `json:"paused"`
}

// ServeHTTP implements the http.Handler interface.
//
//	POST /api/timer/start
//	POST /api/timer/pause
//	POST /api/timer/resume
//	POST /api/timer/skip
//	POST /api/timer/stop
func (h *TimerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	action := strings.TrimPrefix(r.URL.Path, "/api/timer/")
	now := time.Now()
	timer := h.app.Timer()

	switch action {
	case "start":
		timer.Start(now)
	case "pause":
		timer.Pause(now)
	case "resume":
		timer.Resume(now)
	case "skip":
		timer.Skip(now)
	case "stop":
		timer.Stop()
	default:
		writeError(w, http.StatusNotFound, "Unknown timer action")
		return
	}

	writeJSON(w, http.StatusOK, timerResponse{
		Phase:     string(timer.Phase()),
		Remaining: timer.Remaining(now).Round(time.Second).String(),
		Paused:    timer.Paused(),
	})
}
