package api

import (
	"net/http"

	"github.com/llermaly/movedoro-sub001/internal/app"
)

// CalibrationHandler handles HTTP requests for the calibration resource.
type CalibrationHandler struct {
	app *app.App
}

// NewCalibrationHandler creates a new CalibrationHandler driving the given
// application.
func NewCalibrationHandler(a *app.App) *CalibrationHandler {
	return &CalibrationHandler{app: a}
}

// ServeHTTP implements the http.Handler interface.
//
//	GET    /api/calibration  current calibration state
//	POST   /api/calibration  begin an interactive calibration pass
//	DELETE /api/calibration  clear the stored calibration
func (h *CalibrationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPost:
		h.start(w, r)
	case http.MethodDelete:
		h.clear(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type calibrationResponse struct {
	State  string `json:"state"`
	Active bool   `json:"active"`
}

func (h *CalibrationHandler) get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, calibrationResponse{
		State:  string(h.app.Calibrator().State()),
		Active: h.app.Calibrator().Active(),
	})
}

func (h *CalibrationHandler) start(w http.ResponseWriter, r *http.Request) {
	h.app.StartCalibration()
	writeJSON(w, http.StatusAccepted, calibrationResponse{
		State:  string(h.app.Calibrator().State()),
		Active: true,
	})
}

func (h *CalibrationHandler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Calibrator().Clear(); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to clear calibration")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
