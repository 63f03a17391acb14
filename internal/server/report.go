package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/llermaly/movedoro-sub001/internal/store"
)

// ReportHandler renders an HTML chart of a session's per-rep scores.
// Query params:
//   - session_id (optional; defaults to the most recent session)
type ReportHandler struct {
	store *store.Store
}

// NewReportHandler creates a new ReportHandler with the given store.
func NewReportHandler(s *store.Store) *ReportHandler {
	return &ReportHandler{store: s}
}

// ServeHTTP handles GET /report.
func (h *ReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		sessions, err := h.store.Sessions().List(1)
		if err != nil || len(sessions) == 0 {
			http.Error(w, "No sessions recorded", http.StatusNotFound)
			return
		}
		sessionID = sessions[0].ID
	}

	sess, err := h.store.Sessions().GetByID(sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to load session", http.StatusInternalServerError)
		return
	}

	reps, err := h.store.Sessions().GetReps(sessionID)
	if err != nil {
		http.Error(w, "Failed to load reps", http.StatusInternalServerError)
		return
	}

	xAxis := make([]string, 0, len(reps))
	data := make([]opts.LineData, 0, len(reps))
	for _, rep := range reps {
		xAxis = append(xAxis, fmt.Sprintf("%d", rep.RepNumber))
		data = append(data, opts.LineData{Value: rep.Score})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Movedoro Session Report",
			Width:     "900px",
			Height:    "500px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Rep Scores",
			Subtitle: fmt.Sprintf("%s: %d reps, mean %.1f", sess.Exercise, sess.RepCount, sess.MeanScore),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Rep"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Score", Min: 0, Max: 100}),
	)
	line.SetXAxis(xAxis)
	line.AddSeries("score", data, charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		http.Error(w, fmt.Sprintf("Failed to render chart: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
