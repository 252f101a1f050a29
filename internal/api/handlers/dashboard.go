package handlers

import (
	"net/http"

	"routelog/internal/services"
)

// DashboardHandler serves the home-screen rollup and the derived insights.
type DashboardHandler struct {
	Dashboard *services.DashboardService
	Insights  *services.InsightService
}

func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Dashboard.Summary(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}

func (h *DashboardHandler) List(w http.ResponseWriter, r *http.Request) {
	insights, err := h.Insights.Insights(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, insights)
}
