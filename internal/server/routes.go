package server

import (
	"net/http"
	"time"

	"github.com/ahmethakanbesel/scraper-dashboard/internal/chart"
	"github.com/ahmethakanbesel/scraper-dashboard/internal/dashboard"
)

// NewHandler creates the full HTTP handler with routes and middleware.
func NewHandler(state *dashboard.State, rescrapeDate chart.DateField) http.Handler {
	h := &handler{
		state:        state,
		rescrapeDate: rescrapeDate,
		now:          time.Now,
	}
	return h.routes()
}

func (h *handler) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("GET /api/v1/jobs", h.listJobs)
	mux.HandleFunc("GET /api/v1/jobs/{id}", h.getJob)
	mux.HandleFunc("GET /api/v1/stats", h.getStats)
	mux.HandleFunc("GET /api/v1/activity", h.getActivity)
	mux.HandleFunc("GET /api/v1/rescraping", h.getRescraping)

	// recovery -> requestID -> accessLog
	var handler http.Handler = mux
	handler = h.accessLog(handler)
	handler = requestID(handler)
	handler = recovery(handler)

	return handler
}
