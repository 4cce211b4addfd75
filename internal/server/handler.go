package server

import (
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/ahmethakanbesel/scraper-dashboard/internal/apperror"
	"github.com/ahmethakanbesel/scraper-dashboard/internal/chart"
	"github.com/ahmethakanbesel/scraper-dashboard/internal/dashboard"
	"github.com/ahmethakanbesel/scraper-dashboard/internal/job"
	"github.com/ahmethakanbesel/scraper-dashboard/internal/rescrape"
	"github.com/ahmethakanbesel/scraper-dashboard/internal/stats"
)

var errNotLoaded = apperror.New(apperror.NotFound, "not loaded yet")

type handler struct {
	state        *dashboard.State
	rescrapeDate chart.DateField
	now          func() time.Time
}

type healthResponse struct {
	Status    string               `json:"status"`
	UpdatedAt map[string]time.Time `json:"updated_at"`
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	snap := h.state.Snapshot()
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", UpdatedAt: snap.UpdatedAt})
}

type listJobsRequest struct {
	Status job.Status
}

func (r listJobsRequest) Validate() *apperror.AppError {
	if r.Status != "" && !slices.Contains(job.Statuses, r.Status) {
		return apperror.New(apperror.BadRequest, "invalid status")
	}
	return nil
}

func (h *handler) listJobs(w http.ResponseWriter, r *http.Request) {
	req := listJobsRequest{Status: job.Status(r.URL.Query().Get("status"))}
	if appErr := req.Validate(); appErr != nil {
		writeError(w, appErr.HTTPStatus(), appErr.Message())
		return
	}

	jobs := h.state.Snapshot().Jobs
	if req.Status != "" {
		jobs = slices.DeleteFunc(jobs, func(j job.Job) bool { return j.Status != req.Status })
	}
	if jobs == nil {
		jobs = []job.Job{}
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (h *handler) getJob(w http.ResponseWriter, r *http.Request) {
	j, ok := h.state.Snapshot().Job(r.PathValue("id"))
	if !ok {
		writeAppError(w, apperror.New(apperror.NotFound, "job not found"))
		return
	}
	writeJSON(w, http.StatusOK, j)
}

type statsResponse struct {
	*stats.DashboardStats
	Breakdown stats.Breakdown `json:"breakdown"`
}

func (h *handler) getStats(w http.ResponseWriter, _ *http.Request) {
	s := h.state.Snapshot().Stats
	if s == nil {
		writeAppError(w, errNotLoaded)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{DashboardStats: s, Breakdown: s.Breakdown()})
}

func (h *handler) getActivity(w http.ResponseWriter, r *http.Request) {
	days := chart.DefaultDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || !chart.ValidDays(n) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("days must be between 1 and %d", chart.MaxDays))
			return
		}
		days = n
	}

	out := chart.Activity(h.state.Snapshot().Jobs, h.now(),
		chart.WithDays(days),
		chart.WithRescrapeDate(h.rescrapeDate),
	)
	writeJSON(w, http.StatusOK, out)
}

type rescrapingResponse struct {
	Stats        *rescrape.Stats             `json:"stats"`
	DailyAverage int                         `json:"daily_average"`
	Schedule     []rescrape.ScheduleDay      `json:"schedule"`
	Due          *rescrape.DueCreators       `json:"due,omitempty"`
	Corrupted    *rescrape.CorruptedCreators `json:"corrupted,omitempty"`
}

func (h *handler) getRescraping(w http.ResponseWriter, _ *http.Request) {
	snap := h.state.Snapshot()
	if snap.Rescrape == nil {
		writeAppError(w, errNotLoaded)
		return
	}
	writeJSON(w, http.StatusOK, rescrapingResponse{
		Stats:        snap.Rescrape,
		DailyAverage: snap.Rescrape.DailyAverage(),
		Schedule:     snap.Rescrape.Schedule(),
		Due:          snap.Due,
		Corrupted:    snap.Corrupted,
	})
}
