package server

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ahmethakanbesel/scraper-dashboard/internal/dashboard"
)

type ctxKey string

const requestIDKey ctxKey = "requestID"

// dataAgeHeader carries how many seconds ago the view's sources were polled.
const dataAgeHeader = "X-Data-Age"

// viewSources lists the polled sources each mirrored view is built from.
var viewSources = map[string][]string{
	"jobs":       {dashboard.SourceJobs},
	"activity":   {dashboard.SourceJobs},
	"stats":      {dashboard.SourceStats},
	"rescraping": {dashboard.SourceRescrapeStats, dashboard.SourceDueCreators, dashboard.SourceCorrupted},
}

func recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("mirror handler panicked", "error", err, "view", viewOf(r.URL.Path)) //nolint:gosec // structured value
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// viewOf maps /api/v1/<view>[/...] to its view name, or "" for anything
// that is not a mirrored view.
func viewOf(path string) string {
	rest, ok := strings.CutPrefix(path, "/api/v1/")
	if !ok {
		return ""
	}
	view, _, _ := strings.Cut(rest, "/")
	if _, known := viewSources[view]; !known {
		return ""
	}
	return view
}

// dataAge is the age of the least recently polled loaded source behind
// view. ok is false when none of them has loaded yet.
func dataAge(snap dashboard.Snapshot, view string, now time.Time) (age time.Duration, ok bool) {
	for _, src := range viewSources[view] {
		at, loaded := snap.UpdatedAt[src]
		if !loaded {
			continue
		}
		age, ok = max(age, now.Sub(at)), true
	}
	return max(age, 0), ok
}

// accessLog stamps mirrored views with the age of the data they serve and
// logs one line per request.
func (h *handler) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		view := viewOf(r.URL.Path)
		age, loaded := dataAge(h.state.Snapshot(), view, h.now())
		if loaded {
			w.Header().Set(dataAgeHeader, strconv.Itoa(int(age.Seconds())))
		}

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"bytes", sw.written,
			"duration", time.Since(start).String(),
			"requestID", r.Context().Value(requestIDKey),
		}
		if view != "" {
			attrs = append(attrs, "view", view, "loaded", loaded)
			if loaded {
				attrs = append(attrs, "dataAge", age.Round(time.Second).String())
			}
		}
		slog.Debug("mirror request", attrs...)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status  int
	written int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.written += n
	return n, err
}
