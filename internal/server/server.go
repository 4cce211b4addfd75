// Package server exposes the polled dashboard state as read-only JSON for
// other local tools.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/ahmethakanbesel/scraper-dashboard/internal/chart"
	"github.com/ahmethakanbesel/scraper-dashboard/internal/dashboard"
)

type Server struct {
	srv *http.Server
}

// New creates a server over state. Requests inherit baseCtx, so cancelling
// it ends in-flight handlers during shutdown.
func New(baseCtx context.Context, port string, state *dashboard.State, rescrapeDate chart.DateField) *Server {
	return &Server{
		srv: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: NewHandler(state, rescrapeDate),
			BaseContext: func(_ net.Listener) context.Context {
				return baseCtx
			},
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
	}
}

func (s *Server) Start() error {
	slog.Info("starting mirror server", "addr", s.srv.Addr)
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down mirror server")
	return s.srv.Shutdown(ctx)
}
