package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ahmethakanbesel/scraper-dashboard/internal/api"
	"github.com/ahmethakanbesel/scraper-dashboard/internal/apperror"
	"github.com/ahmethakanbesel/scraper-dashboard/internal/chart"
	"github.com/ahmethakanbesel/scraper-dashboard/internal/config"
	"github.com/ahmethakanbesel/scraper-dashboard/internal/dashboard"
	"github.com/ahmethakanbesel/scraper-dashboard/internal/platform/sqlite"
	sessionrepo "github.com/ahmethakanbesel/scraper-dashboard/internal/repository/session"
	"github.com/ahmethakanbesel/scraper-dashboard/internal/session"
)

var (
	// errReported marks failures whose notice has already been printed.
	errReported = errors.New("reported")
	errUsage    = errors.New("usage")
)

type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
	// fd is the terminal descriptor behind in, or -1.
	fd int
}

type app struct {
	cfg     config.Config
	streams streams
	in      *bufio.Reader
	yes     bool

	holder     *session.Holder
	client     *api.Client
	state      *dashboard.State
	mainView   *dashboard.Poller
	rescrapes  *dashboard.Poller
	dispatcher *dashboard.Dispatcher
}

func openStore(ctx context.Context, cfg config.Config) (session.Store, func() error, error) {
	switch cfg.SessionStore {
	case config.SessionStoreRedis:
		repo, err := sessionrepo.NewRedisRepository(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil
	case config.SessionStoreSQLite, "":
		db, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return sessionrepo.NewRepository(db.DB), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown session store %q", cfg.SessionStore)
	}
}

func newApp(cfg config.Config, store session.Store, s streams) *app {
	a := &app{
		cfg:     cfg,
		streams: s,
		in:      bufio.NewReader(s.in),
		state:   dashboard.NewState(),
	}

	a.holder = session.NewHolder(store, nil)
	a.client = api.New(cfg.APIURL, api.WithTimeout(cfg.HTTPTimeout), api.WithTokenSource(a.holder))
	a.holder.SetAuthenticator(a.client)
	a.holder.OnReset(a.state.Reset)

	a.mainView = dashboard.NewPoller("main", cfg.PollInterval, dashboard.MainSources(a.client, a.state, api.DefaultJobLimit)...)
	a.rescrapes = dashboard.NewPoller("rescraping", cfg.RescrapePollInterval, dashboard.RescrapeSources(a.client, a.state)...)
	a.dispatcher = dashboard.NewDispatcher(a.client,
		dashboard.WithConfirmer(a),
		dashboard.WithNotifier(a),
		dashboard.WithRefresher(dashboard.MultiRefresher{a.mainView, a.rescrapes}),
	)
	return a
}

func (a *app) rescrapeDate() chart.DateField {
	if a.cfg.ChartRescrapeDate == string(chart.CreatedAt) {
		return chart.CreatedAt
	}
	return chart.UpdatedAt
}

// outcome turns a dispatched result into the command's error. The
// dispatcher has already printed the notice for failures it ran.
func (a *app) outcome(res dashboard.Result, err error) error {
	if res.Declined {
		a.Notify(res)
	}
	if err == nil {
		return nil
	}
	if errors.Is(err, dashboard.ErrBusy) || res.Message == "" {
		return err
	}
	return fmt.Errorf("%w: %w", errReported, err)
}

// userMessage is the short form of err shown on the terminal.
func userMessage(err error) string {
	var ae *apperror.AppError
	if errors.As(err, &ae) {
		return ae.Message()
	}
	return err.Error()
}
