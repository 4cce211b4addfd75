package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ahmethakanbesel/scraper-dashboard/internal/api"
	"github.com/ahmethakanbesel/scraper-dashboard/internal/job"
	"github.com/ahmethakanbesel/scraper-dashboard/internal/rescrape"
	"github.com/ahmethakanbesel/scraper-dashboard/internal/stats"
)

// Source fetches one slice of view state and stores it.
type Source struct {
	Name  string
	Fetch func(ctx context.Context) error
}

// Poller re-fetches a view's sources on an interval. Rounds run one at a
// time; a slow round delays the next tick instead of overlapping it.
type Poller struct {
	name     string
	sources  []Source
	interval time.Duration
	notify   chan struct{}

	mu       sync.Mutex
	onUpdate []func()
}

func NewPoller(name string, interval time.Duration, sources ...Source) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Poller{
		name:     name,
		sources:  sources,
		interval: interval,
		notify:   make(chan struct{}, 1),
	}
}

// OnUpdate registers fn to run after every round, successful or not.
func (p *Poller) OnUpdate(fn func()) {
	p.mu.Lock()
	p.onUpdate = append(p.onUpdate, fn)
	p.mu.Unlock()
}

// Refresh wakes the poller for an immediate round. Non-blocking; requests
// made while a round is pending collapse into one.
func (p *Poller) Refresh() {
	select {
	case p.notify <- struct{}{}:
	default:
	}
}

// Poll runs one round: every source is fetched concurrently and stores
// its own result as soon as its fetch returns, so a reader may briefly see
// one source from this round and another from the last. OnUpdate hooks run
// only after every fetch has settled. A failing source is logged and keeps
// its previous value; the first failure is returned.
func (p *Poller) Poll(ctx context.Context) error {
	var g errgroup.Group
	for _, s := range p.sources {
		g.Go(func() error {
			if err := s.Fetch(ctx); err != nil {
				if ctx.Err() == nil {
					slog.Error("poller: fetch", "view", p.name, "source", s.Name, "error", err)
				}
				return fmt.Errorf("%s: %w", s.Name, err)
			}
			return nil
		})
	}
	err := g.Wait()

	p.mu.Lock()
	hooks := append([]func(){}, p.onUpdate...)
	p.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
	return err
}

// Run polls until ctx is cancelled. Cancellation aborts the in-flight
// round's requests.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	slog.Debug("poller: started", "view", p.name, "interval", p.interval.String())
	for {
		if ctx.Err() != nil {
			return
		}
		_ = p.Poll(ctx)

		select {
		case <-ctx.Done():
			slog.Debug("poller: stopped", "view", p.name)
			return
		case <-p.notify:
		case <-ticker.C:
		}
	}
}

// JobsFetcher is the part of the API client the main view reads.
type JobsFetcher interface {
	ListJobs(ctx context.Context, limit int) ([]job.Job, error)
	Stats(ctx context.Context) (*stats.DashboardStats, error)
}

// RescrapeFetcher is the part of the API client the rescraping view reads.
type RescrapeFetcher interface {
	RescrapeStats(ctx context.Context) (*rescrape.Stats, error)
	DueCreators(ctx context.Context) (*rescrape.DueCreators, error)
	CorruptedCreators(ctx context.Context) (*rescrape.CorruptedCreators, error)
}

// MainSources are the jobs list, capped at limit jobs (the backend's
// default page when limit <= 0), and dashboard counters.
func MainSources(c JobsFetcher, st *State, limit int) []Source {
	if limit <= 0 {
		limit = api.DefaultJobLimit
	}
	return []Source{
		{Name: SourceJobs, Fetch: func(ctx context.Context) error {
			jobs, err := c.ListJobs(ctx, limit)
			if err != nil {
				return err
			}
			st.SetJobs(jobs)
			return nil
		}},
		{Name: SourceStats, Fetch: func(ctx context.Context) error {
			s, err := c.Stats(ctx)
			if err != nil {
				return err
			}
			st.SetStats(s)
			return nil
		}},
	}
}

// RescrapeSources are the scheduling snapshot and creator samples.
func RescrapeSources(c RescrapeFetcher, st *State) []Source {
	return []Source{
		{Name: SourceRescrapeStats, Fetch: func(ctx context.Context) error {
			s, err := c.RescrapeStats(ctx)
			if err != nil {
				return err
			}
			st.SetRescrapeStats(s)
			return nil
		}},
		{Name: SourceDueCreators, Fetch: func(ctx context.Context) error {
			d, err := c.DueCreators(ctx)
			if err != nil {
				return err
			}
			st.SetDueCreators(d)
			return nil
		}},
		{Name: SourceCorrupted, Fetch: func(ctx context.Context) error {
			cc, err := c.CorruptedCreators(ctx)
			if err != nil {
				return err
			}
			st.SetCorrupted(cc)
			return nil
		}},
	}
}

// MultiRefresher fans Refresh out to several pollers.
type MultiRefresher []*Poller

func (m MultiRefresher) Refresh() {
	for _, p := range m {
		p.Refresh()
	}
}
