package dashboard

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/ahmethakanbesel/scraper-dashboard/internal/api"
	"github.com/ahmethakanbesel/scraper-dashboard/internal/apperror"
	"github.com/ahmethakanbesel/scraper-dashboard/internal/job"
	"github.com/ahmethakanbesel/scraper-dashboard/internal/rescrape"
	"github.com/ahmethakanbesel/scraper-dashboard/internal/upload"
)

const (
	ActionUploadCSV          = "upload-csv"
	ActionRescrapeAll        = "rescrape-all"
	ActionRescrapeInstagram  = "rescrape-instagram"
	ActionRescrapeTikTok     = "rescrape-tiktok"
	ActionCancelJob          = "cancel-job"
	ActionRemoveJob          = "remove-job"
	ActionResumeJob          = "resume-job"
	ActionTriggerJob         = "trigger-job"
	ActionStartQueue         = "start-queue"
	ActionPopulateDates      = "populate-dates"
	ActionForcePopulateDates = "force-populate-dates"
	ActionScheduleDaily      = "schedule-daily"
	ActionStartAutoRescrape  = "start-auto-rescrape"
	ActionStartOverdueOnly   = "start-overdue-only"
	ActionStartTodaysBatch   = "start-todays-batch"
	ActionFixCorrupted       = "fix-corrupted-creators"
	ActionDebug              = "debug"
	ActionTestDistribution   = "test-distribution"
)

// ErrBusy rejects an action dispatched while the same action is in flight.
var ErrBusy = apperror.New(apperror.Busy, "action already in progress")

// Backend is every mutating and diagnostic call the dispatcher makes.
type Backend interface {
	UploadCSV(ctx context.Context, filename string, content io.Reader) (*api.ActionResult, error)
	Rescrape(ctx context.Context, req api.RescrapeRequest) (*api.ActionResult, error)
	CancelJob(ctx context.Context, id string) (*api.ActionResult, error)
	RemoveJob(ctx context.Context, id string) (*api.ActionResult, error)
	ResumeJob(ctx context.Context, id string) (*api.ActionResult, error)
	TriggerJob(ctx context.Context, id string) (*api.ActionResult, error)
	StartQueue(ctx context.Context) (*api.ActionResult, error)
	PopulateDates(ctx context.Context) (*api.ActionResult, error)
	ForcePopulateDates(ctx context.Context) (*api.ActionResult, error)
	ScheduleDaily(ctx context.Context) (*api.ActionResult, error)
	StartAutoRescrape(ctx context.Context, req api.AutoRescrapeRequest) (*api.ActionResult, error)
	StartOverdueOnly(ctx context.Context) (*api.ActionResult, error)
	StartTodaysBatch(ctx context.Context) (*api.ActionResult, error)
	FixCorruptedCreators(ctx context.Context) (*api.ActionResult, error)
	Debug(ctx context.Context) (*rescrape.DebugReport, error)
	TestDistribution(ctx context.Context) (*rescrape.DistributionReport, error)
}

// Confirmer asks the operator before destructive actions.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// Notifier shows the outcome of an action.
type Notifier interface {
	Notify(r Result)
}

// Refresher is woken after a successful mutation.
type Refresher interface {
	Refresh()
}

// Result is the outcome of one dispatched action.
type Result struct {
	Action   string
	OK       bool
	Declined bool
	Message  string
}

type Dispatcher struct {
	backend Backend
	confirm Confirmer
	notify  Notifier
	refresh Refresher

	mu   sync.Mutex
	busy map[string]bool
}

type DispatcherOption func(*Dispatcher)

func WithConfirmer(c Confirmer) DispatcherOption {
	return func(d *Dispatcher) { d.confirm = c }
}

func WithNotifier(n Notifier) DispatcherOption {
	return func(d *Dispatcher) { d.notify = n }
}

func WithRefresher(r Refresher) DispatcherOption {
	return func(d *Dispatcher) { d.refresh = r }
}

// NewDispatcher without a Confirmer declines every action that needs
// confirmation.
func NewDispatcher(backend Backend, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{backend: backend, busy: make(map[string]bool)}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Busy reports whether action is in flight.
func (d *Dispatcher) Busy(action string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.busy[action]
}

type action struct {
	name    string
	confirm string
	failure string
	// detail lets the backend's error message replace failure.
	detail bool
	// readOnly actions do not trigger a refresh.
	readOnly bool
	run      func(ctx context.Context) (string, error)
}

func (d *Dispatcher) dispatch(ctx context.Context, a action) (Result, error) {
	res := Result{Action: a.name}

	d.mu.Lock()
	if d.busy[a.name] {
		d.mu.Unlock()
		res.Message = ErrBusy.Message()
		return res, ErrBusy
	}
	d.busy[a.name] = true
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		delete(d.busy, a.name)
		d.mu.Unlock()
	}()

	if a.confirm != "" {
		ok := false
		if d.confirm != nil {
			var err error
			if ok, err = d.confirm.Confirm(ctx, a.confirm); err != nil {
				return res, fmt.Errorf("%s: confirm: %w", a.name, err)
			}
		}
		if !ok {
			res.Declined = true
			slog.Debug("action declined", "action", a.name)
			return res, nil
		}
	}

	msg, err := a.run(ctx)
	if err != nil {
		res.Message = a.failure
		if detail := apperror.DetailOf(err); a.detail && detail != "" {
			res.Message = detail
		}
		slog.Error("action failed", "action", a.name, "code", apperror.CodeOf(err), "error", err)
		d.emit(res)
		return res, err
	}

	res.OK = true
	res.Message = msg
	slog.Info("action succeeded", "action", a.name, "message", msg)
	d.emit(res)
	if !a.readOnly && d.refresh != nil {
		d.refresh.Refresh()
	}
	return res, nil
}

func (d *Dispatcher) emit(r Result) {
	if d.notify != nil {
		d.notify.Notify(r)
	}
}

// message runs a call whose success notice is the backend's own message.
func message(call func(ctx context.Context) (*api.ActionResult, error)) func(ctx context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		r, err := call(ctx)
		if err != nil {
			return "", err
		}
		return r.Message, nil
	}
}

// withServerMessage appends the backend's message to a client-built notice
// unless it is empty or already part of it.
func withServerMessage(notice, server string) string {
	server = strings.TrimSpace(server)
	if server == "" || strings.Contains(notice, server) {
		return notice
	}
	return notice + ". " + server
}

// UploadCSV sends the pending file and clears the selection on success.
func (d *Dispatcher) UploadCSV(ctx context.Context, sel *upload.Selection) (Result, error) {
	return d.dispatch(ctx, action{
		name:    ActionUploadCSV,
		failure: "Upload failed. Please try again.",
		detail:  true,
		run: func(ctx context.Context) (string, error) {
			name, rc, err := sel.Open()
			if err != nil {
				return "", err
			}
			defer func() { _ = rc.Close() }()

			r, err := d.backend.UploadCSV(ctx, name, rc)
			if err != nil {
				return "", err
			}
			sel.Clear()
			return withServerMessage(fmt.Sprintf("Job created! Processing %d creators", r.CreatorsCount), r.Message), nil
		},
	})
}

// Rescrape queues a rescrape of every creator (platform "") or of one
// platform's creators. Rescraping everything asks first.
func (d *Dispatcher) Rescrape(ctx context.Context, platform string) (Result, error) {
	a := action{detail: true}
	req := api.RescrapeRequest{JobType: job.TypeRescrapePlatform, Platform: platform}
	var what string

	switch platform {
	case "":
		a.name = ActionRescrapeAll
		a.confirm = "This will rescrape all creators. Continue?"
		a.failure = "Failed to create rescrape job"
		req = api.RescrapeRequest{JobType: job.TypeRescrapeAll}
		what = "Rescrape job"
	case api.PlatformInstagram:
		a.name = ActionRescrapeInstagram
		a.failure = "Failed to create Instagram rescrape job"
		what = "Instagram rescrape job"
	case api.PlatformTikTok:
		a.name = ActionRescrapeTikTok
		a.failure = "Failed to create TikTok rescrape job"
		what = "TikTok rescrape job"
	default:
		return Result{Action: "rescrape-" + platform}, apperror.New(apperror.BadRequest, "platform must be instagram or tiktok")
	}

	a.run = func(ctx context.Context) (string, error) {
		r, err := d.backend.Rescrape(ctx, req)
		if err != nil {
			return "", err
		}
		return withServerMessage(fmt.Sprintf("%s created! Processing %d creators", what, r.TotalItems), r.Message), nil
	}
	return d.dispatch(ctx, a)
}

func (d *Dispatcher) CancelJob(ctx context.Context, id string) (Result, error) {
	return d.dispatch(ctx, action{
		name:    ActionCancelJob,
		failure: "Failed to cancel job",
		run: func(ctx context.Context) (string, error) {
			r, err := d.backend.CancelJob(ctx, id)
			if err != nil {
				return "", err
			}
			return withServerMessage("Job cancelled successfully", r.Message), nil
		},
	})
}

func (d *Dispatcher) RemoveJob(ctx context.Context, id string) (Result, error) {
	return d.dispatch(ctx, action{
		name:    ActionRemoveJob,
		failure: "Failed to remove job",
		run:     message(func(ctx context.Context) (*api.ActionResult, error) { return d.backend.RemoveJob(ctx, id) }),
	})
}

func (d *Dispatcher) ResumeJob(ctx context.Context, id string) (Result, error) {
	return d.dispatch(ctx, action{
		name:    ActionResumeJob,
		failure: "Failed to resume job",
		detail:  true,
		run:     message(func(ctx context.Context) (*api.ActionResult, error) { return d.backend.ResumeJob(ctx, id) }),
	})
}

func (d *Dispatcher) TriggerJob(ctx context.Context, id string) (Result, error) {
	return d.dispatch(ctx, action{
		name:    ActionTriggerJob,
		failure: "Failed to trigger job",
		detail:  true,
		run:     message(func(ctx context.Context) (*api.ActionResult, error) { return d.backend.TriggerJob(ctx, id) }),
	})
}

func (d *Dispatcher) StartQueue(ctx context.Context) (Result, error) {
	return d.dispatch(ctx, action{
		name:    ActionStartQueue,
		failure: "Failed to start queue",
		run:     message(d.backend.StartQueue),
	})
}

// PopulateDates backfills missing update dates for needDates creators.
func (d *Dispatcher) PopulateDates(ctx context.Context, needDates int) (Result, error) {
	return d.dispatch(ctx, action{
		name:    ActionPopulateDates,
		confirm: fmt.Sprintf("This will populate updated_at dates for %d creators. Continue?", needDates),
		failure: "Failed to populate dates",
		run:     message(d.backend.PopulateDates),
	})
}

func (d *Dispatcher) ForcePopulateDates(ctx context.Context) (Result, error) {
	return d.dispatch(ctx, action{
		name:    ActionForcePopulateDates,
		confirm: "This will reset ALL creator dates to ensure even distribution. This may take a few minutes. Continue?",
		failure: "Failed to force populate dates",
		run:     message(d.backend.ForcePopulateDates),
	})
}

func (d *Dispatcher) ScheduleDaily(ctx context.Context) (Result, error) {
	return d.dispatch(ctx, action{
		name:    ActionScheduleDaily,
		failure: "Failed to start rescraping",
		run:     message(d.backend.ScheduleDaily),
	})
}

func (d *Dispatcher) StartAutoRescrape(ctx context.Context, req api.AutoRescrapeRequest) (Result, error) {
	return d.dispatch(ctx, action{
		name:    ActionStartAutoRescrape,
		failure: "Failed to start rescraping",
		run: message(func(ctx context.Context) (*api.ActionResult, error) {
			return d.backend.StartAutoRescrape(ctx, req)
		}),
	})
}

func (d *Dispatcher) StartOverdueOnly(ctx context.Context) (Result, error) {
	return d.dispatch(ctx, action{
		name:    ActionStartOverdueOnly,
		failure: "Failed to start rescraping",
		run:     message(d.backend.StartOverdueOnly),
	})
}

func (d *Dispatcher) StartTodaysBatch(ctx context.Context) (Result, error) {
	return d.dispatch(ctx, action{
		name:    ActionStartTodaysBatch,
		failure: "Failed to start rescraping",
		run:     message(d.backend.StartTodaysBatch),
	})
}

// FixCorruptedCreators remediates the count flagged creators.
func (d *Dispatcher) FixCorruptedCreators(ctx context.Context, count int) (Result, error) {
	return d.dispatch(ctx, action{
		name:    ActionFixCorrupted,
		confirm: fmt.Sprintf("This will fix %d corrupted creators. Continue?", count),
		failure: "Failed to fix corrupted creators",
		run:     message(d.backend.FixCorruptedCreators),
	})
}

// Debug fetches the backend's date diagnostics and summarizes them.
func (d *Dispatcher) Debug(ctx context.Context) (*rescrape.DebugReport, Result, error) {
	var report *rescrape.DebugReport
	res, err := d.dispatch(ctx, action{
		name:     ActionDebug,
		failure:  "Failed to get debug data",
		readOnly: true,
		run: func(ctx context.Context) (string, error) {
			r, err := d.backend.Debug(ctx)
			if err != nil {
				return "", err
			}
			report = r
			return fmt.Sprintf("Total: %d, Null dates: %d, Due: %d", r.TotalCreators, r.NullUpdatedAt, r.OlderThan7Days), nil
		},
	})
	return report, res, err
}

// TestDistribution fetches the next week's due counts.
func (d *Dispatcher) TestDistribution(ctx context.Context) (*rescrape.DistributionReport, Result, error) {
	var report *rescrape.DistributionReport
	res, err := d.dispatch(ctx, action{
		name:     ActionTestDistribution,
		failure:  "Failed to test distribution",
		readOnly: true,
		run: func(ctx context.Context) (string, error) {
			r, err := d.backend.TestDistribution(ctx)
			if err != nil {
				return "", err
			}
			report = r
			return fmt.Sprintf("Due today: %d creators", r.DueToday()), nil
		},
	})
	return report, res, err
}
