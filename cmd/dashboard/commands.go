package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ahmethakanbesel/scraper-dashboard/internal/api"
	"github.com/ahmethakanbesel/scraper-dashboard/internal/chart"
	"github.com/ahmethakanbesel/scraper-dashboard/internal/dashboard"
	"github.com/ahmethakanbesel/scraper-dashboard/internal/render"
	"github.com/ahmethakanbesel/scraper-dashboard/internal/server"
	"github.com/ahmethakanbesel/scraper-dashboard/internal/upload"
)

const clearScreen = "\033[H\033[2J"

type command struct {
	usage  string
	public bool
	run    func(a *app, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"login":       {usage: "login [-u username] [-show-password]", public: true, run: (*app).login},
	"logout":      {usage: "logout", public: true, run: (*app).logout},
	"whoami":      {usage: "whoami", run: (*app).whoami},
	"health":      {usage: "health", public: true, run: (*app).health},
	"jobs":        {usage: "jobs [-limit n] [-watch]", run: (*app).jobs},
	"job":         {usage: "job <id>", run: (*app).job},
	"stats":       {usage: "stats", run: (*app).stats},
	"chart":       {usage: "chart [-days n]", run: (*app).chart},
	"upload":      {usage: "upload <file.csv> [file...]", run: (*app).upload},
	"rescrape":    {usage: "rescrape all|instagram|tiktok", run: (*app).rescrape},
	"cancel":      {usage: "cancel <id>", run: jobAction((*dashboard.Dispatcher).CancelJob)},
	"remove":      {usage: "remove <id>", run: jobAction((*dashboard.Dispatcher).RemoveJob)},
	"resume":      {usage: "resume <id>", run: jobAction((*dashboard.Dispatcher).ResumeJob)},
	"trigger":     {usage: "trigger <id>", run: jobAction((*dashboard.Dispatcher).TriggerJob)},
	"start-queue": {usage: "start-queue", run: (*app).startQueue},
	"watch":       {usage: "watch", run: (*app).watchMain},
	"rescraping":  {usage: "rescraping [-watch] [action]", run: (*app).rescraping},
	"serve":       {usage: "serve [-port p]", run: (*app).serve},
}

var commandOrder = []string{
	"login", "logout", "whoami", "health",
	"jobs", "job", "stats", "chart", "watch",
	"upload", "rescrape", "cancel", "remove", "resume", "trigger", "start-queue",
	"rescraping", "serve",
}

const rescrapingActions = `rescraping actions:
  populate-dates         backfill missing update dates (asks first)
  force-populate-dates   redistribute every creator's update date (asks first)
  schedule-daily         start the scheduled daily rescrape
  auto [-platform p] [-max n]
                         start an automatic rescrape
  overdue                rescrape overdue creators only
  todays-batch           rescrape today's batch
  fix-corrupted          fix flagged creators (asks first)
  debug                  print date diagnostics
  test-distribution      print the next week's due counts
`

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: dashboard [-yes] <command> [args]")
	fmt.Fprintln(w, "\ncommands:")
	for _, name := range commandOrder {
		fmt.Fprintf(w, "  %s\n", commands[name].usage)
	}
	fmt.Fprintln(w)
	fmt.Fprint(w, rescrapingActions)
}

func (a *app) run(ctx context.Context, args []string) error {
	cmd, ok := commands[args[0]]
	if !ok {
		usage(a.streams.err)
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}

	if _, err := a.holder.Restore(ctx); err != nil {
		return err
	}
	if !cmd.public {
		if err := a.holder.Require(); err != nil {
			return err
		}
	}
	return cmd.run(a, ctx, args[1:])
}

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.streams.err)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	return nil
}

func oneArg(fs *flag.FlagSet, what string) (string, error) {
	if fs.NArg() != 1 {
		return "", fmt.Errorf("%w: %s requires %s", errUsage, fs.Name(), what)
	}
	return fs.Arg(0), nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	username := fs.String("u", "", "username")
	show := fs.Bool("show-password", false, "echo the password while typing")
	if err := parse(fs, args); err != nil {
		return err
	}

	user := *username
	if user == "" {
		var err error
		if user, err = a.prompt("Username"); err != nil {
			return fmt.Errorf("read username: %w", err)
		}
		user = strings.TrimSpace(user)
	}
	password, err := a.promptPassword(*show)
	if err != nil {
		return err
	}

	if err := a.holder.Login(ctx, user, password); err != nil {
		a.Notify(dashboard.Result{Action: "login", Message: userMessage(err)})
		return fmt.Errorf("%w: %w", errReported, err)
	}
	a.Notify(dashboard.Result{Action: "login", OK: true, Message: "Successfully logged in!"})
	return nil
}

func (a *app) logout(ctx context.Context, _ []string) error {
	if err := a.holder.Logout(ctx); err != nil {
		return err
	}
	a.Notify(dashboard.Result{Action: "logout", OK: true, Message: "Logged out successfully"})
	return nil
}

func (a *app) whoami(_ context.Context, _ []string) error {
	fmt.Fprintf(a.streams.out, "API:      %s\n", a.client.BaseURL())
	claims, err := a.holder.Claims()
	if err != nil {
		fmt.Fprintln(a.streams.out, "Token:    opaque")
		return nil
	}
	fmt.Fprintf(a.streams.out, "User:     %s\n", claims.Subject)
	if !claims.ExpiresAt.IsZero() {
		state := "valid"
		if claims.Expired(time.Now()) {
			state = "expired"
		}
		fmt.Fprintf(a.streams.out, "Expires:  %s (%s)\n", claims.ExpiresAt.Local().Format(time.RFC1123), state)
	}
	return nil
}

func (a *app) health(ctx context.Context, _ []string) error {
	h, err := a.client.Health(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.streams.out, "%s: %s\n", a.client.BaseURL(), h.Status)
	return render.Dump(a.streams.out, h.Raw)
}

func (a *app) jobs(ctx context.Context, args []string) error {
	fs := a.flags("jobs")
	limit := fs.Int("limit", api.DefaultJobLimit, "number of jobs to list")
	watch := fs.Bool("watch", false, "keep refreshing")
	if err := parse(fs, args); err != nil {
		return err
	}

	if *watch {
		view := dashboard.NewPoller("jobs", a.cfg.PollInterval, dashboard.MainSources(a.client, a.state, *limit)...)
		return a.watch(ctx, view, func(w io.Writer) error {
			return render.Jobs(w, a.state.Snapshot().Jobs, time.Now())
		})
	}

	jobs, err := a.client.ListJobs(ctx, *limit)
	if err != nil {
		return err
	}
	return render.Jobs(a.streams.out, jobs, time.Now())
}

func (a *app) job(ctx context.Context, args []string) error {
	fs := a.flags("job")
	if err := parse(fs, args); err != nil {
		return err
	}
	id, err := oneArg(fs, "a job id")
	if err != nil {
		return err
	}

	j, err := a.client.GetJob(ctx, id)
	if err != nil {
		return err
	}
	return render.JobDetail(a.streams.out, *j, time.Now())
}

func (a *app) stats(ctx context.Context, _ []string) error {
	s, err := a.client.Stats(ctx)
	if err != nil {
		return err
	}
	return render.Stats(a.streams.out, s)
}

func (a *app) chart(ctx context.Context, args []string) error {
	fs := a.flags("chart")
	days := fs.Int("days", chart.DefaultDays, "number of days")
	if err := parse(fs, args); err != nil {
		return err
	}
	if !chart.ValidDays(*days) {
		return fmt.Errorf("%w: -days must be between 1 and %d", errUsage, chart.MaxDays)
	}

	jobs, err := a.client.ListJobs(ctx, api.DefaultJobLimit)
	if err != nil {
		return err
	}
	return render.Activity(a.streams.out, chart.Activity(jobs, time.Now(),
		chart.WithDays(*days),
		chart.WithRescrapeDate(a.rescrapeDate()),
		chart.WithLocation(time.Local),
	))
}

func (a *app) upload(ctx context.Context, args []string) error {
	fs := a.flags("upload")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("%w: upload requires a .csv file", errUsage)
	}

	// Several paths behave like a multi-file drop: the first CSV wins.
	var sel upload.Selection
	if fs.NArg() == 1 {
		if err := sel.Select(fs.Arg(0)); err != nil {
			return err
		}
	} else {
		found, err := sel.SelectFirst(fs.Args())
		if err != nil {
			return err
		}
		if !found {
			return upload.ErrNotCSV
		}
		path, _ := sel.Pending()
		slog.Info("uploading first csv", "path", path, "given", fs.NArg())
	}
	return a.outcome(a.dispatcher.UploadCSV(ctx, &sel))
}

func (a *app) rescrape(ctx context.Context, args []string) error {
	fs := a.flags("rescrape")
	if err := parse(fs, args); err != nil {
		return err
	}
	target, err := oneArg(fs, "all, instagram or tiktok")
	if err != nil {
		return err
	}

	platform := strings.ToLower(target)
	if platform == "all" {
		platform = ""
	}
	return a.outcome(a.dispatcher.Rescrape(ctx, platform))
}

func jobAction(fn func(*dashboard.Dispatcher, context.Context, string) (dashboard.Result, error)) func(*app, context.Context, []string) error {
	return func(a *app, ctx context.Context, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("%w: a job id is required", errUsage)
		}
		return a.outcome(fn(a.dispatcher, ctx, args[0]))
	}
}

func (a *app) startQueue(ctx context.Context, _ []string) error {
	return a.outcome(a.dispatcher.StartQueue(ctx))
}

func (a *app) drawMain(w io.Writer) error {
	snap := a.state.Snapshot()
	now := time.Now()
	if err := render.Stats(w, snap.Stats); err != nil {
		return err
	}
	fmt.Fprintln(w)
	if err := render.Jobs(w, snap.Jobs, now); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return render.Activity(w, chart.Activity(snap.Jobs, now,
		chart.WithRescrapeDate(a.rescrapeDate()),
		chart.WithLocation(time.Local),
	))
}

func (a *app) watchMain(ctx context.Context, _ []string) error {
	return a.watch(ctx, a.mainView, a.drawMain)
}

func (a *app) drawRescraping(w io.Writer) error {
	snap := a.state.Snapshot()
	return render.Rescraping(w, snap.Rescrape, snap.Due, snap.Corrupted)
}

// watch redraws the screen after every poll round until ctx ends.
func (a *app) watch(ctx context.Context, p *dashboard.Poller, draw func(io.Writer) error) error {
	p.OnUpdate(func() {
		var buf bytes.Buffer
		if err := draw(&buf); err != nil {
			return
		}
		fmt.Fprintf(a.streams.out, "%s%s\nUpdated %s. Ctrl+C to exit.\n",
			clearScreen, buf.Bytes(), time.Now().Format(time.TimeOnly))
	})
	p.Run(ctx)
	return nil
}

func (a *app) rescraping(ctx context.Context, args []string) error {
	fs := a.flags("rescraping")
	watch := fs.Bool("watch", false, "keep refreshing")
	if err := parse(fs, args); err != nil {
		return err
	}

	if fs.NArg() == 0 {
		if *watch {
			return a.watch(ctx, a.rescrapes, a.drawRescraping)
		}
		if err := a.rescrapes.Poll(ctx); err != nil && !a.state.Snapshot().Loaded(dashboard.SourceRescrapeStats) {
			a.Notify(dashboard.Result{Action: "rescraping", Message: "Failed to load rescraping data"})
			return fmt.Errorf("%w: %w", errReported, err)
		}
		return a.drawRescraping(a.streams.out)
	}
	return a.rescrapingAction(ctx, fs.Arg(0), fs.Args()[1:])
}

func (a *app) rescrapingAction(ctx context.Context, name string, args []string) error {
	d := a.dispatcher
	switch name {
	case "populate-dates":
		need := 0
		if s, err := a.client.RescrapeStats(ctx); err == nil {
			need = s.CreatorsNeedDates
		}
		return a.outcome(d.PopulateDates(ctx, need))
	case "force-populate-dates":
		return a.outcome(d.ForcePopulateDates(ctx))
	case "schedule-daily":
		return a.outcome(d.ScheduleDaily(ctx))
	case "auto":
		fs := a.flags("auto")
		platform := fs.String("platform", "", "instagram or tiktok (default both)")
		maxCreators := fs.Int("max", 100, "maximum creators to rescrape")
		if err := parse(fs, args); err != nil {
			return err
		}
		req := api.AutoRescrapeRequest{Platform: strings.ToLower(*platform), MaxCreators: *maxCreators}
		if err := req.Validate(); err != nil {
			return err
		}
		return a.outcome(d.StartAutoRescrape(ctx, req))
	case "overdue":
		return a.outcome(d.StartOverdueOnly(ctx))
	case "todays-batch":
		return a.outcome(d.StartTodaysBatch(ctx))
	case "fix-corrupted":
		count := 0
		if cc, err := a.client.CorruptedCreators(ctx); err == nil {
			count = cc.Count()
		}
		return a.outcome(d.FixCorruptedCreators(ctx, count))
	case "debug":
		report, res, err := d.Debug(ctx)
		if err != nil {
			return a.outcome(res, err)
		}
		return render.Dump(a.streams.out, report.Raw)
	case "test-distribution":
		report, res, err := d.TestDistribution(ctx)
		if err != nil {
			return a.outcome(res, err)
		}
		return render.Dump(a.streams.out, report.Raw)
	default:
		fmt.Fprint(a.streams.err, rescrapingActions)
		return fmt.Errorf("%w: unknown rescraping action %q", errUsage, name)
	}
}

// serve polls both views and mirrors them over HTTP until ctx ends.
func (a *app) serve(ctx context.Context, args []string) error {
	fs := a.flags("serve")
	port := fs.String("port", a.cfg.Port, "listen port")
	if err := parse(fs, args); err != nil {
		return err
	}

	pollCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan struct{}, 2)
	for _, p := range []*dashboard.Poller{a.mainView, a.rescrapes} {
		go func() {
			p.Run(pollCtx)
			done <- struct{}{}
		}()
	}

	srv := server.New(pollCtx, *port, a.state, a.rescrapeDate())
	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	var err error
	select {
	case <-ctx.Done():
	case err = <-errc:
	}

	cancel()
	<-done
	<-done

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		return fmt.Errorf("shutdown: %w", serr)
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
