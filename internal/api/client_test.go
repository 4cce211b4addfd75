package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ahmethakanbesel/scraper-dashboard/internal/apperror"
	"github.com/ahmethakanbesel/scraper-dashboard/internal/job"
)

const testToken = "test-token-123"

// newTestServer returns a fake backend serving mux and a Client pointed at
// it that authenticates with testToken.
func newTestServer(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return New(ts.URL, WithHTTPClient(ts.Client()), WithTokenSource(StaticToken(testToken)))
}

func requireBearer(t *testing.T, r *http.Request) {
	t.Helper()
	if got := r.Header.Get("Authorization"); got != "Bearer "+testToken {
		t.Errorf("Authorization = %q", got)
	}
	if r.Header.Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLogin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("login must not send a bearer token")
		}
		var req LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Username != "admin" || req.Password != "scraper123" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, Token{AccessToken: "jwt", TokenType: "bearer"})
	})
	c := newTestServer(t, mux)

	tok, err := c.Login(context.Background(), LoginRequest{Username: "admin", Password: "scraper123"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.AccessToken != "jwt" {
		t.Errorf("AccessToken = %q", tok.AccessToken)
	}

	_, err = c.Login(context.Background(), LoginRequest{Username: "admin", Password: "wrong"})
	if apperror.CodeOf(err) != apperror.Unauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if apperror.DetailOf(err) != "Invalid credentials" {
		t.Errorf("DetailOf = %q", apperror.DetailOf(err))
	}
}

func TestLogin_RequiresFields(t *testing.T) {
	c := New("http://127.0.0.1:0")
	_, err := c.Login(context.Background(), LoginRequest{Username: "admin"})
	if apperror.CodeOf(err) != apperror.BadRequest {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestListJobs(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /jobs", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		if r.URL.Query().Get("limit") != "50" {
			t.Errorf("limit = %q, want 50", r.URL.Query().Get("limit"))
		}
		_, _ = io.WriteString(w, `[
			{"id": "a", "job_type": "new_creators", "status": "running", "description": "Process 10 creators",
			 "total_items": 10, "processed_items": 4, "created_at": "2024-05-01T10:00:00Z", "updated_at": "2024-05-01T10:01:00Z"},
			{"id": "b", "job_type": "rescrape_all", "status": "completed", "description": "",
			 "created_at": "2024-05-01T09:00:00Z", "updated_at": "2024-05-01T09:30:00Z"}
		]`)
	})
	c := newTestServer(t, mux)

	jobs, err := c.ListJobs(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].Progress() != 40 {
		t.Errorf("Progress() = %d, want 40", jobs[0].Progress())
	}
	if jobs[1].Results != nil {
		t.Error("expected nil results")
	}
}

func TestGetJob_NotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /jobs/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Job not found"})
	})
	c := newTestServer(t, mux)

	_, err := c.GetJob(context.Background(), "missing")
	if apperror.CodeOf(err) != apperror.NotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStats_MalformedJSON(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /stats", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"total_creators": "many"`)
	})
	c := newTestServer(t, mux)

	_, err := c.Stats(context.Background())
	if apperror.CodeOf(err) != apperror.Decode {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestTransportError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c := New(url)
	_, err := c.ListJobs(context.Background(), 10)
	if apperror.CodeOf(err) != apperror.Transport {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestUploadCSV(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /jobs/upload-csv", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		defer func() { _ = file.Close() }()
		if header.Filename != "creators.csv" {
			t.Errorf("filename = %q", header.Filename)
		}
		body, _ := io.ReadAll(file)
		if !strings.HasPrefix(string(body), "Usernames,Platform") {
			t.Errorf("unexpected body %q", body)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"job_id": "j1", "message": "Successfully queued job for 2 creators", "creators_count": 2,
		})
	})
	c := newTestServer(t, mux)

	res, err := c.UploadCSV(context.Background(), "creators.csv",
		strings.NewReader("Usernames,Platform\nalice,Instagram\nbob,TikTok\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.CreatorsCount != 2 || res.JobID != "j1" {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestRescrape(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /jobs/rescrape", func(w http.ResponseWriter, r *http.Request) {
		var req RescrapeRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.JobType != job.TypeRescrapePlatform || req.Platform != PlatformTikTok {
			t.Errorf("unexpected request %+v", req)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"job_id": "j2", "message": "Successfully queued rescrape_platform job", "total_items": 75,
		})
	})
	c := newTestServer(t, mux)

	res, err := c.Rescrape(context.Background(), RescrapeRequest{JobType: job.TypeRescrapePlatform, Platform: PlatformTikTok})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalItems != 75 {
		t.Errorf("TotalItems = %d", res.TotalItems)
	}
}

func TestRescrape_Validation(t *testing.T) {
	c := New("http://127.0.0.1:0")
	tests := []RescrapeRequest{
		{JobType: job.TypeRescrapePlatform},
		{JobType: job.TypeRescrapePlatform, Platform: "youtube"},
		{JobType: job.TypeNewCreators},
	}
	for _, req := range tests {
		if _, err := c.Rescrape(context.Background(), req); apperror.CodeOf(err) != apperror.BadRequest {
			t.Errorf("Rescrape(%+v) err = %v, want bad request", req, err)
		}
	}
}

func TestJobMutations(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []string
	)
	mux := http.NewServeMux()
	record := func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		mu.Lock()
		calls = append(calls, r.Method+" "+r.URL.Path)
		mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"message": "ok"})
	}
	mux.HandleFunc("DELETE /jobs/{id}", record)
	mux.HandleFunc("DELETE /jobs/{id}/remove", record)
	mux.HandleFunc("POST /jobs/{id}/resume", record)
	mux.HandleFunc("POST /jobs/{id}/trigger", record)
	mux.HandleFunc("POST /jobs/start-queue", record)
	c := newTestServer(t, mux)
	ctx := context.Background()

	steps := []func() (*ActionResult, error){
		func() (*ActionResult, error) { return c.CancelJob(ctx, "j1") },
		func() (*ActionResult, error) { return c.RemoveJob(ctx, "j1") },
		func() (*ActionResult, error) { return c.ResumeJob(ctx, "j1") },
		func() (*ActionResult, error) { return c.TriggerJob(ctx, "j1") },
		func() (*ActionResult, error) { return c.StartQueue(ctx) },
	}
	for i, step := range steps {
		if _, err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	want := []string{
		"DELETE /jobs/j1",
		"DELETE /jobs/j1/remove",
		"POST /jobs/j1/resume",
		"POST /jobs/j1/trigger",
		"POST /jobs/start-queue",
	}
	mu.Lock()
	defer mu.Unlock()
	if strings.Join(calls, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v, want %v", calls, want)
	}

	if _, err := c.CancelJob(ctx, " "); apperror.CodeOf(err) != apperror.BadRequest {
		t.Errorf("expected bad request for blank id, got %v", err)
	}
}

func TestRescrapingEndpoints(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /rescraping/stats", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"total_creators": 10, "creators_need_dates": 2, "creators_due_rescrape": 5,
			"weekly_schedule": {}, "recent_jobs": []}`)
	})
	mux.HandleFunc("GET /rescraping/due-creators", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"creators_due": [{"id": "1", "handle": "alice", "platform": "Instagram",
			"updated_at": "2024-04-20T00:00:00Z", "primary_niche": "crypto"}]}`)
	})
	mux.HandleFunc("GET /rescraping/corrupted-creators", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"corrupted_creators": [], "total_corrupted": 0}`)
	})
	mux.HandleFunc("POST /rescraping/start-auto-rescrape", func(w http.ResponseWriter, r *http.Request) {
		var req AutoRescrapeRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Platform != PlatformInstagram || req.MaxCreators != 100 {
			t.Errorf("unexpected request %+v", req)
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": "Started rescraping 100 instagram creators"})
	})
	for _, p := range []string{"populate-dates", "force-populate-dates", "schedule-daily",
		"start-overdue-only", "start-todays-batch", "fix-corrupted-creators"} {
		mux.HandleFunc("POST /rescraping/"+p, func(w http.ResponseWriter, r *http.Request) {
			requireBearer(t, r)
			writeJSON(w, http.StatusOK, map[string]any{"message": p + " done"})
		})
	}
	mux.HandleFunc("GET /rescraping/debug", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"total_creators": 10, "null_updated_at": 2, "older_than_7_days": 3, "sample": [1, 2]}`)
	})
	mux.HandleFunc("GET /rescraping/test-distribution", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"creators_due_next_7_days": {"2024-05-01": 4, "2024-05-02": 6}}`)
	})
	c := newTestServer(t, mux)
	ctx := context.Background()

	s, err := c.RescrapeStats(ctx)
	if err != nil || s.DailyAverage() != 1 {
		t.Fatalf("RescrapeStats = %+v, %v", s, err)
	}
	due, err := c.DueCreators(ctx)
	if err != nil || len(due.Creators) != 1 || due.Creators[0].Handle != "alice" {
		t.Fatalf("DueCreators = %+v, %v", due, err)
	}
	if _, err := c.CorruptedCreators(ctx); err != nil {
		t.Fatal(err)
	}
	res, err := c.StartAutoRescrape(ctx, AutoRescrapeRequest{Platform: PlatformInstagram, MaxCreators: 100})
	if err != nil || !strings.Contains(res.Message, "100 instagram") {
		t.Fatalf("StartAutoRescrape = %+v, %v", res, err)
	}

	for name, fn := range map[string]func(context.Context) (*ActionResult, error){
		"populate-dates":         c.PopulateDates,
		"force-populate-dates":   c.ForcePopulateDates,
		"schedule-daily":         c.ScheduleDaily,
		"start-overdue-only":     c.StartOverdueOnly,
		"start-todays-batch":     c.StartTodaysBatch,
		"fix-corrupted-creators": c.FixCorruptedCreators,
	} {
		res, err := fn(ctx)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if res.Message != name+" done" {
			t.Errorf("%s message = %q", name, res.Message)
		}
	}

	dbg, err := c.Debug(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if dbg.NullUpdatedAt != 2 || dbg.OlderThan7Days != 3 {
		t.Errorf("unexpected debug summary %+v", dbg)
	}
	if _, ok := dbg.Raw["sample"]; !ok {
		t.Error("expected raw payload to keep unknown fields")
	}

	dist, err := c.TestDistribution(ctx)
	if err != nil || dist.DueToday() != 4 {
		t.Fatalf("TestDistribution = %+v, %v", dist, err)
	}
}

func TestErrorDetail(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"detail": "Only CSV files are allowed"}`, "Only CSV files are allowed"},
		{`{"detail": [{"msg": "field required"}, {"msg": "value is not a valid enum"}]}`, "field required; value is not a valid enum"},
		{`{"message": "Database connection failed"}`, "Database connection failed"},
		{`Internal Server Error`, ""},
		{`<html><head><title>502 Bad Gateway</title></head><body><center>nginx</center></body></html>`, ""},
		{``, ""},
	}
	for _, tt := range tests {
		if got := errorDetail([]byte(tt.body)); got != tt.want {
			t.Errorf("errorDetail(%q) = %q, want %q", tt.body, got, tt.want)
		}
	}
}

func TestRescrape_HTMLErrorPage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /jobs/rescrape", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html><head><title>502 Bad Gateway</title></head><body><center>nginx</center></body></html>")
	})
	c := newTestServer(t, mux)

	_, err := c.Rescrape(context.Background(), RescrapeRequest{JobType: job.TypeRescrapePlatform, Platform: PlatformTikTok})
	if apperror.CodeOf(err) != apperror.Upstream {
		t.Fatalf("expected %s, got %v", apperror.Upstream, err)
	}
	if detail := apperror.DetailOf(err); detail != "" {
		t.Errorf("DetailOf = %q, want empty", detail)
	}
}

func TestContextCancelled(t *testing.T) {
	block := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("GET /jobs", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	})
	c := newTestServer(t, mux)
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ListJobs(ctx, 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestHealth(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("health should not send credentials, got %q", got)
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "healthy", "queue": 2})
	})
	c := newTestServer(t, mux)

	h, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Status != "healthy" {
		t.Errorf("Status = %q, want healthy", h.Status)
	}
	if h.Raw["queue"] != float64(2) {
		t.Errorf("Raw[queue] = %v, want 2", h.Raw["queue"])
	}
}
