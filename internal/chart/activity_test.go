package chart

import (
	"testing"
	"time"

	"github.com/ahmethakanbesel/scraper-dashboard/internal/job"
)

var now = time.Date(2024, 5, 7, 15, 30, 0, 0, time.UTC)

func ts(month, day, hour int) job.Timestamp {
	return job.NewTimestamp(time.Date(2024, time.Month(month), day, hour, 0, 0, 0, time.UTC))
}

func TestLastDays(t *testing.T) {
	days := LastDays(now, 7, time.UTC)
	if len(days) != 7 {
		t.Fatalf("len = %d, want 7", len(days))
	}
	if !days[0].Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first = %v", days[0])
	}
	if !days[6].Equal(time.Date(2024, 5, 7, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("last = %v", days[6])
	}
	if LastDays(now, 0, time.UTC) != nil {
		t.Error("expected nil for zero days")
	}
}

func TestLastDays_AcrossMonth(t *testing.T) {
	days := LastDays(time.Date(2024, 3, 2, 1, 0, 0, 0, time.UTC), 3, time.UTC)
	want := []string{"2024-02-29", "2024-03-01", "2024-03-02"}
	for i, d := range days {
		if d.Format(time.DateOnly) != want[i] {
			t.Errorf("day %d = %s, want %s", i, d.Format(time.DateOnly), want[i])
		}
	}
}

func TestActivity_EmptyWindow(t *testing.T) {
	out := Activity(nil, now)
	if len(out) != DefaultDays {
		t.Fatalf("expected %d buckets, got %d", DefaultDays, len(out))
	}
	for i := 1; i < len(out); i++ {
		if !out[i].Date.After(out[i-1].Date) {
			t.Fatalf("buckets not oldest to newest at %d", i)
		}
	}
	for _, d := range out {
		if d.Total() != 0 {
			t.Errorf("expected empty bucket, got %+v", d)
		}
	}
}

func TestActivity_Aggregates(t *testing.T) {
	jobs := []job.Job{
		{
			Type: job.TypeNewCreators, Status: job.StatusCompleted,
			CreatedAt: ts(5, 6, 9), UpdatedAt: ts(5, 7, 9),
			Results: &job.Results{
				Added:    []string{"a", "b"},
				Failed:   []string{"c"},
				Filtered: []string{"d"},
				Skipped:  []string{"e", "f"},
			},
		},
		{
			Type: job.TypeRescrapeAll, Status: job.StatusCompleted,
			CreatedAt: ts(5, 5, 9), UpdatedAt: ts(5, 7, 1),
			Results: &job.Results{Updated: []string{"x", "y", "z"}},
		},
		{
			// not completed
			Type: job.TypeNewCreators, Status: job.StatusRunning,
			CreatedAt: ts(5, 7, 9),
			Results:   &job.Results{Added: []string{"q"}},
		},
		{
			// outside the window
			Type: job.TypeNewCreators, Status: job.StatusCompleted,
			CreatedAt: ts(4, 20, 9),
			Results:   &job.Results{Added: []string{"old"}},
		},
	}

	out := Activity(jobs, now)

	may6 := out[5]
	if may6.Added != 2 || may6.NotAdded != 4 {
		t.Errorf("May 6 = %+v, want added 2, not added 4", may6)
	}
	may7 := out[6]
	if may7.Rescraped != 3 || may7.Added != 0 {
		t.Errorf("May 7 = %+v, want rescraped 3", may7)
	}
	if out[4].Total() != 0 {
		t.Errorf("May 5 should be empty by default, got %+v", out[4])
	}
}

func TestActivity_RescrapeByCreatedAt(t *testing.T) {
	jobs := []job.Job{{
		Type: job.TypeRescrapePlatform, Status: job.StatusCompleted,
		CreatedAt: ts(5, 5, 9), UpdatedAt: ts(5, 7, 1),
		Results: &job.Results{Updated: []string{"x"}},
	}}

	out := Activity(jobs, now, WithRescrapeDate(CreatedAt))
	if out[4].Rescraped != 1 {
		t.Errorf("expected rescrape bucketed on May 5, got %+v", out)
	}
	if out[6].Rescraped != 0 {
		t.Errorf("May 7 should be empty, got %+v", out[6])
	}
}

func TestActivity_MissingResults(t *testing.T) {
	jobs := []job.Job{
		{Type: job.TypeNewCreators, Status: job.StatusCompleted, CreatedAt: ts(5, 7, 9)},
		{Type: job.TypeRescrapeAll, Status: job.StatusCompleted, UpdatedAt: ts(5, 7, 9)},
	}
	for _, d := range Activity(jobs, now) {
		if d.Total() != 0 {
			t.Errorf("jobs without results must contribute nothing, got %+v", d)
		}
	}
}

func TestActivity_Location(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	jobs := []job.Job{{
		Type: job.TypeNewCreators, Status: job.StatusCompleted,
		CreatedAt: ts(5, 6, 22), // 01:00 on May 7 in UTC+3
		Results:   &job.Results{Added: []string{"a"}},
	}}

	out := Activity(jobs, now, WithLocation(loc))
	if out[6].Added != 1 {
		t.Errorf("expected job on the last day in UTC+3, got %+v", out)
	}
}

func TestValidDays(t *testing.T) {
	for n, want := range map[int]bool{-1: false, 0: false, 1: true, 7: true, 90: true, 91: false} {
		if got := ValidDays(n); got != want {
			t.Errorf("ValidDays(%d) = %v, want %v", n, got, want)
		}
	}
}
