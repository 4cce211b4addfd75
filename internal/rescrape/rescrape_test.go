package rescrape

import (
	"encoding/json"
	"testing"
)

const statsPayload = `{
	"total_creators": 1400,
	"creators_need_dates": 30,
	"creators_due_rescrape": 180,
	"weekly_schedule": {
		"day_2": {"date": "2024-05-03", "day": "Friday", "estimated_creators": 120, "scheduled_time": "09:00"},
		"day_0": {"date": "2024-05-01", "day": "Wednesday", "estimated_creators": 40, "scheduled_time": "09:00", "scheduled_time_utc": "07:00", "is_today": true, "is_past_time": true},
		"day_1": {"date": "2024-05-02", "day": "Thursday", "estimated_creators": 0, "scheduled_time": "09:00"}
	},
	"recent_jobs": [{"id": "j1", "job_type": "rescrape_all", "status": "completed", "total_items": 10, "created_at": "2024-05-01T08:00:00Z"}]
}`

func TestStats_Decode(t *testing.T) {
	var s Stats
	if err := json.Unmarshal([]byte(statsPayload), &s); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if got := s.DailyAverage(); got != 30 {
		t.Errorf("DailyAverage() = %d, want 30", got)
	}

	days := s.Schedule()
	if len(days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(days))
	}
	if days[0].Day != "Wednesday" || days[2].Day != "Friday" {
		t.Errorf("schedule not ordered by date: %+v", days)
	}
	if !days[0].Overdue() {
		t.Error("expected today to be overdue")
	}
	if days[1].Overdue() {
		t.Error("non-today entries are never overdue")
	}
	if days[0].ScheduledTimeUTC != "07:00" {
		t.Errorf("ScheduledTimeUTC = %q", days[0].ScheduledTimeUTC)
	}
}

func TestScheduleDay_Load(t *testing.T) {
	tests := []struct {
		n    int
		load Load
		fill float64
	}{
		{0, LoadNone, 0},
		{50, LoadLow, 0.25},
		{51, LoadMedium, 0.255},
		{101, LoadHigh, 0.505},
		{400, LoadHigh, 1},
	}
	for _, tt := range tests {
		d := ScheduleDay{EstimatedCreators: tt.n}
		if d.Load() != tt.load {
			t.Errorf("Load(%d) = %s, want %s", tt.n, d.Load(), tt.load)
		}
		if d.Fill() != tt.fill {
			t.Errorf("Fill(%d) = %v, want %v", tt.n, d.Fill(), tt.fill)
		}
	}
}

func TestSchedule_UndatedLast(t *testing.T) {
	s := Stats{WeeklySchedule: map[string]ScheduleDay{
		"b": {Day: "Unknown"},
		"a": {Date: "2024-05-02", Day: "Thursday"},
	}}
	days := s.Schedule()
	if days[0].Day != "Thursday" || days[1].Day != "Unknown" {
		t.Errorf("expected dated entries first, got %+v", days)
	}
}

func TestCorruptedCreators_Count(t *testing.T) {
	var c CorruptedCreators
	payload := `{"corrupted_creators": [{"id": "1", "handle": "bob", "platform": "Instagram", "followers_count": 0, "issues": ["zero_metrics", "missing_niche"]}]}`
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		t.Fatal(err)
	}
	if c.Count() != 1 {
		t.Errorf("Count() = %d, want 1", c.Count())
	}
	if c.Creators[0].Issues[0] != IssueZeroMetrics {
		t.Errorf("unexpected issue %q", c.Creators[0].Issues[0])
	}

	c.Total = 42
	if c.Count() != 42 {
		t.Errorf("Count() should prefer backend total, got %d", c.Count())
	}
}

func TestDistributionReport_DueToday(t *testing.T) {
	r := DistributionReport{DueNext7Days: map[string]int{
		"2024-05-02": 9,
		"2024-05-01": 14,
	}}
	if r.DueToday() != 14 {
		t.Errorf("DueToday() = %d, want 14", r.DueToday())
	}
	if (DistributionReport{}).DueToday() != 0 {
		t.Error("expected 0 for empty report")
	}
}
