package rescrape

import (
	"math"
	"sort"

	"github.com/ahmethakanbesel/scraper-dashboard/internal/job"
)

type ScheduleDay struct {
	Date              string `json:"date"`
	Day               string `json:"day"`
	EstimatedCreators int    `json:"estimated_creators"`
	ScheduledTime     string `json:"scheduled_time"`
	ScheduledTimeUTC  string `json:"scheduled_time_utc,omitempty"`
	IsToday           bool   `json:"is_today,omitempty"`
	IsPastTime        bool   `json:"is_past_time,omitempty"`
}

// Overdue reports whether today's batch time has passed. The backend
// decides what counts as past.
func (d ScheduleDay) Overdue() bool {
	return d.IsToday && d.IsPastTime
}

type Load string

const (
	LoadNone   Load = "none"
	LoadLow    Load = "low"
	LoadMedium Load = "medium"
	LoadHigh   Load = "high"
)

// maxBarCreators is the daily volume that fills the schedule bar.
const maxBarCreators = 200

func (d ScheduleDay) Load() Load {
	switch {
	case d.EstimatedCreators <= 0:
		return LoadNone
	case d.EstimatedCreators > 100:
		return LoadHigh
	case d.EstimatedCreators > 50:
		return LoadMedium
	default:
		return LoadLow
	}
}

// Fill is the schedule bar width as a fraction in [0, 1].
func (d ScheduleDay) Fill() float64 {
	if d.EstimatedCreators <= 0 {
		return 0
	}
	return math.Min(float64(d.EstimatedCreators)/maxBarCreators, 1)
}

type RecentJob struct {
	ID         string        `json:"id"`
	Type       job.Type      `json:"job_type"`
	Status     job.Status    `json:"status"`
	TotalItems int           `json:"total_items"`
	CreatedAt  job.Timestamp `json:"created_at"`
}

type Stats struct {
	TotalCreators       int                    `json:"total_creators"`
	CreatorsNeedDates   int                    `json:"creators_need_dates"`
	CreatorsDueRescrape int                    `json:"creators_due_rescrape"`
	CreatorsOverdue     int                    `json:"creators_overdue,omitempty"`
	WeeklySchedule      map[string]ScheduleDay `json:"weekly_schedule"`
	RecentJobs          []RecentJob            `json:"recent_jobs"`
}

// DailyAverage spreads the due and undated creators over a week.
func (s Stats) DailyAverage() int {
	return int(math.Round(float64(s.CreatorsDueRescrape+s.CreatorsNeedDates) / 7))
}

// Schedule returns the weekly schedule ordered by date. Entries the
// backend left undated keep their key order at the end.
func (s Stats) Schedule() []ScheduleDay {
	keys := make([]string, 0, len(s.WeeklySchedule))
	for k := range s.WeeklySchedule {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := s.WeeklySchedule[keys[i]], s.WeeklySchedule[keys[j]]
		switch {
		case a.Date == "" && b.Date == "":
			return keys[i] < keys[j]
		case a.Date == "":
			return false
		case b.Date == "":
			return true
		case a.Date != b.Date:
			return a.Date < b.Date
		}
		return keys[i] < keys[j]
	})

	days := make([]ScheduleDay, 0, len(keys))
	for _, k := range keys {
		days = append(days, s.WeeklySchedule[k])
	}
	return days
}

type DueCreator struct {
	ID           string        `json:"id"`
	Handle       string        `json:"handle"`
	Platform     string        `json:"platform"`
	UpdatedAt    job.Timestamp `json:"updated_at"`
	PrimaryNiche string        `json:"primary_niche"`
}

type DueCreators struct {
	Creators []DueCreator `json:"creators_due"`
	Total    int          `json:"total_due,omitempty"`
}

// Issue is a data-quality flag the backend attaches to a creator.
type Issue string

const (
	IssueMissingNiche Issue = "missing_niche"
	IssueZeroMetrics  Issue = "zero_metrics"
)

type CorruptedCreator struct {
	ID             string  `json:"id"`
	Handle         string  `json:"handle"`
	Platform       string  `json:"platform"`
	PrimaryNiche   string  `json:"primary_niche,omitempty"`
	FollowersCount int     `json:"followers_count"`
	Issues         []Issue `json:"issues"`
}

type CorruptedCreators struct {
	Creators []CorruptedCreator `json:"corrupted_creators"`
	Total    int                `json:"total_corrupted"`
}

// Count is the backend's total when reported, otherwise the sample size.
func (c CorruptedCreators) Count() int {
	if c.Total > 0 {
		return c.Total
	}
	return len(c.Creators)
}

// DebugReport is the diagnostic dump of /rescraping/debug. Raw keeps the
// full payload for printing.
type DebugReport struct {
	TotalCreators  int            `json:"total_creators"`
	NullUpdatedAt  int            `json:"null_updated_at"`
	OlderThan7Days int            `json:"older_than_7_days"`
	Raw            map[string]any `json:"-"`
}

// DistributionReport is the dump of /rescraping/test-distribution.
type DistributionReport struct {
	DueNext7Days map[string]int `json:"creators_due_next_7_days"`
	Raw          map[string]any `json:"-"`
}

// DueToday is the count for the earliest day in the report.
func (r DistributionReport) DueToday() int {
	if len(r.DueNext7Days) == 0 {
		return 0
	}
	keys := make([]string, 0, len(r.DueNext7Days))
	for k := range r.DueNext7Days {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return r.DueNext7Days[keys[0]]
}
