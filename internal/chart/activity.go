// Package chart aggregates completed jobs into the daily creator activity
// series shown under the jobs table.
package chart

import (
	"time"

	"github.com/ahmethakanbesel/scraper-dashboard/internal/job"
)

const (
	// DefaultDays is the width of the activity window.
	DefaultDays = 7
	// MaxDays bounds a caller-chosen window.
	MaxDays = 90

	dayKey = time.DateOnly
)

// ValidDays reports whether n is an accepted window width.
func ValidDays(n int) bool { return n >= 1 && n <= MaxDays }

// DateField names the job timestamp a rescrape job is bucketed by.
type DateField string

const (
	CreatedAt DateField = "created_at"
	UpdatedAt DateField = "updated_at"
)

type Day struct {
	Date      time.Time `json:"date"`
	Added     int       `json:"added"`
	NotAdded  int       `json:"not_added"`
	Rescraped int       `json:"rescraped"`
}

func (d Day) Total() int { return d.Added + d.NotAdded + d.Rescraped }

type options struct {
	days         int
	rescrapeDate DateField
	loc          *time.Location
}

// Option configures Activity.
type Option func(*options)

// WithDays sets the number of days in the window.
func WithDays(n int) Option {
	return func(o *options) { o.days = n }
}

// WithRescrapeDate selects which timestamp buckets rescrape jobs. Anything
// other than CreatedAt means UpdatedAt.
func WithRescrapeDate(f DateField) Option {
	return func(o *options) { o.rescrapeDate = f }
}

// WithLocation sets the zone calendar days are cut in. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(o *options) { o.loc = loc }
}

// Activity buckets completed jobs into the last days ending today. Every
// day in the window is present, oldest first, even when empty.
func Activity(jobs []job.Job, now time.Time, opts ...Option) []Day {
	o := options{days: DefaultDays, rescrapeDate: UpdatedAt, loc: time.UTC}
	for _, fn := range opts {
		fn(&o)
	}

	window := LastDays(now, o.days, o.loc)
	out := make([]Day, len(window))
	index := make(map[string]int, len(window))
	for i, d := range window {
		out[i] = Day{Date: d}
		index[d.Format(dayKey)] = i
	}

	for _, j := range jobs {
		if j.Status != job.StatusCompleted || j.Results == nil {
			continue
		}
		ts := j.CreatedAt.Time
		if j.Type.IsRescrape() && o.rescrapeDate != CreatedAt {
			ts = j.UpdatedAt.Time
		}
		if ts.IsZero() {
			continue
		}
		i, ok := index[ts.In(o.loc).Format(dayKey)]
		if !ok {
			continue
		}

		r := j.Results
		switch {
		case j.Type == job.TypeNewCreators:
			out[i].Added += len(r.Added)
			out[i].NotAdded += len(r.Failed) + len(r.Filtered) + len(r.Skipped)
		case j.Type.IsRescrape():
			out[i].Rescraped += len(r.Updated)
		}
	}
	return out
}
