// Package stats holds the dashboard's aggregate counters and the
// approximate audience breakdown shown when the backend supplies none.
package stats

import (
	"sort"

	"github.com/ahmethakanbesel/scraper-dashboard/internal/job"
)

type JobStats struct {
	Pending   int `json:"pending"`
	Queued    int `json:"queued"`
	Running   int `json:"running"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Cancelled int `json:"cancelled"`
}

// Count returns the counter for s.
func (js JobStats) Count(s job.Status) int {
	switch s {
	case job.StatusPending:
		return js.Pending
	case job.StatusQueued:
		return js.Queued
	case job.StatusRunning:
		return js.Running
	case job.StatusCompleted:
		return js.Completed
	case job.StatusFailed:
		return js.Failed
	case job.StatusCancelled:
		return js.Cancelled
	}
	return 0
}

// Active is the number of jobs the backend still has to finish.
func (js JobStats) Active() int {
	return js.Pending + js.Queued + js.Running
}

type DashboardStats struct {
	TotalCreators     int       `json:"total_creators"`
	InstagramCreators int       `json:"instagram_creators"`
	TikTokCreators    int       `json:"tiktok_creators"`
	RecentJobs        []job.Job `json:"recent_jobs"`
	JobStats          JobStats  `json:"job_stats"`
}

// Share is one labelled slice of a breakdown.
type Share struct {
	Label string
	Count int
}

// Breakdown is an audience split. Approximate is set when the values were
// derived from the creator total rather than reported by the backend.
type Breakdown struct {
	Niches      []Share
	Locations   []Share
	Approximate bool
}

var (
	nicheWeights = []weight{
		{"Crypto", 0.40},
		{"Trading", 0.35},
		{"Finance", 0.25},
	}
	locationWeights = []weight{
		{"United States", 0.35},
		{"Global", 0.25},
		{"United Kingdom", 0.15},
		{"Canada", 0.12},
		{"Australia", 0.08},
		{"Other", 0.05},
	}
)

type weight struct {
	label string
	ratio float64
}

// Breakdown returns niche shares aggregated from the recent jobs' niche
// statistics. When none of them report any, it falls back to fixed ratios
// of the creator total and marks the result approximate.
func (s DashboardStats) Breakdown() Breakdown {
	if niches := reportedNiches(s.RecentJobs); len(niches) > 0 {
		return Breakdown{Niches: niches}
	}
	return Breakdown{
		Niches:      apply(nicheWeights, s.TotalCreators),
		Locations:   apply(locationWeights, s.TotalCreators),
		Approximate: true,
	}
}

func apply(ws []weight, total int) []Share {
	out := make([]Share, 0, len(ws))
	for _, w := range ws {
		out = append(out, Share{Label: w.label, Count: int(float64(total) * w.ratio)})
	}
	return out
}

func reportedNiches(jobs []job.Job) []Share {
	totals := make(map[string]int)
	for _, j := range jobs {
		if j.Results == nil || j.Results.NicheStats == nil {
			continue
		}
		for niche, n := range j.Results.NicheStats.PrimaryNiches {
			totals[niche] += n
		}
	}
	if len(totals) == 0 {
		return nil
	}

	out := make([]Share, 0, len(totals))
	for niche, n := range totals {
		out = append(out, Share{Label: niche, Count: n})
	}
	sortShares(out)
	return out
}

// sortShares orders by count descending, then label.
func sortShares(s []Share) {
	sort.Slice(s, func(i, j int) bool {
		if s[i].Count != s[j].Count {
			return s[i].Count > s[j].Count
		}
		return s[i].Label < s[j].Label
	})
}
