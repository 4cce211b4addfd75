package job

import (
	"fmt"
	"math"
	"time"
)

// PreviewLimit is how many handles a result section lists before
// collapsing the rest into a count.
const PreviewLimit = 5

// Progress returns completion as a whole percentage. Jobs without a
// total report 0.
func (j Job) Progress() int {
	if j.TotalItems <= 0 {
		return 0
	}
	return int(math.Round(float64(j.ProcessedItems) / float64(j.TotalItems) * 100))
}

// ETA extrapolates the remaining run time from the average time per
// processed item since creation. It is only defined for running jobs
// that have processed at least one item.
func (j Job) ETA(now time.Time) (time.Duration, bool) {
	if j.Status != StatusRunning || j.TotalItems <= 0 || j.ProcessedItems <= 0 {
		return 0, false
	}
	elapsed := now.Sub(j.CreatedAt.Time)
	if elapsed <= 0 {
		return 0, false
	}
	remaining := max(j.TotalItems-j.ProcessedItems, 0)
	perItem := elapsed / time.Duration(j.ProcessedItems)
	return perItem * time.Duration(remaining), true
}

func FormatETA(d time.Duration) string {
	minutes := int(math.Round(d.Minutes()))
	switch {
	case minutes < 1:
		return "< 1 min"
	case minutes < 60:
		return fmt.Sprintf("%d min", minutes)
	default:
		return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
	}
}

// Cancellable reports whether the backend accepts a cancel request.
func (j Job) Cancellable() bool {
	return j.Status == StatusPending || j.Status == StatusRunning
}

type Counts struct {
	Added    int
	Skipped  int
	Failed   int
	Filtered int
}

// Counts summarises results for the table. Added includes updated
// handles.
func (j Job) Counts() Counts {
	if j.Results == nil {
		return Counts{}
	}
	r := j.Results
	return Counts{
		Added:    len(r.Added) + len(r.Updated),
		Skipped:  len(r.Skipped),
		Failed:   len(r.Failed),
		Filtered: len(r.Filtered),
	}
}

type Section struct {
	Label   string
	Total   int
	Preview []string
	More    int
}

// Sections returns the non-empty result groups in display order.
func (r *Results) Sections() []Section {
	if r == nil {
		return nil
	}
	groups := []struct {
		label   string
		handles []string
	}{
		{"Added", r.Added},
		{"Skipped - already exists", r.Skipped},
		{"Filtered - didn't meet criteria", r.Filtered},
		{"Updated", r.Updated},
		{"Deleted - inactive", r.Deleted},
		{"Failed - API/processing errors", r.Failed},
	}

	var out []Section
	for _, g := range groups {
		if len(g.handles) == 0 {
			continue
		}
		n := min(len(g.handles), PreviewLimit)
		out = append(out, Section{
			Label:   g.label,
			Total:   len(g.handles),
			Preview: g.handles[:n],
			More:    len(g.handles) - n,
		})
	}
	return out
}
