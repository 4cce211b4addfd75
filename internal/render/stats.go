package render

import (
	"fmt"
	"io"
	"sort"

	"github.com/ahmethakanbesel/scraper-dashboard/internal/job"
	"github.com/ahmethakanbesel/scraper-dashboard/internal/stats"
)

// Stats prints the dashboard counters and the audience breakdown.
func Stats(w io.Writer, s *stats.DashboardStats) error {
	if s == nil {
		_, err := fmt.Fprintln(w, "Stats not loaded yet.")
		return err
	}

	tw := newTable(w)
	fmt.Fprintf(tw, "Total creators:\t%d\n", s.TotalCreators)
	fmt.Fprintf(tw, "Instagram:\t%d\n", s.InstagramCreators)
	fmt.Fprintf(tw, "TikTok:\t%d\n", s.TikTokCreators)
	fmt.Fprintf(tw, "Active jobs:\t%d\n", s.JobStats.Active())
	for _, st := range job.Statuses {
		fmt.Fprintf(tw, "  %s\t%d\n", st, s.JobStats.Count(st))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	b := s.Breakdown()
	suffix := ""
	if b.Approximate {
		suffix = " (approximate)"
	}
	if err := shares(w, "Niches"+suffix, b.Niches); err != nil {
		return err
	}
	if len(b.Locations) > 0 {
		return shares(w, "Locations"+suffix, b.Locations)
	}
	return nil
}

func shares(w io.Writer, title string, ss []stats.Share) error {
	fmt.Fprintf(w, "\n%s\n", title)
	total := 0
	for _, s := range ss {
		total += s.Count
	}
	tw := newTable(w)
	for _, s := range ss {
		frac := 0.0
		if total > 0 {
			frac = float64(s.Count) / float64(total)
		}
		fmt.Fprintf(tw, "  %s\t%d\t%s\n", s.Label, s.Count, Bar(frac, barWidth))
	}
	return tw.Flush()
}

func sortedCounts(m map[string]int) []stats.Share {
	out := make([]stats.Share, 0, len(m))
	for k, v := range m {
		out = append(out, stats.Share{Label: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}
