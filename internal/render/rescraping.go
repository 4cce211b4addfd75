package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/ahmethakanbesel/scraper-dashboard/internal/rescrape"
)

// Rescraping prints the scheduling view. Any of the inputs may be nil
// when its source has not loaded.
func Rescraping(w io.Writer, s *rescrape.Stats, due *rescrape.DueCreators, corrupted *rescrape.CorruptedCreators) error {
	if s == nil {
		fmt.Fprintln(w, "Rescraping data not loaded yet.")
	} else if err := rescrapeStats(w, s); err != nil {
		return err
	}

	if due != nil {
		if err := dueCreators(w, due); err != nil {
			return err
		}
	}
	if corrupted != nil {
		return corruptedCreators(w, corrupted)
	}
	return nil
}

func rescrapeStats(w io.Writer, s *rescrape.Stats) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "Total creators:\t%d\n", s.TotalCreators)
	fmt.Fprintf(tw, "Need dates:\t%d\n", s.CreatorsNeedDates)
	fmt.Fprintf(tw, "Due for rescrape:\t%d\n", s.CreatorsDueRescrape)
	if s.CreatorsOverdue > 0 {
		fmt.Fprintf(tw, "Overdue:\t%d\n", s.CreatorsOverdue)
	}
	fmt.Fprintf(tw, "Daily average:\t%d\n", s.DailyAverage())
	if err := tw.Flush(); err != nil {
		return err
	}

	schedule := s.Schedule()
	if len(schedule) > 0 {
		fmt.Fprintln(w, "\nWeekly schedule")
		tw = newTable(w)
		for _, d := range schedule {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%d\t%s\t%s\t\n",
				d.Day, d.Date, d.ScheduledTime, d.EstimatedCreators, Bar(d.Fill(), barWidth), dayMarkers(d))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if len(s.RecentJobs) > 0 {
		fmt.Fprintln(w, "\nRecent rescrape jobs")
		tw = newTable(w)
		for _, j := range s.RecentJobs {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%d\t%s\n",
				shortID(j.ID), typeLabel(j.Type), j.Status, j.TotalItems, formatTime(j.CreatedAt.Time))
		}
		return tw.Flush()
	}
	return nil
}

func dayMarkers(d rescrape.ScheduleDay) string {
	var m []string
	if d.IsToday {
		m = append(m, "TODAY")
	}
	if d.Overdue() {
		m = append(m, "OVERDUE")
	}
	if load := d.Load(); load != rescrape.LoadNone {
		m = append(m, string(load))
	}
	return strings.Join(m, " ")
}

func dueCreators(w io.Writer, due *rescrape.DueCreators) error {
	total := due.Total
	if total == 0 {
		total = len(due.Creators)
	}
	fmt.Fprintf(w, "\nCreators due (%d)\n", total)
	if len(due.Creators) == 0 {
		fmt.Fprintln(w, "  none")
		return nil
	}
	tw := newTable(w)
	for _, c := range due.Creators {
		fmt.Fprintf(tw, "  @%s\t%s\t%s\t%s\n", c.Handle, c.Platform, orDash(c.PrimaryNiche), formatTime(c.UpdatedAt.Time))
	}
	return tw.Flush()
}

func corruptedCreators(w io.Writer, cc *rescrape.CorruptedCreators) error {
	fmt.Fprintf(w, "\nCorrupted creators (%d)\n", cc.Count())
	if len(cc.Creators) == 0 {
		fmt.Fprintln(w, "  none")
		return nil
	}
	tw := newTable(w)
	for _, c := range cc.Creators {
		issues := make([]string, len(c.Issues))
		for i, is := range c.Issues {
			issues[i] = string(is)
		}
		fmt.Fprintf(tw, "  @%s\t%s\t%s\t%d\t%s\n",
			c.Handle, c.Platform, orDash(c.PrimaryNiche), c.FollowersCount, strings.Join(issues, ", "))
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
