package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ahmethakanbesel/scraper-dashboard/internal/job"
)

var typeLabels = map[job.Type]string{
	job.TypeNewCreators:      "New Creators",
	job.TypeRescrapeAll:      "Rescrape All",
	job.TypeRescrapePlatform: "Rescrape Platform",
}

func typeLabel(t job.Type) string {
	if l, ok := typeLabels[t]; ok {
		return l
	}
	return string(t)
}

// Jobs prints the jobs table. A trailing * marks jobs that can still be
// cancelled.
func Jobs(w io.Writer, jobs []job.Job, now time.Time) error {
	if len(jobs) == 0 {
		_, err := fmt.Fprintln(w, "No jobs yet\nUpload a CSV file or start a rescraping job to get started.")
		return err
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTYPE\tSTATUS\tPROGRESS\tETA\tADDED\tSKIPPED\tFAILED\tCREATED\t")
	for _, j := range jobs {
		c := j.Counts()
		eta := "-"
		if d, ok := j.ETA(now); ok {
			eta = job.FormatETA(d)
		}
		status := string(j.Status)
		if j.Cancellable() {
			status += " *"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\t\n",
			shortID(j.ID), typeLabel(j.Type), status, progress(j), eta,
			c.Added, c.Skipped, c.Failed+c.Filtered, formatTime(j.CreatedAt.Time),
		)
	}
	return tw.Flush()
}

func progress(j job.Job) string {
	if j.TotalItems <= 0 {
		return fmt.Sprintf("%s %3d%%", Bar(0, 10), 0)
	}
	return fmt.Sprintf("%s %3d%% %d/%d", Bar(float64(j.Progress())/100, 10), j.Progress(), j.ProcessedItems, j.TotalItems)
}

// JobDetail prints one job with its handle lists.
func JobDetail(w io.Writer, j job.Job, now time.Time) error {
	heading(w, "Job "+j.ID)

	tw := newTable(w)
	fmt.Fprintf(tw, "Type:\t%s\n", typeLabel(j.Type))
	fmt.Fprintf(tw, "Status:\t%s\n", j.Status)
	if j.Description != "" {
		fmt.Fprintf(tw, "Description:\t%s\n", j.Description)
	}
	fmt.Fprintf(tw, "Progress:\t%s\n", progress(j))
	if d, ok := j.ETA(now); ok {
		fmt.Fprintf(tw, "ETA:\t%s\n", job.FormatETA(d))
	}
	if j.FailedItems > 0 {
		fmt.Fprintf(tw, "Failed items:\t%d\n", j.FailedItems)
	}
	fmt.Fprintf(tw, "Created:\t%s\n", formatTime(j.CreatedAt.Time))
	fmt.Fprintf(tw, "Updated:\t%s\n", formatTime(j.UpdatedAt.Time))
	if err := tw.Flush(); err != nil {
		return err
	}

	if j.ErrorMessage != "" {
		fmt.Fprintf(w, "\nError: %s\n", j.ErrorMessage)
	}

	for _, s := range j.Results.Sections() {
		fmt.Fprintf(w, "\n%s (%d)\n", s.Label, s.Total)
		fmt.Fprintf(w, "  %s\n", strings.Join(s.Preview, ", "))
		if s.More > 0 {
			fmt.Fprintf(w, "  ...and %d more\n", s.More)
		}
	}

	if j.Results != nil && j.Results.NicheStats != nil {
		if niches := j.Results.NicheStats.PrimaryNiches; len(niches) > 0 {
			fmt.Fprintln(w, "\nPrimary niches")
			tw := newTable(w)
			for _, s := range sortedCounts(niches) {
				fmt.Fprintf(tw, "  %s\t%d\n", s.Label, s.Count)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
		}
	}
	return nil
}
