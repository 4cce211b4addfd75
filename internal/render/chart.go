package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/ahmethakanbesel/scraper-dashboard/internal/chart"
)

// Activity prints one stacked bar per day: + added, - not added, r
// rescraped. Bars are scaled to the busiest day.
func Activity(w io.Writer, days []chart.Day) error {
	peak := 0
	for _, d := range days {
		peak = max(peak, d.Total())
	}

	fmt.Fprintln(w, "Creator activity (+ added, - not added, r rescraped)")
	tw := newTable(w)
	for _, d := range days {
		fmt.Fprintf(tw, "%s\t%s\t%d/%d/%d\n",
			d.Date.Format("Mon 01-02"), stack(d, peak), d.Added, d.NotAdded, d.Rescraped)
	}
	return tw.Flush()
}

func stack(d chart.Day, peak int) string {
	if peak == 0 {
		return strings.Repeat(" ", barWidth)
	}
	scale := func(n int) int { return n * barWidth / peak }
	added, notAdded, rescraped := scale(d.Added), scale(d.NotAdded), scale(d.Rescraped)
	bar := strings.Repeat("+", added) + strings.Repeat("-", notAdded) + strings.Repeat("r", rescraped)
	return bar + strings.Repeat(" ", barWidth-len(bar))
}
