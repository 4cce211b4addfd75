// Package render prints dashboard state as plain text for the terminal.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ahmethakanbesel/scraper-dashboard/internal/dashboard"
)

const (
	timeLayout = "2006-01-02 15:04"
	barWidth   = 20
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// Bar draws frac (clamped to [0, 1]) as a fixed-width bar.
func Bar(frac float64, width int) string {
	frac = min(max(frac, 0), 1)
	filled := int(frac*float64(width) + 0.5)
	return strings.Repeat("#", filled) + strings.Repeat(".", width-filled)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Notice prints an action outcome as a single line.
func Notice(w io.Writer, r dashboard.Result) {
	switch {
	case r.Declined:
		fmt.Fprintf(w, "- %s cancelled\n", r.Action)
	case r.OK:
		fmt.Fprintf(w, "✓ %s\n", r.Message)
	default:
		fmt.Fprintf(w, "✗ %s\n", r.Message)
	}
}

// Dump pretty-prints a diagnostic payload.
func Dump(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("render dump: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", b)
	return err
}

func heading(w io.Writer, title string) {
	fmt.Fprintf(w, "%s\n%s\n", title, strings.Repeat("=", len(title)))
}
