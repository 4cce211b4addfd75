package chart

import "time"

// Midnight truncates t to the start of its calendar day in loc.
func Midnight(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// LastDays returns the n calendar days ending with the day of now, oldest
// first.
func LastDays(now time.Time, n int, loc *time.Location) []time.Time {
	if n <= 0 {
		return nil
	}
	to := Midnight(now, loc)
	from := to.AddDate(0, 0, -(n - 1))

	days := make([]time.Time, 0, n)
	for cur := from; !cur.After(to); cur = cur.AddDate(0, 0, 1) {
		days = append(days, cur)
	}
	return days
}
