package service

import (
	"time"

	"github.com/scmhub/calendar"
)

// BusinessDaysBetween counts business days in the half-open interval
// [from, to): from counts if it is a business day, to never does. This is
// the same convention as numpy's busday_count. With a nil calendar only
// weekends are excluded; with an exchange calendar (e.g. XNYS) its
// holidays are excluded too. A to before from yields 0.
func BusinessDaysBetween(cal *calendar.Calendar, from, to time.Time) int {
	from = truncateDay(from)
	to = truncateDay(to)

	count := 0
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		if isBusinessDay(cal, d) {
			count++
		}
	}
	return count
}

func isBusinessDay(cal *calendar.Calendar, d time.Time) bool {
	if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		return false
	}
	if cal == nil {
		return true
	}
	return cal.IsBusinessDay(d)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
