// Package timeline derives the calendar-month query windows for a
// listener's charted history and batches them into pages for
// incremental consumption.
package timeline

import (
	"time"
)

// MonthWindow is a half-open interval [From, To) in epoch seconds
// covering one calendar month.
type MonthWindow struct {
	From int64
	To   int64
}

// Start returns the window's start as a UTC time.
func (w MonthWindow) Start() time.Time {
	return time.Unix(w.From, 0).UTC()
}

// Label returns the window's month in "January 2006" form.
func (w MonthWindow) Label() string {
	return w.Start().Format("January 2006")
}

// Windows computes the ordered month windows to query for a user,
// most recent first.
//
// The walk starts at the calendar month immediately preceding the month
// containing latestChartEnd: the most recent month's chart data may still
// be incomplete, so it is skipped entirely. Each window's To bound is the
// start of the following month plus one second, making it an exclusive
// upper bound that covers the whole final day. Months are emitted until
// the next window's start would no longer follow registeredAt.
//
// The result is finite and deterministic. An empty result is valid: it
// means the user registered within, or after, the excluded most recent
// month.
func Windows(registeredAt, latestChartEnd int64) []MonthWindow {
	latest := time.Unix(latestChartEnd, 0).UTC()

	monthStart := time.Date(latest.Year(), latest.Month(), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, -1, 0)

	var windows []MonthWindow
	for monthStart.Unix() > registeredAt {
		windows = append(windows, MonthWindow{
			From: monthStart.Unix(),
			To:   monthStart.AddDate(0, 1, 0).Unix() + 1,
		})
		monthStart = monthStart.AddDate(0, -1, 0)
	}

	return windows
}
