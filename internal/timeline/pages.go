package timeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/foxtrapper121/timewarp/pkg/lastfm"
	"github.com/rs/zerolog"
)

// DefaultPageSize is the number of month windows resolved per page.
const DefaultPageSize = 14

// Page is one batch of month windows.
type Page struct {
	Index   int
	Windows []MonthWindow
}

// FetchedMonth is the result of resolving one window. TopTrack is nil
// for months without listening activity, which is a valid outcome.
type FetchedMonth struct {
	Window   MonthWindow
	TopTrack *lastfm.ChartTrack
}

// PageResult is one served page. Next is nil once the final page has
// been served, terminating incremental consumption.
type PageResult struct {
	Data []FetchedMonth
	Next *int
}

// TrackSource resolves the top track for a single window.
type TrackSource interface {
	TopTrackForWindow(ctx context.Context, user string, from, to int64) (*lastfm.ChartTrack, error)
}

// Chunk partitions windows into pages in order. The last page may be
// shorter than pageSize. A non-positive pageSize falls back to
// DefaultPageSize.
func Chunk(windows []MonthWindow, pageSize int) []Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var pages []Page
	for start := 0; start < len(windows); start += pageSize {
		end := start + pageSize
		if end > len(windows) {
			end = len(windows)
		}
		pages = append(pages, Page{
			Index:   len(pages),
			Windows: windows[start:end],
		})
	}

	return pages
}

// Aggregator serves pages of monthly top tracks for one user, in
// strictly increasing page order driven by the caller's cursor.
type Aggregator struct {
	source TrackSource
	user   string
	pages  []Page
	logger zerolog.Logger
}

// NewAggregator chunks the given windows and prepares an aggregator
// for the user.
func NewAggregator(source TrackSource, user string, windows []MonthWindow, pageSize int, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		source: source,
		user:   user,
		pages:  Chunk(windows, pageSize),
		logger: logger.With().Str("component", "aggregator").Logger(),
	}
}

// PageCount returns the total number of pages.
func (a *Aggregator) PageCount() int {
	return len(a.pages)
}

// FetchPage resolves every window of the requested page concurrently and
// reassembles the results in window order regardless of completion order.
//
// A failed per-window fetch fails the whole page. Degrading failed
// windows to "absent" would be the friendlier policy, but fail-fast is
// the established contract and callers rely on it to distinguish "quiet
// month" from "fetch failed".
func (a *Aggregator) FetchPage(ctx context.Context, index int) (*PageResult, error) {
	if index < 0 || index >= len(a.pages) {
		return nil, fmt.Errorf("page index %d out of range [0, %d)", index, len(a.pages))
	}

	page := a.pages[index]
	a.logger.Debug().
		Int("page", index).
		Int("windows", len(page.Windows)).
		Msg("Fetching page")

	data := make([]FetchedMonth, len(page.Windows))
	errs := make([]error, len(page.Windows))

	var wg sync.WaitGroup
	for i, window := range page.Windows {
		wg.Add(1)
		go func(i int, window MonthWindow) {
			defer wg.Done()
			track, err := a.source.TopTrackForWindow(ctx, a.user, window.From, window.To)
			if err != nil {
				errs[i] = err
				return
			}
			data[i] = FetchedMonth{Window: window, TopTrack: track}
		}(i, window)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", page.Windows[i].Label(), err)
		}
	}

	result := &PageResult{Data: data}
	if index+1 < len(a.pages) {
		next := index + 1
		result.Next = &next
	}

	return result, nil
}
