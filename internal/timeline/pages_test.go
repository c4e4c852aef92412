package timeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/foxtrapper121/timewarp/pkg/lastfm"
	"github.com/rs/zerolog"
)

// fakeSource resolves windows from a canned map and records call counts.
type fakeSource struct {
	tracks map[int64]*lastfm.ChartTrack // keyed by window From
	errAt  int64                        // window From that should fail (0 = never)
	calls  int32
	delay  time.Duration
}

func (f *fakeSource) TopTrackForWindow(ctx context.Context, user string, from, to int64) (*lastfm.ChartTrack, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.errAt != 0 && from == f.errAt {
		return nil, errors.New("upstream unavailable")
	}
	return f.tracks[from], nil
}

func testWindows(n int) []MonthWindow {
	// Descending months starting from May 2024, like Windows produces.
	start := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	windows := make([]MonthWindow, n)
	for i := range windows {
		monthStart := start.AddDate(0, -i, 0)
		windows[i] = MonthWindow{
			From: monthStart.Unix(),
			To:   monthStart.AddDate(0, 1, 0).Unix() + 1,
		}
	}
	return windows
}

// TestChunk verifies the partition properties: order preserved, sizes
// honored, concatenation reproduces the input.
func TestChunk(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		pageSize  int
		wantSizes []int
	}{
		{"documented scenario", 30, 14, []int{14, 14, 2}},
		{"exact multiple", 28, 14, []int{14, 14}},
		{"single short page", 5, 14, []int{5}},
		{"empty input", 0, 14, nil},
		{"default page size fallback", 20, 0, []int{14, 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			windows := testWindows(tt.total)
			pages := Chunk(windows, tt.pageSize)

			if len(pages) != len(tt.wantSizes) {
				t.Fatalf("expected %d pages, got %d", len(tt.wantSizes), len(pages))
			}

			var flattened []MonthWindow
			for i, page := range pages {
				if page.Index != i {
					t.Errorf("page %d has index %d", i, page.Index)
				}
				if len(page.Windows) != tt.wantSizes[i] {
					t.Errorf("page %d has %d windows, want %d", i, len(page.Windows), tt.wantSizes[i])
				}
				flattened = append(flattened, page.Windows...)
			}

			if len(flattened) != len(windows) {
				t.Fatalf("concatenated pages have %d windows, want %d", len(flattened), len(windows))
			}
			for i := range windows {
				if flattened[i] != windows[i] {
					t.Errorf("window %d reordered by chunking", i)
				}
			}
		})
	}
}

// TestAggregator_FetchPage_Order verifies page data lines up with window
// order even when per-window fetches complete out of order.
func TestAggregator_FetchPage_Order(t *testing.T) {
	windows := testWindows(6)
	source := &fakeSource{tracks: map[int64]*lastfm.ChartTrack{}, delay: time.Millisecond}
	for i, w := range windows {
		source.tracks[w.From] = &lastfm.ChartTrack{Name: fmt.Sprintf("track-%d", i), Rank: 1}
	}

	agg := NewAggregator(source, "foxtrapper121", windows, 6, zerolog.Nop())

	result, err := agg.FetchPage(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Data) != 6 {
		t.Fatalf("expected 6 months, got %d", len(result.Data))
	}
	for i, month := range result.Data {
		if month.Window != windows[i] {
			t.Errorf("data[%d] window mismatch", i)
		}
		if want := fmt.Sprintf("track-%d", i); month.TopTrack == nil || month.TopTrack.Name != want {
			t.Errorf("data[%d] track = %v, want %s", i, month.TopTrack, want)
		}
	}
}

// TestAggregator_FetchPage_Cursor verifies Next is nil exactly on the
// final page and out-of-range requests fail.
func TestAggregator_FetchPage_Cursor(t *testing.T) {
	windows := testWindows(30)
	source := &fakeSource{tracks: map[int64]*lastfm.ChartTrack{}}

	agg := NewAggregator(source, "foxtrapper121", windows, 14, zerolog.Nop())

	if agg.PageCount() != 3 {
		t.Fatalf("expected 3 pages, got %d", agg.PageCount())
	}

	ctx := context.Background()
	for index := 0; index < 3; index++ {
		result, err := agg.FetchPage(ctx, index)
		if err != nil {
			t.Fatalf("page %d: unexpected error: %v", index, err)
		}
		if index < 2 {
			if result.Next == nil || *result.Next != index+1 {
				t.Errorf("page %d: Next = %v, want %d", index, result.Next, index+1)
			}
		} else if result.Next != nil {
			t.Errorf("final page: Next = %d, want nil", *result.Next)
		}
	}

	if _, err := agg.FetchPage(ctx, 3); err == nil {
		t.Error("expected out-of-range error for page 3")
	}
	if _, err := agg.FetchPage(ctx, -1); err == nil {
		t.Error("expected out-of-range error for page -1")
	}
}

// TestAggregator_FetchPage_FailFast verifies a single failed window fails
// the whole page.
func TestAggregator_FetchPage_FailFast(t *testing.T) {
	windows := testWindows(4)
	source := &fakeSource{
		tracks: map[int64]*lastfm.ChartTrack{},
		errAt:  windows[2].From,
	}

	agg := NewAggregator(source, "foxtrapper121", windows, 4, zerolog.Nop())

	_, err := agg.FetchPage(context.Background(), 0)
	if err == nil {
		t.Fatal("expected page failure when one window fails")
	}
	if !strings.Contains(err.Error(), "upstream unavailable") {
		t.Errorf("expected wrapped window error, got: %v", err)
	}
	if !strings.Contains(err.Error(), windows[2].Label()) {
		t.Errorf("expected failing month in error, got: %v", err)
	}
}

// TestAggregator_FetchPage_Idempotent verifies requesting the same page
// twice returns equivalent data.
func TestAggregator_FetchPage_Idempotent(t *testing.T) {
	windows := testWindows(3)
	source := &fakeSource{tracks: map[int64]*lastfm.ChartTrack{
		windows[0].From: {Name: "a"},
		windows[1].From: {Name: "b"},
	}}

	agg := NewAggregator(source, "foxtrapper121", windows, 14, zerolog.Nop())

	ctx := context.Background()
	first, err := agg.FetchPage(ctx, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := agg.FetchPage(ctx, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first.Data) != len(second.Data) {
		t.Fatalf("page sizes differ between fetches")
	}
	for i := range first.Data {
		if first.Data[i].Window != second.Data[i].Window {
			t.Errorf("data[%d] windows differ between fetches", i)
		}
		a, b := first.Data[i].TopTrack, second.Data[i].TopTrack
		if (a == nil) != (b == nil) || (a != nil && a.Name != b.Name) {
			t.Errorf("data[%d] tracks differ between fetches", i)
		}
	}

	// Absent month stays absent, not an error.
	if first.Data[2].TopTrack != nil {
		t.Error("expected month without activity to be absent")
	}
}
