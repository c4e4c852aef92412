package lastfm

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// UserService provides read operations on Last.fm user data.
type UserService struct {
	client *Client
}

// GetInfo fetches a user's profile, including the registration time that
// anchors how far back their charted history reaches.
func (u *UserService) GetInfo(ctx context.Context, user string) (*User, error) {
	if user == "" {
		return nil, fmt.Errorf("lastfm: user is required")
	}

	body, err := u.client.call(ctx, "user.getInfo", map[string]string{
		"user": user,
	})
	if err != nil {
		return nil, err
	}

	var raw rawUserResponse
	if err := unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse user response: %w", err)
	}

	return &User{
		Name:       raw.User.Name,
		RealName:   raw.User.RealName,
		URL:        raw.User.URL,
		Registered: time.Unix(int64(raw.User.Registered.UnixTime), 0).UTC(),
		PlayCount:  int64(raw.User.PlayCount),
	}, nil
}

// GetWeeklyChartList fetches the service's list of available weekly chart
// windows for a user, ordered oldest first. The final entry's To bound is
// the latest point for which charted data exists.
func (u *UserService) GetWeeklyChartList(ctx context.Context, user string) ([]WeeklyChart, error) {
	if user == "" {
		return nil, fmt.Errorf("lastfm: user is required")
	}

	body, err := u.client.call(ctx, "user.getWeeklyChartList", map[string]string{
		"user": user,
	})
	if err != nil {
		return nil, err
	}

	var raw rawChartListResponse
	if err := unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse chart list response: %w", err)
	}

	charts := make([]WeeklyChart, 0, len(raw.WeeklyChartList.Chart))
	for _, c := range raw.WeeklyChartList.Chart {
		charts = append(charts, WeeklyChart{
			From: int64(c.From),
			To:   int64(c.To),
		})
	}

	return charts, nil
}

// GetWeeklyTrackChart fetches the track chart for an arbitrary window.
// Despite the "weekly" name the API accepts any from/to pair, which is
// what makes calendar-month aggregation possible.
func (u *UserService) GetWeeklyTrackChart(ctx context.Context, user string, from, to int64) (*WeeklyTrackChart, error) {
	if user == "" {
		return nil, fmt.Errorf("lastfm: user is required")
	}

	body, err := u.client.call(ctx, "user.getWeeklyTrackChart", map[string]string{
		"user": user,
		"from": strconv.FormatInt(from, 10),
		"to":   strconv.FormatInt(to, 10),
	})
	if err != nil {
		return nil, err
	}

	var raw rawTrackChartResponse
	if err := unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse track chart response: %w", err)
	}

	chart := &WeeklyTrackChart{
		From: int64(raw.WeeklyTrackChart.Attr.From),
		To:   int64(raw.WeeklyTrackChart.Attr.To),
	}
	for _, t := range raw.WeeklyTrackChart.Track {
		chart.Tracks = append(chart.Tracks, t.toChartTrack())
	}

	return chart, nil
}

// TopTrackForWindow returns the top track within [from, to), or nil when
// the user had no listening activity in the window.
func (u *UserService) TopTrackForWindow(ctx context.Context, user string, from, to int64) (*ChartTrack, error) {
	chart, err := u.GetWeeklyTrackChart(ctx, user, from, to)
	if err != nil {
		return nil, err
	}
	if len(chart.Tracks) == 0 {
		return nil, nil
	}
	top := chart.Tracks[0]
	return &top, nil
}
