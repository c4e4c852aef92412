package spotify

import (
	"context"
	"fmt"
	"net/url"
)

// SearchTrack looks up a track by name and artist, returning the best
// match or nil when the catalog has nothing. Used to decorate Last.fm
// history entries with artwork and playable URIs.
func (c *Client) SearchTrack(ctx context.Context, token, name, artist string) (*Track, error) {
	query := url.Values{}
	query.Set("type", "track")
	query.Set("limit", "1")
	query.Set("q", fmt.Sprintf("track:%s artist:%s", name, artist))

	var resp struct {
		Tracks struct {
			Items []Track `json:"items"`
		} `json:"tracks"`
	}
	if _, err := c.get(ctx, "/search", query, token, &resp); err != nil {
		return nil, err
	}

	if len(resp.Tracks.Items) == 0 {
		return nil, nil
	}
	track := resp.Tracks.Items[0]
	return &track, nil
}
