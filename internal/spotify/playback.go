package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Artist is a track's credited artist.
type Artist struct {
	Name string `json:"name"`
}

// Image is album artwork at one size.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// Album carries the fields the player surface needs.
type Album struct {
	Name   string  `json:"name"`
	Images []Image `json:"images"`
}

// Track is a playable Spotify track.
type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	URI        string   `json:"uri"`
	DurationMs int      `json:"duration_ms"`
	Artists    []Artist `json:"artists"`
	Album      Album    `json:"album"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
}

// CurrentlyPlaying mirrors the remote player's state.
type CurrentlyPlaying struct {
	Item       *Track `json:"item"`
	IsPlaying  bool   `json:"is_playing"`
	ProgressMs int    `json:"progress_ms"`
}

// Device is a connected playback device.
type Device struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"is_active"`
}

// CurrentlyPlaying fetches the remote player's current state. A nil
// result with a nil error means nothing is playing (the endpoint
// answers 204 in that case).
func (c *Client) CurrentlyPlaying(ctx context.Context, token string) (*CurrentlyPlaying, error) {
	query := url.Values{}
	query.Set("market", "from_token")

	var state CurrentlyPlaying
	ok, err := c.get(ctx, "/me/player/currently-playing", query, token, &state)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &state, nil
}

// Devices lists the user's connected playback devices.
func (c *Client) Devices(ctx context.Context, token string) ([]Device, error) {
	var resp struct {
		Devices []Device `json:"devices"`
	}
	if _, err := c.get(ctx, "/me/player/devices", nil, token, &resp); err != nil {
		return nil, err
	}
	return resp.Devices, nil
}

// firstDeviceID returns the first available device, or ErrNoDevice.
func (c *Client) firstDeviceID(ctx context.Context, token string) (string, error) {
	devices, err := c.Devices(ctx, token)
	if err != nil {
		return "", err
	}
	if len(devices) == 0 {
		return "", ErrNoDevice
	}
	return devices[0].ID, nil
}

// PlayTrack starts playback of the given track URI from the top on the
// first available device. A 403 from the play endpoint is surfaced as
// ErrPlaybackForbidden since it signals a subscription limitation, not
// a transport problem.
func (c *Client) PlayTrack(ctx context.Context, token, uri string) error {
	deviceID, err := c.firstDeviceID(ctx, token)
	if err != nil {
		return err
	}

	query := url.Values{}
	query.Set("device_id", deviceID)

	body := fmt.Sprintf(`{"uris":[%q],"position_ms":0}`, uri)
	_, status, err := c.do(ctx, http.MethodPut, "/me/player/play", query, strings.NewReader(body), token)
	if err != nil {
		if status == http.StatusForbidden {
			return fmt.Errorf("%w: %s", ErrPlaybackForbidden, errMessage(err))
		}
		return fmt.Errorf("failed to start playback: %w", err)
	}
	return nil
}

// Play resumes playback on the active device.
func (c *Client) Play(ctx context.Context, token string) error {
	if _, _, err := c.do(ctx, http.MethodPut, "/me/player/play", nil, nil, token); err != nil {
		return fmt.Errorf("failed to play: %w", err)
	}
	return nil
}

// Pause pauses playback on the active device.
func (c *Client) Pause(ctx context.Context, token string) error {
	if _, _, err := c.do(ctx, http.MethodPut, "/me/player/pause", nil, nil, token); err != nil {
		return fmt.Errorf("failed to pause: %w", err)
	}
	return nil
}

// SkipNext advances to the next track.
func (c *Client) SkipNext(ctx context.Context, token string) error {
	if _, _, err := c.do(ctx, http.MethodPost, "/me/player/next", nil, nil, token); err != nil {
		return fmt.Errorf("failed to skip to next track: %w", err)
	}
	return nil
}

// SkipPrevious returns to the previous track.
func (c *Client) SkipPrevious(ctx context.Context, token string) error {
	if _, _, err := c.do(ctx, http.MethodPost, "/me/player/previous", nil, nil, token); err != nil {
		return fmt.Errorf("failed to skip to previous track: %w", err)
	}
	return nil
}

// errMessage extracts the API message from an error when present.
func errMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
