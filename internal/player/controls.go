package player

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/foxtrapper121/timewarp/internal/auth"
)

// ErrNotAuthenticated means no credential is available for a playback
// command.
var ErrNotAuthenticated = errors.New("player: not authenticated, run auth first")

// Controller issues playback commands. Commands apply optimistically to
// the local state where the outcome is predictable and roll back when
// the remote call fails.
type Controller struct {
	client Client
	creds  *auth.Store
	state  *State
	logger zerolog.Logger
}

// NewController creates a playback controller.
func NewController(client Client, creds *auth.Store, state *State, logger zerolog.Logger) *Controller {
	return &Controller{
		client: client,
		creds:  creds,
		state:  state,
		logger: logger.With().Str("component", "controls").Logger(),
	}
}

func (c *Controller) token() (string, error) {
	cred := c.creds.Get()
	if cred == nil {
		return "", ErrNotAuthenticated
	}
	return cred.AccessToken, nil
}

// PlayTrack starts playback of the given track URI from the beginning.
func (c *Controller) PlayTrack(ctx context.Context, uri string) error {
	token, err := c.token()
	if err != nil {
		return err
	}

	if err := c.client.PlayTrack(ctx, token, uri); err != nil {
		return err
	}
	c.state.SetPlaying(true)
	c.logger.Debug().Str("uri", uri).Msg("Started playback")
	return nil
}

// PlayPause toggles playback. The local flag flips immediately so the
// caller sees the new state without waiting a poll cycle; a failed
// remote call flips it back.
func (c *Controller) PlayPause(ctx context.Context) error {
	token, err := c.token()
	if err != nil {
		return err
	}

	wasPlaying := c.state.Snapshot().IsPlaying
	c.state.SetPlaying(!wasPlaying)

	if wasPlaying {
		err = c.client.Pause(ctx, token)
	} else {
		err = c.client.Play(ctx, token)
	}
	if err != nil {
		c.state.SetPlaying(wasPlaying)
		return err
	}
	return nil
}

// Play resumes playback.
func (c *Controller) Play(ctx context.Context) error {
	token, err := c.token()
	if err != nil {
		return err
	}
	if err := c.client.Play(ctx, token); err != nil {
		return err
	}
	c.state.SetPlaying(true)
	return nil
}

// Pause pauses playback.
func (c *Controller) Pause(ctx context.Context) error {
	token, err := c.token()
	if err != nil {
		return err
	}
	if err := c.client.Pause(ctx, token); err != nil {
		return err
	}
	c.state.SetPlaying(false)
	return nil
}

// Next skips to the next track. The new track is unknown until the
// next poll, so no optimistic update applies.
func (c *Controller) Next(ctx context.Context) error {
	token, err := c.token()
	if err != nil {
		return err
	}
	return c.client.SkipNext(ctx, token)
}

// Previous returns to the previous track.
func (c *Controller) Previous(ctx context.Context) error {
	token, err := c.token()
	if err != nil {
		return err
	}
	return c.client.SkipPrevious(ctx, token)
}
