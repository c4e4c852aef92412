package player

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/foxtrapper121/timewarp/internal/auth"
	"github.com/foxtrapper121/timewarp/internal/spotify"
)

// DefaultInterval is the polling cadence against the remote player.
const DefaultInterval = 1 * time.Second

// maxConsecutiveFailures is the failure budget before the poller halts.
// A single flaky poll is tolerated; two in a row means the player is
// unreachable and hammering it further helps nobody.
const maxConsecutiveFailures = 2

// ErrHalted is returned by Run after consecutive poll failures exhaust
// the budget.
var ErrHalted = errors.New("player: polling halted after consecutive failures")

// Client is the slice of the Spotify API the player needs.
type Client interface {
	CurrentlyPlaying(ctx context.Context, token string) (*spotify.CurrentlyPlaying, error)
	PlayTrack(ctx context.Context, token, uri string) error
	Play(ctx context.Context, token string) error
	Pause(ctx context.Context, token string) error
	SkipNext(ctx context.Context, token string) error
	SkipPrevious(ctx context.Context, token string) error
}

// Poller refreshes the local playback state at a fixed cadence while a
// credential is present.
type Poller struct {
	client   Client
	creds    *auth.Store
	state    *State
	interval time.Duration
	logger   zerolog.Logger

	failures int
}

// NewPoller creates a poller over the given client and credential
// store. A non-positive interval falls back to DefaultInterval.
func NewPoller(client Client, creds *auth.Store, state *State, interval time.Duration, logger zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		client:   client,
		creds:    creds,
		state:    state,
		interval: interval,
		logger:   logger.With().Str("component", "poller").Logger(),
	}
}

// Run polls until the context is cancelled, the credential disappears,
// or the failure budget is spent. The token is re-read from the store
// on every poll so an eviction takes effect at the next tick. Returns
// nil on sign-out, ErrHalted on repeated failures, and the context's
// error on cancellation.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info().
		Dur("interval", p.interval).
		Msg("Starting playback poller")

	// A restart begins with a clean failure budget; an earlier halt must
	// not carry over.
	p.failures = 0

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Poll immediately on start
	if stop, err := p.poll(ctx); stop {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("Playback poller stopped")
			return ctx.Err()
		case <-ticker.C:
			stop, err := p.poll(ctx)
			if stop {
				return err
			}
			// A slow poll may have left a tick queued. Drop it so
			// two polls never run back to back.
			select {
			case <-ticker.C:
			default:
			}
		}
	}
}

// poll performs one refresh. It reports whether the loop should stop
// and with what error.
func (p *Poller) poll(ctx context.Context) (bool, error) {
	cred := p.creds.Get()
	if cred == nil {
		p.logger.Info().Msg("No credential, stopping poller")
		p.state.Clear()
		return true, nil
	}

	playing, err := p.client.CurrentlyPlaying(ctx, cred.AccessToken)
	if err != nil {
		if ctx.Err() != nil {
			return true, ctx.Err()
		}
		if spotify.IsTokenExpired(err) {
			p.logger.Info().Msg("Access token expired, clearing credential")
			p.creds.Clear()
			p.state.Clear()
			return true, nil
		}

		p.failures++
		p.logger.Debug().
			Err(err).
			Int("consecutive_failures", p.failures).
			Msg("Poll failed")
		if p.failures >= maxConsecutiveFailures {
			p.logger.Error().
				Int("failures", p.failures).
				Msg("Halting playback poller")
			return true, ErrHalted
		}
		return false, nil
	}

	p.failures = 0
	if playing == nil {
		p.state.Set(nil, false, 0)
		return false, nil
	}

	p.state.Set(playing.Item, playing.IsPlaying, playing.ProgressMs)
	return false, nil
}
