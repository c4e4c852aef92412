// Package player mirrors the remote Spotify player: a poller keeps a
// local snapshot of the playback state fresh, and a controller issues
// playback commands against it.
package player

import (
	"sync"

	"github.com/foxtrapper121/timewarp/internal/spotify"
)

// Snapshot is a point-in-time view of the remote player.
type Snapshot struct {
	Track      *spotify.Track
	IsPlaying  bool
	ProgressMs int
}

// State is the locally mirrored playback state. The poller writes it,
// the controller and any display surface read it.
type State struct {
	mu      sync.RWMutex
	current Snapshot
}

// NewState returns an empty playback state.
func NewState() *State {
	return &State{}
}

// Set replaces the whole snapshot atomically. Track, play/pause flag
// and progress always move together so a reader never observes a
// half-applied poll result.
func (s *State) Set(track *spotify.Track, playing bool, progressMs int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Snapshot{Track: track, IsPlaying: playing, ProgressMs: progressMs}
}

// SetPlaying flips only the play/pause flag, leaving track and progress
// untouched. Used for optimistic command feedback before the next poll
// confirms.
func (s *State) SetPlaying(playing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.IsPlaying = playing
}

// Clear resets the state to empty.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Snapshot{}
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}
