package auth

import (
	"sync"
	"time"
)

// Store holds at most one live Credential and evicts it when its expiry
// passes. It performs no network calls; it is pure state plus timer
// management.
//
// Concurrent Set calls resolve last-write-wins: the later call's timer
// supersedes the earlier one's.
type Store struct {
	mu    sync.Mutex
	cred  *Credential
	timer *time.Timer
	gen   uint64 // bumped on every Set/Clear so a stale timer cannot evict a newer credential
	subs  []func()

	now func() time.Time // injectable for tests
}

// NewStore creates an empty credential store.
func NewStore() *Store {
	return &Store{now: time.Now}
}

// Set stores a new credential, cancelling any pending expiry timer and
// arming a fresh one for the credential's ExpiresAt.
func (s *Store) Set(cred Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	s.cred = &cred
	s.gen++
	gen := s.gen

	delay := cred.ExpiresAt.Sub(s.now())
	if delay < 0 {
		delay = 0
	}
	s.timer = time.AfterFunc(delay, func() { s.expire(gen) })
}

// Get returns a copy of the current credential, or nil when the store
// is empty.
func (s *Store) Get() *Credential {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cred == nil {
		return nil
	}
	cred := *s.cred
	return &cred
}

// Clear drops the credential and cancels the expiry timer. Clearing an
// empty store is a no-op. Explicit clears do not notify expiry
// subscribers; only the timer firing does.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *Store) clearLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.cred = nil
	s.gen++
}

// OnExpire registers a callback invoked when a credential is evicted by
// its expiry timer. Each eviction notifies each subscriber exactly once.
func (s *Store) OnExpire(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// expire is the timer callback.
func (s *Store) expire(gen uint64) {
	s.mu.Lock()
	if s.cred == nil || gen != s.gen {
		// A Set or Clear raced the timer; nothing to evict.
		s.mu.Unlock()
		return
	}
	s.clearLocked()
	subs := make([]func(), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}
