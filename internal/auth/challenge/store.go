// Package challenge holds single-use WebAuthn ceremony challenges.
//
// The store is intentionally ephemeral: a process restart drops every
// outstanding challenge and clients restart the ceremony from the options
// step. Nothing here is ever persisted.
package challenge

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"

	"github.com/go-webauthn/webauthn/webauthn"
)

// Kind names the ceremony a challenge belongs to.
type Kind string

const (
	// KindRegistration marks a credential-creation ceremony.
	KindRegistration Kind = "registration"
	// KindLogin marks an assertion ceremony.
	KindLogin Kind = "login"
)

type entry struct {
	kind      Kind
	data      webauthn.SessionData
	expiresAt time.Time
}

// Store keeps at most one outstanding challenge per subject, bound by a
// fixed TTL. All access is serialized by a single mutex, which makes
// Redeem linearizable: of any number of concurrent redemptions against
// the same challenge, exactly one succeeds.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewStore creates an empty challenge store with the given TTL.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Issue stores ceremony session data for a subject, replacing any prior
// outstanding challenge. The replaced challenge becomes unredeemable.
func (s *Store) Issue(subject string, kind Kind, data webauthn.SessionData) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[subject] = entry{
		kind:      kind,
		data:      data,
		expiresAt: s.now().Add(s.ttl),
	}
}

// Redeem consumes the outstanding challenge for a subject.
//
// The presented value must equal the stored challenge exactly, the kinds
// must match, and the entry must not have expired. Any attempt against an
// existing entry consumes it, success or not, so a failed guess cannot be
// followed by a second try against the same challenge. Callers get a bare
// boolean; the reasons are deliberately indistinguishable.
func (s *Store) Redeem(subject string, kind Kind, presented string) (webauthn.SessionData, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.entries[subject]
	if !ok {
		return webauthn.SessionData{}, false
	}
	delete(s.entries, subject)

	if stored.kind != kind {
		return webauthn.SessionData{}, false
	}
	if !s.now().Before(stored.expiresAt) {
		return webauthn.SessionData{}, false
	}
	if subtle.ConstantTimeCompare([]byte(stored.data.Challenge), []byte(presented)) != 1 {
		return webauthn.SessionData{}, false
	}
	return stored.data, true
}

// StartCleanup sweeps expired challenges until the context ends.
//
// Entries are also checked on redemption, so the sweep only bounds memory
// held by abandoned ceremonies.
func (s *Store) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

func (s *Store) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for subject, stored := range s.entries {
		if !now.Before(stored.expiresAt) {
			delete(s.entries, subject)
		}
	}
}
