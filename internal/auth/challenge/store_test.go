package challenge

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-webauthn/webauthn/webauthn"
)

func newTestStore(ttl time.Duration, start time.Time) (*Store, *time.Time) {
	store := NewStore(ttl)
	current := start
	store.now = func() time.Time { return current }
	return store, &current
}

func TestRedeemSucceedsExactlyOnce(t *testing.T) {
	store, _ := newTestStore(5*time.Minute, time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC))
	store.Issue("alice", KindLogin, webauthn.SessionData{Challenge: "challenge-1"})

	data, ok := store.Redeem("alice", KindLogin, "challenge-1")
	if !ok {
		t.Fatal("expected first redemption to succeed")
	}
	if data.Challenge != "challenge-1" {
		t.Fatalf("challenge = %q, want %q", data.Challenge, "challenge-1")
	}

	if _, ok := store.Redeem("alice", KindLogin, "challenge-1"); ok {
		t.Fatal("expected second redemption to fail")
	}
}

func TestRedeemFailsAfterTTL(t *testing.T) {
	start := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	store, clock := newTestStore(5*time.Minute, start)
	store.Issue("alice", KindLogin, webauthn.SessionData{Challenge: "challenge-1"})

	*clock = start.Add(5*time.Minute + time.Second)
	if _, ok := store.Redeem("alice", KindLogin, "challenge-1"); ok {
		t.Fatal("expected redemption after TTL to fail even with the right value")
	}
}

func TestRedeemJustBeforeTTL(t *testing.T) {
	start := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	store, clock := newTestStore(5*time.Minute, start)
	store.Issue("alice", KindLogin, webauthn.SessionData{Challenge: "challenge-1"})

	*clock = start.Add(5*time.Minute - time.Second)
	if _, ok := store.Redeem("alice", KindLogin, "challenge-1"); !ok {
		t.Fatal("expected redemption before TTL to succeed")
	}
}

func TestRedeemWrongValueConsumesChallenge(t *testing.T) {
	store, _ := newTestStore(5*time.Minute, time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC))
	store.Issue("alice", KindLogin, webauthn.SessionData{Challenge: "challenge-1"})

	if _, ok := store.Redeem("alice", KindLogin, "wrong"); ok {
		t.Fatal("expected mismatched value to fail")
	}
	if _, ok := store.Redeem("alice", KindLogin, "challenge-1"); ok {
		t.Fatal("expected challenge to be consumed by the failed attempt")
	}
}

func TestRedeemKindMismatchFails(t *testing.T) {
	store, _ := newTestStore(5*time.Minute, time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC))
	store.Issue("alice", KindRegistration, webauthn.SessionData{Challenge: "challenge-1"})

	if _, ok := store.Redeem("alice", KindLogin, "challenge-1"); ok {
		t.Fatal("expected kind mismatch to fail")
	}
}

func TestIssueReplacesOutstandingChallenge(t *testing.T) {
	store, _ := newTestStore(5*time.Minute, time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC))
	store.Issue("alice", KindLogin, webauthn.SessionData{Challenge: "old"})
	store.Issue("alice", KindLogin, webauthn.SessionData{Challenge: "new"})

	if _, ok := store.Redeem("alice", KindLogin, "old"); ok {
		t.Fatal("expected replaced challenge to be unredeemable")
	}

	store.Issue("alice", KindLogin, webauthn.SessionData{Challenge: "new"})
	if _, ok := store.Redeem("alice", KindLogin, "new"); !ok {
		t.Fatal("expected latest challenge to redeem")
	}
}

func TestRedeemUnknownSubjectFails(t *testing.T) {
	store, _ := newTestStore(5*time.Minute, time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC))
	if _, ok := store.Redeem("nobody", KindLogin, "anything"); ok {
		t.Fatal("expected unknown subject to fail")
	}
}

func TestConcurrentRedeemHasOneWinner(t *testing.T) {
	store, _ := newTestStore(5*time.Minute, time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC))
	store.Issue("alice", KindLogin, webauthn.SessionData{Challenge: "challenge-1"})

	const attempts = 32
	var wins atomic.Int32
	var start, done sync.WaitGroup
	start.Add(1)
	done.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			defer done.Done()
			start.Wait()
			if _, ok := store.Redeem("alice", KindLogin, "challenge-1"); ok {
				wins.Add(1)
			}
		}()
	}
	start.Done()
	done.Wait()

	if got := wins.Load(); got != 1 {
		t.Fatalf("winners = %d, want exactly 1", got)
	}
}

func TestSweepDropsExpiredEntries(t *testing.T) {
	start := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	store, clock := newTestStore(5*time.Minute, start)
	store.Issue("alice", KindLogin, webauthn.SessionData{Challenge: "a"})
	store.Issue("bob", KindLogin, webauthn.SessionData{Challenge: "b"})

	*clock = start.Add(2 * time.Minute)
	store.Issue("carol", KindLogin, webauthn.SessionData{Challenge: "c"})

	*clock = start.Add(6 * time.Minute)
	store.sweep()

	store.mu.Lock()
	remaining := len(store.entries)
	store.mu.Unlock()
	if remaining != 1 {
		t.Fatalf("remaining entries = %d, want 1", remaining)
	}
	if _, ok := store.Redeem("carol", KindLogin, "c"); !ok {
		t.Fatal("expected unexpired entry to survive the sweep")
	}
}
