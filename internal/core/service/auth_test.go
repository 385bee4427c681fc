package service

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yndnr/pagegate/internal/core/domain"
	"github.com/yndnr/pagegate/pkg/digest"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	// advance so consecutive nonces differ
	c.now = c.now.Add(time.Nanosecond)
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestAuthenticator(t *testing.T, track bool, clock *fakeClock) *DigestAuthenticator {
	t.Helper()
	cfg := DefaultAuthConfig()
	cfg.Realm = "Test Realm"
	cfg.TrackNonces = track
	users := domain.NewUserStore(map[string]string{"alice": "wonderland"})
	return NewDigestAuthenticator(cfg, users, WithClock(clock.Now), WithSalt("salt"))
}

func authorize(t *testing.T, a *DigestAuthenticator, user, secret, method, uri string) (string, *digest.Authorizer) {
	t.Helper()
	az := digest.NewAuthorizer(user, secret)
	az.SetChallenge(a.Challenge())
	h, err := az.Authorize(method, uri)
	if err != nil {
		t.Fatalf("Authorize() error = %v", err)
	}
	return h, az
}

func TestDigestAuthenticator_Challenge(t *testing.T) {
	a := newTestAuthenticator(t, true, newFakeClock())

	c1 := a.Challenge()
	c2 := a.Challenge()

	if c1.Realm != "Test Realm" || c1.Qop != digest.QopAuth || c1.Algorithm != digest.Algorithm {
		t.Errorf("Challenge() = %+v", c1)
	}
	if len(c1.Nonce) != 32 {
		t.Errorf("nonce length = %d, want 32", len(c1.Nonce))
	}
	if c1.Nonce == c2.Nonce {
		t.Error("consecutive challenges reused a nonce")
	}
	if a.OutstandingNonces() != 2 {
		t.Errorf("OutstandingNonces() = %d, want 2", a.OutstandingNonces())
	}
}

func TestDigestAuthenticator_Authenticate(t *testing.T) {
	a := newTestAuthenticator(t, true, newFakeClock())

	header, _ := authorize(t, a, "alice", "wonderland", "GET", "/docs/a.html")
	if err := a.Authenticate("GET", "/docs/a.html", header); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
}

func TestDigestAuthenticator_Failures(t *testing.T) {
	a := newTestAuthenticator(t, true, newFakeClock())

	good, _ := authorize(t, a, "alice", "wonderland", "GET", "/x")
	wrongSecret, _ := authorize(t, a, "alice", "nope", "GET", "/x")
	unknown, _ := authorize(t, a, "bob", "wonderland", "GET", "/x")
	fresh, _ := authorize(t, a, "alice", "wonderland", "GET", "/x")
	wrongNC := strings.Replace(fresh, "nc=00000001", "nc=00000002", 1)
	if wrongNC == fresh {
		t.Fatalf("header carries no nc: %s", fresh)
	}

	tests := []struct {
		name    string
		method  string
		uri     string
		header  string
		wantErr *domain.DomainError
	}{
		{"no header", "GET", "/x", "", domain.ErrAuthRequired},
		{"basic scheme", "GET", "/x", "Basic YWxpY2U6d29uZGVybGFuZA==", domain.ErrAuthMalformed},
		{"missing fields", "GET", "/x", `Digest username="alice", realm="Test Realm"`, domain.ErrAuthMalformed},
		{"wrong realm", "GET", "/x", `Digest username="alice", realm="Other", nonce="n", uri="/x", response="r"`, domain.ErrAuthRealm},
		{"unknown user", "GET", "/x", unknown, domain.ErrAuthUnknownUser},
		{"wrong secret", "GET", "/x", wrongSecret, domain.ErrAuthMismatch},
		{"other method", "POST", "/x", good, domain.ErrAuthMismatch},
		{"other uri", "GET", "/y", good, domain.ErrAuthMismatch},
		{"wrong nc", "GET", "/x", wrongNC, domain.ErrAuthMismatch},
		{"unissued nonce", "GET", "/x", `Digest username="alice", realm="Test Realm", nonce="deadbeef", uri="/x", response="r"`, domain.ErrAuthStaleNonce},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := a.Authenticate(tt.method, tt.uri, tt.header)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Authenticate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDigestAuthenticator_NonceCountReplay(t *testing.T) {
	a := newTestAuthenticator(t, true, newFakeClock())

	az := digest.NewAuthorizer("alice", "wonderland")
	az.SetChallenge(a.Challenge())

	first, _ := az.Authorize("GET", "/a")
	second, _ := az.Authorize("GET", "/a")

	if err := a.Authenticate("GET", "/a", first); err != nil {
		t.Fatalf("first Authenticate() error = %v", err)
	}
	if err := a.Authenticate("GET", "/a", second); err != nil {
		t.Fatalf("second Authenticate() error = %v", err)
	}
	if err := a.Authenticate("GET", "/a", first); !errors.Is(err, domain.ErrAuthNonceReplay) {
		t.Errorf("replayed Authenticate() error = %v, want %v", err, domain.ErrAuthNonceReplay)
	}
}

func TestDigestAuthenticator_NonceExpiry(t *testing.T) {
	clock := newFakeClock()
	a := newTestAuthenticator(t, true, clock)

	header, _ := authorize(t, a, "alice", "wonderland", "GET", "/a")
	clock.Advance(6 * time.Minute)

	if err := a.Authenticate("GET", "/a", header); !errors.Is(err, domain.ErrAuthStaleNonce) {
		t.Errorf("Authenticate() error = %v, want %v", err, domain.ErrAuthStaleNonce)
	}
	if n := a.Sweep(); n != 1 {
		t.Errorf("Sweep() removed %d, want 1", n)
	}
	if a.OutstandingNonces() != 0 {
		t.Errorf("OutstandingNonces() = %d, want 0", a.OutstandingNonces())
	}
}

func TestDigestAuthenticator_NonceLimit(t *testing.T) {
	cfg := DefaultAuthConfig()
	cfg.Realm = "Test Realm"
	cfg.MaxNonces = 3
	users := domain.NewUserStore(map[string]string{"alice": "wonderland"})
	a := NewDigestAuthenticator(cfg, users, WithClock(newFakeClock().Now), WithSalt("salt"))

	oldest, _ := authorize(t, a, "alice", "wonderland", "GET", "/a")
	for i := 0; i < 1000; i++ {
		a.Challenge()
	}
	if n := a.OutstandingNonces(); n != 3 {
		t.Fatalf("OutstandingNonces() = %d, want 3", n)
	}

	if err := a.Authenticate("GET", "/a", oldest); !errors.Is(err, domain.ErrAuthStaleNonce) {
		t.Errorf("evicted nonce: Authenticate() error = %v, want %v", err, domain.ErrAuthStaleNonce)
	}
	newest, _ := authorize(t, a, "alice", "wonderland", "GET", "/a")
	if err := a.Authenticate("GET", "/a", newest); err != nil {
		t.Errorf("newest nonce: Authenticate() error = %v", err)
	}
}

func TestDigestAuthenticator_Untracked(t *testing.T) {
	a := newTestAuthenticator(t, false, newFakeClock())

	// a nonce the server never issued is accepted when tracking is off
	ha1 := digest.HA1("alice", "Test Realm", "wonderland")
	resp := digest.Response(ha1, "foreign", "", "", "", digest.HA2("GET", "/a"))
	header := `Digest username="alice", realm="Test Realm", nonce="foreign", uri="/a", response="` + resp + `"`

	if err := a.Authenticate("GET", "/a", header); err != nil {
		t.Errorf("Authenticate() error = %v", err)
	}
	if a.OutstandingNonces() != 0 {
		t.Errorf("untracked authenticator stored %d nonces", a.OutstandingNonces())
	}
}
