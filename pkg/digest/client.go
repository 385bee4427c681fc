package digest

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
)

// Authorizer answers digest challenges on behalf of one user.
//
// It tracks the nonce count for the current challenge so repeated requests
// reuse the nonce with an increasing nc, as RFC 2617 prescribes.
type Authorizer struct {
	username string
	secret   string

	mu        sync.Mutex
	challenge Challenge
	nc        uint32
	ready     bool

	// cnonce generates client nonces; replaced in tests.
	cnonce func() string
}

// NewAuthorizer creates an Authorizer for the given credentials.
func NewAuthorizer(username, secret string) *Authorizer {
	return &Authorizer{
		username: username,
		secret:   secret,
		cnonce:   randomCNonce,
	}
}

// SetChallenge records a new challenge and resets the nonce count.
func (a *Authorizer) SetChallenge(c Challenge) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.challenge = c
	a.nc = 0
	a.ready = true
}

// Ready reports whether a challenge has been received.
func (a *Authorizer) Ready() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ready
}

// Authorize builds the Authorization header value for method and uri.
func (a *Authorizer) Authorize(method, uri string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.ready {
		return "", fmt.Errorf("digest: no challenge received")
	}

	c := &Credentials{
		Username: a.username,
		Realm:    a.challenge.Realm,
		Nonce:    a.challenge.Nonce,
		URI:      uri,
		Opaque:   a.challenge.Opaque,
	}
	if a.challenge.Algorithm != "" {
		c.Algorithm = Algorithm
	}

	ha1 := HA1(a.username, a.challenge.Realm, a.secret)
	ha2 := HA2(method, uri)
	if a.challenge.Qop == QopAuth {
		a.nc++
		c.Qop = QopAuth
		c.NC = fmt.Sprintf("%08x", a.nc)
		c.CNonce = a.cnonce()
	}
	c.Response = Response(ha1, c.Nonce, c.NC, c.CNonce, c.Qop, ha2)
	return c.String(), nil
}

func randomCNonce() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
