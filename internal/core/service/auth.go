package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/yndnr/pagegate/internal/core/domain"
	"github.com/yndnr/pagegate/pkg/digest"
	"github.com/yndnr/pagegate/pkg/token"
)

// AuthConfig holds configuration for DigestAuthenticator.
type AuthConfig struct {
	// Realm is the protection space announced in challenges.
	Realm string

	// NonceTTL bounds how long an issued nonce is accepted (default: 5m).
	NonceTTL time.Duration

	// TrackNonces restricts accepted nonces to those issued by this process.
	// When false any syntactically valid nonce is accepted.
	TrackNonces bool

	// MaxNonces caps the tracked nonces; the oldest are evicted first.
	// 0 means DefaultMaxNonces.
	MaxNonces int
}

// DefaultMaxNonces is the default nonce table capacity.
const DefaultMaxNonces = 65536

// DefaultAuthConfig returns default configuration.
func DefaultAuthConfig() AuthConfig {
	return AuthConfig{
		Realm:       "PageGate Access",
		NonceTTL:    5 * time.Minute,
		TrackNonces: true,
		MaxNonces:   DefaultMaxNonces,
	}
}

// AuthOption configures a DigestAuthenticator.
type AuthOption func(*DigestAuthenticator)

// WithClock sets the time source used for nonces and expiry.
func WithClock(now func() time.Time) AuthOption {
	return func(a *DigestAuthenticator) { a.now = now }
}

// WithSalt fixes the nonce salt instead of a random one.
func WithSalt(salt string) AuthOption {
	return func(a *DigestAuthenticator) { a.salt = salt }
}

// DigestAuthenticator issues digest challenges and verifies Authorization
// headers against a fixed user table.
type DigestAuthenticator struct {
	realm  string
	users  *domain.UserStore
	track  bool
	ttl    time.Duration
	limit  int
	salt   string
	now    func() time.Time
	nonces *NonceTracker
}

// NewDigestAuthenticator creates a DigestAuthenticator.
func NewDigestAuthenticator(cfg AuthConfig, users *domain.UserStore, opts ...AuthOption) *DigestAuthenticator {
	if cfg.NonceTTL <= 0 {
		cfg.NonceTTL = DefaultAuthConfig().NonceTTL
	}
	if cfg.MaxNonces <= 0 {
		cfg.MaxNonces = DefaultMaxNonces
	}
	a := &DigestAuthenticator{
		realm: cfg.Realm,
		users: users,
		track: cfg.TrackNonces,
		ttl:   cfg.NonceTTL,
		limit: cfg.MaxNonces,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.salt == "" {
		a.salt = token.MustHex(16)
	}
	a.nonces = NewNonceTracker(a.ttl, a.limit, a.now)
	return a
}

// Challenge issues a fresh challenge with a new nonce.
func (a *DigestAuthenticator) Challenge() digest.Challenge {
	nonce := digest.MD5Hex(strconv.FormatInt(a.now().UnixNano(), 10) + ":" + a.realm + ":" + a.salt)
	if a.track {
		a.nonces.Issue(nonce)
	}
	return digest.NewChallenge(a.realm, nonce)
}

// Authenticate verifies the Authorization header sent with a request for
// method and uri. uri is the request target as received on the request line.
func (a *DigestAuthenticator) Authenticate(method, uri, header string) error {
	if strings.TrimSpace(header) == "" {
		return domain.ErrAuthRequired
	}

	cred, err := digest.ParseAuthorization(header)
	if err != nil {
		return domain.ErrAuthMalformed.WithCause(err)
	}
	if err := cred.Validate(); err != nil {
		return domain.ErrAuthMalformed.WithCause(err)
	}
	if cred.Algorithm != "" && !strings.EqualFold(cred.Algorithm, digest.Algorithm) {
		return domain.ErrAuthMalformed.WithDetails("unsupported algorithm " + cred.Algorithm)
	}
	if cred.Qop != "" && cred.Qop != digest.QopAuth {
		return domain.ErrAuthMalformed.WithDetails("unsupported qop " + cred.Qop)
	}
	if cred.Realm != a.realm {
		return domain.ErrAuthRealm
	}

	secret, ok := a.users.Secret(cred.Username)
	if !ok {
		return domain.ErrAuthUnknownUser
	}

	if a.track && !a.nonces.Known(cred.Nonce) {
		return domain.ErrAuthStaleNonce
	}

	ha1 := digest.HA1(cred.Username, a.realm, secret)
	ha2 := digest.HA2(method, uri)
	expected := digest.Response(ha1, cred.Nonce, cred.NC, cred.CNonce, cred.Qop, ha2)
	if !digest.Equal(expected, strings.ToLower(cred.Response)) {
		return domain.ErrAuthMismatch
	}

	if a.track {
		if err := a.nonces.Use(cred.Nonce, cred.NC); err != nil {
			return err
		}
	}
	return nil
}

// Sweep drops expired nonces.
func (a *DigestAuthenticator) Sweep() int {
	return a.nonces.Sweep()
}

// OutstandingNonces returns the number of tracked nonces.
func (a *DigestAuthenticator) OutstandingNonces() int {
	return a.nonces.Len()
}
