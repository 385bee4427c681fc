package service

import (
	"strconv"
	"sync"
	"time"

	"github.com/yndnr/pagegate/internal/core/domain"
	"github.com/yndnr/pagegate/pkg/cmap"
)

// NonceTracker records the nonces this process issued and the highest
// nonce count seen for each of them. At most limit nonces are kept; issuing
// beyond that evicts the oldest.
type NonceTracker struct {
	entries *cmap.Map[nonceEntry]
	ttl     time.Duration
	limit   int
	now     func() time.Time

	mu    sync.Mutex
	order []string // issue order, oldest first
}

type nonceEntry struct {
	issuedAt time.Time
	lastNC   uint64
}

// NewNonceTracker creates a tracker whose nonces expire after ttl. limit <= 0
// leaves the table unbounded.
func NewNonceTracker(ttl time.Duration, limit int, now func() time.Time) *NonceTracker {
	if now == nil {
		now = time.Now
	}
	return &NonceTracker{
		entries: cmap.New[nonceEntry](),
		ttl:     ttl,
		limit:   limit,
		now:     now,
	}
}

// Issue records a freshly generated nonce and reports how many older
// nonces were evicted to stay within the limit.
func (t *NonceTracker) Issue(nonce string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.entries.Get(nonce); !ok {
		t.order = append(t.order, nonce)
	}
	t.entries.Set(nonce, nonceEntry{issuedAt: t.now()})

	evicted := 0
	for t.limit > 0 && len(t.order) > t.limit {
		t.entries.Delete(t.order[0])
		t.order = t.order[1:]
		evicted++
	}
	return evicted
}

// Known reports whether nonce was issued and has not expired.
func (t *NonceTracker) Known(nonce string) bool {
	e, ok := t.entries.Get(nonce)
	return ok && !t.expired(e)
}

// Use checks nonce and, when nc is non-empty, records it as the latest count.
// nc is hexadecimal and must be strictly greater than any count seen before.
func (t *NonceTracker) Use(nonce, nc string) error {
	var count uint64
	if nc != "" {
		n, err := strconv.ParseUint(nc, 16, 64)
		if err != nil || n == 0 {
			return domain.ErrAuthMalformed.WithDetails("invalid nonce count " + strconv.Quote(nc))
		}
		count = n
	}

	var useErr error
	t.entries.Compute(nonce, func(e nonceEntry, exists bool) (nonceEntry, bool) {
		if !exists {
			useErr = domain.ErrAuthStaleNonce
			return e, false
		}
		if t.expired(e) {
			// left for Sweep so the issue order stays in step
			useErr = domain.ErrAuthStaleNonce.WithDetails("nonce expired")
			return e, true
		}
		if count == 0 {
			return e, true
		}
		if count <= e.lastNC {
			useErr = domain.ErrAuthNonceReplay.WithDetails("nonce count did not increase")
			return e, true
		}
		e.lastNC = count
		return e, true
	})
	return useErr
}

// Sweep drops expired nonces and reports how many were removed.
func (t *NonceTracker) Sweep() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := t.entries.DeleteFunc(func(_ string, e nonceEntry) bool {
		return t.expired(e)
	})
	if removed > 0 {
		live := t.order[:0]
		for _, n := range t.order {
			if _, ok := t.entries.Get(n); ok {
				live = append(live, n)
			}
		}
		clear(t.order[len(live):])
		t.order = live
	}
	return removed
}

// Len returns the number of tracked nonces.
func (t *NonceTracker) Len() int {
	return t.entries.Count()
}

func (t *NonceTracker) expired(e nonceEntry) bool {
	return t.ttl > 0 && t.now().Sub(e.issuedAt) > t.ttl
}
