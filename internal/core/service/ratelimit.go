package service

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/yndnr/pagegate/pkg/cmap"
)

// LimiterRegistry hands out one token bucket per client key.
type LimiterRegistry struct {
	limiters *cmap.Map[*clientLimiter]
	limit    rate.Limit
	burst    int
	now      func() time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLimiterRegistry creates a registry allowing perSecond requests per key
// with a burst of the same size. perSecond <= 0 disables limiting.
func NewLimiterRegistry(perSecond float64) *LimiterRegistry {
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return &LimiterRegistry{
		limiters: cmap.New[*clientLimiter](),
		limit:    rate.Limit(perSecond),
		burst:    burst,
		now:      time.Now,
	}
}

// Enabled reports whether the registry limits anything.
func (r *LimiterRegistry) Enabled() bool {
	return r != nil && r.limit > 0
}

// Allow reports whether a request from key may proceed now.
func (r *LimiterRegistry) Allow(key string) bool {
	if !r.Enabled() {
		return true
	}
	now := r.now()
	cl, _ := r.limiters.Compute(key, func(cl *clientLimiter, exists bool) (*clientLimiter, bool) {
		if !exists {
			cl = &clientLimiter{limiter: rate.NewLimiter(r.limit, r.burst)}
		}
		cl.lastSeen = now
		return cl, true
	})
	return cl.limiter.AllowN(now, 1)
}

// Prune removes limiters idle for longer than idle.
func (r *LimiterRegistry) Prune(idle time.Duration) int {
	if !r.Enabled() {
		return 0
	}
	cutoff := r.now().Add(-idle)
	return r.limiters.DeleteFunc(func(_ string, cl *clientLimiter) bool {
		return cl.lastSeen.Before(cutoff)
	})
}

// Len returns the number of tracked clients.
func (r *LimiterRegistry) Len() int {
	if r == nil {
		return 0
	}
	return r.limiters.Count()
}
