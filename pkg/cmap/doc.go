// Package cmap provides a concurrent-safe sharded map keyed by strings.
//
// PageGate uses it for state that is written from many connection
// goroutines at once: the digest nonce table and the per-client rate
// limiter registry. Each shard has its own RWMutex so unrelated keys never
// contend.
//
// Usage:
//
//	m := cmap.New[*entry]()
//	m.Set("key", e)
//	m.Compute("key", func(e *entry, ok bool) (*entry, bool) { ... })
//	m.DeleteFunc(func(key string, e *entry) bool { return e.expired() })
package cmap
