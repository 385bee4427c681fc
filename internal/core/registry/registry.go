// Package registry maps exact URL paths to handlers.
//
// Registration happens on a Builder during start-up. Build freezes it into
// a Table that is read concurrently by every connection without locking.
package registry

import (
	"sort"
	"sync"

	"github.com/yndnr/pagegate/internal/core/domain"
)

// Builder collects handler registrations. It is safe for concurrent use so
// plugins may register from their own goroutines during start-up.
type Builder[H any] struct {
	mu         sync.Mutex
	handlers   map[string]H
	def        H
	hasDefault bool
	frozen     bool
}

// NewBuilder creates an empty Builder.
func NewBuilder[H any]() *Builder[H] {
	return &Builder[H]{handlers: make(map[string]H)}
}

// Register installs h for the exact path. A later registration for the same
// path replaces the earlier one.
func (b *Builder[H]) Register(path string, h H) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.frozen {
		return domain.ErrRegistryFrozen.WithDetails("register " + path)
	}
	b.handlers[path] = h
	return nil
}

// RegisterDefault installs the handler used when no exact path matches.
func (b *Builder[H]) RegisterDefault(h H) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.frozen {
		return domain.ErrRegistryFrozen.WithDetails("register default")
	}
	b.def = h
	b.hasDefault = true
	return nil
}

// Build freezes the builder and returns the lookup table.
func (b *Builder[H]) Build() (*Table[H], error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.hasDefault {
		return nil, domain.ErrNoDefaultHandler
	}
	b.frozen = true

	handlers := make(map[string]H, len(b.handlers))
	for p, h := range b.handlers {
		handlers[p] = h
	}
	return &Table[H]{handlers: handlers, def: b.def}, nil
}

// Table is an immutable path to handler mapping.
type Table[H any] struct {
	handlers map[string]H
	def      H
}

// Resolve returns the handler registered for path, or the default handler.
// The boolean reports whether an exact registration matched.
func (t *Table[H]) Resolve(path string) (H, bool) {
	if h, ok := t.handlers[path]; ok {
		return h, true
	}
	return t.def, false
}

// Paths returns the registered paths in sorted order.
func (t *Table[H]) Paths() []string {
	paths := make([]string, 0, len(t.handlers))
	for p := range t.handlers {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Len returns the number of exact registrations.
func (t *Table[H]) Len() int {
	return len(t.handlers)
}
