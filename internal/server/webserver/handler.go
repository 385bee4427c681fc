package webserver

import "github.com/yndnr/pagegate/internal/core/registry"

// Handler serves one request. A returned error, like a panic, turns the
// response into a 500 carrying the failure and a stack trace.
type Handler interface {
	ServeRequest(w ResponseWriter, r *Request) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(w ResponseWriter, r *Request) error

// ServeRequest calls f(w, r).
func (f HandlerFunc) ServeRequest(w ResponseWriter, r *Request) error {
	return f(w, r)
}

// Builder collects handler registrations at start-up.
type Builder = registry.Builder[Handler]

// Table is the frozen handler table read by every connection.
type Table = registry.Table[Handler]

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return registry.NewBuilder[Handler]()
}
