// Package webserver provides the PageGate HTTP/1.x listener and dispatcher.
//
// Each accepted connection is served by its own goroutine which reads
// requests sequentially, passes them through the rate-limit and digest
// authentication stages, resolves a handler from the immutable registry
// table and commits the buffered response. A handler that fails or panics
// produces a 500 for that request only.
package webserver
