// Package main provides the entry point for pagegate-server.
//
// pagegate-server serves a document root over HTTP/1.x behind RFC 2617
// Digest authentication, together with an ops endpoint (health, readiness,
// metrics) and an optional local admin socket.
package main
