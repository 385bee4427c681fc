// Package connection talks to a running pagegate-server.
//
//   - http.go: HTTP client that answers Digest challenges
//   - socket.go: admin socket client (one JSON reply per command line)
//   - manager.go: resolves profile, environment and flags into clients
package connection
