// Package digest implements the HTTP Digest Access Authentication primitives
// of RFC 2617 (MD5, qop=auth) shared by the server-side authenticator and the
// command-line client.
//
//   - hash.go: HA1, HA2 and response computation
//   - header.go: Authorization / WWW-Authenticate parsing and formatting
//   - client.go: Authorizer, building Authorization headers from a challenge
package digest
