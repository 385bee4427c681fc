// Package token generates random values used by the server: the per-process
// nonce salt, digest opaque values, and client nonces.
//
// All values come from crypto/rand. Hex output is used where the value is
// embedded in an HTTP header so it never needs quoting or escaping.
package token
