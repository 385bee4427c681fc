package digest

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
)

// QopAuth is the only quality of protection supported.
const QopAuth = "auth"

// Algorithm is the only digest algorithm supported.
const Algorithm = "MD5"

// MD5Hex returns the lowercase hex MD5 of s.
func MD5Hex(s string) string {
	sum := md5.Sum([]byte(s)) //nolint:gosec // mandated by RFC 2617
	return hex.EncodeToString(sum[:])
}

// HA1 computes MD5(username ":" realm ":" secret).
func HA1(username, realm, secret string) string {
	return MD5Hex(username + ":" + realm + ":" + secret)
}

// HA2 computes MD5(method ":" uri).
func HA2(method, uri string) string {
	return MD5Hex(method + ":" + uri)
}

// Response computes the expected request digest.
//
// With qop set: MD5(HA1 ":" nonce ":" nc ":" cnonce ":" qop ":" HA2).
// Without qop (RFC 2069 compatibility): MD5(HA1 ":" nonce ":" HA2).
func Response(ha1, nonce, nc, cnonce, qop, ha2 string) string {
	if qop != "" {
		return MD5Hex(ha1 + ":" + nonce + ":" + nc + ":" + cnonce + ":" + qop + ":" + ha2)
	}
	return MD5Hex(ha1 + ":" + nonce + ":" + ha2)
}

// Equal compares two digests in constant time.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
