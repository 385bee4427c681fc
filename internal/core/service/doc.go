// Package service provides the request-gating services of PageGate.
//
// This package contains:
//
//   - DigestAuthenticator: RFC 2617 challenge issue and credential checks
//   - NonceTracker: issued-nonce bookkeeping with TTL and nc ordering
//   - LimiterRegistry: per-client token buckets
//
// All services are safe for concurrent use from connection goroutines.
package service
