// Package logger provides structured logging for PageGate.
//
// This package wraps log/slog:
//
//   - logger.go: logger construction, dynamic level, package-level helpers
//   - context.go: context-aware logging with request and connection IDs
//   - redact.go: sensitive data redaction
//
// Digest credentials never reach the output: Authorization header values
// keep only their scheme, and attributes named after secrets, responses or
// client nonces are replaced wholesale.
package logger
