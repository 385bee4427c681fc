// Package metric provides Prometheus metrics for PageGate.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: the metric registry, recording helpers and HTTP handler
//   - collector.go: a collector sampling live server state at scrape time
//
// Metrics include:
//
//   - Request counts by status and duration histograms by route kind
//   - Digest authentication outcomes
//   - Document root resolution outcomes
//   - Active connections, handler panics and rate-limited requests
//
// Metrics are exposed at /metrics on the ops server.
package metric
