// Package opsserver provides the operations HTTP endpoint.
//
// It is a plain net/http server kept apart from the page server so
// probes and scrapes never compete with page traffic or pass through
// digest authentication:
//
//	GET /health   always 200 while the process is up
//	GET /ready    200 while the page server accepts connections, else 503
//	GET /metrics  Prometheus exposition
package opsserver
