package opsserver

import (
	"log/slog"
	"net/http"
)

// RouterConfig holds configuration for the ops router.
type RouterConfig struct {
	// Logger for request logging.
	Logger *slog.Logger

	// Ready reports whether the page server is accepting connections.
	// Nil means always ready.
	Ready func() bool

	// Metrics serves GET /metrics. Nil disables the endpoint.
	Metrics http.Handler

	// AllowList is the IP/CIDR allowlist (empty = no restriction).
	AllowList []string

	// EnableAudit logs every request.
	EnableAudit bool
}

// NewRouter creates the ops router with its middleware chain.
// Order: Recover -> RequestID -> NetworkACL -> Audit -> Handler
func NewRouter(cfg *RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handleHealth)
	mux.Handle("GET /ready", handleReady(cfg.Ready))
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}

	middlewares := []Middleware{
		Recover(logger),
		RequestID(),
	}
	if len(cfg.AllowList) > 0 {
		middlewares = append(middlewares, NetworkACL(&NetworkACLConfig{
			AllowList: cfg.AllowList,
			Logger:    logger,
		}))
	}
	if cfg.EnableAudit {
		middlewares = append(middlewares, Audit(logger))
	}
	return Chain(mux, middlewares...)
}
