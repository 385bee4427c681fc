package webserver

import "time"

// Config holds the listener configuration.
type Config struct {
	// Addr is the TCP listen address (default: 127.0.0.1:8001).
	Addr string
	// KeepAlive serves several requests per connection. When false every
	// response carries "Connection: close" and the connection is closed.
	KeepAlive bool
	// IdleTimeout bounds the wait for the next request (default: 30s).
	IdleTimeout time.Duration
	// ReadTimeout bounds reading one request once its first byte arrived
	// (default: 30s). Helps against slowloris clients.
	ReadTimeout time.Duration
	// WriteTimeout bounds writing one response (default: 30s).
	WriteTimeout time.Duration
	// MaxBodyBytes limits request bodies (default: 10 MiB).
	MaxBodyBytes int64
	// RateLimit is the number of requests per second per client IP.
	// Set to 0 to disable rate limiting.
	RateLimit float64
	// ImagePrefix routes every target starting with it to the handler
	// registered for the prefix itself (default: /generated_image).
	ImagePrefix string
	// ServerName is sent in the Server header.
	ServerName string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:         "127.0.0.1:8001",
		KeepAlive:    false,
		IdleTimeout:  30 * time.Second,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		MaxBodyBytes: 10 << 20,
		RateLimit:    0,
		ImagePrefix:  "/generated_image",
		ServerName:   "PageGate",
	}
}

func (c *Config) withDefaults() *Config {
	d := DefaultConfig()
	if c == nil {
		return d
	}
	out := *c
	if out.Addr == "" {
		out.Addr = d.Addr
	}
	if out.IdleTimeout <= 0 {
		out.IdleTimeout = d.IdleTimeout
	}
	if out.ReadTimeout <= 0 {
		out.ReadTimeout = d.ReadTimeout
	}
	if out.WriteTimeout <= 0 {
		out.WriteTimeout = d.WriteTimeout
	}
	if out.MaxBodyBytes <= 0 {
		out.MaxBodyBytes = d.MaxBodyBytes
	}
	if out.ServerName == "" {
		out.ServerName = d.ServerName
	}
	return &out
}
