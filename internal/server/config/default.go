package config

import (
	"time"

	"github.com/yndnr/pagegate/internal/core/docroot"
)

// Default configuration values.
const (
	DefaultAddr         = "127.0.0.1:8001"
	DefaultDocRoot      = "."
	DefaultIdleTimeout  = 30 * time.Second
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 30 * time.Second
	DefaultMaxBodyBytes = 10 << 20
	DefaultImagePrefix  = "/generated_image"
	DefaultServerName   = "PageGate"

	DefaultRealm     = "PageGate Access"
	DefaultNonceTTL  = 5 * time.Minute
	DefaultMaxNonces = 65536

	DefaultOpsAddr     = "127.0.0.1:8002"
	DefaultLocalSocket = "/run/pagegate/pagegate.sock"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Addr:         DefaultAddr,
			DocRoot:      DefaultDocRoot,
			IdleTimeout:  DefaultIdleTimeout,
			ReadTimeout:  DefaultReadTimeout,
			WriteTimeout: DefaultWriteTimeout,
			MaxBodyBytes: DefaultMaxBodyBytes,
			IndexPages:   append([]string(nil), docroot.DefaultIndexPages...),
			ShutdownPath: docroot.DefaultShutdownPath,
			ImagePrefix:  DefaultImagePrefix,
			ServerName:   DefaultServerName,
		},
		Auth: AuthSection{
			Enabled:     true,
			Realm:       DefaultRealm,
			Users:       map[string]string{},
			NonceTTL:    DefaultNonceTTL,
			TrackNonces: true,
			MaxNonces:   DefaultMaxNonces,
		},
		Ops: OpsSection{
			Enabled: true,
			Addr:    DefaultOpsAddr,
			Audit:   true,
		},
		Local: LocalSection{
			Enabled: false,
			Path:    DefaultLocalSocket,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
