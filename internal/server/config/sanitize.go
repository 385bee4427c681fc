package config

import (
	"maps"
	"slices"
	"strings"
)

// Sanitize returns a copy of the config with user secrets masked.
//
// This is used for logging configuration without exposing secrets.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg
	sanitized.Server.IndexPages = slices.Clone(cfg.Server.IndexPages)
	sanitized.Ops.AllowList = slices.Clone(cfg.Ops.AllowList)

	if cfg.Auth.Users != nil {
		sanitized.Auth.Users = maps.Clone(cfg.Auth.Users)
		for name, secret := range sanitized.Auth.Users {
			sanitized.Auth.Users[name] = maskSecret(secret)
		}
	}

	return &sanitized
}

// maskSecret masks a secret value for safe logging.
func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
