// Package config defines the pagegate-server configuration.
//
//   - spec.go: ServerConfig struct definition
//   - default.go: default values
//   - verify.go: validation (paths, durations, auth consistency)
//   - sanitize.go: masking of user secrets for logging
//
// Configuration is loaded via internal/infra/confloader from a YAML file,
// PAGEGATE_* environment variables and command line flags, in that order
// of increasing priority.
package config
