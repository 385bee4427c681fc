// Package config holds the pagegate-cli profile file (~/.pagegate/cli.yaml).
//
// A profile stores the server address, digest credentials and admin socket
// path so they need not be repeated on every invocation. Environment
// variables and command-line flags override the profile.
package config
