// Package command defines the pagegate-cli commands on urfave/cli/v2.
//
//   - root.go: application, global flags, profile resolution
//   - page.go: get and post against the page server
//   - admin.go: status, routes, loglevel and shutdown over the admin socket
//   - health.go: ops endpoint health and readiness
//   - config.go: server config show/validate and CLI profiles
package command
