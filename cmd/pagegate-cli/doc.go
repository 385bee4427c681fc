// Package main provides the entry point for pagegate-cli.
//
// pagegate-cli fetches pages from a PageGate server (answering Digest
// challenges), queries the admin socket and the ops endpoint, and
// validates server configuration files.
package main
