// Package localserver provides the admin socket.
//
// It listens on a Unix domain socket and speaks a line protocol: each
// request is one line of space separated words and each reply is one line
// of JSON.
//
//	status            server status
//	routes            registered exact paths
//	loglevel [level]  show or change the log level
//	shutdown          cooperative stop, same as the shutdown page
//
// Access is controlled by the socket file permissions (0600); no digest
// authentication is applied.
package localserver
