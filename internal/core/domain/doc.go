// Package domain defines the core domain models for PageGate.
//
// Domain models are pure values without IO dependencies. This package contains:
//
//   - Errors: coded domain errors shared by the server, resolver and authenticator
//   - UserStore: the fixed username to secret mapping used by digest authentication
package domain
