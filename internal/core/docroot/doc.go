// Package docroot maps URL paths onto files inside a fixed document root.
//
// A Resolver never reads outside its root: paths carrying a ".." segment
// are rejected before the filesystem is consulted, the cleaned candidate
// must stay below the root, and symlinks that resolve elsewhere are treated
// as illegal. Directories without a trailing slash produce a redirect,
// directories with one produce an index page or a generated listing.
//
// Resolution failures do not surface as errors. They yield the illegal-path
// page with Result.Status 200, and Result.Intended records the 403/404 a
// strict server would send instead.
package docroot
