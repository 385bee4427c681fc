package docroot

import (
	"mime"
	"net/http"
	"path/filepath"
)

// Kind classifies a resolution outcome.
type Kind int

const (
	KindContent Kind = iota
	KindListing
	KindRedirect
	KindIllegal
	KindShutdown
)

// String returns the lowercase kind name, used as a metric label.
func (k Kind) String() string {
	switch k {
	case KindContent:
		return "content"
	case KindListing:
		return "listing"
	case KindRedirect:
		return "redirect"
	case KindIllegal:
		return "illegal"
	case KindShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Result is the outcome of resolving one URL path.
type Result struct {
	Kind Kind

	// Body holds file bytes or a generated page. Empty for redirects.
	Body []byte

	// Location is the redirect target for KindRedirect.
	Location string

	// File is the filesystem path served for KindContent.
	File string

	// Intended is the status a strict server sends: 403 for traversal,
	// 404 for missing files, 500 for transform failures.
	Intended int

	// Err records why an illegal result was produced.
	Err error
}

// Status returns the compatible status code: 301 for redirects, 200 otherwise.
func (r Result) Status() int {
	if r.Kind == KindRedirect {
		return http.StatusMovedPermanently
	}
	return http.StatusOK
}

// ContentType returns the media type of Body.
func (r Result) ContentType() string {
	if r.Kind != KindContent {
		return "text/html; charset=utf-8"
	}
	if ct := mime.TypeByExtension(filepath.Ext(r.File)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
