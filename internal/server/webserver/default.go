package webserver

import (
	"net/http"
	"net/url"

	"github.com/yndnr/pagegate/internal/core/docroot"
	"github.com/yndnr/pagegate/internal/telemetry/metric"
)

// Resolver maps URL paths onto documents.
type Resolver interface {
	Resolve(urlPath string) docroot.Result
}

// DefaultHandler serves the document root.
type DefaultHandler struct {
	resolver Resolver
	strict   bool
	metrics  *metric.Registry
}

// NewDefaultHandler creates the fallback handler. When strict is true
// resolution failures are answered with their intended 403/404/500 status
// instead of 200.
func NewDefaultHandler(resolver Resolver, strict bool, metrics *metric.Registry) *DefaultHandler {
	return &DefaultHandler{resolver: resolver, strict: strict, metrics: metrics}
}

// ServeRequest implements Handler.
func (h *DefaultHandler) ServeRequest(w ResponseWriter, r *Request) error {
	res := h.resolver.Resolve(r.Path)
	h.metrics.RecordResolve(res.Kind.String())

	if res.Kind == docroot.KindRedirect {
		w.Redirect((&url.URL{Path: res.Location}).EscapedPath(), http.StatusMovedPermanently)
		return nil
	}

	status := res.Status()
	if h.strict && res.Intended != 0 {
		status = res.Intended
	}
	w.Header().Set("Content-Type", res.ContentType())
	w.WriteHeader(status)
	_, err := w.Write(res.Body)
	return err
}
