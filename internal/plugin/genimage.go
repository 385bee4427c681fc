package plugin

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/yndnr/pagegate/internal/core/docroot"
	"github.com/yndnr/pagegate/internal/server/webserver"
)

// GenImage serves generated images. Every request whose raw target starts
// with the prefix is routed here, and the remainder names a file in the
// images directory.
type GenImage struct {
	prefix   string
	resolver *docroot.Resolver
}

// NewGenImage creates the plugin serving dir under prefix.
func NewGenImage(prefix, dir string) (*GenImage, error) {
	if !strings.HasPrefix(prefix, "/") {
		return nil, fmt.Errorf("image prefix %q must start with /", prefix)
	}
	// the dispatcher rewrites Path to the prefix verbatim, so the route
	// must be registered under exactly that string
	if prefix == "/" || strings.HasSuffix(prefix, "/") {
		return nil, fmt.Errorf("image prefix %q must not end with /", prefix)
	}
	r, err := docroot.New(dir, docroot.WithShutdownPath(""), docroot.WithIndexPages())
	if err != nil {
		return nil, fmt.Errorf("images dir: %w", err)
	}
	return &GenImage{prefix: prefix, resolver: r}, nil
}

// Name implements Plugin.
func (g *GenImage) Name() string { return "genimage" }

// Register implements Plugin.
func (g *GenImage) Register(b *webserver.Builder) error {
	return b.Register(g.prefix, g)
}

// ServeRequest implements webserver.Handler.
func (g *GenImage) ServeRequest(w webserver.ResponseWriter, r *webserver.Request) error {
	rest, _, _ := strings.Cut(strings.TrimPrefix(r.RawPath, g.prefix), "?")
	name, err := url.PathUnescape(rest)
	if err != nil || name == "" || name == "/" || !strings.HasPrefix(name, "/") {
		return g.notFound(w, r.RawPath)
	}

	res := g.resolver.Resolve(name)
	if res.Kind != docroot.KindContent {
		return g.notFound(w, name)
	}
	w.Header().Set("Content-Type", res.ContentType())
	w.Header().Set("Cache-Control", "no-cache")
	_, err = w.Write(res.Body)
	return err
}

func (g *GenImage) notFound(w webserver.ResponseWriter, name string) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write(docroot.IllegalPage(name))
	return err
}
