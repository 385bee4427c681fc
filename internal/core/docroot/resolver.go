package docroot

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/yndnr/pagegate/internal/core/domain"
)

// DefaultIndexPages are tried in order when a directory is requested.
var DefaultIndexPages = []string{"index.htm", "index.html"}

// DefaultShutdownPath is the URL path that stops the server.
const DefaultShutdownPath = "/exit"

// ShutdownFile is looked up in the root to render the shutdown page.
const ShutdownFile = "exit_en.html"

// TransformFunc rewrites markup pages before they are served.
type TransformFunc func(content io.Reader, urlPath string) ([]byte, error)

// Identity returns the content unchanged.
func Identity(content io.Reader, _ string) ([]byte, error) {
	return io.ReadAll(content)
}

// Resolver maps URL paths to artifacts inside Root.
type Resolver struct {
	root     string
	rootReal string

	indexPages   []string
	shutdownPath string
	transform    TransformFunc
	onShutdown   func()
	logger       *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithIndexPages overrides DefaultIndexPages.
func WithIndexPages(pages ...string) Option {
	return func(r *Resolver) { r.indexPages = pages }
}

// WithShutdownPath sets the sentinel path. An empty path disables it.
func WithShutdownPath(p string) Option {
	return func(r *Resolver) { r.shutdownPath = p }
}

// WithTransform sets the markup transformer.
func WithTransform(fn TransformFunc) Option {
	return func(r *Resolver) { r.transform = fn }
}

// WithShutdownHook sets the function called when the sentinel is requested.
func WithShutdownHook(fn func()) Option {
	return func(r *Resolver) { r.onShutdown = fn }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// New creates a Resolver for root. root must be an existing directory.
func New(root string, opts ...Option) (*Resolver, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve document root: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("resolve document root: %w", err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return nil, fmt.Errorf("stat document root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("document root %s is not a directory", root)
	}

	r := &Resolver{
		root:         abs,
		rootReal:     resolved,
		indexPages:   DefaultIndexPages,
		shutdownPath: DefaultShutdownPath,
		transform:    Identity,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.transform == nil {
		r.transform = Identity
	}
	return r, nil
}

// Root returns the absolute document root.
func (r *Resolver) Root() string {
	return r.root
}

// Resolve maps urlPath onto the document root.
func (r *Resolver) Resolve(urlPath string) Result {
	if r.shutdownPath != "" && urlPath == r.shutdownPath {
		return r.shutdown()
	}

	if ContainsDotDot(urlPath) || strings.IndexByte(urlPath, 0) >= 0 {
		return r.illegal(urlPath, http.StatusForbidden, domain.ErrIllegalPath.WithDetails(urlPath))
	}

	candidate, err := r.confine(urlPath)
	if err != nil {
		return r.illegalFromErr(urlPath, err)
	}

	info, err := os.Stat(candidate)
	if err != nil {
		return r.illegalFromErr(urlPath, err)
	}

	if info.IsDir() {
		if !strings.HasSuffix(urlPath, "/") {
			return Result{
				Kind:     KindRedirect,
				Location: urlPath + "/",
				Intended: http.StatusMovedPermanently,
			}
		}
		return r.directory(urlPath, candidate)
	}
	if !info.Mode().IsRegular() {
		return r.illegal(urlPath, http.StatusForbidden, domain.ErrIllegalPath.WithDetails("not a regular file: "+urlPath))
	}

	return r.file(urlPath, candidate)
}

// confine joins urlPath to the root and rejects anything that ends up
// outside it, following symlinks.
func (r *Resolver) confine(urlPath string) (string, error) {
	clean := path.Clean("/" + urlPath)
	candidate := filepath.Join(r.root, filepath.FromSlash(clean))

	rel, err := filepath.Rel(r.root, candidate)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", domain.ErrIllegalPath.WithDetails(urlPath)
	}

	resolved, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		return "", err
	}
	rel, err = filepath.Rel(r.rootReal, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", domain.ErrIllegalPath.WithDetails("symlink leaves document root: " + urlPath)
	}
	return resolved, nil
}

func (r *Resolver) directory(urlPath, dir string) Result {
	for _, name := range r.indexPages {
		p := filepath.Join(dir, name)
		info, err := os.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		index, err := r.confine(path.Join(urlPath, name))
		if err != nil {
			return r.illegalFromErr(urlPath, err)
		}
		return r.file(urlPath+name, index)
	}

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return r.illegalFromErr(urlPath, err)
	}
	entries := make([]listingEntry, 0, len(dirEntries))
	for _, e := range dirEntries {
		entries = append(entries, listingEntry{name: e.Name(), isDir: e.IsDir()})
	}
	return Result{
		Kind:     KindListing,
		Body:     listingPage(entries),
		Intended: http.StatusOK,
	}
}

func (r *Resolver) file(urlPath, name string) Result {
	f, err := os.Open(name)
	if err != nil {
		return r.illegalFromErr(urlPath, err)
	}
	defer f.Close()

	var body []byte
	if IsMarkup(name) {
		body, err = r.transform(f, urlPath)
		if err != nil {
			return r.illegal(urlPath, http.StatusInternalServerError, fmt.Errorf("transform %s: %w", urlPath, err))
		}
	} else {
		var buf bytes.Buffer
		if _, err = buf.ReadFrom(f); err != nil {
			return r.illegalFromErr(urlPath, err)
		}
		body = buf.Bytes()
	}

	return Result{
		Kind:     KindContent,
		Body:     body,
		File:     name,
		Intended: http.StatusOK,
	}
}

func (r *Resolver) shutdown() Result {
	if r.onShutdown != nil {
		r.onShutdown()
	}
	body, err := os.ReadFile(filepath.Join(r.rootReal, ShutdownFile))
	if err != nil {
		body = []byte(shutdownPage)
	}
	return Result{Kind: KindShutdown, Body: body, Intended: http.StatusOK}
}

func (r *Resolver) illegalFromErr(urlPath string, err error) Result {
	status := http.StatusNotFound
	switch {
	case errors.Is(err, domain.ErrIllegalPath), errors.Is(err, fs.ErrPermission):
		status = http.StatusForbidden
	case errors.Is(err, fs.ErrNotExist):
		err = domain.ErrPathNotFound.WithCause(err)
	}
	return r.illegal(urlPath, status, err)
}

func (r *Resolver) illegal(urlPath string, intended int, err error) Result {
	r.logger.Debug("cannot serve path", "path", urlPath, "error", err)
	return Result{
		Kind:     KindIllegal,
		Body:     IllegalPage(urlPath),
		Intended: intended,
		Err:      err,
	}
}

// IsMarkup reports whether name is an HTML page.
func IsMarkup(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".html" || ext == ".htm"
}

// ContainsDotDot reports whether p has a ".." path segment.
func ContainsDotDot(p string) bool {
	if !strings.Contains(p, "..") {
		return false
	}
	for _, seg := range strings.FieldsFunc(p, isSlashRune) {
		if seg == ".." {
			return true
		}
	}
	return false
}

func isSlashRune(r rune) bool { return r == '/' || r == '\\' }
