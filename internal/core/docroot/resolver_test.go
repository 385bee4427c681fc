package docroot

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

func writeFile(t *testing.T, name, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// newTestRoot lays out:
//
//	root/hello.txt
//	root/page.html
//	root/blob.bin
//	root/docs/index.html
//	root/docs/index.htm
//	root/plain/a.txt
//	root/plain/b dir/
//	root/plain/<x>.txt
func newTestRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "hello.txt"), "hello world")
	writeFile(t, filepath.Join(root, "page.html"), "<p>page</p>")
	writeFile(t, filepath.Join(root, "blob.bin"), "\x00\x01\xff\xfe")
	writeFile(t, filepath.Join(root, "docs", "index.html"), "<p>html index</p>")
	writeFile(t, filepath.Join(root, "docs", "index.htm"), "<p>htm index</p>")
	writeFile(t, filepath.Join(root, "plain", "a.txt"), "a")
	writeFile(t, filepath.Join(root, "plain", "<x>.txt"), "x")
	if err := os.MkdirAll(filepath.Join(root, "plain", "b dir"), 0o755); err != nil {
		t.Fatal(err)
	}
	return root
}

func newTestResolver(t *testing.T, root string, opts ...Option) *Resolver {
	t.Helper()
	r, err := New(root, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r
}

func TestNew_InvalidRoot(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "f")
	writeFile(t, file, "x")

	if _, err := New(filepath.Join(root, "missing")); err == nil {
		t.Error("New() with missing root should fail")
	}
	if _, err := New(file); err == nil {
		t.Error("New() with a file root should fail")
	}
}

func TestResolve_Content(t *testing.T) {
	r := newTestResolver(t, newTestRoot(t))

	tests := []struct {
		path        string
		body        string
		contentType string
	}{
		{"/hello.txt", "hello world", ""},
		{"/page.html", "<p>page</p>", "text/html; charset=utf-8"},
		{"/blob.bin", "\x00\x01\xff\xfe", "application/octet-stream"},
		{"/./hello.txt", "hello world", ""},
		{"//hello.txt", "hello world", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			res := r.Resolve(tt.path)
			if res.Kind != KindContent {
				t.Fatalf("Kind = %v, want content (err=%v)", res.Kind, res.Err)
			}
			if string(res.Body) != tt.body {
				t.Errorf("Body = %q, want %q", res.Body, tt.body)
			}
			if res.Status() != http.StatusOK {
				t.Errorf("Status() = %d, want 200", res.Status())
			}
			if got := res.ContentType(); tt.contentType != "" && got != tt.contentType {
				t.Errorf("ContentType() = %q, want %q", got, tt.contentType)
			}
		})
	}
}

func TestResolve_Idempotent(t *testing.T) {
	r := newTestResolver(t, newTestRoot(t))

	first := r.Resolve("/blob.bin")
	second := r.Resolve("/blob.bin")
	if !bytes.Equal(first.Body, second.Body) {
		t.Error("resolving the same file twice returned different bytes")
	}
}

func TestResolve_Traversal(t *testing.T) {
	root := newTestRoot(t)
	// a secret next to the root must never be served
	writeFile(t, filepath.Join(filepath.Dir(root), "secret.txt"), "secret")
	r := newTestResolver(t, root)

	paths := []string{
		"/../secret.txt",
		"/docs/../../secret.txt",
		"/docs/..",
		"/..",
		"/docs/..\\..\\secret.txt",
		"/hello.txt\x00",
	}

	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			res := r.Resolve(p)
			if res.Kind != KindIllegal {
				t.Fatalf("Kind = %v, want illegal", res.Kind)
			}
			if res.Status() != http.StatusOK {
				t.Errorf("Status() = %d, want 200", res.Status())
			}
			if res.Intended != http.StatusForbidden {
				t.Errorf("Intended = %d, want 403", res.Intended)
			}
			if !bytes.Contains(res.Body, []byte("Illegal path, page not found.")) {
				t.Error("body is not the illegal-path page")
			}
		})
	}
}

func TestResolve_SymlinkEscape(t *testing.T) {
	root := newTestRoot(t)
	outside := t.TempDir()
	writeFile(t, filepath.Join(outside, "secret.txt"), "secret")
	if err := os.Symlink(filepath.Join(outside, "secret.txt"), filepath.Join(root, "link.txt")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if err := os.Symlink(filepath.Join(root, "hello.txt"), filepath.Join(root, "inside.txt")); err != nil {
		t.Fatal(err)
	}
	r := newTestResolver(t, root)

	if res := r.Resolve("/link.txt"); res.Kind != KindIllegal || res.Intended != http.StatusForbidden {
		t.Errorf("escaping symlink: Kind = %v Intended = %d, want illegal 403", res.Kind, res.Intended)
	}
	if res := r.Resolve("/inside.txt"); res.Kind != KindContent || string(res.Body) != "hello world" {
		t.Errorf("internal symlink: Kind = %v Body = %q", res.Kind, res.Body)
	}
}

func TestResolve_Missing(t *testing.T) {
	r := newTestResolver(t, newTestRoot(t))

	res := r.Resolve("/nope.txt")
	if res.Kind != KindIllegal {
		t.Fatalf("Kind = %v, want illegal", res.Kind)
	}
	if res.Status() != http.StatusOK || res.Intended != http.StatusNotFound {
		t.Errorf("Status() = %d Intended = %d, want 200/404", res.Status(), res.Intended)
	}
	if !bytes.Contains(res.Body, []byte("<b>/nope.txt</b>")) {
		t.Errorf("body does not name the path: %s", res.Body)
	}
}

func TestResolve_IllegalPageEscapesPath(t *testing.T) {
	r := newTestResolver(t, newTestRoot(t))

	res := r.Resolve("/<script>.txt")
	if bytes.Contains(res.Body, []byte("<script>")) {
		t.Error("path was not HTML escaped")
	}
}

func TestResolve_DirectoryRedirect(t *testing.T) {
	r := newTestResolver(t, newTestRoot(t))

	res := r.Resolve("/docs")
	if res.Kind != KindRedirect {
		t.Fatalf("Kind = %v, want redirect", res.Kind)
	}
	if res.Location != "/docs/" {
		t.Errorf("Location = %q, want /docs/", res.Location)
	}
	if res.Status() != http.StatusMovedPermanently {
		t.Errorf("Status() = %d, want 301", res.Status())
	}
	if len(res.Body) != 0 {
		t.Error("redirect carried a body")
	}
}

func TestResolve_IndexPage(t *testing.T) {
	root := newTestRoot(t)

	// index.htm is tried before index.html
	r := newTestResolver(t, root)
	if res := r.Resolve("/docs/"); res.Kind != KindContent || string(res.Body) != "<p>htm index</p>" {
		t.Errorf("Resolve(/docs/) = %v %q", res.Kind, res.Body)
	}

	r = newTestResolver(t, root, WithIndexPages("index.html"))
	if res := r.Resolve("/docs/"); string(res.Body) != "<p>html index</p>" {
		t.Errorf("Resolve(/docs/) with index.html = %q", res.Body)
	}
}

func TestResolve_Listing(t *testing.T) {
	r := newTestResolver(t, newTestRoot(t))

	res := r.Resolve("/plain/")
	if res.Kind != KindListing {
		t.Fatalf("Kind = %v, want listing", res.Kind)
	}
	body := string(res.Body)

	for _, want := range []string{
		`<li><a href="../">..</a></li>`,
		`<li><a href="a.txt">a.txt</a></li>`,
		`<li><a href="b%20dir/">b dir</a></li>`,
		`&lt;x&gt;.txt</a></li>`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("listing missing %q:\n%s", want, body)
		}
	}
	if n := strings.Count(body, "<li>"); n != 4 {
		t.Errorf("listing has %d entries, want 4 (3 children + parent)", n)
	}
	if strings.Index(body, "<x>") >= 0 {
		t.Error("listing contains unescaped name")
	}
	if res.ContentType() != "text/html; charset=utf-8" {
		t.Errorf("ContentType() = %q", res.ContentType())
	}
}

func TestResolve_Transform(t *testing.T) {
	var gotPath string
	upper := func(content io.Reader, urlPath string) ([]byte, error) {
		gotPath = urlPath
		b, err := io.ReadAll(content)
		return bytes.ToUpper(b), err
	}
	r := newTestResolver(t, newTestRoot(t), WithTransform(upper))

	if res := r.Resolve("/page.html"); string(res.Body) != "<P>PAGE</P>" {
		t.Errorf("transformed body = %q", res.Body)
	}
	if gotPath != "/page.html" {
		t.Errorf("transform saw path %q", gotPath)
	}
	if res := r.Resolve("/hello.txt"); string(res.Body) != "hello world" {
		t.Errorf("non-markup file was transformed: %q", res.Body)
	}

	failing := func(io.Reader, string) ([]byte, error) { return nil, errors.New("boom") }
	r = newTestResolver(t, newTestRoot(t), WithTransform(failing))
	res := r.Resolve("/page.html")
	if res.Kind != KindIllegal || res.Intended != http.StatusInternalServerError {
		t.Errorf("failing transform: Kind = %v Intended = %d", res.Kind, res.Intended)
	}
}

func TestResolve_Shutdown(t *testing.T) {
	root := newTestRoot(t)
	var calls atomic.Int32
	r := newTestResolver(t, root, WithShutdownHook(func() { calls.Add(1) }))

	res := r.Resolve("/exit")
	if res.Kind != KindShutdown || calls.Load() != 1 {
		t.Fatalf("Kind = %v calls = %d", res.Kind, calls.Load())
	}
	if !bytes.Contains(res.Body, []byte("shut down")) {
		t.Errorf("built-in shutdown page expected, got %q", res.Body)
	}

	writeFile(t, filepath.Join(root, ShutdownFile), "bye")
	if res := r.Resolve("/exit"); string(res.Body) != "bye" {
		t.Errorf("shutdown page = %q, want bye", res.Body)
	}

	r = newTestResolver(t, root, WithShutdownPath(""))
	if res := r.Resolve("/exit"); res.Kind == KindShutdown {
		t.Error("disabled sentinel still triggered")
	}
}

func TestContainsDotDot(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/a/b", false},
		{"/a..b/c", false},
		{"/..a", false},
		{"/a/../b", true},
		{"/..", true},
		{"..", true},
		{"/a\\..\\b", true},
	}
	for _, tt := range tests {
		if got := ContainsDotDot(tt.path); got != tt.want {
			t.Errorf("ContainsDotDot(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestKind_String(t *testing.T) {
	if KindListing.String() != "listing" || Kind(99).String() != "unknown" {
		t.Error("unexpected Kind names")
	}
}
