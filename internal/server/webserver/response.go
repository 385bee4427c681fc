package webserver

import (
	"bufio"
	"bytes"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ResponseWriter builds the response to one request.
//
// Output is buffered and written to the connection by the dispatcher after
// the handler returns, so a handler that fails part-way never leaves a
// half-written response behind.
type ResponseWriter interface {
	// Header returns the response headers to be sent.
	Header() http.Header
	// WriteHeader sets the status code. Only the first call has effect.
	WriteHeader(code int)
	// Write appends to the body, implying status 200 if none was set.
	Write(p []byte) (int, error)
	// Redirect sets Location and the given 3xx status.
	Redirect(location string, code int)
}

type response struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newResponse() *response {
	return &response{header: make(http.Header)}
}

func (w *response) Header() http.Header {
	return w.header
}

func (w *response) WriteHeader(code int) {
	if w.status != 0 {
		return
	}
	w.status = code
}

func (w *response) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.body.Write(p)
}

func (w *response) Redirect(location string, code int) {
	w.header.Set("Location", location)
	w.WriteHeader(code)
}

func (w *response) statusCode() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// plainResponse builds a text/plain response with the given status.
func plainResponse(code int, text string) *response {
	w := newResponse()
	w.header.Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.body.WriteString(text)
	return w
}

// writeTo serializes the response. Framing headers set by the handler are
// overwritten so the body length always matches.
func (w *response) writeTo(bw *bufio.Writer, proto string, keepAlive bool, serverName string, now time.Time) error {
	code := w.statusCode()
	h := w.header

	h.Set("Content-Length", strconv.Itoa(w.body.Len()))
	h.Del("Transfer-Encoding")
	if keepAlive {
		h.Set("Connection", "keep-alive")
	} else {
		h.Set("Connection", "close")
	}
	if h.Get("Date") == "" {
		h.Set("Date", now.UTC().Format(http.TimeFormat))
	}
	if serverName != "" && h.Get("Server") == "" {
		h.Set("Server", serverName)
	}
	if w.body.Len() > 0 && h.Get("Content-Type") == "" {
		h.Set("Content-Type", http.DetectContentType(w.body.Bytes()))
	}

	if proto == "" {
		proto = "HTTP/1.1"
	}
	bw.WriteString(proto)
	bw.WriteByte(' ')
	bw.WriteString(strconv.Itoa(code))
	bw.WriteByte(' ')
	bw.WriteString(http.StatusText(code))
	bw.WriteString("\r\n")

	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range h[k] {
			bw.WriteString(k)
			bw.WriteString(": ")
			bw.WriteString(sanitizeHeaderValue(v))
			bw.WriteString("\r\n")
		}
	}
	bw.WriteString("\r\n")
	if _, err := bw.Write(w.body.Bytes()); err != nil {
		return err
	}
	return bw.Flush()
}

// headerValueCleaner drops CR and LF so a value cannot split the header block.
var headerValueCleaner = strings.NewReplacer("\r", "", "\n", "")

func sanitizeHeaderValue(v string) string {
	if !strings.ContainsAny(v, "\r\n") {
		return v
	}
	return headerValueCleaner.Replace(v)
}
