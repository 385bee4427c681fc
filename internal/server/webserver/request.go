package webserver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"github.com/yndnr/pagegate/internal/core/domain"
)

// Protocol limits.
const (
	// MaxLineLen limits the request line and each header line (8KB).
	MaxLineLen = 8 * 1024

	// MaxHeaderCount limits the number of header lines.
	MaxHeaderCount = 100
)

var errLineTooLong = errors.New("line too long")

// Request is one parsed HTTP request.
type Request struct {
	// ID identifies the request in logs.
	ID string
	// Method is GET or POST.
	Method string
	// Proto is the protocol version from the request line, e.g. "HTTP/1.1".
	Proto string
	// RawPath is the request target exactly as received.
	RawPath string
	// Path is the decoded path without the query string.
	Path string
	// Args holds the decoded query arguments; the last duplicate wins.
	Args map[string]string
	// Header holds the request headers with canonical keys.
	Header http.Header
	// Body is empty unless Content-Length was sent.
	Body []byte
	// RemoteAddr is the client address.
	RemoteAddr string

	ctx context.Context
}

// Context returns the request context. It is never nil.
func (r *Request) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// Arg returns the query argument key, or def when absent.
func (r *Request) Arg(key, def string) string {
	if v, ok := r.Args[key]; ok {
		return v
	}
	return def
}

// wantsClose reports whether the client asked to close after this request.
func (r *Request) wantsClose() bool {
	conn := strings.ToLower(r.Header.Get("Connection"))
	if r.Proto == "HTTP/1.0" {
		return !strings.Contains(conn, "keep-alive")
	}
	return strings.Contains(conn, "close")
}

// ReadRequest reads one request from br.
//
// io.EOF is returned unwrapped when the peer closed before sending anything.
// Framing violations are returned as *domain.DomainError carrying the status
// to answer with.
func ReadRequest(br *bufio.Reader, maxBody int64, imagePrefix string) (*Request, error) {
	line, err := readLine(br)
	if err != nil {
		return nil, lineError(err, domain.ErrBadRequest)
	}

	method, target, proto, ok := parseRequestLine(line)
	if !ok {
		return nil, domain.ErrBadRequest.WithDetails("malformed request line")
	}

	header, err := readHeader(br)
	if err != nil {
		return nil, err
	}

	req := &Request{
		Method:  method,
		Proto:   proto,
		RawPath: target,
		Header:  header,
	}

	if method != http.MethodGet && method != http.MethodPost {
		return req, domain.ErrMethodNotAllowed.WithDetails(method)
	}

	if err := req.parseTarget(imagePrefix); err != nil {
		return req, err
	}

	if te := header.Get("Transfer-Encoding"); te != "" {
		return req, domain.ErrBadRequest.WithDetails("transfer-encoding not supported")
	}
	if cl := header.Get("Content-Length"); cl != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(cl), 10, 64)
		if err != nil || n < 0 {
			return req, domain.ErrBadRequest.WithDetails("invalid Content-Length")
		}
		if n > maxBody {
			return req, domain.ErrBodyTooLarge.WithDetails(fmt.Sprintf("%d exceeds limit %d", n, maxBody))
		}
		req.Body = make([]byte, n)
		if _, err := io.ReadFull(br, req.Body); err != nil {
			return req, domain.ErrBadRequest.WithCause(err)
		}
	}

	return req, nil
}

// parseTarget fills Path and Args from RawPath.
func (r *Request) parseTarget(imagePrefix string) error {
	if !strings.HasPrefix(r.RawPath, "/") {
		return domain.ErrBadRequest.WithDetails("request target must be an absolute path")
	}

	// Generated images carry their own name in the target; the whole family
	// is served by the handler registered for the prefix.
	if imagePrefix != "" && strings.HasPrefix(r.RawPath, imagePrefix) {
		r.Path = imagePrefix
		r.Args = map[string]string{}
		return nil
	}

	rawPath, rawQuery, _ := strings.Cut(r.RawPath, "?")
	p, err := url.PathUnescape(rawPath)
	if err != nil {
		return domain.ErrBadRequest.WithCause(err)
	}
	r.Path = p
	r.Args = parseArgs(rawQuery)
	return nil
}

// parseArgs decodes a query string. Pairs without '=' and pairs that fail
// to decode are skipped; a repeated key keeps its last value.
func parseArgs(query string) map[string]string {
	args := make(map[string]string)
	for _, pair := range strings.FieldsFunc(query, func(r rune) bool { return r == '&' || r == ';' }) {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key, err := url.QueryUnescape(k)
		if err != nil {
			continue
		}
		val, err := url.QueryUnescape(v)
		if err != nil {
			continue
		}
		args[key] = val
	}
	return args
}

func parseRequestLine(line string) (method, target, proto string, ok bool) {
	method, rest, ok1 := strings.Cut(line, " ")
	target, proto, ok2 := strings.Cut(rest, " ")
	if !ok1 || !ok2 || method == "" || target == "" {
		return "", "", "", false
	}
	if proto != "HTTP/1.0" && proto != "HTTP/1.1" {
		return "", "", "", false
	}
	for _, c := range method {
		if c < 'A' || c > 'Z' {
			return "", "", "", false
		}
	}
	return method, target, proto, true
}

func readHeader(br *bufio.Reader) (http.Header, error) {
	header := make(http.Header)
	for count := 0; ; count++ {
		line, err := readLine(br)
		if err != nil {
			return nil, lineError(err, domain.ErrHeaderTooLarge)
		}
		if line == "" {
			return header, nil
		}
		if count >= MaxHeaderCount {
			return nil, domain.ErrHeaderTooLarge.WithDetails(fmt.Sprintf("more than %d header lines", MaxHeaderCount))
		}
		k, v, ok := strings.Cut(line, ":")
		if !ok || k == "" || strings.ContainsAny(k, " \t") {
			return nil, domain.ErrBadRequest.WithDetails("malformed header line")
		}
		header.Add(textproto.CanonicalMIMEHeaderKey(k), strings.TrimSpace(v))
	}
}

// readLine reads a line terminated by LF, dropping the optional CR.
func readLine(br *bufio.Reader) (string, error) {
	var buf []byte
	for {
		frag, err := br.ReadSlice('\n')
		buf = append(buf, frag...)
		if len(buf) > MaxLineLen {
			return "", errLineTooLong
		}
		if err == nil {
			break
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if errors.Is(err, io.EOF) && len(buf) > 0 {
			return "", io.ErrUnexpectedEOF
		}
		return "", err
	}
	buf = buf[:len(buf)-1]
	if n := len(buf); n > 0 && buf[n-1] == '\r' {
		buf = buf[:n-1]
	}
	return string(buf), nil
}

// lineError maps readLine failures. I/O errors pass through unchanged so
// the connection loop can tell a hang-up from a protocol violation.
func lineError(err error, tooLong *domain.DomainError) error {
	if errors.Is(err, errLineTooLong) {
		return tooLong.WithDetails(fmt.Sprintf("line exceeds %d bytes", MaxLineLen))
	}
	return err
}
