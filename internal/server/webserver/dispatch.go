package webserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/pagegate/internal/core/domain"
	"github.com/yndnr/pagegate/internal/telemetry/logger"
)

// Bodies of the 401 response.
const (
	MsgLoginRequired = "You are not allowed to access this page. Please login first!"
	MsgAuthFailed    = "Authentication failed"
)

// PanicError wraps a value recovered from a panicking handler.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("handler panic: %v", e.Value)
}

// dispatch runs the request pipeline: rate limit, authentication, handler
// resolution and invocation. It always returns a complete response.
func (s *Server) dispatch(ctx context.Context, c *Conn, req *Request, log *slog.Logger) *response {
	start := time.Now()
	c.state.Requests++

	req.ID = ulid.Make().String()
	req.RemoteAddr = c.RemoteAddr().String()
	reqCtx := logger.WithConnID(logger.WithRequestID(ctx, req.ID), c.id)
	req.ctx = reqCtx
	log = log.With("request_id", req.ID, "method", req.Method, "path", req.Path)

	if !s.limiter.Allow(c.clientIP()) {
		s.metrics.IncRateLimited()
		log.Warn("rate limited")
		resp := plainResponse(http.StatusTooManyRequests, domain.ErrRateLimited.Message+"\n")
		resp.header.Set("Retry-After", "1")
		return resp
	}

	if resp := s.authenticate(c, req, log); resp != nil {
		return resp
	}

	h, exact := s.table.Resolve(req.Path)
	route := "default"
	if exact {
		route = "handler"
	}

	w := newResponse()
	stack, err := invoke(h, w, req)
	s.metrics.ObserveRequestDuration(route, time.Since(start).Seconds())
	if err != nil {
		s.metrics.IncHandlerFailure()
		log.Error("handler failed", "route", route, "error", err)
		return failureResponse(err, stack)
	}

	log.Debug("request served", "route", route, "status", w.statusCode(), "bytes", w.body.Len())
	return w
}

// authenticate returns nil when the request may proceed, otherwise the 401
// response carrying a fresh challenge.
func (s *Server) authenticate(c *Conn, req *Request, log *slog.Logger) *response {
	if s.auth == nil {
		return nil
	}
	if c.state.Authenticated {
		s.metrics.RecordAuth("cached")
		return nil
	}

	err := s.auth.Authenticate(req.Method, req.RawPath, req.Header.Get("Authorization"))
	if err == nil {
		c.state.Authenticated = true
		s.metrics.RecordAuth("ok")
		return nil
	}

	msg := MsgAuthFailed
	if errors.Is(err, domain.ErrAuthRequired) {
		msg = MsgLoginRequired
		s.metrics.RecordAuth("challenge")
		log.Debug("authentication required")
	} else {
		s.metrics.RecordAuth("rejected")
		log.Warn("authentication failed", "code", domain.GetErrorCode(err), "error", err)
	}

	resp := plainResponse(http.StatusUnauthorized, msg)
	resp.header.Set("WWW-Authenticate", s.auth.Challenge().String())
	return resp
}

// invoke calls h and converts a panic into a *PanicError. The stack is
// captured for every failure.
func invoke(h Handler, w *response, req *Request) (stack []byte, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &PanicError{Value: p}
			stack = debug.Stack()
		}
	}()
	if err = h.ServeRequest(w, req); err != nil {
		stack = debug.Stack()
	}
	return stack, err
}

// failureResponse builds the 500 answer for a failed handler. Any output
// the handler buffered is discarded.
func failureResponse(err error, stack []byte) *response {
	var b strings.Builder
	b.WriteString("500 Internal Server Error\n\n")
	b.WriteString(err.Error())
	b.WriteString("\n\n")
	b.Write(stack)
	return plainResponse(http.StatusInternalServerError, b.String())
}

func statusText(code int) string {
	if t := http.StatusText(code); t != "" {
		return t
	}
	return "Status " + fmt.Sprint(code)
}
