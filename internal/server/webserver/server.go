package webserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/pagegate/internal/core/domain"
	"github.com/yndnr/pagegate/internal/core/service"
	"github.com/yndnr/pagegate/internal/telemetry/metric"
	"github.com/yndnr/pagegate/pkg/digest"
)

// ErrServerRunning is returned by Serve when the server is already serving.
var ErrServerRunning = errors.New("webserver: already serving")

// Authenticator gates requests with HTTP digest authentication.
type Authenticator interface {
	// Challenge issues a fresh challenge.
	Challenge() digest.Challenge
	// Authenticate checks the Authorization header of a request for
	// method and uri. A nil error admits the request.
	Authenticate(method, uri, header string) error
}

// sweeper is implemented by authenticators that keep expiring state.
type sweeper interface {
	Sweep() int
}

// Stats is a snapshot of server activity.
type Stats struct {
	Addr              string    `json:"addr"`
	Serving           bool      `json:"serving"`
	StartedAt         time.Time `json:"started_at"`
	ActiveConnections int64     `json:"active_connections"`
	RequestsServed    uint64    `json:"requests_served"`
	Routes            int       `json:"routes"`
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics records server metrics into m.
func WithMetrics(m *metric.Registry) Option {
	return func(s *Server) { s.metrics = m }
}

// WithSweepInterval sets how often expired nonces and idle rate limiters
// are dropped (default: 1m).
func WithSweepInterval(d time.Duration) Option {
	return func(s *Server) { s.sweepInterval = d }
}

// Server is the PageGate HTTP/1.x server.
type Server struct {
	cfg     *Config
	table   *Table
	auth    Authenticator
	limiter *service.LimiterRegistry
	metrics *metric.Registry
	logger  *slog.Logger

	sweepInterval time.Duration

	mu        sync.Mutex
	ln        net.Listener
	conns     map[*Conn]struct{}
	startedAt time.Time
	closeOnce sync.Once

	running atomic.Bool
	wg      sync.WaitGroup
	served  atomic.Uint64
	active  atomic.Int64
}

// New creates a server dispatching to table. auth may be nil to serve
// without authentication.
func New(cfg *Config, table *Table, auth Authenticator, logger *slog.Logger, opts ...Option) (*Server, error) {
	if table == nil {
		return nil, domain.ErrNoDefaultHandler
	}
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()

	s := &Server{
		cfg:           cfg,
		table:         table,
		auth:          auth,
		limiter:       service.NewLimiterRegistry(cfg.RateLimit),
		logger:        logger.With("component", "webserver"),
		sweepInterval: time.Minute,
		conns:         make(map[*Conn]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ListenAndServe listens on the configured address and serves until ctx
// is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled or Shutdown is
// called. Requests in flight complete; Serve returns once every connection
// has been closed.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrServerRunning
	}

	s.mu.Lock()
	s.ln = ln
	s.startedAt = time.Now()
	s.mu.Unlock()

	s.logger.Info("web server listening",
		"address", ln.Addr().String(),
		"keep_alive", s.cfg.KeepAlive,
		"auth", s.auth != nil,
		"routes", s.table.Len())

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-loopCtx.Done()
		s.stopAccepting()
	}()
	go s.janitor(loopCtx)

	err := s.acceptLoop(loopCtx, ln)
	cancel()
	s.wg.Wait()

	s.logger.Info("web server stopped", "requests_served", s.served.Load())
	return err
}

// Shutdown stops accepting, wakes idle connections and waits for the rest
// to finish their current request. When ctx expires first the remaining
// connections are closed forcibly.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopAccepting()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.mu.Lock()
		for c := range s.conns {
			_ = c.Close()
		}
		s.mu.Unlock()
		return ctx.Err()
	}
}

// Addr returns the listen address, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Serving reports whether the accept loop is running.
func (s *Server) Serving() bool {
	return s.running.Load()
}

// Routes returns the registered exact paths.
func (s *Server) Routes() []string {
	return s.table.Paths()
}

// Stats returns a snapshot of server activity.
func (s *Server) Stats() Stats {
	st := Stats{
		Serving:           s.running.Load(),
		ActiveConnections: s.active.Load(),
		RequestsServed:    s.served.Load(),
		Routes:            s.table.Len(),
	}
	s.mu.Lock()
	st.StartedAt = s.startedAt
	if s.ln != nil {
		st.Addr = s.ln.Addr().String()
	}
	s.mu.Unlock()
	return st
}

// MetricStats samples the values exported by metric.Collector.
func (s *Server) MetricStats() metric.Stats {
	st := metric.Stats{
		LimitedClients: s.limiter.Len(),
		Routes:         s.table.Len(),
	}
	if a, ok := s.auth.(interface{ OutstandingNonces() int }); ok {
		st.OutstandingNonces = a.OutstandingNonces()
	}
	return st
}

func (s *Server) stopAccepting() {
	s.running.Store(false)
	s.closeOnce.Do(func() {
		s.mu.Lock()
		ln := s.ln
		s.mu.Unlock()
		if ln != nil {
			_ = ln.Close()
		}
	})

	s.mu.Lock()
	for c := range s.conns {
		c.wake()
	}
	s.mu.Unlock()
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		nc, err := ln.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				s.logger.Warn("accept timeout", "error", err)
				time.Sleep(10 * time.Millisecond)
				continue
			}
			return err
		}

		c := newConn(nc, ulid.Make().String())
		if !s.track(c) {
			_ = c.Close()
			return nil
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(ctx, c)
		}()
	}
}

// track registers c unless the server is stopping.
func (s *Server) track(c *Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running.Load() {
		return false
	}
	s.conns[c] = struct{}{}
	s.active.Add(1)
	s.metrics.ConnOpened()
	return true
}

func (s *Server) untrack(c *Conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
	s.active.Add(-1)
	s.metrics.ConnClosed()
}

func (s *Server) stopping(ctx context.Context) bool {
	return ctx.Err() != nil || !s.running.Load()
}

func (s *Server) serveConn(ctx context.Context, c *Conn) {
	defer s.untrack(c)
	defer c.Close()

	log := s.logger.With("conn_id", c.id, "remote", c.RemoteAddr().String())
	log.Debug("connection opened")

	for {
		// First byte: allow idle timeout between requests.
		if err := c.netConn.SetReadDeadline(time.Now().Add(s.cfg.IdleTimeout)); err != nil {
			return
		}
		c.setIdle(true)
		if s.stopping(ctx) {
			return
		}
		_, err := c.br.Peek(1)
		c.setIdle(false)
		if err != nil {
			log.Debug("connection closed", "reason", err)
			return
		}

		// After first byte: tighten to the per-request read timeout.
		if err := c.netConn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout)); err != nil {
			return
		}

		req, err := ReadRequest(c.br, s.cfg.MaxBodyBytes, s.cfg.ImagePrefix)
		if err != nil {
			var de *domain.DomainError
			if !errors.As(err, &de) {
				log.Debug("connection read error", "error", err)
				return
			}
			s.rejectMalformed(c, req, de, log)
			return
		}

		resp := s.dispatch(ctx, c, req, log)
		keepAlive := s.cfg.KeepAlive && !req.wantsClose() && !s.stopping(ctx)
		if err := s.write(c, req.Method, req.Proto, resp, keepAlive); err != nil {
			log.Debug("write failed", "error", err)
			return
		}
		if !keepAlive {
			return
		}
	}
}

// rejectMalformed answers a request that could not be parsed and the
// connection is closed afterwards.
func (s *Server) rejectMalformed(c *Conn, req *Request, de *domain.DomainError, log *slog.Logger) {
	code := de.HTTPStatus()
	log.Warn("rejecting request", "status", code, "code", de.Code, "error", de)

	resp := plainResponse(code, strconv.Itoa(code)+" "+statusText(code)+"\n")
	if errors.Is(de, domain.ErrMethodNotAllowed) {
		resp.header.Set("Allow", "GET, POST")
	}
	method, proto := "", ""
	if req != nil {
		method, proto = req.Method, req.Proto
	}
	_ = s.write(c, method, proto, resp, false)
}

func (s *Server) write(c *Conn, method, proto string, resp *response, keepAlive bool) error {
	s.served.Add(1)
	s.metrics.RecordRequest(method, strconv.Itoa(resp.statusCode()))

	if err := c.netConn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout)); err != nil {
		return err
	}
	return resp.writeTo(c.bw, proto, keepAlive, s.cfg.ServerName, time.Now())
}

// janitor drops expired nonces and idle rate limiters.
func (s *Server) janitor(ctx context.Context) {
	if s.sweepInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			nonces := 0
			if sw, ok := s.auth.(sweeper); ok {
				nonces = sw.Sweep()
			}
			limiters := s.limiter.Prune(10 * s.sweepInterval)
			if nonces > 0 || limiters > 0 {
				s.logger.Debug("swept expired state", "nonces", nonces, "limiters", limiters)
			}
		}
	}
}
