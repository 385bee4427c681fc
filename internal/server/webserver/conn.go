package webserver

import (
	"bufio"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// ConnState holds the per-connection state. It is only touched by the
// goroutine serving the connection.
type ConnState struct {
	// Authenticated caches a successful digest check for the rest of the
	// connection.
	Authenticated bool
	// Requests counts requests served on this connection.
	Requests int
}

// Conn is a single client connection.
type Conn struct {
	id      string
	netConn net.Conn
	br      *bufio.Reader
	bw      *bufio.Writer

	state ConnState

	// idleMu guards idle so shutdown can wake a connection waiting for
	// its next request without disturbing one that is mid-request.
	idleMu sync.Mutex
	idle   bool

	closed atomic.Bool
}

func newConn(c net.Conn, id string) *Conn {
	return &Conn{
		id:      id,
		netConn: c,
		br:      bufio.NewReader(c),
		bw:      bufio.NewWriter(c),
	}
}

// Close closes the connection once.
func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.netConn.Close()
}

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.netConn.RemoteAddr()
}

// clientIP returns the host part of the peer address.
func (c *Conn) clientIP() string {
	addr := c.RemoteAddr().String()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

func (c *Conn) setIdle(idle bool) {
	c.idleMu.Lock()
	c.idle = idle
	c.idleMu.Unlock()
}

// wake interrupts a pending read if the connection is idle.
func (c *Conn) wake() {
	c.idleMu.Lock()
	defer c.idleMu.Unlock()
	if c.idle {
		_ = c.netConn.SetReadDeadline(time.Now())
	}
}
