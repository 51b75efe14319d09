// Package netcheck answers "is a network path available right now" by dialing
// a well-known TCP endpoint.
package netcheck

import (
	"context"
	"net"
	"time"
)

// Checker probes connectivity with a single TCP dial.
type Checker struct {
	addr    string
	timeout time.Duration
	dialer  net.Dialer
}

// New creates a Checker that dials addr, giving up after timeout.
func New(addr string, timeout time.Duration) *Checker {
	return &Checker{addr: addr, timeout: timeout}
}

// Connected reports whether addr accepted a TCP connection within the timeout.
func (c *Checker) Connected(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	conn, err := c.dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
