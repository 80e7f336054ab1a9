package http

import (
	"context"
	"net"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// idleRecheck is how often a dial waiting for a connection slot closes idle
// pooled connections again.
const idleRecheck = 50 * time.Millisecond

type dialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// connLimiter caps the number of open connections across all hosts. A slot
// is held from dial until the connection is closed, idle or not.
type connLimiter struct {
	dial      dialFunc
	sem       *semaphore.Weighted
	closeIdle func()
}

func newConnLimiter(dial dialFunc, max int, closeIdle func()) *connLimiter {
	return &connLimiter{
		dial:      dial,
		sem:       semaphore.NewWeighted(int64(max)),
		closeIdle: closeIdle,
	}
}

// DialContext waits for a free slot, then dials. While waiting, idle pooled
// connections are closed so their slots go to hosts that need them.
func (l *connLimiter) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	if err := l.acquire(ctx); err != nil {
		return nil, err
	}

	conn, err := l.dial(ctx, network, addr)
	if err != nil {
		l.sem.Release(1)
		return nil, err
	}

	return &limitedConn{Conn: conn, release: sync.OnceFunc(func() { l.sem.Release(1) })}, nil
}

func (l *connLimiter) acquire(ctx context.Context) error {
	for {
		if l.sem.TryAcquire(1) {
			return nil
		}
		if l.closeIdle != nil {
			l.closeIdle()
		}

		wait, cancel := context.WithTimeout(ctx, idleRecheck)
		err := l.sem.Acquire(wait, 1)
		cancel()
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// limitedConn gives its slot back on the first Close.
type limitedConn struct {
	net.Conn
	release func()
}

func (c *limitedConn) Close() error {
	err := c.Conn.Close()
	c.release()
	return err
}
