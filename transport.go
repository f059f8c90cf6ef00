package eventsocket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// Dialer opens the underlying stream connection. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(ctx context.Context, network, address string) (net.Conn, error)

// DialContext calls f.
func (f DialerFunc) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	return f(ctx, network, address)
}

// readBufferSize is the size of each socket read.
const readBufferSize = 16 * 1024

// Conn is a framed connection to the engine. Send may be called
// concurrently with Receive; Receive must only be used by one goroutine.
type Conn struct {
	conn net.Conn
	addr string

	mu  sync.Mutex // serializes writes
	dec Decoder
	buf []byte

	closeOnce sync.Once
	closed    atomic.Bool
	closeErr  error
}

type dialResult struct {
	conn net.Conn
	err  error
}

// dial opens a connection to addr. The connect timeout runs on its own
// timer rather than the dialer's, so an attempt the network stack will
// not abort still returns on time; a connection that completes after the
// timer fired is closed.
func dial(ctx context.Context, d Dialer, clock Clock, addr string, timeout time.Duration) (*Conn, error) {
	dialCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan dialResult, 1)
	go func() {
		conn, err := d.DialContext(dialCtx, "tcp", addr)
		done <- dialResult{conn: conn, err: err}
	}()

	var timer <-chan time.Time
	if timeout > 0 {
		timer = clock.After(timeout)
	}

	select {
	case r := <-done:
		if r.err != nil {
			return nil, &TransportError{Op: "connect", Addr: addr, Err: r.err}
		}
		return newConn(r.conn, addr), nil
	case <-timer:
		go discard(done)
		return nil, &TransportError{
			Op:   "connect",
			Addr: addr,
			Msg:  fmt.Sprintf("no connection within %s", timeout),
			Err:  ErrConnectTimeout,
		}
	case <-ctx.Done():
		go discard(done)
		return nil, &TransportError{Op: "connect", Addr: addr, Err: ctx.Err()}
	}
}

// discard closes a connection delivered after its dial was abandoned.
func discard(done <-chan dialResult) {
	if r := <-done; r.conn != nil {
		r.conn.Close()
	}
}

func newConn(conn net.Conn, addr string) *Conn {
	return &Conn{
		conn: conn,
		addr: addr,
		buf:  make([]byte, readBufferSize),
	}
}

// Addr returns the address the connection was dialed with.
func (c *Conn) Addr() string {
	return c.addr
}

// Send writes a command.
func (c *Conn) Send(ctx context.Context, cmd Command) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return &TransportError{Op: "write", Addr: c.addr, Err: ErrClosed}
	}

	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetWriteDeadline(deadline)
		defer c.conn.SetWriteDeadline(time.Time{})
	}

	if _, err := c.conn.Write(cmd.Bytes()); err != nil {
		return &TransportError{Op: "write", Addr: c.addr, Err: c.cause(err)}
	}
	return nil
}

// Receive reads the next frame. A positive timeout bounds the wait; zero
// waits until a frame arrives, the connection fails or ctx is done.
func (c *Conn) Receive(ctx context.Context, timeout time.Duration) (*Frame, error) {
	if frame, ok := c.dec.Next(); ok {
		return frame, nil
	}

	if timeout > 0 {
		c.conn.SetReadDeadline(time.Now().Add(timeout))
		defer c.conn.SetReadDeadline(time.Time{})
	}

	// Unblock the read when ctx ends.
	stop := context.AfterFunc(ctx, func() {
		c.conn.SetReadDeadline(time.Unix(1, 0))
	})
	defer stop()

	for {
		n, err := c.conn.Read(c.buf)
		if n > 0 {
			if frame, ok := c.dec.Feed(c.buf[:n]); ok {
				return frame, nil
			}
		}
		if err == nil {
			continue
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &TransportError{Op: "read", Addr: c.addr, Err: ctxErr}
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, &TransportError{
				Op:   "read",
				Addr: c.addr,
				Msg:  fmt.Sprintf("no reply within %s", timeout),
				Err:  ErrReadTimeout,
			}
		}
		return nil, &TransportError{Op: "read", Addr: c.addr, Err: c.cause(err)}
	}
}

// Close tears the connection down. It is safe to call more than once.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

// cause maps errors caused by our own Close to ErrClosed.
func (c *Conn) cause(err error) error {
	if c.closed.Load() && (errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe)) {
		return ErrClosed
	}
	return err
}
