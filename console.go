package eventsocket

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// State is the lifecycle state of a Console.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateAuthenticating
	StateSubscribing
	StateStreaming
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateAuthenticating:
		return "authenticating"
	case StateSubscribing:
		return "subscribing"
	case StateStreaming:
		return "streaming"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Console keeps a subscription to the engine's event feed open for the
// life of the process and records what it sees in a History. Failures
// never reach the caller: each one is written to the history as a
// diagnostic line and followed by a reconnect after a backoff delay.
//
// Create one with NewConsole, run it with Start and end it with Stop.
type Console struct {
	cfg     Config
	opts    options
	history *History
	backoff *Backoff

	attempts atomic.Int64

	mu      sync.Mutex
	state   State
	conn    *Conn
	cancel  context.CancelFunc
	started bool
	stopped bool

	done chan struct{}
}

// NewConsole creates a Console for cfg. It does not connect until Start.
func NewConsole(cfg Config, opts ...Option) *Console {
	o := newOptions(opts)
	history := o.history
	if history == nil {
		history = NewHistory(MaxHistory, o.clock)
	}
	return &Console{
		cfg:     cfg,
		opts:    o,
		history: history,
		backoff: NewBackoff(o.minDelay, o.maxDelay, o.multiplier),
		state:   StateDisconnected,
		done:    make(chan struct{}),
	}
}

// History returns the buffer the console writes to.
func (c *Console) History() *History {
	return c.history
}

// Tail implements TailReader.
func (c *Console) Tail(since int64, limit int) Tail {
	return c.history.Query(since, limit)
}

// State returns the current lifecycle state.
func (c *Console) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Attempts returns the number of connection attempts made so far.
func (c *Console) Attempts() int64 {
	return c.attempts.Load()
}

// Done is closed once the console has stopped.
func (c *Console) Done() <-chan struct{} {
	return c.done
}

// Start launches the background loop. It runs until Stop is called or ctx
// is done. Calls after the first, or after Stop, do nothing.
func (c *Console) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started || c.stopped {
		return
	}
	c.started = true

	ctx, c.cancel = context.WithCancel(ctx)
	go c.run(ctx)
}

// Stop ends the loop and waits for it to exit. An open connection is
// closed immediately so a pending read fails at once, and a pending
// backoff wait is abandoned. Stop is safe to call more than once.
func (c *Console) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		<-c.done
		return
	}
	c.stopped = true
	c.state = StateStopped
	started := c.started
	conn := c.conn
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	if !started {
		close(c.done)
		return
	}
	<-c.done
}

func (c *Console) run(ctx context.Context) {
	defer close(c.done)
	defer func() {
		c.mu.Lock()
		c.stopped = true
		c.state = StateStopped
		c.mu.Unlock()
	}()

	for ctx.Err() == nil {
		err := c.stream(ctx)
		if ctx.Err() != nil {
			return
		}
		c.disconnected(err)

		delay := c.backoff.Next()
		c.opts.logger.Debug("reconnect scheduled", slog.Duration("delay", delay))
		select {
		case <-ctx.Done():
			return
		case <-c.opts.clock.After(delay):
		}
	}
}

// stream runs one connection from dial to failure.
func (c *Console) stream(ctx context.Context) error {
	if !c.transition(StateConnecting) {
		return context.Canceled
	}
	c.attempts.Add(1)

	id := uuid.NewString()
	logger := c.opts.logger.With(slog.String("session", id))

	conn, err := dial(ctx, c.opts.dialer, c.opts.clock, c.cfg.Addr(), c.cfg.ConnectTimeout)
	if err != nil {
		return err
	}
	if !c.track(conn) {
		conn.Close()
		return context.Canceled
	}
	defer c.untrack(conn)

	s := &session{id: id, conn: conn, opts: &c.opts, logger: logger}

	if !c.transition(StateAuthenticating) {
		return context.Canceled
	}
	if err := s.handshake(ctx, c.cfg.Secret, c.cfg.ReadTimeout); err != nil {
		return err
	}

	if !c.transition(StateSubscribing) {
		return context.Canceled
	}
	if err := s.send(ctx, SubscribeAll); err != nil {
		return err
	}
	c.history.Append(fmt.Sprintf("[console] ESL connected to %s, subscribed to %s", conn.Addr(), SubscribeAll.Args))

	if !c.transition(StateStreaming) {
		return context.Canceled
	}
	c.backoff.Reset()
	logger.Info("event stream connected", slog.String("addr", conn.Addr()))

	for {
		frame, err := s.receive(ctx, 0)
		if err != nil {
			return err
		}
		if line := displayLine(frame); line != "" {
			c.history.Append(line)
		}
		if frame.IsDisconnectNotice() {
			return &TransportError{Op: "read", Addr: conn.Addr(), Msg: "engine sent disconnect notice", Err: ErrClosed}
		}
	}
}

// disconnected records a failed or lost connection.
func (c *Console) disconnected(err error) {
	c.transition(StateDisconnected)

	reason := "connection lost"
	if err != nil {
		reason = err.Error()
	}
	c.history.Append("[console] ESL disconnected: " + reason)

	if isExpectedClose(err) {
		c.opts.logger.Info("event stream closed", slog.String("reason", reason))
		return
	}
	c.opts.logger.Warn("event stream disconnected", slog.String("reason", reason))
}

// transition moves to s unless the console has been stopped.
func (c *Console) transition(s State) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return false
	}
	c.state = s
	return true
}

func (c *Console) track(conn *Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return false
	}
	c.conn = conn
	return true
}

func (c *Console) untrack(conn *Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
	conn.Close()
}
