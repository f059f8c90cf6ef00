package eventsocket

import (
	"log/slog"
	"net"
	"time"
)

// Option configures a Client or a Console. Options that only concern the
// console (backoff, history) are ignored by a Client.
type Option func(*options)

type options struct {
	logger    *slog.Logger
	onSend    func(Command)
	onReceive func(*Frame)
	dialer    Dialer
	clock     Clock

	minDelay   time.Duration
	maxDelay   time.Duration
	multiplier float64
	history    *History
}

func newOptions(opts []Option) options {
	o := options{
		logger:     slog.New(slog.DiscardHandler),
		dialer:     &net.Dialer{},
		clock:      RealClock(),
		minDelay:   DefaultMinDelay,
		maxDelay:   DefaultMaxDelay,
		multiplier: DefaultMultiplier,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithOnSend sets a callback invoked before each command is written.
func WithOnSend(fn func(Command)) Option {
	return func(o *options) {
		o.onSend = fn
	}
}

// WithOnReceive sets a callback invoked after each frame is decoded.
func WithOnReceive(fn func(*Frame)) Option {
	return func(o *options) {
		o.onReceive = fn
	}
}

// WithDialer replaces the network dialer.
func WithDialer(d Dialer) Option {
	return func(o *options) {
		if d != nil {
			o.dialer = d
		}
	}
}

// WithClock replaces the clock used for connect timers, reconnect delays
// and history timestamps.
func WithClock(clock Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithBackoff sets the console's reconnect schedule.
func WithBackoff(minDelay, maxDelay time.Duration, multiplier float64) Option {
	return func(o *options) {
		o.minDelay = minDelay
		o.maxDelay = maxDelay
		o.multiplier = multiplier
	}
}

// WithHistory makes the console write into h instead of a new buffer.
func WithHistory(h *History) Option {
	return func(o *options) {
		o.history = h
	}
}
