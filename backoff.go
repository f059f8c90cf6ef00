package eventsocket

import (
	"sync"
	"time"
)

// Default reconnect schedule.
const (
	DefaultMinDelay   = 500 * time.Millisecond
	DefaultMaxDelay   = 8 * time.Second
	DefaultMultiplier = 1.5
)

// Backoff produces growing delays between reconnect attempts. The delay
// starts at Min, is multiplied after every failure up to Max, and returns
// to Min on Reset.
type Backoff struct {
	min        time.Duration
	max        time.Duration
	multiplier float64

	mu      sync.Mutex
	current time.Duration
}

// NewBackoff creates a schedule. Out-of-range values fall back to the
// defaults; max is raised to min if smaller.
func NewBackoff(minDelay, maxDelay time.Duration, multiplier float64) *Backoff {
	if minDelay <= 0 {
		minDelay = DefaultMinDelay
	}
	if maxDelay <= 0 {
		maxDelay = DefaultMaxDelay
	}
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	if multiplier < 1 {
		multiplier = DefaultMultiplier
	}
	return &Backoff{
		min:        minDelay,
		max:        maxDelay,
		multiplier: multiplier,
		current:    minDelay,
	}
}

// Next returns the delay to wait now and advances the schedule.
func (b *Backoff) Next() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	delay := b.current
	next := time.Duration(float64(b.current) * b.multiplier)
	if next > b.max {
		next = b.max
	}
	b.current = next
	return delay
}

// Reset returns the schedule to its minimum delay.
func (b *Backoff) Reset() {
	b.mu.Lock()
	b.current = b.min
	b.mu.Unlock()
}

// Current returns the delay the next call to Next will return.
func (b *Backoff) Current() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}
