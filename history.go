package eventsocket

import (
	"math"
	"sort"
	"sync"
)

// History limits.
const (
	MaxHistory       = 2500
	MaxTailLimit     = 500
	DefaultTailLimit = 200
)

// Line is one history entry. Timestamp is in Unix milliseconds.
type Line struct {
	Timestamp int64  `json:"ts"`
	Text      string `json:"text"`
}

// Tail is the result of a history query. Now is the anchor a poller passes
// as since on its next call.
type Tail struct {
	Now   int64  `json:"now"`
	Items []Line `json:"items"`
}

// History is a bounded, time-ordered buffer of text lines. Once full, the
// oldest lines are evicted first. It is safe for concurrent use.
type History struct {
	clock Clock
	max   int

	mu    sync.RWMutex
	lines []Line
}

// NewHistory creates a buffer holding at most capacity lines. A
// non-positive capacity means MaxHistory; a nil clock means RealClock.
func NewHistory(capacity int, clock Clock) *History {
	if capacity <= 0 {
		capacity = MaxHistory
	}
	if clock == nil {
		clock = RealClock()
	}
	return &History{
		clock: clock,
		max:   capacity,
		lines: make([]Line, 0, capacity),
	}
}

// Append stamps text with the current time and adds it at the tail.
// Timestamps never go backwards, even if the clock does.
func (h *History) Append(text string) Line {
	now := h.clock.Now().UnixMilli()

	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.lines); n > 0 && h.lines[n-1].Timestamp > now {
		now = h.lines[n-1].Timestamp
	}
	line := Line{Timestamp: now, Text: text}
	h.lines = append(h.lines, line)
	if over := len(h.lines) - h.max; over > 0 {
		clear(h.lines[:over])
		h.lines = h.lines[over:]
	}
	return line
}

// Query returns the most recent lines newer than since, oldest first, at
// most limit of them. limit is clamped to [1, MaxTailLimit].
func (h *History) Query(since int64, limit int) Tail {
	limit = min(max(limit, 1), MaxTailLimit)

	h.mu.RLock()
	defer h.mu.RUnlock()

	now := h.clock.Now().UnixMilli()
	start := sort.Search(len(h.lines), func(i int) bool {
		return h.lines[i].Timestamp > since
	})
	matched := h.lines[start:]
	if len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}

	items := make([]Line, len(matched))
	copy(items, matched)
	return Tail{Now: now, Items: items}
}

// Tail implements TailReader.
func (h *History) Tail(since int64, limit int) Tail {
	return h.Query(since, limit)
}

// Len returns the number of buffered lines.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.lines)
}

// TailSince converts a client-supplied since value, mapping NaN and
// infinities to 0.
func TailSince(v float64) int64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int64(v)
}

// TailLimit converts a client-supplied limit, mapping NaN and infinities
// to DefaultTailLimit and clamping the rest to [1, MaxTailLimit].
func TailLimit(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return DefaultTailLimit
	}
	return int(min(max(v, 1), MaxTailLimit))
}
