package eventsocket

import (
	"fmt"
	"math"
	"sync"
	"testing"
	"time"
)

// fakeClock is a Clock under test control. After records every requested
// delay; it fires immediately unless block is set, in which case it never
// fires and the delay is reported on sleeping.
type fakeClock struct {
	mu       sync.Mutex
	now      time.Time
	delays   []time.Duration
	block    bool
	sleeping chan time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{
		now:      time.UnixMilli(1_700_000_000_000),
		sleeping: make(chan time.Duration, 100),
	}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func (f *fakeClock) After(d time.Duration) <-chan time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delays = append(f.delays, d)
	ch := make(chan time.Time, 1)
	if f.block {
		select {
		case f.sleeping <- d:
		default:
		}
		return ch
	}
	ch <- f.now
	return ch
}

func (f *fakeClock) getDelays() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.delays...)
}

func TestHistory_Bounded(t *testing.T) {
	clock := newFakeClock()
	h := NewHistory(MaxHistory, clock)

	for i := 0; i < MaxHistory+100; i++ {
		h.Append(fmt.Sprintf("line %d", i))
		clock.Advance(time.Millisecond)
		if h.Len() > MaxHistory {
			t.Fatalf("Len = %d after %d appends, want <= %d", h.Len(), i+1, MaxHistory)
		}
	}

	if h.Len() != MaxHistory {
		t.Errorf("Len = %d, want %d", h.Len(), MaxHistory)
	}

	tail := h.Query(math.MinInt64, MaxTailLimit)
	if len(tail.Items) != MaxTailLimit {
		t.Fatalf("len(Items) = %d, want %d", len(tail.Items), MaxTailLimit)
	}
	if tail.Items[len(tail.Items)-1].Text != fmt.Sprintf("line %d", MaxHistory+99) {
		t.Errorf("last = %q", tail.Items[len(tail.Items)-1].Text)
	}

	h.mu.RLock()
	first := h.lines[0]
	for _, line := range h.lines {
		if line.Timestamp < first.Timestamp {
			t.Errorf("line %q older than head %q", line.Text, first.Text)
		}
	}
	h.mu.RUnlock()
	if first.Text != "line 100" {
		t.Errorf("head = %q, want line 100", first.Text)
	}
}

func TestHistory_TimestampsNonDecreasing(t *testing.T) {
	clock := newFakeClock()
	h := NewHistory(10, clock)

	a := h.Append("a")
	clock.Advance(-time.Second)
	b := h.Append("b")
	clock.Advance(2 * time.Second)
	c := h.Append("c")

	if b.Timestamp < a.Timestamp {
		t.Errorf("b.Timestamp = %d, before a.Timestamp = %d", b.Timestamp, a.Timestamp)
	}
	if c.Timestamp <= b.Timestamp {
		t.Errorf("c.Timestamp = %d, want after %d", c.Timestamp, b.Timestamp)
	}
}

func TestHistory_Query(t *testing.T) {
	clock := newFakeClock()
	h := NewHistory(100, clock)

	var stamps []int64
	for i := 0; i < 10; i++ {
		stamps = append(stamps, h.Append(fmt.Sprintf("e%d", i)).Timestamp)
		clock.Advance(10 * time.Millisecond)
	}

	tail := h.Query(stamps[4], 3)
	if tail.Now != clock.Now().UnixMilli() {
		t.Errorf("Now = %d, want %d", tail.Now, clock.Now().UnixMilli())
	}
	if len(tail.Items) != 3 {
		t.Fatalf("len(Items) = %d, want 3", len(tail.Items))
	}
	for i, want := range []string{"e7", "e8", "e9"} {
		if tail.Items[i].Text != want {
			t.Errorf("Items[%d] = %q, want %q", i, tail.Items[i].Text, want)
		}
	}

	tail = h.Query(stamps[4], 200)
	if len(tail.Items) != 5 || tail.Items[0].Text != "e5" {
		t.Errorf("Items = %+v, want e5..e9", tail.Items)
	}

	tail = h.Query(tail.Now, 200)
	if len(tail.Items) != 0 {
		t.Errorf("len(Items) = %d, want 0", len(tail.Items))
	}
	if tail.Items == nil {
		t.Error("Items is nil, want empty slice")
	}
}

func TestHistory_QueryClampsLimit(t *testing.T) {
	clock := newFakeClock()
	h := NewHistory(MaxHistory, clock)
	for i := 0; i < 600; i++ {
		h.Append("x")
		clock.Advance(time.Millisecond)
	}

	if n := len(h.Query(0, 0).Items); n != 1 {
		t.Errorf("limit 0: len = %d, want 1", n)
	}
	if n := len(h.Query(0, -5).Items); n != 1 {
		t.Errorf("limit -5: len = %d, want 1", n)
	}
	if n := len(h.Query(0, 10_000).Items); n != MaxTailLimit {
		t.Errorf("limit 10000: len = %d, want %d", n, MaxTailLimit)
	}
}

func TestHistory_ConcurrentAppendAndQuery(t *testing.T) {
	h := NewHistory(50, nil)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			h.Append("line")
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			tail := h.Query(0, MaxTailLimit)
			for j := 1; j < len(tail.Items); j++ {
				if tail.Items[j].Timestamp < tail.Items[j-1].Timestamp {
					t.Errorf("items out of order")
					return
				}
			}
		}
	}()
	wg.Wait()

	if h.Len() != 50 {
		t.Errorf("Len = %d, want 50", h.Len())
	}
}

func TestTailLimit(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{math.NaN(), DefaultTailLimit},
		{math.Inf(1), DefaultTailLimit},
		{math.Inf(-1), DefaultTailLimit},
		{0, 1},
		{-3, 1},
		{0.5, 1},
		{42, 42},
		{42.9, 42},
		{501, MaxTailLimit},
	}
	for _, tt := range tests {
		if got := TailLimit(tt.in); got != tt.want {
			t.Errorf("TailLimit(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestTailSince(t *testing.T) {
	if got := TailSince(math.NaN()); got != 0 {
		t.Errorf("TailSince(NaN) = %d, want 0", got)
	}
	if got := TailSince(math.Inf(1)); got != 0 {
		t.Errorf("TailSince(+Inf) = %d, want 0", got)
	}
	if got := TailSince(1234.7); got != 1234 {
		t.Errorf("TailSince(1234.7) = %d, want 1234", got)
	}
}
