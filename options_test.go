package eventsocket

import (
	"log/slog"
	"testing"
	"time"
)

func TestOptions_Defaults(t *testing.T) {
	o := newOptions(nil)

	if o.logger == nil {
		t.Error("logger is nil")
	}
	if o.dialer == nil {
		t.Error("dialer is nil")
	}
	if o.clock == nil {
		t.Error("clock is nil")
	}
	if o.minDelay != DefaultMinDelay || o.maxDelay != DefaultMaxDelay || o.multiplier != DefaultMultiplier {
		t.Errorf("backoff = %s/%s/%v, want defaults", o.minDelay, o.maxDelay, o.multiplier)
	}
}

func TestOptions_NilValuesIgnored(t *testing.T) {
	o := newOptions([]Option{WithLogger(nil), WithDialer(nil), WithClock(nil)})

	if o.logger == nil || o.dialer == nil || o.clock == nil {
		t.Error("nil option replaced a default")
	}
}

func TestOptions_Backoff(t *testing.T) {
	o := newOptions([]Option{WithBackoff(time.Second, time.Minute, 3)})

	if o.minDelay != time.Second {
		t.Errorf("minDelay = %s, want 1s", o.minDelay)
	}
	if o.maxDelay != time.Minute {
		t.Errorf("maxDelay = %s, want 1m", o.maxDelay)
	}
	if o.multiplier != 3 {
		t.Errorf("multiplier = %v, want 3", o.multiplier)
	}
}

func TestOptions_Logger(t *testing.T) {
	logger := slog.Default()
	o := newOptions([]Option{WithLogger(logger)})
	if o.logger != logger {
		t.Error("logger not set")
	}
}

func TestConfig_Addr(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Addr() != "127.0.0.1:8021" {
		t.Errorf("Addr() = %s, want 127.0.0.1:8021", cfg.Addr())
	}

	cfg.Host = "::1"
	if cfg.Addr() != "[::1]:8021" {
		t.Errorf("Addr() = %s, want [::1]:8021", cfg.Addr())
	}
}
