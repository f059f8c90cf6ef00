package eventsocket

import (
	"net"
	"strconv"
	"time"
)

// Defaults for a stock engine install.
const (
	DefaultHost           = "127.0.0.1"
	DefaultPort           = 8021
	DefaultSecret         = "ClueCon"
	DefaultConnectTimeout = 3 * time.Second
	DefaultReadTimeout    = 5 * time.Second
)

// Config describes how to reach the engine's control socket.
type Config struct {
	Host   string
	Port   int
	Secret string

	// ConnectTimeout bounds connection establishment for both session
	// kinds.
	ConnectTimeout time.Duration

	// ReadTimeout bounds each reply a command session waits for, and the
	// handshake of a streaming connection. Streamed events are never
	// subject to it.
	ReadTimeout time.Duration
}

// DefaultConfig returns the configuration of a stock install.
func DefaultConfig() Config {
	return Config{
		Host:           DefaultHost,
		Port:           DefaultPort,
		Secret:         DefaultSecret,
		ConnectTimeout: DefaultConnectTimeout,
		ReadTimeout:    DefaultReadTimeout,
	}
}

// Addr returns host:port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
