package eventsocket

import (
	"errors"
	"io"
	"net"
	"strings"
	"syscall"
)

// Sentinel errors for common conditions.
var (
	ErrClosed          = errors.New("eventsocket: connection closed")
	ErrConnectTimeout  = errors.New("eventsocket: connect timed out")
	ErrReadTimeout     = errors.New("eventsocket: read timed out")
	ErrAuthRejected    = errors.New("eventsocket: authentication rejected")
	ErrInvalidCommand  = errors.New("eventsocket: command contains a line break")
	ErrActionNotFound  = errors.New("eventsocket: action not found")
	ErrInvalidArgument = errors.New("eventsocket: invalid action argument")
)

// TransportError is the single error kind returned by a command session.
// Op is one of "connect", "auth", "write" or "read". Err carries the
// cause, which is one of the sentinels above when the failure was
// detected locally (timeouts, rejected auth).
type TransportError struct {
	Op   string
	Addr string
	Msg  string
	Err  error
}

func (e *TransportError) Error() string {
	var b strings.Builder
	b.WriteString("eventsocket: ")
	b.WriteString(e.Op)
	if e.Addr != "" {
		b.WriteString(" ")
		b.WriteString(e.Addr)
	}
	switch {
	case e.Msg != "":
		b.WriteString(": ")
		b.WriteString(e.Msg)
	case e.Err != nil:
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// isExpectedClose reports whether err is a normal connection termination:
// EOF, closed connection, broken pipe or connection reset.
func isExpectedClose(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, ErrClosed) {
		return true
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.EPIPE || errno == syscall.ECONNRESET
	}
	return false
}
