package eventsocket

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// Result is the outcome of running a command through an Executor.
type Result struct {
	OK     bool   `json:"ok"`
	Output string `json:"output"`
}

// Executor runs one command against the engine and returns its output.
type Executor interface {
	Run(ctx context.Context, command string) (Result, error)
}

// TailReader returns recent console history.
type TailReader interface {
	Tail(since int64, limit int) Tail
}

var (
	_ Executor   = (*Client)(nil)
	_ TailReader = (*History)(nil)
	_ TailReader = (*Console)(nil)
)

// ValidateCommand rejects commands containing a carriage return or line
// feed. The wire format is line-delimited, so either would let a caller
// smuggle extra commands onto the connection.
func ValidateCommand(command string) error {
	if strings.ContainsAny(command, "\r\n") {
		return ErrInvalidCommand
	}
	return nil
}

// Run validates command, executes it in a new command session and reports
// the output with surrounding whitespace removed. On failure the returned
// Result carries the error message as its output, so callers that only
// relay results can ignore the error.
func (c *Client) Run(ctx context.Context, command string) (Result, error) {
	if err := ValidateCommand(command); err != nil {
		return Result{OK: false, Output: err.Error()}, err
	}

	reply, err := c.Execute(ctx, command)
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, context.Canceled) {
			level = slog.LevelDebug
		}
		c.opts.logger.Log(ctx, level, "command failed",
			slog.String("command", command),
			slog.String("error", err.Error()),
		)
		return Result{OK: false, Output: err.Error()}, err
	}

	return Result{OK: reply.OK(), Output: strings.TrimSpace(reply.Body)}, nil
}
