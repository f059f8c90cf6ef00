package eventsocket

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// session bundles the per-connection pieces shared by both session kinds.
type session struct {
	id     string
	conn   *Conn
	opts   *options
	logger *slog.Logger
}

func (s *session) send(ctx context.Context, cmd Command) error {
	if s.opts.onSend != nil {
		s.opts.onSend(cmd)
	}
	s.logger.Debug("sending command", slog.String("command", cmd.String()))
	return s.conn.Send(ctx, cmd)
}

func (s *session) receive(ctx context.Context, timeout time.Duration) (*Frame, error) {
	frame, err := s.conn.Receive(ctx, timeout)
	if err != nil {
		return nil, err
	}
	if s.opts.onReceive != nil {
		s.opts.onReceive(frame)
	}
	s.logger.Debug("received frame",
		slog.String("content_type", frame.ContentType()),
		slog.Int("body_bytes", len(frame.Body)),
	)
	return frame, nil
}

// handshake consumes the greeting, authenticates and checks the reply.
func (s *session) handshake(ctx context.Context, secret string, timeout time.Duration) error {
	// The greeting only signals that the engine accepts commands.
	if _, err := s.receive(ctx, timeout); err != nil {
		return err
	}

	if err := s.send(ctx, Auth(secret)); err != nil {
		return err
	}

	reply, err := s.receive(ctx, timeout)
	if err != nil {
		return err
	}

	text := authText(reply)
	if !strings.HasPrefix(text, SuccessMarker) {
		msg := text
		if msg == "" {
			msg = "empty auth reply"
		}
		return &TransportError{Op: "auth", Addr: s.conn.Addr(), Msg: msg, Err: ErrAuthRejected}
	}
	return nil
}
