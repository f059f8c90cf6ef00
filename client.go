package eventsocket

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Client runs one-shot command sessions against the engine. Each call to
// Execute opens its own connection, so a Client is safe for concurrent
// use and holds no connection between calls.
type Client struct {
	cfg  Config
	opts options
}

// NewClient creates a Client for cfg.
func NewClient(cfg Config, opts ...Option) *Client {
	return &Client{
		cfg:  cfg,
		opts: newOptions(opts),
	}
}

// Config returns the client's configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// Execute connects, authenticates, runs command through the api verb and
// returns its reply. The connection is closed before Execute returns,
// whatever the outcome. Every failure is a *TransportError.
func (c *Client) Execute(ctx context.Context, command string) (*Reply, error) {
	id := uuid.NewString()
	logger := c.opts.logger.With(slog.String("session", id))

	conn, err := dial(ctx, c.opts.dialer, c.opts.clock, c.cfg.Addr(), c.cfg.ConnectTimeout)
	if err != nil {
		logger.Debug("connect failed", slog.String("error", err.Error()))
		return nil, err
	}
	defer conn.Close()

	s := &session{id: id, conn: conn, opts: &c.opts, logger: logger}

	if err := s.handshake(ctx, c.cfg.Secret, c.cfg.ReadTimeout); err != nil {
		logger.Debug("handshake failed", slog.String("error", err.Error()))
		return nil, err
	}

	if err := s.send(ctx, API(command)); err != nil {
		return nil, err
	}

	frame, err := s.receive(ctx, c.cfg.ReadTimeout)
	if err != nil {
		logger.Debug("reply failed", slog.String("error", err.Error()))
		return nil, err
	}

	return &Reply{
		Header:    frame.Header,
		Body:      replyBody(frame),
		SessionID: id,
	}, nil
}
