// Package httpapi exposes an engine's command executor and console history
// over HTTP for admin frontends.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/GioMelik11/eventsocket-go"
)

// DefaultPollInterval is how often a live console socket checks the
// history for new lines.
const DefaultPollInterval = 250 * time.Millisecond

// StatusReporter reports the console's lifecycle state.
type StatusReporter interface {
	State() eventsocket.State
}

// Handler routes REST and WebSocket requests to an executor and a tail
// reader.
type Handler struct {
	exec         eventsocket.Executor
	tail         eventsocket.TailReader
	catalog      *eventsocket.Catalog
	status       StatusReporter
	logger       *slog.Logger
	pollInterval time.Duration
}

// Option configures a Handler.
type Option func(*Handler)

// WithCatalog replaces the default action catalog.
func WithCatalog(c *eventsocket.Catalog) Option {
	return func(h *Handler) {
		if c != nil {
			h.catalog = c
		}
	}
}

// WithStatus enables the console status endpoint.
func WithStatus(s StatusReporter) Option {
	return func(h *Handler) {
		h.status = s
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithPollInterval sets how often live console sockets poll the history.
func WithPollInterval(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.pollInterval = d
		}
	}
}

// NewHandler creates a Handler backed by exec and tail.
func NewHandler(exec eventsocket.Executor, tail eventsocket.TailReader, opts ...Option) *Handler {
	h := &Handler{
		exec:         exec,
		tail:         tail,
		catalog:      eventsocket.DefaultCatalog(),
		logger:       slog.New(slog.DiscardHandler),
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Mount registers all API routes on the provided router.
func (h *Handler) Mount(r chi.Router) {
	r.Post("/api/command", h.runCommand)
	r.Get("/api/console/tail", h.consoleTail)
	r.Get("/api/console/ws", h.consoleWebSocket)
	r.Get("/api/console/status", h.consoleStatus)
	r.Get("/api/actions", h.listActions)
	r.Post("/api/actions/{name}", h.runAction)
}

type commandRequest struct {
	Command string `json:"command"`
}

type actionRequest struct {
	Args []string `json:"args"`
}

type statusResponse struct {
	State string `json:"state"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (h *Handler) runCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if strings.TrimSpace(req.Command) == "" {
		writeError(w, http.StatusBadRequest, "command is required", "")
		return
	}
	if err := eventsocket.ValidateCommand(req.Command); err != nil {
		writeError(w, http.StatusBadRequest, "invalid command", err.Error())
		return
	}

	res, err := h.exec.Run(r.Context(), req.Command)
	if err != nil {
		h.logger.Warn("command failed",
			slog.String("command", req.Command),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusBadGateway, res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) consoleTail(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	since := eventsocket.TailSince(parseFloat(q.Get("since"), 0))
	limit := eventsocket.TailLimit(parseFloat(q.Get("limit"), eventsocket.DefaultTailLimit))
	writeJSON(w, http.StatusOK, h.tail.Tail(since, limit))
}

func (h *Handler) consoleStatus(w http.ResponseWriter, r *http.Request) {
	if h.status == nil {
		writeError(w, http.StatusNotFound, "console not configured", "")
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{State: h.status.State().String()})
}

func (h *Handler) listActions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Definitions())
}

func (h *Handler) runAction(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	res, err := h.catalog.Run(r.Context(), h.exec, name, req.Args...)
	switch {
	case errors.Is(err, eventsocket.ErrActionNotFound):
		writeError(w, http.StatusNotFound, "action not found", name)
	case errors.Is(err, eventsocket.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, "invalid arguments", err.Error())
	case err != nil:
		h.logger.Warn("action failed",
			slog.String("action", name),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusBadGateway, res)
	default:
		writeJSON(w, http.StatusOK, res)
	}
}

// parseFloat returns def for a missing value and NaN for one that does not
// parse, leaving the non-finite rules to TailSince and TailLimit.
func parseFloat(s string, def float64) float64 {
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, message, details string) {
	writeJSON(w, code, errorResponse{Error: message, Details: details})
}
