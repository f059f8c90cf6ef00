package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/GioMelik11/eventsocket-go"
)

// consoleWebSocket pushes new history lines to the client as Tail batches
// until the client goes away.
func (h *Handler) consoleWebSocket(w http.ResponseWriter, r *http.Request) {
	since := eventsocket.TailSince(parseFloat(r.URL.Query().Get("since"), 0))

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket accept failed", slog.String("error", err.Error()))
		return
	}
	defer conn.CloseNow()

	ctx := conn.CloseRead(r.Context())
	ticker := time.NewTicker(h.pollInterval)
	defer ticker.Stop()

	for {
		tail := h.tail.Tail(since, eventsocket.MaxTailLimit)
		if len(tail.Items) > 0 {
			if err := wsjson.Write(ctx, conn, tail); err != nil {
				h.logger.Debug("console socket write failed", slog.String("error", err.Error()))
				return
			}
			since = tail.Now
		}

		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case <-ticker.C:
		}
	}
}
