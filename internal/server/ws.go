package server

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/quantalab/qbenchd/internal/events"
)

// WSHandler streams the same run lifecycle events as the SSE endpoint over a
// WebSocket, for clients that want a bidirectional transport.
type WSHandler struct {
	fanout *EventFanout
	log    zerolog.Logger
}

// NewWSHandler creates a new WebSocket events handler.
func NewWSHandler(fanout *EventFanout, log zerolog.Logger) *WSHandler {
	return &WSHandler{
		fanout: fanout,
		log:    log.With().Str("component", "events_ws").Logger(),
	}
}

// wsEvent is the wire shape of one streamed event.
type wsEvent struct {
	Type      string      `json:"type"`
	Timestamp string      `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// ServeHTTP handles GET /api/events/ws requests.
func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// Same-origin policy is not useful for a LAN tool
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("WebSocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream closed")

	h.log.Info().Msg("Client connected to WebSocket event stream")

	eventChan := h.fanout.Register()
	defer h.fanout.Unregister(eventChan)

	ctx := r.Context()

	// Drain incoming frames so control messages are processed; the stream
	// is write-only from our side.
	go func() {
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	}()

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "client disconnected")
			return

		case event := <-eventChan:
			if err := h.write(ctx, conn, event); err != nil {
				h.log.Debug().Err(err).Msg("WebSocket write failed, closing")
				return
			}

		case <-heartbeat.C:
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := conn.Ping(writeCtx)
			cancel()
			if err != nil {
				h.log.Debug().Err(err).Msg("WebSocket ping failed, closing")
				return
			}
		}
	}
}

func (h *WSHandler) write(ctx context.Context, conn *websocket.Conn, event *events.Event) error {
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return wsjson.Write(writeCtx, conn, wsEvent{
		Type:      string(event.Type),
		Timestamp: event.Timestamp.Format(time.RFC3339),
		Data:      event.Data,
	})
}
