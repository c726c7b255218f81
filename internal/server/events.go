package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/Elarwei001/ocean-forest-3d-sub000/pipeline"
)

// EventHub broadcasts model-ready events to connected WebSocket
// clients. Scene consumers subscribe here to learn when a submitted
// species finished generating. Writes are serialized per connection;
// a slow client is dropped rather than allowed to block the hub.
type EventHub struct {
	logger *zap.Logger

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewEventHub creates an empty hub.
func NewEventHub(logger *zap.Logger) *EventHub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventHub{
		logger: logger.With(zap.String("component", "event_hub")),
		conns:  make(map[*websocket.Conn]struct{}),
	}
}

// Handler returns the pipeline event handler that feeds the hub.
func (h *EventHub) Handler() pipeline.EventHandler {
	return func(ev pipeline.Event) {
		go h.broadcast(ev)
	}
}

func (h *EventHub) broadcast(ev pipeline.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Warn("marshal event", zap.Error(err))
		return
	}

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := c.Write(ctx, websocket.MessageText, data)
		cancel()
		if err != nil {
			h.drop(c)
		}
	}
}

// ServeHTTP upgrades the request and keeps the connection registered
// until the client goes away.
func (h *EventHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket accept failed", zap.Error(err))
		return
	}

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("event subscriber connected")

	// Reads are discarded; the socket exists for server pushes only.
	// The read loop notices the client closing.
	ctx := r.Context()
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			break
		}
	}
	h.drop(conn)
}

func (h *EventHub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	_, present := h.conns[conn]
	delete(h.conns, conn)
	h.mu.Unlock()
	if present {
		_ = conn.Close(websocket.StatusNormalClosure, "")
		h.logger.Debug("event subscriber dropped")
	}
}

// Close disconnects every subscriber.
func (h *EventHub) Close() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.conns = make(map[*websocket.Conn]struct{})
	h.mu.Unlock()
	for _, c := range conns {
		_ = c.Close(websocket.StatusGoingAway, "server shutting down")
	}
}
