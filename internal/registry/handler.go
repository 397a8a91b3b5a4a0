package registry

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/organ-c/storepulse/internal/httpx"
	"github.com/organ-c/storepulse/internal/wire"
)

const (
	// keepAliveInterval is how often an idle subscriber is pinged instead
	// of being closed.
	keepAliveInterval = 30 * time.Second
	maxMessageSize    = 4096
)

// Handler owns the websocket endpoints: the upgrade + read loop for
// subscribers and the read-only connection stats query.
type Handler struct {
	Registry *Registry
	Logger   *zap.Logger

	Upgrader websocket.Upgrader
	// KeepAlive is the interval between server pings to idle subscribers.
	KeepAlive time.Duration
}

func NewHandler(reg *Registry, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Registry:  reg,
		Logger:    logger,
		KeepAlive: keepAliveInterval,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The dashboard is served from a different origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Alerts upgrades the request and serves the subscriber until it
// disconnects. Inbound traffic is limited to the liveness/subscribe
// protocol; all broadcasting happens through the registry.
func (h *Handler) Alerts(w http.ResponseWriter, r *http.Request) {
	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sub := h.Registry.Connect(conn, r.URL.Query().Get("client_id"))
	h.Registry.SendTo(conn, wire.NewConnected(sub.ClientID(), h.Registry.Count()))

	done := make(chan struct{})
	go h.keepAlive(conn, done)

	h.readLoop(conn)

	close(done)
	h.Registry.Disconnect(conn)
}

// readLoop blocks until the peer goes away. There is no read deadline:
// subscribers that only listen stay connected for as long as writes to them
// succeed, and a dead peer is detected by the next failed keep-alive ping.
func (h *Handler) readLoop(conn *websocket.Conn) {
	conn.SetReadLimit(maxMessageSize)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.Logger.Debug("websocket read ended", zap.Error(err))
			}
			return
		}

		var msg wire.Inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			h.Registry.SendTo(conn, wire.NewError("Invalid JSON format"))
			continue
		}
		switch msg.Type {
		case wire.TypePing:
			h.Registry.SendTo(conn, wire.NewPong(msg.Timestamp))
		case wire.TypeSubscribe:
			// Accept-and-echo only; every subscriber receives every
			// broadcast regardless of channels.
			h.Registry.SendTo(conn, wire.NewSubscribed(msg.Channels))
		}
	}
}

// keepAlive pings the subscriber once per interval. A failed ping removes
// the subscriber from the registry and closes the socket, which in turn
// ends the read loop.
func (h *Handler) keepAlive(conn *websocket.Conn, done <-chan struct{}) {
	interval := h.KeepAlive
	if interval <= 0 {
		interval = keepAliveInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			h.Registry.SendTo(conn, wire.NewPing())
		}
	}
}

// Connections reports live connection stats for monitoring dashboards.
func (h *Handler) Connections(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.Registry.Stats())
}
