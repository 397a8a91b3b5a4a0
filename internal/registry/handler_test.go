package registry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/organ-c/storepulse/internal/wire"
)

func dialTest(t *testing.T, srv *httptest.Server, clientID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	if clientID != "" {
		url += "?client_id=" + clientID
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	var msg map[string]any
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestAlertsSendsWelcomeMessage(t *testing.T) {
	reg := New(nil)
	h := NewHandler(reg, nil)
	srv := httptest.NewServer(http.HandlerFunc(h.Alerts))
	defer srv.Close()

	conn := dialTest(t, srv, "ops-1")

	msg := readMessage(t, conn)
	assert.Equal(t, wire.TypeConnected, msg["type"])
	assert.Equal(t, "ops-1", msg["client_id"])
	assert.Equal(t, float64(1), msg["active_connections"])
}

func TestAlertsPingPong(t *testing.T) {
	reg := New(nil)
	h := NewHandler(reg, nil)
	srv := httptest.NewServer(http.HandlerFunc(h.Alerts))
	defer srv.Close()

	conn := dialTest(t, srv, "")
	readMessage(t, conn) // welcome

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "ping", "timestamp": "123"}))

	msg := readMessage(t, conn)
	assert.Equal(t, wire.TypePong, msg["type"])
	assert.Equal(t, "123", msg["timestamp"])
}

func TestAlertsSubscribeEcho(t *testing.T) {
	reg := New(nil)
	h := NewHandler(reg, nil)
	srv := httptest.NewServer(http.HandlerFunc(h.Alerts))
	defer srv.Close()

	conn := dialTest(t, srv, "")
	readMessage(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "subscribe", "channels": []string{"alerts"}}))

	msg := readMessage(t, conn)
	assert.Equal(t, wire.TypeSubscribed, msg["type"])
	assert.Equal(t, []any{"alerts"}, msg["channels"])
}

func TestAlertsInvalidJSON(t *testing.T) {
	reg := New(nil)
	h := NewHandler(reg, nil)
	srv := httptest.NewServer(http.HandlerFunc(h.Alerts))
	defer srv.Close()

	conn := dialTest(t, srv, "")
	readMessage(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))

	msg := readMessage(t, conn)
	assert.Equal(t, wire.TypeError, msg["type"])
}

func TestAlertsBroadcastReachesSubscriber(t *testing.T) {
	reg := New(nil)
	h := NewHandler(reg, nil)
	srv := httptest.NewServer(http.HandlerFunc(h.Alerts))
	defer srv.Close()

	conn := dialTest(t, srv, "")
	readMessage(t, conn)

	reg.Broadcast(wire.NewAlert(12, 4, "High risk detected from IoT update", 70))

	msg := readMessage(t, conn)
	assert.Equal(t, wire.TypeAlert, msg["type"])
	assert.Equal(t, "HIGH", msg["priority"])
	assert.Equal(t, float64(70), msg["risk_score"])
}

func TestAlertsListenOnlySubscriberStaysConnected(t *testing.T) {
	reg := New(nil)
	h := NewHandler(reg, nil)
	h.KeepAlive = 20 * time.Millisecond
	srv := httptest.NewServer(http.HandlerFunc(h.Alerts))
	defer srv.Close()

	conn := dialTest(t, srv, "")
	readMessage(t, conn) // welcome

	// The client never writes. It must keep receiving server pings and stay
	// registered across many keep-alive cycles.
	pings := 0
	deadline := time.Now().Add(300 * time.Millisecond)
	for time.Now().Before(deadline) {
		msg := readMessage(t, conn)
		if msg["type"] == wire.TypePing {
			pings++
		}
	}

	assert.GreaterOrEqual(t, pings, 3)
	assert.Equal(t, 1, reg.Count())
}

func TestAlertsDisconnectUpdatesRegistry(t *testing.T) {
	reg := New(nil)
	h := NewHandler(reg, nil)
	srv := httptest.NewServer(http.HandlerFunc(h.Alerts))
	defer srv.Close()

	conn := dialTest(t, srv, "")
	readMessage(t, conn)
	require.Equal(t, 1, reg.Count())

	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool { return reg.Count() == 0 },
		2*time.Second, 10*time.Millisecond)
}
