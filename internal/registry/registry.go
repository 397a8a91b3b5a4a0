// Package registry tracks live real-time subscribers and fans structured
// messages out to them. It is the single owner of the subscriber set; every
// mutation goes through Connect, Disconnect, SendTo, or Broadcast, and all
// four are safe to call concurrently.
package registry

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/organ-c/storepulse/internal/metrics"
)

// Conn is the slice of a websocket connection the registry needs. It is
// satisfied by *websocket.Conn and by in-memory fakes in tests.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// Subscriber is one live connection plus its metadata. The write mutex
// serializes concurrent Broadcast/SendTo writes on the same socket.
type Subscriber struct {
	conn        Conn
	clientID    string
	connectedAt time.Time

	writeMu sync.Mutex
}

func (s *Subscriber) ClientID() string { return s.clientID }

func (s *Subscriber) write(v any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(v)
}

// SubscriberInfo is the per-connection metadata exposed by Stats.
type SubscriberInfo struct {
	ClientID    string `json:"client_id"`
	ConnectedAt string `json:"connected_at"`
}

type Stats struct {
	ActiveConnections int              `json:"active_connections"`
	Clients           []SubscriberInfo `json:"clients"`
}

type Registry struct {
	mu     sync.RWMutex
	subs   map[Conn]*Subscriber
	seq    int
	logger *zap.Logger
}

func New(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{subs: map[Conn]*Subscriber{}, logger: logger}
}

// Connect accepts a connection and registers it. Connections are never
// rejected here; capacity limits belong to the transport layer. An empty
// clientID gets a generated fallback.
func (r *Registry) Connect(conn Conn, clientID string) *Subscriber {
	r.mu.Lock()
	r.seq++
	if clientID == "" {
		clientID = fmt.Sprintf("client_%d", r.seq)
	}
	sub := &Subscriber{
		conn:        conn,
		clientID:    clientID,
		connectedAt: time.Now().UTC(),
	}
	r.subs[conn] = sub
	total := len(r.subs)
	r.mu.Unlock()

	metrics.WSConnections.Set(float64(total))
	r.logger.Info("client connected",
		zap.String("client_id", clientID),
		zap.Int("active_connections", total))
	return sub
}

// Disconnect removes a connection and closes it. Removing an unknown or
// already-removed connection is a no-op.
func (r *Registry) Disconnect(conn Conn) {
	r.mu.Lock()
	sub, ok := r.subs[conn]
	if ok {
		delete(r.subs, conn)
	}
	total := len(r.subs)
	r.mu.Unlock()

	if !ok {
		return
	}
	_ = conn.Close()
	metrics.WSConnections.Set(float64(total))
	r.logger.Info("client disconnected",
		zap.String("client_id", sub.clientID),
		zap.Int("active_connections", total))
}

// SendTo delivers one message to one subscriber. A write failure is treated
// as an implicit disconnect and never surfaces to the caller; sending to an
// unknown connection is a no-op.
func (r *Registry) SendTo(conn Conn, msg any) {
	r.mu.RLock()
	sub, ok := r.subs[conn]
	r.mu.RUnlock()
	if !ok {
		return
	}
	if err := sub.write(msg); err != nil {
		r.logger.Warn("send failed, dropping subscriber",
			zap.String("client_id", sub.clientID),
			zap.Error(err))
		metrics.BroadcastFailuresTotal.Inc()
		r.Disconnect(conn)
	}
}

// Broadcast delivers msg to every subscriber registered before the call.
// The subscriber set is snapshotted under the lock, so connections accepted
// after Broadcast starts do not receive this message. Subscribers whose
// write fails are disconnected and miss all future broadcasts.
func (r *Registry) Broadcast(msg any) {
	r.mu.RLock()
	snapshot := make([]*Subscriber, 0, len(r.subs))
	for _, sub := range r.subs {
		snapshot = append(snapshot, sub)
	}
	r.mu.RUnlock()

	var failed []*Subscriber
	for _, sub := range snapshot {
		if err := sub.write(msg); err != nil {
			r.logger.Warn("broadcast failed for a client",
				zap.String("client_id", sub.clientID),
				zap.Error(err))
			failed = append(failed, sub)
		}
	}
	for _, sub := range failed {
		metrics.BroadcastFailuresTotal.Inc()
		r.Disconnect(sub.conn)
	}
}

// Count reports the number of live subscribers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

// Stats is a pure query; it never mutates the subscriber set.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st := Stats{
		ActiveConnections: len(r.subs),
		Clients:           make([]SubscriberInfo, 0, len(r.subs)),
	}
	for _, sub := range r.subs {
		st.Clients = append(st.Clients, SubscriberInfo{
			ClientID:    sub.clientID,
			ConnectedAt: sub.connectedAt.Format(time.RFC3339),
		})
	}
	return st
}
