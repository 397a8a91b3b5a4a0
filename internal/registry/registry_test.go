package registry

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/organ-c/storepulse/internal/wire"
)

type fakeConn struct {
	mu       sync.Mutex
	messages []any
	failNext bool
	closed   bool
}

func (c *fakeConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failNext || c.closed {
		return errors.New("connection closed")
	}
	c.messages = append(c.messages, v)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) received() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]any, len(c.messages))
	copy(out, c.messages)
	return out
}

func TestConnectAssignsFallbackClientID(t *testing.T) {
	r := New(nil)

	a := r.Connect(&fakeConn{}, "")
	b := r.Connect(&fakeConn{}, "dashboard")

	assert.Equal(t, "client_1", a.ClientID())
	assert.Equal(t, "dashboard", b.ClientID())
	assert.Equal(t, 2, r.Count())
}

func TestBroadcastReachesAllConnected(t *testing.T) {
	r := New(nil)
	conns := []*fakeConn{{}, {}, {}}
	for _, c := range conns {
		r.Connect(c, "")
	}

	r.Broadcast(wire.NewPing())

	for i, c := range conns {
		assert.Len(t, c.received(), 1, "conn %d", i)
	}
}

func TestBroadcastSkipsLateConnections(t *testing.T) {
	r := New(nil)
	early := &fakeConn{}
	r.Connect(early, "")

	r.Broadcast(wire.NewPing())

	late := &fakeConn{}
	r.Connect(late, "")

	assert.Len(t, early.received(), 1)
	assert.Empty(t, late.received(), "no retroactive delivery")
}

func TestBroadcastDisconnectsFailedSubscribers(t *testing.T) {
	r := New(nil)
	a := &fakeConn{}
	b := &fakeConn{failNext: true}
	c := &fakeConn{}
	r.Connect(a, "a")
	r.Connect(b, "b")
	r.Connect(c, "c")

	r.Broadcast(wire.NewPing())

	assert.Len(t, a.received(), 1)
	assert.Len(t, c.received(), 1)
	assert.True(t, b.closed)

	st := r.Stats()
	assert.Equal(t, 2, st.ActiveConnections)
	for _, info := range st.Clients {
		assert.NotEqual(t, "b", info.ClientID)
	}

	// b is gone for good: the next broadcast only reaches a and c.
	r.Broadcast(wire.NewPing())
	assert.Len(t, a.received(), 2)
	assert.Len(t, c.received(), 2)
}

func TestSendToFailureRemovesSubscriber(t *testing.T) {
	r := New(nil)
	c := &fakeConn{failNext: true}
	r.Connect(c, "flaky")

	r.SendTo(c, wire.NewPing())

	assert.Equal(t, 0, r.Stats().ActiveConnections)
	assert.True(t, c.closed)
}

func TestSendToUnknownConnIsNoOp(t *testing.T) {
	r := New(nil)
	c := &fakeConn{}

	r.SendTo(c, wire.NewPing())

	assert.Empty(t, c.received())
	assert.Equal(t, 0, r.Count())
}

func TestDisconnectIsIdempotent(t *testing.T) {
	r := New(nil)
	c := &fakeConn{}
	r.Connect(c, "")

	r.Disconnect(c)
	r.Disconnect(c)
	r.Disconnect(&fakeConn{})

	assert.Equal(t, 0, r.Count())
}

func TestStatsReportsMetadata(t *testing.T) {
	r := New(nil)
	r.Connect(&fakeConn{}, "ops-dashboard")

	st := r.Stats()
	require.Len(t, st.Clients, 1)
	assert.Equal(t, "ops-dashboard", st.Clients[0].ClientID)
	assert.NotEmpty(t, st.Clients[0].ConnectedAt)
}

func TestConcurrentConnectBroadcastDisconnect(t *testing.T) {
	r := New(nil)
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := &fakeConn{}
			r.Connect(c, "")
			r.Broadcast(wire.NewPing())
			r.SendTo(c, wire.NewPong(""))
			r.Disconnect(c)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, r.Count())
}
