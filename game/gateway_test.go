package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drainEvent(t *testing.T, c *client) ServerEvent {
	t.Helper()
	select {
	case data := <-c.send:
		var ev struct {
			Name string          `json:"event"`
			Data json.RawMessage `json:"data"`
		}
		require.NoError(t, json.Unmarshal(data, &ev))
		return ServerEvent{Name: ev.Name, Data: ev.Data}
	default:
		t.Fatal("expected a frame in the send buffer")
		return ServerEvent{}
	}
}

func TestGateway_BroadcastReachesEveryConnection(t *testing.T) {
	t.Parallel()
	g := NewGateway()
	a := newClient(&fakeConn{})
	b := newClient(&fakeConn{})
	g.Attach("ROOM01", a)
	g.Attach("ROOM01", b)

	g.Broadcast("ROOM01", ServerEvent{Name: EventTimerUpdate, Data: 42})

	assert.Equal(t, EventTimerUpdate, drainEvent(t, a).Name)
	assert.Equal(t, EventTimerUpdate, drainEvent(t, b).Name)
}

func TestGateway_BroadcastExceptSkipsSender(t *testing.T) {
	t.Parallel()
	g := NewGateway()
	a := newClient(&fakeConn{})
	b := newClient(&fakeConn{})
	g.Attach("ROOM01", a)
	g.Attach("ROOM01", b)

	g.BroadcastExcept("ROOM01", a.id, ServerEvent{Name: EventDraw})

	assert.Empty(t, a.send)
	assert.Equal(t, EventDraw, drainEvent(t, b).Name)
}

func TestGateway_RoomsAreIsolated(t *testing.T) {
	t.Parallel()
	g := NewGateway()
	a := newClient(&fakeConn{})
	b := newClient(&fakeConn{})
	g.Attach("ROOM01", a)
	g.Attach("ROOM02", b)

	g.Broadcast("ROOM01", ServerEvent{Name: EventGameStarted})

	assert.Equal(t, EventGameStarted, drainEvent(t, a).Name)
	assert.Empty(t, b.send)
}

func TestGateway_NoReplayForLateJoiners(t *testing.T) {
	t.Parallel()
	g := NewGateway()
	a := newClient(&fakeConn{})
	g.Attach("ROOM01", a)
	g.Broadcast("ROOM01", ServerEvent{Name: EventGameStarted})

	late := newClient(&fakeConn{})
	g.Attach("ROOM01", late)

	assert.Empty(t, late.send, "events fired before attach are never replayed")
}

func TestGateway_DetachStopsDelivery(t *testing.T) {
	t.Parallel()
	g := NewGateway()
	a := newClient(&fakeConn{})
	g.Attach("ROOM01", a)
	g.Detach("ROOM01", a.id)

	g.Broadcast("ROOM01", ServerEvent{Name: EventGameStarted})
	assert.Empty(t, a.send)
}
