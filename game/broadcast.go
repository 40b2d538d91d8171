package game

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Broadcaster is the session's view of event delivery. The concrete Gateway
// implements it; tests substitute a recorder.
type Broadcaster interface {
	Attach(code string, c *client)
	Detach(code, connId string)
	Broadcast(code string, ev ServerEvent)
	BroadcastExcept(code, exceptConnId string, ev ServerEvent)
	Unicast(c *client, ev ServerEvent)
}

// Gateway fans events out to every connection currently attached to a room
// code. There is no buffering and no replay: a connection attached after an
// event fired never receives it.
type Gateway struct {
	mu    sync.RWMutex
	rooms map[string]map[string]*client
}

func NewGateway() *Gateway {
	return &Gateway{rooms: make(map[string]map[string]*client)}
}

func (g *Gateway) Attach(code string, c *client) {
	g.mu.Lock()
	defer g.mu.Unlock()
	room, ok := g.rooms[code]
	if !ok {
		room = make(map[string]*client)
		g.rooms[code] = room
	}
	room[c.id] = c
}

func (g *Gateway) Detach(code, connId string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	room, ok := g.rooms[code]
	if !ok {
		return
	}
	delete(room, connId)
	if len(room) == 0 {
		delete(g.rooms, code)
	}
}

func (g *Gateway) Broadcast(code string, ev ServerEvent) {
	g.BroadcastExcept(code, "", ev)
}

func (g *Gateway) BroadcastExcept(code, exceptConnId string, ev ServerEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("event", ev.Name).Msg("failed to encode event")
		return
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	for id, c := range g.rooms[code] {
		if id == exceptConnId {
			continue
		}
		c.enqueue(data)
	}
}

func (g *Gateway) Unicast(c *client, ev ServerEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("event", ev.Name).Msg("failed to encode event")
		return
	}
	c.enqueue(data)
}

// PingLoop keeps attached connections alive. Pong handlers on the sockets
// extend their read deadlines.
func (g *Gateway) PingLoop(ctx context.Context, clock Clock, interval time.Duration) {
	ticker := clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C():
			g.mu.RLock()
			for _, room := range g.rooms {
				for _, c := range room {
					c.ping()
				}
			}
			g.mu.RUnlock()
		case <-ctx.Done():
			return
		}
	}
}
