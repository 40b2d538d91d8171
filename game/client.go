package game

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// client is one live transport connection. A player's client is replaced
// wholesale on reconnect; the playerId field is written only by the owning
// session's loop once the connection is bound.
type client struct {
	id       string
	conn     NetworkConn
	send     chan []byte
	pingChan chan struct{}
	limiter  *rate.Limiter
	ctx      context.Context
	cancel   context.CancelFunc

	playerId string
	session  *Session
}

func newClient(conn NetworkConn) *client {
	ctx, cancel := context.WithCancel(context.Background())
	return &client{
		id:       uuid.NewString(),
		conn:     conn,
		send:     make(chan []byte, 256),
		pingChan: make(chan struct{}, 1),
		limiter:  rate.NewLimiter(20, 40),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// enqueue hands data to the write pump without ever blocking the caller. A
// connection that cannot keep up loses frames rather than stalling a
// session's loop.
func (c *client) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
		log.Warn().Str("conn", c.id).Msg("send buffer full, dropping frame")
	}
}

func (c *client) sendEvent(ev ServerEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("event", ev.Name).Msg("failed to encode event")
		return
	}
	c.enqueue(data)
}

func (c *client) ping() {
	select {
	case c.pingChan <- struct{}{}:
	default:
	}
}

func (c *client) WritePump() {
	for {
		select {
		case data := <-c.send:
			if err := c.conn.Write(data); err != nil {
				return
			}
		case <-c.pingChan:
			if err := c.conn.Ping(); err != nil {
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *client) close(reason string) {
	c.cancel()
	c.conn.Close(reason)
}
