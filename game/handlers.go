package game

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Nvinod007/drawnguess/domain"
)

type Handler struct {
	registry *Registry
}

func NewHandler(registry *Registry) *Handler {
	return &Handler{registry: registry}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/ws", h.ServeWS)
}

func (h *Handler) ServeWS(ctx *gin.Context) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("ip", ctx.ClientIP()).Msg("WS upgrade failed")
		return
	}

	c := newClient(NewWebsocketConn(conn))
	go c.WritePump()
	h.readLoop(c)
}

func (h *Handler) readLoop(c *client) {
	defer func() {
		h.registry.Detach(c.id)
		c.close("")
	}()

	for {
		data, err := c.conn.Read()
		if err != nil {
			return
		}
		if !c.limiter.Allow() {
			continue
		}

		var ev ClientEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			continue
		}

		switch ev.Name {
		case EventJoinRoom:
			h.handleJoinRoom(c, ev.Data)
		case EventLeaveRoom:
			h.registry.Detach(c.id)
			c.session = nil
		default:
			if c.session != nil {
				c.session.Deliver(ev.Name, ev.Data, c)
			}
		}
	}
}

func (h *Handler) handleJoinRoom(c *client, data json.RawMessage) {
	var payload joinRoomPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		c.sendEvent(ServerEvent{Name: EventError, Data: "Invalid join request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.ctx, 10*time.Second)
	defer cancel()

	sess, err := h.registry.GetOrCreate(ctx, payload.RoomCode)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			c.sendEvent(ServerEvent{Name: EventError, Data: "Room not found"})
		} else {
			log.Error().Err(err).Str("room", payload.RoomCode).Msg("failed to resolve session")
			c.sendEvent(ServerEvent{Name: EventError, Data: "Failed to join room"})
		}
		return
	}

	if err := sess.Join(ctx, payload.Username, c); err != nil {
		c.sendEvent(ServerEvent{Name: EventError, Data: "Player not found in room"})
		return
	}

	h.registry.Attach(c, sess)
	c.session = sess
}
