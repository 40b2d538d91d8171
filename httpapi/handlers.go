package httpapi

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nvinod007/drawnguess/domain"
)

// Store is the room/player registration surface of the durable store. Live
// gameplay never goes through here.
type Store interface {
	CreateRoom(ctx context.Context, code, name string, maxPlayers, maxRounds, roundTime int) (domain.Room, error)
	GetRoomByCode(ctx context.Context, code string) (domain.Room, error)
	CreatePlayer(ctx context.Context, roomId, username string) (domain.Player, error)
}

type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/api/rooms", h.CreateRoom)
	r.GET("/api/rooms/:code", h.GetRoom)
	r.POST("/api/rooms/:code/join", h.JoinRoom)
}

type createRoomRequest struct {
	Name       string `json:"name"`
	MaxPlayers int    `json:"maxPlayers"`
	MaxRounds  int    `json:"maxRounds"`
	RoundTime  int    `json:"roundTime"`
}

const roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func generateRoomCode() string {
	var b strings.Builder
	for i := 0; i < 6; i++ {
		b.WriteByte(roomCodeAlphabet[rand.Intn(len(roomCodeAlphabet))])
	}
	return b.String()
}

func (h *Handler) CreateRoom(ctx *gin.Context) {
	req := createRoomRequest{MaxPlayers: 8, MaxRounds: 3, RoundTime: 80}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid-request-format"})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Room name is required"})
		return
	}
	if req.MaxPlayers < 2 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "maxPlayers must be at least 2"})
		return
	}
	if req.MaxPlayers > 20 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "maxPlayers cannot exceed 20"})
		return
	}
	if req.MaxRounds < 1 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "maxRounds must be at least 1"})
		return
	}
	if req.MaxRounds > 10 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "maxRounds cannot exceed 10"})
		return
	}
	if req.RoundTime < 10 || req.RoundTime > 300 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "roundTime must be between 10 and 300 seconds"})
		return
	}

	// Room codes are random; retry on the rare collision.
	for attempt := 0; attempt < 5; attempt++ {
		room, err := h.store.CreateRoom(ctx.Request.Context(), generateRoomCode(), req.Name,
			req.MaxPlayers, req.MaxRounds, req.RoundTime)
		if err == nil {
			ctx.JSON(http.StatusOK, gin.H{"room": room})
			return
		}
		if errors.Is(err, domain.ErrDuplicateRoomCode) {
			continue
		}
		log.Error().Err(err).Msg("failed to create room")
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to create room"})
		return
	}
	ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to create room"})
}

func (h *Handler) GetRoom(ctx *gin.Context) {
	code := strings.ToUpper(ctx.Param("code"))

	room, err := h.store.GetRoomByCode(ctx.Request.Context(), code)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			ctx.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Room not found"})
			return
		}
		log.Error().Err(err).Str("room", code).Msg("failed to fetch room")
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch room"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"room": room})
}

type joinRoomRequest struct {
	Username string `json:"username"`
}

func (h *Handler) JoinRoom(ctx *gin.Context) {
	code := strings.ToUpper(ctx.Param("code"))

	var req joinRoomRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid-request-format"})
		return
	}
	username := strings.TrimSpace(req.Username)
	if len(username) < 2 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Username must be at least 2 characters"})
		return
	}

	room, err := h.store.GetRoomByCode(ctx.Request.Context(), code)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			ctx.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Room not found"})
			return
		}
		log.Error().Err(err).Str("room", code).Msg("failed to fetch room")
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to join room"})
		return
	}

	// Same username means the same player coming back, not a conflict.
	for _, p := range room.Players {
		if strings.EqualFold(strings.TrimSpace(p.Username), username) {
			ctx.JSON(http.StatusOK, gin.H{"player": p, "room": room, "message": "Already in room"})
			return
		}
	}

	if len(room.Players) >= room.MaxPlayers {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Room is full"})
		return
	}

	player, err := h.store.CreatePlayer(ctx.Request.Context(), room.Id, username)
	if err != nil {
		log.Error().Err(err).Str("room", code).Msg("failed to register player")
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to join room"})
		return
	}
	room.Players = append(room.Players, player)

	ctx.JSON(http.StatusOK, gin.H{"player": player, "room": room, "message": "Joined room successfully"})
}
