package game

import "encoding/json"

// Wire protocol: every frame is a JSON envelope with a named event and a
// payload. Events are fire-and-forget; a connection that joins after an
// event was emitted never sees it. Late joiners are reconciled with a full
// room-updated snapshot instead.

// Inbound events, sent by clients.
const (
	EventJoinRoom    = "join-room"
	EventLeaveRoom   = "leave-room"
	EventStartGame   = "start-game"
	EventSelectWord  = "select-word"
	EventDraw        = "draw"
	EventClearCanvas = "clear-canvas"
	EventGuess       = "guess"
	EventMessage     = "message"
)

// Outbound events, emitted by the server.
const (
	EventPlayerJoined = "player-joined"
	EventPlayerLeft   = "player-left"
	EventRoomUpdated  = "room-updated"
	EventGameStarted  = "game-started"
	EventTurnChanged  = "turn-changed"
	EventTimerUpdate  = "timer-update"
	EventWordOptions  = "word-options"
	EventWordSelected = "word-selected"
	EventCorrectGuess = "correct-guess"
	EventGameEnded    = "game-ended"
	EventError        = "error"
)

type ClientEvent struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data,omitempty"`
}

type ServerEvent struct {
	Name string `json:"event"`
	Data any    `json:"data,omitempty"`
}

type joinRoomPayload struct {
	RoomCode string `json:"roomCode"`
	Username string `json:"username"`
}

type selectWordPayload struct {
	Word string `json:"word"`
}

type guessPayload struct {
	Guess string `json:"guess"`
}

type chatPayload struct {
	Content string `json:"content"`
}

type playerView struct {
	Id         string `json:"id"`
	Username   string `json:"username"`
	Score      int    `json:"score"`
	IsReady    bool   `json:"isReady"`
	IsDrawing  bool   `json:"isDrawing"`
	HasGuessed bool   `json:"hasGuessed"`
}

type roomSnapshot struct {
	Players       []playerView `json:"players"`
	Status        string       `json:"status"`
	CurrentRound  int          `json:"currentRound"`
	CurrentDrawer string       `json:"currentDrawer,omitempty"`
}

type correctGuessPayload struct {
	PlayerId string `json:"playerId"`
	Word     string `json:"word"`
}
