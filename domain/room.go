package domain

import "time"

type RoomStatus string

const (
	StatusWaiting  RoomStatus = "waiting"
	StatusPlaying  RoomStatus = "playing"
	StatusFinished RoomStatus = "finished"
)

type Room struct {
	Id            string     `json:"id"`
	Code          string     `json:"code"`
	Name          string     `json:"name"`
	MaxPlayers    int        `json:"maxPlayers"`
	Status        RoomStatus `json:"status"`
	CurrentRound  int        `json:"currentRound"`
	MaxRounds     int        `json:"maxRounds"`
	RoundTime     int        `json:"roundTime"`
	CurrentDrawer string     `json:"currentDrawer,omitempty"`
	CurrentWord   string     `json:"-"`
	Players       []Player   `json:"players,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

type Player struct {
	Id         string    `json:"id"`
	Username   string    `json:"username"`
	RoomId     string    `json:"roomId"`
	Score      int       `json:"score"`
	IsReady    bool      `json:"isReady"`
	IsDrawing  bool      `json:"isDrawing"`
	HasGuessed bool      `json:"hasGuessed"`
	JoinedAt   time.Time `json:"joinedAt"`
}

type ChatMessage struct {
	Id       string `json:"id"`
	RoomCode string `json:"roomId"`
	PlayerId string `json:"playerId,omitempty"`
	Username string `json:"username"`
	Content  string `json:"content"`
	Type     string `json:"type"`
}

const (
	MessageChat    = "chat"
	MessageGuess   = "guess"
	MessageSystem  = "system"
	MessageCorrect = "correct"
)

// RoomStateUpdate carries the fields pushed back to the durable store on a
// terminal transition.
type RoomStateUpdate struct {
	Status        RoomStatus
	CurrentRound  int
	CurrentDrawer string
	CurrentWord   string
}
