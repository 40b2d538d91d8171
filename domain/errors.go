package domain

import "errors"

var (
	UnexpectedDatabaseError = errors.New("database-error")

	ErrRoomNotFound      = errors.New("room-not-found")
	ErrRoomFull          = errors.New("room-full")
	ErrPlayerNotFound    = errors.New("player-not-found")
	ErrNotEnoughPlayers  = errors.New("not-enough-players")
	ErrGameAlreadyOver   = errors.New("game-already-over")
	ErrDuplicateRoomCode = errors.New("duplicate-room-code")
)
