package game

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/Nvinod007/drawnguess/domain"
)

// handleGuess judges a guess against the current word. Policy is strict:
// trim, lowercase, exact match. Guesses from the drawer or from a player
// who already guessed this round are ignored on purpose, not errors.
func (s *Session) handleGuess(env envelope) {
	player := s.roster[env.from.playerId]
	if player == nil || s.status != domain.StatusPlaying || s.phase != PhaseDrawing {
		return
	}
	if player.Id == s.currentDrawer || player.HasGuessed {
		s.log.Debug().Str("player", player.Username).Msg("ignoring guess")
		return
	}
	var payload guessPayload
	if err := json.Unmarshal(env.data, &payload); err != nil {
		return
	}

	message := domain.ChatMessage{
		Id:       uuid.NewString(),
		RoomCode: s.code,
		PlayerId: player.Id,
		Username: player.Username,
		Content:  payload.Guess,
		Type:     domain.MessageGuess,
	}

	if s.currentWord == "" || !matchesWord(payload.Guess, s.currentWord) {
		s.gateway.Broadcast(s.code, ServerEvent{Name: EventMessage, Data: message})
		return
	}

	player.HasGuessed = true
	player.Score += guessScore(s.remaining, s.roundTime)
	message.Type = domain.MessageCorrect

	s.gateway.Broadcast(s.code, ServerEvent{Name: EventCorrectGuess, Data: correctGuessPayload{
		PlayerId: player.Id,
		Word:     s.currentWord,
	}})
	s.gateway.Broadcast(s.code, ServerEvent{Name: EventMessage, Data: message})

	if s.allGuessed() {
		s.endRound()
	}
}

func matchesWord(guess, word string) bool {
	return strings.ToLower(strings.TrimSpace(guess)) == strings.ToLower(strings.TrimSpace(word))
}

// guessScore rewards faster guesses: a flat base plus up to 50 bonus points
// scaled by the fraction of the round still remaining.
func guessScore(remaining, roundTime int) int {
	if roundTime <= 0 {
		return 100
	}
	return 100 + (50*remaining)/roundTime
}

// allGuessed reports whether every currently present non-drawer has guessed
// correctly this round.
func (s *Session) allGuessed() bool {
	for _, id := range s.order {
		if id == s.currentDrawer {
			continue
		}
		if p := s.roster[id]; p != nil && !p.HasGuessed {
			return false
		}
	}
	return true
}
