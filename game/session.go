package game

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Nvinod007/drawnguess/domain"
)

// Phase is the sub-state of a playing session. It is an explicit tag rather
// than something reconstructed from currentWord / timer presence.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSelectingWord
	PhaseDrawing
	PhaseRoundOver
)

const wordOptionCount = 3

// Store is the persistence bridge. Reads happen when a session is built,
// writes on terminal transitions only. Failures never roll back live state.
type Store interface {
	GetRoomByCode(ctx context.Context, code string) (domain.Room, error)
	UpdateRoomState(ctx context.Context, roomId string, update domain.RoomStateUpdate) error
	UpdatePlayerScore(ctx context.Context, playerId string, score int) error
}

type sessionHome interface {
	removeSession(code string)
}

// sessionPlayer tracks a player for the lifetime of the session, including
// after their connection drops. conn == nil means not currently attached.
type sessionPlayer struct {
	Id         string
	Username   string
	Score      int
	IsReady    bool
	IsDrawing  bool
	HasGuessed bool
	conn       *client
}

type envelope struct {
	name string
	data json.RawMessage
	from *client
}

type joinRequest struct {
	username string
	from     *client
	errChan  chan error
}

type tick struct {
	gen int
}

// Session is the live state of one room. All mutation happens on the
// session's own goroutine, which drains the channels below; operations on
// different sessions are fully independent.
type Session struct {
	id   string
	code string

	status       domain.RoomStatus
	phase        Phase
	currentRound int
	maxRounds    int
	roundTime    int

	currentDrawer string
	currentWord   string
	wordOptions   []string
	remaining     int

	// order is the turn order: player ids in insertion order, shrinking on
	// leaves. roster keeps everyone who was ever present, for the final
	// scoreboard.
	order  []string
	roster map[string]*sessionPlayer

	timer    *timerHandle
	timerGen int

	inbox    chan envelope
	joins    chan joinRequest
	removals chan *client
	ticks    chan tick

	ctx    context.Context
	cancel context.CancelFunc

	home    sessionHome
	gateway Broadcaster
	store   Store
	words   WordSource
	clock   Clock
	log     zerolog.Logger
}

func newSession(room domain.Room, home sessionHome, gateway Broadcaster, store Store, words WordSource, clock Clock) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:            room.Id,
		code:          room.Code,
		status:        room.Status,
		phase:         PhaseIdle,
		currentRound:  room.CurrentRound,
		maxRounds:     room.MaxRounds,
		roundTime:     room.RoundTime,
		currentDrawer: room.CurrentDrawer,
		currentWord:   room.CurrentWord,
		roster:        make(map[string]*sessionPlayer),
		inbox:         make(chan envelope, 1024),
		joins:         make(chan joinRequest),
		removals:      make(chan *client, 64),
		ticks:         make(chan tick, 4),
		ctx:           ctx,
		cancel:        cancel,
		home:          home,
		gateway:       gateway,
		store:         store,
		words:         words,
		clock:         clock,
		log:           log.With().Str("room", room.Code).Logger(),
	}
	for _, p := range room.Players {
		s.roster[p.Id] = &sessionPlayer{
			Id:         p.Id,
			Username:   p.Username,
			Score:      p.Score,
			IsReady:    p.IsReady,
			IsDrawing:  p.IsDrawing,
			HasGuessed: p.HasGuessed,
		}
	}
	return s
}

func (s *Session) Code() string { return s.code }

func (s *Session) run() {
	for {
		select {
		case req := <-s.joins:
			s.handleJoin(req)
		case c := <-s.removals:
			s.handleRemove(c)
		case tk := <-s.ticks:
			s.handleTick(tk)
		case env := <-s.inbox:
			s.dispatch(env)
		case <-s.ctx.Done():
			return
		}
	}
}

// Join binds a connection to a registered player and blocks until the
// session has processed the request.
func (s *Session) Join(ctx context.Context, username string, from *client) error {
	req := joinRequest{username: username, from: from, errChan: make(chan error, 1)}
	select {
	case s.joins <- req:
	case <-s.ctx.Done():
		return domain.ErrRoomNotFound
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.errChan:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Deliver posts a client event to the session. It never blocks; a full
// inbox drops the event.
func (s *Session) Deliver(name string, data json.RawMessage, from *client) {
	select {
	case s.inbox <- envelope{name: name, data: data, from: from}:
	case <-s.ctx.Done():
	default:
		s.log.Warn().Str("event", name).Msg("session inbox full, dropping event")
	}
}

func (s *Session) requestRemove(c *client) {
	select {
	case s.removals <- c:
	case <-s.ctx.Done():
	}
}

func (s *Session) dispatch(env envelope) {
	switch env.name {
	case EventStartGame:
		s.handleStart(env.from)
	case EventSelectWord:
		s.handleSelectWord(env)
	case EventDraw:
		s.handleDraw(env)
	case EventClearCanvas:
		s.handleClearCanvas(env)
	case EventGuess:
		s.handleGuess(env)
	case EventMessage:
		s.handleChat(env)
	default:
		s.log.Debug().Str("event", env.name).Msg("unknown event")
	}
}

func (s *Session) handleJoin(req joinRequest) {
	username := strings.TrimSpace(req.username)
	var player *sessionPlayer
	for _, p := range s.roster {
		if strings.EqualFold(p.Username, username) {
			player = p
			break
		}
	}
	if player == nil {
		req.errChan <- domain.ErrPlayerNotFound
		return
	}

	// Reconnect: last writer wins, the previous connection is dropped.
	if player.conn != nil {
		s.gateway.Detach(s.code, player.conn.id)
		player.conn.close("connection replaced")
	}
	player.conn = req.from
	req.from.playerId = player.Id

	if !s.inTurnOrder(player.Id) {
		s.order = append(s.order, player.Id)
	}

	s.gateway.Attach(s.code, req.from)
	req.errChan <- nil

	s.gateway.BroadcastExcept(s.code, req.from.id, ServerEvent{Name: EventPlayerJoined, Data: s.viewOf(player)})
	s.gateway.Broadcast(s.code, ServerEvent{Name: EventRoomUpdated, Data: s.snapshot()})
	s.log.Info().Str("player", player.Username).Msg("player joined")
}

func (s *Session) handleRemove(c *client) {
	player := s.roster[c.playerId]
	if player == nil || player.conn != c {
		// Stale connection (already replaced by a reconnect).
		s.gateway.Detach(s.code, c.id)
		return
	}

	s.gateway.Detach(s.code, c.id)
	player.conn = nil
	for i, id := range s.order {
		if id == player.Id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	if len(s.order) == 0 {
		s.shutdown()
		return
	}

	s.gateway.Broadcast(s.code, ServerEvent{Name: EventPlayerLeft, Data: player.Id})

	if s.status == domain.StatusPlaying && s.currentDrawer == player.Id {
		s.log.Info().Str("player", player.Username).Msg("drawer left, ending round")
		s.endRound()
		if s.status == domain.StatusPlaying {
			s.persistState()
		}
	}
	s.log.Info().Str("player", player.Username).Msg("player left")
}

func (s *Session) handleStart(from *client) {
	if s.status != domain.StatusWaiting {
		s.log.Debug().Msg("ignoring start, game not in waiting state")
		return
	}
	if len(s.order) < 2 {
		s.gateway.Unicast(from, ServerEvent{Name: EventError, Data: "Need at least 2 players to start"})
		return
	}

	s.status = domain.StatusPlaying
	s.currentRound = 1
	s.gateway.Broadcast(s.code, ServerEvent{Name: EventGameStarted})
	s.beginTurn()
	s.log.Info().Int("players", len(s.order)).Msg("game started")
}

// beginTurn sets up the next drawer and their word options. Shared by game
// start and round completion.
func (s *Session) beginTurn() {
	s.currentDrawer = s.nextDrawer()
	s.wordOptions = s.pickWords(wordOptionCount)
	s.currentWord = ""
	s.phase = PhaseSelectingWord

	drawer := s.roster[s.currentDrawer]
	if drawer != nil {
		drawer.IsDrawing = true
	}

	s.gateway.Broadcast(s.code, ServerEvent{Name: EventTurnChanged, Data: s.currentDrawer})
	s.gateway.Broadcast(s.code, ServerEvent{Name: EventRoomUpdated, Data: s.snapshot()})
	if drawer != nil && drawer.conn != nil {
		s.gateway.Unicast(drawer.conn, ServerEvent{Name: EventWordOptions, Data: s.wordOptions})
	}
}

func (s *Session) handleSelectWord(env envelope) {
	if s.status != domain.StatusPlaying || s.phase != PhaseSelectingWord || env.from.playerId != s.currentDrawer {
		s.log.Debug().Msg("ignoring select-word")
		return
	}
	var payload selectWordPayload
	if err := json.Unmarshal(env.data, &payload); err != nil || payload.Word == "" {
		return
	}

	s.currentWord = payload.Word
	s.phase = PhaseDrawing

	// The drawer sees the word, everyone else gets a blank placeholder.
	s.gateway.Unicast(env.from, ServerEvent{Name: EventWordSelected, Data: payload.Word})
	s.gateway.BroadcastExcept(s.code, env.from.id, ServerEvent{Name: EventWordSelected, Data: ""})
	s.startRoundTimer()
}

func (s *Session) handleDraw(env envelope) {
	if s.status != domain.StatusPlaying || s.phase != PhaseDrawing || env.from.playerId != s.currentDrawer {
		return
	}
	s.gateway.BroadcastExcept(s.code, env.from.id, ServerEvent{Name: EventDraw, Data: env.data})
}

func (s *Session) handleClearCanvas(env envelope) {
	if s.status != domain.StatusPlaying || env.from.playerId != s.currentDrawer {
		return
	}
	s.gateway.BroadcastExcept(s.code, env.from.id, ServerEvent{Name: EventClearCanvas})
}

func (s *Session) handleChat(env envelope) {
	player := s.roster[env.from.playerId]
	if player == nil {
		return
	}
	var payload chatPayload
	if err := json.Unmarshal(env.data, &payload); err != nil {
		return
	}
	s.gateway.Broadcast(s.code, ServerEvent{Name: EventMessage, Data: domain.ChatMessage{
		Id:       uuid.NewString(),
		RoomCode: s.code,
		PlayerId: player.Id,
		Username: player.Username,
		Content:  payload.Content,
		Type:     domain.MessageChat,
	}})
}

// endRound is the single round-completion routine, reached from timer
// expiry, all guessers being correct, and drawer disconnect.
func (s *Session) endRound() {
	s.stopRoundTimer()
	s.phase = PhaseRoundOver

	for _, p := range s.roster {
		p.HasGuessed = false
		p.IsDrawing = false
	}

	s.currentRound++
	if s.currentRound <= s.maxRounds {
		s.beginTurn()
		return
	}
	s.endGame()
}

func (s *Session) endGame() {
	s.stopRoundTimer()
	s.status = domain.StatusFinished
	s.currentDrawer = ""
	s.currentWord = ""

	// Every player ever tracked gets a scoreboard entry, connected or not.
	finalScores := make(map[string]int, len(s.roster))
	for _, p := range s.roster {
		finalScores[p.Username] = p.Score
	}
	s.gateway.Broadcast(s.code, ServerEvent{Name: EventGameEnded, Data: finalScores})
	s.persistState()
	s.log.Info().Int("rounds", s.maxRounds).Msg("game ended")
}

// persistState mirrors the session into the durable store. Best effort: a
// failure is logged and never blocks or rolls back live state.
func (s *Session) persistState() {
	update := domain.RoomStateUpdate{
		Status:        s.status,
		CurrentRound:  s.currentRound,
		CurrentDrawer: s.currentDrawer,
		CurrentWord:   s.currentWord,
	}
	scores := make(map[string]int, len(s.roster))
	for id, p := range s.roster {
		scores[id] = p.Score
	}
	roomId := s.id
	logger := s.log
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for playerId, score := range scores {
			if err := s.store.UpdatePlayerScore(ctx, playerId, score); err != nil {
				logger.Error().Err(err).Str("player", playerId).Msg("failed to persist player score")
			}
		}
		if err := s.store.UpdateRoomState(ctx, roomId, update); err != nil {
			logger.Error().Err(err).Msg("failed to persist room state")
		}
	}()
}

// shutdown evicts an empty session. The timer must already be stopped by
// the time the registry entry disappears.
func (s *Session) shutdown() {
	s.stopRoundTimer()
	s.home.removeSession(s.code)
	s.cancel()
	s.log.Info().Msg("session evicted")
}

func (s *Session) inTurnOrder(playerId string) bool {
	for _, id := range s.order {
		if id == playerId {
			return true
		}
	}
	return false
}

func (s *Session) viewOf(p *sessionPlayer) playerView {
	return playerView{
		Id:         p.Id,
		Username:   p.Username,
		Score:      p.Score,
		IsReady:    p.IsReady,
		IsDrawing:  p.IsDrawing,
		HasGuessed: p.HasGuessed,
	}
}

func (s *Session) snapshot() roomSnapshot {
	players := make([]playerView, 0, len(s.order))
	for _, id := range s.order {
		if p := s.roster[id]; p != nil {
			players = append(players, s.viewOf(p))
		}
	}
	return roomSnapshot{
		Players:       players,
		Status:        string(s.status),
		CurrentRound:  s.currentRound,
		CurrentDrawer: s.currentDrawer,
	}
}
