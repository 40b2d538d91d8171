package game

import (
	"context"
	"time"

	"github.com/Nvinod007/drawnguess/domain"
)

// timerHandle is the cancellable countdown owned by a session. Exactly one
// may exist per session; startRoundTimer stops any predecessor first.
type timerHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// nextDrawer rotates round-robin over the current turn order. The previous
// drawer's position is looked up fresh each time since the order may have
// shrunk from disconnects; an absent previous drawer resets to the front.
func (s *Session) nextDrawer() string {
	if len(s.order) == 0 {
		return ""
	}
	currentIndex := -1
	for i, id := range s.order {
		if id == s.currentDrawer {
			currentIndex = i
			break
		}
	}
	return s.order[(currentIndex+1)%len(s.order)]
}

// startRoundTimer begins the per-round countdown, one tick per second,
// delivered into the session loop. Ticks carry a generation number so that
// ticks queued by an already-stopped timer are discarded instead of
// double-advancing the round.
func (s *Session) startRoundTimer() {
	s.stopRoundTimer()

	s.remaining = s.roundTime
	s.gateway.Broadcast(s.code, ServerEvent{Name: EventTimerUpdate, Data: s.remaining})

	s.timerGen++
	gen := s.timerGen

	ctx, cancel := context.WithCancel(context.Background())
	handle := &timerHandle{cancel: cancel, done: make(chan struct{})}
	s.timer = handle

	ticker := s.clock.NewTicker(time.Second)
	go func() {
		defer close(handle.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C():
				select {
				case s.ticks <- tick{gen: gen}:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (s *Session) stopRoundTimer() {
	if s.timer == nil {
		return
	}
	s.timer.cancel()
	s.timer = nil
}

func (s *Session) handleTick(tk tick) {
	if tk.gen != s.timerGen || s.status != domain.StatusPlaying || s.phase != PhaseDrawing {
		return
	}
	s.remaining--
	s.gateway.Broadcast(s.code, ServerEvent{Name: EventTimerUpdate, Data: s.remaining})
	if s.remaining <= 0 {
		s.endRound()
	}
}
