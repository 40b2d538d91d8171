package game

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// Registry maps room codes to live sessions and connection ids to the
// session holding them. It is an explicit object, not package state, so
// independent instances can coexist in tests.
type connBinding struct {
	c    *client
	sess *Session
}

type Registry struct {
	locker   sync.Mutex
	sessions map[string]*Session
	conns    map[string]connBinding

	store   Store
	words   WordSource
	gateway Broadcaster
	clock   Clock
}

func NewRegistry(store Store, words WordSource, gateway Broadcaster, clock Clock) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		conns:    make(map[string]connBinding),
		store:    store,
		words:    words,
		gateway:  gateway,
		clock:    clock,
	}
}

// GetOrCreate returns the live session for a code, building it from the
// durable room snapshot on first use. At most one session is ever live per
// code, including under concurrent calls.
func (r *Registry) GetOrCreate(ctx context.Context, code string) (*Session, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	r.locker.Lock()
	defer r.locker.Unlock()

	if sess, ok := r.sessions[code]; ok {
		return sess, nil
	}

	room, err := r.store.GetRoomByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	sess := newSession(room, r, r.gateway, r.store, r.words, r.clock)
	r.sessions[code] = sess
	go sess.run()
	log.Info().Str("room", code).Msg("session created")
	return sess, nil
}

// Attach records which session owns a connection, replacing any prior
// binding for the same connection id.
func (r *Registry) Attach(c *client, sess *Session) {
	r.locker.Lock()
	r.conns[c.id] = connBinding{c: c, sess: sess}
	r.locker.Unlock()
}

// Detach resolves the owning session for a connection and hands it the
// removal. Eviction of an emptied session happens on the session's own
// goroutine, which calls back into removeSession.
func (r *Registry) Detach(connId string) {
	r.locker.Lock()
	binding, ok := r.conns[connId]
	delete(r.conns, connId)
	r.locker.Unlock()

	if !ok {
		return
	}
	binding.sess.requestRemove(binding.c)
}

func (r *Registry) removeSession(code string) {
	r.locker.Lock()
	delete(r.sessions, code)
	r.locker.Unlock()
}
