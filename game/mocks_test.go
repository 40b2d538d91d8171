package game

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Nvinod007/drawnguess/domain"
)

// --- Store ---

type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetRoomByCode(ctx context.Context, code string) (domain.Room, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(domain.Room), args.Error(1)
}

func (m *MockStore) UpdateRoomState(ctx context.Context, roomId string, update domain.RoomStateUpdate) error {
	args := m.Called(ctx, roomId, update)
	return args.Error(0)
}

func (m *MockStore) UpdatePlayerScore(ctx context.Context, playerId string, score int) error {
	args := m.Called(ctx, playerId, score)
	return args.Error(0)
}

// --- WordSource ---

type MockWordSource struct {
	mock.Mock
}

func (m *MockWordSource) RandomWords(count int) []string {
	args := m.Called(count)
	return args.Get(0).([]string)
}

// --- Clock ---

type fakeTicker struct {
	ch chan time.Time
}

func (f fakeTicker) C() <-chan time.Time { return f.ch }
func (f fakeTicker) Stop()               {}

type MockClock struct {
	mock.Mock
}

func (m *MockClock) NewTicker(d time.Duration) Ticker {
	args := m.Called(d)
	return args.Get(0).(Ticker)
}

// --- Broadcaster ---

// sentEvent is one delivery observed by the recorder: target is "room" for
// broadcasts, "except:<connId>" for filtered broadcasts and "conn:<connId>"
// for unicasts.
type sentEvent struct {
	target string
	event  ServerEvent
}

type recorderBroadcaster struct {
	mu       sync.Mutex
	sent     []sentEvent
	attached map[string]bool
}

func newRecorder() *recorderBroadcaster {
	return &recorderBroadcaster{attached: make(map[string]bool)}
}

func (r *recorderBroadcaster) Attach(code string, c *client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attached[c.id] = true
}

func (r *recorderBroadcaster) Detach(code, connId string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.attached, connId)
}

func (r *recorderBroadcaster) Broadcast(code string, ev ServerEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentEvent{target: "room", event: ev})
}

func (r *recorderBroadcaster) BroadcastExcept(code, exceptConnId string, ev ServerEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentEvent{target: "except:" + exceptConnId, event: ev})
}

func (r *recorderBroadcaster) Unicast(c *client, ev ServerEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentEvent{target: "conn:" + c.id, event: ev})
}

func (r *recorderBroadcaster) eventsNamed(name string) []sentEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sentEvent
	for _, se := range r.sent {
		if se.event.Name == name {
			out = append(out, se)
		}
	}
	return out
}

func (r *recorderBroadcaster) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
}

// --- sessionHome ---

type fakeHome struct {
	mu      sync.Mutex
	removed []string
}

func (f *fakeHome) removeSession(code string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, code)
}

func (f *fakeHome) removedCodes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.removed...)
}

// --- Store recording terminal writes ---

type fakeStore struct {
	room    domain.Room
	roomErr error
	updates chan domain.RoomStateUpdate

	mu     sync.Mutex
	scores map[string]int
}

func newFakeStore(room domain.Room) *fakeStore {
	return &fakeStore{
		room:    room,
		updates: make(chan domain.RoomStateUpdate, 8),
		scores:  make(map[string]int),
	}
}

func (f *fakeStore) GetRoomByCode(ctx context.Context, code string) (domain.Room, error) {
	if f.roomErr != nil {
		return domain.Room{}, f.roomErr
	}
	return f.room, nil
}

func (f *fakeStore) UpdateRoomState(ctx context.Context, roomId string, update domain.RoomStateUpdate) error {
	f.updates <- update
	return nil
}

func (f *fakeStore) UpdatePlayerScore(ctx context.Context, playerId string, score int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scores[playerId] = score
	return nil
}

func (f *fakeStore) scoreOf(playerId string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scores[playerId]
}

// --- WordSource with canned lists ---

type fakeWords struct {
	words []string
}

func (f fakeWords) RandomWords(count int) []string {
	if len(f.words) >= count {
		return f.words[:count]
	}
	return f.words
}

// --- NetworkConn ---

type fakeConn struct {
	mu     sync.Mutex
	wrote  [][]byte
	closed bool
}

func (f *fakeConn) Write(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wrote = append(f.wrote, data)
	return nil
}

func (f *fakeConn) Read() ([]byte, error) {
	select {} // tests never read through fakeConn
}

func (f *fakeConn) Ping() error { return nil }

func (f *fakeConn) Close(reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}
