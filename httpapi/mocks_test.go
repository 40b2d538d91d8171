package httpapi

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Nvinod007/drawnguess/domain"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateRoom(ctx context.Context, code, name string, maxPlayers, maxRounds, roundTime int) (domain.Room, error) {
	args := m.Called(ctx, code, name, maxPlayers, maxRounds, roundTime)
	return args.Get(0).(domain.Room), args.Error(1)
}

func (m *MockStore) GetRoomByCode(ctx context.Context, code string) (domain.Room, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(domain.Room), args.Error(1)
}

func (m *MockStore) CreatePlayer(ctx context.Context, roomId, username string) (domain.Player, error) {
	args := m.Called(ctx, roomId, username)
	return args.Get(0).(domain.Player), args.Error(1)
}
