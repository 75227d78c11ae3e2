package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/vocabflash/internal/models"
)

// MockStatsRepository is a mock implementation of repository.StatsRepository
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) Increment(ctx context.Context, itemID int64, verdict models.Verdict) error {
	args := m.Called(ctx, itemID, verdict)
	return args.Error(0)
}

func (m *MockStatsRepository) InsertSessionResult(ctx context.Context, result models.SessionResult) (int64, error) {
	args := m.Called(ctx, result)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStatsRepository) ListSessionResults(ctx context.Context, deckID int64, limit int) ([]models.SessionResult, error) {
	args := m.Called(ctx, deckID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SessionResult), args.Error(1)
}
