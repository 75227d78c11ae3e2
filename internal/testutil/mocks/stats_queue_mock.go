package mocks

import (
	"github.com/stretchr/testify/mock"
	"github.com/vytor/vocabflash/internal/models"
)

// MockStatsQueue is a mock implementation of jobs.StatsQueue
type MockStatsQueue struct {
	mock.Mock
}

func (m *MockStatsQueue) EnqueueVerdict(itemID int64, verdict models.Verdict) error {
	args := m.Called(itemID, verdict)
	return args.Error(0)
}

func (m *MockStatsQueue) EnqueueSessionResult(result models.SessionResult) error {
	args := m.Called(result)
	return args.Error(0)
}
