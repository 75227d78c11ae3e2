package jobs

import (
	"github.com/vytor/vocabflash/internal/models"
	"github.com/vytor/vocabflash/internal/repository"
	"github.com/vytor/vocabflash/internal/worker"
)

// WorkerQueue implements StatsQueue using a worker pool
type WorkerQueue struct {
	pool      *worker.Pool
	statsRepo repository.StatsRepository
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(pool *worker.Pool, statsRepo repository.StatsRepository) *WorkerQueue {
	return &WorkerQueue{pool: pool, statsRepo: statsRepo}
}

func (q *WorkerQueue) EnqueueVerdict(itemID int64, verdict models.Verdict) error {
	return q.pool.Submit(&worker.RecordVerdictJob{
		StatsRepo: q.statsRepo,
		ItemID:    itemID,
		Verdict:   verdict,
	})
}

func (q *WorkerQueue) EnqueueSessionResult(result models.SessionResult) error {
	return q.pool.Submit(&worker.RecordSessionResultJob{
		StatsRepo: q.statsRepo,
		Result:    result,
	})
}

