package worker_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/vocabflash/internal/models"
	"github.com/vytor/vocabflash/internal/testutil/mocks"
	"github.com/vytor/vocabflash/internal/worker"
)

type countingJob struct {
	n     *atomic.Int32
	delay time.Duration
	err   error
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Run(ctx context.Context) error {
	if j.delay > 0 {
		time.Sleep(j.delay)
	}
	j.n.Add(1)
	return j.err
}

func TestPool_StopDrainsQueuedJobs(t *testing.T) {
	p := worker.NewPool(1, 16)
	p.Start(context.Background())

	var n atomic.Int32
	for i := 0; i < 10; i++ {
		require.NoError(t, p.Submit(&countingJob{n: &n, delay: time.Millisecond}))
	}
	p.Stop()

	assert.Equal(t, int32(10), n.Load())
	assert.Zero(t, p.QueueSize())
}

func TestPool_FailingJobDoesNotStopWorker(t *testing.T) {
	p := worker.NewPool(1, 4)
	p.Start(context.Background())

	var n atomic.Int32
	require.NoError(t, p.Submit(&countingJob{n: &n, err: errors.New("boom")}))
	require.NoError(t, p.Submit(&countingJob{n: &n}))
	p.Stop()

	assert.Equal(t, int32(2), n.Load())
}

func TestPool_SubmitAfterStop(t *testing.T) {
	p := worker.NewPool(2, 4)
	p.Start(context.Background())
	p.Stop()
	p.Stop()

	var n atomic.Int32
	err := p.Submit(&countingJob{n: &n})
	assert.ErrorIs(t, err, worker.ErrPoolStopped)
}

func TestPool_ConcurrentSubmit(t *testing.T) {
	p := worker.NewPool(3, 2)
	p.Start(context.Background())

	var (
		n  atomic.Int32
		wg sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				assert.NoError(t, p.Submit(&countingJob{n: &n}))
			}
		}()
	}
	wg.Wait()
	p.Stop()

	assert.Equal(t, int32(40), n.Load())
}

func TestRecordVerdictJob(t *testing.T) {
	repo := new(mocks.MockStatsRepository)
	repo.On("Increment", mock.Anything, int64(7), models.VerdictAlmostCorrect).Return(nil)

	job := &worker.RecordVerdictJob{StatsRepo: repo, ItemID: 7, Verdict: models.VerdictAlmostCorrect}
	assert.Equal(t, "record_verdict", job.Name())
	require.NoError(t, job.Run(context.Background()))
	repo.AssertExpectations(t)
}

func TestRecordSessionResultJob(t *testing.T) {
	repo := new(mocks.MockStatsRepository)
	result := models.SessionResult{DeckID: 2, Direction: models.DirectionReverse, Correct: 3, Total: 4}
	repo.On("InsertSessionResult", mock.Anything, result).Return(int64(1), nil)

	job := &worker.RecordSessionResultJob{StatsRepo: repo, Result: result}
	require.NoError(t, job.Run(context.Background()))
	repo.AssertExpectations(t)
}
