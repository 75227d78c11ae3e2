package worker

import (
	"context"

	"github.com/vytor/vocabflash/internal/logger"
	"github.com/vytor/vocabflash/internal/models"
	"github.com/vytor/vocabflash/internal/repository"
)

// RecordVerdictJob adds one graded answer to an item's statistics.
type RecordVerdictJob struct {
	StatsRepo repository.StatsRepository
	ItemID    int64
	Verdict   models.Verdict
}

func (j *RecordVerdictJob) Name() string { return "record_verdict" }

func (j *RecordVerdictJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"item_id": j.ItemID,
		"verdict": j.Verdict,
	})
	log.Debug("recording verdict")
	return j.StatsRepo.Increment(ctx, j.ItemID, j.Verdict)
}

// RecordSessionResultJob stores the final score of a completed session.
type RecordSessionResultJob struct {
	StatsRepo repository.StatsRepository
	Result    models.SessionResult
}

func (j *RecordSessionResultJob) Name() string { return "record_session_result" }

func (j *RecordSessionResultJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("deck_id", j.Result.DeckID)
	id, err := j.StatsRepo.InsertSessionResult(ctx, j.Result)
	if err != nil {
		return err
	}
	log.Info("session result stored: id=%d, score=%d/%d", id, j.Result.Correct, j.Result.Total)
	return nil
}
