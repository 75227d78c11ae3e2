package jobs

import "github.com/vytor/vocabflash/internal/models"

// StatsQueue provides an abstraction for enqueueing statistics writes
type StatsQueue interface {
	EnqueueVerdict(itemID int64, verdict models.Verdict) error
	EnqueueSessionResult(result models.SessionResult) error
}
