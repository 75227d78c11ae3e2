package repository

import (
	"context"

	"github.com/vytor/vocabflash/internal/models"
)

// DeckRepository handles deck data access
type DeckRepository interface {
	Insert(ctx context.Context, name string) (*models.Deck, error)
	Get(ctx context.Context, id int64) (*models.Deck, error)
	List(ctx context.Context) ([]models.Deck, error)
}

// ItemRepository handles study item data access
type ItemRepository interface {
	Insert(ctx context.Context, item models.StudyItem) (int64, error)
	InsertBatch(ctx context.Context, items []models.StudyItem) ([]int64, error)
	Get(ctx context.Context, id int64) (*models.StudyItem, error)
	List(ctx context.Context, filter models.ItemFilter) ([]models.StudyItem, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// StatsRepository handles per-item statistics and finished session scores
type StatsRepository interface {
	Increment(ctx context.Context, itemID int64, verdict models.Verdict) error
	InsertSessionResult(ctx context.Context, result models.SessionResult) (int64, error)
	ListSessionResults(ctx context.Context, deckID int64, limit int) ([]models.SessionResult, error)
}

// SettingsRepository handles the single settings row
type SettingsRepository interface {
	Get(ctx context.Context) (*models.Settings, error)
	Upsert(ctx context.Context, settings models.Settings) error
}
