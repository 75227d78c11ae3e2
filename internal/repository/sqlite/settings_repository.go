package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vytor/vocabflash/internal/logger"
	"github.com/vytor/vocabflash/internal/models"
	"github.com/vytor/vocabflash/internal/repository"
)

type settingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new SettingsRepository implementation
func NewSettingsRepository(db *sql.DB) repository.SettingsRepository {
	return &settingsRepository{db: db}
}

// Get returns nil when no settings were ever saved.
func (r *settingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	log := logger.FromContext(ctx).WithPrefix("settings_repo")
	log.Debug("fetching settings")

	var s models.Settings
	err := r.db.QueryRowContext(ctx, `
SELECT incorrect_repetitions, almost_correct_repetitions, preview_delay
FROM settings
WHERE id = 1
`).Scan(&s.IncorrectRepetitions, &s.AlmostCorrectRepetitions, &s.PreviewDelay)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("no settings stored")
		return nil, nil
	}
	if err != nil {
		log.Error("failed to fetch settings: %v", err)
		return nil, err
	}
	return &s, nil
}

func (r *settingsRepository) Upsert(ctx context.Context, s models.Settings) error {
	log := logger.FromContext(ctx).WithPrefix("settings_repo")
	log.Debug("upserting settings: incorrect=%d, almost_correct=%d, preview_delay=%d",
		s.IncorrectRepetitions, s.AlmostCorrectRepetitions, s.PreviewDelay)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO settings (id, incorrect_repetitions, almost_correct_repetitions, preview_delay)
VALUES (1, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    incorrect_repetitions = excluded.incorrect_repetitions,
    almost_correct_repetitions = excluded.almost_correct_repetitions,
    preview_delay = excluded.preview_delay
`, s.IncorrectRepetitions, s.AlmostCorrectRepetitions, s.PreviewDelay)
	if err != nil {
		log.Error("failed to upsert settings: %v", err)
	}
	return err
}
