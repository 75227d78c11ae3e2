package services

import (
	"context"

	"github.com/vytor/vocabflash/internal/errors"
	"github.com/vytor/vocabflash/internal/logger"
	"github.com/vytor/vocabflash/internal/models"
	"github.com/vytor/vocabflash/internal/repository"
)

// loadSettings returns the stored settings, or defaults when none were saved.
func loadSettings(ctx context.Context, repo repository.SettingsRepository, defaults models.Settings) (models.Settings, error) {
	stored, err := repo.Get(ctx)
	if err != nil {
		logger.FromContext(ctx).Error("failed to load settings: %v", err)
		return models.Settings{}, errors.NewInternalError(err)
	}
	if stored == nil {
		return defaults, nil
	}
	return *stored, nil
}

func validateSettings(s models.Settings) error {
	switch {
	case s.IncorrectRepetitions < 0:
		return errors.NewValidationError("incorrect_repetitions", "cannot be negative")
	case s.AlmostCorrectRepetitions < 0:
		return errors.NewValidationError("almost_correct_repetitions", "cannot be negative")
	case s.PreviewDelay < 0:
		return errors.NewValidationError("preview_delay", "cannot be negative")
	}
	return nil
}
