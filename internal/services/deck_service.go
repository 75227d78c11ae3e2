package services

import (
	"context"
	stderrors "errors"
	"io"
	"strings"

	"github.com/vytor/vocabflash/internal/errors"
	"github.com/vytor/vocabflash/internal/importer"
	"github.com/vytor/vocabflash/internal/logger"
	"github.com/vytor/vocabflash/internal/models"
	"github.com/vytor/vocabflash/internal/repository"
)

const defaultHistoryLimit = 20

// ImportSummary reports the outcome of a deck import.
type ImportSummary struct {
	Imported       int                   `json:"imported"`
	TotalProcessed int                   `json:"total_processed"`
	Skipped        []importer.SkippedRow `json:"skipped"`
}

// DeckService handles decks, their items and the study settings
type DeckService interface {
	CreateDeck(ctx context.Context, name string) (*models.Deck, error)
	ListDecks(ctx context.Context) ([]models.Deck, error)
	AddItem(ctx context.Context, deckID int64, item models.StudyItem) (*models.StudyItem, error)
	ListItems(ctx context.Context, filter models.ItemFilter) ([]models.StudyItem, error)
	DeleteItem(ctx context.Context, id int64) error
	ImportItems(ctx context.Context, deckID int64, filename string, r io.Reader) (*ImportSummary, error)
	History(ctx context.Context, deckID int64, limit int) ([]models.SessionResult, error)
	GetSettings(ctx context.Context) (models.Settings, error)
	UpdateSettings(ctx context.Context, settings models.Settings) (models.Settings, error)
}

type deckService struct {
	deckRepo     repository.DeckRepository
	itemRepo     repository.ItemRepository
	statsRepo    repository.StatsRepository
	settingsRepo repository.SettingsRepository
	defaults     models.Settings
}

// NewDeckService creates a new DeckService
func NewDeckService(
	deckRepo repository.DeckRepository,
	itemRepo repository.ItemRepository,
	statsRepo repository.StatsRepository,
	settingsRepo repository.SettingsRepository,
	defaults models.Settings,
) DeckService {
	return &deckService{
		deckRepo:     deckRepo,
		itemRepo:     itemRepo,
		statsRepo:    statsRepo,
		settingsRepo: settingsRepo,
		defaults:     defaults,
	}
}

func (s *deckService) CreateDeck(ctx context.Context, name string) (*models.Deck, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating deck: name=%s", name)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.NewValidationError("name", "cannot be empty")
	}

	deck, err := s.deckRepo.Insert(ctx, name)
	if err != nil {
		log.Error("failed to create deck: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return deck, nil
}

func (s *deckService) ListDecks(ctx context.Context) ([]models.Deck, error) {
	decks, err := s.deckRepo.List(ctx)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list decks: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return decks, nil
}

func (s *deckService) requireDeck(ctx context.Context, id int64) error {
	deck, err := s.deckRepo.Get(ctx, id)
	if err != nil {
		logger.FromContext(ctx).Error("failed to get deck: %v", err)
		return errors.NewInternalError(err)
	}
	if deck == nil {
		return errors.NewNotFoundError("deck", id)
	}
	return nil
}

func (s *deckService) AddItem(ctx context.Context, deckID int64, item models.StudyItem) (*models.StudyItem, error) {
	log := logger.FromContext(ctx)
	log.Debug("adding item: deck_id=%d, kind=%s", deckID, item.Kind)

	if err := s.requireDeck(ctx, deckID); err != nil {
		return nil, err
	}
	item.DeckID = deckID
	if err := item.Validate(); err != nil {
		return nil, errors.NewValidationError("item", err.Error())
	}

	id, err := s.itemRepo.Insert(ctx, item)
	if err != nil {
		log.Error("failed to insert item: %v", err)
		return nil, errors.NewInternalError(err)
	}
	created, err := s.itemRepo.Get(ctx, id)
	if err != nil || created == nil {
		log.Error("failed to reload item %d: %v", id, err)
		return nil, errors.NewInternalError(err)
	}
	log.Info("item added: id=%d", id)
	return created, nil
}

func (s *deckService) ListItems(ctx context.Context, filter models.ItemFilter) ([]models.StudyItem, error) {
	if filter.DeckID != 0 {
		if err := s.requireDeck(ctx, filter.DeckID); err != nil {
			return nil, err
		}
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, errors.NewValidationError("pagination", "limit and offset cannot be negative")
	}
	items, err := s.itemRepo.List(ctx, filter)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list items: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return items, nil
}

func (s *deckService) DeleteItem(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx)
	log.Debug("deleting item: id=%d", id)

	deleted, err := s.itemRepo.Delete(ctx, id)
	if err != nil {
		log.Error("failed to delete item: %v", err)
		return errors.NewInternalError(err)
	}
	if !deleted {
		return errors.NewNotFoundError("item", id)
	}
	return nil
}

func (s *deckService) ImportItems(ctx context.Context, deckID int64, filename string, r io.Reader) (*ImportSummary, error) {
	log := logger.FromContext(ctx).WithField("deck_id", deckID)
	log.Info("importing items from %s", filename)

	if err := s.requireDeck(ctx, deckID); err != nil {
		return nil, err
	}

	parsed, err := importer.Parse(filename, r)
	if err != nil {
		if stderrors.Is(err, importer.ErrUnsupportedFormat) {
			return nil, errors.NewBadRequestError(err.Error())
		}
		log.Warn("failed to parse import file: %v", err)
		return nil, errors.NewBadRequestError("could not read file: " + err.Error())
	}
	for i := range parsed.Items {
		parsed.Items[i].DeckID = deckID
	}

	ids, err := s.itemRepo.InsertBatch(ctx, parsed.Items)
	if err != nil {
		log.Error("failed to store imported items: %v", err)
		return nil, errors.NewInternalError(err)
	}

	log.Info("import finished: imported=%d, skipped=%d", len(ids), len(parsed.Skipped))
	return &ImportSummary{
		Imported:       len(ids),
		TotalProcessed: parsed.TotalProcessed,
		Skipped:        parsed.Skipped,
	}, nil
}

func (s *deckService) History(ctx context.Context, deckID int64, limit int) ([]models.SessionResult, error) {
	if err := s.requireDeck(ctx, deckID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	results, err := s.statsRepo.ListSessionResults(ctx, deckID, limit)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list session results: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return results, nil
}

func (s *deckService) GetSettings(ctx context.Context) (models.Settings, error) {
	return loadSettings(ctx, s.settingsRepo, s.defaults)
}

func (s *deckService) UpdateSettings(ctx context.Context, settings models.Settings) (models.Settings, error) {
	log := logger.FromContext(ctx)
	log.Debug("updating settings")

	if err := validateSettings(settings); err != nil {
		return models.Settings{}, err
	}
	if err := s.settingsRepo.Upsert(ctx, settings); err != nil {
		log.Error("failed to save settings: %v", err)
		return models.Settings{}, errors.NewInternalError(err)
	}
	return settings, nil
}
