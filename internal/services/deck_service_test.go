package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	apperrors "github.com/vytor/vocabflash/internal/errors"
	"github.com/vytor/vocabflash/internal/importer"
	"github.com/vytor/vocabflash/internal/models"
	"github.com/vytor/vocabflash/internal/services"
	"github.com/vytor/vocabflash/internal/testutil/mocks"
)

type DeckServiceSuite struct {
	suite.Suite
	decks    *mocks.MockDeckRepository
	items    *mocks.MockItemRepository
	stats    *mocks.MockStatsRepository
	settings *mocks.MockSettingsRepository
	svc      services.DeckService
	ctx      context.Context
}

func (s *DeckServiceSuite) SetupTest() {
	s.decks = new(mocks.MockDeckRepository)
	s.items = new(mocks.MockItemRepository)
	s.stats = new(mocks.MockStatsRepository)
	s.settings = new(mocks.MockSettingsRepository)
	s.svc = services.NewDeckService(s.decks, s.items, s.stats, s.settings, defaultSettings)
	s.ctx = context.Background()
}

func (s *DeckServiceSuite) existingDeck(id int64) {
	s.decks.On("Get", mock.Anything, id).Return(&models.Deck{ID: id, Name: "Spanish"}, nil)
}

func (s *DeckServiceSuite) TestCreateDeck() {
	s.decks.On("Insert", mock.Anything, "Spanish").Return(&models.Deck{ID: 1, Name: "Spanish"}, nil)

	deck, err := s.svc.CreateDeck(s.ctx, "  Spanish ")
	s.Require().NoError(err)
	s.Equal(int64(1), deck.ID)

	_, err = s.svc.CreateDeck(s.ctx, "   ")
	assertCode(s.T(), err, apperrors.ErrCodeValidation)
}

func (s *DeckServiceSuite) TestAddItem() {
	s.existingDeck(1)
	stored := models.StudyItem{ID: 5, DeckID: 1, Kind: models.KindPractice, Word: "cat", Translation: "gato"}
	s.items.On("Insert", mock.Anything, mock.MatchedBy(func(it models.StudyItem) bool {
		return it.DeckID == 1 && it.Word == "cat"
	})).Return(int64(5), nil)
	s.items.On("Get", mock.Anything, int64(5)).Return(&stored, nil)

	got, err := s.svc.AddItem(s.ctx, 1, models.StudyItem{Kind: models.KindPractice, Word: "cat", Translation: "gato"})
	s.Require().NoError(err)
	s.Equal(&stored, got)
}

func (s *DeckServiceSuite) TestAddItem_Invalid() {
	s.existingDeck(1)

	_, err := s.svc.AddItem(s.ctx, 1, models.StudyItem{Kind: models.KindGrammarExercise, ExerciseType: "essay"})
	assertCode(s.T(), err, apperrors.ErrCodeValidation)
	s.items.AssertNotCalled(s.T(), "Insert", mock.Anything, mock.Anything)
}

func (s *DeckServiceSuite) TestAddItem_UnknownDeck() {
	s.decks.On("Get", mock.Anything, int64(3)).Return(nil, nil)

	_, err := s.svc.AddItem(s.ctx, 3, models.StudyItem{Kind: models.KindPractice, Word: "a", Translation: "b"})
	assertCode(s.T(), err, apperrors.ErrCodeNotFound)
}

func (s *DeckServiceSuite) TestDeleteItem() {
	s.items.On("Delete", mock.Anything, int64(5)).Return(true, nil)
	s.items.On("Delete", mock.Anything, int64(6)).Return(false, nil)
	s.items.On("Delete", mock.Anything, int64(7)).Return(false, errors.New("disk full"))

	s.NoError(s.svc.DeleteItem(s.ctx, 5))
	assertCode(s.T(), s.svc.DeleteItem(s.ctx, 6), apperrors.ErrCodeNotFound)
	assertCode(s.T(), s.svc.DeleteItem(s.ctx, 7), apperrors.ErrCodeInternal)
}

func (s *DeckServiceSuite) TestImportItems() {
	s.existingDeck(1)
	s.items.On("InsertBatch", mock.Anything, mock.MatchedBy(func(items []models.StudyItem) bool {
		return len(items) == 2 && items[0].DeckID == 1 && items[1].DeckID == 1
	})).Return([]int64{1, 2}, nil)

	csv := "word,translation\ncat,gato\ndog,\nhouse,casa\n"
	summary, err := s.svc.ImportItems(s.ctx, 1, "deck.csv", strings.NewReader(csv))
	s.Require().NoError(err)
	s.Equal(2, summary.Imported)
	s.Equal(3, summary.TotalProcessed)
	s.Equal([]importer.SkippedRow{{Row: 3, Reason: "missing translation"}}, summary.Skipped)
}

func (s *DeckServiceSuite) TestImportItems_UnsupportedFormat() {
	s.existingDeck(1)

	_, err := s.svc.ImportItems(s.ctx, 1, "deck.pdf", strings.NewReader(""))
	assertCode(s.T(), err, apperrors.ErrCodeBadRequest)
}

func (s *DeckServiceSuite) TestSettings() {
	s.settings.On("Get", mock.Anything).Return(nil, nil).Once()

	got, err := s.svc.GetSettings(s.ctx)
	s.Require().NoError(err)
	s.Equal(defaultSettings, got)

	_, err = s.svc.UpdateSettings(s.ctx, models.Settings{IncorrectRepetitions: -1})
	assertCode(s.T(), err, apperrors.ErrCodeValidation)

	updated := models.Settings{IncorrectRepetitions: 3, AlmostCorrectRepetitions: 0, PreviewDelay: 0}
	s.settings.On("Upsert", mock.Anything, updated).Return(nil)
	got, err = s.svc.UpdateSettings(s.ctx, updated)
	s.Require().NoError(err)
	s.Equal(updated, got)
}

func (s *DeckServiceSuite) TestHistory_DefaultLimit() {
	s.existingDeck(1)
	results := []models.SessionResult{{ID: 1, DeckID: 1, Correct: 2, Total: 3}}
	s.stats.On("ListSessionResults", mock.Anything, int64(1), 20).Return(results, nil)

	got, err := s.svc.History(s.ctx, 1, 0)
	s.Require().NoError(err)
	s.Equal(results, got)
}

func TestDeckServiceSuite(t *testing.T) {
	suite.Run(t, new(DeckServiceSuite))
}
