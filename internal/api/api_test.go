package api_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/vocabflash/internal/api"
	"github.com/vytor/vocabflash/internal/jobs"
	"github.com/vytor/vocabflash/internal/models"
	"github.com/vytor/vocabflash/internal/repository"
	"github.com/vytor/vocabflash/internal/repository/sqlite"
	"github.com/vytor/vocabflash/internal/services"
	"github.com/vytor/vocabflash/internal/testutil"
	"github.com/vytor/vocabflash/internal/worker"
)

type sessionResponse struct {
	ID      string `json:"id"`
	State   string `json:"state"`
	Index   int    `json:"index"`
	Length  int    `json:"length"`
	Current *struct {
		Item   models.StudyItem `json:"item"`
		Prompt string           `json:"prompt"`
		Blanks int              `json:"blanks"`
	} `json:"current"`
	LastResult *struct {
		Verdict models.Verdict `json:"verdict"`
	} `json:"last_result"`
	Score models.Score `json:"score"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type APISuite struct {
	suite.Suite
	db      *sql.DB
	pool    *worker.Pool
	items   repository.ItemRepository
	stats   repository.StatsRepository
	handler http.Handler
}

func (s *APISuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())

	decks := sqlite.NewDeckRepository(s.db)
	s.items = sqlite.NewItemRepository(s.db)
	s.stats = sqlite.NewStatsRepository(s.db)
	settings := sqlite.NewSettingsRepository(s.db)

	s.pool = worker.NewPool(1, 16)
	s.pool.Start(context.Background())
	queue := jobs.NewWorkerQueue(s.pool, s.stats)

	defaults := models.Settings{IncorrectRepetitions: 2, AlmostCorrectRepetitions: 1, PreviewDelay: 3}
	srv := &api.Server{
		DB:           s.db,
		DeckService:  services.NewDeckService(decks, s.items, s.stats, settings, defaults),
		StudyService: services.NewStudyService(decks, s.items, settings, queue, defaults, services.StudyConfig{MaxSessions: 10}),
	}
	s.handler = srv.Routes()
}

func (s *APISuite) TearDownTest() {
	s.pool.Stop()
	testutil.MustClose(s.T(), s.db)
}

func (s *APISuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *APISuite) decode(rec *httptest.ResponseRecorder, dst any) {
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func (s *APISuite) createDeck(name string) models.Deck {
	rec := s.do(http.MethodPost, "/decks", map[string]string{"name": name})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var deck models.Deck
	s.decode(rec, &deck)
	return deck
}

func (s *APISuite) TestHealth() {
	rec := s.do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.NotEmpty(rec.Header().Get("X-Request-ID"))

	rec = s.do(http.MethodGet, "/ready", nil)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *APISuite) TestDecksAndItems() {
	deck := s.createDeck("Spanish")

	rec := s.do(http.MethodPost, "/decks/"+itoa(deck.ID)+"/items", models.StudyItem{
		Kind: models.KindPractice, Word: "cat", Translation: "gato",
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var item models.StudyItem
	s.decode(rec, &item)
	s.Equal(deck.ID, item.DeckID)

	rec = s.do(http.MethodPost, "/decks/"+itoa(deck.ID)+"/items", models.StudyItem{Kind: models.KindPractice, Word: "dog"})
	s.Equal(http.StatusBadRequest, rec.Code)
	var apiErr errorResponse
	s.decode(rec, &apiErr)
	s.Equal("VALIDATION_ERROR", apiErr.Error.Code)

	rec = s.do(http.MethodGet, "/decks/"+itoa(deck.ID)+"/items?kind=practice", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var items []models.StudyItem
	s.decode(rec, &items)
	s.Len(items, 1)

	rec = s.do(http.MethodDelete, "/items/"+itoa(item.ID), nil)
	s.Equal(http.StatusNoContent, rec.Code)
	rec = s.do(http.MethodDelete, "/items/"+itoa(item.ID), nil)
	s.Equal(http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/decks/999/items", nil)
	s.Equal(http.StatusNotFound, rec.Code)
	rec = s.do(http.MethodGet, "/decks/abc/items", nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *APISuite) TestSettings() {
	rec := s.do(http.MethodGet, "/settings", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var got models.Settings
	s.decode(rec, &got)
	s.Equal(2, got.IncorrectRepetitions)

	rec = s.do(http.MethodPut, "/settings", models.Settings{IncorrectRepetitions: 0, AlmostCorrectRepetitions: 3, PreviewDelay: 1})
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/settings", nil)
	s.decode(rec, &got)
	s.Equal(models.Settings{IncorrectRepetitions: 0, AlmostCorrectRepetitions: 3, PreviewDelay: 1}, got)

	rec = s.do(http.MethodPut, "/settings", map[string]int{"preview_delay": -1})
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *APISuite) TestImport() {
	deck := s.createDeck("Imported")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "words.csv")
	s.Require().NoError(err)
	_, err = part.Write([]byte("word,translation\nhello,hola\nbye,\n"))
	s.Require().NoError(err)
	s.Require().NoError(mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/decks/"+itoa(deck.ID)+"/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var summary services.ImportSummary
	s.decode(rec, &summary)
	s.Equal(1, summary.Imported)
	s.Len(summary.Skipped, 1)

	items, err := s.items.List(context.Background(), models.ItemFilter{DeckID: deck.ID})
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Equal("hola", items[0].Translation)
}

func (s *APISuite) TestStudySession_EndToEnd() {
	deck := s.createDeck("Spanish")
	rec := s.do(http.MethodPost, "/decks/"+itoa(deck.ID)+"/items", models.StudyItem{
		Kind: models.KindPractice, Word: "cat", Translation: "gato",
	})
	s.Require().Equal(http.StatusCreated, rec.Code)
	var item models.StudyItem
	s.decode(rec, &item)

	rec = s.do(http.MethodPost, "/sessions", map[string]any{"deck_id": deck.ID, "direction": "forward"})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var sess sessionResponse
	s.decode(rec, &sess)
	s.Equal("active", sess.State)
	s.Require().NotNil(sess.Current)
	s.Equal("cat", sess.Current.Prompt)
	s.Empty(sess.Current.Item.Translation)

	rec = s.do(http.MethodPost, "/sessions/"+sess.ID+"/advance", nil)
	s.Equal(http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPost, "/sessions/"+sess.ID+"/answer", map[string]string{"answer": "gatto"})
	s.Require().Equal(http.StatusOK, rec.Code)
	s.decode(rec, &sess)
	s.Equal("showing_result", sess.State)
	s.Equal(models.VerdictAlmostCorrect, sess.LastResult.Verdict)

	rec = s.do(http.MethodPost, "/sessions/"+sess.ID+"/advance", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.decode(rec, &sess)
	s.Equal(2, sess.Length, "near miss is repeated once")

	rec = s.do(http.MethodPost, "/sessions/"+sess.ID+"/answer", map[string]string{"answer": "gato"})
	s.Require().Equal(http.StatusOK, rec.Code)
	rec = s.do(http.MethodPost, "/sessions/"+sess.ID+"/advance", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.decode(rec, &sess)
	s.Equal("complete", sess.State)
	s.Equal(models.Score{Correct: 1, Total: 2}, sess.Score)

	// Flush the statistics queue before reading what it wrote.
	s.pool.Stop()

	stored, err := s.items.Get(context.Background(), item.ID)
	s.Require().NoError(err)
	s.Equal(models.Statistics{Correct: 1, AlmostCorrect: 1}, stored.Statistics)

	rec = s.do(http.MethodGet, "/decks/"+itoa(deck.ID)+"/history", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var history []models.SessionResult
	s.decode(rec, &history)
	s.Require().Len(history, 1)
	s.Equal(1, history[0].Correct)
	s.Equal(2, history[0].Total)

	rec = s.do(http.MethodDelete, "/sessions/"+sess.ID, nil)
	s.Equal(http.StatusNoContent, rec.Code)
	rec = s.do(http.MethodGet, "/sessions/"+sess.ID, nil)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *APISuite) TestClozeSession() {
	deck := s.createDeck("Grammar")
	rec := s.do(http.MethodPost, "/decks/"+itoa(deck.ID)+"/items", models.StudyItem{
		Kind:         models.KindGrammarExercise,
		ExerciseType: models.ExerciseClozeTest,
		ClozeText:    "1. I (1) home.\n2. She (2) late.",
		ClozeAnswers: []string{"went", "came"},
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/sessions", map[string]any{"deck_id": deck.ID})
	s.Require().Equal(http.StatusCreated, rec.Code)
	var sess sessionResponse
	s.decode(rec, &sess)
	s.Equal(2, sess.Current.Blanks)

	rec = s.do(http.MethodPost, "/sessions/"+sess.ID+"/shuffle", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	rec = s.do(http.MethodPost, "/sessions/"+sess.ID+"/reset-order", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.decode(rec, &sess)
	s.Equal("1. I (1) home.\n2. She (2) late.", sess.Current.Prompt)

	rec = s.do(http.MethodPost, "/sessions/"+sess.ID+"/answer", map[string][]string{"answers": {"went", ""}})
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/sessions/"+sess.ID+"/answer", map[string][]string{"answers": {"went", "came"}})
	s.Require().Equal(http.StatusOK, rec.Code)
	s.decode(rec, &sess)
	s.Equal(models.Score{Correct: 2, Total: 2}, sess.Score)
}

func (s *APISuite) TestStartSession_Errors() {
	rec := s.do(http.MethodPost, "/sessions", map[string]any{"deck_id": 42})
	s.Equal(http.StatusNotFound, rec.Code)

	deck := s.createDeck("Spanish")
	rec = s.do(http.MethodPost, "/sessions", map[string]any{"deck_id": deck.ID, "direction": "up"})
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/sessions", map[string]any{"deck": deck.ID})
	s.Equal(http.StatusBadRequest, rec.Code, "unknown fields are rejected")
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}
