package api

import (
	"context"
	"net/http"

	"github.com/vytor/vocabflash/internal/errors"
	"github.com/vytor/vocabflash/internal/logger"
	"github.com/vytor/vocabflash/internal/models"
	"github.com/vytor/vocabflash/internal/services"
)

const maxImportBytes = 10 << 20

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	DB           Pinger
	DeckService  services.DeckService
	StudyService services.StudyService
}

type createDeckRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleListDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := s.DeckService.ListDecks(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	if decks == nil {
		decks = []models.Deck{}
	}
	writeJSON(w, r, http.StatusOK, decks)
}

func (s *Server) handleCreateDeck(w http.ResponseWriter, r *http.Request) {
	var req createDeckRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	deck, err := s.DeckService.CreateDeck(r.Context(), req.Name)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, deck)
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	deckID, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		handleError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		handleError(w, r, err)
		return
	}
	q := r.URL.Query()
	items, err := s.DeckService.ListItems(r.Context(), models.ItemFilter{
		DeckID:       deckID,
		Kind:         models.ItemKind(q.Get("kind")),
		ExerciseType: models.ExerciseType(q.Get("exercise_type")),
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	if items == nil {
		items = []models.StudyItem{}
	}
	writeJSON(w, r, http.StatusOK, items)
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	deckID, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	var item models.StudyItem
	if err := decodeJSON(w, r, &item); err != nil {
		handleError(w, r, err)
		return
	}
	created, err := s.DeckService.AddItem(r.Context(), deckID, item)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, created)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if err := s.DeckService.DeleteItem(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	deckID, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		handleError(w, r, errors.NewBadRequestError("expected a multipart form with a file field"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		handleError(w, r, errors.NewBadRequestError("missing file field"))
		return
	}
	defer file.Close()
	log.Debug("import upload: filename=%s, size=%d", header.Filename, header.Size)

	summary, err := s.DeckService.ImportItems(r.Context(), deckID, header.Filename, file)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	deckID, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		handleError(w, r, err)
		return
	}
	results, err := s.DeckService.History(r.Context(), deckID, limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if results == nil {
		results = []models.SessionResult{}
	}
	writeJSON(w, r, http.StatusOK, results)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.DeckService.GetSettings(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, settings)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req models.Settings
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	settings, err := s.DeckService.UpdateSettings(r.Context(), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, settings)
}
