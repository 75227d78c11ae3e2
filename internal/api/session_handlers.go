package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/vocabflash/internal/models"
	"github.com/vytor/vocabflash/internal/services"
)

type startSessionRequest struct {
	DeckID    int64            `json:"deck_id"`
	Direction models.Direction `json:"direction"`
}

// answerRequest carries either a typed answer or one answer per cloze blank.
type answerRequest struct {
	Answer  string   `json:"answer"`
	Answers []string `json:"answers"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	view, err := s.StudyService.StartSession(r.Context(), req.DeckID, req.Direction)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, view)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(w, r, s.StudyService.GetSession)
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	if err := s.StudyService.EndSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	s.sessionAction(w, r, func(ctx context.Context, id string) (*services.SessionView, error) {
		if req.Answers != nil {
			return s.StudyService.SubmitCloze(ctx, id, req.Answers)
		}
		return s.StudyService.SubmitAnswer(ctx, id, req.Answer)
	})
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(w, r, s.StudyService.Advance)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(w, r, s.StudyService.Reset)
}

func (s *Server) handleShuffle(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(w, r, s.StudyService.ShuffleQuestions)
}

func (s *Server) handleResetOrder(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(w, r, s.StudyService.ResetQuestionOrder)
}

func (s *Server) sessionAction(w http.ResponseWriter, r *http.Request, action func(context.Context, string) (*services.SessionView, error)) {
	view, err := action(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}
