package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/decks", func(r chi.Router) {
		r.Get("/", s.handleListDecks)
		r.Post("/", s.handleCreateDeck)
		r.Get("/{id}/items", s.handleListItems)
		r.Post("/{id}/items", s.handleAddItem)
		r.Post("/{id}/import", s.handleImport)
		r.Get("/{id}/history", s.handleHistory)
	})
	r.Delete("/items/{id}", s.handleDeleteItem)

	r.Get("/settings", s.handleGetSettings)
	r.Put("/settings", s.handleUpdateSettings)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleStartSession)
		r.Get("/{id}", s.handleGetSession)
		r.Delete("/{id}", s.handleEndSession)
		r.Post("/{id}/answer", s.handleAnswer)
		r.Post("/{id}/advance", s.handleAdvance)
		r.Post("/{id}/reset", s.handleReset)
		r.Post("/{id}/shuffle", s.handleShuffle)
		r.Post("/{id}/reset-order", s.handleResetOrder)
	})
	return r
}
