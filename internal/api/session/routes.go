package session

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers session routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/quiz-session", func(r chi.Router) {
		r.Post("/", h.StartSession)
		r.Get("/{id}", h.GetSession)
		r.Get("/{id}/question", h.GetCurrentQuestion)
		r.Post("/{id}/answer", h.SubmitAnswer)
		r.Post("/{id}/message", h.SubmitMessage)
		r.Get("/{id}/result", h.GetSessionResult)
		r.Post("/{id}/cancel", h.CancelSession)
	})

	r.Get("/questions", h.GetQuestions)
}
