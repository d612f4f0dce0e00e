package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/futig/quiz-chat/internal/api/docs"
	"github.com/futig/quiz-chat/internal/api/middleware"
	sessionapi "github.com/futig/quiz-chat/internal/api/session"
	"github.com/futig/quiz-chat/internal/pkg/response"
)

// HealthReporter exposes the numbers shown by /health
type HealthReporter interface {
	ActiveSessions() int
}

// SetupRouter creates and configures the HTTP router
func SetupRouter(sessionHandler *sessionapi.Handler, health HealthReporter, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)                 // Recover from panics
	r.Use(chimiddleware.RequestID)                 // Add request ID
	r.Use(middleware.Logger(logger))               // Log requests
	r.Use(middleware.CORS)                         // Handle CORS
	r.Use(chimiddleware.Timeout(60 * time.Second)) // Default timeout

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, map[string]any{
			"status":          "healthy",
			"active_sessions": health.ActiveSessions(),
		})
	})

	// Swagger documentation endpoints
	docs.RegisterRoutes(r)

	sessionapi.RegisterRoutes(r, sessionHandler)

	return r
}
