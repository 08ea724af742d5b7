package handler

import (
	"net/http"

	"github.com/Shivanand-hulikatti/event-registration/internal/logger"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the HTTP API.
func NewRouter(events EventService, users UserService, log *logger.Logger) http.Handler {
	if log == nil {
		log = logger.NewNop()
	}
	h := NewEventHandler(events, users, log)

	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Logger(log))             // structured access log
	r.Use(CORS)                    // permissive CORS for browser clients

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	})

	// Health
	r.Get("/health", HealthCheck)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/users", h.CreateUser)

		r.Route("/events", func(r chi.Router) {
			r.Post("/", h.CreateEvent)
			r.Get("/upcoming", h.UpcomingEvents)
			r.Get("/{id}", h.GetEvent)
			r.Get("/{id}/stats", h.Stats)
			r.Get("/{id}/registrations", h.ListRegistrations)
			r.Post("/{id}/register", h.Register)
			r.Delete("/{id}/register", h.Cancel)
		})
	})

	return r
}
