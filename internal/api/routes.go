package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates a new router with all routes configured
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (all routes)
	r.Use(RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)
	r.Use(RecoveryMiddleware)
	r.Use(middleware.StripSlashes)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteProblem(w, r, http.StatusNotFound, "No route matches "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteProblem(w, r, http.StatusMethodNotAllowed, r.Method+" is not supported on "+r.URL.Path)
	})

	// Public routes
	r.Get("/", h.Health)
	r.Get("/health", h.Health)
	r.Get("/openapi.yaml", h.OpenAPIYAML)
	r.Get("/openapi.json", h.OpenAPIJSON)

	// Protected routes (API key gate)
	r.Group(func(r chi.Router) {
		r.Use(APIKeyMiddleware(h.keys))

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", h.ListTasks)
			r.Post("/", h.CreateTask)
			r.Get("/search", h.SearchTasks)

			r.Route("/reminders/{reminderID}", func(r chi.Router) {
				r.Use(h.ReminderCtx)
				r.Get("/", h.GetReminder)
				r.Put("/", h.UpdateReminder)
				r.Patch("/", h.UpdateReminder)
				r.Delete("/", h.DeleteReminder)
			})

			r.Route("/{taskID}", func(r chi.Router) {
				r.Use(h.TaskCtx)
				r.Get("/", h.GetTask)
				r.Patch("/", h.UpdateTask)
				r.Put("/", h.UpdateTask)
				r.Delete("/", h.DeleteTask)
				r.Patch("/complete", h.CompleteTask)
				r.Get("/reminders", h.ListReminders)
				r.Post("/reminders", h.CreateReminder)
			})
		})

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", h.ListTags)
			r.Post("/", h.CreateTag)

			r.Route("/{tagID}", func(r chi.Router) {
				r.Use(h.TagCtx)
				r.Get("/", h.GetTag)
				r.Put("/", h.UpdateTag)
				r.Patch("/", h.UpdateTag)
				r.Delete("/", h.DeleteTag)
			})
		})
	})

	return r
}
