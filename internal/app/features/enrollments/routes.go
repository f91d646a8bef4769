// internal/app/features/enrollments/routes.go
package enrollments

import (
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.HandleEnroll)
	r.Get("/", h.ServeList)
	r.Post("/{id}/feedback", h.HandleFeedback)
	r.Post("/{id}/unenroll", h.HandleUnenroll)

	return r
}
