// internal/app/features/meetings/routes.go
package meetings

import (
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// REQUEST
	r.Post("/", h.HandleRequest)

	// LIST / VIEW
	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeGet)

	// LIFECYCLE
	r.Post("/{id}/schedule", h.HandleSchedule)
	r.Post("/{id}/link", h.HandleLink)
	r.Post("/{id}/complete", h.HandleComplete)
	r.Post("/{id}/cancel", h.HandleCancel)

	// RESCHEDULE NEGOTIATION
	r.Post("/{id}/reschedule", h.HandlePropose)
	r.Post("/{id}/reschedule/{index}", h.HandleResolve)

	return r
}
