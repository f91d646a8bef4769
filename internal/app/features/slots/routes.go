// internal/app/features/slots/routes.go
package slots

import (
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// PUBLISH
	r.Post("/", h.HandlePublish)

	// LIST
	r.Get("/", h.ServeList)
	r.Get("/bookable", h.ServeBookable)
	r.Get("/{id}", h.ServeBatch)

	// BOOKING
	r.Post("/{id}/book", h.HandleBook)
	r.Post("/{id}/reschedule", h.HandleReschedule)

	// ARCHIVE
	r.Post("/{id}/cancel", h.HandleCancel)
	r.Post("/{id}/complete", h.HandleComplete)

	return r
}
