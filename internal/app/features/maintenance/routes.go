// internal/app/features/maintenance/routes.go
package maintenance

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/repair", h.HandleRepair)
	return r
}
