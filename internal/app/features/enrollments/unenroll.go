// internal/app/features/enrollments/unenroll.go
package enrollments

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mentorhq/mentorhub/internal/app/features/shared"
	enrollmentstore "github.com/mentorhq/mentorhub/internal/app/store/enrollments"
	"github.com/mentorhq/mentorhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleUnenroll handles POST /enrollments/{id}/unenroll.
//
// The row and its chat threads survive with is_active off; a later
// re-enroll of the same pair reactivates everything.
func (h *Handler) HandleUnenroll(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid enrollment id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Enrollments.Deactivate(ctx, id); err != nil {
		if errors.Is(err, enrollmentstore.ErrNotFound) {
			shared.Error(w, http.StatusNotFound, "enrollment not found")
			return
		}
		h.Log.Error("unenroll", zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	shared.JSON(w, http.StatusOK, map[string]string{"status": "inactive"})
}
