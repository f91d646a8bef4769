// internal/app/features/slots/archive.go
package slots

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mentorhq/mentorhub/internal/app/features/shared"
	slotstore "github.com/mentorhq/mentorhub/internal/app/store/slotbatches"
	"github.com/mentorhq/mentorhub/internal/app/system/timeouts"
	"github.com/mentorhq/mentorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleCancel handles POST /slots/{id}/cancel.
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	h.archive(w, r, models.BatchCancelled)
}

// HandleComplete handles POST /slots/{id}/complete.
func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	h.archive(w, r, models.BatchCompleted)
}

// archive moves an active batch to a terminal status. Batches are never
// deleted; booked slots stay resolvable from their meeting records.
func (h *Handler) archive(w http.ResponseWriter, r *http.Request, status string) {
	batchID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid batch id")
		return
	}

	var req archiveRequest
	if !shared.Decode(w, r, &req) {
		return
	}
	ownerID, err := primitive.ObjectIDFromHex(req.OwnerID)
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid owner_id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Slots.SetStatus(ctx, batchID, ownerID, status); err != nil {
		if errors.Is(err, slotstore.ErrNotFound) {
			shared.Error(w, http.StatusNotFound, "batch not found for this owner")
			return
		}
		if errors.Is(err, slotstore.ErrBatchNotBookable) {
			shared.Error(w, http.StatusConflict, "batch is already archived")
			return
		}
		h.Log.Error("archive batch", zap.String("status", status), zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	shared.JSON(w, http.StatusOK, map[string]string{"status": status})
}
