// internal/app/features/slots/list.go
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

// ServeBatch handles GET /slots/{id}.
func (h *Handler) ServeBatch(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid batch id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	batch, err := h.Slots.Get(ctx, id)
	if err != nil {
		if errors.Is(err, slotstore.ErrNotFound) {
			shared.Error(w, http.StatusNotFound, "batch not found")
			return
		}
		h.Log.Error("get batch", zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	shared.JSON(w, http.StatusOK, batch)
}

// ServeList handles GET /slots?owner=<id>: the owner's active batches.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ownerID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("owner"))
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid or missing owner")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	batches, err := h.Slots.ListActiveForOwner(ctx, ownerID)
	if err != nil {
		h.Log.Error("list batches for owner", zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if batches == nil {
		batches = []models.SlotBatch{}
	}
	shared.JSON(w, http.StatusOK, batchListResponse{Batches: batches})
}

// ServeBookable handles GET /slots/bookable?student=<id>: active batches
// from the student's enrolled mentors, with booked and past slots stripped.
func (h *Handler) ServeBookable(w http.ResponseWriter, r *http.Request) {
	studentID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("student"))
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid or missing student")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	mentorIDs, err := h.Enrollments.ActiveMentorIDsForStudent(ctx, studentID)
	if err != nil {
		h.Log.Error("bookable: list mentors", zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	batches := []models.SlotBatch{}
	if len(mentorIDs) > 0 {
		batches, err = h.Slots.ListBookableForMentors(ctx, mentorIDs)
		if err != nil {
			h.Log.Error("bookable: list batches", zap.Error(err))
			shared.Error(w, http.StatusInternalServerError, "database error")
			return
		}
	}
	if batches == nil {
		batches = []models.SlotBatch{}
	}
	shared.JSON(w, http.StatusOK, batchListResponse{Batches: batches})
}
