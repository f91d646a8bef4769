// internal/app/features/enrollments/feedback.go
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

// feedbackRequest is the JSON body for POST /enrollments/{id}/feedback.
type feedbackRequest struct {
	SubmittedBy string `json:"submitted_by"`
	Rating      int    `json:"rating"`
	Text        string `json:"text"`
	Anonymous   bool   `json:"anonymous"`
}

// HandleFeedback handles POST /enrollments/{id}/feedback. Entries are
// append-only; there is no edit or delete.
func (h *Handler) HandleFeedback(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid enrollment id")
		return
	}

	var req feedbackRequest
	if !shared.Decode(w, r, &req) {
		return
	}
	submittedBy, err := primitive.ObjectIDFromHex(req.SubmittedBy)
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid submitted_by")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err = h.Enrollments.AddFeedback(ctx, id, submittedBy, req.Rating, req.Text, req.Anonymous)
	if err != nil {
		switch {
		case errors.Is(err, enrollmentstore.ErrInvalidRating):
			shared.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, enrollmentstore.ErrNotFound):
			shared.Error(w, http.StatusNotFound, "enrollment not found")
		default:
			h.Log.Error("add feedback", zap.Error(err))
			shared.Error(w, http.StatusInternalServerError, "database error")
		}
		return
	}
	shared.JSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}
