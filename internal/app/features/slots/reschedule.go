// internal/app/features/slots/reschedule.go
package slots

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mentorhq/mentorhub/internal/app/features/shared"
	slotstore "github.com/mentorhq/mentorhub/internal/app/store/slotbatches"
	"github.com/mentorhq/mentorhub/internal/app/system/notify"
	"github.com/mentorhq/mentorhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleReschedule handles POST /slots/{id}/reschedule.
//
// The new slot is claimed before the old one is released, so a failure
// anywhere leaves the student holding their original slot.
func (h *Handler) HandleReschedule(w http.ResponseWriter, r *http.Request) {
	batchID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid batch id")
		return
	}

	var req rescheduleRequest
	if !shared.Decode(w, r, &req) {
		return
	}
	studentID, err := primitive.ObjectIDFromHex(req.StudentID)
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid student_id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	slot, err := h.Slots.Reschedule(ctx, batchID, req.OldIndex, req.NewIndex, studentID)
	if err != nil {
		switch {
		case errors.Is(err, slotstore.ErrNotFound):
			shared.Error(w, http.StatusNotFound, "batch not found")
		case errors.Is(err, slotstore.ErrSlotIndexOutOfRange):
			shared.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, slotstore.ErrNotSlotHolder):
			shared.Error(w, http.StatusForbidden, err.Error())
		case errors.Is(err, slotstore.ErrAlreadyBooked), errors.Is(err, slotstore.ErrBatchNotBookable):
			shared.Error(w, http.StatusConflict, err.Error())
		default:
			h.Log.Error("reschedule: move slot", zap.Error(err))
			shared.Error(w, http.StatusInternalServerError, "database error")
		}
		return
	}

	// Keep the meeting created at booking time in step with the new slot.
	if err := h.Meetings.UpdateSlotTime(ctx, batchID, studentID, slot.Start, slot.DurationMinutes); err != nil {
		h.Log.Warn("reschedule: sync meeting time", zap.Error(err))
	}

	h.notifyRescheduled(ctx, batchID, studentID, slot.Start.Format("Mon Jan 2 15:04 MST"))

	shared.JSON(w, http.StatusOK, slot)
}

func (h *Handler) notifyRescheduled(ctx context.Context, batchID, studentID primitive.ObjectID, when string) {
	batch, err := h.Slots.Get(ctx, batchID)
	if err != nil {
		h.Log.Warn("reschedule: load batch for notice", zap.Error(err))
		return
	}
	mentor, err := h.Users.Get(ctx, batch.OwnerID)
	if err != nil {
		h.Log.Warn("reschedule: load mentor for notice", zap.Error(err))
		return
	}

	line := fmt.Sprintf("A booked slot was moved to %s", when)
	if enr, err := h.Enrollments.ActivePair(ctx, studentID, batch.OwnerID); err == nil {
		if enr.StudentThreadID != nil {
			if err := h.Threads.AppendSystem(ctx, *enr.StudentThreadID, line); err != nil {
				h.Log.Warn("reschedule: append student thread line", zap.Error(err))
			}
		}
		if enr.MentorThreadID != nil {
			if err := h.Threads.AppendSystem(ctx, *enr.MentorThreadID, line); err != nil {
				h.Log.Warn("reschedule: append mentor thread line", zap.Error(err))
			}
		}
	}

	h.Notify.Trigger(ctx, notify.Notice{
		RecipientID: mentor.ID.Hex(),
		Email:       mentor.Email,
		Scope:       batch.ID.Hex(),
		Type:        notify.TypeSlotRescheduled,
		Subject:     "A booked slot was moved",
		Preview:     line,
		Link:        h.BaseURL + "/slots/" + batch.ID.Hex(),
	}, true)
}
