// internal/app/features/slots/book.go
package slots

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mentorhq/mentorhub/internal/app/features/shared"
	enrollmentstore "github.com/mentorhq/mentorhub/internal/app/store/enrollments"
	slotstore "github.com/mentorhq/mentorhub/internal/app/store/slotbatches"
	"github.com/mentorhq/mentorhub/internal/app/system/notify"
	"github.com/mentorhq/mentorhub/internal/app/system/timeouts"
	"github.com/mentorhq/mentorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleBook handles POST /slots/{id}/book.
//
// The conditional update inside the slot store decides the winner when two
// students race for the same slot; this handler only maps the outcome. A
// successful claim also creates the scheduled meeting with its room link,
// so the student leaves the request with everything needed to attend.
func (h *Handler) HandleBook(w http.ResponseWriter, r *http.Request) {
	batchID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid batch id")
		return
	}

	var req bookRequest
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

	batch, err := h.Slots.Get(ctx, batchID)
	if err != nil {
		if errors.Is(err, slotstore.ErrNotFound) {
			shared.Error(w, http.StatusNotFound, "batch not found")
			return
		}
		h.Log.Error("book: load batch", zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	enr, err := h.Enrollments.ActivePair(ctx, studentID, batch.OwnerID)
	if err != nil {
		if errors.Is(err, enrollmentstore.ErrNotEnrolled) {
			shared.Error(w, http.StatusForbidden, "student is not enrolled with this mentor")
			return
		}
		h.Log.Error("book: check enrollment", zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	booked, slot, err := h.Slots.Book(ctx, batchID, req.SlotIndex, studentID)
	if err != nil {
		switch {
		case errors.Is(err, slotstore.ErrNotFound):
			shared.Error(w, http.StatusNotFound, "batch not found")
		case errors.Is(err, slotstore.ErrSlotIndexOutOfRange):
			shared.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, slotstore.ErrAlreadyBooked), errors.Is(err, slotstore.ErrBatchNotBookable):
			shared.Error(w, http.StatusConflict, err.Error())
		default:
			h.Log.Error("book: claim slot", zap.Error(err))
			shared.Error(w, http.StatusInternalServerError, "database error")
		}
		return
	}

	threadID := primitive.NilObjectID
	if enr.StudentThreadID != nil {
		threadID = *enr.StudentThreadID
	}
	meeting, err := h.Meetings.CreateScheduled(ctx, threadID, studentID, batch.OwnerID, batchID, slot.Start, slot.DurationMinutes, req.Topic, booked.Timezone)
	if err != nil {
		// The slot claim has committed; the meeting can be re-created from
		// the batch record, so report success with the claim only.
		h.Log.Error("book: create meeting for claimed slot",
			zap.String("batch_id", batchID.Hex()),
			zap.Int("slot_index", req.SlotIndex),
			zap.Error(err))
	}

	h.notifyBooked(ctx, enr, booked, slot, meeting)

	shared.JSON(w, http.StatusOK, bookResponse{Batch: booked, Slot: slot, Meeting: meeting})
}

func (h *Handler) notifyBooked(ctx context.Context, enr models.Enrollment, batch models.SlotBatch, slot models.Slot, meeting models.Meeting) {
	line := fmt.Sprintf("Class booked for %s (%d min)", slot.Start.Format("Mon Jan 2 15:04 MST"), slot.DurationMinutes)
	if meeting.Link != "" {
		line += ": " + meeting.Link
	}
	if enr.StudentThreadID != nil {
		if err := h.Threads.AppendSystem(ctx, *enr.StudentThreadID, line); err != nil {
			h.Log.Warn("book: append student thread line", zap.Error(err))
		}
	}
	if enr.MentorThreadID != nil {
		if err := h.Threads.AppendSystem(ctx, *enr.MentorThreadID, line); err != nil {
			h.Log.Warn("book: append mentor thread line", zap.Error(err))
		}
	}

	mentor, err := h.Users.Get(ctx, batch.OwnerID)
	if err != nil {
		h.Log.Warn("book: load mentor for notice", zap.Error(err))
		return
	}
	h.Notify.Trigger(ctx, notify.Notice{
		RecipientID: mentor.ID.Hex(),
		Email:       mentor.Email,
		Scope:       batch.ID.Hex(),
		Type:        notify.TypeSlotBooked,
		Subject:     "A class slot was booked",
		Preview:     line,
		Link:        h.BaseURL + "/slots/" + batch.ID.Hex(),
	}, true)
}
