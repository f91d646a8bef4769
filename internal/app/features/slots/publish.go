// internal/app/features/slots/publish.go
package slots

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mentorhq/mentorhub/internal/app/features/shared"
	slotstore "github.com/mentorhq/mentorhub/internal/app/store/slotbatches"
	userstore "github.com/mentorhq/mentorhub/internal/app/store/users"
	"github.com/mentorhq/mentorhub/internal/app/system/notify"
	"github.com/mentorhq/mentorhub/internal/app/system/timeouts"
	"github.com/mentorhq/mentorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandlePublish handles POST /slots. A mentor publishes a batch of
// bookable slots; every actively enrolled student is notified.
func (h *Handler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	var req publishRequest
	if !shared.Decode(w, r, &req) {
		return
	}

	ownerID, err := primitive.ObjectIDFromHex(req.OwnerID)
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid owner_id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	owner, err := h.Users.Get(ctx, ownerID)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			shared.Error(w, http.StatusNotFound, "owner not found")
			return
		}
		h.Log.Error("publish: load owner", zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if owner.Role != models.RoleMentor {
		shared.Error(w, http.StatusForbidden, "only mentors can publish slots")
		return
	}

	tz := req.Timezone
	if tz == "" {
		tz = h.DefaultTimezone
	}
	expiresAt := req.ExpiresAt
	if expiresAt == nil && h.BatchExpiryDays > 0 {
		t := time.Now().UTC().AddDate(0, 0, h.BatchExpiryDays)
		expiresAt = &t
	}

	specs := make([]slotstore.SlotSpec, 0, len(req.Slots))
	for _, s := range req.Slots {
		specs = append(specs, slotstore.SlotSpec{
			Start:           s.Start,
			End:             s.End,
			DurationMinutes: s.DurationMinutes,
			MaxParticipants: s.MaxParticipants,
		})
	}

	batch, err := h.Slots.Publish(ctx, ownerID, req.Title, req.Description, tz, specs, expiresAt)
	if err != nil {
		switch {
		case errors.Is(err, slotstore.ErrEmptySlots), errors.Is(err, slotstore.ErrInvalidWindow):
			shared.Error(w, http.StatusBadRequest, err.Error())
		default:
			h.Log.Error("publish: insert batch", zap.Error(err))
			shared.Error(w, http.StatusInternalServerError, "database error")
		}
		return
	}

	h.notifyPublished(ctx, owner, batch)

	shared.JSON(w, http.StatusCreated, batch)
}

// notifyPublished fans a publish notice out to every actively enrolled
// student and drops a line into each student thread. Failures here are
// logged and never surface to the publisher.
func (h *Handler) notifyPublished(ctx context.Context, owner models.User, batch models.SlotBatch) {
	enrs, err := h.Enrollments.ListActiveForMentor(ctx, owner.ID)
	if err != nil {
		h.Log.Warn("publish: list enrollments for fan-out", zap.Error(err))
		return
	}
	if len(enrs) == 0 {
		return
	}

	studentIDs := make([]primitive.ObjectID, 0, len(enrs))
	for _, e := range enrs {
		studentIDs = append(studentIDs, e.StudentID)
	}
	students, err := h.Users.GetMany(ctx, studentIDs)
	if err != nil {
		h.Log.Warn("publish: load students for fan-out", zap.Error(err))
		students = nil
	}

	line := fmt.Sprintf("%s published new class times: %s", owner.FullName, batch.Title)
	for _, e := range enrs {
		if e.StudentThreadID != nil {
			if err := h.Threads.AppendSystem(ctx, *e.StudentThreadID, line); err != nil {
				h.Log.Warn("publish: append thread line", zap.Error(err))
			}
		}
		n := notify.Notice{
			RecipientID: e.StudentID.Hex(),
			Scope:       batch.ID.Hex(),
			Type:        notify.TypeSlotsPublished,
			Subject:     "New class times available for booking",
			Preview:     line,
			Link:        h.BaseURL + "/slots/" + batch.ID.Hex(),
		}
		if u, ok := students[e.StudentID]; ok {
			n.Email = u.Email
		}
		h.Notify.Trigger(ctx, n, false)
	}
}
