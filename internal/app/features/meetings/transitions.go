// internal/app/features/meetings/transitions.go
package meetings

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mentorhq/mentorhub/internal/app/features/shared"
	meetingstore "github.com/mentorhq/mentorhub/internal/app/store/meetings"
	"github.com/mentorhq/mentorhub/internal/app/system/notify"
	"github.com/mentorhq/mentorhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// scheduleRequest is the JSON body for POST /meetings/{id}/schedule.
type scheduleRequest struct {
	ActorID       string    `json:"actor_id"`
	ScheduledTime time.Time `json:"scheduled_time"`
}

// linkRequest is the JSON body for POST /meetings/{id}/link. Link and
// room_id are optional; blank mints fresh ones.
type linkRequest struct {
	ActorID string `json:"actor_id"`
	Link    string `json:"link"`
	RoomID  string `json:"room_id"`
}

// actorRequest is the JSON body for complete and cancel.
type actorRequest struct {
	ActorID string `json:"actor_id"`
	Reason  string `json:"reason"`
}

// timeoutCtx attaches a deadline to the request context.
func timeoutCtx(r *http.Request, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), d)
}

// meetingID parses the {id} URL parameter.
func meetingID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid meeting id")
		return primitive.NilObjectID, false
	}
	return id, true
}

// writeStoreErr maps meeting store sentinels to HTTP statuses.
func (h *Handler) writeStoreErr(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, meetingstore.ErrNotFound):
		shared.Error(w, http.StatusNotFound, "meeting not found")
	case errors.Is(err, meetingstore.ErrForbidden):
		shared.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, meetingstore.ErrInvalidTransition):
		shared.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, meetingstore.ErrRescheduleNotFound):
		shared.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, meetingstore.ErrAlreadyResolved):
		shared.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, meetingstore.ErrInvalidDecision):
		shared.Error(w, http.StatusBadRequest, err.Error())
	default:
		h.Log.Error(op, zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "database error")
	}
}

// HandleSchedule handles POST /meetings/{id}/schedule.
func (h *Handler) HandleSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := meetingID(w, r)
	if !ok {
		return
	}
	var req scheduleRequest
	if !shared.Decode(w, r, &req) {
		return
	}
	actorID, err := primitive.ObjectIDFromHex(req.ActorID)
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid actor_id")
		return
	}
	if req.ScheduledTime.IsZero() {
		shared.Error(w, http.StatusBadRequest, "scheduled_time is required")
		return
	}

	ctx, cancel := timeoutCtx(r, timeouts.Medium())
	defer cancel()

	m, err := h.Meetings.Schedule(ctx, id, actorID, req.ScheduledTime)
	if err != nil {
		h.writeStoreErr(w, "schedule meeting", err)
		return
	}

	preview := fmt.Sprintf("Meeting scheduled for %s", req.ScheduledTime.UTC().Format("Mon Jan 2 15:04 MST"))
	h.notifyParty(ctx, m, actorID, false,
		notify.TypeMeetingScheduled, "Meeting scheduled", preview, true)

	shared.JSON(w, http.StatusOK, m)
}

// HandleLink handles POST /meetings/{id}/link.
func (h *Handler) HandleLink(w http.ResponseWriter, r *http.Request) {
	id, ok := meetingID(w, r)
	if !ok {
		return
	}
	var req linkRequest
	if !shared.Decode(w, r, &req) {
		return
	}
	actorID, err := primitive.ObjectIDFromHex(req.ActorID)
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid actor_id")
		return
	}

	ctx, cancel := timeoutCtx(r, timeouts.Medium())
	defer cancel()

	m, err := h.Meetings.SendLink(ctx, id, actorID, req.Link, req.RoomID)
	if err != nil {
		h.writeStoreErr(w, "send meeting link", err)
		return
	}

	// Both parties need the link; the sender gets a copy too.
	preview := "Join link: " + m.Link
	h.notifyParty(ctx, m, actorID, false,
		notify.TypeMeetingLink, "Your meeting link is ready", preview, true)
	h.notifyParty(ctx, m, actorID, true,
		notify.TypeMeetingLink, "Your meeting link is ready", preview, true)

	shared.JSON(w, http.StatusOK, m)
}

// HandleComplete handles POST /meetings/{id}/complete.
func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	id, ok := meetingID(w, r)
	if !ok {
		return
	}
	var req actorRequest
	if !shared.Decode(w, r, &req) {
		return
	}
	actorID, err := primitive.ObjectIDFromHex(req.ActorID)
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid actor_id")
		return
	}

	ctx, cancel := timeoutCtx(r, timeouts.Medium())
	defer cancel()

	m, err := h.Meetings.Complete(ctx, id, actorID)
	if err != nil {
		h.writeStoreErr(w, "complete meeting", err)
		return
	}
	shared.JSON(w, http.StatusOK, m)
}

// HandleCancel handles POST /meetings/{id}/cancel.
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	id, ok := meetingID(w, r)
	if !ok {
		return
	}
	var req actorRequest
	if !shared.Decode(w, r, &req) {
		return
	}
	actorID, err := primitive.ObjectIDFromHex(req.ActorID)
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid actor_id")
		return
	}

	ctx, cancel := timeoutCtx(r, timeouts.Medium())
	defer cancel()

	m, err := h.Meetings.Cancel(ctx, id, actorID, req.Reason)
	if err != nil {
		h.writeStoreErr(w, "cancel meeting", err)
		return
	}

	h.notifyParty(ctx, m, actorID, false,
		notify.TypeMeetingCancelled, "Meeting cancelled", req.Reason, false)

	shared.JSON(w, http.StatusOK, m)
}
