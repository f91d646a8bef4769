// internal/app/features/meetings/reschedule.go
package meetings

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mentorhq/mentorhub/internal/app/features/shared"
	"github.com/mentorhq/mentorhub/internal/app/system/notify"
	"github.com/mentorhq/mentorhub/internal/app/system/timeouts"
	"github.com/mentorhq/mentorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// proposeRequest is the JSON body for POST /meetings/{id}/reschedule.
type proposeRequest struct {
	RequestedBy  string    `json:"requested_by"`
	ProposedTime time.Time `json:"proposed_time"`
	Note         string    `json:"note"`
}

// resolveRequest is the JSON body for POST /meetings/{id}/reschedule/{index}.
type resolveRequest struct {
	ActorID  string `json:"actor_id"`
	Decision string `json:"decision"` // accepted | rejected
}

// HandlePropose handles POST /meetings/{id}/reschedule.
func (h *Handler) HandlePropose(w http.ResponseWriter, r *http.Request) {
	id, ok := meetingID(w, r)
	if !ok {
		return
	}
	var req proposeRequest
	if !shared.Decode(w, r, &req) {
		return
	}
	requestedBy, err := primitive.ObjectIDFromHex(req.RequestedBy)
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid requested_by")
		return
	}
	if req.ProposedTime.IsZero() {
		shared.Error(w, http.StatusBadRequest, "proposed_time is required")
		return
	}

	ctx, cancel := timeoutCtx(r, timeouts.Medium())
	defer cancel()

	m, err := h.Meetings.ProposeReschedule(ctx, id, requestedBy, req.ProposedTime, req.Note)
	if err != nil {
		h.writeStoreErr(w, "propose reschedule", err)
		return
	}

	preview := fmt.Sprintf("New time proposed: %s", req.ProposedTime.UTC().Format("Mon Jan 2 15:04 MST"))
	if req.Note != "" {
		preview += " (" + req.Note + ")"
	}
	h.notifyParty(ctx, m, requestedBy, false,
		notify.TypeRescheduleProposed, "Reschedule requested", preview, false)

	shared.JSON(w, http.StatusOK, m)
}

// HandleResolve handles POST /meetings/{id}/reschedule/{index}.
//
// Only the party who did not propose may resolve; the store enforces this
// along with single-resolution of each entry.
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	id, ok := meetingID(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		shared.Error(w, http.StatusBadRequest, "invalid request index")
		return
	}
	var req resolveRequest
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

	m, err := h.Meetings.ResolveReschedule(ctx, id, index, req.Decision, actorID)
	if err != nil {
		h.writeStoreErr(w, "resolve reschedule", err)
		return
	}

	preview := "Your reschedule request was " + req.Decision
	if req.Decision == models.RescheduleAccepted && m.ScheduledTime != nil {
		preview = fmt.Sprintf("Reschedule accepted; new time %s", m.ScheduledTime.Format("Mon Jan 2 15:04 MST"))
	}
	force := req.Decision == models.RescheduleAccepted
	h.notifyParty(ctx, m, actorID, false,
		notify.TypeRescheduleResolved, "Reschedule decision", preview, force)

	shared.JSON(w, http.StatusOK, m)
}
