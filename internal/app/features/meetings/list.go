// internal/app/features/meetings/list.go
package meetings

import (
	"net/http"

	"github.com/mentorhq/mentorhub/internal/app/features/shared"
	"github.com/mentorhq/mentorhub/internal/app/system/timeouts"
	"github.com/mentorhq/mentorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// meetingListResponse wraps list results.
type meetingListResponse struct {
	Meetings []models.Meeting `json:"meetings"`
}

// ServeGet handles GET /meetings/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, ok := meetingID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeoutCtx(r, timeouts.Short())
	defer cancel()

	m, err := h.Meetings.Get(ctx, id)
	if err != nil {
		h.writeStoreErr(w, "get meeting", err)
		return
	}
	shared.JSON(w, http.StatusOK, m)
}

// ServeList handles GET /meetings?student=<id> and GET /meetings?mentor=<id>:
// upcoming meetings (scheduled or link_sent, future time) ordered soonest
// first. Exactly one filter must be supplied.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	studentHex := q.Get("student")
	mentorHex := q.Get("mentor")
	if (studentHex == "") == (mentorHex == "") {
		shared.Error(w, http.StatusBadRequest, "supply exactly one of student or mentor")
		return
	}

	ctx, cancel := timeoutCtx(r, timeouts.Medium())
	defer cancel()

	var (
		ms  []models.Meeting
		err error
	)
	if studentHex != "" {
		var studentID primitive.ObjectID
		studentID, err = primitive.ObjectIDFromHex(studentHex)
		if err != nil {
			shared.Error(w, http.StatusBadRequest, "invalid student")
			return
		}
		ms, err = h.Meetings.ListUpcomingForStudent(ctx, studentID)
	} else {
		var mentorID primitive.ObjectID
		mentorID, err = primitive.ObjectIDFromHex(mentorHex)
		if err != nil {
			shared.Error(w, http.StatusBadRequest, "invalid mentor")
			return
		}
		ms, err = h.Meetings.ListUpcomingForMentor(ctx, mentorID)
	}
	if err != nil {
		h.Log.Error("list meetings", zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if ms == nil {
		ms = []models.Meeting{}
	}
	shared.JSON(w, http.StatusOK, meetingListResponse{Meetings: ms})
}
