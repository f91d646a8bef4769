// internal/app/features/meetings/request.go
package meetings

import (
	"context"
	"net/http"

	"github.com/mentorhq/mentorhub/internal/app/features/shared"
	"github.com/mentorhq/mentorhub/internal/app/system/notify"
	"github.com/mentorhq/mentorhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// requestRequest is the JSON body for POST /meetings.
type requestRequest struct {
	ThreadID  string `json:"thread_id"`
	StudentID string `json:"student_id"`
	MentorID  string `json:"mentor_id"`
	Reason    string `json:"reason"`
	Topic     string `json:"topic"`
	Timezone  string `json:"timezone"`
}

// HandleRequest handles POST /meetings.
//
// A thread carries at most one live meeting: requesting again while one is
// in flight resets it to requested with any schedule and link cleared,
// rather than spawning a second document.
func (h *Handler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	var req requestRequest
	if !shared.Decode(w, r, &req) {
		return
	}
	threadID, err := primitive.ObjectIDFromHex(req.ThreadID)
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid thread_id")
		return
	}
	studentID, err := primitive.ObjectIDFromHex(req.StudentID)
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid student_id")
		return
	}
	mentorID, err := primitive.ObjectIDFromHex(req.MentorID)
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid mentor_id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	m, err := h.Meetings.Request(ctx, threadID, studentID, mentorID, req.Reason, req.Topic, req.Timezone)
	if err != nil {
		h.Log.Error("request meeting", zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	h.notifyParty(ctx, m, studentID, false,
		notify.TypeMeetingRequested, "New meeting request", req.Reason, false)

	shared.JSON(w, http.StatusCreated, m)
}
