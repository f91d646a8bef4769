// internal/app/features/enrollments/enroll.go
package enrollments

import (
	"context"
	"errors"
	"net/http"

	"github.com/mentorhq/mentorhub/internal/app/features/shared"
	userstore "github.com/mentorhq/mentorhub/internal/app/store/users"
	"github.com/mentorhq/mentorhub/internal/app/system/timeouts"
	"github.com/mentorhq/mentorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// enrollRequest is the JSON body for POST /enrollments.
type enrollRequest struct {
	StudentID string `json:"student_id"`
	MentorID  string `json:"mentor_id"`
}

// HandleEnroll handles POST /enrollments.
//
// Enrollment is idempotent: the unique pair index decides the winner of a
// concurrent double-submit and both callers get the same row back. A fresh
// enrollment returns 201, an existing one 200.
func (h *Handler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	var req enrollRequest
	if !shared.Decode(w, r, &req) {
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
	if studentID == mentorID {
		shared.Error(w, http.StatusBadRequest, "student and mentor must differ")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	users, err := h.Users.GetMany(ctx, []primitive.ObjectID{studentID, mentorID})
	if err != nil {
		h.Log.Error("enroll: load users", zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	student, ok := users[studentID]
	if !ok {
		shared.Error(w, http.StatusNotFound, "student not found")
		return
	}
	mentor, ok := users[mentorID]
	if !ok {
		shared.Error(w, http.StatusNotFound, "mentor not found")
		return
	}
	if mentor.Role != models.RoleMentor {
		shared.Error(w, http.StatusBadRequest, "mentor_id does not name a mentor")
		return
	}

	enr, created, err := h.Enrollments.Enroll(ctx, studentID, mentorID, student.FullName, mentor.FullName)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			shared.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.Log.Error("enroll", zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	shared.JSON(w, status, enr)
}
