// internal/app/features/enrollments/list.go
package enrollments

import (
	"context"
	"net/http"

	"github.com/mentorhq/mentorhub/internal/app/features/shared"
	"github.com/mentorhq/mentorhub/internal/app/system/timeouts"
	"github.com/mentorhq/mentorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// enrollmentListResponse wraps list results.
type enrollmentListResponse struct {
	Enrollments []models.Enrollment `json:"enrollments"`
}

// ServeList handles GET /enrollments?student=<id> and
// GET /enrollments?mentor=<id>. Exactly one filter must be supplied; the
// student view includes inactive rows (history), the mentor view does not.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	studentHex := q.Get("student")
	mentorHex := q.Get("mentor")
	if (studentHex == "") == (mentorHex == "") {
		shared.Error(w, http.StatusBadRequest, "supply exactly one of student or mentor")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var (
		enrs []models.Enrollment
		err  error
	)
	if studentHex != "" {
		var studentID primitive.ObjectID
		studentID, err = primitive.ObjectIDFromHex(studentHex)
		if err != nil {
			shared.Error(w, http.StatusBadRequest, "invalid student")
			return
		}
		enrs, err = h.Enrollments.ListForStudent(ctx, studentID)
	} else {
		var mentorID primitive.ObjectID
		mentorID, err = primitive.ObjectIDFromHex(mentorHex)
		if err != nil {
			shared.Error(w, http.StatusBadRequest, "invalid mentor")
			return
		}
		enrs, err = h.Enrollments.ListActiveForMentor(ctx, mentorID)
	}
	if err != nil {
		h.Log.Error("list enrollments", zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if enrs == nil {
		enrs = []models.Enrollment{}
	}
	shared.JSON(w, http.StatusOK, enrollmentListResponse{Enrollments: enrs})
}
