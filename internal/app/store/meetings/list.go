// internal/app/store/meetings/list.go
package meetingstore

import (
	"context"
	"time"

	"github.com/mentorhq/mentorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListUpcomingForStudent returns the student's scheduled and link_sent
// meetings with a future time, soonest first.
func (s *Store) ListUpcomingForStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Meeting, error) {
	return s.listUpcoming(ctx, bson.M{"student_id": studentID})
}

// ListUpcomingForMentor is the mentor-side counterpart.
func (s *Store) ListUpcomingForMentor(ctx context.Context, mentorID primitive.ObjectID) ([]models.Meeting, error) {
	return s.listUpcoming(ctx, bson.M{"mentor_id": mentorID})
}

func (s *Store) listUpcoming(ctx context.Context, filter bson.M) ([]models.Meeting, error) {
	filter["status"] = bson.M{"$in": bson.A{models.MeetingScheduled, models.MeetingLinkSent}}
	filter["scheduled_time"] = bson.M{"$gte": time.Now().UTC()}

	cur, err := s.c.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "scheduled_time", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var meetings []models.Meeting
	if err := cur.All(ctx, &meetings); err != nil {
		return nil, err
	}
	return meetings, nil
}
