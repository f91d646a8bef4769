// internal/app/store/enrollments/enrollmentstore.go
package enrollmentstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	threadstore "github.com/mentorhq/mentorhub/internal/app/store/threads"
	"github.com/mentorhq/mentorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound      = errors.New("enrollment not found")
	ErrNotEnrolled   = errors.New("no active enrollment for this pair")
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

// Store manages the enrollments collection together with the chat threads
// each enrollment owns.
type Store struct {
	c       *mongo.Collection
	threads *threadstore.Store
}

// New creates a new enrollments Store.
func New(db *mongo.Database, threads *threadstore.Store) *Store {
	return &Store{c: db.Collection("enrollments"), threads: threads}
}

// Enroll establishes the student-mentor relationship, creating the row and
// its two chat threads on first call. It is idempotent by contract: a
// repeat call for the same pair returns the existing enrollment with
// created=false, never an error and never a second row. The unique index on
// (student_id, mentor_id) is the arbiter under concurrency: a loser of the
// insert race catches the duplicate-key error and converts it into a read
// of the winner's row.
//
// An inactive enrollment is reactivated in place. Enrollments that lost
// their threads to a partial failure are healed here before being returned.
func (s *Store) Enroll(ctx context.Context, studentID, mentorID primitive.ObjectID, studentName, mentorName string) (models.Enrollment, bool, error) {
	if existing, err := s.pair(ctx, studentID, mentorID); err == nil {
		healed, err := s.reviveAndHeal(ctx, existing, studentName, mentorName)
		return healed, false, err
	} else if err != ErrNotFound {
		return models.Enrollment{}, false, err
	}

	now := time.Now().UTC()
	enr := models.Enrollment{
		ID:        primitive.NewObjectID(),
		StudentID: studentID,
		MentorID:  mentorID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, enr); err != nil {
		if wafflemongo.IsDup(err) {
			// Lost the insert race; the winner's row is the enrollment.
			winner, ferr := s.pair(ctx, studentID, mentorID)
			if ferr != nil {
				return models.Enrollment{}, false, ferr
			}
			healed, herr := s.reviveAndHeal(ctx, winner, studentName, mentorName)
			return healed, false, herr
		}
		return models.Enrollment{}, false, err
	}

	bound, err := s.bindThreads(ctx, enr, studentName, mentorName)
	if err != nil {
		// Thread creation and enrollment creation are one unit: roll the row
		// back rather than leave an enrollment with nil thread ids.
		_, _ = s.c.DeleteOne(ctx, bson.M{"_id": enr.ID})
		return models.Enrollment{}, false, err
	}
	return bound, true, nil
}

// pair returns the enrollment for (student, mentor) regardless of activity.
func (s *Store) pair(ctx context.Context, studentID, mentorID primitive.ObjectID) (models.Enrollment, error) {
	var enr models.Enrollment
	err := s.c.FindOne(ctx, bson.M{"student_id": studentID, "mentor_id": mentorID}).Decode(&enr)
	if err == mongo.ErrNoDocuments {
		return models.Enrollment{}, ErrNotFound
	}
	if err != nil {
		return models.Enrollment{}, err
	}
	return enr, nil
}

// reviveAndHeal reactivates an inactive enrollment and recreates missing
// threads, returning the up-to-date row.
func (s *Store) reviveAndHeal(ctx context.Context, enr models.Enrollment, studentName, mentorName string) (models.Enrollment, error) {
	if !enr.IsActive {
		_, err := s.c.UpdateOne(ctx,
			bson.M{"_id": enr.ID},
			bson.M{"$set": bson.M{"is_active": true, "updated_at": time.Now().UTC()}},
		)
		if err != nil {
			return models.Enrollment{}, err
		}
		enr.IsActive = true
	}
	if enr.StudentThreadID == nil || enr.MentorThreadID == nil {
		return s.bindThreads(ctx, enr, studentName, mentorName)
	}
	return enr, nil
}

// bindThreads creates the thread pair and writes the ids onto the row.
func (s *Store) bindThreads(ctx context.Context, enr models.Enrollment, studentName, mentorName string) (models.Enrollment, error) {
	studentThread, mentorThread, err := s.threads.CreatePair(ctx,
		enr.ID, enr.StudentID, enr.MentorID,
		fmt.Sprintf("Chat with %s (Mentor)", mentorName),
		fmt.Sprintf("Chat with %s (Student)", studentName),
	)
	if err != nil {
		return models.Enrollment{}, err
	}

	_, err = s.c.UpdateOne(ctx,
		bson.M{"_id": enr.ID},
		bson.M{"$set": bson.M{
			"student_thread_id": studentThread.ID,
			"mentor_thread_id":  mentorThread.ID,
			"updated_at":        time.Now().UTC(),
		}},
	)
	if err != nil {
		return models.Enrollment{}, err
	}
	enr.StudentThreadID = &studentThread.ID
	enr.MentorThreadID = &mentorThread.ID
	return enr, nil
}

// Get returns an enrollment by id.
func (s *Store) Get(ctx context.Context, id primitive.ObjectID) (models.Enrollment, error) {
	var enr models.Enrollment
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&enr)
	if err == mongo.ErrNoDocuments {
		return models.Enrollment{}, ErrNotFound
	}
	if err != nil {
		return models.Enrollment{}, err
	}
	return enr, nil
}

// ActivePair returns the active enrollment for (student, mentor), or
// ErrNotEnrolled. Used as the booking precondition.
func (s *Store) ActivePair(ctx context.Context, studentID, mentorID primitive.ObjectID) (models.Enrollment, error) {
	var enr models.Enrollment
	err := s.c.FindOne(ctx, bson.M{
		"student_id": studentID,
		"mentor_id":  mentorID,
		"is_active":  true,
	}).Decode(&enr)
	if err == mongo.ErrNoDocuments {
		return models.Enrollment{}, ErrNotEnrolled
	}
	if err != nil {
		return models.Enrollment{}, err
	}
	return enr, nil
}

// Deactivate ends the relationship without deleting the row or its threads.
func (s *Store) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddFeedback appends one feedback entry. Entries are append-only; nothing
// edits or removes them.
func (s *Store) AddFeedback(ctx context.Context, id primitive.ObjectID, submittedBy primitive.ObjectID, rating int, text string, anonymous bool) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}
	fb := models.Feedback{
		Rating:      rating,
		Text:        text,
		Anonymous:   anonymous,
		SubmittedBy: submittedBy,
		SubmittedAt: time.Now().UTC(),
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$push": bson.M{"feedback": fb}, "$set": bson.M{"updated_at": fb.SubmittedAt}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ActiveMentorIDsForStudent returns the mentors the student is actively
// enrolled with. Feeds the bookable-batch listing.
func (s *Store) ActiveMentorIDsForStudent(ctx context.Context, studentID primitive.ObjectID) ([]primitive.ObjectID, error) {
	enrs, err := s.list(ctx, bson.M{"student_id": studentID, "is_active": true})
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(enrs))
	for _, e := range enrs {
		ids = append(ids, e.MentorID)
	}
	return ids, nil
}

// ListActiveForMentor returns the mentor's active enrollments. Feeds the
// publish fan-out.
func (s *Store) ListActiveForMentor(ctx context.Context, mentorID primitive.ObjectID) ([]models.Enrollment, error) {
	return s.list(ctx, bson.M{"mentor_id": mentorID, "is_active": true})
}

// ListForStudent returns all of the student's enrollments, newest first.
func (s *Store) ListForStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Enrollment, error) {
	return s.list(ctx, bson.M{"student_id": studentID})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.Enrollment, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var enrs []models.Enrollment
	if err := cur.All(ctx, &enrs); err != nil {
		return nil, err
	}
	return enrs, nil
}
