// internal/app/store/threads/threadstore.go
package threadstore

import (
	"context"
	"errors"
	"time"

	"github.com/mentorhq/mentorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when a thread id resolves to nothing.
var ErrNotFound = errors.New("chat thread not found")

// Store manages the chat_threads collection.
//
// Threads are owned by their enrollment. There is deliberately no Delete
// method on this store: the only removal paths are the repair-pass methods
// below, which act strictly on threads no surviving enrollment references.
type Store struct {
	c *mongo.Collection
}

// New creates a new threads Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("chat_threads")}
}

// CreatePair inserts the student-side and mentor-side threads for an
// enrollment and returns both.
func (s *Store) CreatePair(ctx context.Context, enrollmentID, studentID, mentorID primitive.ObjectID, studentTitle, mentorTitle string) (models.ChatThread, models.ChatThread, error) {
	now := time.Now().UTC()
	student := models.ChatThread{
		ID:           primitive.NewObjectID(),
		EnrollmentID: enrollmentID,
		Party:        models.PartyStudent,
		OwnerID:      studentID,
		Title:        studentTitle,
		CreatedAt:    now,
		LastActivity: now,
	}
	mentor := models.ChatThread{
		ID:           primitive.NewObjectID(),
		EnrollmentID: enrollmentID,
		Party:        models.PartyMentor,
		OwnerID:      mentorID,
		Title:        mentorTitle,
		CreatedAt:    now,
		LastActivity: now,
	}

	if _, err := s.c.InsertMany(ctx, []interface{}{student, mentor}); err != nil {
		return models.ChatThread{}, models.ChatThread{}, err
	}
	return student, mentor, nil
}

// Get returns a thread by id.
func (s *Store) Get(ctx context.Context, id primitive.ObjectID) (models.ChatThread, error) {
	var t models.ChatThread
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return models.ChatThread{}, ErrNotFound
	}
	if err != nil {
		return models.ChatThread{}, err
	}
	return t, nil
}

// AppendSystem appends a system message to a thread and bumps last_activity.
func (s *Store) AppendSystem(ctx context.Context, threadID primitive.ObjectID, content string) error {
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": threadID},
		bson.M{
			"$push": bson.M{"messages": models.ThreadMessage{Role: "system", Content: content, SentAt: now}},
			"$set":  bson.M{"last_activity": now},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteForEnrollments removes all threads belonging to the given
// enrollments. Used by the repair pass after duplicate enrollments have
// been removed; never called from any request path.
func (s *Store) DeleteForEnrollments(ctx context.Context, enrollmentIDs []primitive.ObjectID) (int64, error) {
	if len(enrollmentIDs) == 0 {
		return 0, nil
	}
	res, err := s.c.DeleteMany(ctx, bson.M{"enrollment_id": bson.M{"$in": enrollmentIDs}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteOrphans removes threads whose id is not in the referenced set.
// The referenced set is built from the surviving enrollments' thread ids.
// An empty set deletes every thread, which is correct when no enrollment
// exists at all.
func (s *Store) DeleteOrphans(ctx context.Context, referenced []primitive.ObjectID) (int64, error) {
	if referenced == nil {
		// A nil slice marshals as BSON null and the server rejects
		// {$nin: null}; $nin requires an array.
		referenced = []primitive.ObjectID{}
	}
	res, err := s.c.DeleteMany(ctx, bson.M{"_id": bson.M{"$nin": referenced}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
