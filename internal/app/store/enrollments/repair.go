// internal/app/store/enrollments/repair.go
package enrollmentstore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RepairResult reports what a repair pass cleaned up.
type RepairResult struct {
	DuplicatesRemoved int
	ThreadsRemoved    int64
	OrphansRemoved    int64
}

// RepairDuplicates is the maintenance sweep for data that predates the
// unique pair index or was left behind by partial failures. For any
// (student, mentor) pair with more than one enrollment it keeps the
// earliest and deletes the rest along with their threads, then deletes any
// thread referenced by no enrollment at all. The unique index is the
// authority; this pass only cleans up after it. Never called on a request
// path.
func (s *Store) RepairDuplicates(ctx context.Context) (RepairResult, error) {
	var result RepairResult

	cur, err := s.c.Aggregate(ctx, []bson.M{
		{"$sort": bson.M{"created_at": 1}},
		{"$group": bson.M{
			"_id": bson.M{"student_id": "$student_id", "mentor_id": "$mentor_id"},
			"ids": bson.M{"$push": "$_id"},
			"n":   bson.M{"$sum": 1},
		}},
		{"$match": bson.M{"n": bson.M{"$gt": 1}}},
	})
	if err != nil {
		return result, err
	}
	defer cur.Close(ctx)

	var losers []primitive.ObjectID
	for cur.Next(ctx) {
		var row struct {
			IDs []primitive.ObjectID `bson:"ids"`
		}
		if err := cur.Decode(&row); err != nil {
			return result, err
		}
		// First id is the earliest enrollment; it survives.
		losers = append(losers, row.IDs[1:]...)
	}
	if err := cur.Err(); err != nil {
		return result, err
	}

	if len(losers) > 0 {
		res, err := s.c.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": losers}})
		if err != nil {
			return result, err
		}
		result.DuplicatesRemoved = int(res.DeletedCount)

		removed, err := s.threads.DeleteForEnrollments(ctx, losers)
		if err != nil {
			return result, err
		}
		result.ThreadsRemoved = removed
	}

	referenced, err := s.referencedThreadIDs(ctx)
	if err != nil {
		return result, err
	}
	orphans, err := s.threads.DeleteOrphans(ctx, referenced)
	if err != nil {
		return result, err
	}
	result.OrphansRemoved = orphans
	return result, nil
}

// referencedThreadIDs collects every thread id still bound to an enrollment.
func (s *Store) referencedThreadIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	cur, err := s.c.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var enr struct {
			StudentThreadID *primitive.ObjectID `bson:"student_thread_id"`
			MentorThreadID  *primitive.ObjectID `bson:"mentor_thread_id"`
		}
		if err := cur.Decode(&enr); err != nil {
			return nil, err
		}
		if enr.StudentThreadID != nil {
			ids = append(ids, *enr.StudentThreadID)
		}
		if enr.MentorThreadID != nil {
			ids = append(ids, *enr.MentorThreadID)
		}
	}
	return ids, cur.Err()
}
