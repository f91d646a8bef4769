// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureEnrollments(ctx, db); err != nil {
		problems = append(problems, "enrollments: "+err.Error())
	}
	if err := ensureChatThreads(ctx, db); err != nil {
		problems = append(problems, "chat_threads: "+err.Error())
	}
	if err := ensureSlotBatches(ctx, db); err != nil {
		problems = append(problems, "slot_batches: "+err.Error())
	}
	if err := ensureMeetings(ctx, db); err != nil {
		problems = append(problems, "meetings: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	av := false
	bv := false
	if a != nil {
		av = *a
	}
	if b != nil {
		bv = *b
	}
	return av == bv
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 { // E11000 duplicate key error index
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	for _, m := range models {
		var desiredName string
		var desiredUnique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			if m.Options.Unique != nil {
				desiredUnique = m.Options.Unique
			}
		}
		desiredSig := keySig(m.Keys.(bson.D))

		start := time.Now()

		// 1) Load existing indexes
		existing := map[string]existingIndex{} // sig -> index
		cur, err := coll.Indexes().List(ctx)
		if err == nil {
			for cur.Next(ctx) {
				var idx existingIndex
				if err := cur.Decode(&idx); err != nil {
					zap.L().Warn("failed to decode existing index",
						zap.String("collection", coll.Name()),
						zap.Error(err))
					continue
				}
				existing[keySig(idx.Key)] = idx
			}
			cur.Close(ctx)
		}

		if ex, ok := existing[desiredSig]; ok {
			if sameBoolPtr(desiredUnique, ex.Unique) {
				// Same key pattern with matching options → reuse.
				zap.L().Info("reusing existing index",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.String("keys", desiredSig))
				continue
			}

			// Options mismatch (e.g., upgrading to unique). Drop & recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), desiredName, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isDuplicateKeyErr(err) && desiredUnique != nil && *desiredUnique {
				helper := ""
				if coll.Name() == "enrollments" && strings.Contains(desiredSig, "student_id:1") {
					helper = ": duplicate enrollment pairs exist; run the duplicate repair job first"
				}
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)%s", coll.Name(), desiredName, helper))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
			}
			continue
		}

		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", desiredSig),
			zap.Bool("unique", desiredUnique != nil && *desiredUnique),
			zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("users")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_email"),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_users_role_status"),
		},
	})
}

func ensureEnrollments(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("enrollments")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// One enrollment row per (student, mentor) pair. Concurrent enrolls
		// race on this index; the loser re-reads the winner's row.
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "mentor_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_enrollment_pair"),
		},
		// Mentor roster listings.
		{
			Keys:    bson.D{{Key: "mentor_id", Value: 1}, {Key: "is_active", Value: 1}},
			Options: options.Index().SetName("idx_enrollments_mentor_active"),
		},
		// Student course listings.
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "is_active", Value: 1}},
			Options: options.Index().SetName("idx_enrollments_student_active"),
		},
	})
}

func ensureChatThreads(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("chat_threads")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// One thread per (enrollment, party).
		{
			Keys:    bson.D{{Key: "enrollment_id", Value: 1}, {Key: "party", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_threads_enrollment_party"),
		},
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "last_activity", Value: -1}},
			Options: options.Index().SetName("idx_threads_owner_activity"),
		},
	})
}

func ensureSlotBatches(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("slot_batches")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Mentor dashboard: active batches per owner.
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_batches_owner_status"),
		},
		// Bookable-batch queries filter on status + expiry.
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("idx_batches_status_expiry"),
		},
	})
}

func ensureMeetings(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("meetings")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "thread_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_meetings_thread_status"),
		},
		// Upcoming-meeting listings per participant.
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "status", Value: 1}, {Key: "scheduled_time", Value: 1}},
			Options: options.Index().SetName("idx_meetings_student_status_time"),
		},
		{
			Keys:    bson.D{{Key: "mentor_id", Value: 1}, {Key: "status", Value: 1}, {Key: "scheduled_time", Value: 1}},
			Options: options.Index().SetName("idx_meetings_mentor_status_time"),
		},
	})
}
