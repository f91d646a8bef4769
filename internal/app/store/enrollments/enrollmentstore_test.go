package enrollmentstore_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	enrollmentstore "github.com/mentorhq/mentorhub/internal/app/store/enrollments"
	threadstore "github.com/mentorhq/mentorhub/internal/app/store/threads"
	"github.com/mentorhq/mentorhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func newStore(t *testing.T) (*enrollmentstore.Store, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return enrollmentstore.New(db, threadstore.New(db)), db
}

func TestStore_Enroll(t *testing.T) {
	store, db := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	studentID := primitive.NewObjectID()
	mentorID := primitive.NewObjectID()

	enr, created, err := store.Enroll(ctx, studentID, mentorID, "Sam Student", "Mia Mentor")
	if err != nil {
		t.Fatalf("Enroll failed: %v", err)
	}
	if !created {
		t.Error("created: got false, want true")
	}
	if !enr.IsActive {
		t.Error("enrollment not active")
	}
	if enr.StudentThreadID == nil || enr.MentorThreadID == nil {
		t.Fatal("thread ids not bound")
	}

	// Both threads exist and carry the counterpart's name.
	var thread struct {
		Title string `bson:"title"`
		Party string `bson:"party"`
	}
	err = db.Collection("chat_threads").FindOne(ctx, bson.M{"_id": *enr.StudentThreadID}).Decode(&thread)
	if err != nil {
		t.Fatalf("student thread missing: %v", err)
	}
	if thread.Title != "Chat with Mia Mentor (Mentor)" {
		t.Errorf("student thread title: got %q", thread.Title)
	}

	count, err := db.Collection("chat_threads").CountDocuments(ctx, bson.M{"enrollment_id": enr.ID})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 threads, got %d", count)
	}
}

func TestStore_Enroll_Idempotent(t *testing.T) {
	store, db := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	studentID := primitive.NewObjectID()
	mentorID := primitive.NewObjectID()

	first, created, err := store.Enroll(ctx, studentID, mentorID, "Sam", "Mia")
	if err != nil || !created {
		t.Fatalf("first Enroll: created=%v err=%v", created, err)
	}

	second, created, err := store.Enroll(ctx, studentID, mentorID, "Sam", "Mia")
	if err != nil {
		t.Fatalf("second Enroll failed: %v", err)
	}
	if created {
		t.Error("second enroll reported created=true")
	}
	if second.ID != first.ID {
		t.Error("second enroll returned a different row")
	}

	count, _ := db.Collection("enrollments").CountDocuments(ctx, bson.M{
		"student_id": studentID, "mentor_id": mentorID,
	})
	if count != 1 {
		t.Errorf("expected 1 enrollment row, got %d", count)
	}
	threadCount, _ := db.Collection("chat_threads").CountDocuments(ctx, bson.M{"enrollment_id": first.ID})
	if threadCount != 2 {
		t.Errorf("expected 2 threads, got %d", threadCount)
	}
}

func TestStore_Enroll_Concurrent(t *testing.T) {
	store, db := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	studentID := primitive.NewObjectID()
	mentorID := primitive.NewObjectID()

	const callers = 10
	var wg sync.WaitGroup
	ids := make([]primitive.ObjectID, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			enr, _, err := store.Enroll(ctx, studentID, mentorID, "Sam", "Mia")
			ids[i] = enr.ID
			errs[i] = err
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("caller %d failed: %v", i, err)
		}
		if ids[i] != ids[0] {
			t.Error("callers got different enrollment rows")
		}
	}

	count, _ := db.Collection("enrollments").CountDocuments(ctx, bson.M{
		"student_id": studentID, "mentor_id": mentorID,
	})
	if count != 1 {
		t.Errorf("expected 1 enrollment row, got %d", count)
	}
}

func TestStore_Enroll_Reactivates(t *testing.T) {
	store, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	studentID := primitive.NewObjectID()
	mentorID := primitive.NewObjectID()

	enr, _, err := store.Enroll(ctx, studentID, mentorID, "Sam", "Mia")
	if err != nil {
		t.Fatalf("Enroll failed: %v", err)
	}
	if err := store.Deactivate(ctx, enr.ID); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}
	if _, err := store.ActivePair(ctx, studentID, mentorID); !errors.Is(err, enrollmentstore.ErrNotEnrolled) {
		t.Fatalf("after unenroll: got %v, want ErrNotEnrolled", err)
	}

	revived, created, err := store.Enroll(ctx, studentID, mentorID, "Sam", "Mia")
	if err != nil {
		t.Fatalf("re-enroll failed: %v", err)
	}
	if created {
		t.Error("re-enroll reported created=true")
	}
	if revived.ID != enr.ID {
		t.Error("re-enroll created a new row instead of reviving")
	}
	if !revived.IsActive {
		t.Error("re-enroll did not reactivate")
	}
	// The original threads survive unenroll and come back on revival.
	if revived.StudentThreadID == nil || *revived.StudentThreadID != *enr.StudentThreadID {
		t.Error("student thread changed across unenroll/re-enroll")
	}
}

func TestStore_AddFeedback(t *testing.T) {
	store, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	enr, _, err := store.Enroll(ctx, primitive.NewObjectID(), primitive.NewObjectID(), "Sam", "Mia")
	if err != nil {
		t.Fatalf("Enroll failed: %v", err)
	}

	if err := store.AddFeedback(ctx, enr.ID, enr.StudentID, 0, "", false); !errors.Is(err, enrollmentstore.ErrInvalidRating) {
		t.Errorf("rating 0: got %v, want ErrInvalidRating", err)
	}
	if err := store.AddFeedback(ctx, enr.ID, enr.StudentID, 6, "", false); !errors.Is(err, enrollmentstore.ErrInvalidRating) {
		t.Errorf("rating 6: got %v, want ErrInvalidRating", err)
	}

	if err := store.AddFeedback(ctx, enr.ID, enr.StudentID, 5, "great sessions", true); err != nil {
		t.Fatalf("AddFeedback failed: %v", err)
	}
	if err := store.AddFeedback(ctx, enr.ID, enr.StudentID, 3, "", false); err != nil {
		t.Fatalf("second AddFeedback failed: %v", err)
	}

	got, err := store.Get(ctx, enr.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got.Feedback) != 2 {
		t.Fatalf("expected 2 feedback entries, got %d", len(got.Feedback))
	}
	if got.Feedback[0].Rating != 5 || !got.Feedback[0].Anonymous {
		t.Error("first feedback entry mangled")
	}

	if err := store.AddFeedback(ctx, primitive.NewObjectID(), enr.StudentID, 4, "", false); !errors.Is(err, enrollmentstore.ErrNotFound) {
		t.Errorf("missing enrollment: got %v, want ErrNotFound", err)
	}
}

func TestStore_RepairDuplicates(t *testing.T) {
	store, db := newStore(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Duplicates can only exist in data written before the unique pair
	// index; drop it to simulate that state.
	if _, err := db.Collection("enrollments").Indexes().DropOne(ctx, "uniq_enrollment_pair"); err != nil {
		t.Fatalf("failed to drop unique index: %v", err)
	}

	studentID := primitive.NewObjectID()
	mentorID := primitive.NewObjectID()

	keep := fixtures.CreateEnrollment(ctx, studentID, mentorID)
	dup1 := fixtures.CreateEnrollment(ctx, studentID, mentorID)
	dup2 := fixtures.CreateEnrollment(ctx, studentID, mentorID)
	other := fixtures.CreateEnrollment(ctx, primitive.NewObjectID(), mentorID)

	// Stagger created_at so "earliest survives" is unambiguous; back-to-back
	// inserts can land on the same millisecond.
	for i, id := range []primitive.ObjectID{keep.ID, dup1.ID, dup2.ID} {
		_, err := db.Collection("enrollments").UpdateOne(ctx,
			bson.M{"_id": id},
			bson.M{"$set": bson.M{"created_at": time.Now().UTC().Add(time.Duration(i-3) * time.Hour)}},
		)
		if err != nil {
			t.Fatalf("failed to stagger created_at: %v", err)
		}
	}

	// An orphan thread referenced by no enrollment.
	orphan := bson.M{
		"_id":           primitive.NewObjectID(),
		"enrollment_id": primitive.NewObjectID(),
		"party":         "student",
		"owner_id":      primitive.NewObjectID(),
	}
	if _, err := db.Collection("chat_threads").InsertOne(ctx, orphan); err != nil {
		t.Fatalf("failed to insert orphan thread: %v", err)
	}

	res, err := store.RepairDuplicates(ctx)
	if err != nil {
		t.Fatalf("RepairDuplicates failed: %v", err)
	}
	if res.DuplicatesRemoved != 2 {
		t.Errorf("DuplicatesRemoved: got %d, want 2", res.DuplicatesRemoved)
	}
	if res.ThreadsRemoved != 4 {
		t.Errorf("ThreadsRemoved: got %d, want 4", res.ThreadsRemoved)
	}
	if res.OrphansRemoved != 1 {
		t.Errorf("OrphansRemoved: got %d, want 1", res.OrphansRemoved)
	}

	// The earliest enrollment and the unrelated pair survive.
	if _, err := store.Get(ctx, keep.ID); err != nil {
		t.Errorf("earliest enrollment was deleted: %v", err)
	}
	if _, err := store.Get(ctx, other.ID); err != nil {
		t.Errorf("unrelated enrollment was deleted: %v", err)
	}
	for _, loser := range []primitive.ObjectID{dup1.ID, dup2.ID} {
		if _, err := store.Get(ctx, loser); !errors.Is(err, enrollmentstore.ErrNotFound) {
			t.Errorf("duplicate %s survived repair", loser.Hex())
		}
	}

	// Surviving enrollments keep their threads.
	count, _ := db.Collection("chat_threads").CountDocuments(ctx, bson.M{"enrollment_id": keep.ID})
	if count != 2 {
		t.Errorf("kept enrollment has %d threads, want 2", count)
	}
}

func TestStore_RepairDuplicates_NoEnrollments(t *testing.T) {
	store, db := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// A completely empty database: the boot-time pass must succeed.
	res, err := store.RepairDuplicates(ctx)
	if err != nil {
		t.Fatalf("RepairDuplicates on empty database failed: %v", err)
	}
	if res.DuplicatesRemoved != 0 || res.ThreadsRemoved != 0 || res.OrphansRemoved != 0 {
		t.Errorf("empty database reported repairs: %+v", res)
	}

	// Stranded threads with no enrollment anywhere: every thread is an
	// orphan and the empty referenced set must still form a valid filter.
	threads := threadstore.New(db)
	if _, _, err := threads.CreatePair(ctx, primitive.NewObjectID(),
		primitive.NewObjectID(), primitive.NewObjectID(), "a", "b"); err != nil {
		t.Fatalf("CreatePair failed: %v", err)
	}

	res, err = store.RepairDuplicates(ctx)
	if err != nil {
		t.Fatalf("RepairDuplicates with stranded threads failed: %v", err)
	}
	if res.OrphansRemoved != 2 {
		t.Errorf("OrphansRemoved: got %d, want 2", res.OrphansRemoved)
	}
	count, _ := db.Collection("chat_threads").CountDocuments(ctx, bson.M{})
	if count != 0 {
		t.Errorf("%d stranded threads survived", count)
	}
}
