package threadstore_test

import (
	"errors"
	"testing"
	"time"

	threadstore "github.com/mentorhq/mentorhub/internal/app/store/threads"
	"github.com/mentorhq/mentorhub/internal/domain/models"
	"github.com/mentorhq/mentorhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_CreatePair(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := threadstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	enrID := primitive.NewObjectID()
	studentID := primitive.NewObjectID()
	mentorID := primitive.NewObjectID()

	student, mentor, err := store.CreatePair(ctx, enrID, studentID, mentorID,
		"Chat with Mia (Mentor)", "Chat with Sam (Student)")
	if err != nil {
		t.Fatalf("CreatePair failed: %v", err)
	}

	if student.Party != models.PartyStudent || student.OwnerID != studentID {
		t.Errorf("student thread: party=%q owner=%s", student.Party, student.OwnerID.Hex())
	}
	if mentor.Party != models.PartyMentor || mentor.OwnerID != mentorID {
		t.Errorf("mentor thread: party=%q owner=%s", mentor.Party, mentor.OwnerID.Hex())
	}
	if student.EnrollmentID != enrID || mentor.EnrollmentID != enrID {
		t.Error("threads not bound to the enrollment")
	}

	got, err := store.Get(ctx, student.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Title != "Chat with Mia (Mentor)" {
		t.Errorf("title: got %q", got.Title)
	}
}

func TestStore_Get_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := threadstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Get(ctx, primitive.NewObjectID()); !errors.Is(err, threadstore.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestStore_AppendSystem(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := threadstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	student, _, err := store.CreatePair(ctx, primitive.NewObjectID(),
		primitive.NewObjectID(), primitive.NewObjectID(), "a", "b")
	if err != nil {
		t.Fatalf("CreatePair failed: %v", err)
	}

	before := student.LastActivity
	time.Sleep(5 * time.Millisecond)

	if err := store.AppendSystem(ctx, student.ID, "Mia published new class times"); err != nil {
		t.Fatalf("AppendSystem failed: %v", err)
	}
	if err := store.AppendSystem(ctx, student.ID, "Sam booked a slot"); err != nil {
		t.Fatalf("second AppendSystem failed: %v", err)
	}

	got, err := store.Get(ctx, student.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got.Messages))
	}
	if got.Messages[0].Role != "system" || got.Messages[0].Content != "Mia published new class times" {
		t.Errorf("first message: %+v", got.Messages[0])
	}
	if !got.LastActivity.After(before) {
		t.Error("last_activity was not bumped")
	}

	if err := store.AppendSystem(ctx, primitive.NewObjectID(), "nope"); !errors.Is(err, threadstore.ErrNotFound) {
		t.Errorf("append to missing thread: got %v, want ErrNotFound", err)
	}
}

func TestStore_DeleteForEnrollments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := threadstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	doomedEnr := primitive.NewObjectID()
	keptEnr := primitive.NewObjectID()
	store.CreatePair(ctx, doomedEnr, primitive.NewObjectID(), primitive.NewObjectID(), "a", "b")
	kept1, kept2, err := store.CreatePair(ctx, keptEnr, primitive.NewObjectID(), primitive.NewObjectID(), "c", "d")
	if err != nil {
		t.Fatalf("CreatePair failed: %v", err)
	}

	n, err := store.DeleteForEnrollments(ctx, []primitive.ObjectID{doomedEnr})
	if err != nil {
		t.Fatalf("DeleteForEnrollments failed: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted %d threads, want 2", n)
	}
	if _, err := store.Get(ctx, kept1.ID); err != nil {
		t.Errorf("kept thread gone: %v", err)
	}
	if _, err := store.Get(ctx, kept2.ID); err != nil {
		t.Errorf("kept thread gone: %v", err)
	}

	n, err = store.DeleteForEnrollments(ctx, nil)
	if err != nil || n != 0 {
		t.Errorf("empty list: n=%d err=%v", n, err)
	}
}

func TestStore_DeleteOrphans(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := threadstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ref1, ref2, err := store.CreatePair(ctx, primitive.NewObjectID(),
		primitive.NewObjectID(), primitive.NewObjectID(), "a", "b")
	if err != nil {
		t.Fatalf("CreatePair failed: %v", err)
	}
	orphan1, orphan2, err := store.CreatePair(ctx, primitive.NewObjectID(),
		primitive.NewObjectID(), primitive.NewObjectID(), "c", "d")
	if err != nil {
		t.Fatalf("CreatePair failed: %v", err)
	}

	n, err := store.DeleteOrphans(ctx, []primitive.ObjectID{ref1.ID, ref2.ID})
	if err != nil {
		t.Fatalf("DeleteOrphans failed: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted %d orphans, want 2", n)
	}
	if _, err := store.Get(ctx, orphan1.ID); !errors.Is(err, threadstore.ErrNotFound) {
		t.Errorf("orphan survived: %v", err)
	}
	if _, err := store.Get(ctx, orphan2.ID); !errors.Is(err, threadstore.ErrNotFound) {
		t.Errorf("orphan survived: %v", err)
	}
	if _, err := store.Get(ctx, ref1.ID); err != nil {
		t.Errorf("referenced thread gone: %v", err)
	}

	// A nil referenced set means nothing is referenced: every thread goes.
	n, err = store.DeleteOrphans(ctx, nil)
	if err != nil {
		t.Fatalf("DeleteOrphans with nil set failed: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted %d threads with nil set, want 2", n)
	}
}
