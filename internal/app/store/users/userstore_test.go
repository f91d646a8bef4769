package userstore_test

import (
	"errors"
	"testing"

	userstore "github.com/mentorhq/mentorhub/internal/app/store/users"
	"github.com/mentorhq/mentorhub/internal/domain/models"
	"github.com/mentorhq/mentorhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Get(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, "Mia Mentor", "mia@example.com", models.RoleMentor)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.FullName != "Mia Mentor" || got.Role != models.RoleMentor {
		t.Errorf("user: %+v", got)
	}

	if _, err := store.Get(ctx, primitive.NewObjectID()); !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("missing user: got %v, want ErrNotFound", err)
	}
}

func TestStore_GetMany(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a, _ := store.Create(ctx, "A", "a@example.com", models.RoleStudent)
	b, _ := store.Create(ctx, "B", "b@example.com", models.RoleMentor)
	missing := primitive.NewObjectID()

	got, err := store.GetMany(ctx, []primitive.ObjectID{a.ID, b.ID, missing})
	if err != nil {
		t.Fatalf("GetMany failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 users, got %d", len(got))
	}
	if _, ok := got[missing]; ok {
		t.Error("missing id present in result")
	}

	empty, err := store.GetMany(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("empty ids: map=%v err=%v", empty, err)
	}
}
