// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/mentorhq/mentorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when a user id resolves to nothing.
var ErrNotFound = errors.New("user not found")

// Store reads the users collection. User creation and profile management
// belong to the identity service; the scheduling core only looks parties up
// for authorization context and notification addressing.
type Store struct {
	c *mongo.Collection
}

// New creates a new users Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// Get returns a user by id.
func (s *Store) Get(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// GetMany returns the users for the given ids, keyed by id. Missing ids are
// simply absent from the map.
func (s *Store) GetMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	out := make(map[primitive.ObjectID]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		out[u.ID] = u
	}
	return out, cur.Err()
}

// Create inserts a user record. Exists for fixtures and seeding; the
// production identity flow writes this collection from elsewhere.
func (s *Store) Create(ctx context.Context, fullName, email, role string) (models.User, error) {
	now := time.Now().UTC()
	u := models.User{
		ID:        primitive.NewObjectID(),
		FullName:  fullName,
		Email:     email,
		Role:      role,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		return models.User{}, err
	}
	return u, nil
}
