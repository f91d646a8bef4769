// internal/app/store/slotbatches/slotstore.go
package slotstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mentorhq/mentorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound            = errors.New("slot batch not found")
	ErrEmptySlots          = errors.New("at least one slot is required")
	ErrInvalidWindow       = errors.New("slot end must be after start")
	ErrSlotIndexOutOfRange = errors.New("slot index out of range")
	ErrAlreadyBooked       = errors.New("slot is already booked")
	ErrBatchNotBookable    = errors.New("batch is expired or no longer active")
	ErrNotSlotHolder       = errors.New("slot is not booked by this student")
)

// SlotSpec describes one slot at publish time.
type SlotSpec struct {
	Start           time.Time
	End             time.Time
	DurationMinutes int
	MaxParticipants int
}

// Store manages the slot_batches collection.
//
// Every mutation of a slot is a single conditional UpdateOne whose filter
// carries the expected pre-state; the store's atomic document update is the
// sole arbiter under contention. There is no in-process locking; the
// service may run as multiple instances.
type Store struct {
	c *mongo.Collection
}

// New creates a new slot batch Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("slot_batches")}
}

// Publish validates and inserts a new active batch.
// Duration defaults to the start/end span; max participants defaults to 1.
func (s *Store) Publish(ctx context.Context, ownerID primitive.ObjectID, title, description, timezone string, specs []SlotSpec, expiresAt *time.Time) (models.SlotBatch, error) {
	if len(specs) == 0 {
		return models.SlotBatch{}, ErrEmptySlots
	}

	now := time.Now().UTC()
	slots := make([]models.Slot, 0, len(specs))
	for _, spec := range specs {
		if !spec.End.After(spec.Start) {
			return models.SlotBatch{}, ErrInvalidWindow
		}
		duration := spec.DurationMinutes
		if duration <= 0 {
			duration = int(spec.End.Sub(spec.Start).Minutes())
		}
		maxP := spec.MaxParticipants
		if maxP <= 0 {
			maxP = 1
		}
		slots = append(slots, models.Slot{
			Start:           spec.Start.UTC(),
			End:             spec.End.UTC(),
			DurationMinutes: duration,
			MaxParticipants: maxP,
		})
	}

	batch := models.SlotBatch{
		ID:          primitive.NewObjectID(),
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Status:      models.BatchActive,
		Timezone:    timezone,
		Slots:       slots,
		ExpiresAt:   expiresAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.c.InsertOne(ctx, batch); err != nil {
		return models.SlotBatch{}, err
	}
	return batch, nil
}

// Get returns a batch by id.
func (s *Store) Get(ctx context.Context, id primitive.ObjectID) (models.SlotBatch, error) {
	var b models.SlotBatch
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return models.SlotBatch{}, ErrNotFound
	}
	if err != nil {
		return models.SlotBatch{}, err
	}
	return b, nil
}

// ListActiveForOwner returns the owner's active batches, newest first.
func (s *Store) ListActiveForOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.SlotBatch, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"owner_id": ownerID, "status": models.BatchActive},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var batches []models.SlotBatch
	if err := cur.All(ctx, &batches); err != nil {
		return nil, err
	}
	return batches, nil
}

// ListBookableForMentors returns unexpired active batches owned by any of
// the given mentors that still have at least one unbooked future slot. The
// returned batches carry only their bookable slots; booked and past slots
// are stripped from the view. Expiry is advisory and checked here at read
// time; no reaper touches these documents.
func (s *Store) ListBookableForMentors(ctx context.Context, mentorIDs []primitive.ObjectID) ([]models.SlotBatch, error) {
	if len(mentorIDs) == 0 {
		return nil, nil
	}
	now := time.Now().UTC()
	cur, err := s.c.Find(ctx, bson.M{
		"owner_id": bson.M{"$in": mentorIDs},
		"status":   models.BatchActive,
		"$or": []bson.M{
			{"expires_at": nil},
			{"expires_at": bson.M{"$gt": now}},
		},
	}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var batches []models.SlotBatch
	for cur.Next(ctx) {
		var b models.SlotBatch
		if err := cur.Decode(&b); err != nil {
			return nil, err
		}
		open := make([]models.Slot, 0, len(b.Slots))
		for _, slot := range b.Slots {
			if !slot.IsBooked && slot.Start.After(now) {
				open = append(open, slot)
			}
		}
		if len(open) == 0 {
			continue
		}
		b.Slots = open
		batches = append(batches, b)
	}
	return batches, cur.Err()
}

// Book atomically claims one slot for the student.
//
// The claim is a compare-and-set: the update filter requires the batch to be
// active and unexpired and the target slot to be unbooked. Under concurrent
// calls for the same (batch, index) exactly one update matches; all others
// fall through to classification and come back with ErrAlreadyBooked (or the
// more specific condition that actually failed).
func (s *Store) Book(ctx context.Context, batchID primitive.ObjectID, slotIndex int, studentID primitive.ObjectID) (models.SlotBatch, models.Slot, error) {
	if slotIndex < 0 {
		return models.SlotBatch{}, models.Slot{}, ErrSlotIndexOutOfRange
	}
	now := time.Now().UTC()
	field := fmt.Sprintf("slots.%d", slotIndex)

	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"_id":    batchID,
			"status": models.BatchActive,
			"$or": []bson.M{
				{"expires_at": nil},
				{"expires_at": bson.M{"$gt": now}},
			},
			field + ".is_booked": false,
		},
		bson.M{"$set": bson.M{
			field + ".is_booked": true,
			field + ".booked_by": studentID,
			field + ".booked_at": now,
			"updated_at":         now,
		}},
	)
	if err != nil {
		return models.SlotBatch{}, models.Slot{}, err
	}
	if res.MatchedCount == 0 {
		return models.SlotBatch{}, models.Slot{}, s.classifyBookFailure(ctx, batchID, slotIndex, now)
	}

	batch, err := s.Get(ctx, batchID)
	if err != nil {
		return models.SlotBatch{}, models.Slot{}, err
	}
	return batch, batch.Slots[slotIndex], nil
}

// classifyBookFailure re-reads the batch to turn a non-matching conditional
// update into the precise error. The re-read is diagnostic only; the update
// filter already decided the outcome.
func (s *Store) classifyBookFailure(ctx context.Context, batchID primitive.ObjectID, slotIndex int, now time.Time) error {
	batch, err := s.Get(ctx, batchID)
	if err != nil {
		return err
	}
	if batch.Status != models.BatchActive || (batch.ExpiresAt != nil && !batch.ExpiresAt.After(now)) {
		return ErrBatchNotBookable
	}
	if slotIndex >= len(batch.Slots) {
		return ErrSlotIndexOutOfRange
	}
	if batch.Slots[slotIndex].IsBooked {
		return ErrAlreadyBooked
	}
	// The batch became bookable again between the update and the re-read.
	// Treat as a lost race; the caller refreshes and retries a fresh index.
	return ErrAlreadyBooked
}

// Reschedule moves the student's booking from oldIndex to newIndex within
// the same batch. Ordering matters: the new slot is claimed first and the
// old slot is released only after that claim has committed, so a failed
// claim never leaves the student holding zero slots. On claim failure the
// old booking is untouched and the claim's error is returned unchanged.
func (s *Store) Reschedule(ctx context.Context, batchID primitive.ObjectID, oldIndex, newIndex int, studentID primitive.ObjectID) (models.Slot, error) {
	if oldIndex == newIndex {
		return models.Slot{}, ErrAlreadyBooked
	}

	batch, err := s.Get(ctx, batchID)
	if err != nil {
		return models.Slot{}, err
	}
	if oldIndex < 0 || oldIndex >= len(batch.Slots) {
		return models.Slot{}, ErrSlotIndexOutOfRange
	}
	old := batch.Slots[oldIndex]
	if !old.IsBooked || old.BookedBy == nil || *old.BookedBy != studentID {
		return models.Slot{}, ErrNotSlotHolder
	}

	_, claimed, err := s.Book(ctx, batchID, newIndex, studentID)
	if err != nil {
		return models.Slot{}, err
	}

	if err := s.release(ctx, batchID, oldIndex, studentID); err != nil {
		return models.Slot{}, err
	}
	return claimed, nil
}

// release frees a slot, conditioned on the student still holding it.
func (s *Store) release(ctx context.Context, batchID primitive.ObjectID, slotIndex int, studentID primitive.ObjectID) error {
	field := fmt.Sprintf("slots.%d", slotIndex)
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"_id":                batchID,
			field + ".is_booked": true,
			field + ".booked_by": studentID,
		},
		bson.M{
			"$set":   bson.M{field + ".is_booked": false, "updated_at": time.Now().UTC()},
			"$unset": bson.M{field + ".booked_by": "", field + ".booked_at": ""},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotSlotHolder
	}
	return nil
}

// SetStatus archives a batch (completed or cancelled). Batches are never
// hard-deleted while meetings reference them.
func (s *Store) SetStatus(ctx context.Context, batchID, ownerID primitive.ObjectID, status string) error {
	if status != models.BatchCompleted && status != models.BatchCancelled {
		return fmt.Errorf("invalid batch status %q", status)
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": batchID, "owner_id": ownerID, "status": models.BatchActive},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, err := s.Get(ctx, batchID); err != nil {
			return err
		}
		return ErrBatchNotBookable
	}
	return nil
}
