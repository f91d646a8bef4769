// internal/domain/models/slotbatch.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SlotBatch statuses.
const (
	BatchActive    = "active"
	BatchCompleted = "completed"
	BatchCancelled = "cancelled"
)

// Slot is one bookable time window inside a SlotBatch.
//
// A slot flips is_booked false -> true exactly once; the conditional update
// in the slot store is the only writer allowed to make that transition.
type Slot struct {
	Start           time.Time           `bson:"start" json:"start"`
	End             time.Time           `bson:"end" json:"end"`
	DurationMinutes int                 `bson:"duration_minutes" json:"duration_minutes"`
	MaxParticipants int                 `bson:"max_participants" json:"max_participants"`
	BookedBy        *primitive.ObjectID `bson:"booked_by,omitempty" json:"booked_by,omitempty"`
	IsBooked        bool                `bson:"is_booked" json:"is_booked"`
	BookedAt        *time.Time          `bson:"booked_at,omitempty" json:"booked_at,omitempty"`
}

// SlotBatch is a mentor-published set of candidate slots.
//
// Batches are archived (completed/cancelled), never hard-deleted, so booked
// slots remain resolvable from meeting records.
type SlotBatch struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID     primitive.ObjectID `bson:"owner_id" json:"owner_id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Status      string             `bson:"status" json:"status"` // active | completed | cancelled
	Timezone    string             `bson:"timezone" json:"timezone"`
	Slots       []Slot             `bson:"slots" json:"slots"`
	ExpiresAt   *time.Time         `bson:"expires_at,omitempty" json:"expires_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
