// internal/app/features/slots/types.go
package slots

import (
	"time"

	"github.com/mentorhq/mentorhub/internal/domain/models"
)

// slotSpecRequest is one slot in a publish request.
type slotSpecRequest struct {
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationMinutes int       `json:"duration_minutes"`
	MaxParticipants int       `json:"max_participants"`
}

// publishRequest is the JSON body for POST /slots.
type publishRequest struct {
	OwnerID     string            `json:"owner_id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Timezone    string            `json:"timezone"`
	Slots       []slotSpecRequest `json:"slots"`
	ExpiresAt   *time.Time        `json:"expires_at"`
}

// bookRequest is the JSON body for POST /slots/{id}/book.
type bookRequest struct {
	StudentID string `json:"student_id"`
	SlotIndex int    `json:"slot_index"`
	Topic     string `json:"topic"`
}

// bookResponse carries the booked slot plus the meeting created for it.
type bookResponse struct {
	Batch   models.SlotBatch `json:"batch"`
	Slot    models.Slot      `json:"slot"`
	Meeting models.Meeting   `json:"meeting"`
}

// rescheduleRequest is the JSON body for POST /slots/{id}/reschedule.
type rescheduleRequest struct {
	StudentID string `json:"student_id"`
	OldIndex  int    `json:"old_index"`
	NewIndex  int    `json:"new_index"`
}

// archiveRequest is the JSON body for the cancel/complete endpoints.
type archiveRequest struct {
	OwnerID string `json:"owner_id"`
}

// batchListResponse wraps list results.
type batchListResponse struct {
	Batches []models.SlotBatch `json:"batches"`
}
