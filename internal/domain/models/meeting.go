// internal/domain/models/meeting.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Meeting statuses.
//
// requested -> scheduled -> link_sent -> completed, with cancelled reachable
// from requested and scheduled only. Once a link has gone out the meeting is
// committed and can no longer be cancelled.
const (
	MeetingRequested = "requested"
	MeetingScheduled = "scheduled"
	MeetingLinkSent  = "link_sent"
	MeetingCompleted = "completed"
	MeetingCancelled = "cancelled"
)

// Reschedule request statuses.
const (
	ReschedulePending  = "pending"
	RescheduleAccepted = "accepted"
	RescheduleRejected = "rejected"
)

// RescheduleRequest is one entry in a meeting's reschedule negotiation.
// Entries are append-only; resolution flips status in place.
type RescheduleRequest struct {
	RequestedBy  primitive.ObjectID `bson:"requested_by" json:"requested_by"`
	ProposedTime time.Time          `bson:"proposed_time" json:"proposed_time"`
	Note         string             `bson:"note,omitempty" json:"note,omitempty"`
	Status       string             `bson:"status" json:"status"` // pending | accepted | rejected
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}

// Meeting is a single negotiated session between a student and a mentor,
// distinct from a booked broadcast slot. Cancellation is a terminal status,
// never a delete.
type Meeting struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ThreadID  primitive.ObjectID `bson:"thread_id" json:"thread_id"`
	StudentID primitive.ObjectID `bson:"student_id" json:"student_id"`
	MentorID  primitive.ObjectID `bson:"mentor_id" json:"mentor_id"`

	Reason          string     `bson:"reason,omitempty" json:"reason,omitempty"`
	Topic           string     `bson:"topic,omitempty" json:"topic,omitempty"`
	DurationMinutes int        `bson:"duration_minutes" json:"duration_minutes"`
	ScheduledTime   *time.Time `bson:"scheduled_time,omitempty" json:"scheduled_time,omitempty"`
	Link            string     `bson:"link,omitempty" json:"link,omitempty"`
	RoomID          string     `bson:"room_id,omitempty" json:"room_id,omitempty"`
	Timezone        string     `bson:"timezone,omitempty" json:"timezone,omitempty"`

	Status string `bson:"status" json:"status"`

	// BatchID is set when the meeting was created by booking a broadcast slot.
	BatchID *primitive.ObjectID `bson:"batch_id,omitempty" json:"batch_id,omitempty"`

	RescheduleRequests []RescheduleRequest `bson:"reschedule_requests,omitempty" json:"reschedule_requests,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Terminal reports whether the meeting can no longer move.
func (m *Meeting) Terminal() bool {
	return m.Status == MeetingCompleted || m.Status == MeetingCancelled
}

// HasParticipant reports whether id is one of the two parties.
func (m *Meeting) HasParticipant(id primitive.ObjectID) bool {
	return m.StudentID == id || m.MentorID == id
}
