// internal/domain/models/enrollment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Feedback is one append-only feedback entry on an enrollment.
type Feedback struct {
	Rating      int                `bson:"rating" json:"rating"` // 1..5
	Text        string             `bson:"text,omitempty" json:"text,omitempty"`
	Anonymous   bool               `bson:"anonymous" json:"anonymous"`
	SubmittedBy primitive.ObjectID `bson:"submitted_by" json:"submitted_by"`
	SubmittedAt time.Time          `bson:"submitted_at" json:"submitted_at"`
}

// Enrollment binds one student to one mentor and carries the pair of chat
// threads (one per party).
//
// Exactly one document per (student_id, mentor_id): the unique index on the
// enrollments collection is the arbiter, not application code. Unenrolling
// flips is_active off; the row and its threads survive for history and are
// reactivated on re-enroll.
type Enrollment struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	StudentID       primitive.ObjectID  `bson:"student_id" json:"student_id"`
	MentorID        primitive.ObjectID  `bson:"mentor_id" json:"mentor_id"`
	StudentThreadID *primitive.ObjectID `bson:"student_thread_id,omitempty" json:"student_thread_id,omitempty"`
	MentorThreadID  *primitive.ObjectID `bson:"mentor_thread_id,omitempty" json:"mentor_thread_id,omitempty"`
	IsActive        bool                `bson:"is_active" json:"is_active"`
	Feedback        []Feedback          `bson:"feedback,omitempty" json:"feedback,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
