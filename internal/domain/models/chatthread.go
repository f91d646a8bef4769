// internal/domain/models/chatthread.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Thread parties.
const (
	PartyStudent = "student"
	PartyMentor  = "mentor"
)

// ThreadMessage is one system line appended to a chat thread. User-authored
// messages live in the chat service; the scheduling core only appends
// system notices (slots posted, meeting booked, rescheduled, ...).
type ThreadMessage struct {
	Role    string    `bson:"role" json:"role"` // "system"
	Content string    `bson:"content" json:"content"`
	SentAt  time.Time `bson:"sent_at" json:"sent_at"`
}

// ChatThread is one party's view of the student-mentor conversation. Each
// enrollment owns exactly two threads, one per party; threads have no
// independent delete path; only the enrollment repair pass may remove a
// thread, and only when no enrollment references it.
type ChatThread struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EnrollmentID primitive.ObjectID `bson:"enrollment_id" json:"enrollment_id"`
	Party        string             `bson:"party" json:"party"` // student | mentor
	OwnerID      primitive.ObjectID `bson:"owner_id" json:"owner_id"`
	Title        string             `bson:"title" json:"title"`
	Messages     []ThreadMessage    `bson:"messages,omitempty" json:"messages,omitempty"`

	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	LastActivity time.Time `bson:"last_activity" json:"last_activity"`
}
