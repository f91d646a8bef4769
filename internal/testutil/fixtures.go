// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/mentorhq/mentorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user with the given parameters.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, role string) models.User {
	f.t.Helper()

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
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateMentor creates a test mentor.
func (f *Fixtures) CreateMentor(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, models.RoleMentor)
}

// CreateStudent creates a test student.
func (f *Fixtures) CreateStudent(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, models.RoleStudent)
}

// CreateSlotBatch creates an active batch owned by ownerID with the given
// slots. Slot times are relative to now.
func (f *Fixtures) CreateSlotBatch(ctx context.Context, ownerID primitive.ObjectID, title string, startsIn ...time.Duration) models.SlotBatch {
	f.t.Helper()

	now := time.Now().UTC()
	slots := make([]models.Slot, 0, len(startsIn))
	for _, d := range startsIn {
		start := now.Add(d)
		slots = append(slots, models.Slot{
			Start:           start,
			End:             start.Add(time.Hour),
			DurationMinutes: 60,
			MaxParticipants: 1,
		})
	}
	batch := models.SlotBatch{
		ID:        primitive.NewObjectID(),
		OwnerID:   ownerID,
		Title:     title,
		Status:    models.BatchActive,
		Timezone:  "UTC",
		Slots:     slots,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("slot_batches").InsertOne(ctx, batch); err != nil {
		f.t.Fatalf("failed to create test slot batch: %v", err)
	}
	return batch
}

// CreateEnrollment creates an active enrollment with its pair of chat
// threads, mirroring what the enrollment store builds.
func (f *Fixtures) CreateEnrollment(ctx context.Context, studentID, mentorID primitive.ObjectID) models.Enrollment {
	f.t.Helper()

	now := time.Now().UTC()
	enrID := primitive.NewObjectID()
	studentThread := models.ChatThread{
		ID:           primitive.NewObjectID(),
		EnrollmentID: enrID,
		Party:        models.PartyStudent,
		OwnerID:      studentID,
		Title:        "Chat (Mentor)",
		CreatedAt:    now,
		LastActivity: now,
	}
	mentorThread := models.ChatThread{
		ID:           primitive.NewObjectID(),
		EnrollmentID: enrID,
		Party:        models.PartyMentor,
		OwnerID:      mentorID,
		Title:        "Chat (Student)",
		CreatedAt:    now,
		LastActivity: now,
	}
	if _, err := f.db.Collection("chat_threads").InsertMany(ctx, []any{studentThread, mentorThread}); err != nil {
		f.t.Fatalf("failed to create test threads: %v", err)
	}

	enr := models.Enrollment{
		ID:              enrID,
		StudentID:       studentID,
		MentorID:        mentorID,
		StudentThreadID: &studentThread.ID,
		MentorThreadID:  &mentorThread.ID,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if _, err := f.db.Collection("enrollments").InsertOne(ctx, enr); err != nil {
		f.t.Fatalf("failed to create test enrollment: %v", err)
	}
	return enr
}

// CreateMeeting creates a meeting in the given status.
func (f *Fixtures) CreateMeeting(ctx context.Context, threadID, studentID, mentorID primitive.ObjectID, status string) models.Meeting {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.Meeting{
		ID:              primitive.NewObjectID(),
		ThreadID:        threadID,
		StudentID:       studentID,
		MentorID:        mentorID,
		DurationMinutes: 60,
		Status:          status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if status != models.MeetingRequested {
		start := now.Add(24 * time.Hour)
		m.ScheduledTime = &start
	}
	if _, err := f.db.Collection("meetings").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test meeting: %v", err)
	}
	return m
}
