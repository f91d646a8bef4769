// internal/app/store/meetings/meetingstore.go
package meetingstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mentorhq/mentorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound           = errors.New("meeting not found")
	ErrInvalidTransition  = errors.New("meeting is not in a state that allows this action")
	ErrForbidden          = errors.New("actor may not perform this action")
	ErrRescheduleNotFound = errors.New("reschedule request not found")
	ErrAlreadyResolved    = errors.New("reschedule request already resolved")
	ErrInvalidDecision    = errors.New(`decision must be "accepted" or "rejected"`)
)

// Store owns the meeting state machine.
//
// Every transition is a conditional UpdateOne keyed on the expected current
// status. The two parties are not expected to race on one meeting, but if
// they do, the losing update matches nothing and is rejected outright with
// no partial mutation.
type Store struct {
	c          *mongo.Collection
	meetDomain string
}

// New creates a new meetings Store. meetDomain is the host used when
// minting room links.
func New(db *mongo.Database, meetDomain string) *Store {
	return &Store{c: db.Collection("meetings"), meetDomain: meetDomain}
}

// NewRoomLink mints a fresh room id and join link.
func (s *Store) NewRoomLink() (roomID, link string) {
	roomID = strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return roomID, fmt.Sprintf("https://%s/mentorhub-%s", s.meetDomain, roomID)
}

// Request opens (or reopens) the meeting negotiation for a thread. An
// existing non-terminal meeting for the same parties is reset to requested
// with any previous schedule and link cleared; completed or cancelled
// meetings are left alone and a fresh document is created.
func (s *Store) Request(ctx context.Context, threadID, studentID, mentorID primitive.ObjectID, reason, topic, timezone string) (models.Meeting, error) {
	now := time.Now().UTC()

	res := s.c.FindOneAndUpdate(ctx,
		bson.M{
			"thread_id":  threadID,
			"student_id": studentID,
			"mentor_id":  mentorID,
			"status":     bson.M{"$in": bson.A{models.MeetingRequested, models.MeetingScheduled, models.MeetingLinkSent}},
		},
		bson.M{
			"$set":   bson.M{"status": models.MeetingRequested, "reason": reason, "updated_at": now},
			"$unset": bson.M{"scheduled_time": "", "link": "", "room_id": ""},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var m models.Meeting
	err := res.Decode(&m)
	if err == nil {
		return m, nil
	}
	if err != mongo.ErrNoDocuments {
		return models.Meeting{}, err
	}

	m = models.Meeting{
		ID:              primitive.NewObjectID(),
		ThreadID:        threadID,
		StudentID:       studentID,
		MentorID:        mentorID,
		Reason:          reason,
		Topic:           topic,
		DurationMinutes: 60,
		Timezone:        timezone,
		Status:          models.MeetingRequested,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.Meeting{}, err
	}
	return m, nil
}

// CreateScheduled inserts a meeting already in scheduled state with a fresh
// room link. Used when a broadcast slot booking succeeds: the slot claim
// fixes the time, so the negotiation phase is skipped.
func (s *Store) CreateScheduled(ctx context.Context, threadID, studentID, mentorID, batchID primitive.ObjectID, start time.Time, durationMinutes int, topic, timezone string) (models.Meeting, error) {
	now := time.Now().UTC()
	roomID, link := s.NewRoomLink()
	start = start.UTC()
	m := models.Meeting{
		ID:              primitive.NewObjectID(),
		ThreadID:        threadID,
		StudentID:       studentID,
		MentorID:        mentorID,
		Topic:           topic,
		DurationMinutes: durationMinutes,
		ScheduledTime:   &start,
		Link:            link,
		RoomID:          roomID,
		Timezone:        timezone,
		Status:          models.MeetingScheduled,
		BatchID:         &batchID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.Meeting{}, err
	}
	return m, nil
}

// UpdateSlotTime moves the scheduled time of the meeting a student's slot
// booking created, after the slot itself has been moved. Only non-terminal
// slot-backed meetings match; a miss is not an error since the meeting may
// have been cancelled independently.
func (s *Store) UpdateSlotTime(ctx context.Context, batchID, studentID primitive.ObjectID, start time.Time, durationMinutes int) error {
	start = start.UTC()
	_, err := s.c.UpdateOne(ctx,
		bson.M{
			"batch_id":   batchID,
			"student_id": studentID,
			"status":     bson.M{"$nin": bson.A{models.MeetingCompleted, models.MeetingCancelled}},
		},
		bson.M{"$set": bson.M{
			"scheduled_time":   start,
			"duration_minutes": durationMinutes,
			"updated_at":       time.Now().UTC(),
		}},
	)
	return err
}

// Get returns a meeting by id.
func (s *Store) Get(ctx context.Context, id primitive.ObjectID) (models.Meeting, error) {
	var m models.Meeting
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return models.Meeting{}, ErrNotFound
	}
	if err != nil {
		return models.Meeting{}, err
	}
	return m, nil
}

// Schedule fixes the meeting time. Legal only from requested; the actor
// must be one of the two parties.
func (s *Store) Schedule(ctx context.Context, id, actorID primitive.ObjectID, at time.Time) (models.Meeting, error) {
	at = at.UTC()
	return s.transition(ctx, id, actorID,
		bson.M{"status": models.MeetingRequested},
		bson.M{"$set": bson.M{
			"status":         models.MeetingScheduled,
			"scheduled_time": at,
			"updated_at":     time.Now().UTC(),
		}},
	)
}

// SendLink distributes the join link. Legal only from scheduled. Empty link
// and room mint fresh ones.
func (s *Store) SendLink(ctx context.Context, id, actorID primitive.ObjectID, link, roomID string) (models.Meeting, error) {
	if link == "" || roomID == "" {
		roomID, link = s.NewRoomLink()
	}
	return s.transition(ctx, id, actorID,
		bson.M{"status": models.MeetingScheduled},
		bson.M{"$set": bson.M{
			"status":     models.MeetingLinkSent,
			"link":       link,
			"room_id":    roomID,
			"updated_at": time.Now().UTC(),
		}},
	)
}

// Complete closes the meeting. Legal from link_sent (normal path) or
// scheduled (sessions held without a link).
func (s *Store) Complete(ctx context.Context, id, actorID primitive.ObjectID) (models.Meeting, error) {
	return s.transition(ctx, id, actorID,
		bson.M{"status": bson.M{"$in": bson.A{models.MeetingLinkSent, models.MeetingScheduled}}},
		bson.M{"$set": bson.M{"status": models.MeetingCompleted, "updated_at": time.Now().UTC()}},
	)
}

// Cancel terminates the meeting. Legal from requested or scheduled; once a
// link has gone out the session is committed. Cancelling an already
// cancelled meeting is an idempotent no-op.
func (s *Store) Cancel(ctx context.Context, id, actorID primitive.ObjectID, reason string) (models.Meeting, error) {
	set := bson.M{"status": models.MeetingCancelled, "updated_at": time.Now().UTC()}
	if reason != "" {
		set["reason"] = reason
	}
	m, err := s.transition(ctx, id, actorID,
		bson.M{"status": bson.M{"$in": bson.A{models.MeetingRequested, models.MeetingScheduled}}},
		bson.M{"$set": set},
	)
	if err == ErrInvalidTransition {
		current, gerr := s.Get(ctx, id)
		if gerr != nil {
			return models.Meeting{}, gerr
		}
		if current.Status == models.MeetingCancelled {
			return current, nil
		}
		return models.Meeting{}, err
	}
	return m, err
}

// transition performs one conditional state-machine step. statusCond is
// merged into the filter alongside the id and the participant check; a
// non-matching update is re-read and classified.
func (s *Store) transition(ctx context.Context, id, actorID primitive.ObjectID, statusCond, update bson.M) (models.Meeting, error) {
	filter := bson.M{
		"_id": id,
		"$or": bson.A{bson.M{"student_id": actorID}, bson.M{"mentor_id": actorID}},
	}
	for k, v := range statusCond {
		filter[k] = v
	}

	res := s.c.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var m models.Meeting
	err := res.Decode(&m)
	if err == nil {
		return m, nil
	}
	if err != mongo.ErrNoDocuments {
		return models.Meeting{}, err
	}

	current, gerr := s.Get(ctx, id)
	if gerr != nil {
		return models.Meeting{}, gerr
	}
	if !current.HasParticipant(actorID) {
		return models.Meeting{}, ErrForbidden
	}
	return models.Meeting{}, ErrInvalidTransition
}
