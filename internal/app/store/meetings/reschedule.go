// internal/app/store/meetings/reschedule.go
package meetingstore

import (
	"context"
	"fmt"
	"time"

	"github.com/mentorhq/mentorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProposeReschedule appends a pending reschedule entry. The meeting status
// is not touched; only resolution moves anything. The proposer must be a
// participant and the meeting must not be terminal.
func (s *Store) ProposeReschedule(ctx context.Context, id, requestedBy primitive.ObjectID, proposedTime time.Time, note string) (models.Meeting, error) {
	entry := models.RescheduleRequest{
		RequestedBy:  requestedBy,
		ProposedTime: proposedTime.UTC(),
		Note:         note,
		Status:       models.ReschedulePending,
		CreatedAt:    time.Now().UTC(),
	}
	return s.transition(ctx, id, requestedBy,
		bson.M{"status": bson.M{"$nin": bson.A{models.MeetingCompleted, models.MeetingCancelled}}},
		bson.M{
			"$push": bson.M{"reschedule_requests": entry},
			"$set":  bson.M{"updated_at": entry.CreatedAt},
		},
	)
}

// ResolveReschedule lets the counterparty accept or reject a pending entry.
// The actor must be the party that did NOT file the request. Accepting
// moves scheduled_time to the proposed time and the meeting to scheduled:
// an agreed time on a requested meeting is a schedule, and a meeting that
// had already gone out as link_sent regresses with its link and room
// cleared so a fresh link is issued for the new time; a link minted for
// the old time must never survive the change.
func (s *Store) ResolveReschedule(ctx context.Context, id primitive.ObjectID, requestIndex int, decision string, actorID primitive.ObjectID) (models.Meeting, error) {
	if decision != models.RescheduleAccepted && decision != models.RescheduleRejected {
		return models.Meeting{}, ErrInvalidDecision
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return models.Meeting{}, err
	}
	if requestIndex < 0 || requestIndex >= len(current.RescheduleRequests) {
		return models.Meeting{}, ErrRescheduleNotFound
	}
	entry := current.RescheduleRequests[requestIndex]
	if entry.Status != models.ReschedulePending {
		return models.Meeting{}, ErrAlreadyResolved
	}
	if !current.HasParticipant(actorID) || actorID == entry.RequestedBy {
		return models.Meeting{}, ErrForbidden
	}

	now := time.Now().UTC()
	entryField := fmt.Sprintf("reschedule_requests.%d", requestIndex)
	set := bson.M{
		entryField + ".status": decision,
		"updated_at":           now,
	}
	update := bson.M{"$set": set}

	if decision == models.RescheduleAccepted {
		set["scheduled_time"] = entry.ProposedTime
		set["status"] = models.MeetingScheduled
		if current.Status == models.MeetingLinkSent {
			update["$unset"] = bson.M{"link": "", "room_id": ""}
		}
	}

	// The filter re-asserts the pending entry and the observed status, so a
	// concurrent resolve or transition makes this update match nothing.
	m, err := s.transition(ctx, id, actorID,
		bson.M{
			entryField + ".status": models.ReschedulePending,
			"status":               current.Status,
		},
		update,
	)
	if err == ErrInvalidTransition {
		refreshed, gerr := s.Get(ctx, id)
		if gerr == nil && requestIndex < len(refreshed.RescheduleRequests) &&
			refreshed.RescheduleRequests[requestIndex].Status != models.ReschedulePending {
			return models.Meeting{}, ErrAlreadyResolved
		}
	}
	return m, err
}
