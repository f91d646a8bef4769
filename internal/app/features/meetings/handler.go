// internal/app/features/meetings/handler.go
package meetings

import (
	"context"

	meetingstore "github.com/mentorhq/mentorhub/internal/app/store/meetings"
	userstore "github.com/mentorhq/mentorhub/internal/app/store/users"
	"github.com/mentorhq/mentorhub/internal/app/system/notify"
	"github.com/mentorhq/mentorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the meetings feature.
type Handler struct {
	Meetings *meetingstore.Store
	Users    *userstore.Store
	Notify   *notify.Debouncer
	Log      *zap.Logger

	BaseURL string
}

// notifyParty sends a notice about the meeting to one participant.
// actorID names who performed the operation; the notice goes to the other
// party unless toActor is set.
func (h *Handler) notifyParty(ctx context.Context, m models.Meeting, actorID primitive.ObjectID, toActor bool, typ, subject, preview string, force bool) {
	recipient := m.MentorID
	if actorID == m.MentorID {
		recipient = m.StudentID
	}
	if toActor {
		recipient = actorID
	}

	n := notify.Notice{
		RecipientID: recipient.Hex(),
		Scope:       m.ID.Hex(),
		Type:        typ,
		Subject:     subject,
		Preview:     preview,
		Link:        h.BaseURL + "/meetings/" + m.ID.Hex(),
	}
	if u, err := h.Users.Get(ctx, recipient); err == nil {
		n.Email = u.Email
	} else {
		h.Log.Warn("load recipient for notice", zap.Error(err))
	}
	h.Notify.Trigger(ctx, n, force)
}
