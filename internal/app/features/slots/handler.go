// internal/app/features/slots/handler.go
package slots

import (
	enrollmentstore "github.com/mentorhq/mentorhub/internal/app/store/enrollments"
	meetingstore "github.com/mentorhq/mentorhub/internal/app/store/meetings"
	slotstore "github.com/mentorhq/mentorhub/internal/app/store/slotbatches"
	threadstore "github.com/mentorhq/mentorhub/internal/app/store/threads"
	userstore "github.com/mentorhq/mentorhub/internal/app/store/users"
	"github.com/mentorhq/mentorhub/internal/app/system/notify"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the slots feature.
// It holds the stores touched by publish/book/reschedule plus the
// notification debouncer, so the per-operation files can all share the
// same core dependencies.
type Handler struct {
	Slots       *slotstore.Store
	Enrollments *enrollmentstore.Store
	Meetings    *meetingstore.Store
	Threads     *threadstore.Store
	Users       *userstore.Store
	Notify      *notify.Debouncer
	Log         *zap.Logger

	DefaultTimezone string
	BatchExpiryDays int
	BaseURL         string
}
