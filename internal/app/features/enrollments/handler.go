// internal/app/features/enrollments/handler.go
package enrollments

import (
	enrollmentstore "github.com/mentorhq/mentorhub/internal/app/store/enrollments"
	userstore "github.com/mentorhq/mentorhub/internal/app/store/users"
	"github.com/mentorhq/mentorhub/internal/app/system/notify"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the enrollments feature.
type Handler struct {
	Enrollments *enrollmentstore.Store
	Users       *userstore.Store
	Notify      *notify.Debouncer
	Log         *zap.Logger

	BaseURL string
}
