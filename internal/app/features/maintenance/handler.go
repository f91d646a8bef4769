// internal/app/features/maintenance/handler.go
package maintenance

import (
	"context"
	"net/http"
	"time"

	"github.com/mentorhq/mentorhub/internal/app/features/shared"
	enrollmentstore "github.com/mentorhq/mentorhub/internal/app/store/enrollments"
	"go.uber.org/zap"
)

// Handler holds dependencies for operator maintenance endpoints.
type Handler struct {
	Enrollments *enrollmentstore.Store
	Log         *zap.Logger
}

// HandleRepair handles POST /maintenance/repair: one duplicate-enrollment
// repair pass, on demand. The same pass runs periodically on the background
// worker; this endpoint exists so operators can run it after a data import
// without waiting.
func (h *Handler) HandleRepair(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), time.Minute)
	defer cancel()

	res, err := h.Enrollments.RepairDuplicates(ctx)
	if err != nil {
		h.Log.Error("manual repair pass failed", zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "repair failed")
		return
	}
	shared.JSON(w, http.StatusOK, res)
}
