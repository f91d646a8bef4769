// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	enrollmentstore "github.com/mentorhq/mentorhub/internal/app/store/enrollments"
	threadstore "github.com/mentorhq/mentorhub/internal/app/store/threads"
	"github.com/mentorhq/mentorhub/internal/app/system/workers"
	"go.uber.org/zap"
)

// repairWorker is started here and stopped in Shutdown.
var repairWorker *workers.Repair

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. MentorHub
// starts the periodic duplicate-enrollment repair worker here.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.RepairInterval <= 0 {
		logger.Info("enrollment repair worker disabled")
		return nil
	}

	threads := threadstore.New(deps.MongoDatabase)
	enrollments := enrollmentstore.New(deps.MongoDatabase, threads)
	repairWorker = workers.NewRepair(enrollments, logger, appCfg.RepairInterval)
	repairWorker.Start()
	return nil
}
