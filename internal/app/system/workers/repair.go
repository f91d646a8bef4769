// internal/app/system/workers/repair.go
package workers

import (
	"context"
	"sync"
	"time"

	enrollmentstore "github.com/mentorhq/mentorhub/internal/app/store/enrollments"
	"go.uber.org/zap"
)

// Repair is a background worker that removes duplicate enrollment rows
// and the chat threads they stranded. Duplicates can only appear in data
// written before the unique pair index existed, so one pass per interval
// is plenty.
type Repair struct {
	enrollments *enrollmentstore.Store
	log         *zap.Logger
	interval    time.Duration
	stopCh      chan struct{}
	wg          sync.WaitGroup
}

// NewRepair creates a new enrollment repair worker.
func NewRepair(enr *enrollmentstore.Store, logger *zap.Logger, interval time.Duration) *Repair {
	return &Repair{
		enrollments: enr,
		log:         logger,
		interval:    interval,
		stopCh:      make(chan struct{}),
	}
}

// Start begins the background repair loop. The first pass runs
// immediately so stale data is cleaned at boot, not an interval later.
func (w *Repair) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("enrollment repair worker started",
		zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *Repair) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("enrollment repair worker stopped")
}

func (w *Repair) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.repair()
	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.repair()
		}
	}
}

func (w *Repair) repair() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	res, err := w.enrollments.RepairDuplicates(ctx)
	if err != nil {
		w.log.Error("enrollment repair failed", zap.Error(err))
		return
	}

	if res.DuplicatesRemoved > 0 || res.ThreadsRemoved > 0 || res.OrphansRemoved > 0 {
		w.log.Info("enrollment repair completed",
			zap.Int("duplicates_removed", res.DuplicatesRemoved),
			zap.Int64("threads_removed", res.ThreadsRemoved),
			zap.Int64("orphans_removed", res.OrphansRemoved))
	}
}
