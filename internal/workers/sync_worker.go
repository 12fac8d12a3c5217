package workers

import (
	"context"
	"time"

	"github.com/alimgiray/contribboard/internal/services"
	"github.com/alimgiray/contribboard/pkg/logger"
)

// SyncWorker re-runs the ingestion pipeline on a fixed interval. Each pass is
// a full batch run; there is no streaming state between passes.
type SyncWorker struct {
	*BaseWorker
	syncService *services.SyncService
	interval    time.Duration
}

func NewSyncWorker(workerID string, syncService *services.SyncService, interval time.Duration) *SyncWorker {
	return &SyncWorker{
		BaseWorker:  NewBaseWorker(workerID),
		syncService: syncService,
		interval:    interval,
	}
}

// Start begins the periodic sync loop
func (w *SyncWorker) Start(ctx context.Context) error {
	w.Running = true
	logger.Infof("Sync worker %s started with interval %s", w.WorkerID, w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Infof("Sync worker %s stopping due to context cancellation", w.WorkerID)
			return ctx.Err()
		case <-w.StopChan:
			logger.Infof("Sync worker %s stopping", w.WorkerID)
			return nil
		case <-ticker.C:
			// A failed pass leaves the previous snapshots untouched;
			// the next tick tries again
			if err := w.syncService.Run(ctx); err != nil {
				logger.WithError(err).Errorf("Sync worker %s run failed", w.WorkerID)
			}
		}
	}
}
