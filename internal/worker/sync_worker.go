package worker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/readtrack/readtrack-backend/internal/config"
	"github.com/readtrack/readtrack-backend/internal/service"
)

// SyncWorker folds the pending sync queue on a fixed interval. The fold
// itself is leased in Redis, so overlapping instances skip instead of
// double-applying.
type SyncWorker struct {
	queue    *service.SyncQueueService
	interval time.Duration
	log      zerolog.Logger
}

// NewSyncWorker creates a new SyncWorker.
func NewSyncWorker(queue *service.SyncQueueService, interval time.Duration, log zerolog.Logger) *SyncWorker {
	return &SyncWorker{
		queue:    queue,
		interval: interval,
		log:      log.With().Str("component", "sync_worker").Logger(),
	}
}

// Start begins the interval loop. Call in a goroutine. One pass runs
// immediately so a restart does not leave the backlog waiting a full
// interval.
func (w *SyncWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("SyncWorker started")

	w.runOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("SyncWorker stopped")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *SyncWorker) runOnce(ctx context.Context) {
	report, err := w.queue.ProcessQueue(ctx, config.WorkerKey.SyncWorker)
	if err != nil {
		if errors.Is(err, service.ErrSyncInProgress) {
			w.log.Debug().Msg("Another sync holds the lease, skipping")
			return
		}
		if ctx.Err() == nil {
			w.log.Error().Err(err).Msg("Queue fold failed")
		}
		return
	}
	if report.EntriesFolded > 0 {
		w.log.Info().
			Int("folded", report.EntriesFolded).
			Int("students", report.StudentsTouched).
			Int64("elapsed_ms", report.ElapsedMS).
			Msg("Queue folded")
	}
}
