package worker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/readtrack/readtrack-backend/internal/config"
	"github.com/readtrack/readtrack-backend/internal/service"
)

// RebuildWorker replays the full ledger once a night. The rebuild is the
// authoritative pass: whatever drift the interval folds accumulated gets
// corrected here.
type RebuildWorker struct {
	rebuild *service.RebuildService
	hour    int
	log     zerolog.Logger
}

// NewRebuildWorker creates a new RebuildWorker. hour is the local hour of
// day (0-23) the rebuild fires.
func NewRebuildWorker(rebuild *service.RebuildService, hour int, log zerolog.Logger) *RebuildWorker {
	return &RebuildWorker{
		rebuild: rebuild,
		hour:    hour,
		log:     log.With().Str("component", "rebuild_worker").Logger(),
	}
}

// Start begins the nightly schedule. Call in a goroutine.
func (w *RebuildWorker) Start(ctx context.Context) {
	w.log.Info().Int("hour", w.hour).Msg("RebuildWorker started")

	for {
		wait := time.Until(w.nextRun(time.Now()))
		timer := time.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()
			w.log.Info().Msg("RebuildWorker stopped")
			return
		case <-timer.C:
			w.runOnce(ctx)
		}
	}
}

func (w *RebuildWorker) runOnce(ctx context.Context) {
	report, err := w.rebuild.RebuildAll(ctx, config.WorkerKey.RebuildWorker)
	if err != nil {
		if errors.Is(err, service.ErrRebuildInProgress) {
			w.log.Warn().Msg("Another rebuild holds the lease, skipping")
			return
		}
		if ctx.Err() == nil {
			w.log.Error().Err(err).Msg("Nightly rebuild failed")
		}
		return
	}
	w.log.Info().
		Int("replayed", report.EventsReplayed).
		Int("students", report.StudentsRebuilt).
		Int64("elapsed_ms", report.ElapsedMS).
		Msg("Nightly rebuild finished")
}

// nextRun returns the next occurrence of the configured hour.
func (w *RebuildWorker) nextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), w.hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}
