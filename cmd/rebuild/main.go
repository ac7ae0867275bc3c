package main

import (
	"context"
	"fmt"
	"time"

	"github.com/readtrack/readtrack-backend/internal/config"
	"github.com/readtrack/readtrack-backend/internal/curriculum"
	"github.com/readtrack/readtrack-backend/internal/database"
	"github.com/readtrack/readtrack-backend/internal/gridview"
	"github.com/readtrack/readtrack-backend/internal/logger"
	"github.com/readtrack/readtrack-backend/internal/repository"
	"github.com/readtrack/readtrack-backend/internal/scoring"
	"github.com/readtrack/readtrack-backend/internal/service"
)

// One-shot full replay: rebuilds every master record from the ledger,
// then re-derives benchmarks, pacing and group views. Intended for
// recovery and migrations; the nightly worker does the same on schedule.
func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	pool, err := database.Postgres(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.Redis(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	cat := curriculum.Default()
	engine := scoring.NewEngine(cat)

	layout, err := gridview.ParseLayout(cfg.WorkbookLayout)
	if err != nil {
		log.Fatal().Err(err).Str("layout", cfg.WorkbookLayout).Msg("Invalid workbook layout")
	}

	ledgerRepo := repository.NewLedgerRepository(pool)
	studentRepo := repository.NewStudentRepository(pool)
	summaryRepo := repository.NewSummaryRepository(pool)

	eventsService := service.NewEventsService(rdb, log)
	groupViewService := service.NewGroupViewService(studentRepo, cat, cfg.WorkbookDir, layout, log)
	progressService := service.NewProgressService(studentRepo, summaryRepo, engine, rdb, log)
	pacingService := service.NewPacingService(studentRepo, ledgerRepo, summaryRepo, groupViewService, rdb, log)
	rebuildService := service.NewRebuildService(
		ledgerRepo, studentRepo, progressService, pacingService, groupViewService,
		eventsService, rdb, pool, cat, cfg.SyncLeaseTTL, log,
	)

	fmt.Println("=== Full Ledger Replay ===")
	start := time.Now()

	report, err := rebuildService.RebuildAll(ctx, config.WorkerKey.ManualRun)
	if err != nil {
		log.Fatal().Err(err).Msg("Rebuild failed")
	}

	fmt.Printf("Replayed %d events across %d students in %s\n",
		report.EventsReplayed, report.StudentsRebuilt, time.Since(start).Round(time.Millisecond))
}
