package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/readtrack/readtrack-backend/internal/config"
	"github.com/readtrack/readtrack-backend/internal/curriculum"
	"github.com/readtrack/readtrack-backend/internal/database"
	"github.com/readtrack/readtrack-backend/internal/gridview"
	"github.com/readtrack/readtrack-backend/internal/handler"
	"github.com/readtrack/readtrack-backend/internal/logger"
	"github.com/readtrack/readtrack-backend/internal/repository"
	"github.com/readtrack/readtrack-backend/internal/router"
	"github.com/readtrack/readtrack-backend/internal/scoring"
	"github.com/readtrack/readtrack-backend/internal/service"
	"github.com/readtrack/readtrack-backend/internal/validator"
	"github.com/readtrack/readtrack-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting ReadTrack Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.Postgres(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.Redis(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Curriculum + Scoring ──────────────────────────────────────────
	cat := curriculum.Default()
	engine := scoring.NewEngine(cat)

	layout, err := gridview.ParseLayout(cfg.WorkbookLayout)
	if err != nil {
		log.Fatal().Err(err).Str("layout", cfg.WorkbookLayout).Msg("Invalid workbook layout")
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	ledgerRepo := repository.NewLedgerRepository(pool)
	studentRepo := repository.NewStudentRepository(pool)
	queueRepo := repository.NewQueueRepository(pool)
	summaryRepo := repository.NewSummaryRepository(pool)
	unenrollRepo := repository.NewUnenrollmentRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	eventsService := service.NewEventsService(rdb, log)
	groupViewService := service.NewGroupViewService(studentRepo, cat, cfg.WorkbookDir, layout, log)
	progressService := service.NewProgressService(studentRepo, summaryRepo, engine, rdb, log)
	pacingService := service.NewPacingService(studentRepo, ledgerRepo, summaryRepo, groupViewService, rdb, log)
	checkinService := service.NewCheckinService(
		ledgerRepo, studentRepo, queueRepo, unenrollRepo,
		groupViewService, eventsService, pool, cat, cfg.ImmediateEcho, log,
	)
	syncQueueService := service.NewSyncQueueService(
		queueRepo, studentRepo, progressService, pacingService, groupViewService,
		eventsService, rdb, pool, cat, cfg.SyncLeaseTTL, cfg.QueueRetention, log,
	)
	rebuildService := service.NewRebuildService(
		ledgerRepo, studentRepo, progressService, pacingService, groupViewService,
		eventsService, rdb, pool, cat, cfg.SyncLeaseTTL, log,
	)
	importService := service.NewImportService(
		studentRepo, ledgerRepo, unenrollRepo, progressService, pacingService,
		groupViewService, eventsService, pool, cat, log,
	)
	rosterService := service.NewRosterService(studentRepo, unenrollRepo, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Checkin:   handler.NewCheckinHandler(checkinService),
		Student:   handler.NewStudentHandler(rosterService, progressService),
		Group:     handler.NewGroupHandler(rosterService, groupViewService, pacingService),
		Benchmark: handler.NewBenchmarkHandler(progressService),
		Admin:     handler.NewAdminHandler(syncQueueService, rebuildService, importService, log),
		WS:        handler.NewWSHandler(eventsService, log, cfg.AllowedOrigins),
		System:    handler.NewSystemHandler(rdb, queueRepo, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	syncWorker := worker.NewSyncWorker(syncQueueService, cfg.SyncInterval, log)
	rebuildWorker := worker.NewRebuildWorker(rebuildService, cfg.RebuildHour, log)

	go syncWorker.Start(workerCtx)
	go rebuildWorker.Start(workerCtx)

	// ─── Render Group Views ───────────────────────────────────────────
	// The workbook must exist before the first download request.
	if err := groupViewService.RenderAll(ctx); err != nil {
		log.Warn().Err(err).Msg("Initial group view render failed")
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and let an in-flight fold finish.
	workerCancel()
	time.Sleep(2 * time.Second)

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
