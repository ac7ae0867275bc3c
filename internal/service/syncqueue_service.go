package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/readtrack/readtrack-backend/internal/config"
	"github.com/readtrack/readtrack-backend/internal/curriculum"
	"github.com/readtrack/readtrack-backend/internal/model"
	"github.com/readtrack/readtrack-backend/internal/repository"
)

// ErrSyncInProgress is returned when another fold holds the lease.
var ErrSyncInProgress = errors.New("a sync run is already in progress")

// SyncQueueService folds pending queue entries into master records. One
// fold runs at a time; the Redis lease rejects overlapping invocations.
type SyncQueueService struct {
	queueRepo   *repository.QueueRepository
	studentRepo *repository.StudentRepository
	progress    *ProgressService
	pacing      *PacingService
	groupView   *GroupViewService
	events      *EventsService
	rdb         *redis.Client
	pool        *pgxpool.Pool
	cat         *curriculum.Catalog
	leaseTTL    time.Duration
	retention   time.Duration
	log         zerolog.Logger
}

// NewSyncQueueService creates a new SyncQueueService.
func NewSyncQueueService(
	queueRepo *repository.QueueRepository,
	studentRepo *repository.StudentRepository,
	progress *ProgressService,
	pacing *PacingService,
	groupView *GroupViewService,
	events *EventsService,
	rdb *redis.Client,
	pool *pgxpool.Pool,
	cat *curriculum.Catalog,
	leaseTTL, retention time.Duration,
	log zerolog.Logger,
) *SyncQueueService {
	return &SyncQueueService{
		queueRepo:   queueRepo,
		studentRepo: studentRepo,
		progress:    progress,
		pacing:      pacing,
		groupView:   groupView,
		events:      events,
		rdb:         rdb,
		pool:        pool,
		cat:         cat,
		leaseTTL:    leaseTTL,
		retention:   retention,
		log:         log.With().Str("component", "syncqueue_service").Logger(),
	}
}

// pointerCandidate is the greatest numeric lesson a student touched in
// the run; its label becomes the current-lesson pointer.
type pointerCandidate struct {
	number int
	label  string
}

// ProcessQueue folds every pending entry into master records in one
// transaction, purges expired processed entries, and recomputes the
// derived views. owner identifies the caller in the lease and in logs.
func (s *SyncQueueService) ProcessQueue(ctx context.Context, owner string) (*model.SyncRunReport, error) {
	started := time.Now()

	acquired, err := s.rdb.SetNX(ctx, config.CacheKey.SyncLeaseKey(), owner, s.leaseTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire sync lease: %w", err)
	}
	if !acquired {
		return nil, ErrSyncInProgress
	}
	// The TTL reclaims the lease if this delete never runs.
	defer s.rdb.Del(ctx, config.CacheKey.SyncLeaseKey())

	pending, err := s.queueRepo.PendingOrdered(ctx, s.pool)
	if err != nil {
		return nil, fmt.Errorf("read pending entries: %w", err)
	}

	report := &model.SyncRunReport{RanAt: started.UTC()}

	if len(pending) > 0 {
		if err := s.fold(ctx, pending, report); err != nil {
			return nil, err
		}
	}

	purged, err := s.queueRepo.PurgeProcessedBefore(ctx, time.Now().Add(-s.retention))
	if err != nil {
		s.log.Warn().Err(err).Msg("Queue purge failed")
	}
	report.EntriesPurged = int(purged)

	if report.EntriesFolded > 0 {
		s.recompute(ctx)
		s.events.Publish(ctx, EventSync, report)
	}

	report.ElapsedMS = time.Since(started).Milliseconds()
	s.storeLastRun(ctx, report)

	s.log.Info().
		Str("owner", owner).
		Int("entries", report.EntriesFolded).
		Int("students", report.StudentsTouched).
		Int("lessons", report.LessonsTouched).
		Int("purged", report.EntriesPurged).
		Int64("elapsed_ms", report.ElapsedMS).
		Msg("Queue fold finished")
	return report, nil
}

// fold aggregates the batch in memory and applies it in one transaction.
func (s *SyncQueueService) fold(ctx context.Context, pending []model.SyncQueueEntry, report *model.SyncRunReport) error {
	students, err := s.studentRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list students: %w", err)
	}
	byKey := make(map[string]*model.StudentRecord, len(students))
	for i := range students {
		byKey[students[i].NameKey] = &students[i]
	}

	// Aggregation over the whole batch, in enqueue order. Per (student,
	// lesson) the later entry wins; the pointer candidate is the greatest
	// numeric lesson the student touched, regardless of entry order.
	perLesson := make(map[string]map[uuid.UUID]string)
	lessonSeen := make(map[string]time.Time)
	pointers := make(map[uuid.UUID]pointerCandidate)
	touched := make(map[uuid.UUID]bool)
	entryIDs := make([]uuid.UUID, 0, len(pending))

	for _, entry := range pending {
		entryIDs = append(entryIDs, entry.ID)

		if n, bad := s.cat.OutOfRange(entry.LessonLabel); bad {
			s.log.Warn().Int("number", n).Str("label", entry.LessonLabel).Msg("Entry skipped, lesson outside catalog")
			continue
		}
		key := s.cat.Key(entry.LessonLabel)

		for _, mark := range entry.Statuses {
			st := model.Status(mark.Status)
			if !st.Recordable() {
				s.log.Warn().Str("status", mark.Status).Str("student", mark.StudentName).Msg("Mark skipped, status not recordable")
				continue
			}
			rec, ok := byKey[curriculum.NormalizeName(mark.StudentName)]
			if !ok {
				s.log.Warn().Str("student", mark.StudentName).Msg("Mark skipped, no master record")
				continue
			}
			if rec.Enrollment != model.EnrollmentActive {
				continue
			}

			if perLesson[key] == nil {
				perLesson[key] = make(map[uuid.UUID]string)
			}
			perLesson[key][rec.ID] = mark.Status
			touched[rec.ID] = true
			if entry.EnqueuedAt.After(lessonSeen[key]) {
				lessonSeen[key] = entry.EnqueuedAt
			}
			if entry.LessonNumber != nil && *entry.LessonNumber > pointers[rec.ID].number {
				pointers[rec.ID] = pointerCandidate{number: *entry.LessonNumber, label: entry.LessonLabel}
			}
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin fold: %w", err)
	}
	defer tx.Rollback(ctx)

	for key, cells := range perLesson {
		ids := make([]uuid.UUID, 0, len(cells))
		statuses := make([]string, 0, len(cells))
		for id, status := range cells {
			ids = append(ids, id)
			statuses = append(statuses, status)
		}
		if err := s.studentRepo.BulkSetLessonStatus(ctx, tx, key, ids, statuses, lessonSeen[key]); err != nil {
			return fmt.Errorf("write lesson %q: %w", key, err)
		}
	}

	ptrIDs := make([]uuid.UUID, 0, len(pointers))
	ptrLabels := make([]string, 0, len(pointers))
	ptrNumbers := make([]int, 0, len(pointers))
	for id, cand := range pointers {
		ptrIDs = append(ptrIDs, id)
		ptrLabels = append(ptrLabels, cand.label)
		ptrNumbers = append(ptrNumbers, cand.number)
	}
	if err := s.studentRepo.BulkSetCurrentLesson(ctx, tx, ptrIDs, ptrLabels, ptrNumbers); err != nil {
		return fmt.Errorf("write current lessons: %w", err)
	}

	if err := s.queueRepo.MarkProcessed(ctx, tx, entryIDs, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit fold: %w", err)
	}

	report.EntriesFolded = len(entryIDs)
	report.StudentsTouched = len(touched)
	report.LessonsTouched = len(perLesson)
	return nil
}

// Recompute refreshes the derived views from the current snapshot without
// touching the queue. Exposed for the operator endpoint.
func (s *SyncQueueService) Recompute(ctx context.Context) {
	s.recompute(ctx)
}

// recompute refreshes every derived view after a fold. Each is
// best-effort: the data already committed, a failed projection heals on
// the next run.
func (s *SyncQueueService) recompute(ctx context.Context) {
	if err := s.progress.RecomputeBenchmarks(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Benchmark recompute failed")
	}
	if err := s.pacing.RecomputeRollups(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Pacing recompute failed")
	}
	if err := s.groupView.RenderAll(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Group view render failed")
	}
}

// storeLastRun keeps the latest report in Redis for the admin endpoint.
func (s *SyncQueueService) storeLastRun(ctx context.Context, report *model.SyncRunReport) {
	body, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, config.CacheKey.QueueStatsKey(), body, 0).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to cache sync run report")
	}
}

// Stats reports queue depth plus the last run, if one is cached.
func (s *SyncQueueService) Stats(ctx context.Context) (*model.QueueStats, *model.SyncRunReport, error) {
	stats, err := s.queueRepo.Stats(ctx)
	if err != nil {
		return nil, nil, err
	}
	var lastRun *model.SyncRunReport
	if raw, err := s.rdb.Get(ctx, config.CacheKey.QueueStatsKey()).Bytes(); err == nil {
		lastRun = &model.SyncRunReport{}
		if jerr := json.Unmarshal(raw, lastRun); jerr != nil {
			lastRun = nil
		}
	}
	return stats, lastRun, nil
}
