package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/readtrack/readtrack-backend/internal/config"
	"github.com/readtrack/readtrack-backend/internal/curriculum"
	"github.com/readtrack/readtrack-backend/internal/model"
	"github.com/readtrack/readtrack-backend/internal/repository"
)

// ErrRebuildInProgress is returned when another replay holds the lease.
var ErrRebuildInProgress = errors.New("a rebuild is already in progress")

// RebuildService replays the whole ledger into fresh master snapshots.
// It is the consistency-restoring operation: any vector cell without a
// ledger event behind it is wiped. Baseline vectors and enrollment state
// are master-record facts with no ledger provenance and stay untouched.
type RebuildService struct {
	ledgerRepo  *repository.LedgerRepository
	studentRepo *repository.StudentRepository
	progress    *ProgressService
	pacing      *PacingService
	groupView   *GroupViewService
	events      *EventsService
	rdb         *redis.Client
	pool        *pgxpool.Pool
	cat         *curriculum.Catalog
	leaseTTL    time.Duration
	log         zerolog.Logger
}

// NewRebuildService creates a new RebuildService.
func NewRebuildService(
	ledgerRepo *repository.LedgerRepository,
	studentRepo *repository.StudentRepository,
	progress *ProgressService,
	pacing *PacingService,
	groupView *GroupViewService,
	events *EventsService,
	rdb *redis.Client,
	pool *pgxpool.Pool,
	cat *curriculum.Catalog,
	leaseTTL time.Duration,
	log zerolog.Logger,
) *RebuildService {
	return &RebuildService{
		ledgerRepo:  ledgerRepo,
		studentRepo: studentRepo,
		progress:    progress,
		pacing:      pacing,
		groupView:   groupView,
		events:      events,
		rdb:         rdb,
		pool:        pool,
		cat:         cat,
		leaseTTL:    leaseTTL,
		log:         log.With().Str("component", "rebuild_service").Logger(),
	}
}

// replayState accumulates one student's snapshot during the replay.
type replayState struct {
	rec        *model.StudentRecord
	vector     model.StatusVector
	lastEntry  time.Time
	ptrTime    time.Time
	ptrNumber  int
	ptrLabel   string
	hasPointer bool
}

// RebuildAll replays every ledger event in order and writes the rebuilt
// snapshots back in one transaction.
func (s *RebuildService) RebuildAll(ctx context.Context, owner string) (*model.RebuildReport, error) {
	started := time.Now()

	acquired, err := s.rdb.SetNX(ctx, config.CacheKey.RebuildLeaseKey(), owner, s.leaseTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire rebuild lease: %w", err)
	}
	if !acquired {
		return nil, ErrRebuildInProgress
	}
	defer s.rdb.Del(ctx, config.CacheKey.RebuildLeaseKey())

	events, err := s.ledgerRepo.ReadAllOrdered(ctx)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	students, err := s.studentRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}

	states := make(map[string]*replayState, len(students))
	for i := range students {
		rec := &students[i]
		states[rec.NameKey] = &replayState{rec: rec, vector: make(model.StatusVector)}
	}

	report := &model.RebuildReport{RanAt: started.UTC()}
	for i := range events {
		if s.replayEvent(states, &events[i]) {
			report.EventsReplayed++
		} else {
			report.EventsSkipped++
		}
	}

	recs := make([]model.StudentRecord, 0, len(states))
	for _, st := range states {
		rec := *st.rec
		rec.StatusVector = st.vector
		rec.CurrentLessonLabel = st.ptrLabel
		rec.CurrentLessonNumber = nil
		if st.hasPointer {
			n := st.ptrNumber
			rec.CurrentLessonNumber = &n
		}
		rec.LastEntryAt = nil
		if !st.lastEntry.IsZero() {
			t := st.lastEntry
			rec.LastEntryAt = &t
		}
		recs = append(recs, rec)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin rebuild: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.studentRepo.ReplaceSnapshots(ctx, tx, recs); err != nil {
		return nil, fmt.Errorf("replace snapshots: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit rebuild: %w", err)
	}
	report.StudentsRebuilt = len(recs)

	if err := s.progress.RecomputeBenchmarks(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Benchmark recompute failed")
	}
	if err := s.pacing.RecomputeRollups(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Pacing recompute failed")
	}
	if err := s.groupView.RenderAll(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Group view render failed")
	}

	report.ElapsedMS = time.Since(started).Milliseconds()
	s.events.Publish(ctx, EventRebuild, report)
	s.log.Info().
		Str("owner", owner).
		Int("events", report.EventsReplayed).
		Int("skipped", report.EventsSkipped).
		Int("students", report.StudentsRebuilt).
		Int64("elapsed_ms", report.ElapsedMS).
		Msg("Rebuild finished")
	return report, nil
}

// replayEvent folds one ledger event into the in-memory states. Later
// ledger position always wins a cell; the pointer goes to the latest
// timestamp, ties broken by the higher lesson number. Returns false for
// events that contribute nothing.
func (s *RebuildService) replayEvent(states map[string]*replayState, e *model.CheckinEvent) bool {
	st, ok := states[curriculum.NormalizeName(e.StudentName)]
	if !ok {
		return false
	}
	// U events were diverted when they arrived; enrollment is not
	// replayed. Writes after an unenrollment stay out of the frozen
	// vector as well.
	if !e.Status.Recordable() {
		return false
	}
	if st.rec.Enrollment == model.EnrollmentUnenrolled &&
		st.rec.UnenrolledAt != nil && e.OccurredAt.After(*st.rec.UnenrolledAt) {
		return false
	}

	number, numeric := s.cat.ExtractNumber(e.LessonLabel)
	if _, bad := s.cat.OutOfRange(e.LessonLabel); bad {
		return false
	}

	st.vector[s.cat.Key(e.LessonLabel)] = e.Status
	if e.OccurredAt.After(st.lastEntry) {
		st.lastEntry = e.OccurredAt
	}

	if numeric {
		later := e.OccurredAt.After(st.ptrTime)
		tieWins := e.OccurredAt.Equal(st.ptrTime) && number > st.ptrNumber
		if !st.hasPointer || later || tieWins {
			st.hasPointer = true
			st.ptrTime = e.OccurredAt
			st.ptrNumber = number
			st.ptrLabel = e.LessonLabel
		}
	}
	return true
}
