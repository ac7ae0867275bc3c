package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/readtrack/readtrack-backend/internal/config"
	"github.com/readtrack/readtrack-backend/internal/model"
	"github.com/readtrack/readtrack-backend/internal/repository"
	"github.com/readtrack/readtrack-backend/internal/scoring"
)

// PacingService maintains the per-group pacing rollups: how far each
// group has worked through its assigned lesson slots and the status mix
// across them.
type PacingService struct {
	studentRepo *repository.StudentRepository
	ledgerRepo  *repository.LedgerRepository
	summaryRepo *repository.SummaryRepository
	groupView   *GroupViewService
	rdb         *redis.Client
	log         zerolog.Logger
}

// NewPacingService creates a new PacingService.
func NewPacingService(
	studentRepo *repository.StudentRepository,
	ledgerRepo *repository.LedgerRepository,
	summaryRepo *repository.SummaryRepository,
	groupView *GroupViewService,
	rdb *redis.Client,
	log zerolog.Logger,
) *PacingService {
	return &PacingService{
		studentRepo: studentRepo,
		ledgerRepo:  ledgerRepo,
		summaryRepo: summaryRepo,
		groupView:   groupView,
		rdb:         rdb,
		log:         log.With().Str("component", "pacing_service").Logger(),
	}
}

// RecomputeRollups rebuilds every group's pacing row from the logical
// group view and writes them to the derived table and the cache.
func (s *PacingService) RecomputeRollups(ctx context.Context) error {
	blocks, err := s.groupView.Blocks(ctx, "")
	if err != nil {
		return fmt.Errorf("build group view: %w", err)
	}
	groups, err := s.studentRepo.GroupSummaries(ctx)
	if err != nil {
		return fmt.Errorf("list groups: %w", err)
	}
	lastEntries, err := s.ledgerRepo.LastEntryByGroup(ctx)
	if err != nil {
		return fmt.Errorf("last entries: %w", err)
	}

	teacherByGroup := make(map[string]string, len(groups))
	for _, g := range groups {
		teacherByGroup[g.GroupName] = g.TeacherName
	}

	now := time.Now().UTC()
	rollups := make([]model.PacingRollup, 0, len(blocks))
	for i := range blocks {
		rollup := s.rollupBlock(&blocks[i], now)
		rollup.TeacherName = teacherByGroup[rollup.GroupName]
		if at, ok := lastEntries[rollup.GroupName]; ok {
			t := at
			rollup.LastEntryAt = &t
		}
		rollups = append(rollups, rollup)
	}

	if err := s.summaryRepo.UpsertPacingRollups(ctx, rollups); err != nil {
		return fmt.Errorf("upsert rollups: %w", err)
	}
	for i := range rollups {
		s.cacheRollup(ctx, &rollups[i])
	}
	s.log.Info().Int("groups", len(rollups)).Msg("Pacing rollups recomputed")
	return nil
}

// rollupBlock derives one group's pacing numbers from its view block.
// Rates divide by passed+failed+absent; the attempt pass rate leaves
// absences out. Both denominators are intentional.
func (s *PacingService) rollupBlock(block *model.GroupViewBlock, now time.Time) model.PacingRollup {
	assigned, tracked := 0, 0
	passed, notPassed, absent := 0, 0, 0
	var highest *int

	for li, col := range block.Lessons {
		if col.Number != nil {
			assigned++
		}
		columnTracked := false
		for si := range block.Students {
			switch model.Status(block.Cell(si, li)) {
			case model.StatusPassed:
				passed++
				columnTracked = true
			case model.StatusNotPassed:
				notPassed++
				columnTracked = true
			case model.StatusAbsent:
				absent++
				columnTracked = true
			}
		}
		if columnTracked {
			tracked++
			if col.Number != nil && (highest == nil || *col.Number > *highest) {
				n := *col.Number
				highest = &n
			}
		}
	}

	total := passed + notPassed + absent
	return model.PacingRollup{
		GroupName:       block.GroupName,
		Students:        len(block.Students),
		AssignedLessons: assigned,
		TrackedLessons:  tracked,
		PacingPct:       scoring.Percentage(tracked, assigned),
		HighestLesson:   highest,
		PassRate:        scoring.ResponseRatePct(passed, total),
		NotPassedRate:   scoring.ResponseRatePct(notPassed, total),
		AbsentRate:      scoring.ResponseRatePct(absent, total),
		AttemptPassRate: scoring.AttemptPassPct(passed, notPassed),
		ComputedAt:      now,
	}
}

// List returns every pacing row.
func (s *PacingService) List(ctx context.Context) ([]model.PacingRollup, error) {
	rollups, err := s.summaryRepo.ListPacingRollups(ctx)
	if err != nil {
		return nil, err
	}
	if rollups == nil {
		rollups = []model.PacingRollup{}
	}
	return rollups, nil
}

// Get returns one group's pacing row, cache first with a database
// fallback that heals the cache.
func (s *PacingService) Get(ctx context.Context, groupName string) (*model.PacingRollup, error) {
	cacheKey := config.CacheKey.GroupProgressKey(groupName)
	if raw, err := s.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
		cached := &model.PacingRollup{}
		if jerr := json.Unmarshal(raw, cached); jerr == nil {
			return cached, nil
		}
	}

	rollup, err := s.summaryRepo.GetPacingRollup(ctx, groupName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	s.cacheRollup(ctx, rollup)
	return rollup, nil
}

func (s *PacingService) cacheRollup(ctx context.Context, rollup *model.PacingRollup) {
	body, err := json.Marshal(rollup)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, config.CacheKey.GroupProgressKey(rollup.GroupName), body, 0).Err(); err != nil {
		s.log.Debug().Err(err).Str("group", rollup.GroupName).Msg("Pacing cache write failed")
	}
}
