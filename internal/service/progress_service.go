package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/readtrack/readtrack-backend/internal/config"
	"github.com/readtrack/readtrack-backend/internal/model"
	"github.com/readtrack/readtrack-backend/internal/repository"
	"github.com/readtrack/readtrack-backend/internal/scoring"
)

const progressCacheTTL = 5 * time.Minute

// GroupProgress aggregates benchmark metrics over one group's active
// students. Averages skip students without data.
type GroupProgress struct {
	GroupName          string `json:"group_name"`
	TeacherName        string `json:"teacher_name"`
	Students           int    `json:"students"`
	AvgFoundationalPct *int   `json:"avg_foundational_pct"`
	AvgMinimumPct      *int   `json:"avg_minimum_pct"`
	AvgCurrentYearPct  *int   `json:"avg_current_year_pct"`
	OnTrack            int    `json:"on_track"`
	NeedsSupport       int    `json:"needs_support"`
	Intervention       int    `json:"intervention"`
}

// GradeProgress is the same rollup keyed by grade.
type GradeProgress struct {
	Grade              string `json:"grade"`
	Students           int    `json:"students"`
	AvgFoundationalPct *int   `json:"avg_foundational_pct"`
	AvgMinimumPct      *int   `json:"avg_minimum_pct"`
	AvgCurrentYearPct  *int   `json:"avg_current_year_pct"`
	OnTrack            int    `json:"on_track"`
	NeedsSupport       int    `json:"needs_support"`
	Intervention       int    `json:"intervention"`
}

// ProgressService computes per-student progress and maintains the
// derived benchmark summary table.
type ProgressService struct {
	studentRepo *repository.StudentRepository
	summaryRepo *repository.SummaryRepository
	engine      *scoring.Engine
	rdb         *redis.Client
	log         zerolog.Logger
}

// NewProgressService creates a new ProgressService.
func NewProgressService(
	studentRepo *repository.StudentRepository,
	summaryRepo *repository.SummaryRepository,
	engine *scoring.Engine,
	rdb *redis.Client,
	log zerolog.Logger,
) *ProgressService {
	return &ProgressService{
		studentRepo: studentRepo,
		summaryRepo: summaryRepo,
		engine:      engine,
		rdb:         rdb,
		log:         log.With().Str("component", "progress_service").Logger(),
	}
}

// StudentProgress returns the full progress report for one student:
// section breakdown over the growth-suppressed merge plus benchmark
// metrics. Served from cache when fresh.
func (s *ProgressService) StudentProgress(ctx context.Context, id uuid.UUID) (*model.StudentProgress, error) {
	cacheKey := config.CacheKey.StudentProgressKey(id.String())
	if raw, err := s.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
		cached := &model.StudentProgress{}
		if jerr := json.Unmarshal(raw, cached); jerr == nil {
			return cached, nil
		}
	}

	rec, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := scoring.MergeForGrowthSuppression(rec.StatusVector, rec.BaselineVector)
	progress := &model.StudentProgress{
		Student:    *rec,
		Sections:   s.engine.AllSections(merged, false),
		Benchmarks: s.engine.Metrics(rec),
	}

	if body, err := json.Marshal(progress); err == nil {
		if err := s.rdb.Set(ctx, cacheKey, body, progressCacheTTL).Err(); err != nil {
			s.log.Debug().Err(err).Msg("Progress cache write failed")
		}
	}
	return progress, nil
}

// RecomputeBenchmarks rebuilds the benchmark summary table from master
// records and drops stale progress cache entries.
func (s *ProgressService) RecomputeBenchmarks(ctx context.Context) error {
	students, err := s.studentRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list students: %w", err)
	}

	now := time.Now().UTC()
	rows := make([]model.BenchmarkSummary, 0, len(students))
	cacheKeys := make([]string, 0, len(students))
	for i := range students {
		rec := &students[i]
		if rec.Enrollment != model.EnrollmentActive {
			continue
		}
		m := s.engine.Metrics(rec)
		rows = append(rows, model.BenchmarkSummary{
			StudentID:       rec.ID,
			Name:            rec.Name,
			Grade:           rec.Grade,
			TeacherName:     rec.TeacherName,
			GroupName:       rec.GroupName,
			FoundationalPct: m.FoundationalPct,
			MinimumPct:      m.MinimumPct,
			CurrentYearPct:  m.CurrentYearPct,
			BenchmarkStatus: m.BenchmarkStatus,
			ComputedAt:      now,
		})
		cacheKeys = append(cacheKeys, config.CacheKey.StudentProgressKey(rec.ID.String()))
	}

	if err := s.summaryRepo.UpsertBenchmarkSummaries(ctx, rows); err != nil {
		return fmt.Errorf("upsert summaries: %w", err)
	}
	if len(cacheKeys) > 0 {
		if err := s.rdb.Del(ctx, cacheKeys...).Err(); err != nil {
			s.log.Debug().Err(err).Msg("Progress cache invalidation failed")
		}
	}
	s.log.Info().Int("students", len(rows)).Msg("Benchmark summaries recomputed")
	return nil
}

// ListBenchmarks serves summary rows with optional group/grade filters.
func (s *ProgressService) ListBenchmarks(ctx context.Context, groupName, grade string) ([]model.BenchmarkSummary, error) {
	rows, err := s.summaryRepo.ListBenchmarkSummaries(ctx, groupName, grade)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []model.BenchmarkSummary{}
	}
	return rows, nil
}

// GroupRollups aggregates the summary table per group.
func (s *ProgressService) GroupRollups(ctx context.Context) ([]GroupProgress, error) {
	rows, err := s.summaryRepo.ListBenchmarkSummaries(ctx, "", "")
	if err != nil {
		return nil, err
	}

	byGroup := make(map[string]*GroupProgress)
	var order []string
	for i := range rows {
		row := &rows[i]
		g, ok := byGroup[row.GroupName]
		if !ok {
			g = &GroupProgress{GroupName: row.GroupName, TeacherName: row.TeacherName}
			byGroup[row.GroupName] = g
			order = append(order, row.GroupName)
		}
		g.Students++
		countStatus(row.BenchmarkStatus, &g.OnTrack, &g.NeedsSupport, &g.Intervention)
	}

	out := make([]GroupProgress, 0, len(order))
	for _, name := range order {
		g := byGroup[name]
		g.AvgFoundationalPct = avgPct(rows, func(r *model.BenchmarkSummary) (*int, bool) {
			return r.FoundationalPct, r.GroupName == name
		})
		g.AvgMinimumPct = avgPct(rows, func(r *model.BenchmarkSummary) (*int, bool) {
			return r.MinimumPct, r.GroupName == name
		})
		g.AvgCurrentYearPct = avgPct(rows, func(r *model.BenchmarkSummary) (*int, bool) {
			return r.CurrentYearPct, r.GroupName == name
		})
		out = append(out, *g)
	}
	return out, nil
}

// GradeRollups aggregates the summary table per grade.
func (s *ProgressService) GradeRollups(ctx context.Context) ([]GradeProgress, error) {
	rows, err := s.summaryRepo.ListBenchmarkSummaries(ctx, "", "")
	if err != nil {
		return nil, err
	}

	byGrade := make(map[string]*GradeProgress)
	var order []string
	for i := range rows {
		row := &rows[i]
		g, ok := byGrade[row.Grade]
		if !ok {
			g = &GradeProgress{Grade: row.Grade}
			byGrade[row.Grade] = g
			order = append(order, row.Grade)
		}
		g.Students++
		countStatus(row.BenchmarkStatus, &g.OnTrack, &g.NeedsSupport, &g.Intervention)
	}

	out := make([]GradeProgress, 0, len(order))
	for _, grade := range order {
		g := byGrade[grade]
		g.AvgFoundationalPct = avgPct(rows, func(r *model.BenchmarkSummary) (*int, bool) {
			return r.FoundationalPct, r.Grade == grade
		})
		g.AvgMinimumPct = avgPct(rows, func(r *model.BenchmarkSummary) (*int, bool) {
			return r.MinimumPct, r.Grade == grade
		})
		g.AvgCurrentYearPct = avgPct(rows, func(r *model.BenchmarkSummary) (*int, bool) {
			return r.CurrentYearPct, r.Grade == grade
		})
		out = append(out, *g)
	}
	return out, nil
}

func countStatus(status string, onTrack, needsSupport, intervention *int) {
	switch status {
	case model.BenchmarkOnTrack:
		*onTrack++
	case model.BenchmarkNeedsSupport:
		*needsSupport++
	default:
		*intervention++
	}
}

// avgPct averages the selected percentages, skipping rows the selector
// excludes and nil values. Returns nil when nothing contributed.
func avgPct(rows []model.BenchmarkSummary, sel func(*model.BenchmarkSummary) (*int, bool)) *int {
	sum, n := 0, 0
	for i := range rows {
		pct, include := sel(&rows[i])
		if !include || pct == nil {
			continue
		}
		sum += *pct
		n++
	}
	if n == 0 {
		return nil
	}
	avg := (sum + n/2) / n
	return &avg
}
