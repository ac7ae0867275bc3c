package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/readtrack/readtrack-backend/internal/model"
)

// SummaryRepository stores the derived benchmark and pacing rows. Both
// tables are pure caches of the scoring output and can be recomputed
// from master records at any time.
type SummaryRepository struct {
	pool *pgxpool.Pool
}

// NewSummaryRepository creates a new SummaryRepository.
func NewSummaryRepository(pool *pgxpool.Pool) *SummaryRepository {
	return &SummaryRepository{pool: pool}
}

// UpsertBenchmarkSummaries replaces the per-student summary rows in one
// UNNEST statement.
func (r *SummaryRepository) UpsertBenchmarkSummaries(ctx context.Context, rows []model.BenchmarkSummary) error {
	if len(rows) == 0 {
		return nil
	}
	n := len(rows)
	ids := make([]uuid.UUID, 0, n)
	names := make([]string, 0, n)
	grades := make([]string, 0, n)
	teachers := make([]string, 0, n)
	groups := make([]string, 0, n)
	foundational := make([]int, 0, n)
	minimum := make([]int, 0, n)
	currentYear := make([]int, 0, n)
	statuses := make([]string, 0, n)
	computed := make([]time.Time, 0, n)

	// -1 carries the no-data sentinel through the int[] binding.
	deref := func(p *int) int {
		if p == nil {
			return -1
		}
		return *p
	}
	for _, row := range rows {
		ids = append(ids, row.StudentID)
		names = append(names, row.Name)
		grades = append(grades, row.Grade)
		teachers = append(teachers, row.TeacherName)
		groups = append(groups, row.GroupName)
		foundational = append(foundational, deref(row.FoundationalPct))
		minimum = append(minimum, deref(row.MinimumPct))
		currentYear = append(currentYear, deref(row.CurrentYearPct))
		statuses = append(statuses, row.BenchmarkStatus)
		computed = append(computed, row.ComputedAt)
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO benchmark_summaries (student_id, name, grade, teacher_name, group_name, foundational_pct, minimum_pct, current_year_pct, benchmark_status, computed_at)
		SELECT u.id, u.name, u.grade, u.teacher, u.grp,
		       NULLIF(u.foundational, -1), NULLIF(u.minimum, -1), NULLIF(u.current_year, -1),
		       u.status, u.computed
		FROM UNNEST(
			$1::uuid[], $2::text[], $3::text[], $4::text[], $5::text[],
			$6::int[], $7::int[], $8::int[], $9::text[], $10::timestamptz[]
		) AS u (id, name, grade, teacher, grp, foundational, minimum, current_year, status, computed)
		ON CONFLICT (student_id) DO UPDATE
		SET name = EXCLUDED.name,
		    grade = EXCLUDED.grade,
		    teacher_name = EXCLUDED.teacher_name,
		    group_name = EXCLUDED.group_name,
		    foundational_pct = EXCLUDED.foundational_pct,
		    minimum_pct = EXCLUDED.minimum_pct,
		    current_year_pct = EXCLUDED.current_year_pct,
		    benchmark_status = EXCLUDED.benchmark_status,
		    computed_at = EXCLUDED.computed_at`,
		ids, names, grades, teachers, groups, foundational, minimum, currentYear, statuses, computed,
	)
	return err
}

// ListBenchmarkSummaries retrieves summary rows with optional filters.
func (r *SummaryRepository) ListBenchmarkSummaries(ctx context.Context, groupName, grade string) ([]model.BenchmarkSummary, error) {
	where := ""
	var args []interface{}
	if groupName != "" {
		args = append(args, groupName)
		where = " WHERE group_name = $1"
	}
	if grade != "" {
		args = append(args, grade)
		prefix := " WHERE "
		if where != "" {
			prefix = " AND "
		}
		where += prefix + "grade = $" + strconv.Itoa(len(args))
	}

	rows, err := r.pool.Query(ctx,
		`SELECT student_id, name, grade, teacher_name, group_name, foundational_pct, minimum_pct, current_year_pct, benchmark_status, computed_at
		 FROM benchmark_summaries`+where+` ORDER BY name`, args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BenchmarkSummary
	for rows.Next() {
		var s model.BenchmarkSummary
		if err := rows.Scan(&s.StudentID, &s.Name, &s.Grade, &s.TeacherName, &s.GroupName, &s.FoundationalPct, &s.MinimumPct, &s.CurrentYearPct, &s.BenchmarkStatus, &s.ComputedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpsertPacingRollups replaces the per-group pacing rows.
func (r *SummaryRepository) UpsertPacingRollups(ctx context.Context, rollups []model.PacingRollup) error {
	for _, p := range rollups {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO pacing_rollups (group_name, teacher_name, students, assigned_lessons, tracked_lessons, pacing_pct, highest_lesson, last_entry_at, pass_rate, not_passed_rate, absent_rate, attempt_pass_rate, computed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			ON CONFLICT (group_name) DO UPDATE
			SET teacher_name = EXCLUDED.teacher_name,
			    students = EXCLUDED.students,
			    assigned_lessons = EXCLUDED.assigned_lessons,
			    tracked_lessons = EXCLUDED.tracked_lessons,
			    pacing_pct = EXCLUDED.pacing_pct,
			    highest_lesson = EXCLUDED.highest_lesson,
			    last_entry_at = EXCLUDED.last_entry_at,
			    pass_rate = EXCLUDED.pass_rate,
			    not_passed_rate = EXCLUDED.not_passed_rate,
			    absent_rate = EXCLUDED.absent_rate,
			    attempt_pass_rate = EXCLUDED.attempt_pass_rate,
			    computed_at = EXCLUDED.computed_at`,
			p.GroupName, p.TeacherName, p.Students, p.AssignedLessons, p.TrackedLessons,
			p.PacingPct, p.HighestLesson, p.LastEntryAt,
			p.PassRate, p.NotPassedRate, p.AbsentRate, p.AttemptPassRate, p.ComputedAt,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// ListPacingRollups retrieves every pacing row.
func (r *SummaryRepository) ListPacingRollups(ctx context.Context) ([]model.PacingRollup, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT group_name, teacher_name, students, assigned_lessons, tracked_lessons, pacing_pct, highest_lesson, last_entry_at, pass_rate, not_passed_rate, absent_rate, attempt_pass_rate, computed_at
		 FROM pacing_rollups ORDER BY group_name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PacingRollup
	for rows.Next() {
		var p model.PacingRollup
		if err := rows.Scan(&p.GroupName, &p.TeacherName, &p.Students, &p.AssignedLessons, &p.TrackedLessons, &p.PacingPct, &p.HighestLesson, &p.LastEntryAt, &p.PassRate, &p.NotPassedRate, &p.AbsentRate, &p.AttemptPassRate, &p.ComputedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetPacingRollup retrieves one group's pacing row.
func (r *SummaryRepository) GetPacingRollup(ctx context.Context, groupName string) (*model.PacingRollup, error) {
	p := &model.PacingRollup{}
	err := r.pool.QueryRow(ctx,
		`SELECT group_name, teacher_name, students, assigned_lessons, tracked_lessons, pacing_pct, highest_lesson, last_entry_at, pass_rate, not_passed_rate, absent_rate, attempt_pass_rate, computed_at
		 FROM pacing_rollups WHERE group_name = $1`, groupName,
	).Scan(&p.GroupName, &p.TeacherName, &p.Students, &p.AssignedLessons, &p.TrackedLessons, &p.PacingPct, &p.HighestLesson, &p.LastEntryAt, &p.PassRate, &p.NotPassedRate, &p.AbsentRate, &p.AttemptPassRate, &p.ComputedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}
