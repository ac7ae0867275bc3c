package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/readtrack/readtrack-backend/internal/model"
)

// LedgerRepository is the append-only progress ledger. There are no
// update or delete statements here on purpose: corrections are new rows.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// Append inserts one check-in event.
func (r *LedgerRepository) Append(ctx context.Context, e *model.CheckinEvent) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO checkin_events (occurred_at, teacher_name, group_name, student_name, lesson_label, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		e.OccurredAt, e.TeacherName, e.GroupName, e.StudentName, e.LessonLabel, e.Status,
	).Scan(&e.ID, &e.CreatedAt)
}

// AppendBatch inserts many events in one statement. Pass a transaction as q
// when the append must commit together with other writes.
func (r *LedgerRepository) AppendBatch(ctx context.Context, q Querier, events []model.CheckinEvent) error {
	if len(events) == 0 {
		return nil
	}
	n := len(events)
	occurred := make([]time.Time, 0, n)
	teachers := make([]string, 0, n)
	groups := make([]string, 0, n)
	studentNames := make([]string, 0, n)
	lessons := make([]string, 0, n)
	statuses := make([]string, 0, n)
	for _, e := range events {
		occurred = append(occurred, e.OccurredAt)
		teachers = append(teachers, e.TeacherName)
		groups = append(groups, e.GroupName)
		studentNames = append(studentNames, e.StudentName)
		lessons = append(lessons, e.LessonLabel)
		statuses = append(statuses, string(e.Status))
	}

	_, err := q.Exec(ctx, `
		INSERT INTO checkin_events (occurred_at, teacher_name, group_name, student_name, lesson_label, status)
		SELECT u.occurred_at, u.teacher_name, u.group_name, u.student_name, u.lesson_label, u.status
		FROM UNNEST(
			$1::timestamptz[],
			$2::text[],
			$3::text[],
			$4::text[],
			$5::text[],
			$6::text[]
		) AS u (occurred_at, teacher_name, group_name, student_name, lesson_label, status)`,
		occurred, teachers, groups, studentNames, lessons, statuses,
	)
	return err
}

// ReadAllOrdered streams the full ledger in replay order: occurred_at
// first, insertion order breaking exact-timestamp ties.
func (r *LedgerRepository) ReadAllOrdered(ctx context.Context) ([]model.CheckinEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, occurred_at, teacher_name, group_name, student_name, lesson_label, status, created_at
		 FROM checkin_events
		 ORDER BY occurred_at, created_at, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.CheckinEvent
	for rows.Next() {
		var e model.CheckinEvent
		if err := rows.Scan(&e.ID, &e.OccurredAt, &e.TeacherName, &e.GroupName, &e.StudentName, &e.LessonLabel, &e.Status, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// ListPaginated retrieves events with optional filters, newest first.
func (r *LedgerRepository) ListPaginated(ctx context.Context, f model.CheckinFilter, limit, offset int) ([]model.CheckinEvent, int, error) {
	where := ""
	var args []interface{}
	addCond := func(cond string, val interface{}) {
		args = append(args, val)
		prefix := " WHERE "
		if where != "" {
			prefix = " AND "
		}
		where += prefix + cond + "$" + strconv.Itoa(len(args))
	}
	if f.GroupName != "" {
		addCond("group_name = ", f.GroupName)
	}
	if f.StudentName != "" {
		addCond("student_name = ", f.StudentName)
	}
	if f.From != nil {
		addCond("occurred_at >= ", *f.From)
	}
	if f.To != nil {
		addCond("occurred_at < ", *f.To)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM checkin_events`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := `SELECT id, occurred_at, teacher_name, group_name, student_name, lesson_label, status, created_at
		 FROM checkin_events` + where +
		` ORDER BY occurred_at DESC, created_at DESC LIMIT $` + strconv.Itoa(len(args)-1) +
		` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var events []model.CheckinEvent
	for rows.Next() {
		var e model.CheckinEvent
		if err := rows.Scan(&e.ID, &e.OccurredAt, &e.TeacherName, &e.GroupName, &e.StudentName, &e.LessonLabel, &e.Status, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	return events, total, rows.Err()
}

// Recent aggregates the latest submissions: one row per (occurred_at,
// teacher, group, lesson) with the per-student outcomes folded in.
func (r *LedgerRepository) Recent(ctx context.Context, limit int) ([]model.RecentEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT occurred_at, teacher_name, group_name, lesson_label,
		       json_agg(json_build_object('student_name', student_name, 'status', status) ORDER BY student_name)
		FROM checkin_events
		GROUP BY occurred_at, teacher_name, group_name, lesson_label
		ORDER BY occurred_at DESC
		LIMIT $1`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.RecentEntry
	for rows.Next() {
		var e model.RecentEntry
		if err := rows.Scan(&e.OccurredAt, &e.TeacherName, &e.GroupName, &e.LessonLabel, &e.Statuses); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// LastEntryByGroup returns each group's most recent event time.
func (r *LedgerRepository) LastEntryByGroup(ctx context.Context) (map[string]time.Time, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT group_name, MAX(occurred_at) FROM checkin_events GROUP BY group_name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]time.Time)
	for rows.Next() {
		var group string
		var at time.Time
		if err := rows.Scan(&group, &at); err != nil {
			return nil, err
		}
		out[group] = at
	}
	return out, rows.Err()
}
