package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/readtrack/readtrack-backend/internal/model"
)

var (
	ErrDuplicateStudent = errors.New("student with this name already exists")
	ErrStudentNotFound  = errors.New("student not found")
)

const studentColumns = `id, name, name_key, grade, teacher_name, group_name,
	current_lesson_label, current_lesson_number, enrollment,
	status_vector, baseline_vector,
	enrolled_at, unenrolled_at, last_entry_at, created_at, updated_at`

// StudentRepository handles master record access.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

func scanStudent(row pgx.Row) (*model.StudentRecord, error) {
	s := &model.StudentRecord{}
	var statusVec, baselineVec []byte
	err := row.Scan(&s.ID, &s.Name, &s.NameKey, &s.Grade, &s.TeacherName, &s.GroupName,
		&s.CurrentLessonLabel, &s.CurrentLessonNumber, &s.Enrollment,
		&statusVec, &baselineVec,
		&s.EnrolledAt, &s.UnenrolledAt, &s.LastEntryAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(statusVec, &s.StatusVector); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(baselineVec, &s.BaselineVector); err != nil {
		return nil, err
	}
	return s, nil
}

// GetByID retrieves one master record.
func (r *StudentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.StudentRecord, error) {
	return scanStudent(r.pool.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id = $1`, id))
}

// GetByNameKey retrieves one master record by normalized name.
func (r *StudentRepository) GetByNameKey(ctx context.Context, nameKey string) (*model.StudentRecord, error) {
	return scanStudent(r.pool.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE name_key = $1`, nameKey))
}

// ListPaginated retrieves master records with optional filters.
func (r *StudentRepository) ListPaginated(ctx context.Context, f model.StudentFilter, limit, offset int) ([]model.StudentRecord, int, error) {
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
	if f.Grade != "" {
		addCond("grade = ", f.Grade)
	}
	if f.Enrollment != "" {
		addCond("enrollment = ", string(f.Enrollment))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM students`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := `SELECT ` + studentColumns + ` FROM students` + where +
		` ORDER BY name LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var students []model.StudentRecord
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, 0, err
		}
		students = append(students, *s)
	}
	return students, total, rows.Err()
}

// ListAll retrieves every master record, for rebuilds and rollups.
func (r *StudentRepository) ListAll(ctx context.Context) ([]model.StudentRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+studentColumns+` FROM students ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []model.StudentRecord
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, *s)
	}
	return students, rows.Err()
}

// Create inserts a new master record with empty vectors.
func (r *StudentRepository) Create(ctx context.Context, s *model.StudentRecord) error {
	statusVec, err := json.Marshal(s.StatusVector)
	if err != nil {
		return err
	}
	baselineVec, err := json.Marshal(s.BaselineVector)
	if err != nil {
		return err
	}
	err = r.pool.QueryRow(ctx,
		`INSERT INTO students (name, name_key, grade, teacher_name, group_name, enrollment, status_vector, baseline_vector, enrolled_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at, updated_at`,
		s.Name, s.NameKey, s.Grade, s.TeacherName, s.GroupName, s.Enrollment, statusVec, baselineVec, s.EnrolledAt,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateStudent
		}
		return err
	}
	return nil
}

// UpdatePlacement reassigns grade, teacher and group.
func (r *StudentRepository) UpdatePlacement(ctx context.Context, id uuid.UUID, grade, teacherName, groupName string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE students
		 SET grade = COALESCE(NULLIF($1, ''), grade),
		     teacher_name = COALESCE(NULLIF($2, ''), teacher_name),
		     group_name = COALESCE(NULLIF($3, ''), group_name),
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = $4`,
		grade, teacherName, groupName, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStudentNotFound
	}
	return nil
}

// Reactivate flips an unenrolled record back to active.
func (r *StudentRepository) Reactivate(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE students
		 SET enrollment = $1, enrolled_at = $2, unenrolled_at = NULL, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $3`,
		model.EnrollmentActive, at, id,
	)
	return err
}

// Unenroll marks a record unenrolled. Runs inside the caller's
// transaction when one is in flight.
func (r *StudentRepository) Unenroll(ctx context.Context, q Querier, id uuid.UUID, at time.Time) error {
	_, err := q.Exec(ctx,
		`UPDATE students
		 SET enrollment = $1, unenrolled_at = $2, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $3`,
		model.EnrollmentUnenrolled, at, id,
	)
	return err
}

// PatchLessonStatus writes one lesson cell on one record. Used by the
// immediate echo path; the queue fold overwrites the same cell later.
func (r *StudentRepository) PatchLessonStatus(ctx context.Context, id uuid.UUID, lessonKey string, status model.Status, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE students
		 SET status_vector = jsonb_set(status_vector, ARRAY[$1], to_jsonb($2::text), true),
		     last_entry_at = GREATEST(last_entry_at, $3::timestamptz),
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = $4`,
		lessonKey, string(status), at, id,
	)
	return err
}

// PatchCurrentLesson overwrites the derived current-lesson pointer.
func (r *StudentRepository) PatchCurrentLesson(ctx context.Context, id uuid.UUID, label string, number int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE students
		 SET current_lesson_label = $1, current_lesson_number = $2, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $3`,
		label, number, id,
	)
	return err
}

// BulkSetLessonStatus writes one lesson column across many records in a
// single UNNEST update.
func (r *StudentRepository) BulkSetLessonStatus(ctx context.Context, q Querier, lessonKey string, ids []uuid.UUID, statuses []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := q.Exec(ctx, `
		UPDATE students AS s
		SET status_vector = jsonb_set(s.status_vector, ARRAY[$1], to_jsonb(t.status), true),
		    last_entry_at = GREATEST(s.last_entry_at, $4::timestamptz),
		    updated_at = CURRENT_TIMESTAMP
		FROM (
			SELECT u.id, u.status
			FROM UNNEST($2::uuid[], $3::text[]) AS u (id, status)
		) AS t
		WHERE s.id = t.id`,
		lessonKey, ids, statuses, at,
	)
	return err
}

// BulkSetCurrentLesson overwrites the current-lesson pointer for many
// records in one UNNEST update. A zero number clears the pointer.
func (r *StudentRepository) BulkSetCurrentLesson(ctx context.Context, q Querier, ids []uuid.UUID, labels []string, numbers []int) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := q.Exec(ctx, `
		UPDATE students AS s
		SET current_lesson_label = t.label,
		    current_lesson_number = NULLIF(t.num, 0),
		    updated_at = CURRENT_TIMESTAMP
		FROM (
			SELECT u.id, u.label, u.num
			FROM UNNEST($1::uuid[], $2::text[], $3::int[]) AS u (id, label, num)
		) AS t
		WHERE s.id = t.id`,
		ids, labels, numbers,
	)
	return err
}

// ReplaceSnapshots writes whole rebuilt snapshots back: vector, pointer
// and last-entry time per student, one UNNEST update for all of them.
func (r *StudentRepository) ReplaceSnapshots(ctx context.Context, q Querier, recs []model.StudentRecord) error {
	if len(recs) == 0 {
		return nil
	}
	n := len(recs)
	ids := make([]uuid.UUID, 0, n)
	vectors := make([]string, 0, n)
	labels := make([]string, 0, n)
	numbers := make([]int, 0, n)
	lastEntries := make([]time.Time, 0, n)
	for _, rec := range recs {
		raw, err := json.Marshal(rec.StatusVector)
		if err != nil {
			return err
		}
		num := 0
		if rec.CurrentLessonNumber != nil {
			num = *rec.CurrentLessonNumber
		}
		lastEntry := time.Time{}
		if rec.LastEntryAt != nil {
			lastEntry = *rec.LastEntryAt
		}
		ids = append(ids, rec.ID)
		vectors = append(vectors, string(raw))
		labels = append(labels, rec.CurrentLessonLabel)
		numbers = append(numbers, num)
		lastEntries = append(lastEntries, lastEntry)
	}

	_, err := q.Exec(ctx, `
		UPDATE students AS s
		SET status_vector = t.vector,
		    current_lesson_label = t.label,
		    current_lesson_number = NULLIF(t.num, 0),
		    last_entry_at = NULLIF(t.last_entry, '0001-01-01 00:00:00+00'::timestamptz),
		    updated_at = CURRENT_TIMESTAMP
		FROM (
			SELECT u.id, u.vector, u.label, u.num, u.last_entry
			FROM UNNEST($1::uuid[], $2::jsonb[], $3::text[], $4::int[], $5::timestamptz[])
			AS u (id, vector, label, num, last_entry)
		) AS t
		WHERE s.id = t.id`,
		ids, vectors, labels, numbers, lastEntries,
	)
	return err
}

// SetBaselineVector replaces one record's baseline vector.
func (r *StudentRepository) SetBaselineVector(ctx context.Context, q Querier, id uuid.UUID, vec model.StatusVector) error {
	raw, err := json.Marshal(vec)
	if err != nil {
		return err
	}
	_, err = q.Exec(ctx,
		`UPDATE students SET baseline_vector = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		raw, id,
	)
	return err
}

// SetStatusVector replaces one record's full status vector.
func (r *StudentRepository) SetStatusVector(ctx context.Context, q Querier, id uuid.UUID, vec model.StatusVector) error {
	raw, err := json.Marshal(vec)
	if err != nil {
		return err
	}
	_, err = q.Exec(ctx,
		`UPDATE students SET status_vector = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		raw, id,
	)
	return err
}

// TouchLastEntry advances last_entry_at for the given records. GREATEST
// keeps an already-later timestamp in place.
func (r *StudentRepository) TouchLastEntry(ctx context.Context, q Querier, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := q.Exec(ctx,
		`UPDATE students
		 SET last_entry_at = GREATEST(last_entry_at, $1::timestamptz),
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ANY($2)`,
		at, ids,
	)
	return err
}

// GroupSummaries aggregates the roster per group.
func (r *StudentRepository) GroupSummaries(ctx context.Context) ([]model.GroupSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT group_name,
		       MAX(teacher_name),
		       COUNT(*),
		       COUNT(*) FILTER (WHERE enrollment = 'active'),
		       MAX(last_entry_at)
		FROM students
		GROUP BY group_name
		ORDER BY group_name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []model.GroupSummary
	for rows.Next() {
		var g model.GroupSummary
		if err := rows.Scan(&g.GroupName, &g.TeacherName, &g.StudentCount, &g.ActiveCount, &g.LastEntryAt); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}
