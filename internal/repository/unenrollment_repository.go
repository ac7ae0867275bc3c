package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/readtrack/readtrack-backend/internal/model"
)

var ErrExitLogNotFound = errors.New("unenrollment log not found")

const exitLogColumns = `id, student_id, student_name, group_name, reported_by,
	reported_at, lesson_at_exit, status, archived_vector, archived_baseline, notes`

// UnenrollmentRepository stores exit logs with their archived vectors.
type UnenrollmentRepository struct {
	pool *pgxpool.Pool
}

// NewUnenrollmentRepository creates a new UnenrollmentRepository.
func NewUnenrollmentRepository(pool *pgxpool.Pool) *UnenrollmentRepository {
	return &UnenrollmentRepository{pool: pool}
}

func scanExitLog(row pgx.Row) (*model.UnenrollmentLog, error) {
	l := &model.UnenrollmentLog{}
	var vec, baseline []byte
	err := row.Scan(&l.ID, &l.StudentID, &l.StudentName, &l.GroupName, &l.ReportedBy,
		&l.ReportedAt, &l.LessonAtExit, &l.Status, &vec, &baseline, &l.Notes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExitLogNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(vec, &l.ArchivedVector); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(baseline, &l.ArchivedBaseline); err != nil {
		return nil, err
	}
	return l, nil
}

// Insert writes one exit log inside the caller's transaction. A blank
// status starts as pending.
func (r *UnenrollmentRepository) Insert(ctx context.Context, q Querier, l *model.UnenrollmentLog) error {
	if l.Status == "" {
		l.Status = model.ExitPending
	}
	vec, err := json.Marshal(l.ArchivedVector)
	if err != nil {
		return err
	}
	baseline, err := json.Marshal(l.ArchivedBaseline)
	if err != nil {
		return err
	}
	return q.QueryRow(ctx,
		`INSERT INTO unenrollment_logs (student_id, student_name, group_name, reported_by, reported_at, lesson_at_exit, status, archived_vector, archived_baseline, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id`,
		l.StudentID, l.StudentName, l.GroupName, l.ReportedBy, l.ReportedAt, l.LessonAtExit, l.Status, vec, baseline, l.Notes,
	).Scan(&l.ID)
}

// GetByID retrieves one exit log.
func (r *UnenrollmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.UnenrollmentLog, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+exitLogColumns+` FROM unenrollment_logs WHERE id = $1`, id)
	return scanExitLog(row)
}

// SetStatus moves one exit log through its review states. Extra notes are
// appended to the log's existing notes.
func (r *UnenrollmentRepository) SetStatus(ctx context.Context, id uuid.UUID, status model.ExitStatus, notes string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE unenrollment_logs
		 SET status = $1,
		     notes = CASE WHEN $2 = '' THEN notes
		                  WHEN notes = '' THEN $2
		                  ELSE notes || E'\n' || $2 END
		 WHERE id = $3`,
		status, notes, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrExitLogNotFound
	}
	return nil
}

// ListPaginated retrieves exit logs, newest first, optionally narrowed to
// one review status.
func (r *UnenrollmentRepository) ListPaginated(ctx context.Context, status model.ExitStatus, limit, offset int) ([]model.UnenrollmentLog, int, error) {
	where := ``
	args := []interface{}{}
	if status != "" {
		where = ` WHERE status = $1`
		args = append(args, status)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM unenrollment_logs`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx,
		`SELECT `+exitLogColumns+`
		 FROM unenrollment_logs`+where+`
		 ORDER BY reported_at DESC
		 LIMIT $`+strconv.Itoa(len(args)-1)+` OFFSET $`+strconv.Itoa(len(args)),
		args...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var logs []model.UnenrollmentLog
	for rows.Next() {
		l, err := scanExitLog(rows)
		if err != nil {
			return nil, 0, err
		}
		logs = append(logs, *l)
	}
	return logs, total, rows.Err()
}
