package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/readtrack/readtrack-backend/internal/model"
)

// QueueRepository stores deferred sync entries. processed_at is the
// at-most-once marker: folds only ever read NULL rows and stamp them in
// the same transaction.
type QueueRepository struct {
	pool *pgxpool.Pool
}

// NewQueueRepository creates a new QueueRepository.
func NewQueueRepository(pool *pgxpool.Pool) *QueueRepository {
	return &QueueRepository{pool: pool}
}

// Enqueue inserts one entry.
func (r *QueueRepository) Enqueue(ctx context.Context, e *model.SyncQueueEntry) error {
	statuses, err := json.Marshal(e.Statuses)
	if err != nil {
		return err
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO sync_queue_entries (enqueued_at, group_name, lesson_label, lesson_number, statuses)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		e.EnqueuedAt, e.GroupName, e.LessonLabel, e.LessonNumber, statuses,
	).Scan(&e.ID)
}

// PendingOrdered reads every unprocessed entry in enqueue order.
func (r *QueueRepository) PendingOrdered(ctx context.Context, q Querier) ([]model.SyncQueueEntry, error) {
	rows, err := q.Query(ctx,
		`SELECT id, enqueued_at, group_name, lesson_label, lesson_number, statuses, processed_at
		 FROM sync_queue_entries
		 WHERE processed_at IS NULL
		 ORDER BY enqueued_at, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.SyncQueueEntry
	for rows.Next() {
		var e model.SyncQueueEntry
		var statuses []byte
		if err := rows.Scan(&e.ID, &e.EnqueuedAt, &e.GroupName, &e.LessonLabel, &e.LessonNumber, &statuses, &e.ProcessedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(statuses, &e.Statuses); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// MarkProcessed stamps the fold time on every folded entry.
func (r *QueueRepository) MarkProcessed(ctx context.Context, q Querier, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := q.Exec(ctx,
		`UPDATE sync_queue_entries SET processed_at = $1 WHERE id = ANY($2::uuid[])`,
		at, ids,
	)
	return err
}

// PurgeProcessedBefore deletes processed entries older than the cutoff
// and returns how many were removed.
func (r *QueueRepository) PurgeProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM sync_queue_entries
		 WHERE processed_at IS NOT NULL AND enqueued_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Stats reports pending/processed counts for the admin surface.
func (r *QueueRepository) Stats(ctx context.Context) (*model.QueueStats, error) {
	s := &model.QueueStats{}
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE processed_at IS NULL),
		       COUNT(*) FILTER (WHERE processed_at IS NOT NULL),
		       MIN(enqueued_at) FILTER (WHERE processed_at IS NULL),
		       MAX(processed_at)
		FROM sync_queue_entries`,
	).Scan(&s.Pending, &s.Processed, &s.OldestPendingAt, &s.LastProcessedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}
