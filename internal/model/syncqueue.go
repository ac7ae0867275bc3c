package model

import (
	"time"

	"github.com/google/uuid"
)

// SyncQueueEntry is one deferred aggregation unit: the statuses recorded
// for a single (group, lesson) column in one submission. processed_at is
// the at-most-once marker; a non-null value permanently excludes the
// entry from future folds.
type SyncQueueEntry struct {
	ID           uuid.UUID           `json:"id"`
	EnqueuedAt   time.Time           `json:"enqueued_at"`
	GroupName    string              `json:"group_name"`
	LessonLabel  string              `json:"lesson_label"`
	LessonNumber *int                `json:"lesson_number,omitempty"`
	Statuses     []StudentStatusMark `json:"statuses"`
	ProcessedAt  *time.Time          `json:"processed_at,omitempty"`
}

// QueueStats reports queue health for the admin endpoint.
type QueueStats struct {
	Pending         int        `json:"pending"`
	Processed       int        `json:"processed"`
	OldestPendingAt *time.Time `json:"oldest_pending_at,omitempty"`
	LastProcessedAt *time.Time `json:"last_processed_at,omitempty"`
}

// SyncRunReport summarizes one queue fold.
type SyncRunReport struct {
	EntriesFolded   int       `json:"entries_folded"`
	StudentsTouched int       `json:"students_touched"`
	LessonsTouched  int       `json:"lessons_touched"`
	EntriesPurged   int       `json:"entries_purged"`
	ElapsedMS       int64     `json:"elapsed_ms"`
	RanAt           time.Time `json:"ran_at"`
}

// RebuildReport summarizes one full ledger replay.
type RebuildReport struct {
	EventsReplayed  int       `json:"events_replayed"`
	EventsSkipped   int       `json:"events_skipped"`
	StudentsRebuilt int       `json:"students_rebuilt"`
	ElapsedMS       int64     `json:"elapsed_ms"`
	RanAt           time.Time `json:"ran_at"`
}
