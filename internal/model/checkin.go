package model

import (
	"time"

	"github.com/google/uuid"
)

// CheckinEvent is one row of the append-only progress ledger. Rows are
// never updated or deleted; corrections are appended as new rows.
type CheckinEvent struct {
	ID          uuid.UUID `json:"id"`
	OccurredAt  time.Time `json:"occurred_at"`
	TeacherName string    `json:"teacher_name"`
	GroupName   string    `json:"group_name"`
	StudentName string    `json:"student_name"`
	LessonLabel string    `json:"lesson_label"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// StudentStatusMark pairs a student name with a status letter inside a
// submission or queue entry.
type StudentStatusMark struct {
	StudentName string `json:"student_name" binding:"required,min=1,max=255"`
	Status      string `json:"status" binding:"required,len=1"`
}

// SubmitCheckinRequest is the payload of a check-in submission: one
// lesson column for one group, statuses for any subset of its students.
type SubmitCheckinRequest struct {
	TeacherName string              `json:"teacher_name" binding:"required,min=1,max=255"`
	GroupName   string              `json:"group_name" binding:"required,min=1,max=255"`
	LessonLabel string              `json:"lesson_label" binding:"required,min=1,max=255"`
	OccurredAt  *time.Time          `json:"occurred_at" binding:"omitempty"`
	Statuses    []StudentStatusMark `json:"statuses" binding:"omitempty,dive"`
	Unenrolled  []string            `json:"unenrolled" binding:"omitempty,dive,min=1"`
	Notes       string              `json:"notes" binding:"omitempty,max=2000"`
}

// SubmitCheckinResult summarizes what a submission did.
type SubmitCheckinResult struct {
	EventsAppended int       `json:"events_appended"`
	Enqueued       bool      `json:"enqueued"`
	QueueEntryID   uuid.UUID `json:"queue_entry_id"`
	EchoApplied    bool      `json:"echo_applied"`
	Unenrolled     []string  `json:"unenrolled,omitempty"`
}

// CheckinFilter narrows ledger queries.
type CheckinFilter struct {
	GroupName   string
	StudentName string
	From        *time.Time
	To          *time.Time
}

// RecentEntry is an aggregated dashboard row: one (group, lesson) column
// submission with its per-student outcomes.
type RecentEntry struct {
	OccurredAt  time.Time           `json:"occurred_at"`
	TeacherName string              `json:"teacher_name"`
	GroupName   string              `json:"group_name"`
	LessonLabel string              `json:"lesson_label"`
	Statuses    []StudentStatusMark `json:"statuses"`
}
