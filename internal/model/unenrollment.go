package model

import (
	"time"

	"github.com/google/uuid"
)

// ExitStatus is the review state of an unenrollment log. A reported exit
// starts pending; staff either confirm it or resolve it when the student
// returns.
type ExitStatus string

const (
	ExitPending   ExitStatus = "pending"
	ExitConfirmed ExitStatus = "confirmed"
	ExitResolved  ExitStatus = "resolved"
)

// UnenrollmentLog archives a student's state at the moment a U status
// was reported. The vectors are frozen copies; the master record itself
// flips to unenrolled and stops accepting vector writes.
type UnenrollmentLog struct {
	ID               uuid.UUID    `json:"id"`
	StudentID        uuid.UUID    `json:"student_id"`
	StudentName      string       `json:"student_name"`
	GroupName        string       `json:"group_name"`
	ReportedBy       string       `json:"reported_by"`
	ReportedAt       time.Time    `json:"reported_at"`
	LessonAtExit     string       `json:"lesson_at_exit"`
	Status           ExitStatus   `json:"status"`
	ArchivedVector   StatusVector `json:"archived_vector"`
	ArchivedBaseline StatusVector `json:"archived_baseline"`
	Notes            string       `json:"notes,omitempty"`
}
