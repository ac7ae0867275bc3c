package model

import (
	"time"

	"github.com/google/uuid"
)

// StudentRecord is the durable per-student snapshot: identity, placement,
// the current status vector, and the baseline vector from the initial
// assessment. Rebuilt at any time from the ledger.
type StudentRecord struct {
	ID                  uuid.UUID        `json:"id"`
	Name                string           `json:"name"`
	NameKey             string           `json:"-"`
	Grade               string           `json:"grade"`
	TeacherName         string           `json:"teacher_name"`
	GroupName           string           `json:"group_name"`
	CurrentLessonLabel  string           `json:"current_lesson_label"`
	CurrentLessonNumber *int             `json:"current_lesson_number,omitempty"`
	Enrollment          EnrollmentStatus `json:"enrollment"`
	StatusVector        StatusVector     `json:"status_vector"`
	BaselineVector      StatusVector     `json:"baseline_vector"`
	EnrolledAt          time.Time        `json:"enrolled_at"`
	UnenrolledAt        *time.Time       `json:"unenrolled_at,omitempty"`
	LastEntryAt         *time.Time       `json:"last_entry_at,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// EnrollStudentRequest is the payload for enrolling a student.
type EnrollStudentRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=255"`
	Grade       string `json:"grade" binding:"required,min=1,max=16"`
	TeacherName string `json:"teacher_name" binding:"required,min=1,max=255"`
	GroupName   string `json:"group_name" binding:"required,min=1,max=255"`
}

// UpdateStudentRequest reassigns placement fields on a master record.
type UpdateStudentRequest struct {
	Grade       string `json:"grade" binding:"omitempty,min=1,max=16"`
	TeacherName string `json:"teacher_name" binding:"omitempty,min=1,max=255"`
	GroupName   string `json:"group_name" binding:"omitempty,min=1,max=255"`
}

// StudentFilter narrows master record listings.
type StudentFilter struct {
	GroupName  string
	Grade      string
	Enrollment EnrollmentStatus
}

// GroupSummary is a roster-level view of one group.
type GroupSummary struct {
	GroupName    string     `json:"group_name"`
	TeacherName  string     `json:"teacher_name"`
	StudentCount int        `json:"student_count"`
	ActiveCount  int        `json:"active_count"`
	LastEntryAt  *time.Time `json:"last_entry_at,omitempty"`
}
