package model

import "time"

// PacingRollup is one derived row per group: how far the group's lesson
// columns have been worked through and the status mix across them.
// Rates divide by passed+failed+absent, so absences count against pace.
type PacingRollup struct {
	GroupName       string     `json:"group_name"`
	TeacherName     string     `json:"teacher_name"`
	Students        int        `json:"students"`
	AssignedLessons int        `json:"assigned_lessons"`
	TrackedLessons  int        `json:"tracked_lessons"`
	PacingPct       *int       `json:"pacing_pct"`
	HighestLesson   *int       `json:"highest_lesson,omitempty"`
	LastEntryAt     *time.Time `json:"last_entry_at,omitempty"`
	PassRate        *int       `json:"pass_rate"`
	NotPassedRate   *int       `json:"not_passed_rate"`
	AbsentRate      *int       `json:"absent_rate"`
	AttemptPassRate *int       `json:"attempt_pass_rate"`
	ComputedAt      time.Time  `json:"computed_at"`
}
