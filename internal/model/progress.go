package model

import (
	"time"

	"github.com/google/uuid"
)

// Benchmark status labels derived from the minimum-expectation metric.
const (
	BenchmarkOnTrack      = "On Track"
	BenchmarkNeedsSupport = "Needs Support"
	BenchmarkIntervention = "Intervention"
)

// SectionScore is one skill section's completion percentage for a
// student. Percent is nil when the section has no scorable lessons.
type SectionScore struct {
	SectionID   int    `json:"section_id"`
	SectionName string `json:"section_name"`
	Percent     *int   `json:"percent"`
	Completed   int    `json:"completed_count"`
	LessonCount int    `json:"lesson_count"`
	Gateway     bool   `json:"gateway"`
}

// BenchmarkMetrics are the three grade-profile percentages plus growth.
// Initial metrics come from the baseline vector, current metrics from
// the growth-suppressed merge; growth never goes negative.
type BenchmarkMetrics struct {
	FoundationalPct *int `json:"foundational_pct"`
	MinimumPct      *int `json:"minimum_pct"`
	CurrentYearPct  *int `json:"current_year_pct"`

	InitialFoundationalPct *int `json:"initial_foundational_pct"`
	InitialMinimumPct      *int `json:"initial_minimum_pct"`

	FoundationalGrowth *int `json:"foundational_growth"`
	MinimumGrowth      *int `json:"minimum_growth"`

	BenchmarkStatus string `json:"benchmark_status"`
}

// StudentProgress is the full per-student progress report.
type StudentProgress struct {
	Student    StudentRecord    `json:"student"`
	Sections   []SectionScore   `json:"sections"`
	Benchmarks BenchmarkMetrics `json:"benchmarks"`
}

// BenchmarkSummary is one derived summary row per student.
type BenchmarkSummary struct {
	StudentID       uuid.UUID `json:"student_id"`
	Name            string    `json:"name"`
	Grade           string    `json:"grade"`
	TeacherName     string    `json:"teacher_name"`
	GroupName       string    `json:"group_name"`
	FoundationalPct *int      `json:"foundational_pct"`
	MinimumPct      *int      `json:"minimum_pct"`
	CurrentYearPct  *int      `json:"current_year_pct"`
	BenchmarkStatus string    `json:"benchmark_status"`
	ComputedAt      time.Time `json:"computed_at"`
}
