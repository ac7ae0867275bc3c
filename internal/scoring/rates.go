package scoring

import "github.com/readtrack/readtrack-backend/internal/model"

// BenchmarkStatus buckets a minimum-expectation percentage. Students
// with no scorable data land in Intervention so they surface for triage.
func BenchmarkStatus(minimumPct *int) string {
	switch {
	case minimumPct != nil && *minimumPct >= 80:
		return model.BenchmarkOnTrack
	case minimumPct != nil && *minimumPct >= 50:
		return model.BenchmarkNeedsSupport
	default:
		return model.BenchmarkIntervention
	}
}

// AttemptPassPct is the pass ratio over attempts only: Y/(Y+N).
// Absences are left out of the denominator entirely, the same way
// section scoring never counts them.
func AttemptPassPct(passed, notPassed int) *int {
	return roundPct(passed, passed+notPassed)
}

// ResponseRatePct is the pacing-style rate: part over all responses
// including absences. The two denominators are different on purpose;
// see AttemptPassPct.
func ResponseRatePct(part, totalResponses int) *int {
	return roundPct(part, totalResponses)
}

// Percentage is the plain ratio helper: rounded, clamped to [0,100],
// nil when the denominator is zero.
func Percentage(part, whole int) *int {
	return roundPct(part, whole)
}
