// Package scoring computes skill-section and benchmark percentages over
// student status vectors. All functions are pure: they read a vector and
// the catalog, never storage.
package scoring

import (
	"math"

	"github.com/readtrack/readtrack-backend/internal/curriculum"
	"github.com/readtrack/readtrack-backend/internal/model"
)

// Engine evaluates scoring rules against one catalog configuration.
type Engine struct {
	cat *curriculum.Catalog
}

// NewEngine returns an Engine bound to the given catalog.
func NewEngine(cat *curriculum.Catalog) *Engine {
	return &Engine{cat: cat}
}

// numeric projects a status vector onto its numbered lessons.
func (e *Engine) numeric(vec model.StatusVector) map[int]model.Status {
	out := make(map[int]model.Status, len(vec))
	for key, s := range vec {
		if n, ok := e.cat.NumberFromKey(key); ok {
			out[n] = s
		}
	}
	return out
}

// gatewayTriggered reports whether the section's review rule grants full
// credit: at least one review assigned (Y or N) and every assigned
// review passed. Absences neither assign nor block.
func (e *Engine) gatewayTriggered(numeric map[int]model.Status, sec curriculum.Section) bool {
	assigned := 0
	for _, n := range sec.Reviews(e.cat) {
		switch numeric[n] {
		case model.StatusPassed:
			assigned++
		case model.StatusNotPassed:
			return false
		}
	}
	return assigned > 0
}

// SectionPercentage scores one skill section. The denominator is the
// section's non-review lesson count, fixed regardless of how many of
// those lessons have data. Initial assessments never assess reviews, so
// the gateway only applies to ongoing scoring. Returns nil when the
// section has no non-review lessons.
func (e *Engine) SectionPercentage(vec model.StatusVector, sec curriculum.Section, isInitialAssessment bool) *int {
	numeric := e.numeric(vec)

	if !isInitialAssessment && e.gatewayTriggered(numeric, sec) {
		full := 100
		return &full
	}

	nonReviews := sec.NonReview(e.cat)
	if len(nonReviews) == 0 {
		return nil
	}
	passed := 0
	for _, n := range nonReviews {
		if numeric[n] == model.StatusPassed {
			passed++
		}
	}
	return roundPct(passed, len(nonReviews))
}

// SectionScore returns the full per-section row for a student.
func (e *Engine) SectionScore(vec model.StatusVector, sec curriculum.Section, isInitialAssessment bool) model.SectionScore {
	numeric := e.numeric(vec)
	nonReviews := sec.NonReview(e.cat)

	completed := 0
	for _, n := range nonReviews {
		if numeric[n] == model.StatusPassed {
			completed++
		}
	}
	return model.SectionScore{
		SectionID:   sec.ID,
		SectionName: sec.Name,
		Percent:     e.SectionPercentage(vec, sec, isInitialAssessment),
		Completed:   completed,
		LessonCount: len(nonReviews),
		Gateway:     !isInitialAssessment && e.gatewayTriggered(numeric, sec),
	}
}

// AllSections scores every catalog section in order.
func (e *Engine) AllSections(vec model.StatusVector, isInitialAssessment bool) []model.SectionScore {
	sections := e.cat.Sections()
	out := make([]model.SectionScore, 0, len(sections))
	for _, sec := range sections {
		out = append(out, e.SectionScore(vec, sec, isInitialAssessment))
	}
	return out
}

// BenchmarkPercentage scores a benchmark lesson set. Lessons are grouped
// by their owning section and the gateway applies per section: a
// triggered section contributes all of its non-review lessons in the set
// as passed. The divisor is the profile's fixed denominator when one is
// set, otherwise the set's non-review lesson count. Returns nil when the
// divisor is zero.
func (e *Engine) BenchmarkPercentage(vec model.StatusVector, lessons []int, denominator int) *int {
	return e.benchmarkPct(vec, lessons, denominator, true)
}

// BaselineBenchmarkPercentage scores an initial-assessment vector.
// Reviews are never assessed at baseline, so the gateway is disabled.
func (e *Engine) BaselineBenchmarkPercentage(vec model.StatusVector, lessons []int, denominator int) *int {
	return e.benchmarkPct(vec, lessons, denominator, false)
}

func (e *Engine) benchmarkPct(vec model.StatusVector, lessons []int, denominator int, gateway bool) *int {
	numeric := e.numeric(vec)

	bySection := make(map[int][]int)
	order := make([]int, 0, 8)
	nonReviewTotal := 0
	for _, n := range lessons {
		if e.cat.IsReview(n) {
			continue
		}
		nonReviewTotal++
		sec, ok := e.cat.PrimarySection(n)
		if !ok {
			continue
		}
		if _, seen := bySection[sec.ID]; !seen {
			order = append(order, sec.ID)
		}
		bySection[sec.ID] = append(bySection[sec.ID], n)
	}

	passed := 0
	for _, id := range order {
		sec, _ := e.cat.SectionByID(id)
		members := bySection[id]
		if gateway && e.gatewayTriggered(numeric, sec) {
			passed += len(members)
			continue
		}
		for _, n := range members {
			if numeric[n] == model.StatusPassed {
				passed++
			}
		}
	}

	denom := denominator
	if denom <= 0 {
		denom = nonReviewTotal
	}
	return roundPct(passed, denom)
}

// Metrics computes the full benchmark block for one student: current
// metrics over the growth-suppressed merge, initial metrics over the
// baseline, and growth floored at zero.
func (e *Engine) Metrics(rec *model.StudentRecord) model.BenchmarkMetrics {
	profile := e.cat.Profile(rec.Grade)
	merged := MergeForGrowthSuppression(rec.StatusVector, rec.BaselineVector)

	m := model.BenchmarkMetrics{
		FoundationalPct: e.BenchmarkPercentage(merged, profile.Foundational(), profile.FoundationalDenominator()),
		MinimumPct:      e.BenchmarkPercentage(merged, profile.MinLessons, profile.Denominator),

		InitialFoundationalPct: e.BaselineBenchmarkPercentage(rec.BaselineVector, profile.Foundational(), profile.FoundationalDenominator()),
		InitialMinimumPct:      e.BaselineBenchmarkPercentage(rec.BaselineVector, profile.MinLessons, profile.Denominator),
	}
	if len(profile.CurrentYear) > 0 {
		m.CurrentYearPct = e.BenchmarkPercentage(merged, profile.CurrentYear, 0)
	}

	m.FoundationalGrowth = growth(m.FoundationalPct, m.InitialFoundationalPct)
	m.MinimumGrowth = growth(m.MinimumPct, m.InitialMinimumPct)
	m.BenchmarkStatus = BenchmarkStatus(m.MinimumPct)
	return m
}

// growth is total minus initial, floored at zero. Nil totals yield nil.
func growth(total, initial *int) *int {
	if total == nil {
		return nil
	}
	g := *total
	if initial != nil {
		g -= *initial
	}
	if g < 0 {
		g = 0
	}
	return &g
}

// roundPct rounds 100*num/denom half away from zero, clamped to [0,100].
// A zero denominator yields the nil no-data sentinel.
func roundPct(num, denom int) *int {
	if denom <= 0 {
		return nil
	}
	pct := int(math.Round(float64(num) * 100 / float64(denom)))
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	return &pct
}
