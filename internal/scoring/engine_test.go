package scoring

import (
	"testing"

	"github.com/readtrack/readtrack-backend/internal/curriculum"
	"github.com/readtrack/readtrack-backend/internal/model"
)

func vec(pairs map[int]model.Status) model.StatusVector {
	v := make(model.StatusVector, len(pairs))
	for n, s := range pairs {
		v[curriculum.KeyForNumber(n)] = s
	}
	return v
}

func pctOf(t *testing.T, p *int) int {
	t.Helper()
	if p == nil {
		t.Fatal("got nil percentage, want a value")
	}
	return *p
}

func sectionByName(t *testing.T, cat *curriculum.Catalog, name string) curriculum.Section {
	t.Helper()
	for _, s := range cat.Sections() {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("no section named %q", name)
	return curriculum.Section{}
}

func TestSectionPercentageGateway(t *testing.T) {
	cat := curriculum.Default()
	e := NewEngine(cat)
	alphabetReview := sectionByName(t, cat, "Alphabet Review")

	// All six reviews passed, lesson 38 untouched: gateway grants 100.
	v := vec(map[int]model.Status{
		35: model.StatusPassed, 36: model.StatusPassed, 37: model.StatusPassed,
		39: model.StatusPassed, 40: model.StatusPassed, 41: model.StatusPassed,
	})
	if got := pctOf(t, e.SectionPercentage(v, alphabetReview, false)); got != 100 {
		t.Errorf("gateway section = %d, want 100", got)
	}

	// Lesson 38 failed changes nothing; the gateway ignores non-reviews.
	v[curriculum.KeyForNumber(38)] = model.StatusNotPassed
	if got := pctOf(t, e.SectionPercentage(v, alphabetReview, false)); got != 100 {
		t.Errorf("gateway section with failed non-review = %d, want 100", got)
	}

	// One review failed kills the gateway: back to Y-count over the one
	// non-review lesson (38 = N here), so 0.
	v[curriculum.KeyForNumber(40)] = model.StatusNotPassed
	if got := pctOf(t, e.SectionPercentage(v, alphabetReview, false)); got != 0 {
		t.Errorf("broken gateway section = %d, want 0", got)
	}

	// An absent review neither assigns nor blocks.
	v2 := vec(map[int]model.Status{
		35: model.StatusPassed, 36: model.StatusAbsent,
	})
	if got := pctOf(t, e.SectionPercentage(v2, alphabetReview, false)); got != 100 {
		t.Errorf("gateway with absent review = %d, want 100", got)
	}

	// Absences alone assign nothing, so no gateway and no passes.
	v3 := vec(map[int]model.Status{35: model.StatusAbsent})
	if got := pctOf(t, e.SectionPercentage(v3, alphabetReview, false)); got != 0 {
		t.Errorf("absent-only section = %d, want 0", got)
	}
}

func TestSectionPercentageInitialSkipsGateway(t *testing.T) {
	cat := curriculum.Default()
	e := NewEngine(cat)
	alphabetReview := sectionByName(t, cat, "Alphabet Review")

	v := vec(map[int]model.Status{
		35: model.StatusPassed, 36: model.StatusPassed, 37: model.StatusPassed,
		39: model.StatusPassed, 40: model.StatusPassed, 41: model.StatusPassed,
	})
	// Baseline scoring ignores reviews entirely: 0 of 1 non-review passed.
	if got := pctOf(t, e.SectionPercentage(v, alphabetReview, true)); got != 0 {
		t.Errorf("initial assessment section = %d, want 0", got)
	}
}

func TestSectionPercentageFixedDenominator(t *testing.T) {
	cat := curriculum.Default()
	e := NewEngine(cat)
	digraphs := sectionByName(t, cat, "Digraphs")

	// Digraphs 42-53 has reviews 49 and 53, leaving 10 scorable lessons.
	// One pass out of ten is 10% even though only one lesson has data.
	v := vec(map[int]model.Status{42: model.StatusPassed})
	if got := pctOf(t, e.SectionPercentage(v, digraphs, false)); got != 10 {
		t.Errorf("digraphs = %d, want 10", got)
	}

	// Absences add nothing to the numerator and the denominator is
	// unchanged: still 1/10.
	v[curriculum.KeyForNumber(43)] = model.StatusAbsent
	v[curriculum.KeyForNumber(44)] = model.StatusAbsent
	if got := pctOf(t, e.SectionPercentage(v, digraphs, false)); got != 10 {
		t.Errorf("digraphs with absences = %d, want 10", got)
	}
}

func TestSectionPercentageMonotonic(t *testing.T) {
	cat := curriculum.Default()
	e := NewEngine(cat)

	// Flipping any single N to Y never lowers any section score.
	base := vec(map[int]model.Status{
		35: model.StatusPassed, 38: model.StatusNotPassed, 40: model.StatusNotPassed,
		42: model.StatusPassed, 43: model.StatusNotPassed, 49: model.StatusNotPassed,
		54: model.StatusNotPassed, 57: model.StatusPassed,
	})
	for key, s := range base {
		if s != model.StatusNotPassed {
			continue
		}
		flipped := base.Clone()
		flipped[key] = model.StatusPassed
		for _, sec := range cat.Sections() {
			before := e.SectionPercentage(base, sec, false)
			after := e.SectionPercentage(flipped, sec, false)
			if before == nil || after == nil {
				continue
			}
			if *after < *before {
				t.Errorf("section %q: flipping %s N->Y dropped %d -> %d",
					sec.Name, key, *before, *after)
			}
		}
	}
}

func TestDigraphsScenario(t *testing.T) {
	cat := curriculum.Default()
	e := NewEngine(cat)
	digraphs := sectionByName(t, cat, "Digraphs")

	// L42 passed, then review L49 failed: the failed review blocks the
	// gateway, leaving 1 pass over the 10 non-review digraph lessons.
	v := vec(map[int]model.Status{
		42: model.StatusPassed,
		49: model.StatusNotPassed,
	})
	score := e.SectionScore(v, digraphs, false)
	if score.Gateway {
		t.Error("gateway triggered with a failed review assigned")
	}
	if got := pctOf(t, score.Percent); got != 10 {
		t.Errorf("digraphs = %d, want 10 (1 of 10 non-review lessons)", got)
	}
	if score.Completed != 1 || score.LessonCount != 10 {
		t.Errorf("completed/count = %d/%d, want 1/10", score.Completed, score.LessonCount)
	}
}

func TestBenchmarkPercentage(t *testing.T) {
	cat := curriculum.Default()
	e := NewEngine(cat)

	// KG: all 34 foundational lessons passed = 100.
	all := make(model.StatusVector)
	for n := 1; n <= 34; n++ {
		all[curriculum.KeyForNumber(n)] = model.StatusPassed
	}
	kg := cat.Profile(curriculum.GradeKG)
	if got := pctOf(t, e.BenchmarkPercentage(all, kg.MinLessons, kg.Denominator)); got != 100 {
		t.Errorf("KG all passed = %d, want 100", got)
	}

	// Half of them: 17/34 = 50.
	half := make(model.StatusVector)
	for n := 1; n <= 17; n++ {
		half[curriculum.KeyForNumber(n)] = model.StatusPassed
	}
	if got := pctOf(t, e.BenchmarkPercentage(half, kg.MinLessons, kg.Denominator)); got != 50 {
		t.Errorf("KG half passed = %d, want 50", got)
	}
}

func TestBenchmarkGatewayContribution(t *testing.T) {
	cat := curriculum.Default()
	e := NewEngine(cat)

	// G1 minimum set is 1-34 plus Digraphs 42-53, denominator 44.
	// Passing both digraph reviews (49, 53) triggers the Digraphs
	// gateway, contributing all 10 non-review digraph lessons even
	// though none of them was directly assessed.
	v := vec(map[int]model.Status{
		49: model.StatusPassed,
		53: model.StatusPassed,
	})
	g1 := cat.Profile(curriculum.GradeG1)
	if got := pctOf(t, e.BenchmarkPercentage(v, g1.MinLessons, g1.Denominator)); got != 23 {
		t.Errorf("G1 gateway-only = %d, want 23 (10 of 44)", got)
	}

	// The baseline variant never applies the gateway.
	if got := pctOf(t, e.BaselineBenchmarkPercentage(v, g1.MinLessons, g1.Denominator)); got != 0 {
		t.Errorf("baseline gateway-only = %d, want 0", got)
	}
}

func TestBenchmarkNoDataSentinel(t *testing.T) {
	cat := curriculum.Default()
	e := NewEngine(cat)

	if got := e.BenchmarkPercentage(model.StatusVector{}, nil, 0); got != nil {
		t.Errorf("empty benchmark = %v, want nil", *got)
	}
}

func TestGrowthFloor(t *testing.T) {
	cat := curriculum.Default()
	e := NewEngine(cat)

	// Baseline says lessons 1-10 passed; the current vector has lost
	// some of them (relapsed to N). Growth must still be >= 0 because
	// current metrics run over the suppressed merge.
	baseline := make(model.StatusVector)
	for n := 1; n <= 10; n++ {
		baseline[curriculum.KeyForNumber(n)] = model.StatusPassed
	}
	current := vec(map[int]model.Status{
		1: model.StatusNotPassed, 2: model.StatusNotPassed,
	})

	kg := cat.Profile(curriculum.GradeKG)
	merged := MergeForGrowthSuppression(current, baseline)

	mergedPct := pctOf(t, e.BenchmarkPercentage(merged, kg.MinLessons, kg.Denominator))
	rawPct := pctOf(t, e.BenchmarkPercentage(current, kg.MinLessons, kg.Denominator))
	if mergedPct < rawPct {
		t.Errorf("merged %d < raw current %d", mergedPct, rawPct)
	}

	rec := &model.StudentRecord{
		Grade:          curriculum.GradeKG,
		StatusVector:   current,
		BaselineVector: baseline,
	}
	m := e.Metrics(rec)
	if m.MinimumGrowth == nil || *m.MinimumGrowth < 0 {
		t.Errorf("minimum growth = %v, want >= 0", m.MinimumGrowth)
	}
	if m.FoundationalGrowth == nil || *m.FoundationalGrowth < 0 {
		t.Errorf("foundational growth = %v, want >= 0", m.FoundationalGrowth)
	}
	// 10 baseline passes suppressed into the merge: total == initial.
	if *m.MinimumGrowth != 0 {
		t.Errorf("minimum growth = %d, want 0", *m.MinimumGrowth)
	}
}

func TestMetricsCurrentYear(t *testing.T) {
	cat := curriculum.Default()
	e := NewEngine(cat)

	rec := &model.StudentRecord{
		Grade: curriculum.GradeKG,
		StatusVector: vec(map[int]model.Status{
			1: model.StatusPassed,
		}),
		BaselineVector: model.StatusVector{},
	}
	m := e.Metrics(rec)
	if m.CurrentYearPct != nil {
		t.Errorf("KG current-year = %v, want nil (no current-year lessons)", *m.CurrentYearPct)
	}

	rec.Grade = curriculum.GradeG2
	m = e.Metrics(rec)
	if m.CurrentYearPct == nil {
		t.Error("G2 current-year = nil, want a value")
	}
}
