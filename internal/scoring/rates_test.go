package scoring

import (
	"testing"

	"github.com/readtrack/readtrack-backend/internal/model"
)

func TestDenominatorAsymmetry(t *testing.T) {
	// Ten responses to one lesson slot: 6 Y, 2 N, 2 A. The attempts
	// ratio leaves absences out (6/8); the pacing rate counts them
	// (6/10). Both are correct and must stay different.
	attempts := AttemptPassPct(6, 2)
	if attempts == nil || *attempts != 75 {
		t.Fatalf("AttemptPassPct(6, 2) = %v, want 75", attempts)
	}
	rate := ResponseRatePct(6, 10)
	if rate == nil || *rate != 60 {
		t.Fatalf("ResponseRatePct(6, 10) = %v, want 60", rate)
	}
	if *attempts == *rate {
		t.Error("attempt ratio and response rate collapsed to the same value")
	}
}

func TestAttemptPassPctNoAttempts(t *testing.T) {
	if got := AttemptPassPct(0, 0); got != nil {
		t.Errorf("AttemptPassPct(0, 0) = %d, want nil", *got)
	}
}

func TestBenchmarkStatus(t *testing.T) {
	pct := func(v int) *int { return &v }

	tests := []struct {
		name string
		in   *int
		want string
	}{
		{"high", pct(95), model.BenchmarkOnTrack},
		{"boundary 80", pct(80), model.BenchmarkOnTrack},
		{"boundary 79", pct(79), model.BenchmarkNeedsSupport},
		{"boundary 50", pct(50), model.BenchmarkNeedsSupport},
		{"boundary 49", pct(49), model.BenchmarkIntervention},
		{"zero", pct(0), model.BenchmarkIntervention},
		{"no data", nil, model.BenchmarkIntervention},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BenchmarkStatus(tt.in); got != tt.want {
				t.Errorf("BenchmarkStatus(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
