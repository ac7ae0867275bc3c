package scoring

import (
	"testing"

	"github.com/readtrack/readtrack-backend/internal/model"
)

func TestMergeForGrowthSuppression(t *testing.T) {
	current := model.StatusVector{
		"1": model.StatusNotPassed,
		"2": model.StatusAbsent,
		"4": model.StatusPassed,
	}
	baseline := model.StatusVector{
		"1": model.StatusPassed,    // forces Y over current N
		"2": model.StatusNotPassed, // baseline N changes nothing
		"3": model.StatusPassed,    // forces Y where current is blank
	}

	merged := MergeForGrowthSuppression(current, baseline)

	want := model.StatusVector{
		"1": model.StatusPassed,
		"2": model.StatusAbsent,
		"3": model.StatusPassed,
		"4": model.StatusPassed,
	}
	if len(merged) != len(want) {
		t.Fatalf("merged has %d keys, want %d", len(merged), len(want))
	}
	for k, s := range want {
		if merged[k] != s {
			t.Errorf("merged[%s] = %q, want %q", k, merged[k], s)
		}
	}

	// Inputs stay untouched.
	if current["1"] != model.StatusNotPassed {
		t.Error("merge mutated the current vector")
	}
}

func TestBestStatus(t *testing.T) {
	y, n, a, u := model.StatusPassed, model.StatusNotPassed, model.StatusAbsent, model.StatusUnenrolled

	tests := []struct {
		a, b, want model.Status
	}{
		{u, a, a},
		{a, n, n},
		{n, y, y},
		{y, u, y},
		{y, n, y},
		{a, a, a},
		{"", n, n},
	}
	for _, tt := range tests {
		if got := BestStatus(tt.a, tt.b); got != tt.want {
			t.Errorf("BestStatus(%q, %q) = %q, want %q", tt.a, tt.b, got, tt.want)
		}
	}
}
