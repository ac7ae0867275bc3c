package scoring

import "github.com/readtrack/readtrack-backend/internal/model"

// MergeForGrowthSuppression overlays the baseline onto the current
// vector: a baseline Y forces Y even where the current value is N or
// missing. Current and total metrics are always computed over this
// merge so that growth against the initial assessment cannot go
// negative.
func MergeForGrowthSuppression(current, baseline model.StatusVector) model.StatusVector {
	merged := current.Clone()
	for key, s := range baseline {
		if s == model.StatusPassed {
			merged[key] = model.StatusPassed
		}
	}
	return merged
}

// statusRank orders statuses for import reconciliation. Higher wins.
var statusRank = map[model.Status]int{
	model.StatusUnenrolled: 1,
	model.StatusAbsent:     2,
	model.StatusNotPassed:  3,
	model.StatusPassed:     4,
}

// BestStatus picks the winner of two statuses under the U < A < N < Y
// total order. This strategy is used only when several raw import rows
// target the same (student, lesson) in one batch; ledger replay uses
// chronological overwrite instead, and the two must not be conflated.
func BestStatus(a, b model.Status) model.Status {
	if statusRank[b] > statusRank[a] {
		return b
	}
	return a
}
