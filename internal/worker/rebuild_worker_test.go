package worker

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestNextRun(t *testing.T) {
	w := NewRebuildWorker(nil, 3, zerolog.Nop())

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			"before the hour",
			time.Date(2025, 9, 10, 1, 15, 0, 0, time.UTC),
			time.Date(2025, 9, 10, 3, 0, 0, 0, time.UTC),
		},
		{
			"after the hour",
			time.Date(2025, 9, 10, 14, 0, 0, 0, time.UTC),
			time.Date(2025, 9, 11, 3, 0, 0, 0, time.UTC),
		},
		{
			"exactly on the hour",
			time.Date(2025, 9, 10, 3, 0, 0, 0, time.UTC),
			time.Date(2025, 9, 11, 3, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.nextRun(tt.now); !got.Equal(tt.want) {
				t.Errorf("nextRun(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}
