package parallel

import (
	"sync/atomic"
	"testing"
)

func TestForCoversEveryIndexOnce(t *testing.T) {
	tests := []struct {
		name string
		n    int
	}{
		{"empty", 0},
		{"single", 1},
		{"below threshold", Threshold - 1},
		{"at threshold", Threshold},
		{"large", 10007},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := make([]int32, tt.n)
			For(tt.n, func(start, end int) {
				for i := start; i < end; i++ {
					atomic.AddInt32(&hits[i], 1)
				}
			})
			for i, h := range hits {
				if h != 1 {
					t.Fatalf("index %d visited %d times, want 1", i, h)
				}
			}
		})
	}
}

func TestForWorkerIndexInRange(t *testing.T) {
	n := 5000
	workers := Workers(n)
	var bad int32
	ForWorker(n, func(worker, start, end int) {
		if worker < 0 || worker >= workers {
			atomic.AddInt32(&bad, 1)
		}
	})
	if bad != 0 {
		t.Errorf("%d chunks reported an out-of-range worker index", bad)
	}
}

func TestWorkersSmallInputIsSerial(t *testing.T) {
	if got := Workers(Threshold - 1); got != 1 {
		t.Errorf("Workers(%d) = %d, want 1", Threshold-1, got)
	}
}
