package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameWindowBound(t *testing.T) {
	w := NewFrameWindow(HistoryCapacity)

	var pushed []time.Duration
	for i := 1; i <= 150; i++ {
		d := time.Duration(i) * time.Millisecond
		w.Push(d)
		pushed = append(pushed, d)

		require.LessOrEqual(t, w.Len(), HistoryCapacity)
	}

	assert.Equal(t, HistoryCapacity, w.Len())
	assert.Equal(t, pushed[len(pushed)-HistoryCapacity:], w.Values())
}

func TestFrameWindowPartialFill(t *testing.T) {
	w := NewFrameWindow(HistoryCapacity)
	w.Push(time.Millisecond)
	w.Push(2 * time.Millisecond)

	assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond}, w.Values())
	assert.InDelta(t, 0.0015, w.Average(), 1e-12)
}

func TestFrameWindowRate(t *testing.T) {
	tests := []struct {
		name     string
		interval time.Duration
		count    int
		wantRate float64
	}{
		{name: "60 fps", interval: time.Second / 60, count: 60, wantRate: 60},
		{name: "partial window", interval: 20 * time.Millisecond, count: 7, wantRate: 50},
		{name: "overfilled window", interval: 8 * time.Millisecond, count: 200, wantRate: 125},
		{name: "slow frames", interval: 2 * time.Second, count: 3, wantRate: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewFrameWindow(HistoryCapacity)
			for i := 0; i < tt.count; i++ {
				w.Push(tt.interval)
			}

			assert.InDelta(t, tt.wantRate, w.Rate(), 1e-4)
			assert.InDelta(t, 1/tt.interval.Seconds(), w.Rate(), 1e-6)
		})
	}
}

func TestFrameWindowZeroRate(t *testing.T) {
	empty := NewFrameWindow(HistoryCapacity)
	assert.Equal(t, 0.0, empty.Average())
	assert.Equal(t, 0.0, empty.Rate())

	zeros := NewFrameWindow(HistoryCapacity)
	for i := 0; i < 10; i++ {
		zeros.Push(0)
	}
	assert.Equal(t, 0.0, zeros.Rate())
}

func TestFrameWindowDefaultCapacity(t *testing.T) {
	w := NewFrameWindow(0)
	assert.Equal(t, HistoryCapacity, w.Cap())
}
