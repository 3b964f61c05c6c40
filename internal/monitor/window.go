package monitor

import (
	"time"

	"gonum.org/v1/gonum/stat"
)

// HistoryCapacity is the number of frame intervals kept for smoothing.
const HistoryCapacity = 60

// FrameWindow is a fixed-capacity FIFO of frame intervals.
type FrameWindow struct {
	samples  []time.Duration
	seconds  []float64
	capacity int
}

// NewFrameWindow creates a window holding at most capacity intervals.
func NewFrameWindow(capacity int) *FrameWindow {
	if capacity <= 0 {
		capacity = HistoryCapacity
	}
	return &FrameWindow{
		samples:  make([]time.Duration, 0, capacity+1),
		seconds:  make([]float64, 0, capacity),
		capacity: capacity,
	}
}

// Push appends d, evicting the oldest interval once capacity is exceeded.
func (w *FrameWindow) Push(d time.Duration) {
	w.samples = append(w.samples, d)
	if len(w.samples) > w.capacity {
		copy(w.samples, w.samples[1:])
		w.samples = w.samples[:w.capacity]
	}
}

// Len returns the number of intervals held.
func (w *FrameWindow) Len() int { return len(w.samples) }

// Cap returns the window capacity.
func (w *FrameWindow) Cap() int { return w.capacity }

// Values returns the held intervals, oldest first.
func (w *FrameWindow) Values() []time.Duration {
	out := make([]time.Duration, len(w.samples))
	copy(out, w.samples)
	return out
}

// Average returns the mean interval in seconds, 0 for an empty window.
func (w *FrameWindow) Average() float64 {
	if len(w.samples) == 0 {
		return 0
	}

	w.seconds = w.seconds[:0]
	for _, d := range w.samples {
		w.seconds = append(w.seconds, d.Seconds())
	}
	return stat.Mean(w.seconds, nil)
}

// Rate returns 1/Average, or exactly 0 when the average is not positive.
func (w *FrameWindow) Rate() float64 {
	avg := w.Average()
	if avg <= 0 {
		return 0
	}
	return 1 / avg
}
