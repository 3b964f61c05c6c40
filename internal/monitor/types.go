package monitor

import (
	"fmt"
	"time"
)

// Metrics is one sample as seen by consumers.
type Metrics struct {
	FPS         float64 `json:"fps"`
	AvgFrameMs  float64 `json:"avg_frame_ms"`
	CPUPercent  float64 `json:"cpu_percent"`
	CoresUsed   float64 `json:"cores_used"`
	TotalCores  int     `json:"total_cores"`
	ResidentMB  float64 `json:"resident_mb"`
	ThreadCount int     `json:"thread_count"`

	FrameInterval time.Duration `json:"frame_interval_ns"`
	SampledAt     time.Time     `json:"sampled_at"`
}

// Lines formats the metrics as overlay rows.
func (m Metrics) Lines() []string {
	return []string{
		fmt.Sprintf("%.1f FPS (%.2fms)", m.FPS, m.AvgFrameMs),
		fmt.Sprintf("CPU: %.1f%% (%.2f/%d cores)", m.CPUPercent, m.CoresUsed, m.TotalCores),
		fmt.Sprintf("RAM: %.1f MB", m.ResidentMB),
		fmt.Sprintf("Threads: %d", m.ThreadCount),
	}
}

// ProcessStats is a point-in-time view of one process.
type ProcessStats struct {
	// CPUPercent is relative to a single core, so it may exceed 100.
	CPUPercent    float64
	ResidentBytes uint64
	Threads       int
}
