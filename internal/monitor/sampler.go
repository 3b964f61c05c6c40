package monitor

import (
	"errors"
	"os"
	"runtime"
	"time"

	"github.com/GriffinCanCode/claritty/internal/infrastructure/resilience"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Refresh failures needed to stop polling the process source, and how long
// polling stays suspended.
const (
	refreshFailureLimit = 10
	refreshBackoff      = 30 * time.Second
)

// Option configures a Sampler.
type Option func(*Sampler)

// WithPID samples pid instead of the current process.
func WithPID(pid int) Option {
	return func(s *Sampler) { s.pid = pid }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Sampler) { s.now = now }
}

// WithTotalCores overrides the logical CPU count.
func WithTotalCores(n int) Option {
	return func(s *Sampler) { s.totalCores = n }
}

// Sampler measures frame cadence and process resource usage once per tick.
// It only mutates its own history and timestamp.
type Sampler struct {
	pid        int
	totalCores int
	source     ProcessSource
	window     *FrameWindow
	last       time.Time
	now        func() time.Time
	breaker    *resilience.Breaker

	diag   rate.Sometimes
	logger *zap.Logger
}

// NewSampler creates a sampler for the current process.
func NewSampler(source ProcessSource, logger *zap.Logger, opts ...Option) *Sampler {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Sampler{
		pid:        os.Getpid(),
		totalCores: runtime.NumCPU(),
		source:     source,
		window:     NewFrameWindow(HistoryCapacity),
		now:        time.Now,
		diag:       rate.Sometimes{First: 1, Interval: 30 * time.Second},
		logger:     logger.Named("monitor"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.breaker = resilience.New("process-source", resilience.Settings{
		Timeout: refreshBackoff,
		ReadyToTrip: func(c resilience.Counts) bool {
			return c.ConsecutiveFailures >= refreshFailureLimit
		},
		OnStateChange: func(_ string, from, to resilience.State) {
			s.logger.Info("Process source breaker changed state",
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
		},
		Now: s.now,
	})

	if w, ok := source.(interface{ Watch(int) }); ok {
		w.Watch(s.pid)
	}
	s.last = s.now()

	return s
}

// Sample records the interval since the previous sample and reads the
// process statistics. A process missing from the snapshot reads as zeros.
func (s *Sampler) Sample() Metrics {
	now := s.now()
	interval := now.Sub(s.last)
	s.last = now
	s.window.Push(interval)

	avg := s.window.Average()

	stats := s.processStats()

	return Metrics{
		FPS:           s.window.Rate(),
		AvgFrameMs:    avg * 1000,
		CPUPercent:    stats.CPUPercent,
		CoresUsed:     stats.CPUPercent / 100,
		TotalCores:    s.totalCores,
		ResidentMB:    float64(stats.ResidentBytes) / 1024 / 1024,
		ThreadCount:   stats.Threads,
		FrameInterval: interval,
		SampledAt:     now,
	}
}

// processStats refreshes the source and looks up the sampled pid. While the
// breaker is open the source is left alone and the stats read as zeros.
func (s *Sampler) processStats() ProcessStats {
	if s.source == nil {
		return ProcessStats{}
	}

	err := s.breaker.Execute(s.source.Refresh)
	switch {
	case errors.Is(err, resilience.ErrCircuitOpen), errors.Is(err, resilience.ErrTooManyRequests):
		return ProcessStats{}
	case err != nil:
		s.diag.Do(func() {
			s.logger.Warn("Failed to refresh process stats", zap.Error(err))
		})
	}

	if found, ok := s.source.Lookup(s.pid); ok {
		return found
	}
	return ProcessStats{}
}

// Breaker exposes the process source breaker state.
func (s *Sampler) Breaker() *resilience.Breaker { return s.breaker }

// Window exposes the frame history.
func (s *Sampler) Window() *FrameWindow { return s.window }

// PID returns the sampled process id.
func (s *Sampler) PID() int { return s.pid }
