package monitor_test

import (
	"errors"
	"testing"
	"time"

	"github.com/GriffinCanCode/claritty/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/claritty/internal/monitor"
	"github.com/GriffinCanCode/claritty/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPID = 4242

func newSampler(t *testing.T, source monitor.ProcessSource, clock *testutil.FakeClock) *monitor.Sampler {
	t.Helper()
	return monitor.NewSampler(source, nil,
		monitor.WithPID(testPID),
		monitor.WithClock(clock.Now),
		monitor.WithTotalCores(8),
	)
}

func TestSamplerReportsProcessStats(t *testing.T) {
	clock := testutil.NewFakeClock()
	source := testutil.NewMockProcessSource(t, testPID, monitor.ProcessStats{
		CPUPercent:    150,
		ResidentBytes: 64 * 1024 * 1024,
		Threads:       12,
	})
	sampler := newSampler(t, source, clock)

	clock.Advance(20 * time.Millisecond)
	m := sampler.Sample()

	assert.Equal(t, 150.0, m.CPUPercent)
	assert.Equal(t, 1.5, m.CoresUsed)
	assert.Equal(t, 8, m.TotalCores)
	assert.Equal(t, 64.0, m.ResidentMB)
	assert.Equal(t, 12, m.ThreadCount)
	assert.Equal(t, 20*time.Millisecond, m.FrameInterval)
	assert.InDelta(t, 50.0, m.FPS, 1e-9)
	assert.InDelta(t, 20.0, m.AvgFrameMs, 1e-9)

	source.AssertCalled(t, "Refresh")
	source.AssertCalled(t, "Lookup", testPID)
}

func TestSamplerFallsBackToZeroWhenProcessMissing(t *testing.T) {
	clock := testutil.NewFakeClock()
	source := new(testutil.MockProcessSource)
	source.On("Refresh").Return(nil)
	source.On("Lookup", testPID).Return(monitor.ProcessStats{}, false)

	sampler := newSampler(t, source, clock)
	clock.Advance(10 * time.Millisecond)

	var m monitor.Metrics
	require.NotPanics(t, func() { m = sampler.Sample() })

	assert.Equal(t, 0.0, m.CPUPercent)
	assert.Equal(t, 0.0, m.CoresUsed)
	assert.Equal(t, 0.0, m.ResidentMB)
	assert.Equal(t, 0, m.ThreadCount)
	assert.InDelta(t, 100.0, m.FPS, 1e-9)
	source.AssertExpectations(t)
}

func TestSamplerSurvivesRefreshError(t *testing.T) {
	clock := testutil.NewFakeClock()
	source := new(testutil.MockProcessSource)
	source.On("Refresh").Return(errors.New("procfs unavailable"))
	source.On("Lookup", testPID).Return(monitor.ProcessStats{}, false)

	sampler := newSampler(t, source, clock)

	for i := 0; i < 5; i++ {
		clock.Advance(time.Millisecond)
		m := sampler.Sample()
		assert.Equal(t, 0, m.ThreadCount)
	}
	source.AssertNumberOfCalls(t, "Refresh", 5)
}

func TestSamplerWindowStaysBounded(t *testing.T) {
	clock := testutil.NewFakeClock()
	source := testutil.NewMockProcessSource(t, testPID, monitor.ProcessStats{})
	sampler := newSampler(t, source, clock)

	for i := 0; i < 3*monitor.HistoryCapacity; i++ {
		clock.Advance(time.Duration(i+1) * time.Millisecond)
		sampler.Sample()
		require.LessOrEqual(t, sampler.Window().Len(), monitor.HistoryCapacity)
	}

	values := sampler.Window().Values()
	require.Len(t, values, monitor.HistoryCapacity)
	first := 2*monitor.HistoryCapacity + 1
	for i, v := range values {
		assert.Equal(t, time.Duration(first+i)*time.Millisecond, v)
	}
}

func TestSamplerZeroIntervalGivesZeroFPS(t *testing.T) {
	clock := testutil.NewFakeClock()
	source := testutil.NewMockProcessSource(t, testPID, monitor.ProcessStats{})
	sampler := newSampler(t, source, clock)

	m := sampler.Sample()
	assert.Equal(t, 0.0, m.FPS)
	assert.Equal(t, 0.0, m.AvgFrameMs)
}

func TestMetricsLines(t *testing.T) {
	m := monitor.Metrics{
		FPS:         59.94,
		AvgFrameMs:  16.683,
		CPUPercent:  12.34,
		CoresUsed:   0.1234,
		TotalCores:  8,
		ResidentMB:  42.26,
		ThreadCount: 9,
	}

	assert.Equal(t, []string{
		"59.9 FPS (16.68ms)",
		"CPU: 12.3% (0.12/8 cores)",
		"RAM: 42.3 MB",
		"Threads: 9",
	}, m.Lines())
}

func TestSamplerStopsPollingFailingSource(t *testing.T) {
	clock := testutil.NewFakeClock()
	source := new(testutil.MockProcessSource)
	source.On("Refresh").Return(errors.New("procfs unavailable"))
	source.On("Lookup", testPID).Return(monitor.ProcessStats{}, false)

	sampler := newSampler(t, source, clock)

	for i := 0; i < 25; i++ {
		clock.Advance(16 * time.Millisecond)
		m := sampler.Sample()
		assert.Equal(t, 0.0, m.CPUPercent)
	}
	source.AssertNumberOfCalls(t, "Refresh", 10)
	assert.Equal(t, resilience.StateOpen, sampler.Breaker().State())

	// One trial refresh once the backoff has passed.
	clock.Advance(30 * time.Second)
	sampler.Sample()
	sampler.Sample()
	source.AssertNumberOfCalls(t, "Refresh", 11)
}

func TestSamplerRecoversWhenSourceHeals(t *testing.T) {
	clock := testutil.NewFakeClock()
	source := new(testutil.MockProcessSource)
	source.On("Refresh").Return(errors.New("procfs unavailable")).Times(10)
	source.On("Refresh").Return(nil)
	source.On("Lookup", testPID).Return(monitor.ProcessStats{Threads: 3}, true)

	sampler := newSampler(t, source, clock)
	for i := 0; i < 10; i++ {
		sampler.Sample()
	}
	require.Equal(t, resilience.StateOpen, sampler.Breaker().State())

	clock.Advance(30 * time.Second)
	m := sampler.Sample()

	assert.Equal(t, 3, m.ThreadCount)
	assert.Equal(t, resilience.StateClosed, sampler.Breaker().State())
}
