package monitoring

import (
	"sync"
	"time"

	"github.com/GriffinCanCode/claritty/internal/monitor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Read outcomes used as the "result" label.
const (
	ReadData       = "data"
	ReadWouldBlock = "would_block"
	ReadError      = "error"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Loop metrics
	Ticks         prometheus.Counter
	FrameInterval prometheus.Histogram
	FPS           prometheus.Gauge

	// Process metrics
	CPUPercent    prometheus.Gauge
	ResidentBytes prometheus.Gauge
	Threads       prometheus.Gauge

	// PTY metrics
	PtyReads  *prometheus.CounterVec
	PtyBytes  prometheus.Counter
	SinkBytes prometheus.Gauge

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	Uptime    prometheus.Gauge
	startTime time.Time

	snapshot MetricsSnapshot
	mu       sync.RWMutex
}

// MetricsSnapshot holds current counter values for the JSON API
type MetricsSnapshot struct {
	Ticks             int64 `json:"ticks"`
	BytesDrained      int64 `json:"bytes_drained"`
	ReadErrors        int64 `json:"read_errors"`
	TotalRequests     int64 `json:"total_requests"`
	ActiveConnections int64 `json:"active_connections"`
}

// NewMetrics creates a metrics collector registered on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		startTime: time.Now(),

		Ticks: factory.NewCounter(prometheus.CounterOpts{
			Name: "claritty_ticks_total",
			Help: "Total number of driving loop ticks",
		}),
		FrameInterval: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "claritty_frame_interval_seconds",
			Help:    "Wall-clock interval between ticks",
			Buckets: []float64{.001, .004, .008, .016, .033, .05, .1, .25, .5, 1},
		}),
		FPS: factory.NewGauge(prometheus.GaugeOpts{
			Name: "claritty_frames_per_second",
			Help: "Tick rate averaged over the rolling window",
		}),

		CPUPercent: factory.NewGauge(prometheus.GaugeOpts{
			Name: "claritty_process_cpu_percent",
			Help: "CPU utilization of the process as a percentage of one core",
		}),
		ResidentBytes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "claritty_process_resident_bytes",
			Help: "Resident memory of the process",
		}),
		Threads: factory.NewGauge(prometheus.GaugeOpts{
			Name: "claritty_process_threads",
			Help: "Live thread count of the process",
		}),

		PtyReads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "claritty_pty_reads_total",
			Help: "PTY read attempts by outcome",
		}, []string{"result"}),
		PtyBytes: factory.NewCounter(prometheus.CounterOpts{
			Name: "claritty_pty_bytes_total",
			Help: "Bytes drained from the pty master",
		}),
		SinkBytes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "claritty_sink_bytes",
			Help: "Bytes accumulated in the output sink",
		}),

		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "claritty_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "claritty_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"method", "path"}),

		WSConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "claritty_ws_connections",
			Help: "Number of active WebSocket connections",
		}),
		WSMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "claritty_ws_messages_total",
			Help: "Total number of WebSocket messages sent",
		}, []string{"type"}),

		Uptime: factory.NewGauge(prometheus.GaugeOpts{
			Name: "claritty_uptime_seconds",
			Help: "Process uptime in seconds",
		}),
	}
}

// ObserveSample records one tick's metrics sample.
func (m *Metrics) ObserveSample(s monitor.Metrics) {
	m.Ticks.Inc()
	m.FrameInterval.Observe(s.FrameInterval.Seconds())
	m.FPS.Set(s.FPS)
	m.CPUPercent.Set(s.CPUPercent)
	m.ResidentBytes.Set(s.ResidentMB * 1024 * 1024)
	m.Threads.Set(float64(s.ThreadCount))
	m.Uptime.Set(time.Since(m.startTime).Seconds())

	m.mu.Lock()
	m.snapshot.Ticks++
	m.mu.Unlock()
}

// RecordRead records one drain attempt.
func (m *Metrics) RecordRead(result string, n int) {
	m.PtyReads.WithLabelValues(result).Inc()
	if n > 0 {
		m.PtyBytes.Add(float64(n))
	}

	m.mu.Lock()
	m.snapshot.BytesDrained += int64(n)
	if result == ReadError {
		m.snapshot.ReadErrors++
	}
	m.mu.Unlock()
}

// SetSinkBytes records the current sink size.
func (m *Metrics) SetSinkBytes(n int) {
	m.SinkBytes.Set(float64(n))
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.mu.Unlock()
}

// IncWSConnections increments active WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()

	m.mu.Lock()
	m.snapshot.ActiveConnections++
	m.mu.Unlock()
}

// DecWSConnections decrements active WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()

	m.mu.Lock()
	m.snapshot.ActiveConnections--
	m.mu.Unlock()
}

// RecordWSMessage records a sent WebSocket message
func (m *Metrics) RecordWSMessage(msgType string) {
	m.WSMessages.WithLabelValues(msgType).Inc()
}

// GetSnapshot returns the current counter values.
func (m *Metrics) GetSnapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}
