package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/GriffinCanCode/claritty/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/claritty/internal/monitor"
	"github.com/GriffinCanCode/claritty/internal/terminal"
	"go.uber.org/zap"
)

// Mode selects how the loop waits between ticks.
type Mode string

const (
	ModeTick  Mode = "tick"
	ModeEvent Mode = "event"
)

// DefaultTickInterval is roughly one frame at 60 Hz.
const DefaultTickInterval = 16 * time.Millisecond

// flushLimit bounds Flush so a shell that keeps writing cannot stall shutdown.
const flushLimit = 256

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeTick, ModeEvent:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown loop mode %q", s)
	}
}

// View is what consumers see after a tick. Bytes and Text alias storage
// that is only ever appended to, so a View stays valid after later ticks.
type View struct {
	Bytes   []byte              `json:"-"`
	Text    string              `json:"-"`
	Metrics monitor.Metrics     `json:"metrics"`
	Drain   terminal.DrainStats `json:"drain"`
	Tick    uint64              `json:"tick"`
}

// Consumer is called on the driving goroutine after each published tick.
type Consumer func(View)

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *App) { a.logger = logger }
}

// WithMetrics exports every tick to Prometheus.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// WithTickInterval sets the tick interval. Non-positive values are ignored.
func WithTickInterval(d time.Duration) Option {
	return func(a *App) {
		if d > 0 {
			a.interval = d
		}
	}
}

// WithMode sets the wait mode.
func WithMode(m Mode) Option {
	return func(a *App) { a.mode = m }
}

// WithConsumer registers a per-tick callback.
func WithConsumer(c Consumer) Option {
	return func(a *App) { a.consumers = append(a.consumers, c) }
}

// App owns the driving loop.
type App struct {
	drainer   *terminal.Drainer
	sampler   *monitor.Sampler
	metrics   *monitoring.Metrics
	consumers []Consumer

	interval time.Duration
	mode     Mode
	ticks    uint64

	mu   sync.RWMutex
	view View

	subMu  sync.Mutex
	subs   map[uint64]chan View
	nextID uint64

	logger *zap.Logger
}

// New creates an app draining src into a fresh sink.
func New(src terminal.Source, sampler *monitor.Sampler, opts ...Option) *App {
	a := &App{
		sampler:  sampler,
		interval: DefaultTickInterval,
		mode:     ModeTick,
		subs:     make(map[uint64]chan View),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	a.logger = a.logger.Named("app")
	a.drainer = terminal.NewDrainer(src, terminal.NewSink(), a.logger)

	return a
}

// Tick drains once, samples metrics and publishes the result. Read errors
// are already logged by the drainer and never stop the loop.
func (a *App) Tick() View {
	a.drain()

	sample := a.sampler.Sample()
	a.ticks++

	v := a.snapshot(sample)
	if a.metrics != nil {
		a.metrics.ObserveSample(sample)
	}

	a.publish(v)
	return v
}

func (a *App) drain() int {
	n, err := a.drainer.DrainOnce()
	if a.metrics != nil {
		a.metrics.RecordRead(readResult(n, err), n)
	}
	return n
}

func (a *App) snapshot(m monitor.Metrics) View {
	sink := a.drainer.Sink()
	v := View{
		Bytes:   sink.Bytes(),
		Text:    sink.Text(),
		Metrics: m,
		Drain:   a.drainer.Stats(),
		Tick:    a.ticks,
	}
	if a.metrics != nil {
		a.metrics.SetSinkBytes(len(v.Bytes))
	}
	return v
}

func readResult(n int, err error) string {
	switch {
	case err != nil:
		return monitoring.ReadError
	case n == 0:
		return monitoring.ReadWouldBlock
	default:
		return monitoring.ReadData
	}
}

func (a *App) publish(v View) {
	a.mu.Lock()
	a.view = v
	a.mu.Unlock()

	for _, c := range a.consumers {
		c(v)
	}

	a.subMu.Lock()
	for _, ch := range a.subs {
		offer(ch, v)
	}
	a.subMu.Unlock()
}

// offer replaces whatever the subscriber has not consumed yet.
func offer(ch chan View, v View) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}

// Run ticks until ctx is cancelled. It returns nil on cancellation.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("Driving loop started",
		zap.String("mode", string(a.mode)),
		zap.Duration("interval", a.interval),
	)
	defer a.logger.Info("Driving loop stopped", zap.Uint64("ticks", a.ticks))

	switch a.mode {
	case ModeEvent:
		return a.runEvent(ctx)
	default:
		return a.runTick(ctx)
	}
}

func (a *App) runTick(ctx context.Context) error {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			a.Tick()
		}
	}
}

func (a *App) runEvent(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		_, err := a.drainer.WaitReadable(a.interval)
		if err != nil {
			// Hangup or a closed session stays signalled; fall back to
			// ticking at the interval instead of spinning.
			if !errors.Is(err, terminal.ErrHangup) && !errors.Is(err, terminal.ErrSessionClosed) {
				a.logger.Debug("Readiness wait failed", zap.Error(err))
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(a.interval):
			}
		}

		a.Tick()
	}
}

// Flush drains until a read returns nothing, so output written just before
// the shell exited is not lost, then publishes once with the last metrics
// sample. It does not count as a tick. It must run on the driving goroutine,
// or after Run has returned.
func (a *App) Flush() View {
	for i := 0; i < flushLimit; i++ {
		if a.drain() == 0 {
			break
		}
	}

	v := a.snapshot(a.View().Metrics)
	a.publish(v)
	return v
}

// Subscribe returns a channel that always holds the most recent unseen
// View, and a function that stops delivery.
func (a *App) Subscribe() (<-chan View, func()) {
	ch := make(chan View, 1)

	a.subMu.Lock()
	id := a.nextID
	a.nextID++
	a.subs[id] = ch
	a.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			a.subMu.Lock()
			delete(a.subs, id)
			a.subMu.Unlock()
		})
	}
}

// View returns the latest published view.
func (a *App) View() View {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.view
}

// CurrentBytes returns all raw output published so far.
func (a *App) CurrentBytes() []byte { return a.View().Bytes }

// CurrentText returns the decoded output published so far.
func (a *App) CurrentText() string { return a.View().Text }

// CurrentMetrics returns the most recent metrics sample.
func (a *App) CurrentMetrics() monitor.Metrics { return a.View().Metrics }

// Mode returns the configured wait mode.
func (a *App) Mode() Mode { return a.mode }

// Interval returns the tick interval.
func (a *App) Interval() time.Duration { return a.interval }
