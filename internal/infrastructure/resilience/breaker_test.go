package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFailed = errors.New("failed")

type manualClock struct{ now time.Time }

func (c *manualClock) Now() time.Time { return c.now }

func (c *manualClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newClock() *manualClock {
	return &manualClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func call(b *Breaker, success bool) error {
	return b.Execute(func() error {
		if success {
			return nil
		}
		return errFailed
	})
}

func TestBreakerStateTransitions(t *testing.T) {
	tests := []struct {
		name          string
		settings      Settings
		requests      []bool // true = success, false = failure
		expectedState State
	}{
		{
			name:          "stays closed on successes",
			requests:      []bool{true, true, true},
			expectedState: StateClosed,
		},
		{
			name: "opens after consecutive failures",
			settings: Settings{
				ReadyToTrip: func(counts Counts) bool {
					return counts.ConsecutiveFailures >= 3
				},
			},
			requests:      []bool{false, false, false},
			expectedState: StateOpen,
		},
		{
			name: "success resets the failure streak",
			settings: Settings{
				ReadyToTrip: func(counts Counts) bool {
					return counts.ConsecutiveFailures >= 2
				},
			},
			requests:      []bool{false, true, false, true},
			expectedState: StateClosed,
		},
		{
			name:          "default trips after ten failures",
			requests:      []bool{false, false, false, false, false, false, false, false, false, false},
			expectedState: StateOpen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newClock()
			tt.settings.Now = clock.Now
			breaker := New("test", tt.settings)

			for _, success := range tt.requests {
				_ = call(breaker, success)
			}

			assert.Equal(t, tt.expectedState, breaker.State())
		})
	}
}

func TestBreakerRejectsWhileOpen(t *testing.T) {
	clock := newClock()
	breaker := New("procfs", Settings{
		Timeout:     time.Minute,
		ReadyToTrip: func(c Counts) bool { return c.ConsecutiveFailures >= 1 },
		Now:         clock.Now,
	})

	require.ErrorIs(t, call(breaker, false), errFailed)

	called := false
	err := breaker.Execute(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	clock := newClock()
	var transitions []string
	breaker := New("procfs", Settings{
		MaxRequests: 2,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c Counts) bool { return c.ConsecutiveFailures >= 1 },
		Now:         clock.Now,
		OnStateChange: func(_ string, from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})

	_ = call(breaker, false)
	require.Equal(t, StateOpen, breaker.State())

	clock.Advance(30 * time.Second)
	assert.Equal(t, StateHalfOpen, breaker.State())

	require.NoError(t, call(breaker, true))
	assert.Equal(t, StateHalfOpen, breaker.State())
	require.NoError(t, call(breaker, true))
	assert.Equal(t, StateClosed, breaker.State())

	assert.Equal(t, []string{"closed->open", "open->half-open", "half-open->closed"}, transitions)
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	clock := newClock()
	breaker := New("procfs", Settings{
		Timeout:     time.Second,
		ReadyToTrip: func(c Counts) bool { return c.ConsecutiveFailures >= 1 },
		Now:         clock.Now,
	})

	_ = call(breaker, false)
	clock.Advance(time.Second)
	require.Equal(t, StateHalfOpen, breaker.State())

	_ = call(breaker, false)
	assert.Equal(t, StateOpen, breaker.State())

	// The open period restarts from the half-open failure.
	clock.Advance(500 * time.Millisecond)
	assert.ErrorIs(t, call(breaker, true), ErrCircuitOpen)
}

func TestBreakerHalfOpenLimitsTrials(t *testing.T) {
	clock := newClock()
	breaker := New("procfs", Settings{
		MaxRequests: 1,
		Timeout:     time.Second,
		ReadyToTrip: func(c Counts) bool { return c.ConsecutiveFailures >= 1 },
		Now:         clock.Now,
	})

	_ = call(breaker, false)
	clock.Advance(time.Second)

	// A trial in flight occupies the only half-open slot.
	err := breaker.Execute(func() error {
		assert.ErrorIs(t, call(breaker, true), ErrTooManyRequests)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, StateClosed, breaker.State())
}

func TestBreakerCounts(t *testing.T) {
	breaker := New("test", Settings{Now: newClock().Now})

	_ = call(breaker, true)
	_ = call(breaker, true)
	_ = call(breaker, false)

	counts := breaker.Counts()
	assert.Equal(t, uint32(3), counts.Requests)
	assert.Equal(t, uint32(2), counts.TotalSuccesses)
	assert.Equal(t, uint32(1), counts.TotalFailures)
	assert.Equal(t, uint32(1), counts.ConsecutiveFailures)
	assert.Equal(t, uint32(0), counts.ConsecutiveSuccesses)
	assert.Equal(t, "test", breaker.Name())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "unknown", State(42).String())
}
