// Package testutil provides testing utilities and helpers for package tests.
package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/GriffinCanCode/claritty/internal/monitor"
	"github.com/stretchr/testify/mock"
)

// MockProcessSource is a mock implementation of monitor.ProcessSource.
type MockProcessSource struct {
	mock.Mock
}

// Refresh mocks the Refresh method.
func (m *MockProcessSource) Refresh() error {
	args := m.Called()
	return args.Error(0)
}

// Lookup mocks the Lookup method.
func (m *MockProcessSource) Lookup(pid int) (monitor.ProcessStats, bool) {
	args := m.Called(pid)
	return args.Get(0).(monitor.ProcessStats), args.Bool(1)
}

// NewMockProcessSource creates a mock source that always finds pid with stats.
func NewMockProcessSource(t *testing.T, pid int, stats monitor.ProcessStats) *MockProcessSource {
	t.Helper()
	m := new(MockProcessSource)

	m.On("Refresh").Return(nil).Maybe()
	m.On("Lookup", pid).Return(stats, true).Maybe()

	return m
}

// FakeClock is a manually advanced clock.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock creates a clock starting at a fixed instant.
func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
