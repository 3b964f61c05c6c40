package main

import (
	"io"
	"time"

	"github.com/GriffinCanCode/claritty/internal/app"
	"go.uber.org/zap"
)

// console mirrors decoded shell output to a writer and logs the metrics
// overlay every interval. It runs on the driving goroutine.
type console struct {
	out      io.Writer
	written  int
	interval time.Duration
	lastLog  time.Time
	now      func() time.Time
	logger   *zap.Logger
}

func newConsole(out io.Writer, logger *zap.Logger, interval time.Duration) *console {
	c := &console{
		out:      out,
		interval: interval,
		now:      time.Now,
		logger:   logger,
	}
	c.lastLog = c.now()
	return c
}

// Consume writes the text that appeared since the previous view.
func (c *console) Consume(v app.View) {
	if len(v.Text) > c.written {
		if _, err := io.WriteString(c.out, v.Text[c.written:]); err != nil {
			c.logger.Debug("Failed to mirror output", zap.Error(err))
		}
		c.written = len(v.Text)
	}

	if c.interval <= 0 || v.Tick == 0 {
		return
	}
	now := c.now()
	if now.Sub(c.lastLog) < c.interval {
		return
	}
	c.lastLog = now
	c.logger.Info("Metrics",
		zap.Strings("overlay", v.Metrics.Lines()),
		zap.Uint64("tick", v.Tick),
		zap.Uint64("drain_errors", v.Drain.Errors),
	)
}
