package terminal

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
	"golang.org/x/time/rate"
)

// ChunkSize is the most a single DrainOnce reads.
const ChunkSize = 4096

// Source exposes a readable, non-blocking descriptor. Fd returns -1 once
// the source is closed.
type Source interface {
	Fd() int
}

// DrainStats counts drain outcomes since the drainer was created.
type DrainStats struct {
	Reads      uint64 `json:"reads"`
	Bytes      uint64 `json:"bytes"`
	WouldBlock uint64 `json:"would_block"`
	Errors     uint64 `json:"errors"`
}

// Drainer moves output from a Source into a Sink, one bounded read per call.
type Drainer struct {
	src     Source
	sink    *Sink
	scratch []byte

	stats DrainStats

	// Read errors can repeat every tick, e.g. EIO after the shell exits.
	diag   rate.Sometimes
	logger *zap.Logger
}

// NewDrainer creates a drainer reading from src into sink.
func NewDrainer(src Source, sink *Sink, logger *zap.Logger) *Drainer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Drainer{
		src:     src,
		sink:    sink,
		scratch: make([]byte, ChunkSize),
		diag:    rate.Sometimes{First: 3, Interval: 5 * time.Second},
		logger:  logger.Named("drain"),
	}
}

// DrainOnce performs a single non-blocking read and appends what it got.
//
// It returns the number of bytes appended. "No data yet" is not an error:
// it returns 0, nil and leaves the sink untouched. Any other failure is
// logged and returned; callers keep ticking regardless.
func (d *Drainer) DrainOnce() (int, error) {
	fd := d.src.Fd()
	if fd < 0 {
		d.fail(ErrSessionClosed)
		return 0, ErrSessionClosed
	}

	n, err := unix.Read(fd, d.scratch)
	switch {
	case err == nil:
		d.sink.Append(d.scratch[:n])
		d.stats.Reads++
		d.stats.Bytes += uint64(n)
		return n, nil
	case isWouldBlock(err):
		d.stats.WouldBlock++
		return 0, nil
	default:
		d.fail(err)
		return 0, err
	}
}

func (d *Drainer) fail(err error) {
	d.stats.Errors++
	d.diag.Do(func() {
		d.logger.Warn("Failed to read from pty",
			zap.Error(err),
			zap.Uint64("errors_total", d.stats.Errors),
		)
	})
}

// WaitReadable blocks until the source has output or timeout elapses.
// It returns ErrHangup once the slave is gone and nothing is left to read.
func (d *Drainer) WaitReadable(timeout time.Duration) (bool, error) {
	fd := d.src.Fd()
	if fd < 0 {
		return false, ErrSessionClosed
	}

	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, int(timeout.Milliseconds()))
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return false, nil
		}
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	revents := fds[0].Revents
	if revents&unix.POLLIN != 0 {
		return true, nil
	}
	if revents&(unix.POLLHUP|unix.POLLERR|unix.POLLNVAL) != 0 {
		return false, ErrHangup
	}
	return false, nil
}

// Stats returns the drain counters.
func (d *Drainer) Stats() DrainStats { return d.stats }

// Sink returns the sink being fed.
func (d *Drainer) Sink() *Sink { return d.sink }

func isWouldBlock(err error) bool {
	return errors.Is(err, unix.EAGAIN) ||
		errors.Is(err, unix.EWOULDBLOCK) ||
		errors.Is(err, unix.EINTR)
}
