package terminal

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// ConfigureNonblocking reads the descriptor's status flags, adds O_NONBLOCK
// and writes them back.
func ConfigureNonblocking(fd int) error {
	flags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFL, 0)
	if err != nil {
		return fmt.Errorf("%w: F_GETFL: %w", ErrNonblocking, err)
	}

	if _, err := unix.FcntlInt(uintptr(fd), unix.F_SETFL, flags|unix.O_NONBLOCK); err != nil {
		return fmt.Errorf("%w: F_SETFL: %w", ErrNonblocking, err)
	}

	return nil
}

// IsNonblocking reports whether O_NONBLOCK is set on fd.
func IsNonblocking(fd int) (bool, error) {
	flags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFL, 0)
	if err != nil {
		return false, err
	}
	return flags&unix.O_NONBLOCK != 0, nil
}
