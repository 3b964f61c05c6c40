package terminal

import "errors"

// Setup failures. Any of them aborts Create; no session is returned.
var (
	ErrPtyAllocation = errors.New("pty allocation failed")
	ErrShellNotFound = errors.New("shell not found in PATH")
	ErrShellStart    = errors.New("shell failed to start")
	ErrNonblocking   = errors.New("failed to configure non-blocking descriptor")
)

// ErrSessionClosed is returned by operations on a closed session.
var ErrSessionClosed = errors.New("session is closed")

// ErrHangup is reported by WaitReadable when the slave side has gone away
// and no buffered output remains.
var ErrHangup = errors.New("pty hung up")
