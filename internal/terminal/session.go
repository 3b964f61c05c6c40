package terminal

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/GriffinCanCode/claritty/internal/shared/id"
	"github.com/creack/pty"
	"go.uber.org/zap"
)

const (
	// DefaultShell is looked up through PATH when Options.Shell is empty.
	DefaultShell = "zsh"

	// DefaultPrompt is the minimal PS1 forced into the child environment.
	DefaultPrompt = "$ "

	promptVar        = "PS1"
	promptCommandVar = "PROMPT_COMMAND"
)

// Opener allocates a pseudo-terminal pair.
type Opener func() (master, slave *os.File, err error)

// Options configures Create.
type Options struct {
	Shell  string
	Prompt string

	// Env is the base environment for the shell. Defaults to os.Environ().
	Env []string

	// Opener defaults to pty.Open.
	Opener Opener

	Logger *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Shell == "" {
		o.Shell = DefaultShell
	}
	if o.Prompt == "" {
		o.Prompt = DefaultPrompt
	}
	if o.Env == nil {
		o.Env = os.Environ()
	}
	if o.Opener == nil {
		o.Opener = pty.Open
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// configureNonblocking is swapped out by tests that exercise the failure path.
var configureNonblocking = ConfigureNonblocking

// Session owns the pty master and the shell started on the slave side.
type Session struct {
	ID        string
	Shell     string
	Path      string
	StartedAt time.Time

	cmd    *exec.Cmd
	master *os.File
	fd     int

	exited  chan struct{}
	exitErr error

	mu     sync.RWMutex
	closed bool

	logger *zap.Logger
}

// Create allocates a pty, starts the shell on its slave side and puts the
// master into non-blocking mode. Any failure aborts creation and releases
// whatever was acquired; a returned session is always fully initialized.
func Create(opts Options) (*Session, error) {
	opts = opts.withDefaults()
	logger := opts.Logger.Named("terminal")

	master, slave, err := opts.Opener()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPtyAllocation, err)
	}

	path, err := exec.LookPath(opts.Shell)
	if err != nil {
		_ = slave.Close()
		_ = master.Close()
		return nil, fmt.Errorf("%w: %q: %w", ErrShellNotFound, opts.Shell, err)
	}

	cmd := &exec.Cmd{
		Path:   path,
		Args:   []string{opts.Shell},
		Env:    childEnv(opts.Env, opts.Prompt),
		Stdin:  slave,
		Stdout: slave,
		Stderr: slave,
		SysProcAttr: &syscall.SysProcAttr{
			Setsid:  true,
			Setctty: true,
		},
	}

	if err := cmd.Start(); err != nil {
		_ = slave.Close()
		_ = master.Close()
		return nil, fmt.Errorf("%w: %w", ErrShellStart, err)
	}

	// The child holds its own copy of the slave.
	_ = slave.Close()

	fd := int(master.Fd())
	if err := configureNonblocking(fd); err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		_ = master.Close()
		return nil, err
	}

	s := &Session{
		ID:        string(id.NewSessionID()),
		Shell:     opts.Shell,
		Path:      path,
		StartedAt: time.Now(),
		cmd:       cmd,
		master:    master,
		fd:        fd,
		exited:    make(chan struct{}),
		logger:    logger,
	}

	logger.Info("Shell started",
		zap.String("session_id", s.ID),
		zap.String("shell", path),
		zap.Int("pid", cmd.Process.Pid),
	)

	go s.reap()

	return s, nil
}

// reap waits for the shell so it never lingers as a zombie.
func (s *Session) reap() {
	err := s.cmd.Wait()

	s.mu.Lock()
	s.exitErr = err
	s.mu.Unlock()
	close(s.exited)

	s.logger.Info("Shell exited",
		zap.String("session_id", s.ID),
		zap.Int("pid", s.cmd.Process.Pid),
		zap.Error(err),
	)
}

// Fd returns the raw master descriptor, or -1 once the session is closed.
func (s *Session) Fd() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return -1
	}
	return s.fd
}

// PID returns the shell's process id.
func (s *Session) PID() int { return s.cmd.Process.Pid }

// Exited is closed after the shell has exited and been reaped.
func (s *Session) Exited() <-chan struct{} { return s.exited }

// ExitErr returns the shell's wait result. Only meaningful after Exited is closed.
func (s *Session) ExitErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exitErr
}

// IsClosed reports whether Close has been called.
func (s *Session) IsClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Close releases the master descriptor. The shell receives a hangup from
// the kernel; no signal is sent explicitly.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	return s.master.Close()
}

// Info returns the public representation of the session.
func (s *Session) Info() SessionInfo {
	active := !s.IsClosed()
	select {
	case <-s.exited:
		active = false
	default:
	}

	return SessionInfo{
		ID:        s.ID,
		Shell:     s.Shell,
		Path:      s.Path,
		PID:       s.PID(),
		StartedAt: s.StartedAt,
		Active:    active,
	}
}

// SessionInfo is the public representation of a session
type SessionInfo struct {
	ID        string    `json:"id"`
	Shell     string    `json:"shell"`
	Path      string    `json:"path"`
	PID       int       `json:"pid"`
	StartedAt time.Time `json:"started_at"`
	Active    bool      `json:"active"`
}

// childEnv drops PROMPT_COMMAND and any inherited PS1, then forces PS1 to prompt.
func childEnv(base []string, prompt string) []string {
	env := make([]string, 0, len(base)+1)
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if key == promptCommandVar || key == promptVar {
			continue
		}
		env = append(env, kv)
	}
	return append(env, promptVar+"="+prompt)
}
