package monitor

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/prometheus/procfs"
)

// ProcessSource provides refreshed per-process statistics.
type ProcessSource interface {
	// Refresh takes a new snapshot.
	Refresh() error
	// Lookup reports the stats of pid in the latest snapshot.
	Lookup(pid int) (ProcessStats, bool)
}

type cpuSample struct {
	seconds float64
	at      time.Time
}

// ProcfsSource reads process statistics from /proc/<pid>/stat.
//
// Only watched pids are read on Refresh. CPU percent is the CPU time spent
// between two refreshes divided by the wall time between them, so the first
// refresh of a pid reports 0.
type ProcfsSource struct {
	mountPoint string
	pfs        *procfs.FS
	now        func() time.Time

	mu       sync.Mutex
	watched  map[int]struct{}
	previous map[int]cpuSample
	current  map[int]ProcessStats
}

// NewProcfsSource creates a source reading the proc filesystem at mountPoint.
func NewProcfsSource(mountPoint string, pids ...int) *ProcfsSource {
	if mountPoint == "" {
		mountPoint = procfs.DefaultMountPoint
	}
	s := &ProcfsSource{
		mountPoint: mountPoint,
		now:        time.Now,
		watched:    make(map[int]struct{}),
		previous:   make(map[int]cpuSample),
		current:    make(map[int]ProcessStats),
	}
	for _, pid := range pids {
		s.watched[pid] = struct{}{}
	}
	return s
}

// Watch adds pid to the set read on Refresh.
func (s *ProcfsSource) Watch(pid int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watched[pid] = struct{}{}
}

// Refresh re-reads every watched pid. A pid that no longer exists simply
// drops out of the snapshot; only a missing proc filesystem is an error.
func (s *ProcfsSource) Refresh() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pfs == nil {
		pfs, err := procfs.NewFS(s.mountPoint)
		if err != nil {
			s.current = make(map[int]ProcessStats)
			return fmt.Errorf("open procfs %s: %w", s.mountPoint, err)
		}
		s.pfs = &pfs
	}

	now := s.now()
	current := make(map[int]ProcessStats, len(s.watched))
	var errs []error

	for pid := range s.watched {
		stat, err := readStat(*s.pfs, pid)
		if err != nil {
			delete(s.previous, pid)
			if !errors.Is(err, fs.ErrNotExist) {
				errs = append(errs, err)
			}
			continue
		}

		cpu := stat.CPUTime()
		stats := ProcessStats{
			ResidentBytes: uint64(max(stat.ResidentMemory(), 0)),
			Threads:       stat.NumThreads,
		}
		if prev, ok := s.previous[pid]; ok {
			if wall := now.Sub(prev.at).Seconds(); wall > 0 {
				stats.CPUPercent = max((cpu-prev.seconds)/wall*100, 0)
			}
		}

		s.previous[pid] = cpuSample{seconds: cpu, at: now}
		current[pid] = stats
	}

	s.current = current
	return errors.Join(errs...)
}

// Lookup reports pid's stats from the latest snapshot.
func (s *ProcfsSource) Lookup(pid int) (ProcessStats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, ok := s.current[pid]
	return stats, ok
}

func readStat(pfs procfs.FS, pid int) (procfs.ProcStat, error) {
	proc, err := pfs.Proc(pid)
	if err != nil {
		return procfs.ProcStat{}, err
	}
	return proc.Stat()
}
