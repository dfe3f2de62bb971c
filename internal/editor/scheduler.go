package editor

import (
	"log/slog"
	"sync"
	"time"
)

// DebounceWindow is how long the scheduler coalesces state changes
// before writing a snapshot.
const DebounceWindow = time.Second

// Scheduler debounces snapshot writes. Every state change calls
// Schedule; only after DebounceWindow of quiet does the snapshot
// function run. Flush runs it immediately, cancelling any pending
// timer. A single timer per scheduler: a new Schedule resets the
// pending one instead of stacking.
type Scheduler struct {
	mu       sync.Mutex
	timer    *time.Timer
	window   time.Duration
	snapshot func() error
	logger   *slog.Logger
	stopped  bool
}

// NewScheduler creates a scheduler that runs snapshot after the default
// debounce window.
func NewScheduler(snapshot func() error, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		window:   DebounceWindow,
		snapshot: snapshot,
		logger:   logger,
	}
}

// SetWindow overrides the debounce window. Used by tests to keep them
// fast.
func (s *Scheduler) SetWindow(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.window = d
}

// Schedule queues a snapshot write, replacing any pending one.
func (s *Scheduler) Schedule() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.window, s.fire)
}

// Flush writes the snapshot immediately, bypassing the debounce.
func (s *Scheduler) Flush() error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	return s.snapshot()
}

// Stop cancels any pending write. Further Schedule calls are ignored.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Scheduler) fire() {
	s.mu.Lock()
	s.timer = nil
	stopped := s.stopped
	s.mu.Unlock()

	if stopped {
		return
	}
	if err := s.snapshot(); err != nil {
		s.logger.Warn("autosave snapshot failed", "error", err)
	}
}
