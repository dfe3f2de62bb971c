package editor

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestSchedulerCoalescesBursts(t *testing.T) {
	var writes atomic.Int32
	s := NewScheduler(func() error {
		writes.Add(1)
		return nil
	}, testLogger())
	s.SetWindow(20 * time.Millisecond)

	for i := 0; i < 10; i++ {
		s.Schedule()
	}

	time.Sleep(100 * time.Millisecond)

	if got := writes.Load(); got != 1 {
		t.Errorf("burst of schedules produced %d writes, want 1", got)
	}
}

func TestSchedulerFlushBypassesDebounce(t *testing.T) {
	var writes atomic.Int32
	s := NewScheduler(func() error {
		writes.Add(1)
		return nil
	}, testLogger())
	s.SetWindow(time.Hour)

	s.Schedule()
	if err := s.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	if got := writes.Load(); got != 1 {
		t.Errorf("flush produced %d writes, want 1 immediate write", got)
	}

	// The pending timer was cancelled by Flush; nothing else may fire.
	time.Sleep(50 * time.Millisecond)
	if got := writes.Load(); got != 1 {
		t.Errorf("cancelled timer still fired: %d writes", got)
	}
}

func TestSchedulerStop(t *testing.T) {
	var writes atomic.Int32
	s := NewScheduler(func() error {
		writes.Add(1)
		return nil
	}, testLogger())
	s.SetWindow(10 * time.Millisecond)

	s.Schedule()
	s.Stop()
	s.Schedule()

	time.Sleep(50 * time.Millisecond)

	if got := writes.Load(); got != 0 {
		t.Errorf("stopped scheduler wrote %d times", got)
	}
}
