package scheduler

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Scheduler runs deferred tasks after a delay.
type Scheduler interface {
	Schedule(delay time.Duration, task func())
}

// TimerScheduler runs every task on its own timer of the given clock.
type TimerScheduler struct {
	clock clockwork.Clock
}

// NewTimerScheduler creates a scheduler backed by clock timers
func NewTimerScheduler(clock clockwork.Clock) *TimerScheduler {
	return &TimerScheduler{clock: clock}
}

// Schedule implements Scheduler
func (s *TimerScheduler) Schedule(delay time.Duration, task func()) {
	if delay <= 0 {
		go task()
		return
	}
	s.clock.AfterFunc(delay, task)
}
