package delivery

import "time"

// Scheduler defers a task. The dispatcher uses it for the single retry so
// tests can trigger retries deterministically instead of sleeping.
type Scheduler interface {
	Schedule(delay time.Duration, task func())
}

// TimerScheduler is the production scheduler: a plain timer.
type TimerScheduler struct{}

func (TimerScheduler) Schedule(delay time.Duration, task func()) {
	time.AfterFunc(delay, task)
}
