package clock

import (
	"sort"
	"time"
)

// TimerID identifies a scheduled callback.
type TimerID uint64

type timer struct {
	id  TimerID
	due time.Time
	fn  func()
}

// Scheduler holds deferred callbacks and runs them from the game tick.
//
// Callbacks never run on their own goroutine; Run fires every due callback in
// due order on the caller's goroutine, so they observe the same state the
// tick does. CancelAll drops everything pending, which is how a state
// transition invalidates stale timers.
type Scheduler struct {
	clock  Clock
	nextID TimerID
	gen    uint64
	timers []timer
}

// NewScheduler creates a scheduler reading time from c.
func NewScheduler(c Clock) *Scheduler {
	return &Scheduler{clock: c}
}

// Now returns the scheduler's current time.
func (s *Scheduler) Now() time.Time {
	return s.clock.Now()
}

// After schedules fn to run once d has elapsed.
func (s *Scheduler) After(d time.Duration, fn func()) TimerID {
	s.nextID++
	s.timers = append(s.timers, timer{id: s.nextID, due: s.clock.Now().Add(d), fn: fn})
	return s.nextID
}

// Cancel removes a pending callback. Cancelling an unknown or already fired
// id is a no-op. Reports whether a callback was removed.
func (s *Scheduler) Cancel(id TimerID) bool {
	for i, t := range s.timers {
		if t.id == id {
			s.timers = append(s.timers[:i], s.timers[i+1:]...)
			return true
		}
	}
	return false
}

// CancelAll drops every pending callback, including any still queued in a
// Run that is in progress.
func (s *Scheduler) CancelAll() {
	s.timers = nil
	s.gen++
}

// Pending returns the number of callbacks not yet fired.
func (s *Scheduler) Pending() int {
	return len(s.timers)
}

// Run fires every callback whose due time has passed and returns how many
// ran. Callbacks scheduled while running are picked up by a later Run.
func (s *Scheduler) Run() int {
	now := s.clock.Now()

	var due, keep []timer
	for _, t := range s.timers {
		if !t.due.After(now) {
			due = append(due, t)
		} else {
			keep = append(keep, t)
		}
	}
	if len(due) == 0 {
		return 0
	}
	s.timers = keep

	sort.SliceStable(due, func(i, j int) bool { return due[i].due.Before(due[j].due) })

	gen := s.gen
	fired := 0
	for _, t := range due {
		if s.gen != gen {
			break
		}
		t.fn()
		fired++
	}
	return fired
}
