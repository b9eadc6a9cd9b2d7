package clock

import (
	"testing"
	"time"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestManualAdvance(t *testing.T) {
	c := NewManual(epoch)
	c.Advance(1500 * time.Millisecond)
	if got := c.Now().Sub(epoch); got != 1500*time.Millisecond {
		t.Errorf("Advance: elapsed = %v, want 1.5s", got)
	}
	c.Set(epoch)
	if !c.Now().Equal(epoch) {
		t.Errorf("Set: now = %v, want %v", c.Now(), epoch)
	}
}

func TestSchedulerFiresInDueOrder(t *testing.T) {
	c := NewManual(epoch)
	s := NewScheduler(c)

	var order []int
	s.After(300*time.Millisecond, func() { order = append(order, 3) })
	s.After(100*time.Millisecond, func() { order = append(order, 1) })
	s.After(200*time.Millisecond, func() { order = append(order, 2) })

	if n := s.Run(); n != 0 {
		t.Fatalf("Run before due fired %d callbacks", n)
	}

	c.Advance(time.Second)
	if n := s.Run(); n != 3 {
		t.Fatalf("Run fired %d callbacks, want 3", n)
	}
	for i, v := range order {
		if v != i+1 {
			t.Errorf("order = %v, want [1 2 3]", order)
			break
		}
	}
	if s.Pending() != 0 {
		t.Errorf("Pending = %d, want 0", s.Pending())
	}
}

func TestSchedulerCancel(t *testing.T) {
	c := NewManual(epoch)
	s := NewScheduler(c)

	fired := false
	id := s.After(time.Millisecond, func() { fired = true })
	if !s.Cancel(id) {
		t.Fatal("Cancel returned false for a pending timer")
	}
	if s.Cancel(id) {
		t.Error("second Cancel should report false")
	}
	c.Advance(time.Second)
	s.Run()
	if fired {
		t.Error("cancelled callback fired")
	}
}

func TestSchedulerCancelAllDuringRun(t *testing.T) {
	c := NewManual(epoch)
	s := NewScheduler(c)

	var fired []string
	s.After(10*time.Millisecond, func() {
		fired = append(fired, "transition")
		s.CancelAll()
	})
	s.After(20*time.Millisecond, func() { fired = append(fired, "stale") })
	s.After(time.Hour, func() { fired = append(fired, "future") })

	c.Advance(50 * time.Millisecond)
	s.Run()
	c.Advance(2 * time.Hour)
	s.Run()

	if len(fired) != 1 || fired[0] != "transition" {
		t.Errorf("fired = %v, want [transition]", fired)
	}
}

func TestSchedulerRescheduleFromCallback(t *testing.T) {
	c := NewManual(epoch)
	s := NewScheduler(c)

	count := 0
	var loop func()
	loop = func() {
		count++
		s.After(100*time.Millisecond, loop)
	}
	s.After(100*time.Millisecond, loop)

	for i := 0; i < 5; i++ {
		c.Advance(100 * time.Millisecond)
		s.Run()
	}
	if count != 5 {
		t.Errorf("count = %d, want 5", count)
	}
}

func TestElapsedPublishesWholeSeconds(t *testing.T) {
	c := NewManual(epoch)
	e := NewElapsed(c)

	var seen []int
	unsub := e.Subscribe(func(v int) { seen = append(seen, v) })

	e.Start()
	for i := 0; i < 25; i++ {
		c.Advance(100 * time.Millisecond)
		e.Tick()
	}
	// 0 from Subscribe, 0 from Start, then 1 and 2.
	want := []int{0, 0, 1, 2}
	if len(seen) != len(want) {
		t.Fatalf("seen = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("seen = %v, want %v", seen, want)
			break
		}
	}

	unsub()
	c.Advance(5 * time.Second)
	e.Tick()
	if len(seen) != len(want) {
		t.Errorf("unsubscribed callback still called: %v", seen)
	}
}

func TestElapsedStopFreezes(t *testing.T) {
	c := NewManual(epoch)
	e := NewElapsed(c)
	e.Start()
	c.Advance(3250 * time.Millisecond)
	e.Stop()
	c.Advance(10 * time.Second)

	if got := e.Seconds(); got != 3.25 {
		t.Errorf("Seconds after Stop = %v, want 3.25", got)
	}
	if got := e.Whole(); got != 3 {
		t.Errorf("Whole after Stop = %v, want 3", got)
	}

	e.Reset()
	if e.Seconds() != 0 || e.Whole() != 0 {
		t.Errorf("Reset: seconds=%v whole=%v, want 0", e.Seconds(), e.Whole())
	}
}
