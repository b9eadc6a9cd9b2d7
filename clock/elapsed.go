package clock

import (
	"math"
	"time"
)

// Elapsed tracks the seconds since a round started and notifies subscribers
// when the whole-second value changes. It is owned by the round and handed to
// whoever displays it.
type Elapsed struct {
	clock   Clock
	start   time.Time
	stopped time.Time
	running bool
	last    int
	subs    map[int]func(int)
	nextSub int
}

// NewElapsed creates a stopped elapsed timer.
func NewElapsed(c Clock) *Elapsed {
	return &Elapsed{clock: c, subs: make(map[int]func(int))}
}

// Start begins counting from now and publishes zero.
func (e *Elapsed) Start() {
	e.start = e.clock.Now()
	e.running = true
	e.publish(0)
}

// Stop freezes the timer at the current value.
func (e *Elapsed) Stop() {
	if !e.running {
		return
	}
	e.last = e.Whole()
	e.stopped = e.clock.Now()
	e.running = false
}

// Reset stops the timer and publishes zero.
func (e *Elapsed) Reset() {
	e.running = false
	e.start = time.Time{}
	e.stopped = time.Time{}
	e.publish(0)
}

// Running reports whether the timer is counting.
func (e *Elapsed) Running() bool { return e.running }

// StartedAt returns the start timestamp of the current count.
func (e *Elapsed) StartedAt() time.Time { return e.start }

// Seconds returns fractional seconds since Start.
func (e *Elapsed) Seconds() float64 {
	if e.start.IsZero() {
		return 0
	}
	if !e.running {
		return e.stopped.Sub(e.start).Seconds()
	}
	return e.clock.Now().Sub(e.start).Seconds()
}

// Whole returns the elapsed time floored to whole seconds.
func (e *Elapsed) Whole() int {
	if !e.running {
		return e.last
	}
	return int(math.Floor(e.Seconds()))
}

// Tick publishes the whole-second value if it changed since the last publish.
func (e *Elapsed) Tick() {
	if !e.running {
		return
	}
	if w := int(math.Floor(e.Seconds())); w != e.last {
		e.publish(w)
	}
}

// Subscribe registers fn for whole-second changes and returns an unsubscribe func.
// fn is called immediately with the current value.
func (e *Elapsed) Subscribe(fn func(int)) func() {
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	fn(e.last)
	return func() { delete(e.subs, id) }
}

func (e *Elapsed) publish(v int) {
	e.last = v
	for _, fn := range e.subs {
		fn(v)
	}
}
