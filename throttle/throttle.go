// Package throttle decouples the per-tick simulation from the slower UI
// path. Every tick writes its latest values in; the sink only hears about
// them at a bounded rate or when they change enough to matter.
package throttle

import (
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/whiteout/config"
)

// DemonMarker is a live demon as the minimap shows it.
type DemonMarker struct {
	ID       int
	Position r3.Vec
}

// Minimap is a display-only copy of agent positions. Gameplay never reads it.
type Minimap struct {
	At        time.Time
	Player    r3.Vec
	CameraYaw float64
	Facing    float64
	Sister    r3.Vec
	Demons    []DemonMarker
}

// Sink receives throttled updates. Implementations run on the tick goroutine
// and must not block.
type Sink interface {
	Minimap(Minimap)
	SisterHint(distance float64)
	DemonHint(distance float64)
	Moving(bool)
}

type hintChannel struct {
	last  float64
	valid bool
}

// offer reports whether d differs enough from the last propagated value.
func (h *hintChannel) offer(d, delta float64) bool {
	if h.valid {
		if math.IsInf(d, 1) && math.IsInf(h.last, 1) {
			return false
		}
		if math.Abs(d-h.last) <= delta {
			return false
		}
	}
	h.last = d
	h.valid = true
	return true
}

// Stats counts what was offered against what got through.
type Stats struct {
	MinimapOffered, MinimapSent int
	HintsOffered, HintsSent     int
	MovingOffered, MovingSent   int
}

// Throttle gates per-tick values on their way to a Sink.
type Throttle struct {
	interval time.Duration
	delta    float64
	sink     Sink

	lastMinimap time.Time
	sentMinimap bool
	pending     *Minimap

	sister, demon hintChannel

	moving      bool
	movingValid bool

	stats Stats
}

// New creates a throttle writing to sink.
func New(cfg config.ThrottleConfig, sink Sink) *Throttle {
	return &Throttle{
		interval: cfg.MinimapEvery(),
		delta:    cfg.HintDelta,
		sink:     sink,
	}
}

// Reset forgets everything propagated so far, so the next values go through.
func (t *Throttle) Reset() {
	t.sentMinimap = false
	t.pending = nil
	t.sister = hintChannel{}
	t.demon = hintChannel{}
	t.movingValid = false
}

// Stats returns the counters accumulated since creation.
func (t *Throttle) Stats() Stats { return t.stats }

// OfferMinimap records the latest positions and forwards them if the
// minimap interval has passed since the last forward. Values offered in
// between are superseded, never queued.
func (t *Throttle) OfferMinimap(m Minimap) bool {
	t.stats.MinimapOffered++
	if t.sentMinimap && m.At.Sub(t.lastMinimap) < t.interval {
		t.pending = &m
		return false
	}
	t.emitMinimap(m)
	return true
}

// Flush forwards a superseded minimap immediately, if there is one.
func (t *Throttle) Flush() bool {
	if t.pending == nil {
		return false
	}
	t.emitMinimap(*t.pending)
	return true
}

func (t *Throttle) emitMinimap(m Minimap) {
	m.Demons = append([]DemonMarker(nil), m.Demons...)
	t.lastMinimap = m.At
	t.sentMinimap = true
	t.pending = nil
	t.stats.MinimapSent++
	t.sink.Minimap(m)
}

// OfferHints forwards each distance whose change since it was last
// forwarded exceeds the hint delta.
func (t *Throttle) OfferHints(sisterDistance, demonDistance float64) {
	t.stats.HintsOffered += 2
	if t.sister.offer(sisterDistance, t.delta) {
		t.stats.HintsSent++
		t.sink.SisterHint(sisterDistance)
	}
	if t.demon.offer(demonDistance, t.delta) {
		t.stats.HintsSent++
		t.sink.DemonHint(demonDistance)
	}
}

// OfferMoving forwards the moving flag only when it flips.
func (t *Throttle) OfferMoving(moving bool) {
	t.stats.MovingOffered++
	if t.movingValid && moving == t.moving {
		return
	}
	t.moving = moving
	t.movingValid = true
	t.stats.MovingSent++
	t.sink.Moving(moving)
}

// Multi fans each update out to every sink in order.
type Multi []Sink

func (m Multi) Minimap(v Minimap) {
	for _, s := range m {
		s.Minimap(v)
	}
}

func (m Multi) SisterHint(d float64) {
	for _, s := range m {
		s.SisterHint(d)
	}
}

func (m Multi) DemonHint(d float64) {
	for _, s := range m {
		s.DemonHint(d)
	}
}

func (m Multi) Moving(v bool) {
	for _, s := range m {
		s.Moving(v)
	}
}

// Discard drops every update.
type Discard struct{}

func (Discard) Minimap(Minimap)    {}
func (Discard) SisterHint(float64) {}
func (Discard) DemonHint(float64)  {}
func (Discard) Moving(bool)        {}

// Latest keeps the most recent value of each channel for a frontend to
// read on its next frame. Distances start out of range.
type Latest struct {
	minimap    Minimap
	hasMinimap bool
	sister     float64
	demon      float64
	moving     bool
}

// NewLatest creates an empty sink.
func NewLatest() *Latest {
	l := &Latest{}
	l.Reset()
	return l
}

// Reset forgets every received value.
func (l *Latest) Reset() {
	*l = Latest{sister: math.Inf(1), demon: math.Inf(1)}
}

func (l *Latest) Minimap(m Minimap) {
	l.minimap = m
	l.hasMinimap = true
}

func (l *Latest) SisterHint(d float64) { l.sister = d }
func (l *Latest) DemonHint(d float64)  { l.demon = d }
func (l *Latest) Moving(v bool)        { l.moving = v }

// Snapshot returns the last minimap snapshot, if any arrived.
func (l *Latest) Snapshot() (Minimap, bool) { return l.minimap, l.hasMinimap }

// SisterDistance returns the last propagated sister distance.
func (l *Latest) SisterDistance() float64 { return l.sister }

// DemonDistance returns the last propagated closest demon distance.
func (l *Latest) DemonDistance() float64 { return l.demon }

// IsMoving reports the last propagated movement flag.
func (l *Latest) IsMoving() bool { return l.moving }
