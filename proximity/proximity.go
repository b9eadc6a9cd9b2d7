// Package proximity measures agent distances each tick and decides which
// distance-driven transition, if any, fires.
package proximity

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/whiteout/config"
	"github.com/pthm-cable/whiteout/motion"
)

// NoDemon marks the absence of a live demon in a snapshot.
const NoDemon = -1

// Snapshot is the per-tick distance summary. It is not retained between ticks.
type Snapshot struct {
	SisterDistance       float64
	ClosestDemonDistance float64 // +Inf when no demon is alive
	ClosestDemon         int     // NoDemon when no demon is alive
}

// Outcome is the transition chosen for a tick.
type Outcome uint8

const (
	OutcomeNone Outcome = iota
	OutcomeClear
	OutcomeEncounter // Closest demon reached; start the minigame
)

func (o Outcome) String() string {
	switch o {
	case OutcomeClear:
		return "clear"
	case OutcomeEncounter:
		return "encounter"
	}
	return "none"
}

// Result is what Evaluate decided this tick.
type Result struct {
	Snapshot
	Discovered bool // Discovery latched on this tick
	Outcome    Outcome
	Demon      int // Demon id for OutcomeEncounter
}

// Demons is the read view of the demon pool the engine needs.
type Demons interface {
	DemonCount() int
	Killed(id int) bool
	DemonPosition(id int) r3.Vec
}

// Engine holds the discovery latch and thresholds for one round.
type Engine struct {
	cfg        config.ProximityConfig
	discovered bool
}

// NewEngine creates an engine with the given thresholds.
func NewEngine(cfg config.ProximityConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Reset clears the discovery latch for a new round.
func (e *Engine) Reset() { e.discovered = false }

// Discovered reports whether the sister has been found this round.
func (e *Engine) Discovered() bool { return e.discovered }

// Measure computes distances without deciding anything.
func Measure(player, sister r3.Vec, demons Demons) Snapshot {
	snap := Snapshot{
		SisterDistance:       motion.Distance(player, sister),
		ClosestDemonDistance: math.Inf(1),
		ClosestDemon:         NoDemon,
	}
	for id := 0; id < demons.DemonCount(); id++ {
		if demons.Killed(id) {
			continue
		}
		// Strict less keeps the lowest id on ties.
		if d := motion.Distance(player, demons.DemonPosition(id)); d < snap.ClosestDemonDistance {
			snap.ClosestDemonDistance = d
			snap.ClosestDemon = id
		}
	}
	return snap
}

// Evaluate measures distances and picks the tick's transition in priority
// order: discovery latch, then clear, then a demon encounter. Clear wins
// over an encounter on the same tick. No encounter fires while a minigame
// is already running.
func (e *Engine) Evaluate(player, sister r3.Vec, demons Demons, minigameActive bool) Result {
	res := Result{Snapshot: Measure(player, sister, demons), Demon: NoDemon}

	if !e.discovered && res.SisterDistance <= e.cfg.DiscoverDistance {
		e.discovered = true
		res.Discovered = true
	}

	if res.SisterDistance <= e.cfg.ClearDistance {
		res.Outcome = OutcomeClear
		return res
	}

	if !minigameActive &&
		res.ClosestDemon != NoDemon &&
		res.ClosestDemonDistance <= e.cfg.KillDistance &&
		!demons.Killed(res.ClosestDemon) {
		res.Outcome = OutcomeEncounter
		res.Demon = res.ClosestDemon
	}
	return res
}
