package game

import (
	"math/rand"
	"sort"
	"time"

	"github.com/pthm-cable/whiteout/config"
	"github.com/pthm-cable/whiteout/motion"
	"github.com/pthm-cable/whiteout/systems"
)

// Outcome is how a round finished.
type Outcome uint8

const (
	OutcomeNone Outcome = iota
	OutcomeClear
	OutcomeGameOver
)

func (o Outcome) String() string {
	switch o {
	case OutcomeClear:
		return "clear"
	case OutcomeGameOver:
		return "gameover"
	}
	return "none"
}

// Round is one attempt from spawn to clear or game over.
type Round struct {
	ID      int
	Seed    int64
	Started time.Time
	NPCs    *systems.NPCs

	ended    bool
	outcome  Outcome
	endedAt  time.Time
	duration float64
	killed   map[int]struct{}

	encounters int
	discovered time.Time
	submitted  bool
}

// NewRound spawns the sister and the demon pool on their rings.
func NewRound(id int, seed int64, cfg *config.Config, now time.Time) *Round {
	rng := rand.New(rand.NewSource(seed))
	npcs := systems.NewNPCs(cfg.Chase, rng)

	// A single slot with full jitter is a uniformly random angle.
	sister := motion.SpawnPoint(0, 1, cfg.Spawn.SisterMinRadius, cfg.Spawn.SisterMaxRadius, 1, rng)
	npcs.SpawnSister(motion.ToWorld(sister, 0), cfg.Sister, now)

	for _, p := range motion.Ring(cfg.World.DemonCount, cfg.Spawn.DemonMinRadius, cfg.Spawn.DemonMaxRadius, cfg.Spawn.Jitter, rng) {
		npcs.SpawnDemon(motion.ToWorld(p, 0), cfg.Demon, cfg.Chase, now)
	}

	return &Round{
		ID:      id,
		Seed:    seed,
		Started: now,
		NPCs:    npcs,
		killed:  make(map[int]struct{}),
	}
}

// End latches the round as finished. Only the first call succeeds.
func (r *Round) End(outcome Outcome, at time.Time, elapsed float64) bool {
	if r.ended {
		return false
	}
	r.ended = true
	r.outcome = outcome
	r.endedAt = at
	r.duration = elapsed
	return true
}

// Ended reports whether the round has finished.
func (r *Round) Ended() bool { return r.ended }

// Outcome returns how the round finished.
func (r *Round) Outcome() Outcome { return r.outcome }

// EndedAt returns when the round finished.
func (r *Round) EndedAt() time.Time { return r.endedAt }

// Duration returns the elapsed seconds reported at the end.
func (r *Round) Duration() float64 { return r.duration }

// Kill records a demon kill. Reports false for an unknown or dead demon.
func (r *Round) Kill(id int) bool {
	if id < 0 || id >= r.NPCs.DemonCount() {
		return false
	}
	if !r.NPCs.Kill(id) {
		return false
	}
	r.killed[id] = struct{}{}
	return true
}

// Killed returns the killed demon ids in ascending order.
func (r *Round) Killed() []int {
	ids := make([]int, 0, len(r.killed))
	for id := range r.killed {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// KillCount returns how many demons were killed.
func (r *Round) KillCount() int { return len(r.killed) }
