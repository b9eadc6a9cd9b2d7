package systems

import (
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/whiteout/components"
	"github.com/pthm-cable/whiteout/motion"
)

// BlendMode selects how the pursuit blend factor relates to frame time.
type BlendMode uint8

const (
	// BlendPerTick applies the blend factor once per tick regardless of dt,
	// so turn rate scales with frame rate.
	BlendPerTick BlendMode = iota
	// BlendTimeScaled converts the factor to an exponential rate against a
	// reference tick rate, giving the same turn per second at any frame rate.
	BlendTimeScaled
)

// ParseBlendMode maps a config string to a BlendMode.
func ParseBlendMode(s string) (BlendMode, bool) {
	switch s {
	case "per_tick", "":
		return BlendPerTick, true
	case "time_scaled":
		return BlendTimeScaled, true
	}
	return BlendPerTick, false
}

// DecideMode returns Chasing when the player is within range (inclusive).
func DecideMode(distance, chaseRange float64) components.Mode {
	if distance <= chaseRange {
		return components.ModeChasing
	}
	return components.ModeWandering
}

// BlendFactor returns the per-tick interpolation factor for the mode.
func BlendFactor(mode BlendMode, blend, rate, dt float64) float64 {
	if mode == BlendTimeScaled {
		return 1 - math.Pow(1-blend, dt*rate)
	}
	return blend
}

// Steer turns dir toward target by factor t and renormalizes.
// If the blend cancels out, the result falls back to the target direction.
func Steer(dir, target r3.Vec, t float64) r3.Vec {
	out := motion.Normalize(motion.Lerp(dir, target, t))
	if motion.IsZero(out) {
		return target
	}
	return out
}

// Chaser carries the blend settings shared by every demon.
type Chaser struct {
	Mode BlendMode
	Rate float64
}

// UpdateDemon runs one demon tick: pick a mode from the player distance,
// steer or wander accordingly, move, contain, face.
func (c Chaser) UpdateDemon(
	pos *components.Position,
	head *components.Heading,
	w *components.Wander,
	ch *components.Chase,
	player r3.Vec,
	now time.Time,
	dt float64,
	rng *rand.Rand,
) {
	p := pos.Vec()
	toPlayer := motion.Horizontal(r3.Sub(player, p))
	ch.Mode = DecideMode(r3.Norm(toPlayer), ch.Range)

	speed := w.Speed
	if ch.Mode == components.ModeChasing {
		if target := motion.Normalize(toPlayer); !motion.IsZero(target) {
			w.Direction = Steer(w.Direction, target, BlendFactor(c.Mode, ch.Blend, c.Rate, dt))
		}
		speed = ch.Speed
	} else {
		Redirect(w, now, rng)
	}

	pos.Set(Advance(w, p, speed, dt, now))
	Face(head, w.Direction)
}
