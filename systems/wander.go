package systems

import (
	"math/rand"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/whiteout/components"
	"github.com/pthm-cable/whiteout/motion"
)

// Redirect picks a new random heading when the redirect interval has passed.
// Reports whether the direction changed.
func Redirect(w *components.Wander, now time.Time, rng *rand.Rand) bool {
	if now.Sub(w.LastRedirect) <= w.Interval {
		return false
	}
	w.Direction = motion.RandomHorizontal(rng)
	w.LastRedirect = now
	return true
}

// Advance moves pos along the wander direction at speed for dt, then applies
// hard containment. Containment resets the redirect timer so the agent
// heads home for a full interval.
func Advance(w *components.Wander, pos r3.Vec, speed, dt float64, now time.Time) r3.Vec {
	pos = motion.Integrate(pos, w.Direction, speed, dt)
	if dir, hit := motion.Contain(pos, w.Direction, w.Boundary); hit {
		w.Direction = dir
		w.LastRedirect = now
	}
	return pos
}

// Face updates the heading from the current direction, keeping the previous
// yaw when there is no direction.
func Face(h *components.Heading, dir r3.Vec) {
	if yaw, ok := motion.YawFromDirection(dir); ok {
		h.Yaw = yaw
	}
}

// UpdateWander runs one wander tick: redirect, move, contain, face.
func UpdateWander(
	pos *components.Position,
	head *components.Heading,
	w *components.Wander,
	now time.Time,
	dt float64,
	rng *rand.Rand,
) {
	Redirect(w, now, rng)
	pos.Set(Advance(w, pos.Vec(), w.Speed, dt, now))
	Face(head, w.Direction)
}
