package feedback

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/whiteout/motion"
)

// Gain is the cubic distance falloff: (1-t)^3 with t = d/maxDistance,
// silent at and beyond maxDistance.
func Gain(distance, maxDistance float64) float64 {
	if maxDistance <= 0 {
		return 0
	}
	t := math.Min(math.Max(distance, 0)/maxDistance, 1)
	if t >= 1 {
		return 0
	}
	u := 1 - t
	return u * u * u
}

// Spatial is a source's placement relative to the listener.
type Spatial struct {
	Gain  float64
	Pan   float64 // -1 left .. 1 right
	Front float64 // -1 behind .. 1 ahead
}

// Spatialize places source relative to a listener at pos looking along yaw.
// A source at the listener's position is centred.
func Spatialize(listener r3.Vec, yaw float64, source r3.Vec, maxDistance float64) Spatial {
	rel := motion.Horizontal(r3.Sub(source, listener))
	out := Spatial{Gain: Gain(r3.Norm(rel), maxDistance)}
	dir := motion.Normalize(rel)
	if motion.IsZero(dir) {
		return out
	}
	forward := motion.Forward(yaw)
	right := r3.Vec{X: -forward.Z, Z: forward.X}
	out.Pan = r3.Dot(dir, right)
	out.Front = r3.Dot(dir, forward)
	return out
}
