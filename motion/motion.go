// Package motion provides the vector and angle primitives shared by the
// player controller and the NPC AI systems.
//
// The world is Y-up. Agents move on the XZ plane; Y is carried through but
// never changed by any helper here.
package motion

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

// epsilon below which a vector is treated as zero length.
const epsilon = 1e-9

// Horizontal returns v with Y dropped to zero.
func Horizontal(v r3.Vec) r3.Vec {
	return r3.Vec{X: v.X, Z: v.Z}
}

// Normalize returns the unit vector of v, or the zero vector when v has no length.
func Normalize(v r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n < epsilon {
		return r3.Vec{}
	}
	return r3.Scale(1/n, v)
}

// IsZero reports whether v is (numerically) the zero vector.
func IsZero(v r3.Vec) bool {
	return r3.Norm(v) < epsilon
}

// Distance returns the euclidean distance between a and b.
func Distance(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(a, b))
}

// Lerp linearly interpolates between a and b.
func Lerp(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}

// Integrate advances pos along dir at speed for dt seconds.
// A zero direction leaves pos unchanged.
func Integrate(pos, dir r3.Vec, speed, dt float64) r3.Vec {
	if IsZero(dir) {
		return pos
	}
	return r3.Add(pos, r3.Scale(speed*dt, dir))
}

// RotateY rotates v about the +Y axis by angle radians.
func RotateY(v r3.Vec, angle float64) r3.Vec {
	s, c := math.Sincos(angle)
	return r3.Vec{
		X: v.X*c + v.Z*s,
		Y: v.Y,
		Z: -v.X*s + v.Z*c,
	}
}

// YawFromDirection returns the facing yaw for a direction, atan2(x, z).
// The second result is false for a zero direction, in which case the caller
// keeps its previous facing.
func YawFromDirection(dir r3.Vec) (float64, bool) {
	if IsZero(Horizontal(dir)) {
		return 0, false
	}
	return math.Atan2(dir.X, dir.Z), true
}

// Forward returns the direction an agent with the given facing walks when
// moving "ahead": (-sin f, 0, -cos f).
func Forward(facing float64) r3.Vec {
	s, c := math.Sincos(facing)
	return r3.Vec{X: -s, Z: -c}
}

// WrapAngle maps a to the range [-pi, pi].
func WrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// LerpAngle interpolates from a toward b along the shortest arc.
func LerpAngle(a, b, t float64) float64 {
	return a + WrapAngle(b-a)*t
}

// RandomHorizontal returns a random unit direction on the XZ plane.
// It retries in the rare case the sampled vector is degenerate.
func RandomHorizontal(rng *rand.Rand) r3.Vec {
	for {
		v := r3.Vec{X: rng.Float64() - 0.5, Z: rng.Float64() - 0.5}
		if !IsZero(v) {
			return Normalize(v)
		}
	}
}

// Contain applies hard boundary containment: when pos lies farther than
// boundary from the origin the returned direction points straight home and
// the second result is true.
func Contain(pos, dir r3.Vec, boundary float64) (r3.Vec, bool) {
	h := Horizontal(pos)
	if r3.Norm(h) <= boundary {
		return dir, false
	}
	return r3.Scale(-1, Normalize(h)), true
}
