package motion

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// SpawnPoint returns the XZ spawn location for slot index of total on a ring
// between minRadius and maxRadius.
//
// Slots divide the circle evenly; jitter in [0,1] scatters the angle within
// the slot. The ring starts at a random rotation so consecutive rounds differ.
// Identical seeds give identical layouts.
func SpawnPoint(index, total int, minRadius, maxRadius, jitter float64, rng *rand.Rand) r2.Vec {
	if total < 1 {
		total = 1
	}
	slot := 2 * math.Pi / float64(total)
	angle := float64(index)*slot + (rng.Float64()-0.5)*jitter*slot
	radius := minRadius + rng.Float64()*(maxRadius-minRadius)
	s, c := math.Sincos(angle)
	return r2.Vec{X: c * radius, Y: s * radius}
}

// Ring draws total spawn points around the origin, rotated by a random offset.
func Ring(total int, minRadius, maxRadius, jitter float64, rng *rand.Rand) []r2.Vec {
	offset := rng.Float64() * 2 * math.Pi
	pts := make([]r2.Vec, total)
	for i := range pts {
		p := SpawnPoint(i, total, minRadius, maxRadius, jitter, rng)
		pts[i] = rotate2(p, offset)
	}
	return pts
}

// ToWorld lifts a ground-plane point to a world position at y.
func ToWorld(p r2.Vec, y float64) r3.Vec {
	return r3.Vec{X: p.X, Y: y, Z: p.Y}
}

func rotate2(p r2.Vec, angle float64) r2.Vec {
	s, c := math.Sincos(angle)
	return r2.Vec{X: p.X*c - p.Y*s, Y: p.X*s + p.Y*c}
}
