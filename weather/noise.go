package weather

import (
	"math"
	"math/rand"
)

// perlin is seeded 2D gradient noise in roughly [-1, 1].
type perlin struct {
	perm [512]uint8
}

func newPerlin(seed int64) *perlin {
	p := &perlin{}
	rng := rand.New(rand.NewSource(seed))
	for i, v := range rng.Perm(256) {
		p.perm[i] = uint8(v)
		p.perm[i+256] = uint8(v)
	}
	return p
}

// at samples the noise field. It is zero on every integer lattice point.
func (p *perlin) at(x, y float64) float64 {
	fx, fy := math.Floor(x), math.Floor(y)
	xi, yi := int(fx)&255, int(fy)&255
	x, y = x-fx, y-fy
	u, v := smooth(x), smooth(y)

	a := int(p.perm[xi]) + yi
	b := int(p.perm[xi+1]) + yi
	return mix(v,
		mix(u, grad(p.perm[a], x, y), grad(p.perm[b], x-1, y)),
		mix(u, grad(p.perm[a+1], x, y-1), grad(p.perm[b+1], x-1, y-1)))
}

func smooth(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func mix(t, a, b float64) float64 {
	return a + t*(b-a)
}

// grad dots (x, y) with one of eight unit-ish gradients.
func grad(hash uint8, x, y float64) float64 {
	switch hash & 7 {
	case 0:
		return x + y
	case 1:
		return -x + y
	case 2:
		return x - y
	case 3:
		return -x - y
	case 4:
		return x
	case 5:
		return -x
	case 6:
		return y
	}
	return -y
}
