package weather

import (
	"math"
	"testing"

	"github.com/pthm-cable/whiteout/config"
)

func testWind(strength float64) *Wind {
	return NewWind(config.WindConfig{Strength: strength, Scale: 1.5, Period: 4}, 11)
}

func TestPerlinZeroOnLattice(t *testing.T) {
	p := newPerlin(1)
	for x := -3; x <= 3; x++ {
		for y := -3; y <= 3; y++ {
			if got := p.at(float64(x), float64(y)); got != 0 {
				t.Errorf("at(%d, %d) = %v, want 0", x, y, got)
			}
		}
	}
}

func TestPerlinContinuous(t *testing.T) {
	p := newPerlin(5)
	const step = 1e-4
	for i := 0; i < 200; i++ {
		x := float64(i) * 0.137
		y := float64(i) * 0.071
		if d := math.Abs(p.at(x, y) - p.at(x+step, y)); d > 0.01 {
			t.Fatalf("jump of %v at (%v, %v)", d, x, y)
		}
	}
}

func TestGustBoundedBySeedAndStrength(t *testing.T) {
	a, b := testWind(0.2), testWind(0.2)
	for i := 0; i < 100; i++ {
		y := float64(i%10) / 10
		ga, gb := a.Gust(y), b.Gust(y)
		if ga != gb {
			t.Fatalf("same seed diverged at step %d: %v != %v", i, ga, gb)
		}
		if math.Abs(ga) > 0.2 {
			t.Fatalf("gust %v exceeds strength", ga)
		}
		a.Advance(0.1)
		b.Advance(0.1)
	}
}

func TestGustChangesOverTime(t *testing.T) {
	w := testWind(1)
	first := w.Gust(0.3)
	changed := false
	for i := 0; i < 50 && !changed; i++ {
		w.Advance(0.25)
		changed = w.Gust(0.3) != first
	}
	if !changed {
		t.Error("gust never changed")
	}

	w.Reset()
	if got := w.Gust(0.3); got != first {
		t.Errorf("after Reset gust = %v, want %v", got, first)
	}
}

func TestCalm(t *testing.T) {
	if got := testWind(0).Calm(); got != 1 {
		t.Errorf("still air Calm() = %v, want 1", got)
	}
	w := testWind(0.5)
	for i := 0; i < 20; i++ {
		if c := w.Calm(); c < 0 || c > 1 {
			t.Fatalf("Calm() = %v, want within [0,1]", c)
		}
		w.Advance(0.5)
	}
}
