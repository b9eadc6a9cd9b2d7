// Package weather drives the storm's wind. The field is purely visual: it
// moves snow on screen and never touches agents.
package weather

import (
	"math"

	"github.com/pthm-cable/whiteout/config"
)

// Wind is a gust field over screen height and time.
type Wind struct {
	cfg   config.WindConfig
	noise *perlin
	t     float64
}

// NewWind creates a wind field. The same seed gives the same gusts.
func NewWind(cfg config.WindConfig, seed int64) *Wind {
	return &Wind{cfg: cfg, noise: newPerlin(seed)}
}

// Advance moves the field forward by dt seconds.
func (w *Wind) Advance(dt float64) { w.t += dt }

// Reset returns the field to time zero.
func (w *Wind) Reset() { w.t = 0 }

// Gust returns the sideways drift at normalized height y (0 top, 1 bottom),
// in screen widths per second. Positive pushes right.
func (w *Wind) Gust(y float64) float64 {
	// Half-lattice offsets keep samples off the zero points.
	n := w.noise.at(y*w.cfg.Scale+0.5, w.t/w.cfg.Period+0.5)
	return w.cfg.Strength * math.Max(-1, math.Min(1, n))
}

// Calm reports how still the air is in [0,1], averaged over the screen.
func (w *Wind) Calm() float64 {
	if w.cfg.Strength == 0 {
		return 1
	}
	var sum float64
	const rows = 4
	for i := 0; i < rows; i++ {
		sum += math.Abs(w.Gust((float64(i) + 0.5) / rows))
	}
	return 1 - sum/rows/w.cfg.Strength
}
