package ui

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/whiteout/feedback"
	"github.com/pthm-cable/whiteout/throttle"
)

// TintOverlay draws the full-screen hint colours.
type TintOverlay struct {
	mapper *feedback.Mapper
}

// NewTintOverlay creates an overlay using mapper for its curves.
func NewTintOverlay(mapper *feedback.Mapper) *TintOverlay {
	return &TintOverlay{mapper: mapper}
}

// Draw paints the demon gradient under the sister glow.
func (o *TintOverlay) Draw(h *throttle.Latest, screenW, screenH int32) {
	if d := o.mapper.Demon(h.DemonDistance()); d.Visible() {
		cx, cy := screenW/2, screenH/2
		radius := float32(math.Hypot(float64(cx), float64(cy)))
		// The half-diagonal radius reaches the corners.
		rl.DrawCircleGradient(cx, cy, radius, tintColor(d.Center), tintColor(d.Edge))
	}
	if s := o.mapper.Sister(h.SisterDistance()); s.Visible() {
		rl.DrawRectangle(0, 0, screenW, screenH, tintColor(s))
	}
}

func tintColor(t feedback.Tint) rl.Color {
	r, g, b, a := t.RGBA()
	return rl.Color{R: r, G: g, B: b, A: a}
}
