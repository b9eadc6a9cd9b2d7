package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/whiteout/camera"
	"github.com/pthm-cable/whiteout/motion"
	"github.com/pthm-cable/whiteout/throttle"
)

// Minimap draws the last throttled snapshot north-up around the world
// origin, covering mapSize world units.
type Minimap struct {
	renderer *Renderer
	size     int32
	anchor   PanelAnchor
	view     *camera.Camera
}

// NewMinimap creates a size×size pixel minimap.
func NewMinimap(r *Renderer, size int32, mapSize float64, anchor PanelAnchor) *Minimap {
	return &Minimap{
		renderer: r,
		size:     size,
		anchor:   anchor,
		view:     camera.New(float32(size), float32(size), float32(float64(size)/mapSize)),
	}
}

// Draw renders the snapshot. Nothing is drawn before the first snapshot.
func (m *Minimap) Draw(snap throttle.Minimap, ok bool, screenW, screenH int32) {
	if !ok {
		return
	}
	t := m.renderer.Theme
	x, y := m.anchor.Place(screenW, screenH, m.size, m.size, t.Padding)
	m.renderer.DrawPanel(x, y, m.size, m.size)

	for i := int32(1); i < 5; i++ {
		o := m.size * i / 5
		rl.DrawLine(x+o, y, x+o, y+m.size, rl.Fade(t.BarFill, 0.15))
		rl.DrawLine(x, y+o, x+m.size, y+o, rl.Fade(t.BarFill, 0.15))
	}

	at := func(p r3.Vec) (rl.Vector2, bool) {
		sx, sy := m.view.WorldToScreen(p)
		inside := sx >= 0 && sy >= 0 && sx <= float32(m.size) && sy <= float32(m.size)
		return rl.Vector2{X: float32(x) + sx, Y: float32(y) + sy}, inside
	}

	for _, d := range snap.Demons {
		if p, inside := at(d.Position); inside {
			rl.DrawCircleV(p, 3, t.DemonColor)
		}
	}
	if p, inside := at(snap.Sister); inside {
		rl.DrawCircleV(p, 3.5, t.SisterColor)
		rl.DrawCircleLines(int32(p.X), int32(p.Y), 6, rl.Fade(t.SisterColor, 0.3))
	}

	// Player with a facing tick and the camera's view direction.
	center, _ := at(snap.Player)
	rl.DrawCircleV(center, 4, t.ValueColor)
	face, _ := at(r3.Add(snap.Player, r3.Scale(8/float64(m.view.Zoom), motion.Forward(snap.Facing))))
	rl.DrawLineEx(center, face, 2, t.ValueColor)
	look, _ := at(r3.Add(snap.Player, r3.Scale(14/float64(m.view.Zoom), motion.Forward(snap.CameraYaw))))
	rl.DrawLineEx(center, look, 1, rl.Fade(t.LabelColor, 0.6))
}
