package ui

import (
	"math/rand"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/whiteout/camera"
	"github.com/pthm-cable/whiteout/components"
	"github.com/pthm-cable/whiteout/motion"
	"github.com/pthm-cable/whiteout/player"
	"github.com/pthm-cable/whiteout/systems"
	"github.com/pthm-cable/whiteout/weather"
)

// Fog limits how far the player sees through the storm, in world units.
const (
	fogNear = 6.0
	fogFar  = 22.0
)

// flake is one screen-space snow particle.
type flake struct {
	X, Y  float32
	Speed float32
	Size  float32
	Drift float32
}

// WorldView draws the ground, the agents and the snowfall from the
// player's follow camera.
type WorldView struct {
	renderer *Renderer
	cam      *camera.Camera
	flakes   []flake
	rng      *rand.Rand
	wind     *weather.Wind
	lastYaw  float64
}

// NewWorldView creates a view for a screenW×screenH window.
func NewWorldView(r *Renderer, screenW, screenH float32, zoom float32, wind *weather.Wind, seed int64) *WorldView {
	v := &WorldView{
		renderer: r,
		cam:      camera.New(screenW, screenH, zoom),
		rng:      rand.New(rand.NewSource(seed)),
		wind:     wind,
	}
	v.cam.Follow = 0.25
	v.flakes = make([]flake, 400)
	for i := range v.flakes {
		v.flakes[i] = v.newFlake(true)
	}
	return v
}

// Camera returns the follow camera.
func (v *WorldView) Camera() *camera.Camera { return v.cam }

// Resize updates the viewport.
func (v *WorldView) Resize(w, h float32) { v.cam.Resize(w, h) }

// Snap moves the camera onto the player without easing.
func (v *WorldView) Snap(m player.Moved) {
	v.cam.X, v.cam.Z, v.cam.Yaw = m.Position.X, m.Position.Z, m.CameraYaw
	v.lastYaw = m.CameraYaw
}

func (v *WorldView) newFlake(anywhere bool) flake {
	f := flake{
		X:     v.rng.Float32() * v.cam.ViewportW,
		Y:     -4,
		Speed: 80 + v.rng.Float32()*160,
		Size:  1 + v.rng.Float32()*2.5,
		Drift: -40 + v.rng.Float32()*80,
	}
	if anywhere {
		f.Y = v.rng.Float32() * v.cam.ViewportH
	}
	return f
}

// Update follows the player and advances the snowfall. Flakes stream past
// faster while the player walks, ride the wind and slide sideways when the
// camera turns.
func (v *WorldView) Update(dt float32, m player.Moved, moving bool) {
	v.cam.Track(m.Position, m.CameraYaw)
	turn := float32(motion.WrapAngle(v.cam.Yaw-v.lastYaw)) * v.cam.ViewportW / 2
	v.lastYaw = v.cam.Yaw

	boost := float32(1)
	if moving {
		boost = 1.6
	}
	v.wind.Advance(float64(dt))
	for i := range v.flakes {
		f := &v.flakes[i]
		gust := float32(v.wind.Gust(float64(f.Y/v.cam.ViewportH))) * v.cam.ViewportW
		f.Y += f.Speed * boost * dt
		f.X += (f.Drift+gust)*dt + turn
		if f.Y > v.cam.ViewportH+4 {
			*f = v.newFlake(false)
		}
		if f.X < -4 {
			f.X += v.cam.ViewportW + 8
		} else if f.X > v.cam.ViewportW+4 {
			f.X -= v.cam.ViewportW + 8
		}
	}
}

// fogAlpha returns the opacity of something d units from the player.
func fogAlpha(d float64) float32 {
	switch {
	case d <= fogNear:
		return 1
	case d >= fogFar:
		return 0
	}
	return float32(1 - (d-fogNear)/(fogFar-fogNear))
}

// Draw renders the scene around the player.
func (v *WorldView) Draw(npcs *systems.NPCs, m player.Moved) {
	t := v.renderer.Theme
	rl.ClearBackground(t.Snow)

	if npcs != nil {
		v.drawAgent(m.Position, npcs.SisterPosition(), npcs.SisterHeading(), 0.6, t.SisterColor)
		positions, ok := npcs.LiveDemons()
		for id, p := range positions {
			if !ok[id] {
				continue
			}
			c := t.DemonColor
			if npcs.DemonMode(id) == components.ModeChasing {
				c = rl.Red
			}
			v.drawAgent(m.Position, p, npcs.DemonHeading(id), 0.8, c)
		}
	}
	v.drawAgent(m.Position, m.Position, m.Facing, 0.5, t.PlayerColor)

	for i := range v.flakes {
		f := &v.flakes[i]
		rl.DrawCircle(int32(f.X), int32(f.Y), f.Size, rl.Color{R: 255, G: 255, B: 255, A: 200})
	}
}

// drawAgent draws a body with a heading tick, faded by distance from the
// player.
func (v *WorldView) drawAgent(from, p r3.Vec, heading, radius float64, color rl.Color) {
	d := r3.Norm(r3.Sub(p, from))
	alpha := fogAlpha(d)
	if alpha <= 0 || !v.cam.IsVisible(p, radius) {
		return
	}
	sx, sy := v.cam.WorldToScreen(p)
	r := float32(radius) * v.cam.Zoom
	rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, r, rl.Fade(color, alpha))

	hx, hy := v.cam.WorldToScreen(r3.Add(p, r3.Scale(radius*1.6, motion.Forward(heading))))
	rl.DrawLineEx(rl.Vector2{X: sx, Y: sy}, rl.Vector2{X: hx, Y: hy}, 2, rl.Fade(color, alpha))
}
