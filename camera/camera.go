// Package camera provides a top-down camera over the XZ ground plane.
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/whiteout/motion"
)

// Camera controls the viewport into the world. The view looks straight
// down; the camera's forward direction points up the screen.
type Camera struct {
	// Position is the camera center in world coordinates
	X, Z float64

	// Yaw rotates the view; 0 keeps -Z at the top of the screen
	Yaw float64

	// Zoom in pixels per world unit
	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Zoom constraints
	MinZoom, MaxZoom float32

	// Follow is the per-tick factor toward the target in (0,1]
	Follow float64
}

// New creates a camera at the origin.
func New(viewportW, viewportH, zoom float32) *Camera {
	return &Camera{
		Zoom:      zoom,
		ViewportW: viewportW,
		ViewportH: viewportH,
		MinZoom:   zoom / 4,
		MaxZoom:   zoom * 4,
		Follow:    1,
	}
}

// axes returns the camera's forward and right vectors on the ground plane.
func (c *Camera) axes() (forward, right r3.Vec) {
	forward = motion.Forward(c.Yaw)
	right = r3.Vec{X: -forward.Z, Z: forward.X}
	return forward, right
}

// WorldToScreen converts a world position to screen coordinates.
func (c *Camera) WorldToScreen(p r3.Vec) (sx, sy float32) {
	d := r3.Vec{X: p.X - c.X, Z: p.Z - c.Z}
	forward, right := c.axes()
	sx = c.ViewportW/2 + float32(r3.Dot(d, right))*c.Zoom
	sy = c.ViewportH/2 - float32(r3.Dot(d, forward))*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to a ground-plane position.
func (c *Camera) ScreenToWorld(sx, sy float32) r3.Vec {
	u := float64((sx - c.ViewportW/2) / c.Zoom)
	v := float64((sy - c.ViewportH/2) / c.Zoom)
	forward, right := c.axes()
	d := r3.Sub(r3.Scale(u, right), r3.Scale(v, forward))
	return r3.Vec{X: c.X + d.X, Z: c.Z + d.Z}
}

// IsVisible returns true if a circle at p with the given world radius
// could be visible on screen (conservative check for culling).
func (c *Camera) IsVisible(p r3.Vec, radius float64) bool {
	dx := p.X - c.X
	dz := p.Z - c.Z
	return math.Hypot(dx, dz) <= c.VisibleRadius()+radius
}

// VisibleRadius is the world distance from the center to a viewport corner.
func (c *Camera) VisibleRadius() float64 {
	halfW := float64(c.ViewportW / (2 * c.Zoom))
	halfH := float64(c.ViewportH / (2 * c.Zoom))
	return math.Hypot(halfW, halfH)
}

// Track moves the camera toward target and turns it toward yaw by the
// follow factor.
func (c *Camera) Track(target r3.Vec, yaw float64) {
	t := c.Follow
	c.X += (target.X - c.X) * t
	c.Z += (target.Z - c.Z) * t
	c.Yaw = motion.LerpAngle(c.Yaw, yaw, t)
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float32) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset returns the camera to the origin with no rotation.
func (c *Camera) Reset() {
	c.X, c.Z = 0, 0
	c.Yaw = 0
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
