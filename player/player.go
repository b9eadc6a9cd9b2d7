// Package player turns raw input into the player's movement and orientation.
package player

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/whiteout/config"
	"github.com/pthm-cable/whiteout/motion"
)

// Press describes a pointer press that happened this tick.
type Press struct {
	OffsetX   float64 // Press X minus screen center, in pixels
	HalfWidth float64 // Half the screen width, in pixels
}

// Input is one tick of device state, already decoded by the frontend.
type Input struct {
	Forward, Back, Left, Right bool

	DragX float64 // Horizontal pointer movement since the last tick, in pixels
	Held  bool    // Pointer or finger is down
	Touch bool    // The active pointer is a touch
	Press *Press  // Set on the tick a mouse button goes down
}

// KeyMoving reports whether any movement key is down.
func (in Input) KeyMoving() bool {
	return in.Forward || in.Back || in.Left || in.Right
}

// Moved is the immutable per-tick update the controller publishes.
type Moved struct {
	Position  r3.Vec
	CameraYaw float64
	Facing    float64
	Moving    bool
}

// Controller owns the player's position and orientation.
type Controller struct {
	cfg       config.PlayerConfig
	pos       r3.Vec
	cameraYaw float64
	facing    float64
	frozen    bool
}

// NewController creates a controller at the origin facing -Z.
func NewController(cfg config.PlayerConfig) *Controller {
	return &Controller{cfg: cfg}
}

// Reset returns the player to the origin with default orientation.
func (c *Controller) Reset() {
	c.pos = r3.Vec{}
	c.cameraYaw = 0
	c.facing = 0
	c.frozen = false
}

// Teleport moves the player without changing orientation.
func (c *Controller) Teleport(pos r3.Vec) { c.pos = pos }

// SetFrozen suspends or resumes input handling.
func (c *Controller) SetFrozen(frozen bool) { c.frozen = frozen }

// Frozen reports whether input is suspended.
func (c *Controller) Frozen() bool { return c.frozen }

// State returns the current state without advancing.
func (c *Controller) State() Moved {
	return Moved{Position: c.pos, CameraYaw: c.cameraYaw, Facing: c.facing}
}

// Update advances the player by dt seconds and returns the new state.
// While frozen the player stays put and reports not moving.
func (c *Controller) Update(dt float64, in Input) Moved {
	if c.frozen {
		return c.State()
	}

	if in.Press != nil && !in.Touch && in.Press.HalfWidth > 0 {
		// Presses past the view edge snap no further than the edge.
		r := math.Max(-1, math.Min(1, in.Press.OffsetX/in.Press.HalfWidth))
		c.facing = c.cameraYaw - r*c.cfg.SnapSpread
	}

	rot := in.DragX * c.cfg.MouseSensitivity
	if in.Touch {
		c.facing -= rot * c.cfg.TouchMultiplier
	} else {
		c.cameraYaw -= rot
		if in.Held {
			c.facing -= rot
		}
	}

	var local r3.Vec
	if in.Forward {
		local.Z--
	}
	if in.Back {
		local.Z++
	}
	if in.Left {
		local.X--
	}
	if in.Right {
		local.X++
	}

	// Opposing keys cancel to zero, which counts as not moving.
	keyMoving := !motion.IsZero(local)
	switch {
	case keyMoving:
		dir := motion.RotateY(motion.Normalize(local), c.cameraYaw)
		c.pos = motion.Integrate(c.pos, dir, c.cfg.Speed, dt)
		target := math.Atan2(dir.X, dir.Z) + math.Pi
		c.facing = motion.LerpAngle(c.facing, target, c.cfg.FacingLerp)
	case in.Held:
		c.pos = motion.Integrate(c.pos, motion.Forward(c.facing), c.cfg.Speed, dt)
	}

	return Moved{
		Position:  c.pos,
		CameraYaw: c.cameraYaw,
		Facing:    c.facing,
		Moving:    keyMoving || in.Held,
	}
}
