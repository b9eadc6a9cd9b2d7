package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/whiteout/game"
	"github.com/pthm-cable/whiteout/player"
)

// Device is one frame of raw device state.
type Device struct {
	Forward, Back, Left, Right bool

	PointerX     float32
	PointerDown  bool
	PointerPress bool // Went down this frame
	Touch        bool
	StrikeKey    bool
	ScreenW      float32
}

// InputAdapter turns device frames into game input. It remembers the last
// pointer position so drags are measured between frames.
type InputAdapter struct {
	lastX   float32
	tracked bool
}

// Decode converts one device frame. A press both snaps the facing and
// strikes, so tapping works for the gauge on touch screens.
func (a *InputAdapter) Decode(d Device) game.Input {
	in := game.Input{
		Input: player.Input{
			Forward: d.Forward,
			Back:    d.Back,
			Left:    d.Left,
			Right:   d.Right,
			Held:    d.PointerDown,
			Touch:   d.Touch,
		},
		Strike: d.StrikeKey || d.PointerPress,
	}

	if d.PointerPress && d.ScreenW > 0 {
		half := float64(d.ScreenW) / 2
		in.Press = &player.Press{OffsetX: float64(d.PointerX) - half, HalfWidth: half}
	}

	if d.PointerDown {
		if a.tracked && !d.PointerPress {
			in.DragX = float64(d.PointerX - a.lastX)
		}
		a.lastX = d.PointerX
		a.tracked = true
	} else {
		a.tracked = false
	}
	return in
}

// Poll reads the current raylib device state.
func Poll() Device {
	d := Device{
		Forward:   rl.IsKeyDown(rl.KeyW) || rl.IsKeyDown(rl.KeyUp),
		Back:      rl.IsKeyDown(rl.KeyS) || rl.IsKeyDown(rl.KeyDown),
		Left:      rl.IsKeyDown(rl.KeyA) || rl.IsKeyDown(rl.KeyLeft),
		Right:     rl.IsKeyDown(rl.KeyD) || rl.IsKeyDown(rl.KeyRight),
		StrikeKey: rl.IsKeyPressed(rl.KeySpace),
		ScreenW:   float32(rl.GetScreenWidth()),
	}

	if rl.GetTouchPointCount() > 0 {
		d.Touch = true
		d.PointerX = rl.GetTouchPosition(0).X
		d.PointerDown = true
		d.PointerPress = rl.IsGestureDetected(rl.GestureTap)
		return d
	}

	d.PointerX = rl.GetMousePosition().X
	d.PointerDown = rl.IsMouseButtonDown(rl.MouseButtonLeft)
	d.PointerPress = rl.IsMouseButtonPressed(rl.MouseButtonLeft)
	return d
}
