// Package components defines ECS components for the round's agents.
package components

import (
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

// Kind distinguishes the NPC roles.
type Kind uint8

const (
	KindSister Kind = iota
	KindDemon
)

func (k Kind) String() string {
	switch k {
	case KindSister:
		return "sister"
	case KindDemon:
		return "demon"
	}
	return "unknown"
}

// Mode is the behavior an NPC runs this tick.
type Mode uint8

const (
	ModeWandering Mode = iota
	ModeChasing
)

func (m Mode) String() string {
	if m == ModeChasing {
		return "chasing"
	}
	return "wandering"
}

// Position represents an entity's world position. Y is up.
type Position struct {
	X, Y, Z float64
}

// Vec returns the position as a vector.
func (p Position) Vec() r3.Vec { return r3.Vec{X: p.X, Y: p.Y, Z: p.Z} }

// Set overwrites the position from a vector.
func (p *Position) Set(v r3.Vec) { p.X, p.Y, p.Z = v.X, v.Y, v.Z }

// Heading is the facing yaw in radians.
type Heading struct {
	Yaw float64
}

// Wander holds random-walk state.
type Wander struct {
	Direction    r3.Vec // Unit horizontal direction, or zero
	LastRedirect time.Time
	Interval     time.Duration
	Speed        float64
	Boundary     float64
}

// Chase holds pursuit parameters and the mode chosen on the last tick.
type Chase struct {
	Mode  Mode
	Range float64 // Inclusive distance at which pursuit starts
	Speed float64
	Blend float64
}

// Agent identifies an NPC within the round.
// Killed demons stay in the world; they just stop moving and being tested.
type Agent struct {
	ID     int
	Kind   Kind
	Killed bool
}
