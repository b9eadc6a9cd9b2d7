package game

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/whiteout/minigame"
)

// Autopilot plays headless rounds. It walks straight at the sister using
// the movement keys and strikes the gauge in the zone with probability Skill.
type Autopilot struct {
	Skill    float64 // Chance of striking inside the zone
	Nickname string

	rng       *rand.Rand
	decided   bool
	patient   bool
	submitted int
}

// NewAutopilot creates a bot with the given skill and seed.
func NewAutopilot(skill float64, seed int64) *Autopilot {
	return &Autopilot{Skill: skill, Nickname: "autopilot", rng: rand.New(rand.NewSource(seed))}
}

// Next returns the input for the coming tick and drives the screens:
// it starts rounds, submits clear times and restarts after the transition.
func (a *Autopilot) Next(g *Game) Input {
	switch g.State() {
	case StateStart:
		if err := g.Begin(); err != nil {
			g.logger.Error("autopilot begin", "error", err)
		}
		return Input{}
	case StateClear, StateGameOver:
		if p, _ := g.Transition(); p < 1 {
			return Input{}
		}
		if g.State() == StateClear && a.submitted != g.Round().ID {
			a.submitted = g.Round().ID
			if _, err := g.SubmitRecord(a.Nickname); err != nil {
				g.logger.Warn("autopilot submit", "error", err)
			}
		}
		if err := g.Restart(); err != nil {
			g.logger.Error("autopilot restart", "error", err)
		}
		return Input{}
	case StatePlaying:
	default:
		return Input{}
	}

	gauge := g.Gauge()
	if gauge.Active() {
		return Input{Strike: a.strike(gauge)}
	}
	a.decided = false

	var in Input
	pos := g.Player().Position
	target := g.Round().NPCs.SisterPosition()
	dx, dz := target.X-pos.X, target.Z-pos.Z
	dist := math.Hypot(dx, dz)
	if dist == 0 {
		return in
	}
	// Camera yaw stays at zero, so keys map straight onto world axes.
	const axis = 0.38 // sin(22.5deg): pick one or two keys per octant
	in.Forward = dz/dist < -axis
	in.Back = dz/dist > axis
	in.Left = dx/dist < -axis
	in.Right = dx/dist > axis
	return in
}

func (a *Autopilot) strike(gauge *minigame.Gauge) bool {
	if gauge.Result() != minigame.ResultPending {
		return false
	}
	if !a.decided {
		a.decided = true
		a.patient = a.rng.Float64() < a.Skill
	}
	// A clumsy bot swings as soon as the needle leaves the zone.
	return gauge.InZone(gauge.Needle()) == a.patient
}
