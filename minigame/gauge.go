// Package minigame implements the timing gauge played when a demon reaches
// the player.
package minigame

import (
	"math"
	"time"

	"github.com/pthm-cable/whiteout/clock"
	"github.com/pthm-cable/whiteout/config"
)

// Result is the outcome of a strike.
type Result uint8

const (
	ResultPending Result = iota
	ResultSuccess
	ResultFail
)

func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "success"
	case ResultFail:
		return "fail"
	}
	return "pending"
}

// Position returns the gauge needle in [0,1] after elapsed time for a sweep
// period: a sine that starts at the middle and heads right.
func Position(elapsed, period time.Duration) float64 {
	phase := elapsed.Seconds() / period.Seconds() * 2 * math.Pi
	return (math.Sin(phase) + 1) / 2
}

// Gauge runs one encounter at a time. The strike resolves once; the result
// callback arrives after the reveal delay through the scheduler, so a state
// transition that cancels the scheduler also cancels a pending result.
type Gauge struct {
	cfg    config.MinigameConfig
	period time.Duration
	sched  *clock.Scheduler

	active  bool
	demon   int
	started time.Time
	result  Result
	needle  float64
	timer   clock.TimerID

	onSuccess func(demon int)
	onFail    func(demon int)
}

// NewGauge creates an idle gauge.
func NewGauge(cfg config.MinigameConfig, sched *clock.Scheduler) *Gauge {
	return &Gauge{cfg: cfg, period: cfg.Sweep(), sched: sched, demon: -1}
}

// Start begins an encounter with demon. onSuccess or onFail is called
// exactly once unless the encounter is cancelled. Starting while another
// encounter is active is refused.
func (g *Gauge) Start(demon int, onSuccess, onFail func(demon int)) bool {
	if g.active {
		return false
	}
	g.active = true
	g.demon = demon
	g.started = g.sched.Now()
	g.result = ResultPending
	g.onSuccess = onSuccess
	g.onFail = onFail
	return true
}

// Active reports whether an encounter is running, including the reveal delay.
func (g *Gauge) Active() bool { return g.active }

// Demon returns the demon of the current encounter, or -1.
func (g *Gauge) Demon() int {
	if !g.active {
		return -1
	}
	return g.demon
}

// Result returns the strike result, ResultPending before the strike.
func (g *Gauge) Result() Result { return g.result }

// Needle returns the current needle position. After the strike it stays
// where the strike landed.
func (g *Gauge) Needle() float64 {
	if !g.active {
		return 0
	}
	if g.result != ResultPending {
		return g.needle
	}
	return Position(g.sched.Now().Sub(g.started), g.period)
}

// InZone reports whether p is inside the success zone (inclusive).
func (g *Gauge) InZone(p float64) bool {
	return p >= g.cfg.SuccessMin && p <= g.cfg.SuccessMax
}

// Strike locks in the needle. Only the first strike of an encounter counts;
// later ones return ResultPending.
func (g *Gauge) Strike() Result {
	if !g.active || g.result != ResultPending {
		return ResultPending
	}
	g.needle = g.Needle()
	if g.InZone(g.needle) {
		g.result = ResultSuccess
	} else {
		g.result = ResultFail
	}

	result, demon := g.result, g.demon
	onSuccess, onFail := g.onSuccess, g.onFail
	g.timer = g.sched.After(g.cfg.Reveal(), func() {
		g.finish()
		if result == ResultSuccess {
			onSuccess(demon)
		} else {
			onFail(demon)
		}
	})
	return g.result
}

// Cancel abandons the encounter without calling either callback.
func (g *Gauge) Cancel() {
	if g.timer != 0 {
		g.sched.Cancel(g.timer)
	}
	g.finish()
	g.result = ResultPending
}

func (g *Gauge) finish() {
	g.active = false
	g.timer = 0
	g.onSuccess = nil
	g.onFail = nil
}
