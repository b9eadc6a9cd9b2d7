package minigame

import (
	"math"
	"testing"
	"time"

	"github.com/pthm-cable/whiteout/clock"
	"github.com/pthm-cable/whiteout/config"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type calls struct {
	success, fail []int
}

func (c *calls) onSuccess(d int) { c.success = append(c.success, d) }
func (c *calls) onFail(d int)    { c.fail = append(c.fail, d) }

func setup() (*Gauge, *clock.Manual, *clock.Scheduler, *calls) {
	clk := clock.NewManual(t0)
	sched := clock.NewScheduler(clk)
	return NewGauge(config.Defaults().Minigame, sched), clk, sched, &calls{}
}

func TestPosition(t *testing.T) {
	period := 1200 * time.Millisecond
	tests := []struct {
		elapsed time.Duration
		want    float64
	}{
		{0, 0.5},
		{300 * time.Millisecond, 1},
		{600 * time.Millisecond, 0.5},
		{900 * time.Millisecond, 0},
		{1200 * time.Millisecond, 0.5},
	}
	for _, tt := range tests {
		if got := Position(tt.elapsed, period); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Position(%v) = %v, want %v", tt.elapsed, got, tt.want)
		}
	}
}

func TestStrikeSuccessDelivered(t *testing.T) {
	g, clk, sched, c := setup()
	g.Start(3, c.onSuccess, c.onFail)

	// Needle starts at 0.5, inside the zone.
	if r := g.Strike(); r != ResultSuccess {
		t.Fatalf("Strike = %v, want success", r)
	}

	clk.Advance(499 * time.Millisecond)
	sched.Run()
	if len(c.success) != 0 {
		t.Fatal("result delivered before the reveal delay")
	}
	if !g.Active() {
		t.Error("gauge should stay active during the reveal")
	}

	clk.Advance(time.Millisecond)
	sched.Run()
	if len(c.success) != 1 || c.success[0] != 3 || len(c.fail) != 0 {
		t.Errorf("success=%v fail=%v, want [3] []", c.success, c.fail)
	}
	if g.Active() {
		t.Error("gauge still active after resolution")
	}
}

func TestStrikeFail(t *testing.T) {
	g, clk, sched, c := setup()
	g.Start(1, c.onSuccess, c.onFail)
	clk.Advance(300 * time.Millisecond) // needle at 1
	if r := g.Strike(); r != ResultFail {
		t.Fatalf("Strike = %v, want fail", r)
	}
	clk.Advance(time.Second)
	sched.Run()
	if len(c.fail) != 1 || len(c.success) != 0 {
		t.Errorf("success=%v fail=%v, want [] [1]", c.success, c.fail)
	}
}

func TestOnlyFirstStrikeCounts(t *testing.T) {
	g, clk, sched, c := setup()
	g.Start(0, c.onSuccess, c.onFail)
	g.Strike()
	clk.Advance(300 * time.Millisecond)
	if r := g.Strike(); r != ResultPending {
		t.Errorf("second Strike = %v, want pending", r)
	}
	if g.Needle() != 0.5 {
		t.Errorf("needle moved after strike: %v", g.Needle())
	}
	clk.Advance(time.Second)
	sched.Run()
	if len(c.success)+len(c.fail) != 1 {
		t.Errorf("callbacks fired %d times, want 1", len(c.success)+len(c.fail))
	}
}

func TestStartWhileActiveRefused(t *testing.T) {
	g, _, _, c := setup()
	if !g.Start(0, c.onSuccess, c.onFail) {
		t.Fatal("first Start refused")
	}
	if g.Start(1, c.onSuccess, c.onFail) {
		t.Error("second Start accepted while active")
	}
	if g.Demon() != 0 {
		t.Errorf("Demon = %d, want 0", g.Demon())
	}
}

func TestCancelSuppressesCallbacks(t *testing.T) {
	g, clk, sched, c := setup()
	g.Start(2, c.onSuccess, c.onFail)
	g.Strike()
	g.Cancel()
	clk.Advance(time.Second)
	sched.Run()
	if len(c.success)+len(c.fail) != 0 {
		t.Errorf("cancelled gauge delivered success=%v fail=%v", c.success, c.fail)
	}
	if g.Active() || g.Demon() != -1 {
		t.Error("cancelled gauge still active")
	}
}

func TestInZoneInclusive(t *testing.T) {
	g, _, _, _ := setup()
	for _, p := range []float64{0.4, 0.5, 0.6} {
		if !g.InZone(p) {
			t.Errorf("InZone(%v) = false", p)
		}
	}
	for _, p := range []float64{0.39, 0.61} {
		if g.InZone(p) {
			t.Errorf("InZone(%v) = true", p)
		}
	}
}
