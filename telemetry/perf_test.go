package telemetry

import (
	"math"
	"testing"
	"time"

	"github.com/pthm-cable/whiteout/clock"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// tick records one tick whose phases take the given durations, in order.
func tick(p *PerfCollector, clk *clock.Manual, phases map[Phase]time.Duration) {
	p.StartTick()
	for ph := PhaseScheduler; ph < numPhases; ph++ {
		d, ok := phases[ph]
		if !ok {
			continue
		}
		p.StartPhase(ph)
		clk.Advance(d)
	}
	p.EndTick()
}

func TestPhaseShares(t *testing.T) {
	clk := clock.NewManual(t0)
	p := NewPerfCollector(10, clk)
	for i := 0; i < 3; i++ {
		tick(p, clk, map[Phase]time.Duration{PhasePlayer: time.Millisecond, PhaseNPCs: 3 * time.Millisecond})
	}

	s := p.Stats()
	if s.Ticks != 3 {
		t.Errorf("Ticks = %d, want 3", s.Ticks)
	}
	if s.AvgTick != 4*time.Millisecond {
		t.Errorf("AvgTick = %v, want 4ms", s.AvgTick)
	}
	tests := []struct {
		phase Phase
		want  float64
	}{
		{PhaseScheduler, 0},
		{PhasePlayer, 25},
		{PhaseNPCs, 75},
		{PhaseThrottle, 0},
	}
	for _, tt := range tests {
		if got := s.PhasePct[tt.phase]; math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s share = %v, want %v", tt.phase, got, tt.want)
		}
	}
}

func TestWindowKeepsLatestTicks(t *testing.T) {
	clk := clock.NewManual(t0)
	p := NewPerfCollector(4, clk)
	for i := 1; i <= 8; i++ {
		tick(p, clk, map[Phase]time.Duration{PhaseProximity: time.Duration(i) * time.Millisecond})
	}

	s := p.Stats()
	if s.Ticks != 4 {
		t.Fatalf("Ticks = %d, want 4", s.Ticks)
	}
	if want := 6500 * time.Microsecond; s.AvgTick != want {
		t.Errorf("AvgTick = %v, want %v", s.AvgTick, want)
	}
	if s.MaxTick != 8*time.Millisecond {
		t.Errorf("MaxTick = %v, want 8ms", s.MaxTick)
	}
}

func TestTickQuantile(t *testing.T) {
	clk := clock.NewManual(t0)
	p := NewPerfCollector(20, clk)
	// Out of order so the quantile has to sort.
	for _, ms := range []int{20, 1, 19, 2, 18, 3, 17, 4, 16, 5, 15, 6, 14, 7, 13, 8, 12, 9, 11, 10} {
		tick(p, clk, map[Phase]time.Duration{PhaseFeedback: time.Duration(ms) * time.Millisecond})
	}
	if got := p.Stats().P95Tick; got != 19*time.Millisecond {
		t.Errorf("P95Tick = %v, want 19ms", got)
	}
}

func TestFramesGiveFPS(t *testing.T) {
	clk := clock.NewManual(t0)
	p := NewPerfCollector(10, clk)
	if got := p.Stats().FPS; got != 0 {
		t.Errorf("FPS before any frame = %v, want 0", got)
	}

	for i := 0; i < 5; i++ {
		p.RecordFrame()
		clk.Advance(16 * time.Millisecond)
	}
	s := p.Stats()
	if math.Abs(s.FPS-62.5) > 1e-9 {
		t.Errorf("FPS = %v, want 62.5", s.FPS)
	}
	if s.P95Frame != 16*time.Millisecond {
		t.Errorf("P95Frame = %v, want 16ms", s.P95Frame)
	}
}

func TestBeginRoundRestartsWindow(t *testing.T) {
	clk := clock.NewManual(t0)
	p := NewPerfCollector(10, clk)
	p.BeginRound(1)
	tick(p, clk, map[Phase]time.Duration{PhasePlayer: time.Millisecond})
	p.RecordFrame()
	clk.Advance(time.Second)
	p.RecordFrame()

	p.BeginRound(2)
	s := p.Stats()
	if s.Round != 2 || s.Ticks != 0 || s.FPS != 0 {
		t.Fatalf("after BeginRound: round %d, ticks %d, fps %v; want 2, 0, 0", s.Round, s.Ticks, s.FPS)
	}

	// The first frame of a round is only a baseline, not a one-second gap.
	clk.Advance(time.Second)
	p.RecordFrame()
	clk.Advance(20 * time.Millisecond)
	p.RecordFrame()
	if got := p.Stats().FPS; math.Abs(got-50) > 1e-9 {
		t.Errorf("FPS = %v, want 50", got)
	}
}

func TestPerfCSVRow(t *testing.T) {
	clk := clock.NewManual(t0)
	p := NewPerfCollector(10, clk)
	p.BeginRound(3)
	tick(p, clk, map[Phase]time.Duration{PhaseScheduler: time.Millisecond, PhaseThrottle: time.Millisecond})

	row := p.Stats().ToCSV(42)
	if row.Tick != 42 || row.Round != 3 || row.Ticks != 1 {
		t.Errorf("row = tick %d round %d ticks %d, want 42 3 1", row.Tick, row.Round, row.Ticks)
	}
	if row.SchedulerPct != 50 || row.ThrottlePct != 50 || row.PlayerPct != 0 {
		t.Errorf("shares = %v/%v/%v, want 50/50/0", row.SchedulerPct, row.ThrottlePct, row.PlayerPct)
	}
	if row.AvgTickUS != 2000 {
		t.Errorf("AvgTickUS = %d, want 2000", row.AvgTickUS)
	}
}

func TestPhaseString(t *testing.T) {
	if got := PhaseNPCs.String(); got != "npcs" {
		t.Errorf("PhaseNPCs = %q, want npcs", got)
	}
	if got := numPhases.String(); got != "unknown" {
		t.Errorf("numPhases = %q, want unknown", got)
	}
}
