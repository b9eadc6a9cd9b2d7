package telemetry

import (
	"log/slog"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/whiteout/clock"
)

// Phase is one stage of the game tick.
type Phase uint8

// Tick phases, in execution order.
const (
	PhaseScheduler Phase = iota
	PhasePlayer
	PhaseNPCs
	PhaseProximity
	PhaseFeedback
	PhaseThrottle
	numPhases
)

var phaseNames = [numPhases]string{"scheduler", "player", "npcs", "proximity", "feedback", "throttle"}

func (p Phase) String() string {
	if p < numPhases {
		return phaseNames[p]
	}
	return "unknown"
}

type tickSample struct {
	total  time.Duration
	phases [numPhases]time.Duration
}

// ring is a fixed-size window of the most recent values.
type ring[T any] struct {
	buf  []T
	next int
	n    int
}

func newRing[T any](size int) ring[T] { return ring[T]{buf: make([]T, size)} }

func (r *ring[T]) push(v T) {
	r.buf[r.next] = v
	r.next = (r.next + 1) % len(r.buf)
	r.n = min(r.n+1, len(r.buf))
}

func (r *ring[T]) values() []T { return r.buf[:r.n] }

func (r *ring[T]) reset() { r.next, r.n = 0, 0 }

// PerfCollector times the phases of every tick and the frames drawn around
// them over a rolling window. The window restarts with each round so a
// window never mixes two rounds.
type PerfCollector struct {
	clock clock.Clock
	ticks ring[tickSample]
	// Frame intervals are kept separately; headless runs never draw.
	frames ring[time.Duration]

	round     int
	current   tickSample
	tickStart time.Time
	mark      time.Time
	phase     Phase
	inPhase   bool
	lastFrame time.Time
}

// NewPerfCollector creates a collector averaging over window ticks and
// frames. Timing reads clk, which should be wall time in production.
func NewPerfCollector(window int, clk clock.Clock) *PerfCollector {
	if window < 1 {
		window = 60
	}
	return &PerfCollector{
		clock:  clk,
		ticks:  newRing[tickSample](window),
		frames: newRing[time.Duration](window),
	}
}

// BeginRound clears the window and tags later stats with round.
func (p *PerfCollector) BeginRound(round int) {
	p.round = round
	p.ticks.reset()
	p.frames.reset()
	p.lastFrame = time.Time{}
}

// StartTick begins timing a new tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = p.clock.Now()
	p.current = tickSample{}
	p.inPhase = false
}

// StartPhase closes the running phase, if any, and opens phase.
func (p *PerfCollector) StartPhase(phase Phase) {
	now := p.clock.Now()
	p.closePhase(now)
	p.phase, p.mark, p.inPhase = phase, now, true
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.inPhase {
		p.current.phases[p.phase] += now.Sub(p.mark)
	}
}

// EndTick closes the tick and records it.
func (p *PerfCollector) EndTick() {
	now := p.clock.Now()
	p.closePhase(now)
	p.inPhase = false
	p.current.total = now.Sub(p.tickStart)
	p.ticks.push(p.current)
}

// RecordFrame marks a presented frame. The first call after a reset only
// sets the baseline.
func (p *PerfCollector) RecordFrame() {
	now := p.clock.Now()
	if !p.lastFrame.IsZero() {
		p.frames.push(now.Sub(p.lastFrame))
	}
	p.lastFrame = now
}

// PerfStats summarizes one window.
type PerfStats struct {
	Round int
	Ticks int

	AvgTick time.Duration
	P95Tick time.Duration
	MaxTick time.Duration

	// PhasePct is each phase's share of total tick time, in percent.
	PhasePct [numPhases]float64

	// Zero when no frames were drawn in the window.
	FPS      float64
	P95Frame time.Duration
}

// Stats computes the current window.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{Round: p.round}

	ticks := p.ticks.values()
	s.Ticks = len(ticks)
	if len(ticks) > 0 {
		totals := make([]float64, len(ticks))
		var phaseSum [numPhases]time.Duration
		var sum time.Duration
		for i, t := range ticks {
			totals[i] = float64(t.total)
			sum += t.total
			for ph, d := range t.phases {
				phaseSum[ph] += d
			}
		}
		sort.Float64s(totals)
		s.AvgTick = time.Duration(stat.Mean(totals, nil))
		s.P95Tick = time.Duration(stat.Quantile(0.95, stat.Empirical, totals, nil))
		s.MaxTick = time.Duration(totals[len(totals)-1])
		if sum > 0 {
			for ph, d := range phaseSum {
				s.PhasePct[ph] = float64(d) / float64(sum) * 100
			}
		}
	}

	if frames := p.frames.values(); len(frames) > 0 {
		intervals := make([]float64, len(frames))
		for i, d := range frames {
			intervals[i] = float64(d)
		}
		sort.Float64s(intervals)
		if mean := stat.Mean(intervals, nil); mean > 0 {
			s.FPS = float64(time.Second) / mean
		}
		s.P95Frame = time.Duration(stat.Quantile(0.95, stat.Empirical, intervals, nil))
	}
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("round", s.Round),
		slog.Int("ticks", s.Ticks),
		slog.Int64("avg_tick_us", s.AvgTick.Microseconds()),
		slog.Int64("p95_tick_us", s.P95Tick.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTick.Microseconds()),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Int("fps", int(s.FPS)), slog.Int64("p95_frame_us", s.P95Frame.Microseconds()))
	}
	for ph, pct := range s.PhasePct {
		if pct >= 0.1 {
			attrs = append(attrs, slog.Float64(Phase(ph).String()+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one row of perf.csv.
type PerfStatsCSV struct {
	Tick         int64   `csv:"tick"`
	Round        int     `csv:"round"`
	Ticks        int     `csv:"window_ticks"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	P95TickUS    int64   `csv:"p95_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	FPS          float64 `csv:"fps"`
	P95FrameUS   int64   `csv:"p95_frame_us"`
	SchedulerPct float64 `csv:"scheduler_pct"`
	PlayerPct    float64 `csv:"player_pct"`
	NPCsPct      float64 `csv:"npcs_pct"`
	ProximityPct float64 `csv:"proximity_pct"`
	FeedbackPct  float64 `csv:"feedback_pct"`
	ThrottlePct  float64 `csv:"throttle_pct"`
}

// ToCSV flattens the stats for the tick at which they were taken.
func (s PerfStats) ToCSV(tick int64) PerfStatsCSV {
	return PerfStatsCSV{
		Tick:         tick,
		Round:        s.Round,
		Ticks:        s.Ticks,
		AvgTickUS:    s.AvgTick.Microseconds(),
		P95TickUS:    s.P95Tick.Microseconds(),
		MaxTickUS:    s.MaxTick.Microseconds(),
		FPS:          s.FPS,
		P95FrameUS:   s.P95Frame.Microseconds(),
		SchedulerPct: s.PhasePct[PhaseScheduler],
		PlayerPct:    s.PhasePct[PhasePlayer],
		NPCsPct:      s.PhasePct[PhaseNPCs],
		ProximityPct: s.PhasePct[PhaseProximity],
		FeedbackPct:  s.PhasePct[PhaseFeedback],
		ThrottlePct:  s.PhasePct[PhaseThrottle],
	}
}
