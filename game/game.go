// Package game runs the per-frame simulation: one coordinator owns the
// round, advances every agent in a fixed order and drives the state machine.
package game

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pthm-cable/whiteout/clock"
	"github.com/pthm-cable/whiteout/config"
	"github.com/pthm-cable/whiteout/feedback"
	"github.com/pthm-cable/whiteout/minigame"
	"github.com/pthm-cable/whiteout/player"
	"github.com/pthm-cable/whiteout/proximity"
	"github.com/pthm-cable/whiteout/ranking"
	"github.com/pthm-cable/whiteout/telemetry"
	"github.com/pthm-cable/whiteout/throttle"
)

// Transition timing for the end-of-round effect.
const (
	TransitionDuration = 1500 * time.Millisecond
	TransitionFlash    = 300 * time.Millisecond
)

var (
	ErrNotCleared       = errors.New("round not cleared")
	ErrAlreadySubmitted = errors.New("record already submitted")
)

// Audio plays positional cues. Implementations must not block the tick.
type Audio interface {
	// Start begins playback; timers go on sched so state changes cancel them.
	Start(sched *clock.Scheduler)
	Stop()
	Update(sister, demon feedback.Spatial)
}

// Hooks are the host callbacks. Each fires at most once per transition per round.
type Hooks struct {
	OnClear           func(seconds float64)
	OnGameOver        func(seconds float64)
	OnLoadingProgress func(percent int)
	OnDiscovered      func()
	OnEncounter       func(demon int)
	OnStateChange     func(from, to State)
}

// Input is one tick of player input plus the minigame strike.
type Input struct {
	player.Input
	Strike bool
}

// Options configures a Game.
type Options struct {
	Seed      int64
	OutputDir string
	Logger    *slog.Logger
	Clock     clock.Clock   // nil uses wall time
	PerfClock clock.Clock   // times ticks and frames; nil uses wall time
	Sink      throttle.Sink // nil discards UI updates
	Audio     Audio         // nil is silent
	LoadTasks []LoadTask
	Hooks     Hooks
}

// Game holds the complete game state.
type Game struct {
	cfg    *config.Config
	logger *slog.Logger
	clock  clock.Clock
	sched  *clock.Scheduler
	rng    *rand.Rand
	seed   int64

	state    *StateMachine
	loader   *Loader
	loadCtx  context.Context
	cancel   context.CancelFunc
	progress int

	round    *Round
	roundNum int
	player   *player.Controller
	moved    player.Moved
	prox     *proximity.Engine
	last     proximity.Snapshot
	gauge    *minigame.Gauge
	elapsed  *clock.Elapsed
	throttle *throttle.Throttle
	audio    Audio
	board    *ranking.Board
	hooks    Hooks

	transitioning bool
	lastRank      int

	// Telemetry
	perf         *telemetry.PerfCollector
	output       *telemetry.OutputManager
	rounds       []telemetry.RoundRecord
	throttleBase throttle.Stats
	tick         int64
	roundTicks   int64
	lastPerfLog  time.Time
}

// NewGame creates a game in the start state.
func NewGame(cfg *config.Config, opts Options) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.Real{}
	}
	perfClock := opts.PerfClock
	if perfClock == nil {
		perfClock = clock.Real{}
	}
	sink := opts.Sink
	if sink == nil {
		sink = throttle.Discard{}
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		logger.Warn("failed to write config snapshot", "error", err)
	}

	sched := clock.NewScheduler(clk)
	ctx, cancel := context.WithCancel(context.Background())

	g := &Game{
		cfg:      cfg,
		logger:   logger,
		clock:    clk,
		sched:    sched,
		rng:      rand.New(rand.NewSource(opts.Seed)),
		seed:     opts.Seed,
		state:    NewStateMachine(),
		loader:   NewLoader(logger, opts.LoadTasks...),
		loadCtx:  ctx,
		cancel:   cancel,
		player:   player.NewController(cfg.Player),
		prox:     proximity.NewEngine(cfg.Proximity),
		gauge:    minigame.NewGauge(cfg.Minigame, sched),
		elapsed:  clock.NewElapsed(clk),
		throttle: throttle.New(cfg.Throttle, sink),
		audio:    opts.Audio,
		board:    ranking.NewBoard(cfg.Ranking),
		hooks:    opts.Hooks,
		perf:     telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow, perfClock),
		output:   output,
		lastRank: -1,
	}
	g.state.OnChange(g.onStateChange)
	return g, nil
}

// Begin leaves the start screen and starts loading.
func (g *Game) Begin() error {
	return g.state.Transition(StateLoading)
}

// Restart returns to the start screen after a clear or game over.
func (g *Game) Restart() error {
	return g.state.Transition(StateStart)
}

// Tick advances the simulation by dt seconds. Order is fixed: deferred
// callbacks, player, NPCs, proximity, feedback, throttle.
func (g *Game) Tick(dt float64, in Input) {
	g.perf.StartTick()
	g.tick++

	g.perf.StartPhase(telemetry.PhaseScheduler)
	g.sched.Run()
	if g.state.Current() == StateLoading {
		g.pollLoader()
	}
	if g.state.Current() != StatePlaying {
		g.perf.EndTick()
		return
	}
	g.roundTicks++
	now := g.clock.Now()

	g.perf.StartPhase(telemetry.PhasePlayer)
	if in.Strike && g.gauge.Active() {
		if r := g.gauge.Strike(); r != minigame.ResultPending {
			g.logger.Info("strike", "round", g.roundNum, "demon", g.gauge.Demon(), "result", r.String(), "needle", g.gauge.Needle())
		}
	}
	g.moved = g.player.Update(dt, in.Input)

	g.perf.StartPhase(telemetry.PhaseNPCs)
	npcs := g.round.NPCs
	npcs.Step(g.moved.Position, now, dt)

	g.perf.StartPhase(telemetry.PhaseProximity)
	res := g.prox.Evaluate(g.moved.Position, npcs.SisterPosition(), npcs, g.gauge.Active())
	g.last = res.Snapshot
	if res.Discovered {
		g.round.discovered = now
		g.logger.Info("sister discovered", "round", g.roundNum, "elapsed", g.elapsed.Seconds(), "distance", res.SisterDistance)
		if g.hooks.OnDiscovered != nil {
			g.hooks.OnDiscovered()
		}
	}
	switch res.Outcome {
	case proximity.OutcomeClear:
		g.end(OutcomeClear)
		g.perf.EndTick()
		return
	case proximity.OutcomeEncounter:
		g.encounter(res.Demon, res.ClosestDemonDistance)
	}

	g.perf.StartPhase(telemetry.PhaseFeedback)
	g.updateAudio()

	g.perf.StartPhase(telemetry.PhaseThrottle)
	g.offer(now)
	g.elapsed.Tick()

	g.perf.EndTick()
	g.flushTelemetry(now)
}

func (g *Game) pollLoader() {
	p := g.loader.Poll()
	if p != g.progress {
		g.progress = p
		if g.hooks.OnLoadingProgress != nil {
			g.hooks.OnLoadingProgress(p)
		}
	}
	if p >= 100 {
		if err := g.state.Transition(StatePlaying); err != nil {
			g.logger.Error("enter playing", "error", err)
		}
	}
}

func (g *Game) encounter(demon int, distance float64) {
	if !g.gauge.Start(demon, g.strikeSuccess, g.strikeFail) {
		return
	}
	g.round.encounters++
	g.player.SetFrozen(true)
	g.logger.Info("demon encounter", "round", g.roundNum, "demon", demon, "distance", distance)
	if g.hooks.OnEncounter != nil {
		g.hooks.OnEncounter(demon)
	}
}

func (g *Game) strikeSuccess(demon int) {
	if g.round.Ended() {
		return
	}
	g.round.Kill(demon)
	g.player.SetFrozen(false)
	g.logger.Info("demon killed", "round", g.roundNum, "demon", demon, "kills", g.round.KillCount())
}

func (g *Game) strikeFail(demon int) {
	g.logger.Info("strike missed", "round", g.roundNum, "demon", demon)
	g.end(OutcomeGameOver)
}

// end latches the round and fires the host callback once.
func (g *Game) end(outcome Outcome) {
	now := g.clock.Now()
	secs := g.elapsed.Seconds()
	if !g.round.End(outcome, now, secs) {
		return
	}
	g.elapsed.Stop()
	g.throttle.Flush()

	to := StateClear
	if outcome == OutcomeGameOver {
		to = StateGameOver
	}
	if err := g.state.Transition(to); err != nil {
		g.logger.Error("end round", "round", g.roundNum, "error", err)
	}
	g.recordRound()

	switch outcome {
	case OutcomeClear:
		if g.hooks.OnClear != nil {
			g.hooks.OnClear(secs)
		}
	case OutcomeGameOver:
		if g.hooks.OnGameOver != nil {
			g.hooks.OnGameOver(secs)
		}
	}
}

// onStateChange runs after every transition. Every deferred callback of the
// previous state is cancelled before the new state schedules its own.
func (g *Game) onStateChange(from, to State) {
	g.sched.CancelAll()
	g.gauge.Cancel()
	g.logger.Info("state change", "from", from.String(), "to", to.String(), "round", g.roundNum)

	switch to {
	case StateStart:
		g.resetRound()
	case StateLoading:
		g.progress = -1
		g.loader.Start(g.loadCtx)
	case StatePlaying:
		g.startRound()
		if g.audio != nil {
			g.audio.Start(g.sched)
		}
	case StateClear, StateGameOver:
		if g.audio != nil {
			g.audio.Stop()
		}
		g.player.SetFrozen(true)
		g.transitioning = true
		g.sched.After(TransitionDuration, func() { g.transitioning = false })
	}

	if g.hooks.OnStateChange != nil {
		g.hooks.OnStateChange(from, to)
	}
}

func (g *Game) startRound() {
	g.roundNum++
	now := g.clock.Now()
	g.round = NewRound(g.roundNum, g.rng.Int63(), g.cfg, now)
	g.player.Reset()
	g.moved = g.player.State()
	g.prox.Reset()
	g.throttle.Reset()
	g.throttleBase = g.throttle.Stats()
	g.roundTicks = 0
	g.lastRank = -1
	g.last = proximity.Measure(g.moved.Position, g.round.NPCs.SisterPosition(), g.round.NPCs)
	g.elapsed.Start()
	g.perf.BeginRound(g.roundNum)
	g.logger.Info("round started", "round", g.roundNum, "seed", g.round.Seed, "demons", g.round.NPCs.DemonCount())
}

func (g *Game) resetRound() {
	g.elapsed.Reset()
	g.player.Reset()
	g.moved = g.player.State()
	g.prox.Reset()
	g.throttle.Reset()
	g.transitioning = false
}

func (g *Game) updateAudio() {
	if g.audio == nil {
		return
	}
	listener, yaw := g.moved.Position, g.moved.CameraYaw
	sister := feedback.Spatialize(listener, yaw, g.round.NPCs.SisterPosition(), g.cfg.Audio.SisterMaxDist)
	var demon feedback.Spatial
	if g.last.ClosestDemon != proximity.NoDemon {
		demon = feedback.Spatialize(listener, yaw, g.round.NPCs.DemonPosition(g.last.ClosestDemon), g.cfg.Audio.DemonMaxDist)
	}
	g.audio.Update(sister, demon)
}

func (g *Game) offer(now time.Time) {
	positions, ok := g.round.NPCs.LiveDemons()
	markers := make([]throttle.DemonMarker, 0, len(positions))
	for id, p := range positions {
		if ok[id] {
			markers = append(markers, throttle.DemonMarker{ID: id, Position: p})
		}
	}
	g.throttle.OfferMinimap(throttle.Minimap{
		At:        now,
		Player:    g.moved.Position,
		CameraYaw: g.moved.CameraYaw,
		Facing:    g.moved.Facing,
		Sister:    g.round.NPCs.SisterPosition(),
		Demons:    markers,
	})
	g.throttle.OfferHints(g.last.SisterDistance, g.last.ClosestDemonDistance)
	g.throttle.OfferMoving(g.moved.Moving)
}

// SubmitRecord enters the cleared round into the leaderboard and returns
// the 1-based rank, or -1 if it did not place.
func (g *Game) SubmitRecord(nickname string) (int, error) {
	if g.state.Current() != StateClear || g.round == nil {
		return -1, ErrNotCleared
	}
	if g.round.submitted {
		return -1, ErrAlreadySubmitted
	}
	g.round.submitted = true
	rank := g.board.Add(nickname, g.round.Duration())
	g.lastRank = rank
	g.logger.Info("record submitted", "round", g.roundNum, "nickname", g.board.Normalize(nickname), "elapsed", g.round.Duration(), "rank", rank)
	if err := g.output.WriteRankings(g.board.Records()); err != nil {
		g.logger.Warn("failed to write rankings", "error", err)
	}
	return rank, nil
}

// Transition returns the progress of the end-of-round effect in [0,1] and
// whether the opening flash is showing. Progress is 1 once it has finished.
func (g *Game) Transition() (progress float64, flash bool) {
	if !g.state.Current().Ended() || g.round == nil {
		return 0, false
	}
	if !g.transitioning {
		return 1, false
	}
	since := g.clock.Now().Sub(g.round.EndedAt())
	progress = min(since.Seconds()/TransitionDuration.Seconds(), 1)
	return progress, since < TransitionFlash
}

// RecordFrame tells the perf window a frame was presented. Frontends call
// it once per drawn frame.
func (g *Game) RecordFrame() { g.perf.RecordFrame() }

// Perf returns the current perf window.
func (g *Game) Perf() telemetry.PerfStats { return g.perf.Stats() }

// State returns the current game state.
func (g *Game) State() State { return g.state.Current() }

// Round returns the active round, nil before the first one.
func (g *Game) Round() *Round { return g.round }

// Elapsed returns the round timer for display subscriptions.
func (g *Game) Elapsed() *clock.Elapsed { return g.elapsed }

// Scheduler returns the scheduler all deferred callbacks run on.
func (g *Game) Scheduler() *clock.Scheduler { return g.sched }

// Gauge returns the minigame gauge.
func (g *Game) Gauge() *minigame.Gauge { return g.gauge }

// Board returns the leaderboard.
func (g *Game) Board() *ranking.Board { return g.board }

// Player returns the last published player update.
func (g *Game) Player() player.Moved { return g.moved }

// Snapshot returns the last proximity snapshot.
func (g *Game) Snapshot() proximity.Snapshot { return g.last }

// Discovered reports whether the sister has been found this round.
func (g *Game) Discovered() bool { return g.prox.Discovered() }

// Rounds returns the records of every finished round.
func (g *Game) Rounds() []telemetry.RoundRecord { return g.rounds }

// TickCount returns the number of ticks run.
func (g *Game) TickCount() int64 { return g.tick }

// Config returns the game configuration.
func (g *Game) Config() *config.Config { return g.cfg }

// Unload releases resources and logs a summary of all rounds.
func (g *Game) Unload() {
	g.cancel()
	g.loader.Close()
	if g.audio != nil {
		g.audio.Stop()
	}
	if len(g.rounds) > 0 {
		g.logger.Info("session summary", "summary", telemetry.Summarize(g.rounds))
	}
	if err := g.output.Close(); err != nil {
		g.logger.Warn("failed to close output", "error", err)
	}
}
