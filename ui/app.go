package ui

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/whiteout/config"
	"github.com/pthm-cable/whiteout/feedback"
	"github.com/pthm-cable/whiteout/game"
	"github.com/pthm-cable/whiteout/minigame"
	"github.com/pthm-cable/whiteout/throttle"
	"github.com/pthm-cable/whiteout/weather"
)

// App is the graphical frontend around one Game. It must be created after
// the raylib window is open.
type App struct {
	game   *game.Game
	cfg    *config.Config
	logger *slog.Logger

	renderer *Renderer
	hints    *throttle.Latest
	world    *WorldView
	tint     *TintOverlay
	minimap  *Minimap
	hud      *HUD
	input    InputAdapter

	screenW, screenH int32
	loading          int
	showFPS          bool

	// Clear screen
	nickname string
	editing  bool
	rank     int
}

// NewApp builds the game with the frontend wired in as a throttle sink and
// host callbacks. Sinks and hooks already in opts still receive everything.
func NewApp(cfg *config.Config, opts game.Options) (*App, error) {
	mapper, err := feedback.NewMapper(cfg.Feedback)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := NewRenderer()
	w, h := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
	a := &App{
		cfg:      cfg,
		logger:   logger,
		renderer: r,
		hints:    throttle.NewLatest(),
		world:    NewWorldView(r, float32(w), float32(h), 24, weather.NewWind(cfg.Wind, opts.Seed), opts.Seed),
		tint:     NewTintOverlay(mapper),
		minimap:  NewMinimap(r, 140, cfg.World.MapSize, AnchorTopRight),
		screenW:  w,
		screenH:  h,
		rank:     -1,
	}

	if opts.Sink != nil {
		opts.Sink = throttle.Multi{a.hints, opts.Sink}
	} else {
		opts.Sink = a.hints
	}
	opts.Hooks = a.chain(opts.Hooks)

	a.game, err = game.NewGame(cfg, opts)
	if err != nil {
		return nil, err
	}
	a.hud = NewHUD(r, a.game.Elapsed())
	return a, nil
}

// chain wraps the host's hooks so the frontend hears them first.
func (a *App) chain(host game.Hooks) game.Hooks {
	return game.Hooks{
		OnClear: func(secs float64) {
			a.editing = a.game.Board().WouldPlace(secs)
			if host.OnClear != nil {
				host.OnClear(secs)
			}
		},
		OnGameOver:   host.OnGameOver,
		OnDiscovered: host.OnDiscovered,
		OnEncounter:  host.OnEncounter,
		OnLoadingProgress: func(p int) {
			a.loading = p
			if host.OnLoadingProgress != nil {
				host.OnLoadingProgress(p)
			}
		},
		OnStateChange: func(from, to game.State) {
			a.stateChanged(to)
			if host.OnStateChange != nil {
				host.OnStateChange(from, to)
			}
		},
	}
}

func (a *App) stateChanged(to game.State) {
	switch to {
	case game.StateStart:
		a.nickname, a.editing, a.rank = "", false, -1
	case game.StateLoading:
		a.loading = 0
	case game.StatePlaying:
		a.hints.Reset()
		a.world.Snap(a.game.Player())
	}
}

// Game returns the simulation.
func (a *App) Game() *game.Game { return a.game }

// Update reads input and advances the game by one frame.
func (a *App) Update() {
	a.handleResize()
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeyF3) {
		a.showFPS = !a.showFPS
	}

	dt := rl.GetFrameTime()
	in := a.input.Decode(Poll())

	switch a.game.State() {
	case game.StateStart:
		if rl.IsKeyPressed(rl.KeyEnter) {
			a.begin()
		}
	case game.StateGameOver:
		if _, done := a.transitionDone(); done && rl.IsKeyPressed(rl.KeyEnter) {
			a.restart()
		}
	}

	a.game.Tick(float64(dt), in)

	if a.game.State() == game.StatePlaying {
		a.world.Update(dt, a.game.Player(), a.hints.IsMoving())
	}
}

// handleResize checks for window resize and propagates new dimensions.
func (a *App) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w, h := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
	if w == a.screenW && h == a.screenH {
		return
	}
	a.screenW, a.screenH = w, h
	a.world.Resize(float32(w), float32(h))
}

func (a *App) begin() {
	if err := a.game.Begin(); err != nil {
		a.logger.Error("begin", "error", err)
	}
}

func (a *App) restart() {
	if err := a.game.Restart(); err != nil {
		a.logger.Error("restart", "error", err)
	}
}

func (a *App) transitionDone() (float64, bool) {
	p, _ := a.game.Transition()
	return p, p >= 1
}

// Draw renders the current frame.
func (a *App) Draw() {
	rl.BeginDrawing()
	defer rl.EndDrawing()
	a.game.RecordFrame()

	switch a.game.State() {
	case game.StateStart:
		rl.ClearBackground(rl.Color{R: 10, G: 22, B: 40, A: 255})
		a.drawStart()
	case game.StateLoading:
		rl.ClearBackground(rl.Color{R: 10, G: 22, B: 40, A: 255})
		a.hud.DrawLoading(a.screenW, a.screenH, a.loading)
	case game.StatePlaying:
		a.drawRound()
	case game.StateClear, game.StateGameOver:
		a.drawEnded()
	}
}

func (a *App) drawRound() {
	round := a.game.Round()
	a.world.Draw(round.NPCs, a.game.Player())
	a.tint.Draw(a.hints, a.screenW, a.screenH)

	snap, ok := a.hints.Snapshot()
	a.minimap.Draw(snap, ok, a.screenW, a.screenH)
	a.hud.Draw(HUDData{
		Discovered:   a.game.Discovered(),
		Kills:        round.KillCount(),
		Demons:       round.NPCs.DemonCount(),
		FPS:          rl.GetFPS(),
		ShowFPS:      a.showFPS,
		ScreenWidth:  a.screenW,
		ScreenHeight: a.screenH,
	})

	if g := a.game.Gauge(); g.Active() {
		text := "Press SPACE in the green"
		switch g.Result() {
		case minigame.ResultSuccess:
			text = "HIT"
		case minigame.ResultFail:
			text = "MISS"
		}
		mg := a.cfg.Minigame
		a.hud.DrawGauge(a.screenW, a.screenH, mg.SuccessMin, mg.SuccessMax, g.Needle(), text)
	}
}

// Unload releases the game and the HUD subscription.
func (a *App) Unload() {
	a.hud.Close()
	a.game.Unload()
}
