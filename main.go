package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/whiteout/audio"
	"github.com/pthm-cable/whiteout/clock"
	"github.com/pthm-cable/whiteout/config"
	"github.com/pthm-cable/whiteout/game"
	"github.com/pthm-cable/whiteout/spectate"
	"github.com/pthm-cable/whiteout/ui"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run rounds with the autopilot and no graphics")
	skill := flag.Float64("skill", 0.7, "Autopilot chance of striking inside the zone")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	opts := game.Options{
		Seed:      rngSeed,
		OutputDir: *outputDir,
		Logger:    logger,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.Spectate.Enabled {
		hub := spectate.NewHub(logger)
		srv, err := spectate.Listen(cfg.Spectate.Addr, hub)
		if err != nil {
			slog.Error("failed to start spectate server", "error", err)
			os.Exit(1)
		}
		go func() {
			if err := srv.Serve(ctx); err != nil {
				slog.Error("spectate server", "error", err)
			}
		}()
		opts.Sink = hub
		opts.Hooks.OnStateChange = func(from, to game.State) { hub.StateChanged(from.String(), to.String()) }
		slog.Info("spectate server listening", "addr", srv.Addr())
	}

	if *headless {
		runHeadless(cfg, opts, *skill, *maxTicks)
		return
	}

	// Graphical mode
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Whiteout")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	player := audio.NewPlayer(cfg.Audio, audio.Speaker(), logger, rngSeed)
	opts.Audio = player
	opts.LoadTasks = []game.LoadTask{player.LoadTask()}

	app, err := ui.NewApp(cfg, opts)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer app.Unload()

	for !rl.WindowShouldClose() {
		app.Update()
		app.Draw()

		if *maxTicks > 0 && int(app.Game().TickCount()) >= *maxTicks {
			break
		}
	}
}

// runHeadless plays rounds with the autopilot on a manual clock stepped at
// the target frame rate, so runs are reproducible from the seed.
func runHeadless(cfg *config.Config, opts game.Options, skill float64, maxTicks int) {
	clk := clock.NewManual(time.Unix(0, 0))
	opts.Clock = clk

	g, err := game.NewGame(cfg, opts)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer g.Unload()

	bot := game.NewAutopilot(skill, opts.Seed)
	step := time.Second / time.Duration(max(cfg.Screen.TargetFPS, 1))

	slog.Info("starting headless run",
		"seed", opts.Seed,
		"skill", skill,
		"max_ticks", maxTicks,
	)

	for {
		clk.Advance(step)
		g.Tick(step.Seconds(), bot.Next(g))

		if maxTicks > 0 && int(g.TickCount()) >= maxTicks {
			slog.Info("max ticks reached", "tick", g.TickCount(), "rounds", len(g.Rounds()))
			return
		}
	}
}
