// Command whiteout-tui plays the game in a terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/whiteout/audio"
	"github.com/pthm-cable/whiteout/clock"
	"github.com/pthm-cable/whiteout/config"
	"github.com/pthm-cable/whiteout/game"
	"github.com/pthm-cable/whiteout/spectate"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	logPath := flag.String("log", "", "Write JSON logs to this file (empty = discard)")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	// The terminal owns stdout, so logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if *logPath != "" {
		f, err := os.Create(*logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	logger := slog.New(slog.NewJSONHandler(logOut, nil))
	slog.SetDefault(logger)

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	player := audio.NewPlayer(cfg.Audio, audio.Speaker(), logger, rngSeed)
	opts := game.Options{
		Seed:      rngSeed,
		OutputDir: *outputDir,
		Logger:    logger,
		Audio:     player,
		LoadTasks: []game.LoadTask{player.LoadTask()},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.Spectate.Enabled {
		hub := spectate.NewHub(logger)
		srv, err := spectate.Listen(cfg.Spectate.Addr, hub)
		if err != nil {
			screen.Fini()
			fmt.Fprintf(os.Stderr, "failed to start spectate server: %v\n", err)
			os.Exit(1)
		}
		go func() {
			if err := srv.Serve(ctx); err != nil {
				logger.Error("spectate server", "error", err)
			}
		}()
		opts.Sink = hub
		opts.Hooks.OnStateChange = func(from, to game.State) { hub.StateChanged(from.String(), to.String()) }
		logger.Info("spectate server listening", "addr", srv.Addr())
	}

	t, err := newTUI(screen, cfg, opts)
	if err != nil {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "failed to start: %v\n", err)
		os.Exit(1)
	}
	defer t.game.Unload()

	logger.Info("starting terminal frontend", "seed", rngSeed)
	t.run(clock.Real{})
}
