package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if cfg.Spectate.Enabled {
		t.Error("spectate should be off by default")
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeFile(t, "world:\n  demon_count: 2\nwind:\n  strength: 0\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.World.DemonCount != 2 {
		t.Errorf("DemonCount = %d, want 2", cfg.World.DemonCount)
	}
	if cfg.Wind.Strength != 0 {
		t.Errorf("Wind.Strength = %v, want 0", cfg.Wind.Strength)
	}
	// Untouched keys keep their defaults.
	if want := Defaults().World.MapSize; cfg.World.MapSize != want {
		t.Errorf("MapSize = %v, want default %v", cfg.World.MapSize, want)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"negative speed", "player:\n  speed: -1\n", "player.speed"},
		{"facing lerp", "player:\n  facing_lerp: 1.5\n", "player.facing_lerp"},
		{"no demons", "world:\n  demon_count: 0\n", "world.demon_count"},
		{"blend mode", "chase:\n  blend_mode: sometimes\n", "chase.blend_mode"},
		{"gauge zone", "minigame:\n  success_min: 0.7\n  success_max: 0.6\n", "success zone"},
		{"wind period", "wind:\n  period: 0\n", "wind.period"},
		{"snap spread negative", "player:\n  snap_spread: -0.1\n", "player.snap_spread"},
		{"snap spread past sideways", "player:\n  snap_spread: 2\n", "player.snap_spread"},
		{"sister alpha", "feedback:\n  sister_max_alpha: 1.2\n", "feedback.sister_max_alpha"},
		{"reveal delay", "minigame:\n  reveal_delay: -0.5\n", "minigame.reveal_delay"},
		{"perf log interval", "telemetry:\n  perf_log_interval: 0\n", "telemetry.perf_log_interval"},
		{"perf window", "telemetry:\n  perf_collector_window: 0\n", "telemetry.perf_collector_window"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.body))
			if err == nil {
				t.Fatal("Load succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load of a missing file succeeded")
	}
}

func TestWriteYAMLReloads(t *testing.T) {
	cfg := Defaults()
	cfg.Ranking.Size = 3
	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Ranking.Size != 3 {
		t.Errorf("Ranking.Size = %d, want 3", got.Ranking.Size)
	}
}

func TestSectionDurations(t *testing.T) {
	cfg := Defaults()
	cfg.Demon.RedirectInterval = 6
	cfg.Throttle.MinimapInterval = 0.1
	cfg.Minigame.Period = 1.2
	cfg.Minigame.RevealDelay = 0.5
	cfg.Audio.CueFirstDelay = 0.5
	cfg.Audio.CueDuration = 0.25
	cfg.Telemetry.PerfLogInterval = 10

	tests := []struct {
		name string
		got  time.Duration
		want time.Duration
	}{
		{"demon redirect", cfg.Demon.RedirectEvery(), 6 * time.Second},
		{"minimap", cfg.Throttle.MinimapEvery(), 100 * time.Millisecond},
		{"sweep", cfg.Minigame.Sweep(), 1200 * time.Millisecond},
		{"reveal", cfg.Minigame.Reveal(), 500 * time.Millisecond},
		{"first cue", cfg.Audio.FirstCue(), 500 * time.Millisecond},
		{"cue length", cfg.Audio.CueLength(), 250 * time.Millisecond},
		{"perf log", cfg.Telemetry.PerfLogEvery(), 10 * time.Second},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestSeconds(t *testing.T) {
	if got := Seconds(1.5); got != 1500*time.Millisecond {
		t.Errorf("Seconds(1.5) = %v, want 1.5s", got)
	}
}
