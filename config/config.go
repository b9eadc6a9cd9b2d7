// Package config provides configuration loading and access for the game.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all game configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	World     WorldConfig     `yaml:"world"`
	Player    PlayerConfig    `yaml:"player"`
	Sister    WanderConfig    `yaml:"sister"`
	Demon     WanderConfig    `yaml:"demon"`
	Chase     ChaseConfig     `yaml:"chase"`
	Proximity ProximityConfig `yaml:"proximity"`
	Feedback  FeedbackConfig  `yaml:"feedback"`
	Audio     AudioConfig     `yaml:"audio"`
	Throttle  ThrottleConfig  `yaml:"throttle"`
	Spawn     SpawnConfig     `yaml:"spawn"`
	Minigame  MinigameConfig  `yaml:"minigame"`
	Ranking   RankingConfig   `yaml:"ranking"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Spectate  SpectateConfig  `yaml:"spectate"`
	Wind      WindConfig      `yaml:"wind"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds world dimensions and round composition.
type WorldConfig struct {
	MapSize    float64 `yaml:"map_size"`    // Side length of the square the minimap shows
	DemonCount int     `yaml:"demon_count"` // Fixed demon pool per round
}

// PlayerConfig holds player controller parameters.
type PlayerConfig struct {
	Speed            float64 `yaml:"speed"`             // Units per second
	MouseSensitivity float64 `yaml:"mouse_sensitivity"` // Radians per pixel of drag
	TouchMultiplier  float64 `yaml:"touch_multiplier"`  // Touch sensitivity relative to mouse
	FacingLerp       float64 `yaml:"facing_lerp"`       // Per-tick factor toward key heading
	SnapSpread       float64 `yaml:"snap_spread"`       // Max facing offset on pointer press (radians)
}

// WanderConfig holds wander AI parameters shared by the sister and demons.
type WanderConfig struct {
	Speed            float64 `yaml:"speed"`
	RedirectInterval float64 `yaml:"redirect_interval"` // Seconds between random redirects
	Boundary         float64 `yaml:"boundary"`          // Radius beyond which the agent turns home
}

// ChaseConfig holds demon pursuit parameters.
type ChaseConfig struct {
	Distance  float64 `yaml:"distance"`   // Inclusive trigger distance
	Speed     float64 `yaml:"speed"`
	Blend     float64 `yaml:"blend"`      // Direction lerp factor toward the player
	BlendMode string  `yaml:"blend_mode"` // "per_tick" or "time_scaled"
	BlendRate float64 `yaml:"blend_rate"` // Reference tick rate for time_scaled blending
}

// ProximityConfig holds transition thresholds.
type ProximityConfig struct {
	DiscoverDistance float64 `yaml:"discover_distance"`
	ClearDistance    float64 `yaml:"clear_distance"`
	KillDistance     float64 `yaml:"kill_distance"`
}

// FeedbackConfig holds tint curve parameters.
type FeedbackConfig struct {
	SisterEffectDistance float64 `yaml:"sister_effect_distance"`
	SisterExponent       float64 `yaml:"sister_exponent"`
	SisterColor          string  `yaml:"sister_color"` // Hex
	SisterMaxAlpha       float64 `yaml:"sister_max_alpha"`
	DemonMaxDistance     float64 `yaml:"demon_max_distance"`
	BloodStart           float64 `yaml:"blood_start"`
	BloodExponent        float64 `yaml:"blood_exponent"`
	DarknessExponent     float64 `yaml:"darkness_exponent"`
	BloodColor           string  `yaml:"blood_color"` // Hex
	DarkColor            string  `yaml:"dark_color"`  // Hex
}

// AudioConfig holds positional audio parameters.
type AudioConfig struct {
	Enabled          bool    `yaml:"enabled"`
	SampleRate       int     `yaml:"sample_rate"`
	SisterMaxDist    float64 `yaml:"sister_max_distance"`
	DemonMaxDist     float64 `yaml:"demon_max_distance"`
	CueSources       int     `yaml:"cue_sources"`
	CueFirstDelay    float64 `yaml:"cue_first_delay"` // Seconds after load before the first cue
	CueMinGap        float64 `yaml:"cue_min_gap"`
	CueMaxGap        float64 `yaml:"cue_max_gap"`
	CueDuration      float64 `yaml:"cue_duration"`
	CueFrequency     float64 `yaml:"cue_frequency"`  // Hz of the synthesized sister cue
	DemonFrequency   float64 `yaml:"demon_frequency"` // Hz of the synthesized demon drone
	MusicVolume      float64 `yaml:"music_volume"`
	MusicFrequency   float64 `yaml:"music_frequency"`
}

// ThrottleConfig holds UI propagation rate limits.
type ThrottleConfig struct {
	MinimapInterval float64 `yaml:"minimap_interval"` // Seconds between minimap snapshots
	HintDelta       float64 `yaml:"hint_delta"`       // Minimum distance change to propagate
}

// SpawnConfig holds ring spawn geometry.
type SpawnConfig struct {
	SisterMinRadius float64 `yaml:"sister_min_radius"`
	SisterMaxRadius float64 `yaml:"sister_max_radius"`
	DemonMinRadius  float64 `yaml:"demon_min_radius"`
	DemonMaxRadius  float64 `yaml:"demon_max_radius"`
	Jitter          float64 `yaml:"jitter"` // Angular jitter as a fraction of the slot width
}

// MinigameConfig holds gauge minigame parameters.
type MinigameConfig struct {
	Period      float64 `yaml:"period"` // Seconds per full gauge sweep
	SuccessMin  float64 `yaml:"success_min"`
	SuccessMax  float64 `yaml:"success_max"`
	RevealDelay float64 `yaml:"reveal_delay"` // Seconds between strike and result
}

// RankingConfig holds leaderboard parameters.
type RankingConfig struct {
	Size            int    `yaml:"size"`
	DefaultNickname string `yaml:"default_nickname"`
	MaxNickname     int    `yaml:"max_nickname"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
	PerfLogInterval     float64 `yaml:"perf_log_interval"` // Seconds between perf log lines
}

// SpectateConfig holds the spectator websocket server settings.
type SpectateConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// WindConfig holds the gust field that pushes the snowfall.
type WindConfig struct {
	Strength float64 `yaml:"strength"` // Peak sideways drift in screen widths per second
	Scale    float64 `yaml:"scale"`    // Gust size across the screen (noise units per screen height)
	Period   float64 `yaml:"period"`   // Seconds for a gust to build and fade
}


// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Defaults returns a fresh copy of the embedded defaults.
func Defaults() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate reports every out-of-range value. A bad config is a programming
// error, so callers are expected to stop rather than recover.
func (c *Config) Validate() error {
	var errs []error
	positive := func(name string, v float64) {
		if !(v > 0) {
			errs = append(errs, fmt.Errorf("%s must be > 0, got %v", name, v))
		}
	}

	positive("player.speed", c.Player.Speed)
	positive("player.mouse_sensitivity", c.Player.MouseSensitivity)
	positive("player.touch_multiplier", c.Player.TouchMultiplier)
	if c.Player.FacingLerp <= 0 || c.Player.FacingLerp > 1 {
		errs = append(errs, fmt.Errorf("player.facing_lerp must be in (0,1], got %v", c.Player.FacingLerp))
	}
	if c.Player.SnapSpread < 0 || c.Player.SnapSpread > math.Pi/2 {
		errs = append(errs, fmt.Errorf("player.snap_spread must be in [0,pi/2], got %v", c.Player.SnapSpread))
	}

	for name, w := range map[string]WanderConfig{"sister": c.Sister, "demon": c.Demon} {
		positive(name+".speed", w.Speed)
		positive(name+".redirect_interval", w.RedirectInterval)
		positive(name+".boundary", w.Boundary)
	}

	positive("chase.distance", c.Chase.Distance)
	positive("chase.speed", c.Chase.Speed)
	if c.Chase.Blend <= 0 || c.Chase.Blend > 1 {
		errs = append(errs, fmt.Errorf("chase.blend must be in (0,1], got %v", c.Chase.Blend))
	}
	switch c.Chase.BlendMode {
	case "per_tick":
	case "time_scaled":
		positive("chase.blend_rate", c.Chase.BlendRate)
	default:
		errs = append(errs, fmt.Errorf("chase.blend_mode %q unknown", c.Chase.BlendMode))
	}

	positive("proximity.discover_distance", c.Proximity.DiscoverDistance)
	positive("proximity.clear_distance", c.Proximity.ClearDistance)
	positive("proximity.kill_distance", c.Proximity.KillDistance)

	positive("feedback.sister_effect_distance", c.Feedback.SisterEffectDistance)
	positive("feedback.sister_exponent", c.Feedback.SisterExponent)
	positive("feedback.demon_max_distance", c.Feedback.DemonMaxDistance)
	positive("feedback.blood_exponent", c.Feedback.BloodExponent)
	positive("feedback.darkness_exponent", c.Feedback.DarknessExponent)
	if c.Feedback.SisterMaxAlpha < 0 || c.Feedback.SisterMaxAlpha > 1 {
		errs = append(errs, fmt.Errorf("feedback.sister_max_alpha must be in [0,1], got %v", c.Feedback.SisterMaxAlpha))
	}
	if c.Feedback.BloodStart < 0 || c.Feedback.BloodStart >= 1 {
		errs = append(errs, fmt.Errorf("feedback.blood_start must be in [0,1), got %v", c.Feedback.BloodStart))
	}

	positive("audio.sister_max_distance", c.Audio.SisterMaxDist)
	positive("audio.demon_max_distance", c.Audio.DemonMaxDist)
	if c.Audio.CueMinGap < 0 || c.Audio.CueMaxGap < c.Audio.CueMinGap {
		errs = append(errs, fmt.Errorf("audio cue gap range [%v,%v] invalid", c.Audio.CueMinGap, c.Audio.CueMaxGap))
	}
	if c.Audio.Enabled && c.Audio.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("audio.sample_rate must be > 0, got %d", c.Audio.SampleRate))
	}
	if c.Audio.Enabled && c.Audio.CueSources < 1 {
		errs = append(errs, fmt.Errorf("audio.cue_sources must be >= 1, got %d", c.Audio.CueSources))
	}

	positive("throttle.minimap_interval", c.Throttle.MinimapInterval)
	if c.Throttle.HintDelta < 0 {
		errs = append(errs, fmt.Errorf("throttle.hint_delta must be >= 0, got %v", c.Throttle.HintDelta))
	}

	if c.Spawn.SisterMinRadius < 0 || c.Spawn.SisterMaxRadius < c.Spawn.SisterMinRadius {
		errs = append(errs, fmt.Errorf("spawn sister radius range [%v,%v] invalid", c.Spawn.SisterMinRadius, c.Spawn.SisterMaxRadius))
	}
	if c.Spawn.DemonMinRadius < 0 || c.Spawn.DemonMaxRadius < c.Spawn.DemonMinRadius {
		errs = append(errs, fmt.Errorf("spawn demon radius range [%v,%v] invalid", c.Spawn.DemonMinRadius, c.Spawn.DemonMaxRadius))
	}
	if c.World.DemonCount < 1 {
		errs = append(errs, fmt.Errorf("world.demon_count must be >= 1, got %d", c.World.DemonCount))
	}

	positive("minigame.period", c.Minigame.Period)
	if c.Minigame.RevealDelay < 0 {
		errs = append(errs, fmt.Errorf("minigame.reveal_delay must be >= 0, got %v", c.Minigame.RevealDelay))
	}
	if c.Minigame.SuccessMin < 0 || c.Minigame.SuccessMax > 1 || c.Minigame.SuccessMin >= c.Minigame.SuccessMax {
		errs = append(errs, fmt.Errorf("minigame success zone [%v,%v] invalid", c.Minigame.SuccessMin, c.Minigame.SuccessMax))
	}

	if c.Ranking.Size < 1 {
		errs = append(errs, fmt.Errorf("ranking.size must be >= 1, got %d", c.Ranking.Size))
	}

	if c.Telemetry.PerfCollectorWindow < 1 {
		errs = append(errs, fmt.Errorf("telemetry.perf_collector_window must be >= 1, got %d", c.Telemetry.PerfCollectorWindow))
	}
	positive("telemetry.perf_log_interval", c.Telemetry.PerfLogInterval)

	if c.Wind.Strength < 0 {
		errs = append(errs, fmt.Errorf("wind.strength must be >= 0, got %v", c.Wind.Strength))
	}
	positive("wind.scale", c.Wind.Scale)
	positive("wind.period", c.Wind.Period)

	return errors.Join(errs...)
}


// Seconds converts fractional seconds to a Duration.
func Seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Durations of the seconds-valued keys, for the packages that schedule on them.

func (c WanderConfig) RedirectEvery() time.Duration   { return Seconds(c.RedirectInterval) }
func (c ThrottleConfig) MinimapEvery() time.Duration  { return Seconds(c.MinimapInterval) }
func (c MinigameConfig) Sweep() time.Duration         { return Seconds(c.Period) }
func (c MinigameConfig) Reveal() time.Duration        { return Seconds(c.RevealDelay) }
func (c AudioConfig) FirstCue() time.Duration         { return Seconds(c.CueFirstDelay) }
func (c AudioConfig) CueLength() time.Duration        { return Seconds(c.CueDuration) }
func (c TelemetryConfig) PerfLogEvery() time.Duration { return Seconds(c.PerfLogInterval) }

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
