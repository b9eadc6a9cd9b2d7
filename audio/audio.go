// Package audio plays the positional sister cue, the demon drone and the
// background music through beep. Everything is synthesized; the only
// device dependency is the speaker, which may fail without stopping play.
package audio

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"

	"github.com/pthm-cable/whiteout/clock"
	"github.com/pthm-cable/whiteout/config"
	"github.com/pthm-cable/whiteout/feedback"
	"github.com/pthm-cable/whiteout/game"
)

// Output is the audio device.
type Output interface {
	Init(rate beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
	Lock()
	Unlock()
}

type speakerOutput struct{}

func (speakerOutput) Init(rate beep.SampleRate, n int) error { return speaker.Init(rate, n) }
func (speakerOutput) Play(s beep.Streamer)                   { speaker.Play(s) }
func (speakerOutput) Lock()                                  { speaker.Lock() }
func (speakerOutput) Unlock()                                { speaker.Unlock() }

// Speaker returns the system audio device.
func Speaker() Output { return speakerOutput{} }

// voice is one mixer input with its own gain and pan.
type voice struct {
	ctrl *beep.Ctrl
	vol  *effects.Volume
	pan  *effects.Pan
}

func newVoice(s beep.Streamer) *voice {
	pan := &effects.Pan{Streamer: s}
	vol := &effects.Volume{Streamer: pan, Base: 2, Silent: true}
	return &voice{ctrl: &beep.Ctrl{Streamer: vol, Paused: true}, vol: vol, pan: pan}
}

// set applies a linear gain and a pan in [-1,1]. Must hold the output lock.
func (v *voice) set(gain, pan float64) {
	if gain <= 0 {
		v.vol.Silent = true
		v.vol.Volume = 0
	} else {
		v.vol.Silent = false
		v.vol.Volume = math.Log2(gain)
	}
	v.pan.Pan = math.Max(-1, math.Min(1, pan))
}

// positional folds the front/back cue into the distance gain: sources
// behind the listener lose up to 30%.
func positional(s feedback.Spatial) float64 {
	return s.Gain * (0.85 + 0.15*s.Front)
}

// Player implements game.Audio.
type Player struct {
	cfg    config.AudioConfig
	rate   beep.SampleRate
	out    Output
	logger *slog.Logger
	rng    *rand.Rand

	ready atomic.Bool

	// Built by load before ready is set; mutated under the output lock.
	mixer *beep.Mixer
	cue   *beep.Buffer
	music *voice
	drone *voice
	cues  []*voice

	// Tick side.
	sched   *clock.Scheduler
	playing bool
	next    int
	sister  feedback.Spatial
	played  int
}

// NewPlayer creates a player writing to out. Nothing is touched until the
// load task runs.
func NewPlayer(cfg config.AudioConfig, out Output, logger *slog.Logger, seed int64) *Player {
	if logger == nil {
		logger = slog.Default()
	}
	return &Player{
		cfg:    cfg,
		rate:   beep.SampleRate(cfg.SampleRate),
		out:    out,
		logger: logger,
		rng:    rand.New(rand.NewSource(seed)),
		cues:   make([]*voice, max(cfg.CueSources, 1)),
	}
}

// LoadTask opens the device and synthesizes the cue buffer.
func (p *Player) LoadTask() game.LoadTask {
	return game.LoadTask{Name: "audio", Run: p.load}
}

func (p *Player) load(ctx context.Context) error {
	if !p.cfg.Enabled {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := p.out.Init(p.rate, p.rate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}

	format := beep.Format{SampleRate: p.rate, NumChannels: 2, Precision: 2}
	cueLen := p.cfg.CueLength()
	p.cue = beep.NewBuffer(format)
	p.cue.Append(newEnvelope(
		newTone(p.cfg.CueFrequency, p.rate.N(cueLen), p.rate),
		p.rate.N(cueLen), p.rate.N(20*time.Millisecond), p.rate.N(cueLen/2),
	))

	p.music = newVoice(beep.Mix(
		newTone(p.cfg.MusicFrequency, -1, p.rate),
		newTone(p.cfg.MusicFrequency*1.5, -1, p.rate),
	))
	p.drone = newVoice(newTone(p.cfg.DemonFrequency, -1, p.rate))
	p.mixer = &beep.Mixer{}
	p.mixer.Add(p.music.ctrl, p.drone.ctrl)
	p.out.Play(p.mixer)

	p.ready.Store(true)
	p.logger.Debug("audio ready", "sample_rate", p.cfg.SampleRate, "cue_samples", p.cue.Len())
	return nil
}

// Ready reports whether the device is open.
func (p *Player) Ready() bool { return p.ready.Load() }

// Played returns how many sister cues have started.
func (p *Player) Played() int { return p.played }

// Start unpauses the music and schedules the first cue.
func (p *Player) Start(sched *clock.Scheduler) {
	p.sched = sched
	p.playing = true
	if !p.Ready() {
		return
	}

	p.out.Lock()
	p.music.set(p.cfg.MusicVolume, 0)
	p.music.ctrl.Paused = false
	p.drone.set(0, 0)
	p.drone.ctrl.Paused = false
	p.out.Unlock()

	sched.After(p.cfg.FirstCue(), p.playCue)
}

// Stop silences everything. Pending cue timers are left to the scheduler's
// owner to cancel; a cue that still fires after Stop does nothing.
func (p *Player) Stop() {
	p.playing = false
	if !p.Ready() {
		return
	}

	p.out.Lock()
	p.music.ctrl.Paused = true
	p.drone.ctrl.Paused = true
	for i, v := range p.cues {
		if v != nil {
			v.ctrl.Streamer = nil
			p.cues[i] = nil
		}
	}
	p.out.Unlock()
}

// Update moves the playing cues and the drone to the latest placements.
func (p *Player) Update(sister, demon feedback.Spatial) {
	p.sister = sister
	if !p.playing || !p.Ready() {
		return
	}

	p.out.Lock()
	for _, v := range p.cues {
		if v != nil {
			v.set(positional(sister), sister.Pan)
		}
	}
	p.drone.set(positional(demon), demon.Pan)
	p.out.Unlock()
}

// playCue starts the next source and schedules the one after it once this
// cue has ended plus a random gap.
func (p *Player) playCue() {
	if !p.playing || !p.Ready() {
		return
	}

	source := p.next % len(p.cues)
	p.next++
	v := newVoice(p.cue.Streamer(0, p.cue.Len()))

	p.out.Lock()
	v.set(positional(p.sister), p.sister.Pan)
	v.ctrl.Paused = false
	if old := p.cues[source]; old != nil {
		old.ctrl.Streamer = nil
	}
	p.cues[source] = v
	p.mixer.Add(v.ctrl)
	p.out.Unlock()

	p.played++
	gap := p.cfg.CueMinGap + p.rng.Float64()*(p.cfg.CueMaxGap-p.cfg.CueMinGap)
	p.sched.After(config.Seconds(p.cfg.CueDuration+gap), p.playCue)
}
