package audio

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/gopxl/beep"

	"github.com/pthm-cable/whiteout/clock"
	"github.com/pthm-cable/whiteout/config"
	"github.com/pthm-cable/whiteout/feedback"
)

type fakeOutput struct {
	mu      sync.Mutex
	initErr error
	rate    beep.SampleRate
	played  []beep.Streamer
}

func (f *fakeOutput) Init(rate beep.SampleRate, _ int) error {
	f.rate = rate
	return f.initErr
}
func (f *fakeOutput) Play(s beep.Streamer) { f.played = append(f.played, s) }
func (f *fakeOutput) Lock()                { f.mu.Lock() }
func (f *fakeOutput) Unlock()              { f.mu.Unlock() }

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newLoaded(t *testing.T) (*Player, *fakeOutput, *clock.Scheduler, *clock.Manual) {
	t.Helper()
	cfg := config.Defaults().Audio
	cfg.Enabled = true
	out := &fakeOutput{}
	p := NewPlayer(cfg, out, quiet(), 1)
	if err := p.LoadTask().Run(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	clk := clock.NewManual(t0)
	return p, out, clock.NewScheduler(clk), clk
}

func TestLoadDisabledStaysSilent(t *testing.T) {
	cfg := config.Defaults().Audio
	cfg.Enabled = false
	out := &fakeOutput{}
	p := NewPlayer(cfg, out, quiet(), 1)

	if err := p.LoadTask().Run(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	sched := clock.NewScheduler(clock.NewManual(t0))
	p.Start(sched)
	p.Update(feedback.Spatial{Gain: 1}, feedback.Spatial{Gain: 1})

	if p.Ready() {
		t.Error("disabled player reports ready")
	}
	if sched.Pending() != 0 {
		t.Errorf("pending timers = %d, want 0", sched.Pending())
	}
	if len(out.played) != 0 {
		t.Error("disabled player opened the device")
	}
}

func TestLoadInitFailureIsReported(t *testing.T) {
	out := &fakeOutput{initErr: errors.New("no device")}
	p := NewPlayer(config.Defaults().Audio, out, quiet(), 1)

	err := p.LoadTask().Run(context.Background())
	if err == nil {
		t.Fatal("load succeeded without a device")
	}
	if p.Ready() {
		t.Error("player ready after init failure")
	}

	// Playback calls are still safe.
	sched := clock.NewScheduler(clock.NewManual(t0))
	p.Start(sched)
	p.Stop()
	if sched.Pending() != 0 {
		t.Errorf("pending timers = %d, want 0", sched.Pending())
	}
}

func TestLoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewPlayer(config.Defaults().Audio, &fakeOutput{}, quiet(), 1)
	if err := p.LoadTask().Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("load = %v, want context.Canceled", err)
	}
}

func TestCueLoopTiming(t *testing.T) {
	p, _, sched, clk := newLoaded(t)
	p.Start(sched)

	clk.Advance(499 * time.Millisecond)
	sched.Run()
	if p.Played() != 0 {
		t.Fatalf("cue before first delay: played = %d", p.Played())
	}

	clk.Advance(time.Millisecond)
	sched.Run()
	if p.Played() != 1 {
		t.Fatalf("played = %d after first delay, want 1", p.Played())
	}

	// Next cue lands between duration+min gap and duration+max gap.
	cfg := config.Defaults().Audio
	clk.Advance(config.Seconds(cfg.CueDuration+cfg.CueMinGap) - time.Millisecond)
	sched.Run()
	if p.Played() != 1 {
		t.Fatalf("second cue too early: played = %d", p.Played())
	}
	clk.Advance(config.Seconds(cfg.CueMaxGap-cfg.CueMinGap) + time.Millisecond)
	sched.Run()
	if p.Played() != 2 {
		t.Fatalf("second cue missing: played = %d", p.Played())
	}
}

func TestCueSourcesRotate(t *testing.T) {
	p, _, sched, clk := newLoaded(t)
	p.Start(sched)

	for i := 0; i < 5; i++ {
		clk.Advance(10 * time.Second)
		sched.Run()
	}
	if p.Played() != 5 {
		t.Fatalf("played = %d, want 5", p.Played())
	}
	if want := 5 % len(p.cues); p.next%len(p.cues) != want {
		t.Errorf("next source = %d, want %d", p.next%len(p.cues), want)
	}
	for i, v := range p.cues {
		if v == nil {
			t.Errorf("source %d never played", i)
		}
	}
}

func TestStopSuppressesLateCue(t *testing.T) {
	p, _, sched, clk := newLoaded(t)
	p.Start(sched)
	p.Stop()

	clk.Advance(time.Second)
	sched.Run()
	if p.Played() != 0 {
		t.Errorf("cue played after Stop: %d", p.Played())
	}
	if !p.music.ctrl.Paused {
		t.Error("music still playing after Stop")
	}
}

func TestMusicVolumeWhilePlaying(t *testing.T) {
	p, _, sched, _ := newLoaded(t)
	if !p.music.ctrl.Paused {
		t.Fatal("music playing before Start")
	}
	p.Start(sched)

	want := math.Log2(config.Defaults().Audio.MusicVolume)
	if p.music.ctrl.Paused || p.music.vol.Silent || math.Abs(p.music.vol.Volume-want) > 1e-12 {
		t.Errorf("music paused=%v silent=%v volume=%v, want playing at %v",
			p.music.ctrl.Paused, p.music.vol.Silent, p.music.vol.Volume, want)
	}
}

func TestUpdateFollowsPlacement(t *testing.T) {
	p, _, sched, clk := newLoaded(t)
	p.Start(sched)
	clk.Advance(500 * time.Millisecond)
	sched.Run()

	sister := feedback.Spatial{Gain: 0.5, Pan: -1, Front: 1}
	p.Update(sister, feedback.Spatial{})

	v := p.cues[0]
	if math.Abs(v.vol.Volume-math.Log2(0.5)) > 1e-12 || v.vol.Silent {
		t.Errorf("cue volume = %v silent=%v, want %v", v.vol.Volume, v.vol.Silent, math.Log2(0.5))
	}
	if v.pan.Pan != -1 {
		t.Errorf("cue pan = %v, want -1", v.pan.Pan)
	}
	if !p.drone.vol.Silent {
		t.Error("drone audible with no demon in range")
	}

	p.Update(sister, feedback.Spatial{Gain: 1, Pan: 0.5, Front: -1})
	if p.drone.vol.Silent || math.Abs(p.drone.vol.Volume-math.Log2(0.7)) > 1e-12 {
		t.Errorf("drone volume = %v, want %v (behind)", p.drone.vol.Volume, math.Log2(0.7))
	}
}

func TestMixerProducesSound(t *testing.T) {
	p, out, sched, clk := newLoaded(t)
	if len(out.played) != 1 {
		t.Fatalf("mixer handed to device %d times, want 1", len(out.played))
	}
	p.Start(sched)
	clk.Advance(500 * time.Millisecond)
	sched.Run()
	p.Update(feedback.Spatial{Gain: 1, Front: 1}, feedback.Spatial{})

	buf := make([][2]float64, 512)
	out.Lock()
	n, ok := out.played[0].Stream(buf)
	out.Unlock()
	if !ok || n != len(buf) {
		t.Fatalf("Stream = %d, %v", n, ok)
	}
	var peak float64
	for _, s := range buf {
		peak = math.Max(peak, math.Abs(s[0]))
	}
	if peak == 0 {
		t.Error("mixer output is silent with music and a cue playing")
	}
}

func TestToneLength(t *testing.T) {
	s := newTone(440, 100, 44100)
	buf := make([][2]float64, 64)
	total := 0
	for {
		n, ok := s.Stream(buf)
		total += n
		if !ok {
			break
		}
	}
	if total != 100 {
		t.Errorf("tone produced %d samples, want 100", total)
	}
}

func TestEnvelopeEdgesAreQuiet(t *testing.T) {
	const total = 1000
	s := newEnvelope(newTone(441, total, 44100), total, 100, 100)
	buf := make([][2]float64, total)
	n, _ := s.Stream(buf)
	if n != total {
		t.Fatalf("n = %d, want %d", n, total)
	}
	if buf[0][0] != 0 {
		t.Errorf("first sample = %v, want 0", buf[0][0])
	}
	if math.Abs(buf[total-1][0]) > 0.011 {
		t.Errorf("last sample = %v, want near 0", buf[total-1][0])
	}
}
