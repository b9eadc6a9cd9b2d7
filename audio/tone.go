package audio

import (
	"math"

	"github.com/gopxl/beep"
)

// tone is a sine oscillator. A negative length runs forever.
type tone struct {
	freq   float64
	phase  float64
	length int
	pos    int
	rate   beep.SampleRate
}

func newTone(freq float64, length int, rate beep.SampleRate) beep.Streamer {
	return &tone{freq: freq, length: length, rate: rate}
}

func (t *tone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if t.length >= 0 && t.pos >= t.length {
			return i, i > 0
		}
		v := math.Sin(2 * math.Pi * t.phase)
		samples[i][0] = v
		samples[i][1] = v

		t.phase += t.freq / float64(t.rate)
		t.phase -= math.Floor(t.phase)
		t.pos++
	}
	return len(samples), true
}

func (t *tone) Err() error { return nil }

// envelope shapes a stream with a linear attack and release.
type envelope struct {
	streamer beep.Streamer
	pos      int
	total    int
	attack   int
	release  int
}

func newEnvelope(s beep.Streamer, total, attack, release int) beep.Streamer {
	return &envelope{streamer: s, total: total, attack: attack, release: release}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		if e.pos >= e.total {
			return i, i > 0
		}
		vol := 1.0
		if e.attack > 0 && e.pos < e.attack {
			vol = float64(e.pos) / float64(e.attack)
		}
		if remaining := e.total - e.pos; e.release > 0 && remaining < e.release {
			vol = math.Min(vol, float64(remaining)/float64(e.release))
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.pos++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }
