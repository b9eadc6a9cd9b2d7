package throttle

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/whiteout/config"
)

type recorder struct {
	minimaps []Minimap
	sister   []float64
	demon    []float64
	moving   []bool
}

func (r *recorder) Minimap(m Minimap)    { r.minimaps = append(r.minimaps, m) }
func (r *recorder) SisterHint(d float64) { r.sister = append(r.sister, d) }
func (r *recorder) DemonHint(d float64)  { r.demon = append(r.demon, d) }
func (r *recorder) Moving(m bool)        { r.moving = append(r.moving, m) }

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newThrottle() (*Throttle, *recorder) {
	rec := &recorder{}
	return New(config.Defaults().Throttle, rec), rec
}

func TestMinimapBurstWithinInterval(t *testing.T) {
	th, rec := newThrottle()
	// 20 updates inside 50ms: at most one snapshot.
	for i := 0; i < 20; i++ {
		th.OfferMinimap(Minimap{At: t0.Add(time.Duration(i) * 2500 * time.Microsecond)})
	}
	assert.LessOrEqual(t, len(rec.minimaps), 1)
}

func TestMinimapRate(t *testing.T) {
	th, rec := newThrottle()
	// 60Hz for one second.
	for i := 0; i < 60; i++ {
		th.OfferMinimap(Minimap{At: t0.Add(time.Duration(i) * time.Second / 60), Player: r3.Vec{X: float64(i)}})
	}
	assert.LessOrEqual(t, len(rec.minimaps), 10)
	assert.GreaterOrEqual(t, len(rec.minimaps), 9)
	for i := 1; i < len(rec.minimaps); i++ {
		gap := rec.minimaps[i].At.Sub(rec.minimaps[i-1].At)
		assert.GreaterOrEqual(t, gap, 100*time.Millisecond)
	}
}

func TestMinimapFlushSendsLatest(t *testing.T) {
	th, rec := newThrottle()
	th.OfferMinimap(Minimap{At: t0, Player: r3.Vec{X: 1}})
	th.OfferMinimap(Minimap{At: t0.Add(10 * time.Millisecond), Player: r3.Vec{X: 2}})
	th.OfferMinimap(Minimap{At: t0.Add(20 * time.Millisecond), Player: r3.Vec{X: 3}})
	require.Len(t, rec.minimaps, 1)

	require.True(t, th.Flush())
	require.Len(t, rec.minimaps, 2)
	assert.Equal(t, 3.0, rec.minimaps[1].Player.X)
	assert.False(t, th.Flush())
}

func TestMinimapCopiesDemons(t *testing.T) {
	th, rec := newThrottle()
	demons := []DemonMarker{{ID: 0, Position: r3.Vec{X: 1}}}
	th.OfferMinimap(Minimap{At: t0, Demons: demons})
	demons[0].Position.X = 99
	assert.Equal(t, 1.0, rec.minimaps[0].Demons[0].Position.X)
}

func TestHintDelta(t *testing.T) {
	th, rec := newThrottle()
	inf := math.Inf(1)

	th.OfferHints(40, inf)
	th.OfferHints(39.8, inf) // 0.2 change: held back
	th.OfferHints(39.7, inf) // exactly 0.3 from 40: held back
	th.OfferHints(39.6, 14)  // 0.4 from 40: sent; demon appears
	th.OfferHints(39.6, inf) // demon gone

	assert.Equal(t, []float64{40, 39.6}, rec.sister)
	require.Len(t, rec.demon, 3)
	assert.True(t, math.IsInf(rec.demon[0], 1))
	assert.Equal(t, 14.0, rec.demon[1])
	assert.True(t, math.IsInf(rec.demon[2], 1))
}

func TestMovingEdgeTriggered(t *testing.T) {
	th, rec := newThrottle()
	for _, m := range []bool{false, false, true, true, true, false, false, true} {
		th.OfferMoving(m)
	}
	assert.Equal(t, []bool{false, true, false, true}, rec.moving)

	st := th.Stats()
	assert.Equal(t, 8, st.MovingOffered)
	assert.Equal(t, 4, st.MovingSent)
}

func TestResetLetsValuesThrough(t *testing.T) {
	th, rec := newThrottle()
	th.OfferMoving(true)
	th.OfferHints(10, 10)
	th.OfferMinimap(Minimap{At: t0})

	th.Reset()
	th.OfferMoving(true)
	th.OfferHints(10, 10)
	th.OfferMinimap(Minimap{At: t0.Add(time.Millisecond)})

	assert.Len(t, rec.moving, 2)
	assert.Len(t, rec.sister, 2)
	assert.Len(t, rec.minimaps, 2)
}

func TestMultiFansOut(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	th := New(config.ThrottleConfig{MinimapInterval: 0.1, HintDelta: 0.3}, Multi{a, b, Discard{}})

	th.OfferMinimap(Minimap{At: time.Unix(0, 0)})
	th.OfferHints(4, 9)
	th.OfferMoving(true)

	for _, r := range []*recorder{a, b} {
		assert.Len(t, r.minimaps, 1)
		assert.Equal(t, []float64{4}, r.sister)
		assert.Equal(t, []float64{9}, r.demon)
		assert.Equal(t, []bool{true}, r.moving)
	}
}

func TestLatestKeepsMostRecent(t *testing.T) {
	l := NewLatest()
	require.True(t, math.IsInf(l.SisterDistance(), 1))
	require.True(t, math.IsInf(l.DemonDistance(), 1))
	_, ok := l.Snapshot()
	require.False(t, ok)

	l.SisterHint(12)
	l.SisterHint(9)
	l.DemonHint(30)
	l.Moving(true)
	l.Minimap(Minimap{At: t0, Player: r3.Vec{X: 1}})

	assert.Equal(t, 9.0, l.SisterDistance())
	assert.Equal(t, 30.0, l.DemonDistance())
	assert.True(t, l.IsMoving())
	snap, ok := l.Snapshot()
	assert.True(t, ok)
	assert.Equal(t, 1.0, snap.Player.X)

	l.Reset()
	_, ok = l.Snapshot()
	assert.False(t, ok)
	assert.False(t, l.IsMoving())
	assert.True(t, math.IsInf(l.SisterDistance(), 1))
}
