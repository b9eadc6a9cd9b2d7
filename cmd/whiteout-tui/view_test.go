package main

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/whiteout/clock"
	"github.com/pthm-cable/whiteout/config"
	"github.com/pthm-cable/whiteout/game"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestTUI(t *testing.T) (*tui, *clock.Manual) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(80, 24)
	t.Cleanup(screen.Fini)

	clk := clock.NewManual(t0)
	ui, err := newTUI(screen, config.Defaults(), game.Options{
		Seed:   3,
		Clock:  clk,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return ui, clk
}

func row(s tcell.Screen, y int) string {
	w, _ := s.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		r, _, _, _ := s.GetContent(x, y)
		b.WriteRune(r)
	}
	return b.String()
}

func screenHas(s tcell.Screen, text string) bool {
	_, h := s.Size()
	for y := 0; y < h; y++ {
		if strings.Contains(row(s, y), text) {
			return true
		}
	}
	return false
}

func press(ui *tui, k tcell.Key, r rune, now time.Time) {
	ui.handle(tcell.NewEventKey(k, r, tcell.ModNone), now)
}

func TestStartScreen(t *testing.T) {
	ui, _ := newTestTUI(t)
	ui.draw()
	assert.True(t, screenHas(ui.screen, "W H I T E O U T"))
	assert.True(t, screenHas(ui.screen, "No records yet"))
}

func TestEnterStartsRound(t *testing.T) {
	ui, clk := newTestTUI(t)
	press(ui, tcell.KeyEnter, 0, clk.Now())
	require.Equal(t, game.StateLoading, ui.game.State())

	ui.frame(0, clk.Now())
	require.Equal(t, game.StatePlaying, ui.game.State())

	// Field is 80x22, so the player sits at the centre cell.
	r, _, _, _ := ui.screen.GetContent(40, 11)
	assert.Equal(t, '@', r)
	assert.True(t, screenHas(ui.screen, "slain 0/"))
}

func TestInputConsumesOneShots(t *testing.T) {
	ui, clk := newTestTUI(t)
	press(ui, tcell.KeyEnter, 0, clk.Now())
	ui.frame(0, clk.Now())

	now := clk.Now()
	press(ui, tcell.KeyRune, 'w', now)
	press(ui, tcell.KeyRune, 'q', now)
	press(ui, tcell.KeyRune, ' ', now)

	in := ui.input(now)
	assert.True(t, in.Forward)
	assert.Equal(t, -turnStep, in.DragX)
	assert.True(t, in.Strike)

	in = ui.input(now.Add(keyHold / 2))
	assert.True(t, in.Forward, "key still inside its hold window")
	assert.Zero(t, in.DragX)
	assert.False(t, in.Strike)

	in = ui.input(now.Add(keyHold))
	assert.False(t, in.Forward)
}

func TestClearTakesNickname(t *testing.T) {
	ui, clk := newTestTUI(t)
	press(ui, tcell.KeyEnter, 0, clk.Now())
	ui.frame(0, clk.Now())

	npcs := ui.game.Round().NPCs
	npcs.SetPosition(npcs.Sister(), r3.Vec{})
	clk.Advance(2 * time.Second)
	ui.frame(0.016, clk.Now())
	require.Equal(t, game.StateClear, ui.game.State())
	require.True(t, ui.entering)

	// Typing is ignored until the transition has finished.
	press(ui, tcell.KeyRune, 'x', clk.Now())
	assert.Empty(t, ui.nickname)

	clk.Advance(game.TransitionDuration)
	ui.frame(0.016, clk.Now())
	for _, r := range "ann" {
		press(ui, tcell.KeyRune, r, clk.Now())
	}
	press(ui, tcell.KeyBackspace2, 0, clk.Now())
	press(ui, tcell.KeyRune, 'a', clk.Now())
	assert.Equal(t, "ana", string(ui.nickname))

	press(ui, tcell.KeyEnter, 0, clk.Now())
	assert.False(t, ui.entering)
	assert.Equal(t, 1, ui.rank)
	require.Len(t, ui.game.Board().Records(), 1)
	assert.Equal(t, "ana", ui.game.Board().Records()[0].Nickname)

	ui.draw()
	assert.True(t, screenHas(ui.screen, "Rank #1"))

	press(ui, tcell.KeyEnter, 0, clk.Now())
	assert.Equal(t, game.StateStart, ui.game.State())
	assert.Nil(t, ui.nickname)
}

func TestEscapeQuits(t *testing.T) {
	ui, clk := newTestTUI(t)
	press(ui, tcell.KeyEscape, 0, clk.Now())
	assert.True(t, ui.quit)
}

func TestGaugeBar(t *testing.T) {
	tests := []struct {
		name   string
		needle float64
		want   string
	}{
		{"start", 0, "[|---===---]"},
		{"in zone", 0.5, "[----=|=---]"},
		{"end clamps", 1, "[----===--|]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gaugeBar(10, 0.4, 0.7, tt.needle); got != tt.want {
				t.Errorf("gaugeBar = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHeldKeys(t *testing.T) {
	k := newHeldKeys(100 * time.Millisecond)
	assert.False(t, k.Down('w', t0))

	k.Press('w', t0)
	assert.True(t, k.Down('w', t0.Add(99*time.Millisecond)))
	assert.False(t, k.Down('w', t0.Add(100*time.Millisecond)))

	// A repeat extends the hold.
	k.Press('w', t0.Add(80*time.Millisecond))
	assert.True(t, k.Down('w', t0.Add(150*time.Millisecond)))

	k.Clear()
	assert.False(t, k.Down('w', t0.Add(150*time.Millisecond)))
}

func TestSnowGlyphLeansWithWind(t *testing.T) {
	tests := []struct {
		gust float64
		want rune
	}{
		{0, '·'},
		{0.04, '·'},
		{0.08, '\\'},
		{-0.08, '/'},
	}
	for _, tt := range tests {
		if got := snowGlyph(tt.gust, 0.12); got != tt.want {
			t.Errorf("snowGlyph(%v) = %q, want %q", tt.gust, got, tt.want)
		}
	}
}
