package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/whiteout/clock"
	"github.com/pthm-cable/whiteout/ranking"
)

// HUDData holds the per-frame values the HUD shows besides the clock.
type HUDData struct {
	Discovered   bool
	Kills        int
	Demons       int
	FPS          int32
	ShowFPS      bool
	ScreenWidth  int32
	ScreenHeight int32
}

// HUD renders the in-round heads-up display. The clock text only changes
// when the elapsed observable publishes a new whole second.
type HUD struct {
	renderer    *Renderer
	seconds     int
	clockText   string
	unsubscribe func()
}

// NewHUD creates a HUD listening to elapsed.
func NewHUD(r *Renderer, elapsed *clock.Elapsed) *HUD {
	h := &HUD{renderer: r}
	h.setSeconds(elapsed.Whole())
	h.unsubscribe = elapsed.Subscribe(h.setSeconds)
	return h
}

func (h *HUD) setSeconds(s int) {
	h.seconds = s
	h.clockText = ranking.FormatClock(float64(s))
}

// Seconds returns the last whole second shown.
func (h *HUD) Seconds() int { return h.seconds }

// Close stops listening to the elapsed observable.
func (h *HUD) Close() {
	if h.unsubscribe != nil {
		h.unsubscribe()
		h.unsubscribe = nil
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	t := h.renderer.Theme

	h.renderer.DrawCenteredText(h.clockText, data.ScreenWidth/2, t.Padding, 28, t.ValueColor)

	status := "Find your sister"
	color := t.LabelColor
	if data.Discovered {
		status = "She is close"
		color = t.SisterColor
	}
	rl.DrawText(status, t.Padding, t.Padding, t.FontSize, color)
	rl.DrawText(fmt.Sprintf("Demons slain: %d/%d", data.Kills, data.Demons), t.Padding, t.Padding+t.LineHeight, t.FontSize, t.LabelColor)

	if data.ShowFPS {
		rl.DrawText(fmt.Sprintf("FPS: %d", data.FPS), t.Padding, data.ScreenHeight-t.LineHeight-t.Padding, 12, rl.Gray)
	}
}

// DrawGauge renders the strike minigame panel in the lower middle.
func (h *HUD) DrawGauge(screenW, screenH int32, zoneMin, zoneMax, needle float64, result string) {
	r := h.renderer
	t := r.Theme
	const w, ph = int32(420), int32(110)
	x, y := AnchorCenter.Place(screenW, screenH, w, ph, 0)
	y += screenH / 4

	r.DrawPanel(x, y, w, ph)
	r.DrawCenteredText("STRIKE!", x+w/2, y+t.Padding, t.HeaderFontSize, t.DemonColor)
	r.DrawGauge(x+2*t.Padding, y+45, w-4*t.Padding, 24, float32(zoneMin), float32(zoneMax), float32(needle))
	r.DrawCenteredText(result, x+w/2, y+ph-t.LineHeight-4, t.FontSize, t.LabelColor)
}

// DrawLoading renders the loading bar.
func (h *HUD) DrawLoading(screenW, screenH int32, percent int) {
	r := h.renderer
	const w = int32(360)
	x, y := AnchorCenter.Place(screenW, screenH, w, r.Theme.BarHeight, 0)
	r.DrawCenteredText("Loading", screenW/2, y-40, r.Theme.HeaderFontSize, r.Theme.ValueColor)
	r.DrawBar(x, y, w, float32(max(percent, 0))/100)
}

// DrawRankings renders the leaderboard panel and returns its bottom edge.
// highlight is the 1-based rank to mark, or -1.
func (h *HUD) DrawRankings(x, y, width int32, records []ranking.Record, highlight int) int32 {
	r := h.renderer
	t := r.Theme
	height := t.Padding*2 + t.LineHeight + 4 + t.LineHeight*int32(max(len(records), 1))
	r.DrawPanel(x, y, width, height)

	cy := r.DrawSectionHeader(x+t.Padding, y+t.Padding, "Rankings")
	if len(records) == 0 {
		rl.DrawText("No records yet", x+t.Padding, cy, t.FontSize, t.LabelColor)
		return y + height
	}
	for i, rec := range records {
		color := t.ValueColor
		if i+1 == highlight {
			color = t.SectionHeader
		}
		rl.DrawText(fmt.Sprintf("%2d. %s", i+1, rec.Nickname), x+t.Padding, cy, t.FontSize, color)
		text := ranking.FormatPrecise(rec.Time)
		rl.DrawText(text, x+width-t.Padding-rl.MeasureText(text, t.FontSize), cy, t.FontSize, color)
		cy += t.LineHeight
	}
	return y + height
}
