package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Renderer handles all UI drawing with consistent styling.
type Renderer struct {
	Theme Theme
}

// NewRenderer creates a renderer with the default theme.
func NewRenderer() *Renderer {
	return &Renderer{Theme: DefaultTheme()}
}

// DrawPanel draws a panel background with border.
func (r *Renderer) DrawPanel(x, y, width, height int32) {
	rl.DrawRectangle(x, y, width, height, r.Theme.PanelBg)
	rl.DrawRectangleLines(x, y, width, height, r.Theme.PanelBorder)
}

// DrawSectionHeader draws a section header and returns the new Y position.
func (r *Renderer) DrawSectionHeader(x, y int32, title string) int32 {
	rl.DrawText(title, x, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
	return y + r.Theme.LineHeight + 4
}

// DrawLabelValue draws a label and value on the same line.
func (r *Renderer) DrawLabelValue(x, y int32, label, value string) int32 {
	rl.DrawText(label, x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawText(value, x+r.Theme.LabelWidth, y, r.Theme.FontSize, r.Theme.ValueColor)
	return y + r.Theme.LineHeight
}

// DrawCenteredText draws text horizontally centered on cx.
func (r *Renderer) DrawCenteredText(text string, cx, y, size int32, color rl.Color) {
	w := rl.MeasureText(text, size)
	rl.DrawText(text, cx-w/2, y, size, color)
}

// DrawBar draws a progress bar for [0, 1] values with a percentage label.
func (r *Renderer) DrawBar(x, y, width int32, value float32) int32 {
	value = clamp01(value)

	rl.DrawRectangle(x, y, width, r.Theme.BarHeight, r.Theme.BarBg)
	rl.DrawRectangle(x, y, int32(float32(width)*value), r.Theme.BarHeight, r.Theme.BarFill)
	rl.DrawRectangleLines(x, y, width, r.Theme.BarHeight, r.Theme.PanelBorder)

	r.DrawCenteredText(fmt.Sprintf("%d%%", int(value*100)), x+width/2, y+r.Theme.BarHeight+6, r.Theme.FontSize, r.Theme.ValueColor)
	return y + r.Theme.BarHeight + r.Theme.LineHeight + 6
}

// DrawGauge draws the strike gauge: the success zone over the track and the
// needle at its position, all in [0, 1].
func (r *Renderer) DrawGauge(x, y, width, height int32, zoneMin, zoneMax, needle float32) {
	rl.DrawRectangle(x, y, width, height, r.Theme.BarBg)

	zx := x + int32(float32(width)*clamp01(zoneMin))
	zw := int32(float32(width) * (clamp01(zoneMax) - clamp01(zoneMin)))
	rl.DrawRectangle(zx, y, zw, height, r.Theme.ZoneFill)

	nx := x + int32(float32(width)*clamp01(needle))
	rl.DrawRectangle(nx-2, y-6, 4, height+12, r.Theme.Needle)

	rl.DrawRectangleLines(x, y, width, height, r.Theme.PanelBorder)
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
