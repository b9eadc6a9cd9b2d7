// Package ui is the raylib frontend. It decodes device input for the game,
// draws the snowfield from the player's camera and shows the throttled hints
// as screen overlays, the minimap, the HUD and the menu screens.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// PanelAnchor specifies where a panel is anchored on screen.
type PanelAnchor int

const (
	AnchorTopLeft PanelAnchor = iota
	AnchorTopRight
	AnchorBottomLeft
	AnchorBottomRight
	AnchorCenter
)

// Place returns the top-left corner of a w×h panel anchored inside the
// screen with the given margin.
func (a PanelAnchor) Place(screenW, screenH, w, h, margin int32) (x, y int32) {
	switch a {
	case AnchorTopRight:
		return screenW - w - margin, margin
	case AnchorBottomLeft:
		return margin, screenH - h - margin
	case AnchorBottomRight:
		return screenW - w - margin, screenH - h - margin
	case AnchorCenter:
		return (screenW - w) / 2, (screenH - h) / 2
	}
	return margin, margin
}

// Theme holds UI styling constants.
type Theme struct {
	Snow           rl.Color
	PanelBg        rl.Color
	PanelBorder    rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	BarBg          rl.Color
	BarFill        rl.Color
	ZoneFill       rl.Color
	Needle         rl.Color
	PlayerColor    rl.Color
	SisterColor    rl.Color
	DemonColor     rl.Color
	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	BarHeight      int32
	FontSize       int32
	HeaderFontSize int32
	TitleFontSize  int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		Snow:           rl.Color{R: 232, G: 236, B: 242, A: 255},
		PanelBg:        rl.Color{R: 20, G: 25, B: 30, A: 220},
		PanelBorder:    rl.Color{R: 60, G: 70, B: 80, A: 255},
		SectionHeader:  rl.Yellow,
		LabelColor:     rl.LightGray,
		ValueColor:     rl.RayWhite,
		BarBg:          rl.Color{R: 40, G: 40, B: 40, A: 255},
		BarFill:        rl.Color{R: 100, G: 150, B: 200, A: 255},
		ZoneFill:       rl.Color{R: 100, G: 200, B: 100, A: 255},
		Needle:         rl.RayWhite,
		PlayerColor:    rl.Color{R: 40, G: 60, B: 90, A: 255},
		SisterColor:    rl.Color{R: 230, G: 140, B: 60, A: 255},
		DemonColor:     rl.Color{R: 150, G: 20, B: 30, A: 255},
		Padding:        10,
		LineHeight:     20,
		LabelWidth:     90,
		BarHeight:      16,
		FontSize:       16,
		HeaderFontSize: 18,
		TitleFontSize:  48,
	}
}
