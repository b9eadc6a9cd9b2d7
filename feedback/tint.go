// Package feedback maps distances to the colour hints and audio levels the
// player perceives. Every function here is pure.
package feedback

import (
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/whiteout/config"
)

// Tint is a full-screen colour overlay. Alpha 0 means no overlay.
type Tint struct {
	Color colorful.Color
	Alpha float64
}

// Visible reports whether the tint should be drawn.
func (t Tint) Visible() bool { return t.Alpha > 0 }

// RGBA returns the tint as 8-bit channels.
func (t Tint) RGBA() (r, g, b, a uint8) {
	r, g, b = t.Color.Clamped().RGB255()
	return r, g, b, uint8(math.Round(clamp01(t.Alpha) * 255))
}

// DemonTint is the radial demon overlay: a redder centre fading to a darker rim.
type DemonTint struct {
	Blood    float64 // 0..1
	Darkness float64 // 0..1
	Center   Tint
	Edge     Tint
}

// Visible reports whether the demon overlay should be drawn.
func (d DemonTint) Visible() bool { return d.Center.Visible() || d.Edge.Visible() }

// Overlay weights for composing the demon gradient.
const (
	centerDarkAlpha  = 0.3
	centerBloodAlpha = 0.45
	edgeDarkAlpha    = 0.85
	edgeBloodAlpha   = 0.1
)

// Palette holds the parsed tint colours.
type Palette struct {
	Sister colorful.Color
	Blood  colorful.Color
	Dark   colorful.Color
}

// ParsePalette decodes the hex colours from the feedback config.
func ParsePalette(cfg config.FeedbackConfig) (Palette, error) {
	var p Palette
	var err error
	if p.Sister, err = colorful.Hex(cfg.SisterColor); err != nil {
		return p, fmt.Errorf("sister_color: %w", err)
	}
	if p.Blood, err = colorful.Hex(cfg.BloodColor); err != nil {
		return p, fmt.Errorf("blood_color: %w", err)
	}
	if p.Dark, err = colorful.Hex(cfg.DarkColor); err != nil {
		return p, fmt.Errorf("dark_color: %w", err)
	}
	return p, nil
}

// Mapper turns distances into overlays using one config and palette.
type Mapper struct {
	cfg     config.FeedbackConfig
	palette Palette
}

// NewMapper validates the palette and returns a mapper.
func NewMapper(cfg config.FeedbackConfig) (*Mapper, error) {
	p, err := ParsePalette(cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing palette: %w", err)
	}
	return &Mapper{cfg: cfg, palette: p}, nil
}

// SisterStrength is the warm-hint intensity: 0 at or beyond the effect
// distance, rising along t^exponent to 1 at contact.
func SisterStrength(distance, effectDistance, exponent float64) float64 {
	if distance >= effectDistance {
		return 0
	}
	t := 1 - math.Max(distance, 0)/effectDistance
	return math.Pow(t, exponent)
}

// BloodCurve returns the blood intensity for proximity t in [0,1].
// Nothing shows until t passes start.
func BloodCurve(t, start, exponent float64) float64 {
	if t <= start {
		return 0
	}
	return math.Pow((t-start)/(1-start), exponent)
}

// Sister returns the warm overlay for the given sister distance.
func (m *Mapper) Sister(distance float64) Tint {
	s := SisterStrength(distance, m.cfg.SisterEffectDistance, m.cfg.SisterExponent)
	if s == 0 {
		return Tint{}
	}
	// Fade from white toward the warm colour as the player closes in.
	c := colorful.Color{R: 1, G: 1, B: 1}.BlendLab(m.palette.Sister, s)
	return Tint{Color: c, Alpha: s * m.cfg.SisterMaxAlpha}
}

// Demon returns the radial overlay for the closest demon distance.
func (m *Mapper) Demon(distance float64) DemonTint {
	if distance >= m.cfg.DemonMaxDistance {
		return DemonTint{}
	}
	t := 1 - math.Min(math.Max(distance, 0)/m.cfg.DemonMaxDistance, 1)
	blood := BloodCurve(t, m.cfg.BloodStart, m.cfg.BloodExponent)
	dark := math.Pow(t, m.cfg.DarknessExponent)

	return DemonTint{
		Blood:    blood,
		Darkness: dark,
		Center: Tint{
			Color: m.palette.Dark.BlendRgb(m.palette.Blood, blood),
			Alpha: clamp01(dark*centerDarkAlpha + blood*centerBloodAlpha),
		},
		Edge: Tint{
			Color: m.palette.Dark,
			Alpha: clamp01(dark*edgeDarkAlpha + blood*edgeBloodAlpha),
		},
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
