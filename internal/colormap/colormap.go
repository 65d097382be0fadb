package colormap

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Display palette.
var (
	Black      = color.RGBA{0x00, 0x00, 0x00, 0xFF}
	White      = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	Green      = color.RGBA{0x00, 0xFF, 0x00, 0xFF}
	LightGreen = color.RGBA{0x66, 0xFF, 0x66, 0xFF}
	Yellow     = color.RGBA{0xFF, 0xFF, 0x00, 0xFF}
	Orange     = color.RGBA{0xFF, 0x88, 0x00, 0xFF}
	Red        = color.RGBA{0xFF, 0x00, 0x00, 0xFF}
	Blue       = color.RGBA{0x00, 0x00, 0xFF, 0xFF}
	Accent     = color.RGBA{0x00, 0xFF, 0x88, 0xFF}
	Gray       = color.RGBA{0x88, 0x88, 0x88, 0xFF}
)

// Band is a price interval mapped to one background color family.
type Band int

const (
	BandNegative Band = iota
	BandVeryLow
	BandLow
	BandMedium
	BandHigh
	BandMax
)

func (b Band) String() string {
	switch b {
	case BandNegative:
		return "negative"
	case BandVeryLow:
		return "very-low"
	case BandLow:
		return "low"
	case BandMedium:
		return "medium"
	case BandHigh:
		return "high"
	case BandMax:
		return "max"
	default:
		return "unknown"
	}
}

// Thresholds for the single-price background, cents/kWh. Low < Med < High < Max.
type Thresholds struct {
	Low  float64 `yaml:"low"`
	Med  float64 `yaml:"med"`
	High float64 `yaml:"high"`
	Max  float64 `yaml:"max"`
}

// DefaultThresholds match the stock device.
var DefaultThresholds = Thresholds{Low: 1, Med: 3, High: 8, Max: 13}

// Validate checks the ordering.
func (t Thresholds) Validate() error {
	if !(t.Low < t.Med && t.Med < t.High && t.High < t.Max) {
		return fmt.Errorf("thresholds must satisfy low < med < high < max, got %v/%v/%v/%v", t.Low, t.Med, t.High, t.Max)
	}
	if t.Low < 0 {
		return fmt.Errorf("low threshold must not be negative, got %v", t.Low)
	}
	return nil
}

// Swatch is the result of the single-price mapping.
type Swatch struct {
	Band       Band
	Background color.RGBA
	Foreground color.RGBA
}

// Single maps a price to a background and a readable text color.
func Single(p float64, t Thresholds) Swatch {
	var band Band
	var bg color.RGBA
	switch {
	case p < 0:
		band, bg = BandNegative, Blue
	case p < t.Low:
		band, bg = BandVeryLow, Green
	case p < t.Med:
		band, bg = BandLow, LightGreen
	case p < t.High:
		band, bg = BandMedium, blend(Yellow, Orange, fraction(p, t.Med, t.High))
	case p < t.Max:
		band, bg = BandHigh, blend(Orange, Red, fraction(p, t.High, t.Max))
	default:
		band, bg = BandMax, Red
	}
	return Swatch{Band: band, Background: bg, Foreground: contrast(bg)}
}

// GraphThresholds split the graph curve into green, yellow and red.
type GraphThresholds struct {
	Low       float64 `yaml:"low"`
	High      float64 `yaml:"high"`
	FillRatio float64 `yaml:"fill_ratio"`
}

// DefaultGraphThresholds match the stock device.
var DefaultGraphThresholds = GraphThresholds{Low: 3, High: 8, FillRatio: 0.2}

// Validate checks the ordering and the fill ratio range.
func (g GraphThresholds) Validate() error {
	if g.Low >= g.High {
		return fmt.Errorf("graph thresholds must satisfy low < high, got %v/%v", g.Low, g.High)
	}
	if g.FillRatio <= 0 || g.FillRatio > 1 {
		return fmt.Errorf("fill ratio must be in (0, 1], got %v", g.FillRatio)
	}
	return nil
}

// Graph returns the curve color for a price and its darkened fill.
func Graph(p float64, g GraphThresholds) (line, fill color.RGBA) {
	switch {
	case p < g.Low:
		line = Green
	case p < g.High:
		line = Yellow
	default:
		line = Red
	}
	return line, Darken(line, g.FillRatio)
}

// Darken scales each channel by ratio.
func Darken(c color.RGBA, ratio float64) color.RGBA {
	cf := toColorful(c)
	return toRGBA(colorful.Color{R: cf.R * ratio, G: cf.G * ratio, B: cf.B * ratio}.Clamped())
}

func fraction(p, lo, hi float64) float64 {
	f := (p - lo) / (hi - lo)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func blend(from, to color.RGBA, t float64) color.RGBA {
	return toRGBA(toColorful(from).BlendRgb(toColorful(to), t).Clamped())
}

// contrast picks black or white text by relative luminance.
func contrast(bg color.RGBA) color.RGBA {
	r, g, b := toColorful(bg).LinearRgb()
	if 0.2126*r+0.7152*g+0.0722*b < 0.3 {
		return White
	}
	return Black
}

func toColorful(c color.RGBA) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.RGB255()
	return color.RGBA{r, g, b, 0xFF}
}
