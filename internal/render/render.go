package render

import (
	"time"

	"github.com/shopspring/decimal"

	"SpotPrice/internal/cache"
	"SpotPrice/internal/colormap"
	"SpotPrice/internal/model"
)

// Titles shown in the header.
const (
	TitlePrice   = "Hinta nyt:"
	TitleGraph8  = "8H"
	TitleGraph24 = "24H"
	TitleDevice  = "Spot Price"
	UnitText     = "c/kWh"
)

// Capabilities are resolved once from the drawing surface at startup.
type Capabilities struct {
	Text bool // surface can draw labels
}

// Layout holds the screen geometry and graph options.
type Layout struct {
	Width        int
	Height       int
	PastSlots8h  int
	PastSlots24h int
	Subdivisions int            // intermediate curve points per slot
	Location     *time.Location // hour labels only
}

// DefaultLayout fits the 240x135 panel of the stock device.
var DefaultLayout = Layout{
	Width:        240,
	Height:       135,
	PastSlots8h:  2,
	PastSlots24h: 4,
	Subdivisions: 4,
	Location:     time.UTC,
}

// Renderer turns cache contents into frames. It holds no per-frame state.
type Renderer struct {
	Layout     Layout
	Thresholds colormap.Thresholds
	Graph      colormap.GraphThresholds
	Caps       Capabilities
}

// NewRenderer creates a renderer.
func NewRenderer(layout Layout, th colormap.Thresholds, gth colormap.GraphThresholds, caps Capabilities) *Renderer {
	if layout.Location == nil {
		layout.Location = time.UTC
	}
	if layout.Subdivisions < 1 {
		layout.Subdivisions = 1
	}
	return &Renderer{Layout: layout, Thresholds: th, Graph: gth, Caps: caps}
}

// Render builds the frame for mode at now. The caller passes one cache
// handle for the whole pass.
func (r *Renderer) Render(c *cache.Cache, now time.Time, mode model.ViewMode, stale bool) model.Frame {
	if mode == model.ViewPrice {
		return r.renderPrice(c, now, stale)
	}
	return r.renderGraph(c, now, mode, stale)
}

// Status builds a text-only frame.
func (r *Renderer) Status(title, text string, stale bool) model.Frame {
	return model.Frame{
		Kind:       model.FrameStatus,
		Title:      title,
		Text:       text,
		Background: colormap.Black,
		Foreground: colormap.White,
		Stale:      stale,
	}
}

func (r *Renderer) renderPrice(c *cache.Cache, now time.Time, stale bool) model.Frame {
	s, ok := c.Lookup(now)
	if !ok {
		f := r.Status(TitlePrice, "No data", stale)
		f.Mode = model.ViewPrice
		return f
	}
	sw := colormap.Single(s.Float(), r.Thresholds)
	return model.Frame{
		Kind:       model.FramePrice,
		Mode:       model.ViewPrice,
		Title:      TitlePrice,
		Text:       FormatPrice(s.Price),
		Unit:       UnitText,
		Background: sw.Background,
		Foreground: sw.Foreground,
		Stale:      stale,
	}
}

// FormatPrice shows one decimal with a "c" suffix above 1 c/kWh, two
// decimals otherwise.
func FormatPrice(p decimal.Decimal) string {
	if p.GreaterThan(decimal.NewFromInt(1)) {
		return p.StringFixed(1) + "c"
	}
	return p.StringFixed(2)
}
