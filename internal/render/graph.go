package render

import (
	"fmt"
	"math"
	"time"

	"SpotPrice/internal/cache"
	"SpotPrice/internal/calculator"
	"SpotPrice/internal/colormap"
	"SpotPrice/internal/model"
	"SpotPrice/internal/slot"
)

// Plot margins leave room for the title bar and the hour labels.
const (
	marginLeft   = 8
	marginRight  = 8
	marginTop    = 28
	marginBottom = 22

	minSpan    = 1.0
	padPercent = 0.1

	tickClearance = 16.0
)

type scale struct {
	lo, hi      float64
	top, bottom float64
}

func (s scale) y(p float64) float64 {
	y := s.bottom - (p-s.lo)/(s.hi-s.lo)*(s.bottom-s.top)
	return math.Max(s.top, math.Min(s.bottom, y))
}

func (r *Renderer) pastSlots(mode model.ViewMode) int {
	if mode == model.ViewGraph24h {
		return r.Layout.PastSlots24h
	}
	return r.Layout.PastSlots8h
}

func (r *Renderer) renderGraph(c *cache.Cache, now time.Time, mode model.ViewMode, stale bool) model.Frame {
	title := TitleGraph8
	if mode == model.ViewGraph24h {
		title = TitleGraph24
	}

	n := mode.Slots()
	first := slot.IndexOf(now) - slot.Index(r.pastSlots(mode))
	entries := c.Slice(first, n)

	lo, hi, known, err := calculator.WindowRange(entries)
	if err != nil {
		f := r.Status(title, "No data", stale)
		f.Mode = mode
		return f
	}

	left := float64(marginLeft)
	right := float64(r.Layout.Width - marginRight)
	top := float64(marginTop)
	bottom := float64(r.Layout.Height - marginBottom)
	slotW := (right - left) / float64(n)
	sc := windowScale(lo, hi, top, bottom)

	g := &model.Graph{
		Width:    r.Layout.Width,
		Height:   r.Layout.Height,
		Left:     left,
		Right:    right,
		Top:      top,
		Bottom:   bottom,
		MinPrice: lo,
		MaxPrice: hi,
		Known:    known,
		Slots:    n,
	}
	g.Segments = r.segments(entries, sc, left, slotW)
	g.Marker = marker(entries, sc, left, slotW, now, first)

	if r.Caps.Text {
		g.MinLabel = fmt.Sprintf("%.1f", lo)
		g.MaxLabel = fmt.Sprintf("%.1f", hi)
		g.Ticks = r.ticks(mode, first, n, left, slotW, g.Marker.X)
	}

	return model.Frame{
		Kind:       model.FrameGraph,
		Mode:       mode,
		Title:      title,
		Background: colormap.Black,
		Foreground: colormap.White,
		Stale:      stale,
		Graph:      g,
	}
}

// windowScale pads the visible range by 10% with a minimum span. The lower
// bound stays at or above zero unless a visible price is negative.
func windowScale(lo, hi, top, bottom float64) scale {
	span := math.Max(hi-lo, minSpan)
	pad := span * padPercent
	dlo := lo - pad
	if lo >= 0 && dlo < 0 {
		dlo = 0
	}
	dhi := hi + pad
	if dhi-dlo < minSpan {
		dhi = dlo + minSpan
	}
	return scale{lo: dlo, hi: dhi, top: top, bottom: bottom}
}

// segments builds one polyline per run of known slots. Slot i spans
// [x_i, x_i+slotW). Points inside that span take slot i's colors, so band
// changes land exactly on slot boundaries.
func (r *Renderer) segments(entries []*model.PriceSlot, sc scale, left, slotW float64) [][]model.Point {
	var segs [][]model.Point
	var cur []model.Point
	steps := r.Layout.Subdivisions

	for i, e := range entries {
		if e == nil {
			if len(cur) > 0 {
				segs = append(segs, cur)
				cur = nil
			}
			continue
		}
		p := e.Float()
		line, fill := colormap.Graph(p, r.Graph)
		x0 := left + float64(i)*slotW
		y0 := sc.y(p)

		var next *model.PriceSlot
		if i+1 < len(entries) {
			next = entries[i+1]
		}
		if next == nil {
			// hold the price to the end of the slot, then break
			cur = append(cur,
				model.Point{X: x0, Y: y0, Line: line, Fill: fill, Price: p},
				model.Point{X: x0 + slotW, Y: y0, Line: line, Fill: fill, Price: p},
			)
			continue
		}

		y1 := sc.y(next.Float())
		for k := 0; k < steps; k++ {
			t := float64(k) / float64(steps)
			cur = append(cur, model.Point{
				X:     x0 + t*slotW,
				Y:     y0 + t*(y1-y0),
				Line:  line,
				Fill:  fill,
				Price: p + t*(next.Float()-p),
			})
		}
	}
	if len(cur) > 0 {
		segs = append(segs, cur)
	}
	return segs
}

// marker places "now" at its exact time position within the window.
func marker(entries []*model.PriceSlot, sc scale, left, slotW float64, now time.Time, first slot.Index) model.Marker {
	offset := now.Sub(slot.Start(first)).Seconds() / model.SlotDuration.Seconds()
	m := model.Marker{X: left + offset*slotW}

	i := int(math.Floor(offset))
	if i < 0 || i >= len(entries) || entries[i] == nil {
		return m
	}
	frac := offset - float64(i)
	y := sc.y(entries[i].Float())
	if i+1 < len(entries) && entries[i+1] != nil {
		y += frac * (sc.y(entries[i+1].Float()) - y)
	}
	m.Y = y
	m.Present = true
	return m
}

// ticks labels whole hours in the display timezone, every 2h on the 8h
// graph and every 6h on the 24h graph, plus a "now" tick.
func (r *Renderer) ticks(mode model.ViewMode, first slot.Index, n int, left, slotW, nowX float64) []model.Tick {
	interval := 2
	if mode == model.ViewGraph24h {
		interval = 6
	}
	ticks := []model.Tick{{X: nowX, Label: "now"}}
	for i := 0; i < n; i++ {
		local := slot.Start(first + slot.Index(i)).In(r.Layout.Location)
		if local.Minute() != 0 || local.Hour()%interval != 0 {
			continue
		}
		x := left + float64(i)*slotW
		if math.Abs(x-nowX) < tickClearance {
			continue // would overlap the "now" label
		}
		ticks = append(ticks, model.Tick{X: x, Label: fmt.Sprintf("%02d", local.Hour())})
	}
	return ticks
}
