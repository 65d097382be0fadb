package render

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SpotPrice/internal/cache"
	"SpotPrice/internal/colormap"
	"SpotPrice/internal/model"
	"SpotPrice/internal/slot"
)

var now = time.Date(2024, 1, 1, 12, 7, 0, 0, time.UTC)

func newRenderer(text bool) *Renderer {
	layout := DefaultLayout
	return NewRenderer(layout, colormap.DefaultThresholds, colormap.DefaultGraphThresholds, Capabilities{Text: text})
}

func buildCache(t *testing.T, start time.Time, prices ...float64) *cache.Cache {
	t.Helper()
	slots := make([]model.PriceSlot, len(prices))
	for i, p := range prices {
		slots[i] = model.PriceSlot{
			Start: start.Add(time.Duration(i) * model.SlotDuration),
			Price: decimal.NewFromFloat(p),
		}
	}
	c, err := cache.New(slots, start)
	require.NoError(t, err)
	return c
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12.345", "12.3c"},
		{"1.01", "1.0c"},
		{"1", "1.00"},
		{"0.456", "0.46"},
		{"-0.5", "-0.50"},
		{"-3.2", "-3.20"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatPrice(decimal.RequireFromString(tt.in)), tt.in)
	}
}

func TestPriceFrame(t *testing.T) {
	c := buildCache(t, slot.Truncate(now), 2.5)
	f := newRenderer(true).Render(c, now, model.ViewPrice, false)

	assert.Equal(t, model.FramePrice, f.Kind)
	assert.Equal(t, TitlePrice, f.Title)
	assert.Equal(t, "2.5c", f.Text)
	assert.Equal(t, UnitText, f.Unit)
	assert.Equal(t, colormap.LightGreen, f.Background)
	assert.False(t, f.Stale)
}

func TestPriceFrameWithoutCurrentSlot(t *testing.T) {
	c := buildCache(t, slot.Truncate(now).Add(-time.Hour), 2.5)
	f := newRenderer(true).Render(c, now, model.ViewPrice, true)
	assert.Equal(t, model.FrameStatus, f.Kind)
	assert.Equal(t, "No data", f.Text)
	assert.True(t, f.Stale)

	f = newRenderer(true).Render(cache.Empty(), now, model.ViewPrice, true)
	assert.Equal(t, "No data", f.Text)
}

// 20 of 32 slots cached: the curve stops where data stops and scaling uses
// only the known values.
func TestGraphPartialWindow(t *testing.T) {
	r := newRenderer(true)
	first := slot.Truncate(now).Add(-2 * model.SlotDuration)
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 4 + float64(i%5)
	}
	c := buildCache(t, first, prices...)

	f := r.Render(c, now, model.ViewGraph8h, false)
	require.Equal(t, model.FrameGraph, f.Kind)
	g := f.Graph
	require.NotNil(t, g)

	assert.Equal(t, 32, g.Slots)
	assert.Equal(t, 20, g.Known)
	assert.Equal(t, 4.0, g.MinPrice)
	assert.Equal(t, 8.0, g.MaxPrice)
	require.Len(t, g.Segments, 1)

	slotW := (g.Right - g.Left) / 32
	last := g.Segments[0][len(g.Segments[0])-1]
	assert.InDelta(t, g.Left+20*slotW, last.X, 1e-9, "curve must end at the last known slot")
	assert.Less(t, last.X, g.Right)

	for _, p := range g.Segments[0] {
		assert.GreaterOrEqual(t, p.Y, g.Top)
		assert.LessOrEqual(t, p.Y, g.Bottom)
		assert.NotEqual(t, 0.0, p.Price, "no zero-filled points")
	}
}

func TestGraphGapSplitsSegments(t *testing.T) {
	r := newRenderer(false)
	// cache begins 4 slots after the window start: leading gap
	first := slot.Truncate(now).Add(-2 * model.SlotDuration)
	c := buildCache(t, first.Add(4*model.SlotDuration), 1, 2, 3)

	g := r.Render(c, now, model.ViewGraph8h, false).Graph
	require.NotNil(t, g)
	require.Len(t, g.Segments, 1)
	slotW := (g.Right - g.Left) / 32
	assert.InDelta(t, g.Left+4*slotW, g.Segments[0][0].X, 1e-9)
	assert.False(t, g.Marker.Present, "current slot is not cached")
}

func TestGraphScalingUsesWindowRange(t *testing.T) {
	r := newRenderer(false)
	first := slot.Truncate(now).Add(-2 * model.SlotDuration)
	c := buildCache(t, first, 10, 10.2, 10.4, 10.1)

	g := r.Render(c, now, model.ViewGraph8h, false).Graph
	require.NotNil(t, g)

	var ys []float64
	for _, p := range g.Segments[0] {
		ys = append(ys, p.Y)
	}
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, y := range ys {
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	// a 0.4 c/kWh spread still fills a visible share of the plot
	assert.Greater(t, maxY-minY, (g.Bottom-g.Top)*0.25)
}

func TestGraphNegativePricesStayOnScreen(t *testing.T) {
	r := newRenderer(false)
	first := slot.Truncate(now).Add(-2 * model.SlotDuration)
	c := buildCache(t, first, -2, -1, 0.5, 3)
	g := r.Render(c, now, model.ViewGraph8h, false).Graph
	require.NotNil(t, g)
	assert.Equal(t, -2.0, g.MinPrice)
	pts := g.Segments[0]
	assert.Less(t, pts[0].Y, g.Bottom, "lowest price must not be clipped to the axis")
}

func TestGraphColorBoundaryAtSlotEdge(t *testing.T) {
	r := newRenderer(false)
	first := slot.Truncate(now).Add(-2 * model.SlotDuration)
	// green slot followed by a red slot
	c := buildCache(t, first, 1, 1, 1, 20)
	g := r.Render(c, now, model.ViewGraph8h, false).Graph
	require.NotNil(t, g)

	slotW := (g.Right - g.Left) / 32
	edge := g.Left + 3*slotW
	for _, p := range g.Segments[0] {
		if p.X < edge-1e-9 {
			assert.Equal(t, colormap.Green, p.Line, "x=%.2f", p.X)
		} else {
			assert.Equal(t, colormap.Red, p.Line, "x=%.2f", p.X)
		}
		assert.Equal(t, colormap.Darken(p.Line, colormap.DefaultGraphThresholds.FillRatio), p.Fill)
	}
}

func TestGraphMarkerAtCurrentTime(t *testing.T) {
	r := newRenderer(true)
	first := slot.Truncate(now).Add(-4 * model.SlotDuration)
	c := buildCache(t, first, make96(5)...)
	g := r.Render(c, now, model.ViewGraph24h, false).Graph
	require.NotNil(t, g)

	slotW := (g.Right - g.Left) / 96
	// 12:07 is 7 minutes into the slot at index 4
	assert.InDelta(t, g.Left+(4+7.0/15)*slotW, g.Marker.X, 1e-9)
	assert.True(t, g.Marker.Present)
	assert.Equal(t, "now", g.Ticks[0].Label)
	assert.Equal(t, "5.0", g.MinLabel)
}

func TestGraphTicksInDisplayZone(t *testing.T) {
	layout := DefaultLayout
	layout.Location = time.FixedZone("EET", 2*3600)
	r := NewRenderer(layout, colormap.DefaultThresholds, colormap.DefaultGraphThresholds, Capabilities{Text: true})
	first := slot.Truncate(now).Add(-2 * model.SlotDuration)
	c := buildCache(t, first, make96(3)[:32]...)

	g := r.Render(c, now, model.ViewGraph8h, false).Graph
	require.NotNil(t, g)
	var labels []string
	for _, tk := range g.Ticks[1:] {
		labels = append(labels, tk.Label)
	}
	// window 11:30..19:30 UTC is 13:30..21:30 EET
	assert.Equal(t, []string{"16", "18", "20"}, labels)
}

func TestGraphWithoutTextCapability(t *testing.T) {
	r := newRenderer(false)
	c := buildCache(t, slot.Truncate(now), 1, 2)
	g := r.Render(c, now, model.ViewGraph8h, false).Graph
	require.NotNil(t, g)
	assert.Empty(t, g.Ticks)
	assert.Empty(t, g.MinLabel)
}

func TestGraphNoData(t *testing.T) {
	f := newRenderer(true).Render(cache.Empty(), now, model.ViewGraph24h, true)
	assert.Equal(t, model.FrameStatus, f.Kind)
	assert.Equal(t, TitleGraph24, f.Title)
	assert.Nil(t, f.Graph)
}

func TestRenderIsIdempotent(t *testing.T) {
	r := newRenderer(true)
	first := slot.Truncate(now).Add(-4 * model.SlotDuration)
	c := buildCache(t, first, make96(7)...)
	for _, mode := range []model.ViewMode{model.ViewPrice, model.ViewGraph8h, model.ViewGraph24h} {
		a := r.Render(c, now, mode, false)
		b := r.Render(c, now, mode, false)
		assert.Equal(t, a, b, mode.String())
	}
}

func make96(base float64) []float64 {
	out := make([]float64, 96)
	for i := range out {
		out[i] = base + math.Sin(float64(i)/6)*2 + 2
	}
	return out
}
