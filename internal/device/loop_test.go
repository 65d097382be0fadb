package device

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SpotPrice/internal/clock"
	"SpotPrice/internal/collector"
	"SpotPrice/internal/colormap"
	"SpotPrice/internal/display"
	"SpotPrice/internal/model"
	"SpotPrice/internal/render"
	"SpotPrice/internal/scheduler"
)

type recordingSurface struct {
	frames []model.Frame
}

func (s *recordingSurface) Draw(f model.Frame) error {
	s.frames = append(s.frames, f)
	return nil
}

func (s *recordingSurface) Capabilities() render.Capabilities {
	return render.Capabilities{Text: true}
}

var boot = time.Date(2024, 1, 1, 12, 1, 0, 0, time.UTC)

type rig struct {
	loop    *Loop
	clock   *clock.Fake
	fetcher *collector.MockFetcher
	surface *recordingSurface
	machine *display.Machine
	button  chan struct{}
}

func newRig(t *testing.T, configErr error) *rig {
	t.Helper()
	start := boot.Truncate(time.Hour).Add(-time.Hour)
	slots := make([]model.PriceSlot, 96)
	for i := range slots {
		slots[i] = model.PriceSlot{
			Start: start.Add(time.Duration(i) * model.SlotDuration),
			Price: decimal.NewFromFloat(4.5),
		}
	}
	f := &collector.MockFetcher{Slots: slots}
	anchors, err := scheduler.ParseAnchors(scheduler.DefaultAnchors)
	require.NoError(t, err)
	s := scheduler.NewScheduler(f, nil, nil, anchors, 30*time.Second, configErr)

	surf := &recordingSurface{}
	r := render.NewRenderer(render.DefaultLayout, colormap.DefaultThresholds, colormap.DefaultGraphThresholds, surf.Capabilities())
	m := display.NewMachine(r, surf, s, 13*time.Hour)
	if configErr != nil {
		m.SetConfigError(configErr)
	}

	clk := &clock.Fake{T: boot}
	button := make(chan struct{}, 4)
	return &rig{
		loop:    NewLoop(clk, s, m, button, 2*time.Minute),
		clock:   clk,
		fetcher: f,
		surface: surf,
		machine: m,
		button:  button,
	}
}

func TestBootFetchesAndDraws(t *testing.T) {
	r := newRig(t, nil)
	require.NoError(t, r.loop.Step(context.Background()))

	assert.Equal(t, 1, r.fetcher.Calls)
	require.Len(t, r.surface.frames, 2)
	assert.Equal(t, StatusFetching, r.surface.frames[0].Status)
	assert.Equal(t, model.FramePrice, r.surface.frames[1].Kind)
	assert.Equal(t, "4.5c", r.surface.frames[1].Text)
	assert.Empty(t, r.surface.frames[1].Status)

	// nothing changed, nothing drawn
	require.NoError(t, r.loop.Step(context.Background()))
	assert.Len(t, r.surface.frames, 2)
	assert.Equal(t, 1, r.fetcher.Calls)
}

func TestButtonCyclesView(t *testing.T) {
	r := newRig(t, nil)
	require.NoError(t, r.loop.Step(context.Background()))

	r.button <- struct{}{}
	require.NoError(t, r.loop.Step(context.Background()))
	assert.Equal(t, model.ViewGraph8h, r.machine.Mode())
	last := r.surface.frames[len(r.surface.frames)-1]
	assert.Equal(t, model.FrameGraph, last.Kind)

	r.button <- struct{}{}
	r.button <- struct{}{}
	require.NoError(t, r.loop.Step(context.Background()))
	assert.Equal(t, model.ViewPrice, r.machine.Mode())
}

func TestRefreshTickRedrawsOnSlotChange(t *testing.T) {
	r := newRig(t, nil)
	require.NoError(t, r.loop.Step(context.Background()))
	drawn := len(r.surface.frames)

	r.clock.T = boot.Add(3 * time.Minute)
	require.NoError(t, r.loop.Step(context.Background()))
	assert.Len(t, r.surface.frames, drawn, "same slot")

	r.clock.T = boot.Add(15 * time.Minute)
	require.NoError(t, r.loop.Step(context.Background()))
	assert.Len(t, r.surface.frames, drawn+1, "next slot")
}

func TestFetchFailureShowsErrorAndRetries(t *testing.T) {
	r := newRig(t, nil)
	r.fetcher.Err = &model.NetworkError{Endpoint: "feed", Err: context.DeadlineExceeded}

	require.NoError(t, r.loop.Step(context.Background()))
	last := r.surface.frames[len(r.surface.frames)-1]
	assert.Equal(t, StatusError, last.Status)
	assert.Equal(t, "No data", last.Text)
	assert.True(t, last.Stale)

	r.clock.Advance(10 * time.Second)
	require.NoError(t, r.loop.Step(context.Background()))
	assert.Equal(t, 1, r.fetcher.Calls, "backoff not elapsed")

	r.fetcher.Err = nil
	r.clock.Advance(25 * time.Second)
	require.NoError(t, r.loop.Step(context.Background()))
	assert.Equal(t, 2, r.fetcher.Calls)
	last = r.surface.frames[len(r.surface.frames)-1]
	assert.Empty(t, last.Status)
	assert.Equal(t, model.FramePrice, last.Kind)
	assert.False(t, last.Stale)
}

func TestClockErrorSuppressesFetch(t *testing.T) {
	r := newRig(t, nil)
	r.clock.T = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	r.clock.Err = &model.ClockError{Reason: "not synchronized"}

	require.NoError(t, r.loop.Step(context.Background()))
	assert.Equal(t, 0, r.fetcher.Calls)
	require.Len(t, r.surface.frames, 1)
	assert.Equal(t, "Waiting for time", r.surface.frames[0].Text)

	r.clock.T = boot
	r.clock.Err = nil
	require.NoError(t, r.loop.Step(context.Background()))
	assert.Equal(t, 1, r.fetcher.Calls)
	last := r.surface.frames[len(r.surface.frames)-1]
	assert.Equal(t, model.FramePrice, last.Kind)
}

func TestNotConfiguredNeverFetches(t *testing.T) {
	r := newRig(t, &model.ConfigError{Field: "WIFI_SSID", Message: "missing"})

	for i := 0; i < 3; i++ {
		require.NoError(t, r.loop.Step(context.Background()))
		r.clock.Advance(time.Hour)
	}
	assert.Equal(t, 0, r.fetcher.Calls)
	require.NotEmpty(t, r.surface.frames)
	assert.Equal(t, "Not configured", r.surface.frames[0].Text)
}

func TestRunStopsOnCancel(t *testing.T) {
	r := newRig(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.loop.Run(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, r.fetcher.Calls)
}
