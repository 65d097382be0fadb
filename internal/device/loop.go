package device

import (
	"context"
	"log"
	"time"

	"SpotPrice/internal/clock"
	"SpotPrice/internal/display"
	"SpotPrice/internal/scheduler"
)

// Status line texts.
const (
	StatusFetching = "Fetching prices..."
	StatusError    = "Error"
)

// DefaultPollInterval is how often Run evaluates the loop.
const DefaultPollInterval = 100 * time.Millisecond

// Loop is the single control flow of the device: fetch when due, service
// the cycle button, then fire the refresh tick. Everything runs on the
// goroutine that calls Run or Step.
type Loop struct {
	Clock     clock.Clock
	Scheduler *scheduler.Scheduler
	Machine   *display.Machine
	Button    <-chan struct{}
	Refresh   time.Duration

	lastTick   time.Time
	clockFault bool
}

// NewLoop wires the components together. A nil button channel never fires.
func NewLoop(c clock.Clock, s *scheduler.Scheduler, m *display.Machine, button <-chan struct{}, refresh time.Duration) *Loop {
	return &Loop{Clock: c, Scheduler: s, Machine: m, Button: button, Refresh: refresh}
}

// Run steps the loop every interval until ctx is cancelled.
func (l *Loop) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := l.Step(ctx); err != nil {
			log.Printf("[ERROR] %v", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Step runs one pass. The returned error is a drawing failure; fetch
// failures are handled by the scheduler and only change the status line.
func (l *Loop) Step(ctx context.Context) error {
	now, clockErr := l.Clock.Now()
	l.logClock(clockErr)

	if clockErr == nil {
		l.fetch(ctx, now)
	}

	l.drainButton()

	if l.tickDue(now, clockErr) {
		l.Machine.Tick(now, clockErr)
		if clockErr == nil {
			l.lastTick = now
		}
	}
	return l.Machine.Flush()
}

func (l *Loop) fetch(ctx context.Context, now time.Time) {
	if !l.Scheduler.Due(now) {
		return
	}
	// show the status before the request blocks the loop
	l.Machine.SetStatus(StatusFetching)
	if err := l.Machine.Flush(); err != nil {
		log.Printf("[ERROR] %v", err)
	}

	installed, err := l.Scheduler.Poll(ctx, now)
	switch {
	case installed:
		l.Machine.SetStatus("")
		l.Machine.Invalidate()
		l.Machine.Tick(now, nil)
		l.lastTick = now
	case err != nil:
		l.Machine.SetStatus(StatusError)
	default:
		l.Machine.SetStatus("")
	}
}

func (l *Loop) drainButton() {
	for {
		select {
		case <-l.Button:
			l.Machine.Cycle()
		default:
			return
		}
	}
}

// tickDue fires on the first pass, every Refresh, whenever the clock fails
// and when the clock moved backward past the last tick.
func (l *Loop) tickDue(now time.Time, clockErr error) bool {
	if clockErr != nil || l.lastTick.IsZero() {
		return true
	}
	if now.Before(l.lastTick) {
		return true
	}
	return now.Sub(l.lastTick) >= l.Refresh
}

func (l *Loop) logClock(err error) {
	switch {
	case err != nil && !l.clockFault:
		log.Printf("[WARN] clock unavailable, showing last known data: %v", err)
		l.clockFault = true
	case err == nil && l.clockFault:
		log.Println("[INFO] clock recovered")
		l.clockFault = false
	}
}
