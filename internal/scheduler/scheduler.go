package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"SpotPrice/internal/cache"
	"SpotPrice/internal/collector"
	"SpotPrice/internal/model"
	"SpotPrice/internal/radio"
	"SpotPrice/internal/recorder"
)

// State is the fetch state machine position.
type State int

const (
	Idle State = iota
	Fetching
	BackoffWait
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Fetching:
		return "fetching"
	case BackoffWait:
		return "backoff"
	default:
		return "unknown"
	}
}

// DefaultRetryInterval is the fixed delay after a failed fetch.
const DefaultRetryInterval = 30 * time.Second

// Status is a read-only snapshot of the schedule.
type Status struct {
	State      State
	NextDue    time.Time
	RetryCount int
	LastError  error
	Configured bool
}

// Scheduler decides when a fetch is due, runs it and owns the price cache.
// It is driven by Poll from a single control loop.
type Scheduler struct {
	Fetcher  collector.Fetcher
	Radio    radio.Radio
	Recorder recorder.Recorder

	anchors       *Anchors
	retryInterval time.Duration
	configErr     error

	cache       atomic.Pointer[cache.Cache]
	state       State
	nextDue     time.Time
	retryCount  int
	lastAttempt time.Time
	lastEval    time.Time
	lastErr     error
}

// NewScheduler creates a scheduler with an empty cache that is due
// immediately. A non-nil configErr disables fetching for good.
func NewScheduler(fetcher collector.Fetcher, r radio.Radio, rec recorder.Recorder, anchors *Anchors, retryInterval time.Duration, configErr error) *Scheduler {
	if retryInterval <= 0 {
		retryInterval = DefaultRetryInterval
	}
	if r == nil {
		r = radio.Noop{}
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	s := &Scheduler{
		Fetcher:       fetcher,
		Radio:         r,
		Recorder:      rec,
		anchors:       anchors,
		retryInterval: retryInterval,
		configErr:     configErr,
	}
	s.cache.Store(cache.Empty())
	return s
}

// Cache returns the current cache handle. Readers take it once per pass; a
// later fetch swaps in a new handle and never touches this one.
func (s *Scheduler) Cache() *cache.Cache {
	return s.cache.Load()
}

// Status returns a snapshot of the schedule.
func (s *Scheduler) Status() Status {
	return Status{
		State:      s.state,
		NextDue:    s.nextDue,
		RetryCount: s.retryCount,
		LastError:  s.lastErr,
		Configured: s.configErr == nil,
	}
}

// Due reports whether a fetch should start at now. A daily anchor that has
// passed since the last attempt makes a fetch due even during backoff.
func (s *Scheduler) Due(now time.Time) bool {
	if s.configErr != nil {
		return false
	}
	if !now.Before(s.nextDue) {
		return true
	}
	if s.state == BackoffWait && !s.lastAttempt.IsZero() {
		anchor := s.anchors.NextAfter(s.lastAttempt)
		return !anchor.IsZero() && !now.Before(anchor)
	}
	return false
}

// Poll runs one scheduler evaluation. It reports whether a new cache was
// installed. Errors are returned for logging only; the schedule has already
// been updated.
func (s *Scheduler) Poll(ctx context.Context, now time.Time) (bool, error) {
	if s.configErr != nil {
		return false, s.configErr
	}
	now = now.UTC()
	if !s.lastEval.IsZero() && now.Before(s.lastEval) {
		log.Printf("[WARN] clock moved backward from %s to %s, fetch not due",
			s.lastEval.Format(time.RFC3339), now.Format(time.RFC3339))
		s.lastEval = now
		return false, nil
	}
	s.lastEval = now

	if !s.Due(now) {
		return false, nil
	}
	return s.fetch(ctx, now)
}

func (s *Scheduler) fetch(ctx context.Context, now time.Time) (bool, error) {
	s.state = Fetching
	s.lastAttempt = now
	attempt := &recorder.FetchAttempt{
		ID:     uuid.New().String(),
		At:     now,
		Source: s.Fetcher.Name(),
	}
	log.Printf("[INFO] fetch %s started (retry %d)", attempt.ID, s.retryCount)

	next, err := s.download(ctx, now)
	if err != nil {
		s.retryCount++
		s.nextDue = now.Add(s.retryInterval)
		s.state = BackoffWait
		s.lastErr = err

		attempt.Outcome = outcomeOf(err)
		attempt.RetryCount = s.retryCount
		attempt.NextDue = s.nextDue
		attempt.Error = err.Error()
		log.Printf("[WARN] fetch %s failed: %v, retry %d at %s",
			attempt.ID, err, s.retryCount, s.nextDue.Format(time.RFC3339))
		s.record(attempt)
		return false, err
	}

	s.cache.Store(next)
	s.retryCount = 0
	s.nextDue = s.anchors.NextAfter(now)
	s.state = Idle
	s.lastErr = nil

	attempt.Outcome = recorder.OutcomeSuccess
	attempt.Slots = next.Len()
	attempt.WindowStart, attempt.WindowEnd = next.Window()
	attempt.NextDue = s.nextDue
	log.Printf("[INFO] fetch %s cached %d slots [%s, %s), next fetch %s",
		attempt.ID, next.Len(), attempt.WindowStart.Format(time.RFC3339),
		attempt.WindowEnd.Format(time.RFC3339), s.nextDue.Format(time.RFC3339))
	s.record(attempt)
	return true, nil
}

// download holds the radio only while the request runs.
func (s *Scheduler) download(ctx context.Context, now time.Time) (*cache.Cache, error) {
	release, err := s.Radio.Acquire(ctx)
	if release != nil {
		defer release()
	}
	if err != nil {
		return nil, &model.NetworkError{Endpoint: "radio", Err: err}
	}

	slots, err := s.Fetcher.FetchPrices(ctx)
	if err != nil {
		return nil, err
	}
	c, err := cache.New(slots, now)
	if err != nil {
		return nil, &model.ParseError{Index: -1, Message: "invalid slot sequence", Err: err}
	}
	return c, nil
}

func (s *Scheduler) record(a *recorder.FetchAttempt) {
	if err := s.Recorder.RecordFetch(a); err != nil {
		log.Printf("[ERROR] record fetch attempt: %v", err)
	}
}

func outcomeOf(err error) string {
	var netErr *model.NetworkError
	var parseErr *model.ParseError
	switch {
	case errors.As(err, &netErr):
		return recorder.OutcomeNetworkError
	case errors.As(err, &parseErr):
		return recorder.OutcomeParseError
	default:
		return recorder.OutcomeOtherError
	}
}

func (s *Scheduler) String() string {
	return fmt.Sprintf("scheduler(state=%s next=%s retries=%d anchors=%s)",
		s.state, s.nextDue.Format(time.RFC3339), s.retryCount, s.anchors)
}
