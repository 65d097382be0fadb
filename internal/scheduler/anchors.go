package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultAnchors fetch at 00:01, 07:59 and 15:59 UTC.
var DefaultAnchors = []string{"1 0 * * *", "59 7 * * *", "59 15 * * *"}

var anchorParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Anchors is the fixed daily fetch schedule, evaluated in UTC.
type Anchors struct {
	specs     []string
	schedules []cron.Schedule
}

// ParseAnchors parses standard 5-field cron expressions.
func ParseAnchors(specs []string) (*Anchors, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("no fetch anchors configured")
	}
	a := &Anchors{specs: specs}
	for _, spec := range specs {
		sched, err := anchorParser.Parse(spec)
		if err != nil {
			return nil, fmt.Errorf("parse anchor %q: %w", spec, err)
		}
		a.schedules = append(a.schedules, sched)
	}
	return a, nil
}

// NextAfter returns the earliest anchor strictly after t.
func (a *Anchors) NextAfter(t time.Time) time.Time {
	t = t.UTC()
	var next time.Time
	for _, s := range a.schedules {
		n := s.Next(t)
		if n.IsZero() {
			continue
		}
		if next.IsZero() || n.Before(next) {
			next = n
		}
	}
	return next
}

func (a *Anchors) String() string {
	return fmt.Sprintf("%v", a.specs)
}
