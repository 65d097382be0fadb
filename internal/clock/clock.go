package clock

import (
	"fmt"
	"time"

	"SpotPrice/internal/model"
)

// Clock is the only time query the core makes.
type Clock interface {
	Now() (time.Time, error)
}

// MinValidYear is the earliest year the system clock is trusted for. The
// device RTC boots at 2000 and reads that until NTP has synced.
const MinValidYear = 2024

// System reads the host clock in UTC.
type System struct{}

func (System) Now() (time.Time, error) {
	now := time.Now().UTC()
	if now.Year() < MinValidYear {
		return now, &model.ClockError{Reason: fmt.Sprintf("clock reads %s, not synchronized", now.Format(time.RFC3339))}
	}
	return now, nil
}

// Fake is a settable clock for tests and replays.
type Fake struct {
	T   time.Time
	Err error
}

func (f *Fake) Now() (time.Time, error) {
	return f.T, f.Err
}

// Advance moves the fake clock forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.T = f.T.Add(d)
}
