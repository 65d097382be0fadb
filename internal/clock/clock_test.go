package clock

import (
	"errors"
	"testing"
	"time"

	"SpotPrice/internal/model"
)

func TestSystemClockIsUTC(t *testing.T) {
	now, err := System{}.Now()
	if err != nil {
		t.Skipf("host clock not usable: %v", err)
	}
	if now.Location() != time.UTC {
		t.Errorf("location = %v", now.Location())
	}
}

func TestFakeClock(t *testing.T) {
	f := &Fake{T: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	f.Advance(90 * time.Second)
	now, err := f.Now()
	if err != nil || now.Minute() != 1 || now.Second() != 30 {
		t.Errorf("got %v, %v", now, err)
	}
	f.Err = &model.ClockError{Reason: "test"}
	if _, err := f.Now(); !errors.As(err, new(*model.ClockError)) {
		t.Errorf("expected ClockError, got %v", err)
	}
}
