package slot

import (
	"time"

	"SpotPrice/internal/model"
)

// Index counts completed 15-minute intervals since the Unix epoch.
type Index int64

const slotSeconds = int64(model.SlotDuration / time.Second)

// IndexOf returns the slot containing t. Only the absolute instant is used,
// so the location attached to t never changes the result.
func IndexOf(t time.Time) Index {
	sec := t.Unix()
	idx := sec / slotSeconds
	if sec%slotSeconds < 0 {
		idx-- // floor for instants before the epoch
	}
	return Index(idx)
}

// Start returns the UTC start of slot i.
func Start(i Index) time.Time {
	return time.Unix(int64(i)*slotSeconds, 0).UTC()
}

// Truncate aligns t down to its slot start in UTC.
func Truncate(t time.Time) time.Time {
	return Start(IndexOf(t))
}

// Aligned reports whether t lies exactly on a slot boundary.
func Aligned(t time.Time) bool {
	return t.Nanosecond() == 0 && t.Unix()%slotSeconds == 0
}
