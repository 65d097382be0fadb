package cache

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"SpotPrice/internal/model"
	"SpotPrice/internal/slot"
)

// Capacity is 48 hours of 15-minute slots.
const Capacity = 192

var (
	ErrEmpty      = errors.New("no price slots")
	ErrOverflow   = fmt.Errorf("more than %d price slots", Capacity)
	ErrUnaligned  = errors.New("slot start not on a 15-minute boundary")
	ErrNotOrdered = errors.New("slots not contiguous and increasing")
)

// Cache is an immutable, ordered window of price slots. A new fetch builds a
// new Cache and the owner swaps the handle; nothing mutates one in place.
type Cache struct {
	slots     []model.PriceSlot
	fetchedAt time.Time
}

// Empty returns the boot-time cache with no slots.
func Empty() *Cache {
	return &Cache{}
}

// New validates slots and returns a populated cache. The input is copied.
func New(slots []model.PriceSlot, fetchedAt time.Time) (*Cache, error) {
	if len(slots) == 0 {
		return nil, ErrEmpty
	}
	if len(slots) > Capacity {
		return nil, ErrOverflow
	}
	for i, s := range slots {
		if !slot.Aligned(s.Start) {
			return nil, fmt.Errorf("slot %d (%s): %w", i, s.Start.Format(time.RFC3339), ErrUnaligned)
		}
		if i > 0 && !s.Start.Equal(slots[i-1].End()) {
			return nil, fmt.Errorf("slot %d (%s): %w", i, s.Start.Format(time.RFC3339), ErrNotOrdered)
		}
	}
	owned := make([]model.PriceSlot, len(slots))
	for i, s := range slots {
		owned[i] = model.PriceSlot{Start: s.Start.UTC(), Price: s.Price}
	}
	return &Cache{slots: owned, fetchedAt: fetchedAt.UTC()}, nil
}

// Len returns the number of cached slots.
func (c *Cache) Len() int { return len(c.slots) }

// IsEmpty reports whether no fetch has populated this cache.
func (c *Cache) IsEmpty() bool { return len(c.slots) == 0 }

// FetchedAt returns the time of the fetch that produced this cache; zero when empty.
func (c *Cache) FetchedAt() time.Time { return c.fetchedAt }

// Window returns the covered range [start, end). Both are zero when empty.
func (c *Cache) Window() (start, end time.Time) {
	if c.IsEmpty() {
		return time.Time{}, time.Time{}
	}
	return c.slots[0].Start, c.slots[len(c.slots)-1].End()
}

// Slots returns a copy of the cached slots.
func (c *Cache) Slots() []model.PriceSlot {
	out := make([]model.PriceSlot, len(c.slots))
	copy(out, c.slots)
	return out
}

// Lookup returns the slot whose [Start, Start+15m) contains t.
func (c *Cache) Lookup(t time.Time) (model.PriceSlot, bool) {
	n := len(c.slots)
	if n == 0 {
		return model.PriceSlot{}, false
	}
	// first slot ending after t
	i := sort.Search(n, func(i int) bool { return c.slots[i].End().After(t) })
	if i == n || !c.slots[i].Contains(t) {
		return model.PriceSlot{}, false
	}
	return c.slots[i], true
}

// Slice returns count consecutive entries starting at slot index start.
// Entries outside the cached window are nil, never a zero price.
func (c *Cache) Slice(start slot.Index, count int) []*model.PriceSlot {
	if count <= 0 {
		return nil
	}
	out := make([]*model.PriceSlot, count)
	if c.IsEmpty() {
		return out
	}
	first := slot.IndexOf(c.slots[0].Start)
	for i := 0; i < count; i++ {
		pos := int64(start) + int64(i) - int64(first)
		if pos < 0 || pos >= int64(len(c.slots)) {
			continue
		}
		s := c.slots[pos]
		out[i] = &s
	}
	return out
}

// IsStale reports whether the data is older than maxAge at now, or absent.
func (c *Cache) IsStale(now time.Time, maxAge time.Duration) bool {
	if c.IsEmpty() {
		return true
	}
	return now.Sub(c.fetchedAt) > maxAge
}
