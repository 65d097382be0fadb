package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SlotDuration is the width of one price slot.
const SlotDuration = 15 * time.Minute

// PriceSlot is one 15-minute spot price record.
type PriceSlot struct {
	Start time.Time       // UTC, aligned to a 15-minute boundary
	Price decimal.Decimal // cents/kWh, may be negative
}

// End returns the exclusive end of the slot.
func (p PriceSlot) End() time.Time {
	return p.Start.Add(SlotDuration)
}

// Contains reports whether t falls within [Start, End).
func (p PriceSlot) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End())
}

// Float returns the price as a float64 for geometry and color math.
func (p PriceSlot) Float() float64 {
	return p.Price.InexactFloat64()
}
