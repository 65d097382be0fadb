package calculator

import (
	"errors"
	"math"

	"SpotPrice/internal/model"
)

// ErrNoPrices is returned when a window holds no known slot.
var ErrNoPrices = errors.New("no known prices in window")

// WindowRange scans a window of slots and returns the low and high price of
// the known entries and how many there were. Missing slots are skipped, never
// counted as zero.
func WindowRange(entries []*model.PriceSlot) (low, high float64, known int, err error) {
	low = math.Inf(1)
	high = math.Inf(-1)
	for _, e := range entries {
		if e == nil {
			continue
		}
		known++
		p := e.Float()
		if p < low {
			low = p
		}
		if p > high {
			high = p
		}
	}
	if known == 0 {
		return 0, 0, 0, ErrNoPrices
	}
	return low, high, known, nil
}
