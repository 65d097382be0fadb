package collector

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"SpotPrice/internal/cache"
	"SpotPrice/internal/model"
	"SpotPrice/internal/slot"
)

// feedEntry is one element of the feed's "prices" array.
type feedEntry struct {
	Price     *decimal.Decimal `json:"price"`
	StartDate string           `json:"startDate"`
	EndDate   string           `json:"endDate"`
}

type feedDocument struct {
	Prices []feedEntry `json:"prices"`
}

// maxEntrySpan is the longest single entry accepted: one full cache.
const maxEntrySpan = cache.Capacity * model.SlotDuration

type span struct {
	index      int
	start, end time.Time
	price      decimal.Decimal
}

// Normalize validates feed entries and expands them into contiguous,
// increasing 15-minute slots. Entries may be newest-first or oldest-first but
// must not change direction. Slots already covered by an earlier entry are
// dropped. A gap, a bad timestamp or a missing price fails the whole payload.
func Normalize(entries []feedEntry) ([]model.PriceSlot, error) {
	if len(entries) == 0 {
		return nil, &model.ParseError{Index: -1, Message: "no price entries"}
	}

	spans := make([]span, 0, len(entries))
	for i, e := range entries {
		sp, err := parseEntry(i, e)
		if err != nil {
			return nil, err
		}
		spans = append(spans, sp)
	}

	// direction: +1 ascending, -1 descending, 0 not yet known
	dir := 0
	for i := 1; i < len(spans); i++ {
		cmp := spans[i].start.Compare(spans[i-1].start)
		if cmp == 0 {
			continue
		}
		if dir == 0 {
			dir = cmp
			continue
		}
		if cmp != dir {
			return nil, &model.ParseError{Index: spans[i].index, Message: "entries out of order"}
		}
	}
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].start.Before(spans[j].start) })

	var slots []model.PriceSlot
	var covered time.Time
	for _, sp := range spans {
		for ts := sp.start; ts.Before(sp.end); ts = ts.Add(model.SlotDuration) {
			if len(slots) > 0 {
				if ts.Before(covered) {
					continue // duplicate or overlap
				}
				if ts.After(covered) {
					return nil, &model.ParseError{
						Index:   sp.index,
						Message: "gap before " + ts.Format(time.RFC3339),
					}
				}
			}
			slots = append(slots, model.PriceSlot{Start: ts, Price: sp.price})
			covered = ts.Add(model.SlotDuration)
			if len(slots) >= 2*cache.Capacity {
				// only the newest Capacity slots survive
				slots = append(slots[:0], slots[len(slots)-cache.Capacity:]...)
			}
		}
	}

	if len(slots) > cache.Capacity {
		slots = slots[len(slots)-cache.Capacity:]
	}
	return slots, nil
}

func parseEntry(i int, e feedEntry) (span, error) {
	if e.Price == nil {
		return span{}, &model.ParseError{Index: i, Message: "missing price"}
	}
	start, err := time.Parse(time.RFC3339Nano, e.StartDate)
	if err != nil {
		return span{}, &model.ParseError{Index: i, Message: "bad startDate", Err: err}
	}
	end, err := time.Parse(time.RFC3339Nano, e.EndDate)
	if err != nil {
		return span{}, &model.ParseError{Index: i, Message: "bad endDate", Err: err}
	}
	start, end = start.UTC(), end.UTC()
	if !end.After(start) {
		return span{}, &model.ParseError{Index: i, Message: "endDate not after startDate"}
	}
	if !slot.Aligned(start) || end.Sub(start)%model.SlotDuration != 0 {
		return span{}, &model.ParseError{Index: i, Message: "range not on 15-minute boundaries"}
	}
	if end.Sub(start) > maxEntrySpan {
		return span{}, &model.ParseError{Index: i, Message: "range longer than " + maxEntrySpan.String()}
	}
	return span{index: i, start: start, end: end, price: *e.Price}, nil
}
