package calculator

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"SpotPrice/internal/model"
)

func slotAt(i int, price float64) *model.PriceSlot {
	return &model.PriceSlot{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * model.SlotDuration),
		Price: decimal.NewFromFloat(price),
	}
}

func TestWindowRange(t *testing.T) {
	tests := []struct {
		name      string
		entries   []*model.PriceSlot
		low, high float64
		known     int
	}{
		{"all known", []*model.PriceSlot{slotAt(0, 3), slotAt(1, 7.5), slotAt(2, 1.25)}, 1.25, 7.5, 3},
		{"gaps skipped", []*model.PriceSlot{nil, slotAt(1, 4), nil, slotAt(3, 6), nil}, 4, 6, 2},
		{"negative", []*model.PriceSlot{slotAt(0, -0.5), slotAt(1, 2)}, -0.5, 2, 2},
		{"single", []*model.PriceSlot{nil, slotAt(1, 9)}, 9, 9, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			low, high, known, err := WindowRange(tt.entries)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if low != tt.low || high != tt.high || known != tt.known {
				t.Errorf("got (%v, %v, %d), want (%v, %v, %d)", low, high, known, tt.low, tt.high, tt.known)
			}
		})
	}
}

func TestWindowRangeEmpty(t *testing.T) {
	if _, _, _, err := WindowRange([]*model.PriceSlot{nil, nil}); !errors.Is(err, ErrNoPrices) {
		t.Errorf("err = %v, want ErrNoPrices", err)
	}
	if _, _, _, err := WindowRange(nil); !errors.Is(err, ErrNoPrices) {
		t.Errorf("err = %v, want ErrNoPrices", err)
	}
}
