package collector

import (
	"context"

	"SpotPrice/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Slots []model.PriceSlot
	Err   error
	Calls int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchPrices(_ context.Context) ([]model.PriceSlot, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]model.PriceSlot, len(m.Slots))
	copy(out, m.Slots)
	return out, nil
}
