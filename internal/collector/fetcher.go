package collector

import (
	"context"

	"SpotPrice/internal/model"
)

// Fetcher retrieves the current price window from a feed.
type Fetcher interface {
	FetchPrices(ctx context.Context) ([]model.PriceSlot, error)
	Name() string
}
