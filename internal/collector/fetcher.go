package collector

import (
	"context"
	"errors"
	"time"

	"PutScreener/internal/model"
)

// ErrNoData is returned when the provider answers but has nothing for the symbol.
var ErrNoData = errors.New("no data returned")

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// FetchPriceHistory returns daily closes over a Yahoo-style range ("1y", "6mo", ...).
	FetchPriceHistory(ctx context.Context, symbol, lookback string) (*model.PriceSeries, error)
	// FetchExpirations returns the listed option expirations, soonest first.
	FetchExpirations(ctx context.Context, symbol string) ([]time.Time, error)
	// FetchPutChain returns the put side of the chain for one expiration.
	FetchPutChain(ctx context.Context, symbol string, expiry time.Time) ([]model.OptionContract, error)
	Name() string
}
