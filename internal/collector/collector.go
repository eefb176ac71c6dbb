package collector

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"PutScreener/internal/calculator"
	"PutScreener/internal/model"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// MockFetcher returns controllable fixed data for development and testing.
// Maps are keyed by symbol and must not be mutated while a run is active.
type MockFetcher struct {
	Series      map[string][]float64
	SeriesErr   map[string]error
	Expirations map[string][]time.Time
	ExpiryErr   map[string]error
	Puts        map[string][]model.OptionContract
	PutsErr     map[string]error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchPriceHistory(_ context.Context, symbol, _ string) (*model.PriceSeries, error) {
	if err := m.SeriesErr[symbol]; err != nil {
		return nil, err
	}
	closes, ok := m.Series[symbol]
	if !ok {
		return nil, fmt.Errorf("mock chart %s: %w", symbol, ErrNoData)
	}
	s := &model.PriceSeries{Symbol: symbol, FetchedAt: time.Now()}
	start := time.Now().AddDate(0, 0, -len(closes))
	for i, c := range closes {
		s.Points = append(s.Points, model.PricePoint{Time: start.AddDate(0, 0, i), Close: c})
	}
	return s, nil
}

func (m *MockFetcher) FetchExpirations(_ context.Context, symbol string) ([]time.Time, error) {
	if err := m.ExpiryErr[symbol]; err != nil {
		return nil, err
	}
	return m.Expirations[symbol], nil
}

func (m *MockFetcher) FetchPutChain(_ context.Context, symbol string, _ time.Time) ([]model.OptionContract, error) {
	if err := m.PutsErr[symbol]; err != nil {
		return nil, err
	}
	return m.Puts[symbol], nil
}

// Collector runs the per-ticker pipeline: price history, metrics, nearest put.
type Collector struct {
	Fetcher     Fetcher
	Lookback    string
	Concurrency int
}

// NewCollector creates a new Collector. Concurrency below 1 is treated as 1.
func NewCollector(fetcher Fetcher, lookback string, concurrency int) *Collector {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Collector{Fetcher: fetcher, Lookback: lookback, Concurrency: concurrency}
}

// CollectAll processes every symbol and returns records in input order.
// Individual failures degrade their own record and never stop the batch.
func (c *Collector) CollectAll(ctx context.Context, symbols []string) *model.ResultSet {
	records := make([]model.TickerRecord, len(symbols))
	series := make([]*model.PriceSeries, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.Concurrency)
	for i, sym := range symbols {
		g.Go(func() error {
			records[i], series[i] = c.ProcessTicker(gctx, sym)
			return nil
		})
	}
	_ = g.Wait() // workers never return an error

	rs := &model.ResultSet{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now(),
		Records:     records,
		Series:      make(map[string]*model.PriceSeries, len(symbols)),
	}
	for i, s := range series {
		if s != nil {
			rs.Series[symbols[i]] = s
		}
	}
	return rs
}

// ProcessTicker produces exactly one record for symbol. The returned series
// is nil when the price fetch failed.
func (c *Collector) ProcessTicker(ctx context.Context, symbol string) (rec model.TickerRecord, series *model.PriceSeries) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERROR] %s: fetch price data: panic: %v", symbol, r)
			rec, series = model.EmptyRecord(symbol, model.StatusPriceUnavailable), nil
		}
	}()

	log.Printf("[INFO] processing %s ...", symbol)

	series, err := c.Fetcher.FetchPriceHistory(ctx, symbol, c.Lookback)
	if err != nil {
		log.Printf("[ERROR] %s: fetch price data: %v", symbol, err)
		return model.EmptyRecord(symbol, model.StatusPriceUnavailable), nil
	}
	if series.Len() == 0 {
		log.Printf("[ERROR] %s: no price data available", symbol)
		return model.EmptyRecord(symbol, model.StatusPriceUnavailable), nil
	}

	metrics, err := calculator.CalculatePriceMetrics(series)
	if err != nil {
		log.Printf("[ERROR] %s: calculate price metrics: %v", symbol, err)
		return model.EmptyRecord(symbol, model.StatusMetricsFailed), series
	}

	quote := c.SelectPut(ctx, symbol, metrics.CurrentPrice)
	rec = model.NewTickerRecord(symbol, metrics, quote)
	log.Printf("[INFO] %s: price=%.2f low=%.2f high=%.2f status=%s",
		symbol, metrics.CurrentPrice, metrics.Low52w, metrics.High52w, rec.Status)
	return rec, series
}

// SelectPut picks the put nearest to currentPrice from the soonest
// expiration. Only that expiration is consulted. Any failure yields nil.
func (c *Collector) SelectPut(ctx context.Context, symbol string, currentPrice float64) (quote *model.OptionQuote) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERROR] %s: fetch options data: panic: %v", symbol, r)
			quote = nil
		}
	}()

	expiries, err := c.Fetcher.FetchExpirations(ctx, symbol)
	if err != nil {
		log.Printf("[ERROR] %s: fetch options data: %v", symbol, err)
		return nil
	}
	if len(expiries) == 0 {
		log.Printf("[WARN] %s: no options data available", symbol)
		return nil
	}
	sorted := append([]time.Time(nil), expiries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })
	expiry := sorted[0]

	puts, err := c.Fetcher.FetchPutChain(ctx, symbol, expiry)
	if err != nil {
		log.Printf("[ERROR] %s: fetch options data: %v", symbol, err)
		return nil
	}
	if len(puts) == 0 {
		log.Printf("[WARN] %s: no put options available for %s", symbol, expiry.Format("2006-01-02"))
		return nil
	}

	nearest, err := calculator.NearestStrike(puts, currentPrice)
	if err != nil {
		log.Printf("[WARN] %s: %v", symbol, err)
		return nil
	}
	if nearest.Expiration.IsZero() {
		nearest.Expiration = expiry
	}
	return calculator.QuoteFor(nearest)
}
