package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"PutScreener/internal/model"
)

func contracts(strikes, premiums []float64) []model.OptionContract {
	out := make([]model.OptionContract, len(strikes))
	for i := range strikes {
		out[i] = model.OptionContract{Strike: strikes[i], LastPrice: premiums[i]}
	}
	return out
}

func soon(days int) time.Time {
	return time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC).AddDate(0, 0, days)
}

func newMock() *MockFetcher {
	return &MockFetcher{
		Series: map[string][]float64{
			"AAPL": {100, 120, 90, 110},
			"MSFT": {400, 410, 395, 405},
		},
		Expirations: map[string][]time.Time{
			"AAPL": {soon(0), soon(7)},
			"MSFT": {soon(0)},
		},
		Puts: map[string][]model.OptionContract{
			"AAPL": contracts([]float64{100, 105, 115}, []float64{2, 3, 4}),
			"MSFT": contracts([]float64{400, 405, 410}, []float64{8, 10, 13}),
		},
	}
}

func TestProcessTicker_FullRecord(t *testing.T) {
	c := NewCollector(newMock(), "1y", 1)
	rec, series := c.ProcessTicker(context.Background(), "AAPL")
	if series == nil || series.Len() != 4 {
		t.Fatalf("expected retained series of 4 closes, got %v", series)
	}
	if rec.Status != model.StatusOK {
		t.Errorf("expected OK, got %s", rec.Status)
	}
	if rec.CurrentPrice.Float64 != 110 || rec.High52w.Float64 != 120 || rec.Low52w.Float64 != 90 {
		t.Errorf("unexpected price fields %+v", rec)
	}
	if rec.DistanceFromLow.Float64 != 22.22 {
		t.Errorf("expected distance 22.22, got %v", rec.DistanceFromLow.Float64)
	}
	// 105 and 115 tie at distance 5; the first in chain order wins.
	if rec.NearestStrike.Float64 != 105 || rec.Premium.Float64 != 3 {
		t.Errorf("expected strike 105 premium 3, got %v %v", rec.NearestStrike.Float64, rec.Premium.Float64)
	}
	if rec.IRR.Float64 != model.Round(3.0/105.0, 4) {
		t.Errorf("unexpected irr %v", rec.IRR.Float64)
	}
}

func TestProcessTicker_EmptyFetch(t *testing.T) {
	m := newMock()
	m.Series["EMPTY"] = []float64{}
	c := NewCollector(m, "1y", 1)

	for _, sym := range []string{"EMPTY", "MISSING"} {
		rec, series := c.ProcessTicker(context.Background(), sym)
		if series != nil {
			t.Errorf("%s: expected nil series", sym)
		}
		if rec.Status != model.StatusPriceUnavailable {
			t.Errorf("%s: expected PRICE_UNAVAILABLE, got %s", sym, rec.Status)
		}
		for i, v := range rec.Values() {
			if v.Valid {
				t.Errorf("%s: column %s should be null", sym, model.RecordColumns[i+1])
			}
		}
	}
}

func TestProcessTicker_MetricsFailure(t *testing.T) {
	m := newMock()
	m.Series["ZERO"] = []float64{3, 0, 2}
	rec, _ := NewCollector(m, "1y", 1).ProcessTicker(context.Background(), "ZERO")
	if rec.Status != model.StatusMetricsFailed {
		t.Errorf("expected METRICS_FAILED, got %s", rec.Status)
	}
	if rec.HasPrice() || rec.HasOption() {
		t.Error("expected every field null on metric failure")
	}
}

func TestSelectPut_Unavailable(t *testing.T) {
	m := newMock()
	m.Expirations["NOOPT"] = nil
	m.Expirations["NOPUTS"] = []time.Time{soon(0)}
	m.Expirations["ERR"] = []time.Time{soon(0)}
	m.ExpiryErr = map[string]error{"BOOM": errors.New("connection reset")}
	m.PutsErr = map[string]error{"ERR": errors.New("bad json")}
	c := NewCollector(m, "1y", 1)

	for _, sym := range []string{"NOOPT", "NOPUTS", "ERR", "BOOM"} {
		if q := c.SelectPut(context.Background(), sym, 100); q != nil {
			t.Errorf("%s: expected nil quote, got %+v", sym, q)
		}
	}
}

type panicFetcher struct{ MockFetcher }

func (p *panicFetcher) FetchExpirations(context.Context, string) ([]time.Time, error) {
	panic("provider exploded")
}

func TestSelectPut_RecoversPanic(t *testing.T) {
	c := NewCollector(&panicFetcher{}, "1y", 1)
	if q := c.SelectPut(context.Background(), "AAPL", 100); q != nil {
		t.Errorf("expected nil quote after panic, got %+v", q)
	}
}

type priceFetchPanicker struct {
	*MockFetcher
	symbol string
}

func (p *priceFetchPanicker) FetchPriceHistory(ctx context.Context, symbol, lookback string) (*model.PriceSeries, error) {
	if symbol == p.symbol {
		panic("provider exploded")
	}
	return p.MockFetcher.FetchPriceHistory(ctx, symbol, lookback)
}

func TestCollectAll_RecoversPriceFetchPanic(t *testing.T) {
	for _, conc := range []int{1, 4} {
		f := &priceFetchPanicker{MockFetcher: newMock(), symbol: "AAPL"}
		rs := NewCollector(f, "1y", conc).CollectAll(context.Background(), []string{"AAPL", "MSFT"})
		if len(rs.Records) != 2 {
			t.Fatalf("concurrency %d: expected 2 records, got %d", conc, len(rs.Records))
		}
		if r := rs.Records[0]; r.Symbol != "AAPL" || r.Status != model.StatusPriceUnavailable || r.HasPrice() {
			t.Errorf("concurrency %d: expected empty AAPL record, got %+v", conc, r)
		}
		if _, ok := rs.Series["AAPL"]; ok {
			t.Errorf("concurrency %d: no series expected for AAPL", conc)
		}
		if r := rs.Records[1]; r.Symbol != "MSFT" || r.Status != model.StatusOK {
			t.Errorf("concurrency %d: expected MSFT to complete, got %+v", conc, r)
		}
	}
}

func TestSelectPut_ExactStrikeAndNearestExpiry(t *testing.T) {
	m := newMock()
	// Unsorted expirations: the soonest must be chosen.
	m.Expirations["AAPL"] = []time.Time{soon(14), soon(0), soon(7)}
	var asked time.Time
	f := &expiryRecorder{MockFetcher: m, asked: &asked}
	q := NewCollector(f, "1y", 1).SelectPut(context.Background(), "AAPL", 115)
	if q == nil {
		t.Fatal("expected a quote")
	}
	if q.Strike != 115 {
		t.Errorf("expected exact strike 115, got %v", q.Strike)
	}
	if !asked.Equal(soon(0)) {
		t.Errorf("expected soonest expiry %v, got %v", soon(0), asked)
	}
	if q.EffectiveReturn != q.IRR/model.MarginRequirement || q.IRR != q.Premium/q.Strike {
		t.Errorf("ratio identities broken: %+v", q)
	}
}

type expiryRecorder struct {
	*MockFetcher
	asked *time.Time
}

func (e *expiryRecorder) FetchPutChain(ctx context.Context, symbol string, expiry time.Time) ([]model.OptionContract, error) {
	*e.asked = expiry
	return e.MockFetcher.FetchPutChain(ctx, symbol, expiry)
}

func TestCollectAll_PreservesOrder(t *testing.T) {
	m := newMock()
	m.Series["GOOG"] = []float64{150, 160, 170}
	m.SeriesErr = map[string]error{"BAD": errors.New("timeout")}

	perms := [][]string{
		{"AAPL", "MSFT", "GOOG"},
		{"GOOG", "BAD", "AAPL", "MSFT"},
		{"BAD", "MSFT", "GOOG", "AAPL"},
		{"MSFT", "MSFT", "BAD"},
	}
	for _, conc := range []int{1, 4} {
		c := NewCollector(m, "1y", conc)
		for _, symbols := range perms {
			rs := c.CollectAll(context.Background(), symbols)
			if len(rs.Records) != len(symbols) {
				t.Fatalf("expected %d records, got %d", len(symbols), len(rs.Records))
			}
			for i, sym := range symbols {
				if rs.Records[i].Symbol != sym {
					t.Errorf("concurrency %d: position %d expected %s, got %s", conc, i, sym, rs.Records[i].Symbol)
				}
			}
			if _, ok := rs.Series["BAD"]; ok {
				t.Error("failed fetch should not retain a series")
			}
			if rs.RunID == "" {
				t.Error("expected a run id")
			}
		}
	}
}

func TestCollectAll_GoogHasNoOptions(t *testing.T) {
	m := newMock()
	m.Series["GOOG"] = []float64{150, 160, 170}
	rs := NewCollector(m, "1y", 2).CollectAll(context.Background(), []string{"AAPL", "GOOG"})
	goog := rs.Records[1]
	if goog.Status != model.StatusNoOptions {
		t.Errorf("expected NO_OPTIONS, got %s", goog.Status)
	}
	if !goog.HasPrice() {
		t.Error("price metrics must survive missing options")
	}
}

func TestNewCollector_ClampsConcurrency(t *testing.T) {
	if c := NewCollector(newMock(), "1y", 0); c.Concurrency != 1 {
		t.Errorf("expected concurrency 1, got %d", c.Concurrency)
	}
}
