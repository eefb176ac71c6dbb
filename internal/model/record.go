package model

import (
	"time"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"
)

// RecordStatus tells why a TickerRecord is complete or partially empty.
type RecordStatus string

const (
	StatusOK               RecordStatus = "OK"
	StatusNoOptions        RecordStatus = "NO_OPTIONS"
	StatusPriceUnavailable RecordStatus = "PRICE_UNAVAILABLE"
	StatusMetricsFailed    RecordStatus = "METRICS_FAILED"
)

// Column headers in TickerRecord field order.
var RecordColumns = []string{
	"Stock",
	"Current Price",
	"52-Week High",
	"52-Week Low",
	"Distance from Low (%)",
	"Nearest Strike",
	"Premium",
	"IRR",
	"Effective Return (15% margin)",
}

// TickerRecord is the flat per-ticker row. Absent values are invalid nulls,
// never zero.
type TickerRecord struct {
	Symbol          string
	CurrentPrice    null.Float
	High52w         null.Float
	Low52w          null.Float
	DistanceFromLow null.Float
	NearestStrike   null.Float
	Premium         null.Float
	IRR             null.Float
	EffectiveReturn null.Float
	Status          RecordStatus
}

// NewTickerRecord assembles a record, rounding for presentation: prices and
// distance to 2 places, IRR and effective return to 4. Strike and premium are
// reported as quoted.
func NewTickerRecord(symbol string, m *PriceMetrics, q *OptionQuote) TickerRecord {
	rec := TickerRecord{Symbol: symbol, Status: StatusOK}
	if m == nil {
		rec.Status = StatusMetricsFailed
		return rec
	}
	rec.CurrentPrice = null.FloatFrom(Round(m.CurrentPrice, 2))
	rec.High52w = null.FloatFrom(Round(m.High52w, 2))
	rec.Low52w = null.FloatFrom(Round(m.Low52w, 2))
	rec.DistanceFromLow = null.FloatFrom(Round(m.DistanceFromLow, 2))

	if q == nil {
		rec.Status = StatusNoOptions
		return rec
	}
	rec.NearestStrike = null.FloatFrom(q.Strike)
	rec.Premium = null.FloatFrom(q.Premium)
	rec.IRR = null.FloatFrom(Round(q.IRR, 4))
	rec.EffectiveReturn = null.FloatFrom(Round(q.EffectiveReturn, 4))
	return rec
}

// EmptyRecord returns a record with every numeric field absent.
func EmptyRecord(symbol string, status RecordStatus) TickerRecord {
	return TickerRecord{Symbol: symbol, Status: status}
}

// HasPrice reports whether price metrics are present.
func (r TickerRecord) HasPrice() bool { return r.CurrentPrice.Valid }

// HasOption reports whether the option fields are present.
func (r TickerRecord) HasOption() bool { return r.NearestStrike.Valid }

// Values returns the numeric fields in column order (after Stock).
func (r TickerRecord) Values() []null.Float {
	return []null.Float{
		r.CurrentPrice, r.High52w, r.Low52w, r.DistanceFromLow,
		r.NearestStrike, r.Premium, r.IRR, r.EffectiveReturn,
	}
}

// ResultSet is the ordered outcome of one run.
type ResultSet struct {
	RunID       string
	GeneratedAt time.Time
	Records     []TickerRecord
	// Series is kept for charting only and may be missing entries for
	// tickers whose fetch failed.
	Series map[string]*PriceSeries
}

// Symbols returns the ticker symbols in record order.
func (rs *ResultSet) Symbols() []string {
	out := make([]string, len(rs.Records))
	for i, r := range rs.Records {
		out[i] = r.Symbol
	}
	return out
}

// Round rounds half away from zero to the given number of decimal places.
func Round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
