package calculator

import (
	"errors"
	"fmt"
	"math"

	"PutScreener/internal/model"
)

var (
	ErrEmptySeries  = errors.New("no closing prices provided")
	ErrZeroLow      = errors.New("52-week low is zero, distance from low is undefined")
	ErrInvalidPrice = errors.New("non-finite closing price")
)

// CalculatePriceRange scans every close and returns the high and low.
func CalculatePriceRange(closes []float64) (high, low float64, err error) {
	if len(closes) == 0 {
		return 0, 0, ErrEmptySeries
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for i, c := range closes {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return 0, 0, fmt.Errorf("close #%d: %w", i, ErrInvalidPrice)
		}
		if c > high {
			high = c
		}
		if c < low {
			low = c
		}
	}
	return high, low, nil
}

// DistanceFromLow returns how far current sits above low, in percent.
func DistanceFromLow(current, low float64) (float64, error) {
	if low == 0 {
		return 0, ErrZeroLow
	}
	return (current - low) / low * 100, nil
}

// CalculatePriceMetrics derives current price, 52-week range and distance
// from the low. Values are full precision; rounding is a presentation concern.
func CalculatePriceMetrics(series *model.PriceSeries) (*model.PriceMetrics, error) {
	closes := series.Closes()
	high, low, err := CalculatePriceRange(closes)
	if err != nil {
		return nil, err
	}
	current := closes[len(closes)-1]
	dist, err := DistanceFromLow(current, low)
	if err != nil {
		return nil, err
	}
	return &model.PriceMetrics{
		CurrentPrice:    current,
		High52w:         high,
		Low52w:          low,
		DistanceFromLow: dist,
	}, nil
}
