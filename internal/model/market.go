package model

import "time"

// PricePoint is a single daily close.
type PricePoint struct {
	Time  time.Time
	Close float64
}

// PriceSeries holds the trailing closes for one symbol, oldest first.
type PriceSeries struct {
	Symbol    string
	Points    []PricePoint
	FetchedAt time.Time
}

// Len returns the number of observations.
func (s *PriceSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Points)
}

// Closes projects the close values in chronological order.
func (s *PriceSeries) Closes() []float64 {
	if s == nil {
		return nil
	}
	closes := make([]float64, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Close
	}
	return closes
}

// PriceMetrics is the full-precision snapshot derived from a PriceSeries.
type PriceMetrics struct {
	CurrentPrice    float64
	High52w         float64
	Low52w          float64
	DistanceFromLow float64 // percent above the low
}
