package model

import "time"

// MarginRequirement is the assumed fraction of the strike posted as margin
// when selling a put.
const MarginRequirement = 0.15

// OptionContract is one row of a put chain as returned by the provider.
type OptionContract struct {
	Strike     float64
	LastPrice  float64
	Expiration time.Time
}

// OptionQuote is the put selected for a ticker. A nil *OptionQuote means no
// tradable option data was found.
type OptionQuote struct {
	Strike          float64
	Premium         float64
	IRR             float64 // premium / strike
	EffectiveReturn float64 // IRR / MarginRequirement
	Expiration      time.Time
}
