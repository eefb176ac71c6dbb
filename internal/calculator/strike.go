package calculator

import (
	"errors"
	"math"

	"PutScreener/internal/model"
)

var ErrNoContracts = errors.New("no usable put contracts")

// NearestStrike returns the contract whose strike is closest to price.
// Equidistant strikes resolve to the first one in the order the provider
// returned them; the chain carries no ordering guarantee so neither
// "round up" nor "round down" is implied.
func NearestStrike(puts []model.OptionContract, price float64) (model.OptionContract, error) {
	best := -1
	bestDist := math.Inf(1)
	for i, p := range puts {
		if p.Strike <= 0 || math.IsNaN(p.Strike) || math.IsInf(p.Strike, 0) {
			continue
		}
		d := math.Abs(p.Strike - price)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return model.OptionContract{}, ErrNoContracts
	}
	return puts[best], nil
}

// PutYield returns premium/strike and that ratio scaled by the margin
// requirement. Strike must be positive.
func PutYield(strike, premium float64) (irr, effective float64) {
	irr = premium / strike
	effective = irr / model.MarginRequirement
	return irr, effective
}

// QuoteFor builds the OptionQuote for a selected contract.
func QuoteFor(c model.OptionContract) *model.OptionQuote {
	irr, eff := PutYield(c.Strike, c.LastPrice)
	return &model.OptionQuote{
		Strike:          c.Strike,
		Premium:         c.LastPrice,
		IRR:             irr,
		EffectiveReturn: eff,
		Expiration:      c.Expiration,
	}
}
