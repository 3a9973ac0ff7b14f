package booking

import "fmt"

// PricingStrategy defines the interface for calculating booking prices.
type PricingStrategy interface {
	// Calculate returns the price in cents for the given parameters.
	Calculate(params PricingParams) (int64, error)
}

// PricingParams holds the inputs for price calculation.
type PricingParams struct {
	NightlyRateCents int64
	Nights           int
	Guests           int
}

// StandardPricingStrategy charges the room's nightly rate for every night.
// Guest count does not change the price.
type StandardPricingStrategy struct{}

// NewStandardPricingStrategy creates a new StandardPricingStrategy.
func NewStandardPricingStrategy() *StandardPricingStrategy {
	return &StandardPricingStrategy{}
}

// Calculate computes nights times the nightly rate, in cents.
func (s *StandardPricingStrategy) Calculate(params PricingParams) (int64, error) {
	if params.Nights < 1 {
		return 0, fmt.Errorf("a stay needs at least one night")
	}
	if params.NightlyRateCents < 0 {
		return 0, fmt.Errorf("nightly rate cannot be negative")
	}
	return int64(params.Nights) * params.NightlyRateCents, nil
}
