package model

import "time"

// MonteCarloEstimate is the sampled price with its sampling error.
type MonteCarloEstimate struct {
	Price                float64 `json:"price"`
	StdError             float64 `json:"std_error"`
	ConfidenceInterval95 float64 `json:"confidence_interval_95"` // half-width
	Paths                int     `json:"paths"`
}

// Greeks holds Black-Scholes sensitivities. Vega and Rho are per 1 point
// (1%) change, Theta is per calendar day.
type Greeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Vega  float64 `json:"vega"`
	Theta float64 `json:"theta"`
	Rho   float64 `json:"rho"`
}

// SimulationRecord is the persisted result of one pricing run.
type SimulationRecord struct {
	SimulationID         string        `json:"simulation_id"`
	OptionPrice          float64       `json:"option_price"`
	StdError             float64       `json:"std_error"`
	ConfidenceInterval95 float64       `json:"confidence_interval_95"`
	BlackScholesPrice    float64       `json:"black_scholes_price"`
	Greeks               Greeks        `json:"greeks"`
	Inputs               PricingInputs `json:"inputs"`
	Seed                 *uint64       `json:"seed,omitempty"`
	Timestamp            time.Time     `json:"timestamp"`
}

// PricingError is the difference between the Monte Carlo and analytical prices.
func (r *SimulationRecord) PricingError() float64 {
	return r.OptionPrice - r.BlackScholesPrice
}
