// Package validator holds the domain-level range checks shared by the Monte
// Carlo and Black-Scholes engines. It is the authoritative gate; the HTTP
// schema layer repeats some bounds but never replaces these checks.
package validator

import (
	"fmt"

	"OptionPrisma/internal/model"
)

const (
	MaxMaturity   = 10.0
	MaxVolatility = 5.0 // 500%
	MinRate       = -0.10
	MaxRate       = 0.30
)

// Validate checks inputs in a fixed order and stops at the first failure.
func Validate(in model.PricingInputs) error {
	switch {
	case !(in.SpotPrice > 0):
		return invalid("spot_price", "Spot price must be positive")
	case !(in.StrikePrice > 0):
		return invalid("strike_price", "Strike price must be positive")
	case !(in.TimeToMaturity > 0):
		return invalid("time_to_maturity", "Time to maturity must be positive")
	case !(in.Volatility >= 0):
		return invalid("volatility", "Volatility cannot be negative")
	case in.Volatility > MaxVolatility:
		return invalid("volatility", "Volatility seems unrealistically high (>500%)")
	case !(in.RiskFreeRate >= MinRate && in.RiskFreeRate <= MaxRate):
		return invalid("risk_free_rate", "Risk-free rate should be between -10% and 30%")
	case in.TimeToMaturity > MaxMaturity:
		return invalid("time_to_maturity", fmt.Sprintf("Time to maturity must not exceed %.0f years", MaxMaturity))
	case in.NumSimulations < model.MinSimulations || in.NumSimulations > model.MaxSimulations:
		return invalid("num_simulations", fmt.Sprintf("Number of simulations must be between %d and %d",
			model.MinSimulations, model.MaxSimulations))
	case !in.OptionType.Valid():
		return invalid("option_type", fmt.Sprintf("Option type must be %q or %q", model.Call, model.Put))
	}
	return nil
}

func invalid(field, reason string) error {
	return &model.ValidationError{Field: field, Reason: reason}
}
