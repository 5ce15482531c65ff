package calculator

import (
	"math"

	"OptionPrisma/internal/model"
)

const daysPerYear = 365.0

// d1d2 returns the Black-Scholes d1 and d2 terms. A zero or non-finite
// sigma*sqrt(T) is a ComputationError; no volatility floor is substituted.
func d1d2(op string, in model.PricingInputs) (d1, d2, sqrtT float64, err error) {
	sqrtT = math.Sqrt(in.TimeToMaturity)
	volT := in.Volatility * sqrtT
	if volT == 0 || math.IsNaN(volT) || math.IsInf(volT, 0) {
		return 0, 0, 0, &model.ComputationError{Op: op, Reason: "volatility*sqrt(T) must be non-zero and finite"}
	}
	d1 = (math.Log(in.SpotPrice/in.StrikePrice) + (in.RiskFreeRate+0.5*in.Volatility*in.Volatility)*in.TimeToMaturity) / volT
	d2 = d1 - volT
	if math.IsNaN(d1) || math.IsNaN(d2) {
		return 0, 0, 0, &model.ComputationError{Op: op, Reason: "d1/d2 is not a number"}
	}
	return d1, d2, sqrtT, nil
}

// BlackScholesPrice returns the closed-form European option price.
//
//	Call = S*N(d1) - K*e^(-rT)*N(d2)
//	Put  = K*e^(-rT)*N(-d2) - S*N(-d1)
func BlackScholesPrice(in model.PricingInputs) (float64, error) {
	d1, d2, _, err := d1d2("black-scholes price", in)
	if err != nil {
		return 0, err
	}
	df := math.Exp(-in.RiskFreeRate * in.TimeToMaturity)

	var price float64
	switch in.OptionType {
	case model.Call:
		price = in.SpotPrice*NormCDF(d1) - in.StrikePrice*df*NormCDF(d2)
	case model.Put:
		price = in.StrikePrice*df*NormCDF(-d2) - in.SpotPrice*NormCDF(-d1)
	default:
		return 0, &model.ComputationError{Op: "black-scholes price", Reason: "unknown option type " + string(in.OptionType)}
	}
	return finite("black-scholes price", price)
}

// BlackScholesGreeks returns delta, gamma, vega (per vol point), theta (per
// calendar day) and rho (per 1% rate move).
func BlackScholesGreeks(in model.PricingInputs) (model.Greeks, error) {
	const op = "black-scholes greeks"
	d1, d2, sqrtT, err := d1d2(op, in)
	if err != nil {
		return model.Greeks{}, err
	}
	S, K, T, r, sigma := in.SpotPrice, in.StrikePrice, in.TimeToMaturity, in.RiskFreeRate, in.Volatility
	df := math.Exp(-r * T)
	pdf := NormPDF(d1)

	g := model.Greeks{
		Gamma: pdf / (S * sigma * sqrtT),
		Vega:  S * pdf * sqrtT / 100,
	}
	decay := -S * pdf * sigma / (2 * sqrtT)

	switch in.OptionType {
	case model.Call:
		g.Delta = NormCDF(d1)
		g.Theta = (decay - r*K*df*NormCDF(d2)) / daysPerYear
		g.Rho = K * T * df * NormCDF(d2) / 100
	case model.Put:
		g.Delta = -NormCDF(-d1)
		g.Theta = (decay + r*K*df*NormCDF(-d2)) / daysPerYear
		g.Rho = -K * T * df * NormCDF(-d2) / 100
	default:
		return model.Greeks{}, &model.ComputationError{Op: op, Reason: "unknown option type " + string(in.OptionType)}
	}

	for _, v := range []float64{g.Delta, g.Gamma, g.Vega, g.Theta, g.Rho} {
		if _, err := finite(op, v); err != nil {
			return model.Greeks{}, err
		}
	}
	return g, nil
}

func finite(op string, v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &model.ComputationError{Op: op, Reason: "result is not finite"}
	}
	return v, nil
}
