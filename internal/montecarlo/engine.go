// Package montecarlo prices European options by direct simulation of GBM
// terminal prices.
package montecarlo

import (
	"math"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"

	"OptionPrisma/internal/model"
)

const (
	// z for a two-sided 95% normal interval.
	z95 = 1.96

	// Paths per partition. Fixed so that a seeded run produces the same
	// partials no matter how many workers execute them.
	partitionSize = 1 << 14

	// Second PCG word mixed with the partition index.
	streamSalt = 0x9e3779b97f4a7c15
)

// Engine runs Monte Carlo simulations. The zero value uses GOMAXPROCS workers.
type Engine struct {
	Workers int
}

// NewEngine returns an engine bounded to workers goroutines (<=0 means GOMAXPROCS).
func NewEngine(workers int) *Engine {
	return &Engine{Workers: workers}
}

func (e *Engine) workers() int {
	if e == nil || e.Workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return e.Workers
}

// Simulate prices inputs with NumSimulations paths. A non-nil seed makes the
// draw bit-reproducible; otherwise every call uses fresh independent streams.
// Inputs are assumed validated; degenerate results come back as a
// *model.ComputationError.
func (e *Engine) Simulate(in model.PricingInputs, seed *uint64) (model.MonteCarloEstimate, error) {
	n := in.NumSimulations
	if n < 1 {
		return model.MonteCarloEstimate{}, &model.ComputationError{Op: "monte carlo", Reason: "need at least one path"}
	}
	if in.OptionType != model.Call && in.OptionType != model.Put {
		return model.MonteCarloEstimate{}, &model.ComputationError{Op: "monte carlo", Reason: "unknown option type " + string(in.OptionType)}
	}

	base := rand.Uint64()
	if seed != nil {
		base = *seed
	}

	p := newPathParams(in)
	parts := (n + partitionSize - 1) / partitionSize
	partials := make([]accumulator, parts)

	var g errgroup.Group
	g.SetLimit(e.workers())
	for i := 0; i < parts; i++ {
		count := partitionSize
		if i == parts-1 {
			count = n - i*partitionSize
		}
		g.Go(func() error {
			rng := rand.New(rand.NewPCG(base, uint64(i)^streamSalt))
			partials[i] = p.run(rng, count)
			return nil
		})
	}
	_ = g.Wait()

	var total accumulator
	for _, part := range partials {
		total.merge(part)
	}

	stdErr := total.stdDev() / math.Sqrt(float64(total.n))
	est := model.MonteCarloEstimate{
		Price:                total.mean,
		StdError:             stdErr,
		ConfidenceInterval95: z95 * stdErr,
		Paths:                total.n,
	}
	for _, v := range []float64{est.Price, est.StdError} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return model.MonteCarloEstimate{}, &model.ComputationError{Op: "monte carlo", Reason: "estimate is not finite"}
		}
	}
	return est, nil
}

// pathParams caches the per-run constants of the terminal-price formula
// S_T = S0 * exp((r - sigma^2/2)T + sigma*sqrt(T)*Z).
type pathParams struct {
	spot     float64
	strike   float64
	drift    float64
	diffuse  float64
	discount float64
	call     bool
}

func newPathParams(in model.PricingInputs) pathParams {
	T := in.TimeToMaturity
	return pathParams{
		spot:     in.SpotPrice,
		strike:   in.StrikePrice,
		drift:    (in.RiskFreeRate - 0.5*in.Volatility*in.Volatility) * T,
		diffuse:  in.Volatility * math.Sqrt(T),
		discount: math.Exp(-in.RiskFreeRate * T),
		call:     in.OptionType == model.Call,
	}
}

func (p pathParams) run(rng *rand.Rand, count int) accumulator {
	var acc accumulator
	for j := 0; j < count; j++ {
		st := p.spot * math.Exp(p.drift+p.diffuse*rng.NormFloat64())
		var payoff float64
		if p.call {
			payoff = math.Max(st-p.strike, 0)
		} else {
			payoff = math.Max(p.strike-st, 0)
		}
		acc.add(payoff * p.discount)
	}
	return acc
}
