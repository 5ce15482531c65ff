// Package report renders simulation records as plain text for terminals.
package report

import (
	"fmt"
	"math"
	"strings"

	"OptionPrisma/internal/model"
)

// FormatSimulation renders one record: inputs, Monte Carlo estimate,
// Black-Scholes cross-check and Greeks.
func FormatSimulation(rec *model.SimulationRecord) string {
	var b strings.Builder
	in := rec.Inputs

	b.WriteString(fmt.Sprintf("Simulation %s | %s UTC\n\n", rec.SimulationID, rec.Timestamp.UTC().Format("2006-01-02 15:04:05")))

	b.WriteString(fmt.Sprintf("European %s  S=%.4f  K=%.4f  T=%.4fy\n", strings.ToUpper(string(in.OptionType)), in.SpotPrice, in.StrikePrice, in.TimeToMaturity))
	b.WriteString(fmt.Sprintf("sigma=%.2f%%  r=%.2f%%  paths=%d", in.Volatility*100, in.RiskFreeRate*100, in.NumSimulations))
	if rec.Seed != nil {
		b.WriteString(fmt.Sprintf("  seed=%d", *rec.Seed))
	}
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("Monte Carlo:    %.6f\n", rec.OptionPrice))
	b.WriteString(fmt.Sprintf("  std error:    %.6f\n", rec.StdError))
	b.WriteString(fmt.Sprintf("  95%% CI:       [%.6f, %.6f]\n", rec.OptionPrice-rec.ConfidenceInterval95, rec.OptionPrice+rec.ConfidenceInterval95))
	b.WriteString(fmt.Sprintf("Black-Scholes:  %.6f\n", rec.BlackScholesPrice))
	b.WriteString(fmt.Sprintf("  difference:   %+.6f%s\n\n", rec.PricingError(), deviation(rec)))

	g := rec.Greeks
	b.WriteString("Greeks:\n")
	b.WriteString(fmt.Sprintf("  delta  %+.6f\n", g.Delta))
	b.WriteString(fmt.Sprintf("  gamma  %+.6f\n", g.Gamma))
	b.WriteString(fmt.Sprintf("  vega   %+.6f  (per 1%% vol)\n", g.Vega))
	b.WriteString(fmt.Sprintf("  theta  %+.6f  (per day)\n", g.Theta))
	b.WriteString(fmt.Sprintf("  rho    %+.6f  (per 1%% rate)\n", g.Rho))
	return b.String()
}

// deviation expresses the Monte Carlo error in standard errors, flagging
// estimates whose 95% interval misses the analytical price.
func deviation(rec *model.SimulationRecord) string {
	if rec.StdError == 0 {
		return ""
	}
	z := rec.PricingError() / rec.StdError
	mark := "within 95% CI"
	if math.Abs(rec.PricingError()) > rec.ConfidenceInterval95 {
		mark = "outside 95% CI"
	}
	return fmt.Sprintf(" (%+.2f SE, %s)", z, mark)
}

// FormatList renders stored records as one line each, oldest first.
func FormatList(recs []*model.SimulationRecord) string {
	if len(recs) == 0 {
		return "No stored simulations.\n"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-28s %-4s %10s %10s %8s %12s %12s\n", "ID", "TYPE", "SPOT", "STRIKE", "T", "MC", "BS"))
	for _, r := range recs {
		b.WriteString(fmt.Sprintf("%-28s %-4s %10.2f %10.2f %8.3f %12.6f %12.6f\n",
			r.SimulationID, r.Inputs.OptionType, r.Inputs.SpotPrice, r.Inputs.StrikePrice,
			r.Inputs.TimeToMaturity, r.OptionPrice, r.BlackScholesPrice))
	}
	b.WriteString(fmt.Sprintf("%d simulation(s)\n", len(recs)))
	return b.String()
}
